package nats

import (
	"testing"
	"time"

	"ai-knowledge-router-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.turn.recorded", Subject(events.TypeTurnRecorded))
}

func TestDecode(t *testing.T) {
	event, err := Decode("events.turn.recorded", []byte(`{"turn_id":"t1","confidence":0.5,"occurred_at":"2026-03-01T09:30:00Z"}`))

	require.NoError(t, err)
	assert.Equal(t, events.TypeTurnRecorded, event.EventType())
	assert.Equal(t, "t1", event.Payload()["turn_id"])
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), event.Timestamp())
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode("events.turn.recorded", []byte(`not json`))
	assert.Error(t, err)
}
