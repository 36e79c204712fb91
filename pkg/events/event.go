package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "turn.recorded").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeTurnRecorded = "turn.recorded"

// TurnRecorded carries the routing outcome of one persisted turn
type TurnRecorded struct {
	TurnID         string
	ConversationID string
	UserID         string
	Source         string
	Intent         string
	DialogueState  string
	Confidence     float64
	CitationCount  int
	ModeCompany    bool
	ModeGeneral    bool
	ModeBrowse     bool
	OccurredAt     time.Time
}

func (e TurnRecorded) EventType() string {
	return TypeTurnRecorded
}

func (e TurnRecorded) Payload() map[string]interface{} {
	return map[string]interface{}{
		"turn_id":         e.TurnID,
		"conversation_id": e.ConversationID,
		"user_id":         e.UserID,
		"source":          e.Source,
		"intent":          e.Intent,
		"dialogue_state":  e.DialogueState,
		"confidence":      e.Confidence,
		"citation_count":  e.CitationCount,
		"mode_company":    e.ModeCompany,
		"mode_general":    e.ModeGeneral,
		"mode_browse":     e.ModeBrowse,
		"occurred_at":     e.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func (e TurnRecorded) Timestamp() time.Time {
	return e.OccurredAt
}
