package intent

import (
	"context"
	"testing"
	"time"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/repository/memory"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/llm/llmtest"
	"ai-knowledge-router-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

const classifierMarker = "You are an intent classifier"

func newDigester(fake *llmtest.Provider) *Digester {
	return NewDigester(fake, memory.NewDigestCache(time.Minute), logger.NewNopLogger())
}

func TestDigest_Empty(t *testing.T) {
	fake := llmtest.New()
	got := newDigester(fake).Digest(context.Background(), "  \n\t ", nil)

	assert.Equal(t, store.IntentDigest{Intent: store.IntentAmbiguous, Subtype: store.SubtypeNone, Source: store.DigestSourceEmpty}, got)
	assert.Equal(t, 0, fake.Calls())
}

func TestDigest_HelloIsSmallTalk(t *testing.T) {
	fake := llmtest.New()
	got := newDigester(fake).Digest(context.Background(), "hello", nil)

	assert.Equal(t, store.IntentSmallTalk, got.Intent)
	assert.Equal(t, store.SubtypeGreeting, got.Subtype)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, 0, fake.Calls())
}

func TestSmallTalkSubtype(t *testing.T) {
	tests := []struct {
		in      string
		subtype string
		ok      bool
	}{
		{"Halooo kak!", store.SubtypeGreeting, true},
		{"terima kasih banyak", store.SubtypeThanks, true},
		{"Thank you so much", store.SubtypeThanks, true},
		{"sampai jumpa", store.SubtypeBye, true},
		{"okeee", store.SubtypeAffirmation, true},
		{"halo, berapa cuti tahunan?", "", false},
		{"ya", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			subtype, ok := SmallTalkSubtype(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.subtype, subtype)
		})
	}
}

func TestDigest_LLMPath(t *testing.T) {
	fake := llmtest.New().On(classifierMarker, `Sure: {"intent":"question","subtype":"greeting","normalized_question":"Berapa hari cuti tahunan?","confidence":0.92}`)
	got := newDigester(fake).Digest(context.Background(), "berapa hari  cuti tahunan", nil)

	assert.Equal(t, store.IntentDigest{
		Intent:             store.IntentQuestion,
		Subtype:            store.SubtypeNone,
		NormalizedQuestion: "Berapa hari cuti tahunan?",
		Confidence:         0.92,
		Source:             store.DigestSourceLLM,
	}, got)
}

func TestDigest_Coercion(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     store.IntentDigest
	}{
		{
			name:     "unknown intent becomes question",
			response: `{"intent":"command","subtype":"none","normalized_question":"cuti tahunan","confidence":0.7}`,
			want:     store.IntentDigest{Intent: store.IntentQuestion, Subtype: store.SubtypeNone, NormalizedQuestion: "cuti tahunan", Confidence: 0.7, Source: store.DigestSourceLLM},
		},
		{
			name:     "confidence clamped and empty rewrite replaced",
			response: `{"intent":"ambiguous","subtype":"weird","normalized_question":"","confidence":3}`,
			want:     store.IntentDigest{Intent: store.IntentAmbiguous, Subtype: store.SubtypeNone, NormalizedQuestion: "info cuti tahunan", Confidence: 1, Source: store.DigestSourceLLM},
		},
		{
			name:     "drifted rewrite rejected",
			response: `{"intent":"question","subtype":"none","normalized_question":"Kebijakan lembur karyawan kontrak","confidence":0.8}`,
			want:     store.IntentDigest{Intent: store.IntentQuestion, Subtype: store.SubtypeNone, NormalizedQuestion: "info cuti tahunan", Confidence: 0.8, Source: store.DigestSourceLLM},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := llmtest.New().On(classifierMarker, tt.response)
			got := newDigester(fake).Digest(context.Background(), "info cuti tahunan", nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDigest_Fallback(t *testing.T) {
	tests := []struct {
		name string
		fake *llmtest.Provider
	}{
		{"provider error", llmtest.New().Fail(classifierMarker, llm.ErrRateLimited)},
		{"malformed json", llmtest.New().On(classifierMarker, "question, probably")},
		{"broken json", llmtest.New().On(classifierMarker, `{"intent": question}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newDigester(tt.fake).Digest(context.Background(), "info cuti tahunan", nil)
			assert.Equal(t, store.IntentDigest{
				Intent:             store.IntentQuestion,
				Subtype:            store.SubtypeNone,
				NormalizedQuestion: "info cuti tahunan",
				Confidence:         0,
				Source:             store.DigestSourceFallback,
			}, got)
		})
	}
}

func TestDigest_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := llmtest.New().On(classifierMarker, `{"intent":"question"}`)

	got := newDigester(fake).Digest(ctx, "info cuti tahunan", nil)

	assert.Equal(t, store.DigestSourceFallback, got.Source)
}

func TestDigest_Cached(t *testing.T) {
	fake := llmtest.New().On(classifierMarker, `{"intent":"question","subtype":"none","normalized_question":"info cuti tahunan","confidence":0.9}`)
	d := newDigester(fake)
	recent := []store.Turn{{Question: "halo", Answer: "Halo!"}}

	first := d.Digest(context.Background(), "info cuti tahunan", recent)
	second := d.Digest(context.Background(), "Info  cuti tahunan", recent)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.Calls())
}
