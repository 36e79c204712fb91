package response

import (
	"context"
	"errors"
	"testing"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/llm/llmtest"
	"ai-knowledge-router-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func docs() []store.ScoredDocument {
	return []store.ScoredDocument{{
		Content:  "Cuti tahunan karyawan tetap adalah 12 hari kerja.",
		Metadata: store.DocumentMetadata{Title: "Peraturan Cuti", URL: "https://portal.example.com/cuti", SourceType: store.SourceTypePortal},
	}}
}

func TestFromDocuments(t *testing.T) {
	fake := llmtest.New().On("<grounded_reference_material>", "  Cuti tahunan adalah 12 hari kerja [1].  ")
	g := NewGenerator(fake, logger.NewNopLogger())

	got := g.FromDocuments(context.Background(), "Berapa cuti tahunan?", docs(), nil)

	assert.Equal(t, "Cuti tahunan adalah 12 hari kerja [1].", got)
	prompts := fake.Prompts()
	assert.Contains(t, prompts[0], "[1] Peraturan Cuti (https://portal.example.com/cuti)")
	assert.Contains(t, prompts[0], "Berapa cuti tahunan?")
}

func TestFromDocuments_NoDocs(t *testing.T) {
	fake := llmtest.New()
	g := NewGenerator(fake, logger.NewNopLogger())

	assert.Equal(t, constant.MessageNoContext, g.FromDocuments(context.Background(), "q", nil, nil))
	assert.Equal(t, 0, fake.Calls())
}

func TestFailuresBecomeFallbackMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", llm.ErrRateLimited, constant.MessageProviderUnavailable},
		{"auth", llm.ErrAuthFailed, constant.MessageProviderUnavailable},
		{"deadline", context.DeadlineExceeded, constant.MessageProviderUnavailable},
		{"other", errors.New("boom"), constant.MessageAnswerFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := llmtest.New()
			fake.DefaultErr = tt.err
			g := NewGenerator(fake, logger.NewNopLogger())

			assert.Equal(t, tt.want, g.General(context.Background(), "q", nil))
			assert.Equal(t, tt.want, g.FromWebResults(context.Background(), "q", docs(), nil))
		})
	}
}

func TestGeneral(t *testing.T) {
	fake := llmtest.New().On("Answer from your own general knowledge", "Jakarta adalah ibu kota Indonesia.")
	g := NewGenerator(fake, logger.NewNopLogger())

	got := g.General(context.Background(), "Apa ibu kota Indonesia?", []llm.Message{{Role: "user", Content: "halo"}})

	assert.Equal(t, "Jakarta adalah ibu kota Indonesia.", got)
}
