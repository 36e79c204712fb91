package probe

import (
	"context"
	"errors"
	"testing"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/llm/llmtest"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/rag/composer"
	"ai-knowledge-router-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVector struct {
	docs    []store.ScoredDocument
	err     error
	filters []store.SearchFilter
}

func (f *fakeVector) Search(ctx context.Context, query string, filter store.SearchFilter) ([]store.ScoredDocument, error) {
	f.filters = append(f.filters, filter)
	return f.docs, f.err
}

type fakeWeb struct {
	docs []store.ScoredDocument
	err  error
}

func (f *fakeWeb) Search(ctx context.Context, query string) ([]store.ScoredDocument, error) {
	return f.docs, f.err
}

type fakeSite struct {
	fakeWeb
	configured bool
}

func (f *fakeSite) Configured() bool { return f.configured }

type fakeAgent struct {
	answer string
	err    error
	sheets []store.Spreadsheet
}

func (f *fakeAgent) Answer(ctx context.Context, sheet store.Spreadsheet, question string) (string, error) {
	f.sheets = append(f.sheets, sheet)
	return f.answer, f.err
}

type fakeCatalog struct {
	sheets []store.Spreadsheet
	err    error
}

func (f *fakeCatalog) Spreadsheets(ctx context.Context) ([]store.Spreadsheet, error) {
	return f.sheets, f.err
}

type fakeGenerator struct {
	answer string
	calls  int
}

func (f *fakeGenerator) FromDocuments(ctx context.Context, q string, docs []store.ScoredDocument, h []llm.Message) string {
	f.calls++
	return f.answer
}

func (f *fakeGenerator) FromWebResults(ctx context.Context, q string, docs []store.ScoredDocument, h []llm.Message) string {
	f.calls++
	return f.answer
}

func (f *fakeGenerator) General(ctx context.Context, q string, h []llm.Message) string {
	f.calls++
	return f.answer
}

type fakeGate struct{ allow bool }

func (f fakeGate) CanPrompt(recent []store.Turn, kind store.DialogueState) bool { return f.allow }

func routing() config.RoutingConfig {
	return config.RoutingConfig{
		KBLowScoreThreshold:  0.35,
		KBTopK:               20,
		KBTrustedSourceTypes: []string{"portal", "admin", "website"},
	}
}

func doc(content string, score float64) store.ScoredDocument {
	return store.ScoredDocument{Content: content, Metadata: store.DocumentMetadata{SourceType: store.SourceTypePortal}, Score: store.Score(score)}
}

func newKB(search VectorSearcher, gen AnswerGenerator, fake llm.LLMProvider, allow bool) *KnowledgeBase {
	return NewKnowledgeBase(search, gen, fake, fakeGate{allow: allow}, composer.NewComposer(nil, logger.NewNopLogger()), routing(), logger.NewNopLogger())
}

func TestKnowledgeBase_NoDocsCuratedAsksConfirmation(t *testing.T) {
	fake := llmtest.New().On("Rewrite this question", "Berapa jatah cuti tahunan karyawan?")
	gen := &fakeGenerator{answer: "unused"}
	kb := newKB(&fakeVector{}, gen, fake, true)
	req := &Request{Question: "jatah cuti?", Flags: store.ModeFlags{Company: true}, CuratedMode: true}

	attempt, err := kb.Attempt(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, attempt.Prompt)
	assert.Equal(t, store.DialogueStateConfirmation, attempt.Prompt.State)
	assert.Equal(t, "Berapa jatah cuti tahunan karyawan?", attempt.Prompt.ProposedQuestion)
	assert.Contains(t, attempt.Prompt.Text, `"Berapa jatah cuti tahunan karyawan?"`)
	assert.Equal(t, 0.0, attempt.Prompt.Confidence)
	assert.Zero(t, gen.calls)
}

func TestKnowledgeBase_ConfirmationCarriesDigestConfidence(t *testing.T) {
	fake := llmtest.New().On("Rewrite this question", "Berapa jatah cuti tahunan karyawan?")
	search := &fakeVector{docs: []store.ScoredDocument{doc("Cuti bersama diumumkan setiap tahun", 0.2)}}
	kb := newKB(search, &fakeGenerator{}, fake, true)
	req := &Request{
		Question:    "jatah cuti?",
		Flags:       store.ModeFlags{Company: true},
		CuratedMode: true,
		Digest:      store.IntentDigest{Intent: store.IntentQuestion, Confidence: 0.9, Source: store.DigestSourceLLM},
	}

	attempt, err := kb.Attempt(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, attempt.Prompt)
	require.NotNil(t, attempt.TopScore)
	assert.InDelta(t, 0.2, *attempt.TopScore, 1e-9)
	assert.Equal(t, 0.9, attempt.Prompt.Confidence)
}

func TestKnowledgeBase_NoConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		curated bool
		confirm bool
		allow   bool
	}{
		{"curated mode off", false, false, true},
		{"already confirmed", true, true, true},
		{"loop guard", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := newKB(&fakeVector{}, &fakeGenerator{}, llmtest.New(), tt.allow)
			req := &Request{Question: "cuti?", Flags: store.ModeFlags{Company: true}, CuratedMode: tt.curated, Confirmed: tt.confirm}

			attempt, err := kb.Attempt(context.Background(), req)

			require.NoError(t, err)
			assert.Nil(t, attempt.Prompt)
			assert.Empty(t, attempt.Answer)
		})
	}
}

func TestKnowledgeBase_AnswersStrongResults(t *testing.T) {
	search := &fakeVector{docs: []store.ScoredDocument{doc("Cuti tahunan 12 hari", 0.82), doc("Cuti sakit", 0.5)}}
	gen := &fakeGenerator{answer: "Cuti tahunan adalah 12 hari."}
	kb := newKB(search, gen, llmtest.New(), true)
	req := &Request{Question: "cuti tahunan?", Flags: store.ModeFlags{Company: true}, CuratedMode: true}

	attempt, err := kb.Attempt(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, attempt.Prompt)
	assert.Equal(t, "Cuti tahunan adalah 12 hari.", attempt.Answer)
	require.NotNil(t, attempt.TopScore)
	assert.Equal(t, 0.82, *attempt.TopScore)
	assert.True(t, attempt.DocumentBacked)
	assert.Equal(t, []string{"portal", "admin", "website"}, search.filters[0].SourceTypes)
	assert.Equal(t, citation.ModeCurated, kb.CitationMode(req))
}

func TestKnowledgeBase_RefineRejectsDrift(t *testing.T) {
	fake := llmtest.New().On("Rewrite this question", "Bagaimana cara memasak rendang?")
	kb := newKB(&fakeVector{}, &fakeGenerator{}, fake, true)

	assert.Equal(t, "jatah cuti tahunan?", kb.refine(context.Background(), "jatah cuti tahunan?"))

	failing := llmtest.New()
	failing.DefaultErr = llm.ErrProviderError
	kb = newKB(&fakeVector{}, &fakeGenerator{}, failing, true)
	assert.Equal(t, "cuti?", kb.refine(context.Background(), "cuti?"))
}

func TestKnowledgeBase_SearchError(t *testing.T) {
	kb := newKB(&fakeVector{err: errors.New("db down")}, &fakeGenerator{}, llmtest.New(), true)
	_, err := kb.Attempt(context.Background(), &Request{Question: "x", Flags: store.ModeFlags{Company: true}})
	assert.Error(t, err)
}

func TestAttachments(t *testing.T) {
	attachments := []store.Attachment{
		{ID: "a1", FileName: "karyawan.csv", Description: "jumlah karyawan per cabang", StoragePath: "a1.csv", IsSpreadsheet: true},
		{ID: "a2", FileName: "sop.pdf"},
	}

	t.Run("tabular question uses the agent", func(t *testing.T) {
		agent := &fakeAgent{answer: "Bandung memiliki 45 karyawan."}
		search := &fakeVector{}
		p := NewAttachments(search, agent, &fakeGenerator{}, 5, logger.NewNopLogger())
		req := &Request{Question: "berapa karyawan cabang Bandung?", Attachments: attachments, ConversationID: "c1"}

		require.True(t, p.Eligible(req))
		attempt, err := p.Attempt(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "Bandung memiliki 45 karyawan.", attempt.Answer)
		assert.True(t, attempt.ExplicitEvidence)
		require.Len(t, attempt.Documents, 1)
		assert.Equal(t, "a1", attempt.Documents[0].Metadata.DocumentID)
		assert.Empty(t, search.filters)
	})

	t.Run("agent failure falls back to text search", func(t *testing.T) {
		agent := &fakeAgent{err: errors.New("bad csv")}
		search := &fakeVector{docs: []store.ScoredDocument{doc("Bandung 45 karyawan", 0.7)}}
		p := NewAttachments(search, agent, &fakeGenerator{answer: "45 karyawan"}, 5, logger.NewNopLogger())
		req := &Request{Question: "berapa karyawan Bandung?", Attachments: attachments, ConversationID: "c1"}

		attempt, err := p.Attempt(context.Background(), req)

		require.NoError(t, err)
		assert.False(t, attempt.ExplicitEvidence)
		assert.Equal(t, "45 karyawan", attempt.Answer)
		require.Len(t, search.filters, 1)
		assert.Equal(t, []string{store.SourceTypeUser}, search.filters[0].SourceTypes)
		assert.Equal(t, "c1", search.filters[0].ConversationID)
	})

	t.Run("no attachments", func(t *testing.T) {
		p := NewAttachments(&fakeVector{}, nil, &fakeGenerator{}, 5, logger.NewNopLogger())
		assert.False(t, p.Eligible(&Request{}))
	})
}

func TestTabular(t *testing.T) {
	catalog := &fakeCatalog{sheets: []store.Spreadsheet{
		{ID: "s1", Title: "Penjualan", Description: "penjualan bulanan per cabang"},
		{ID: "s2", Title: "Karyawan", Description: "jumlah karyawan per divisi"},
	}}

	t.Run("answers from the best sheet", func(t *testing.T) {
		agent := &fakeAgent{answer: "Divisi IT memiliki 30 karyawan."}
		p := NewTabular(catalog, agent, logger.NewNopLogger())
		req := &Request{Question: "berapa karyawan divisi IT?", Flags: store.ModeFlags{Company: true}}

		require.True(t, p.Eligible(req))
		attempt, err := p.Attempt(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "s2", agent.sheets[0].ID)
		assert.True(t, attempt.ExplicitEvidence)
		assert.Equal(t, store.SourceTypeTable, attempt.Documents[0].Metadata.SourceType)
	})

	t.Run("no matching sheet", func(t *testing.T) {
		agent := &fakeAgent{}
		p := NewTabular(catalog, agent, logger.NewNopLogger())

		attempt, err := p.Attempt(context.Background(), &Request{Question: "visi misi perusahaan"})

		require.NoError(t, err)
		assert.Empty(t, attempt.Answer)
		assert.Empty(t, agent.sheets)
	})

	t.Run("agent error", func(t *testing.T) {
		p := NewTabular(catalog, &fakeAgent{err: llm.ErrRateLimited}, logger.NewNopLogger())
		_, err := p.Attempt(context.Background(), &Request{Question: "karyawan"})
		assert.ErrorIs(t, err, llm.ErrRateLimited)
	})

	t.Run("unreadable sheet", func(t *testing.T) {
		p := NewTabular(catalog, &fakeAgent{err: errors.New("open a1.csv: no such file")}, logger.NewNopLogger())
		attempt, err := p.Attempt(context.Background(), &Request{Question: "karyawan"})

		require.NoError(t, err)
		assert.Equal(t, constant.MessageTabularFailed, attempt.Answer)
		assert.Empty(t, attempt.Documents)
	})
}

func TestCorporateSite(t *testing.T) {
	site := &fakeSite{configured: true, fakeWeb: fakeWeb{docs: []store.ScoredDocument{{Content: "Kantor pusat di Jakarta", Metadata: store.DocumentMetadata{URL: "https://example.co.id"}}}}}
	p := NewCorporateSite(site, &fakeGenerator{answer: "Kantor pusat di Jakarta."}, logger.NewNopLogger())

	assert.False(t, p.Eligible(&Request{Flags: store.ModeFlags{General: true}}))
	assert.False(t, NewCorporateSite(&fakeSite{}, nil, logger.NewNopLogger()).Eligible(&Request{Flags: store.ModeFlags{Company: true}}))

	attempt, err := p.Attempt(context.Background(), &Request{Question: "alamat kantor pusat", Flags: store.ModeFlags{Company: true}})
	require.NoError(t, err)
	assert.Equal(t, "Kantor pusat di Jakarta.", attempt.Answer)
	assert.Nil(t, attempt.TopScore)
}

func TestGeneralLLM(t *testing.T) {
	p := NewGeneralLLM(&fakeGenerator{answer: "Photosynthesis converts light into chemical energy."})
	require.True(t, p.Eligible(&Request{Flags: store.ModeFlags{General: true}}))

	attempt, err := p.Attempt(context.Background(), &Request{Question: "what is photosynthesis"})
	require.NoError(t, err)
	assert.False(t, attempt.DocumentBacked)
	assert.Empty(t, attempt.Documents)
}

func TestWebSearch_FiltersIrrelevantResults(t *testing.T) {
	web := &fakeWeb{docs: []store.ScoredDocument{
		{Content: "Resep nasi goreng spesial", Metadata: store.DocumentMetadata{URL: "https://a.test"}},
		{Content: "Harga emas hari ini", Metadata: store.DocumentMetadata{URL: "https://b.test"}},
	}}
	gen := &fakeGenerator{answer: "should not be called"}
	p := NewWebSearch(web, gen, logger.NewNopLogger())

	attempt, err := p.Attempt(context.Background(), &Request{Question: "jadwal kereta bandung", Flags: store.ModeFlags{Browse: true}})

	require.NoError(t, err)
	assert.Empty(t, attempt.Documents)
	assert.Empty(t, attempt.Answer)
	assert.Zero(t, gen.calls)
}
