package citation

import (
	"fmt"
	"testing"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() config.RoutingConfig {
	return config.RoutingConfig{
		CuratedCitationMin:       3,
		CuratedCitationMax:       5,
		CuratedCitationThreshold: 0.5,
		GeneralCitationMax:       3,
		AttachmentCitationMax:    5,
	}
}

func scored(id, sourceType string, score float64) store.ScoredDocument {
	return store.ScoredDocument{
		Content: "content of " + id,
		Metadata: store.DocumentMetadata{
			SourceType: sourceType,
			Title:      "Doc " + id,
			URL:        "https://intra.example.com/" + id,
			DocumentID: id,
		},
		Score: store.Score(score),
	}
}

func ids(docs []store.ScoredDocument) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Metadata.DocumentID)
	}
	return out
}

func TestSelect_DedupeKeepsBest(t *testing.T) {
	s := NewSelector(testConfig(), logger.NewNopLogger())
	low := scored("a", store.SourceTypePortal, 0.2)
	high := scored("a", store.SourceTypePortal, 0.9)
	high.Content = "longer content of a"

	got := s.Select([]store.ScoredDocument{low, scored("b", store.SourceTypeWeb, 0.5), high}, ModeGeneral)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Metadata.DocumentID)
	assert.Equal(t, 0.9, got[0].ScoreValue())
}

func TestSelect_DedupeByURLWithoutID(t *testing.T) {
	s := NewSelector(testConfig(), logger.NewNopLogger())
	a := store.ScoredDocument{Content: "chunk one", Metadata: store.DocumentMetadata{URL: "https://x.test/page"}}
	b := store.ScoredDocument{Content: "chunk two is longer", Metadata: store.DocumentMetadata{URL: "https://x.test/page"}}

	got := s.Select([]store.ScoredDocument{a, b}, ModeWeb)

	require.Len(t, got, 1)
	assert.Equal(t, "chunk two is longer", got[0].Content)
}

func TestSelect_PreferredTierFirst(t *testing.T) {
	s := NewSelector(testConfig(), logger.NewNopLogger())
	docs := []store.ScoredDocument{
		scored("w1", store.SourceTypeWebsite, 0.9),
		scored("p1", store.SourceTypePortal, 0.6),
		scored("w2", store.SourceTypeWebsite, 0.8),
		scored("a1", store.SourceTypeAdmin, 0.7),
	}

	got := s.Select(docs, ModeCurated)

	assert.Equal(t, []string{"p1", "a1", "w1", "w2"}, ids(got))
}

func TestSelect_FloorBackfillsAndLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSelector(testConfig(), logger.NewFromZap(zap.New(core)))
	docs := []store.ScoredDocument{
		scored("p1", store.SourceTypePortal, 0.9),
		scored("p2", store.SourceTypePortal, 0.1),
		scored("w1", store.SourceTypeWebsite, 0.2),
		scored("w2", store.SourceTypeWebsite, 0.05),
	}

	got := s.Select(docs, ModeCurated)

	assert.Equal(t, []string{"p1", "p2", "w1"}, ids(got))
	assert.Equal(t, 1, logs.FilterMessage("Citation floor engaged, back-filling below threshold").Len())
}

func TestSelect_Caps(t *testing.T) {
	s := NewSelector(testConfig(), logger.NewNopLogger())
	var docs []store.ScoredDocument
	for i := 0; i < 10; i++ {
		docs = append(docs, scored(fmt.Sprintf("d%d", i), store.SourceTypePortal, 0.9))
	}

	assert.Len(t, s.Select(docs, ModeGeneral), 3)
	assert.Len(t, s.Select(docs, ModeCurated), 5)
}

func TestSelect_Idempotent(t *testing.T) {
	s := NewSelector(testConfig(), logger.NewNopLogger())
	docs := []store.ScoredDocument{
		scored("w1", store.SourceTypeWebsite, 0.2),
		scored("p1", store.SourceTypePortal, 0.9),
		scored("p1", store.SourceTypePortal, 0.4),
		scored("a1", store.SourceTypeAdmin, 0.05),
		scored("w2", store.SourceTypeWebsite, 0.7),
		scored("w3", store.SourceTypeWebsite, 0.6),
		scored("p2", store.SourceTypePortal, 0.55),
	}

	for _, mode := range []Mode{ModeGeneral, ModeCurated, ModeAttachments, ModeWeb} {
		once := s.Select(docs, mode)
		twice := s.Select(once, mode)
		assert.Equal(t, ids(once), ids(twice), string(mode))

		seen := map[string]bool{}
		for _, d := range twice {
			key := d.Metadata.URL + "|" + d.Metadata.DocumentID
			assert.False(t, seen[key], "duplicate %s", key)
			seen[key] = true
		}
	}
}

func TestSelect_Empty(t *testing.T) {
	s := NewSelector(testConfig(), logger.NewNopLogger())
	assert.Empty(t, s.Select(nil, ModeCurated))
}

func TestToCitations(t *testing.T) {
	d := store.ScoredDocument{Content: "  Annual\nleave   policy ", Metadata: store.DocumentMetadata{SourceType: store.SourceTypeAdmin}}

	got := ToCitations([]store.ScoredDocument{d})

	require.Len(t, got, 1)
	assert.Equal(t, "Annual leave policy", got[0].ContentSnippet)
	assert.Equal(t, "Untitled", got[0].Title)
	assert.Equal(t, store.SourceTypeAdmin, got[0].SourceType)
}
