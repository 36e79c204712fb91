// Package probe holds the ordered retrieval strategies tried by the orchestrator.
// A probe finds evidence and drafts an answer; acceptance is decided centrally.
package probe

import (
	"context"

	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/rag/history"
	"ai-knowledge-router-be/pkg/store"
)

const module = "PROBE"

// Request is everything a probe may read about the current turn
type Request struct {
	// Question is the effective question after dialogue resolution and contextualization
	Question         string
	OriginalQuestion string
	Flags            store.ModeFlags
	Recent           []store.Turn
	Digest           store.IntentDigest
	Attachments      []store.Attachment
	ConversationID   string
	// CuratedMode enables the knowledge-base confirmation prompt and curated citations
	CuratedMode bool
	// Confirmed marks a question the user just confirmed; it is never re-confirmed
	Confirmed bool
}

// History returns the recent turns as chat messages for answer composition
func (r *Request) History() []llm.Message {
	return history.ToMessages(r.Recent)
}

// Probe is one source family
type Probe interface {
	Source() store.Source
	Eligible(req *Request) bool
	// Attempt returns a nil error with an empty answer when the source simply has
	// nothing. Errors are reserved for failing backends.
	Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error)
	CitationMode(req *Request) citation.Mode
}

// VectorSearcher is the knowledge chunk index
type VectorSearcher interface {
	Search(ctx context.Context, query string, filter store.SearchFilter) ([]store.ScoredDocument, error)
}

// WebSearcher is an open web index
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]store.ScoredDocument, error)
}

// SiteSearcher searches the allow-listed corporate domains
type SiteSearcher interface {
	Configured() bool
	Search(ctx context.Context, question string) ([]store.ScoredDocument, error)
}

// TabularAgent answers a question against one spreadsheet
type TabularAgent interface {
	Answer(ctx context.Context, sheet store.Spreadsheet, question string) (string, error)
}

// SpreadsheetCatalog lists the indexed company spreadsheets
type SpreadsheetCatalog interface {
	Spreadsheets(ctx context.Context) ([]store.Spreadsheet, error)
}

// AnswerGenerator composes answers from evidence or general knowledge
type AnswerGenerator interface {
	FromDocuments(ctx context.Context, question string, docs []store.ScoredDocument, history []llm.Message) string
	FromWebResults(ctx context.Context, question string, docs []store.ScoredDocument, history []llm.Message) string
	General(ctx context.Context, question string, history []llm.Message) string
}

func topScore(docs []store.ScoredDocument) *float64 {
	var top *float64
	for _, d := range docs {
		if d.Score == nil {
			continue
		}
		if top == nil || *d.Score > *top {
			top = store.Score(*d.Score)
		}
	}
	return top
}

// sheetDocument is the evidence record of a tabular answer
func sheetDocument(sheet store.Spreadsheet, answer string) store.ScoredDocument {
	sourceType := sheet.SourceType
	if sourceType == "" {
		sourceType = store.SourceTypeTable
	}
	content := sheet.Description
	if content == "" {
		content = answer
	}
	return store.ScoredDocument{
		Content: content,
		Metadata: store.DocumentMetadata{
			SourceType: sourceType,
			Title:      sheet.Title,
			URL:        sheet.URL,
			DocumentID: sheet.ID,
		},
	}
}
