package probe

import (
	"context"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/store"
	"ai-knowledge-router-be/pkg/tabular"
)

// Attachments searches the files uploaded to the conversation. Spreadsheet
// attachments are answered by the tabular agent when the question asks for figures.
type Attachments struct {
	search    VectorSearcher
	agent     TabularAgent
	generator AnswerGenerator
	topK      int
	logger    logger.ILogger
}

func NewAttachments(search VectorSearcher, agent TabularAgent, generator AnswerGenerator, topK int, logger logger.ILogger) *Attachments {
	return &Attachments{
		search:    search,
		agent:     agent,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

func (p *Attachments) Source() store.Source { return store.SourceAttachments }

func (p *Attachments) Eligible(req *Request) bool { return len(req.Attachments) > 0 }

func (p *Attachments) CitationMode(req *Request) citation.Mode { return citation.ModeAttachments }

func (p *Attachments) Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error) {
	attempt := &store.RetrievalAttempt{Source: store.SourceAttachments, DocumentBacked: true}

	if p.agent != nil && tabular.IsTabularQuestion(req.Question) {
		if answered := p.tabular(ctx, req, attempt); answered {
			return attempt, nil
		}
	}

	docs, err := p.search.Search(ctx, req.Question, store.SearchFilter{
		SourceTypes:    []string{store.SourceTypeUser},
		ConversationID: req.ConversationID,
		TopK:           p.topK,
	})
	if err != nil {
		return nil, err
	}
	attempt.Documents = docs
	attempt.TopScore = topScore(docs)
	if len(docs) == 0 {
		return attempt, nil
	}

	attempt.Answer = p.generator.FromDocuments(ctx, req.Question, docs, req.History())
	return attempt, nil
}

// tabular fills attempt from the best matching spreadsheet attachment. A failing
// agent falls through to vector search over the same files.
func (p *Attachments) tabular(ctx context.Context, req *Request, attempt *store.RetrievalAttempt) bool {
	var sheets []store.Spreadsheet
	for _, a := range req.Attachments {
		if !a.IsSpreadsheet {
			continue
		}
		sheets = append(sheets, store.Spreadsheet{
			ID:          a.ID,
			Title:       a.FileName,
			Description: a.Description,
			StoragePath: a.StoragePath,
			SourceType:  store.SourceTypeUser,
		})
	}
	if len(sheets) == 0 {
		return false
	}

	sheet := tabular.SelectSpreadsheet(sheets, req.Question)
	if sheet == nil && len(sheets) == 1 {
		sheet = &sheets[0]
	}
	if sheet == nil {
		return false
	}

	answer, err := p.agent.Answer(ctx, *sheet, req.Question)
	if err != nil || answer == "" {
		p.logger.Warn(module, "Attachment spreadsheet not answerable, trying text search", map[string]interface{}{
			"file":  sheet.Title,
			"error": errString(err),
		})
		return false
	}

	attempt.Answer = answer
	attempt.Documents = []store.ScoredDocument{sheetDocument(*sheet, answer)}
	attempt.ExplicitEvidence = true
	return true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
