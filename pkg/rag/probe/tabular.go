package probe

import (
	"context"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/store"
	"ai-knowledge-router-be/pkg/tabular"
)

// Tabular answers from the single company spreadsheet whose description best
// matches the question.
type Tabular struct {
	catalog SpreadsheetCatalog
	agent   TabularAgent
	logger  logger.ILogger
}

func NewTabular(catalog SpreadsheetCatalog, agent TabularAgent, logger logger.ILogger) *Tabular {
	return &Tabular{
		catalog: catalog,
		agent:   agent,
		logger:  logger,
	}
}

func (p *Tabular) Source() store.Source { return store.SourceTabularAgent }

func (p *Tabular) Eligible(req *Request) bool {
	return req.Flags.Company && p.catalog != nil && p.agent != nil
}

func (p *Tabular) CitationMode(req *Request) citation.Mode { return citation.ModeGeneral }

func (p *Tabular) Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error) {
	attempt := &store.RetrievalAttempt{Source: store.SourceTabularAgent, DocumentBacked: true}

	sheets, err := p.catalog.Spreadsheets(ctx)
	if err != nil {
		return nil, err
	}
	sheet := tabular.SelectSpreadsheet(sheets, req.Question)
	if sheet == nil {
		p.logger.Debug(module, "No spreadsheet matches the question", map[string]interface{}{
			"spreadsheets": len(sheets),
		})
		return attempt, nil
	}

	answer, err := p.agent.Answer(ctx, *sheet, req.Question)
	if err != nil {
		if llm.IsProviderFailure(err) {
			return nil, err
		}
		// unreadable sheet: a fallback answer the orchestrator rejects
		attempt.Answer = constant.MessageTabularFailed
		return attempt, nil
	}
	attempt.Answer = answer
	attempt.Documents = []store.ScoredDocument{sheetDocument(*sheet, answer)}
	attempt.ExplicitEvidence = true
	return attempt, nil
}
