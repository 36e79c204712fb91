package probe

import (
	"context"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/search"
	"ai-knowledge-router-be/pkg/store"
)

// WebSearch answers from the open web. Results sharing no keyword with the
// question are dropped before composition.
type WebSearch struct {
	web        WebSearcher
	generator  AnswerGenerator
	minOverlap int
	logger     logger.ILogger
}

func NewWebSearch(web WebSearcher, generator AnswerGenerator, logger logger.ILogger) *WebSearch {
	return &WebSearch{
		web:        web,
		generator:  generator,
		minOverlap: 1,
		logger:     logger,
	}
}

func (p *WebSearch) Source() store.Source { return store.SourceWebSearch }

func (p *WebSearch) Eligible(req *Request) bool { return req.Flags.Browse && p.web != nil }

func (p *WebSearch) CitationMode(req *Request) citation.Mode { return citation.ModeWeb }

func (p *WebSearch) Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error) {
	results, err := p.web.Search(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	relevant := search.FilterByOverlap(results, req.Question, p.minOverlap)
	p.logger.Debug(module, "Web results filtered", map[string]interface{}{
		"results":  len(results),
		"relevant": len(relevant),
	})

	attempt := &store.RetrievalAttempt{
		Source:         store.SourceWebSearch,
		Documents:      relevant,
		DocumentBacked: true,
	}
	if len(relevant) == 0 {
		return attempt, nil
	}
	attempt.Answer = p.generator.FromWebResults(ctx, req.Question, relevant, req.History())
	return attempt, nil
}
