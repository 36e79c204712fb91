package probe

import (
	"context"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/store"
)

// CorporateSite answers from the allow-listed company domains
type CorporateSite struct {
	site      SiteSearcher
	generator AnswerGenerator
	logger    logger.ILogger
}

func NewCorporateSite(site SiteSearcher, generator AnswerGenerator, logger logger.ILogger) *CorporateSite {
	return &CorporateSite{
		site:      site,
		generator: generator,
		logger:    logger,
	}
}

func (p *CorporateSite) Source() store.Source { return store.SourceCorporateSite }

func (p *CorporateSite) Eligible(req *Request) bool {
	return req.Flags.Company && p.site != nil && p.site.Configured()
}

func (p *CorporateSite) CitationMode(req *Request) citation.Mode { return citation.ModeWeb }

func (p *CorporateSite) Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error) {
	docs, err := p.site.Search(ctx, req.Question)
	if err != nil && len(docs) == 0 {
		return nil, err
	}

	attempt := &store.RetrievalAttempt{
		Source:         store.SourceCorporateSite,
		Documents:      docs,
		TopScore:       topScore(docs),
		DocumentBacked: true,
	}
	if len(docs) == 0 {
		return attempt, nil
	}
	attempt.Answer = p.generator.FromWebResults(ctx, req.Question, docs, req.History())
	return attempt, nil
}
