package probe

import (
	"context"

	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/store"
)

// GeneralLLM answers from the model's own knowledge, without retrieval
type GeneralLLM struct {
	generator AnswerGenerator
}

func NewGeneralLLM(generator AnswerGenerator) *GeneralLLM {
	return &GeneralLLM{generator: generator}
}

func (p *GeneralLLM) Source() store.Source { return store.SourceGeneralLLM }

func (p *GeneralLLM) Eligible(req *Request) bool { return req.Flags.General }

func (p *GeneralLLM) CitationMode(req *Request) citation.Mode { return citation.ModeGeneral }

func (p *GeneralLLM) Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error) {
	return &store.RetrievalAttempt{
		Source: store.SourceGeneralLLM,
		Answer: p.generator.General(ctx, req.Question, req.History()),
	}, nil
}
