package probe

import (
	"context"
	"fmt"
	"strings"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/store"
)

const maxRefinedLength = 300

// PromptGate is the dialogue loop guard
type PromptGate interface {
	CanPrompt(recent []store.Turn, kind store.DialogueState) bool
}

// Confirmer composes a confirmation prompt
type Confirmer interface {
	Confirmation(proposed string, confidence float64) store.ComposedPrompt
}

// KnowledgeBase searches the curated index restricted to trusted source types.
// Weak results in curated mode turn into a one-time confirmation prompt.
type KnowledgeBase struct {
	search      VectorSearcher
	generator   AnswerGenerator
	llmProvider llm.LLMProvider
	gate        PromptGate
	confirmer   Confirmer
	trusted     []string
	topK        int
	lowScore    float64
	logger      logger.ILogger
}

func NewKnowledgeBase(
	search VectorSearcher,
	generator AnswerGenerator,
	llmProvider llm.LLMProvider,
	gate PromptGate,
	confirmer Confirmer,
	cfg config.RoutingConfig,
	logger logger.ILogger,
) *KnowledgeBase {
	return &KnowledgeBase{
		search:      search,
		generator:   generator,
		llmProvider: llmProvider,
		gate:        gate,
		confirmer:   confirmer,
		trusted:     cfg.KBTrustedSourceTypes,
		topK:        cfg.KBTopK,
		lowScore:    cfg.KBLowScoreThreshold,
		logger:      logger,
	}
}

func (p *KnowledgeBase) Source() store.Source { return store.SourceKnowledgeBase }

func (p *KnowledgeBase) Eligible(req *Request) bool { return req.Flags.Company }

func (p *KnowledgeBase) CitationMode(req *Request) citation.Mode {
	if req.CuratedMode {
		return citation.ModeCurated
	}
	return citation.ModeGeneral
}

func (p *KnowledgeBase) Attempt(ctx context.Context, req *Request) (*store.RetrievalAttempt, error) {
	docs, err := p.search.Search(ctx, req.Question, store.SearchFilter{
		SourceTypes: p.trusted,
		TopK:        p.topK,
	})
	if err != nil {
		return nil, err
	}

	attempt := &store.RetrievalAttempt{
		Source:         store.SourceKnowledgeBase,
		Documents:      docs,
		TopScore:       topScore(docs),
		DocumentBacked: true,
	}

	top := 0.0
	if attempt.TopScore != nil {
		top = *attempt.TopScore
	}
	weak := len(docs) == 0 || top < p.lowScore
	if weak && p.shouldConfirm(req) {
		refined := p.refine(ctx, req.Question)
		prompt := p.confirmer.Confirmation(refined, req.Digest.Confidence)
		p.logger.Info(module, "Knowledge base results weak, asking for confirmation", map[string]interface{}{
			"documents": len(docs),
			"top_score": top,
			"refined":   refined,
		})
		attempt.Prompt = &prompt
		return attempt, nil
	}

	if len(docs) == 0 {
		return attempt, nil
	}
	attempt.Answer = p.generator.FromDocuments(ctx, req.Question, docs, req.History())
	return attempt, nil
}

func (p *KnowledgeBase) shouldConfirm(req *Request) bool {
	if !req.CuratedMode || req.Confirmed || p.confirmer == nil {
		return false
	}
	return p.gate == nil || p.gate.CanPrompt(req.Recent, store.DialogueStateConfirmation)
}

// refine asks the model for a clearer search question. Rewrites that fail,
// span lines or share no keyword with the question are dropped.
func (p *KnowledgeBase) refine(ctx context.Context, question string) string {
	if p.llmProvider == nil {
		return question
	}
	out, err := p.llmProvider.Generate(ctx, fmt.Sprintf(constant.RefineQuestionPrompt, question), llm.WithTemperature(0.2))
	if err != nil {
		p.logger.Warn(module, "Question refinement failed", map[string]interface{}{
			"error": err.Error(),
		})
		return question
	}

	refined := strings.Trim(strings.TrimSpace(out), `"'`)
	if refined == "" || strings.Contains(refined, "\n") || len([]rune(refined)) > maxRefinedLength {
		return question
	}
	if lexical.NewVocabulary(question).Len() > 0 && lexical.Overlap(question, refined) == 0 {
		return question
	}
	return refined
}
