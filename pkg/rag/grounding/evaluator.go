package grounding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/store"
)

const module = "GROUNDING"

// Grounding modes
const (
	ModeLexical = "lexical"
	ModeLLM     = "llm"
)

const (
	shortAnswerWords     = 10
	numericAnswerWords   = 30
	selfAssessDocLimit   = 5
	selfAssessSnippetLen = 800
)

// refusalPhrases mark answers that decline instead of answering
var refusalPhrases = []string{
	"i don't know",
	"i do not know",
	"i'm not sure",
	"insufficient information",
	"not enough information",
	"no information available",
	"i cannot provide",
	"i can't provide",
	"as an ai",
	"outside the scope",
	"tidak tahu",
	"tidak memiliki informasi",
	"informasi tidak cukup",
	"informasi yang cukup",
	"tidak ditemukan informasi",
	"tidak dapat memberikan",
	"tidak bisa memberikan",
	"di luar cakupan",
	"bukan wewenang saya",
}

// Evaluator scores answers against evidence and the question
type Evaluator struct {
	llmProvider llm.LLMProvider
	mode        string
	logger      logger.ILogger
}

func NewEvaluator(llmProvider llm.LLMProvider, mode string, logger logger.ILogger) *Evaluator {
	if mode != ModeLLM {
		mode = ModeLexical
	}
	return &Evaluator{
		llmProvider: llmProvider,
		mode:        mode,
		logger:      logger,
	}
}

// Grounding is the share of the answer's vocabulary found in each document,
// averaged over documents. Per document the intersection is divided by the
// smaller of the two vocabularies, so a document that fully contains the
// answer always scores 1.0.
func (e *Evaluator) Grounding(answer string, docs []store.ScoredDocument) float64 {
	answerVocab := lexical.NewVocabulary(answer)
	if answerVocab.Len() == 0 || len(docs) == 0 {
		return 0
	}

	total := 0.0
	for _, doc := range docs {
		docVocab := lexical.NewVocabulary(doc.Metadata.Title + " " + doc.Content)
		denom := answerVocab.Len()
		if docVocab.Len() < denom {
			denom = docVocab.Len()
		}
		if denom == 0 {
			continue
		}
		total += float64(answerVocab.Intersect(docVocab)) / float64(denom)
	}

	score := total / float64(len(docs))
	if score > 1 {
		score = 1
	}
	return score
}

// Score picks the configured grounding path
func (e *Evaluator) Score(ctx context.Context, question, answer string, docs []store.ScoredDocument) float64 {
	if e.mode == ModeLLM && e.llmProvider != nil {
		return e.SelfAssess(ctx, question, answer, docs)
	}
	return e.Grounding(answer, docs)
}

type selfAssessment struct {
	Grounding float64 `json:"grounding"`
}

// SelfAssess asks the model how much of the answer the references support.
// Any failure degrades to the lexical score.
func (e *Evaluator) SelfAssess(ctx context.Context, question, answer string, docs []store.ScoredDocument) float64 {
	lexicalScore := e.Grounding(answer, docs)
	if len(docs) == 0 || strings.TrimSpace(answer) == "" {
		return lexicalScore
	}

	var refs strings.Builder
	for i, doc := range docs {
		if i >= selfAssessDocLimit {
			break
		}
		fmt.Fprintf(&refs, "[%d] %s\n%s\n\n", i+1, doc.Metadata.Title, lexical.Truncate(doc.Content, selfAssessSnippetLen))
	}

	prompt := fmt.Sprintf(constant.GroundingSelfAssessmentPrompt, refs.String(), question, answer)
	response, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		e.logger.Warn(module, "Self-assessment failed, using lexical score", map[string]interface{}{
			"error": err.Error(),
		})
		return lexicalScore
	}

	var parsed selfAssessment
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &parsed); err != nil {
		e.logger.Warn(module, "Self-assessment returned malformed JSON", map[string]interface{}{
			"response": lexical.Truncate(response, 200),
		})
		return lexicalScore
	}

	return clamp(parsed.Grounding)
}

// IsIrrelevant flags refusals and short answers that share nothing with the question.
// Any keyword overlap counts as relevant.
func (e *Evaluator) IsIrrelevant(answer, question string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	if lexical.Overlap(question, answer) > 0 {
		return false
	}

	words := lexical.WordCount(answer)
	if words < shortAnswerWords {
		return true
	}
	if lexical.HasDigit(question) && !lexical.HasDigit(answer) && words < numericAnswerWords {
		return true
	}
	return false
}

// IsFallbackMessage reports whether answer is one of the static fallback messages
func IsFallbackMessage(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return false
	}
	for _, msg := range constant.FallbackMessages {
		if trimmed == msg || strings.Contains(trimmed, msg) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
