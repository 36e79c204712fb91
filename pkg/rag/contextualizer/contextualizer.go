package contextualizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/rag/history"
	"ai-knowledge-router-be/pkg/store"
)

const module = "CONTEXT"

const (
	shortQuestionTokens = 4
	historyTurns        = 4
	topicTurns          = 2
	topicKeywords       = 4
	spliceConfidence    = 0.3
)

var pronouns = map[string]bool{
	"itu": true, "tersebut": true, "ini": true, "dia": true, "mereka": true, "sana": true,
	"it": true, "its": true, "that": true, "this": true, "they": true, "them": true,
	"those": true, "these": true, "there": true, "he": true, "she": true, "him": true, "her": true,
}

var openers = []string{
	"what about", "how about", "and", "also", "then", "so",
	"bagaimana dengan", "gimana dengan", "kalau", "kalo", "terus", "lalu", "trus", "dan", "juga",
	"how", "what", "when", "where", "why", "which",
	"bagaimana", "gimana", "apa", "kapan", "dimana", "mengapa", "kenapa", "berapa",
}

// Result is the outcome of Contextualize
type Result struct {
	NeedsContext     bool
	EnhancedQuestion string
	Topic            string
	Confidence       float64
}

// Contextualizer rewrites elliptical follow-ups into self-contained questions
type Contextualizer struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewContextualizer(llmProvider llm.LLMProvider, logger logger.ILogger) *Contextualizer {
	return &Contextualizer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

type rewrite struct {
	EnhancedQuestion string   `json:"enhanced_question"`
	Topic            string   `json:"topic"`
	Confidence       *float64 `json:"confidence"`
}

// Contextualize returns question unchanged with zero confidence unless it looks
// like a follow-up in a flow that searches company sources or attachments.
func (c *Contextualizer) Contextualize(ctx context.Context, question string, recent []store.Turn, flags store.ModeFlags, hasAttachments bool) Result {
	unchanged := Result{EnhancedQuestion: question}
	if len(recent) == 0 || !(flags.Company || hasAttachments) || !NeedsContext(question) {
		return unchanged
	}

	if result, ok := c.rewrite(ctx, question, recent); ok {
		c.logger.Info(module, "Question contextualized", map[string]interface{}{
			"original": question,
			"enhanced": result.EnhancedQuestion,
			"topic":    result.Topic,
		})
		return result
	}

	result := splice(question, recent)
	if result.NeedsContext {
		c.logger.Info(module, "Question contextualized by topic splice", map[string]interface{}{
			"original": question,
			"enhanced": result.EnhancedQuestion,
		})
	}
	return result
}

// NeedsContext is the cheap pre-filter: short questions, pronoun references
// and bare follow-up openers.
func NeedsContext(question string) bool {
	tokens := lexical.Tokenize(question)
	if len(tokens) == 0 {
		return false
	}
	if len(tokens) <= shortQuestionTokens {
		return true
	}
	for _, tok := range tokens {
		if pronouns[tok] || (strings.HasSuffix(tok, "nya") && len(tok) > 5) {
			return true
		}
	}
	joined := strings.Join(tokens, " ")
	for _, o := range openers {
		if strings.HasPrefix(joined, o+" ") && len(lexical.Keywords(question)) <= 2 {
			return true
		}
	}
	return false
}

func (c *Contextualizer) rewrite(ctx context.Context, question string, recent []store.Turn) (Result, bool) {
	if c.llmProvider == nil {
		return Result{}, false
	}

	prompt := fmt.Sprintf(constant.ContextualizePrompt, history.Transcript(recent, historyTurns), question)
	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Warn(module, "Contextualize rewrite failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Result{}, false
	}

	var parsed rewrite
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &parsed); err != nil {
		c.logger.Warn(module, "Contextualize rewrite returned malformed JSON", map[string]interface{}{
			"response": lexical.Truncate(response, 200),
		})
		return Result{}, false
	}

	enhanced := strings.Join(strings.Fields(parsed.EnhancedQuestion), " ")
	if enhanced == "" {
		return Result{}, false
	}

	confidence := 0.5
	if parsed.Confidence != nil {
		confidence = clamp(*parsed.Confidence)
	}
	return Result{
		NeedsContext:     true,
		EnhancedQuestion: enhanced,
		Topic:            strings.TrimSpace(parsed.Topic),
		Confidence:       confidence,
	}, true
}

// splice appends the topic keywords of the last turns the question lacks
func splice(question string, recent []store.Turn) Result {
	own := lexical.NewVocabulary(question)
	var topic []string
	seen := make(map[string]bool)

	turns := history.Tail(recent, topicTurns)
	for i := len(turns) - 1; i >= 0 && len(topic) < topicKeywords; i-- {
		for _, kw := range lexical.Keywords(turns[i].Question) {
			if own.Contains(kw) || seen[kw] {
				continue
			}
			seen[kw] = true
			topic = append(topic, kw)
			if len(topic) == topicKeywords {
				break
			}
		}
	}

	if len(topic) == 0 {
		return Result{EnhancedQuestion: question}
	}
	joined := strings.Join(topic, " ")
	return Result{
		NeedsContext:     true,
		EnhancedQuestion: fmt.Sprintf("%s (%s)", strings.TrimSpace(question), joined),
		Topic:            joined,
		Confidence:       spliceConfidence,
	}
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
