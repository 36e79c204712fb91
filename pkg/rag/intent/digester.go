package intent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
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

const module = "INTENT"

const historyTurns = 3

var validIntents = map[string]bool{
	store.IntentSmallTalk: true,
	store.IntentAmbiguous: true,
	store.IntentQuestion:  true,
}

var validSubtypes = map[string]bool{
	store.SubtypeGreeting:    true,
	store.SubtypeThanks:      true,
	store.SubtypeBye:         true,
	store.SubtypeAffirmation: true,
	store.SubtypeNone:        true,
}

// Cache stores digests between identical turns
type Cache interface {
	Save(key string, digest store.IntentDigest)
	Get(key string) (store.IntentDigest, bool)
}

// Digester classifies a raw user message. It never fails: every error path
// degrades to treating the message as a literal question.
type Digester struct {
	llmProvider llm.LLMProvider
	cache       Cache
	logger      logger.ILogger
}

func NewDigester(llmProvider llm.LLMProvider, cache Cache, logger logger.ILogger) *Digester {
	return &Digester{
		llmProvider: llmProvider,
		cache:       cache,
		logger:      logger,
	}
}

type classification struct {
	Intent             string   `json:"intent"`
	Subtype            string   `json:"subtype"`
	NormalizedQuestion string   `json:"normalized_question"`
	Confidence         *float64 `json:"confidence"`
}

// Digest classifies question given the recent turns, oldest first
func (d *Digester) Digest(ctx context.Context, question string, recent []store.Turn) store.IntentDigest {
	question = strings.Join(strings.Fields(question), " ")
	if question == "" {
		return store.IntentDigest{
			Intent:     store.IntentAmbiguous,
			Subtype:    store.SubtypeNone,
			Confidence: 0,
			Source:     store.DigestSourceEmpty,
		}
	}

	if subtype, ok := SmallTalkSubtype(question); ok {
		d.logger.Debug(module, "Small talk matched by lexicon", map[string]interface{}{
			"subtype": subtype,
		})
		return store.IntentDigest{
			Intent:             store.IntentSmallTalk,
			Subtype:            subtype,
			NormalizedQuestion: question,
			Confidence:         1.0,
			Source:             store.DigestSourceHeuristic,
		}
	}

	key := cacheKey(question, recent)
	if d.cache != nil {
		if cached, found := d.cache.Get(key); found {
			return cached
		}
	}

	digest, err := d.classify(ctx, question, recent)
	if err != nil {
		d.logger.Warn(module, "Intent classification degraded to literal question", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback(question)
	}

	d.logger.Info(module, "Intent digested", map[string]interface{}{
		"intent":     digest.Intent,
		"subtype":    digest.Subtype,
		"confidence": digest.Confidence,
	})
	if d.cache != nil {
		d.cache.Save(key, digest)
	}
	return digest
}

func (d *Digester) classify(ctx context.Context, question string, recent []store.Turn) (store.IntentDigest, error) {
	if d.llmProvider == nil {
		return store.IntentDigest{}, fmt.Errorf("%w: no completion backend", llm.ErrProviderError)
	}

	prompt := fmt.Sprintf(constant.IntentClassificationPrompt, history.Transcript(recent, historyTurns), question)
	response, err := d.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return store.IntentDigest{}, err
	}

	raw := llm.ExtractJSON(response)
	if raw == "" {
		return store.IntentDigest{}, fmt.Errorf("%w: no JSON object in classifier response", llm.ErrProviderError)
	}
	var parsed classification
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return store.IntentDigest{}, fmt.Errorf("%w: %v", llm.ErrProviderError, err)
	}

	return validate(parsed, question), nil
}

// validate coerces a parsed classification into the allowed value sets
func validate(parsed classification, question string) store.IntentDigest {
	intent := strings.ToLower(strings.TrimSpace(parsed.Intent))
	if !validIntents[intent] {
		intent = store.IntentQuestion
	}

	subtype := strings.ToLower(strings.TrimSpace(parsed.Subtype))
	if !validSubtypes[subtype] || intent != store.IntentSmallTalk {
		subtype = store.SubtypeNone
	}

	confidence := 0.5
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	normalized := strings.Join(strings.Fields(parsed.NormalizedQuestion), " ")
	if normalized == "" || drifted(question, normalized) {
		normalized = question
	}

	return store.IntentDigest{
		Intent:             intent,
		Subtype:            subtype,
		NormalizedQuestion: normalized,
		Confidence:         confidence,
		Source:             store.DigestSourceLLM,
	}
}

// drifted reports a rewrite that shares no keyword with the original
func drifted(original, rewrite string) bool {
	return lexical.NewVocabulary(original).Len() > 0 && lexical.Overlap(original, rewrite) == 0
}

func fallback(question string) store.IntentDigest {
	return store.IntentDigest{
		Intent:             store.IntentQuestion,
		Subtype:            store.SubtypeNone,
		NormalizedQuestion: question,
		Confidence:         0,
		Source:             store.DigestSourceFallback,
	}
}

func cacheKey(question string, recent []store.Turn) string {
	lastAnswer := ""
	if last := history.Last(recent); last != nil {
		lastAnswer = last.Answer
	}
	sum := sha256.Sum256([]byte(strings.ToLower(question) + "\x00" + lastAnswer))
	return "intent:" + hex.EncodeToString(sum[:])
}
