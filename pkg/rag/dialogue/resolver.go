package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/rag/history"
	"ai-knowledge-router-be/pkg/store"
)

const module = "DIALOGUE"

// Outcome is how the new message resolved a pending prompt
type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeDeclined  Outcome = "declined"
	OutcomeClarified Outcome = "clarified"
)

// Resolution is the result of Resolve
type Resolution struct {
	Outcome Outcome
	Signal  store.DialogueSignal
	// EffectiveQuestion is the question to route; empty when declined
	EffectiveQuestion string
	// ForceCompany is set when a confirmed question must search company sources
	ForceCompany bool
	// BaseQuestion is what a follow-up clarification should refer to
	BaseQuestion string
}

var (
	letterReply = regexp.MustCompile(`(?i)^(?:opsi|pilihan|option|jawaban)?\s*\(?([a-d])[\).:]?$`)
	numberReply = regexp.MustCompile(`(?i)^(?:opsi|pilihan|option|nomor|no\.?)?\s*([1-4])[\).:]?$`)
)

// Resolver recovers the dialogue state from the turn history and resolves the
// user's reply against it.
type Resolver struct {
	llmProvider llm.LLMProvider
	loopWindow  int
	loopMax     int
	logger      logger.ILogger
}

func NewResolver(llmProvider llm.LLMProvider, cfg config.RoutingConfig, logger logger.ILogger) *Resolver {
	return &Resolver{
		llmProvider: llmProvider,
		loopWindow:  cfg.LoopWindow,
		loopMax:     cfg.LoopMaxPrompts,
		logger:      logger,
	}
}

// Signal returns what the newest turn left pending
func (r *Resolver) Signal(recent []store.Turn) store.DialogueSignal {
	last := history.Last(recent)
	if last == nil {
		return store.DialogueSignal{Kind: store.DialogueStateNone}
	}
	signal, ok := signalOf(*last)
	if !ok {
		r.logger.Warn(module, "Previous answer carries both marker families, ignoring", map[string]interface{}{
			"turn_id": last.ID,
		})
	}
	return signal
}

// CanPrompt reports whether another prompt of kind stays within the loop bound
func (r *Resolver) CanPrompt(recent []store.Turn, kind store.DialogueState) bool {
	count := 0
	for _, t := range history.Tail(recent, r.loopWindow) {
		if s, _ := signalOf(t); s.Kind == kind {
			count++
		}
	}
	if count >= r.loopMax {
		r.logger.Info(module, "Loop guard suppressed prompt", map[string]interface{}{
			"kind":   string(kind),
			"count":  count,
			"window": r.loopWindow,
		})
		return false
	}
	return true
}

// Resolve interprets question against the pending prompt, if any
func (r *Resolver) Resolve(ctx context.Context, question string, recent []store.Turn) Resolution {
	signal := r.Signal(recent)

	switch signal.Kind {
	case store.DialogueStateConfirmation:
		base := ""
		if last := history.Last(recent); last != nil {
			base = last.Question
		}
		if r.confirmed(ctx, signal.ProposedQuestion, question) {
			r.logger.Info(module, "Confirmation accepted", map[string]interface{}{
				"proposed": signal.ProposedQuestion,
			})
			return Resolution{
				Outcome:           OutcomeConfirmed,
				Signal:            signal,
				EffectiveQuestion: signal.ProposedQuestion,
				ForceCompany:      true,
			}
		}
		r.logger.Info(module, "Confirmation declined", nil)
		return Resolution{Outcome: OutcomeDeclined, Signal: signal, BaseQuestion: base}

	case store.DialogueStateClarification:
		response := ResolveOption(question, signal.Options)
		merged := r.merge(ctx, signal.BaseQuestion, response)
		r.logger.Info(module, "Clarification merged", map[string]interface{}{
			"base":     signal.BaseQuestion,
			"response": response,
			"merged":   merged,
		})
		return Resolution{
			Outcome:           OutcomeClarified,
			Signal:            signal,
			EffectiveQuestion: merged,
			BaseQuestion:      signal.BaseQuestion,
		}
	}

	return Resolution{Outcome: OutcomeNone, Signal: signal, EffectiveQuestion: question}
}

// confirmed tries the closed vocabulary first and then a strict true/false
// classifier. Anything else counts as a denial.
func (r *Resolver) confirmed(ctx context.Context, proposed, reply string) bool {
	switch classifyReply(reply) {
	case verdictAffirm:
		return true
	case verdictDeny:
		return false
	}
	if r.llmProvider == nil || strings.TrimSpace(reply) == "" {
		return false
	}

	prompt := fmt.Sprintf(constant.ConfirmationClassifierPrompt, proposed, reply)
	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0), llm.WithMaxTokens(5))
	if err != nil {
		r.logger.Warn(module, "Confirmation classifier failed, treating as deny", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	answer := strings.ToLower(strings.Trim(strings.TrimSpace(response), ".\"'` "))
	switch answer {
	case "true":
		return true
	case "false":
		return false
	default:
		r.logger.Debug(module, "Confirmation classifier returned non-boolean", map[string]interface{}{
			"response": lexical.Truncate(response, 80),
		})
		return false
	}
}

// ResolveOption maps a reply to one of the offered options by letter, number
// or literal match. Unmatched replies are returned as free text.
func ResolveOption(reply string, options []string) string {
	reply = strings.Join(strings.Fields(reply), " ")
	if len(options) == 0 {
		return reply
	}

	if m := letterReply.FindStringSubmatch(reply); len(m) == 2 {
		idx := int(strings.ToUpper(m[1])[0] - 'A')
		if idx < len(options) {
			return options[idx]
		}
	}
	if m := numberReply.FindStringSubmatch(reply); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= len(options) {
			return options[n-1]
		}
	}

	normalized := lexical.Normalize(reply)
	for _, o := range options {
		if lexical.Normalize(o) == normalized {
			return o
		}
	}
	for _, o := range options {
		if n := lexical.Normalize(o); n != "" && strings.Contains(normalized, n) {
			return o
		}
	}
	return reply
}

// merge folds the clarification into the base question, falling back to
// "{base} ({response})" when the model is unavailable or misbehaves.
func (r *Resolver) merge(ctx context.Context, base, response string) string {
	base = strings.TrimSpace(base)
	response = strings.TrimSpace(response)
	if base == "" {
		return response
	}
	if response == "" {
		return base
	}
	concatenated := fmt.Sprintf("%s (%s)", base, response)
	if r.llmProvider == nil {
		return concatenated
	}

	prompt := fmt.Sprintf(constant.ClarificationMergePrompt, base, response)
	merged, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		r.logger.Warn(module, "Clarification merge failed, concatenating", map[string]interface{}{
			"error": err.Error(),
		})
		return concatenated
	}

	merged = strings.Trim(strings.TrimSpace(merged), `"`)
	limit := 2*len([]rune(concatenated)) + 40
	if merged == "" || len([]rune(merged)) > limit || strings.Contains(merged, "\n") {
		return concatenated
	}
	return merged
}
