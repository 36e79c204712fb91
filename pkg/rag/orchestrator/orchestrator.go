package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/rag/composer"
	"ai-knowledge-router-be/pkg/rag/grounding"
	"ai-knowledge-router-be/pkg/rag/probe"
	"ai-knowledge-router-be/pkg/search"
	"ai-knowledge-router-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const module = "ORCHESTRATOR"

const maxClarificationOptions = composer.MaxOptions

// errProbePanic marks a probe that panicked
var errProbePanic = errors.New("probe panicked")

// PromptGate is the dialogue loop guard
type PromptGate interface {
	CanPrompt(recent []store.Turn, kind store.DialogueState) bool
}

// Orchestrator runs the probes in order and stops at the first accepted attempt
type Orchestrator struct {
	probes       []probe.Probe
	evaluator    *grounding.Evaluator
	selector     *citation.Selector
	composer     *composer.Composer
	gate         PromptGate
	threshold    float64
	probeTimeout time.Duration
	tracer       trace.Tracer
	logger       logger.ILogger
}

func NewOrchestrator(
	probes []probe.Probe,
	evaluator *grounding.Evaluator,
	selector *citation.Selector,
	composer *composer.Composer,
	gate PromptGate,
	cfg config.RoutingConfig,
	logger logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		probes:       probes,
		evaluator:    evaluator,
		selector:     selector,
		composer:     composer,
		gate:         gate,
		threshold:    cfg.GroundingThreshold,
		probeTimeout: cfg.ProbeTimeout,
		tracer:       otel.Tracer("knowledge-router/orchestrator"),
		logger:       logger,
	}
}

// outcome is the per-request record of what every probe did
type outcome struct {
	attempts         []*store.RetrievalAttempt
	ran              int
	providerFailures int
}

// Route answers req. It never returns an error: failing probes are logged and
// skipped, and exhausting every probe yields a clarification or a notice.
func (o *Orchestrator) Route(ctx context.Context, req *probe.Request) store.FinalAnswer {
	var out outcome

	for _, p := range o.probes {
		if ctx.Err() != nil {
			o.logger.Warn(module, "Request cancelled, stopping probes", map[string]interface{}{
				"error": ctx.Err().Error(),
			})
			break
		}
		if !p.Eligible(req) {
			continue
		}

		out.ran++
		attempt, err := o.run(ctx, p, req)
		if err != nil {
			if isProviderFailure(err) {
				out.providerFailures++
			}
			continue
		}

		if attempt.Prompt != nil {
			return o.prompted(req, attempt)
		}

		out.attempts = append(out.attempts, attempt)
		if attempt.Answer == constant.MessageProviderUnavailable {
			out.providerFailures++
		}
		if attempt.Accepted {
			return o.answer(req, p, attempt)
		}
	}

	return o.exhausted(ctx, req, out)
}

// run executes one probe under its own deadline and span. Panics become errors.
func (o *Orchestrator) run(ctx context.Context, p probe.Probe, req *probe.Request) (attempt *store.RetrievalAttempt, err error) {
	source := string(p.Source())
	started := time.Now()

	if o.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.probeTimeout)
		defer cancel()
	}
	ctx, span := o.tracer.Start(ctx, "probe."+source, trace.WithAttributes(attribute.String("probe.source", source)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			attempt, err = nil, fmt.Errorf("%w: %v", errProbePanic, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.logger.Error(module, "Probe failed, continuing", map[string]interface{}{
				"source":      source,
				"error":       err.Error(),
				"duration_ms": time.Since(started).Milliseconds(),
			})
		}
	}()

	attempt, err = p.Attempt(ctx, req)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		attempt = &store.RetrievalAttempt{}
	}
	attempt.Source = p.Source()

	if attempt.Prompt == nil {
		o.evaluate(ctx, req, attempt)
	}

	span.SetAttributes(
		attribute.Bool("probe.accepted", attempt.Accepted),
		attribute.Float64("probe.grounding", attempt.GroundingScore),
		attribute.Int("probe.documents", len(attempt.Documents)),
	)
	o.logger.Info(module, "Probe finished", map[string]interface{}{
		"source":      source,
		"documents":   len(attempt.Documents),
		"grounding":   attempt.GroundingScore,
		"relevant":    attempt.Relevant,
		"accepted":    attempt.Accepted,
		"prompt":      attempt.Prompt != nil,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return attempt, nil
}

// evaluate applies the acceptance rule shared by every probe
func (o *Orchestrator) evaluate(ctx context.Context, req *probe.Request, attempt *store.RetrievalAttempt) {
	if attempt.Answer == "" || grounding.IsFallbackMessage(attempt.Answer) {
		attempt.Accepted = false
		return
	}

	attempt.Relevant = !o.evaluator.IsIrrelevant(attempt.Answer, req.Question)
	if !attempt.Relevant {
		attempt.Accepted = false
		return
	}

	if !attempt.DocumentBacked {
		attempt.Accepted = true
		return
	}

	if len(attempt.Documents) > 0 {
		attempt.GroundingScore = o.evaluator.Score(ctx, req.Question, attempt.Answer, attempt.Documents)
	}
	attempt.Accepted = attempt.GroundingScore >= o.threshold || (attempt.ExplicitEvidence && len(attempt.Documents) > 0)
}

func (o *Orchestrator) answer(req *probe.Request, p probe.Probe, attempt *store.RetrievalAttempt) store.FinalAnswer {
	citations := o.selector.Citations(attempt.Documents, p.CitationMode(req))
	confidence := o.confidence(req, attempt)

	o.logger.Info(module, "Answer accepted", map[string]interface{}{
		"source":     string(attempt.Source),
		"citations":  len(citations),
		"confidence": confidence,
	})
	return store.FinalAnswer{
		Answer:            attempt.Answer,
		Citations:         citations,
		Confidence:        confidence,
		Source:            attempt.Source,
		Intent:            req.Digest.Intent,
		EffectiveQuestion: req.Question,
		ModeFlags:         req.Flags,
	}
}

// confidence reports the retrieval score when the source ranks, the grounding
// score for unranked evidence and the classifier confidence otherwise
func (o *Orchestrator) confidence(req *probe.Request, attempt *store.RetrievalAttempt) float64 {
	switch {
	case attempt.TopScore != nil:
		return clamp(*attempt.TopScore)
	case attempt.DocumentBacked && attempt.GroundingScore > 0:
		return clamp(attempt.GroundingScore)
	default:
		return clamp(req.Digest.Confidence)
	}
}

func (o *Orchestrator) prompted(req *probe.Request, attempt *store.RetrievalAttempt) store.FinalAnswer {
	prompt := attempt.Prompt
	return store.FinalAnswer{
		Answer:            prompt.Text,
		Citations:         []store.Citation{},
		Confidence:        prompt.Confidence,
		Source:            attempt.Source,
		Intent:            req.Digest.Intent,
		Prompt:            prompt,
		EffectiveQuestion: req.Question,
		ModeFlags:         req.Flags,
	}
}

// exhausted handles a request no probe could answer
func (o *Orchestrator) exhausted(ctx context.Context, req *probe.Request, out outcome) store.FinalAnswer {
	final := store.FinalAnswer{
		Citations:         []store.Citation{},
		Intent:            req.Digest.Intent,
		EffectiveQuestion: req.Question,
		ModeFlags:         req.Flags,
	}

	if out.ran > 0 && out.providerFailures == out.ran {
		o.logger.Warn(module, "Every probe failed on its provider", map[string]interface{}{
			"probes": out.ran,
		})
		final.Answer = constant.MessageProviderUnavailable
		return final
	}

	wantsClarification := req.Digest.Intent == store.IntentAmbiguous || req.Flags.Company
	if wantsClarification && o.canPrompt(req.Recent, store.DialogueStateClarification) {
		prompt := o.composer.Clarification(ctx, req.Question, clarificationOptions(out.attempts), req.Digest.Confidence)
		o.logger.Info(module, "No probe accepted, asking for clarification", map[string]interface{}{
			"probes":  out.ran,
			"options": len(prompt.Options),
		})
		final.Answer = prompt.Text
		final.Confidence = prompt.Confidence
		final.Prompt = &prompt
		return final
	}

	final.Answer = o.composer.NoInformation(req.Flags, len(req.Attachments) > 0)
	o.logger.Info(module, "No probe accepted, returning no-information notice", map[string]interface{}{
		"probes": out.ran,
	})
	return final
}

func (o *Orchestrator) canPrompt(recent []store.Turn, kind store.DialogueState) bool {
	return o.gate == nil || o.gate.CanPrompt(recent, kind)
}

// clarificationOptions offers the titles of the strongest rejected documents
// when there are at least two distinct ones
func clarificationOptions(attempts []*store.RetrievalAttempt) []string {
	seen := make(map[string]bool)
	var options []string
	for _, a := range attempts {
		for _, d := range a.Documents {
			title := d.Metadata.Title
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			options = append(options, title)
			if len(options) == maxClarificationOptions {
				return options
			}
		}
	}
	if len(options) < 2 {
		return nil
	}
	return options
}

func isProviderFailure(err error) bool {
	return llm.IsProviderFailure(err) || errors.Is(err, search.ErrSearchUnavailable)
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
