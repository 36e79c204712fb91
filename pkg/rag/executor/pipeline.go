package executor

import (
	"context"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/rag/composer"
	"ai-knowledge-router-be/pkg/rag/contextualizer"
	"ai-knowledge-router-be/pkg/rag/dialogue"
	"ai-knowledge-router-be/pkg/rag/intent"
	"ai-knowledge-router-be/pkg/rag/probe"
	"ai-knowledge-router-be/pkg/store"

	"golang.org/x/sync/errgroup"
)

const module = "PIPELINE"

// AttachmentLoader lists the files uploaded to a conversation
type AttachmentLoader interface {
	ForConversation(ctx context.Context, conversationID string) ([]store.Attachment, error)
}

// Router picks the source that answers a routed question
type Router interface {
	Route(ctx context.Context, req *probe.Request) store.FinalAnswer
}

// Input is one user message with the state the pipeline needs around it
type Input struct {
	ConversationID string
	Question       string
	Flags          store.ModeFlags
	// Recent holds the last turns of the conversation, oldest first
	Recent      []store.Turn
	CuratedMode bool
}

// PipelineExecutor runs one turn:
// Phase 1: dialogue + intent → Phase 2: contextualization → Phase 3: routing
type PipelineExecutor struct {
	digester       *intent.Digester
	resolver       *dialogue.Resolver
	contextualizer *contextualizer.Contextualizer
	composer       *composer.Composer
	router         Router
	attachments    AttachmentLoader
	logger         logger.ILogger
}

func NewPipelineExecutor(
	digester *intent.Digester,
	resolver *dialogue.Resolver,
	contextualizer *contextualizer.Contextualizer,
	composer *composer.Composer,
	router Router,
	attachments AttachmentLoader,
	logger logger.ILogger,
) *PipelineExecutor {
	return &PipelineExecutor{
		digester:       digester,
		resolver:       resolver,
		contextualizer: contextualizer,
		composer:       composer,
		router:         router,
		attachments:    attachments,
		logger:         logger,
	}
}

// Execute never fails: every degradation ends in a user-facing message
func (p *PipelineExecutor) Execute(ctx context.Context, in Input) store.FinalAnswer {
	question := strings.Join(strings.Fields(in.Question), " ")
	if question == "" {
		return store.FinalAnswer{
			Answer:    constant.MessageEmptyQuestion,
			Citations: []store.Citation{},
			Intent:    store.IntentAmbiguous,
			ModeFlags: in.Flags,
		}
	}

	p.logger.Info(module, "Starting execution", map[string]interface{}{
		"conversation_id": in.ConversationID,
		"question":        lexical.Truncate(question, 80),
		"company":         in.Flags.Company,
		"general":         in.Flags.General,
		"browse":          in.Flags.Browse,
	})

	// Phase 1: attachments load alongside dialogue resolution and intent
	var (
		attachments []store.Attachment
		resolution  dialogue.Resolution
		digest      store.IntentDigest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		attachments = p.loadAttachments(gctx, in.ConversationID)
		return nil
	})
	g.Go(func() error {
		resolution = p.resolver.Resolve(gctx, question, in.Recent)
		if resolution.Outcome == dialogue.OutcomeNone {
			digest = p.digester.Digest(gctx, question, in.Recent)
		}
		return nil
	})
	_ = g.Wait()

	req := &probe.Request{
		Question:         question,
		OriginalQuestion: question,
		Flags:            in.Flags,
		Recent:           in.Recent,
		Attachments:      attachments,
		ConversationID:   in.ConversationID,
		CuratedMode:      in.CuratedMode,
	}

	switch resolution.Outcome {
	case dialogue.OutcomeDeclined:
		if p.resolver.CanPrompt(in.Recent, store.DialogueStateClarification) {
			prompt := p.composer.DeclinedClarification(resolution.BaseQuestion, 0)
			p.logger.Info(module, "Confirmation declined, asking for clarification", nil)
			return promptAnswer(prompt, store.IntentQuestion, question, in.Flags)
		}
		p.logger.Info(module, "Confirmation declined past loop bound, no retrieval", nil)
		return store.FinalAnswer{
			Answer:            p.composer.NoInformation(in.Flags, len(attachments) > 0),
			Citations:         []store.Citation{},
			Intent:            store.IntentQuestion,
			EffectiveQuestion: question,
			ModeFlags:         in.Flags,
		}

	case dialogue.OutcomeConfirmed, dialogue.OutcomeClarified:
		req.Question = resolution.EffectiveQuestion
		req.Digest = resolvedDigest(resolution.EffectiveQuestion)
		if resolution.Outcome == dialogue.OutcomeConfirmed {
			req.Confirmed = true
			if resolution.ForceCompany {
				req.Flags.Company = true
			}
		}
		p.logger.Info(module, "Dialogue resolved", map[string]interface{}{
			"outcome":  string(resolution.Outcome),
			"question": lexical.Truncate(req.Question, 80),
		})
		return p.route(ctx, req)
	}

	req.Digest = digest

	switch digest.Intent {
	case store.IntentSmallTalk:
		p.logger.Info(module, "Small talk short-circuit", map[string]interface{}{
			"subtype": digest.Subtype,
		})
		return store.FinalAnswer{
			Answer:            p.composer.SmallTalk(digest.Subtype),
			Citations:         []store.Citation{},
			Confidence:        digest.Confidence,
			Intent:            store.IntentSmallTalk,
			EffectiveQuestion: question,
			ModeFlags:         in.Flags,
		}

	case store.IntentAmbiguous:
		if p.resolver.CanPrompt(in.Recent, store.DialogueStateClarification) {
			prompt := p.composer.Clarification(ctx, question, nil, digest.Confidence)
			p.logger.Info(module, "Ambiguous question, asking for clarification", nil)
			return promptAnswer(prompt, store.IntentAmbiguous, question, in.Flags)
		}
	}

	if digest.NormalizedQuestion != "" {
		req.Question = digest.NormalizedQuestion
	}

	// Phase 2: follow-ups are rewritten against the conversation
	contextualized := p.contextualizer.Contextualize(ctx, req.Question, in.Recent, req.Flags, len(attachments) > 0)
	if contextualized.NeedsContext && contextualized.EnhancedQuestion != "" {
		req.Question = contextualized.EnhancedQuestion
	}

	return p.route(ctx, req)
}

// route is Phase 3
func (p *PipelineExecutor) route(ctx context.Context, req *probe.Request) store.FinalAnswer {
	final := p.router.Route(ctx, req)
	if final.Intent == "" {
		final.Intent = req.Digest.Intent
	}
	if final.Intent == "" {
		final.Intent = store.IntentQuestion
	}
	final.EffectiveQuestion = req.Question
	final.ModeFlags = req.Flags

	p.logger.Info(module, "Execution finished", map[string]interface{}{
		"source":     string(final.Source),
		"confidence": final.Confidence,
		"citations":  len(final.Citations),
		"prompted":   final.Prompt != nil,
	})
	return final
}

func (p *PipelineExecutor) loadAttachments(ctx context.Context, conversationID string) []store.Attachment {
	if p.attachments == nil || conversationID == "" {
		return nil
	}
	attachments, err := p.attachments.ForConversation(ctx, conversationID)
	if err != nil {
		p.logger.Warn(module, "Attachment lookup failed, continuing without", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return nil
	}
	return attachments
}

// resolvedDigest describes a question the user already settled through dialogue
func resolvedDigest(question string) store.IntentDigest {
	return store.IntentDigest{
		Intent:             store.IntentQuestion,
		Subtype:            store.SubtypeNone,
		NormalizedQuestion: question,
		Confidence:         1.0,
		Source:             store.DigestSourceHeuristic,
	}
}

func promptAnswer(prompt store.ComposedPrompt, intent, question string, flags store.ModeFlags) store.FinalAnswer {
	return store.FinalAnswer{
		Answer:            prompt.Text,
		Citations:         []store.Citation{},
		Confidence:        prompt.Confidence,
		Intent:            intent,
		Prompt:            &prompt,
		EffectiveQuestion: question,
		ModeFlags:         flags,
	}
}
