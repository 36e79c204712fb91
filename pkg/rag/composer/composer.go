package composer

import (
	"context"
	"fmt"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/store"
)

const module = "COMPOSER"

// MaxOptions is the number of lettered options a clarification can offer
const MaxOptions = 4

const maxFollowUpLength = 240

var optionLetters = []string{"A", "B", "C", "D"}

// Composer builds the outbound messages that are not answers: confirmation and
// clarification prompts, small-talk replies and no-information notices.
type Composer struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewComposer(llmProvider llm.LLMProvider, logger logger.ILogger) *Composer {
	return &Composer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Confirmation asks the user to confirm a reinterpreted question. The question
// is quoted verbatim so it can be recovered from the text alone.
func (c *Composer) Confirmation(proposed string, confidence float64) store.ComposedPrompt {
	proposed = strings.ReplaceAll(strings.TrimSpace(proposed), `"`, "'")
	return store.ComposedPrompt{
		Text:             fmt.Sprintf(constant.ConfirmationTemplate, proposed),
		State:            store.DialogueStateConfirmation,
		ProposedQuestion: proposed,
		Confidence:       confidence,
	}
}

// Clarification asks for the missing detail of base, optionally offering up to
// four lettered options.
func (c *Composer) Clarification(ctx context.Context, base string, options []string, confidence float64) store.ComposedPrompt {
	options = normalizeOptions(options)

	var b strings.Builder
	b.WriteString(constant.MessageDefaultClarification)
	if followUp := c.followUp(ctx, base); followUp != "" {
		b.WriteString(" ")
		b.WriteString(followUp)
	}
	writeOptions(&b, options)

	return store.ComposedPrompt{
		Text:         b.String(),
		State:        store.DialogueStateClarification,
		BaseQuestion: base,
		Options:      options,
		Confidence:   confidence,
	}
}

// DeclinedClarification follows a denied confirmation. It never calls the model.
func (c *Composer) DeclinedClarification(base string, confidence float64) store.ComposedPrompt {
	return store.ComposedPrompt{
		Text:         constant.MessageDeclinedClarification,
		State:        store.DialogueStateClarification,
		BaseQuestion: base,
		Confidence:   confidence,
	}
}

// SmallTalk returns the canned reply for a small-talk subtype
func (c *Composer) SmallTalk(subtype string) string {
	switch subtype {
	case store.SubtypeThanks:
		return constant.MessageSmallTalkThanks
	case store.SubtypeBye:
		return constant.MessageSmallTalkBye
	case store.SubtypeAffirmation:
		return constant.MessageSmallTalkAffirmation
	default:
		return constant.MessageSmallTalkGreeting
	}
}

// NoInformation returns the notice for the highest-priority active mode
func (c *Composer) NoInformation(flags store.ModeFlags, hasAttachments bool) string {
	switch {
	case flags.Company:
		return constant.MessageNoInfoCompany
	case flags.General:
		return constant.MessageNoInfoGeneral
	case flags.Browse:
		return constant.MessageNoInfoBrowse
	case hasAttachments:
		return constant.MessageNoInfoAttachments
	default:
		return constant.MessageNoSourceSelected
	}
}

// followUp asks the model for one targeted question. Output that is empty, too
// long or carries a dialogue marker is discarded.
func (c *Composer) followUp(ctx context.Context, base string) string {
	if c.llmProvider == nil || strings.TrimSpace(base) == "" {
		return ""
	}

	prompt := fmt.Sprintf(constant.ClarificationQuestionPrompt, base)
	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		c.logger.Warn(module, "Follow-up question generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}

	response = strings.Trim(strings.TrimSpace(response), `"`)
	if response == "" || len([]rune(response)) > maxFollowUpLength || HasMarker(response) {
		c.logger.Debug(module, "Discarding follow-up question", map[string]interface{}{
			"response": lexical.Truncate(response, 120),
		})
		return ""
	}
	return response
}

// HasMarker reports whether text contains a marker of either family
func HasMarker(text string) bool {
	return lexical.ContainsAnyFold(text, constant.ConfirmationMarkers) ||
		lexical.ContainsAnyFold(text, constant.ClarificationMarkers)
}

func normalizeOptions(options []string) []string {
	out := make([]string, 0, MaxOptions)
	seen := make(map[string]bool)
	for _, o := range options {
		o = strings.Join(strings.Fields(o), " ")
		key := strings.ToLower(o)
		if o == "" || seen[key] || HasMarker(o) {
			continue
		}
		seen[key] = true
		out = append(out, o)
		if len(out) == MaxOptions {
			break
		}
	}
	return out
}

func writeOptions(b *strings.Builder, options []string) {
	if len(options) == 0 {
		return
	}
	b.WriteString("\n\n")
	for i, o := range options {
		fmt.Fprintf(b, "%s. %s\n", optionLetters[i], o)
	}
	b.WriteString("\n")
	b.WriteString(constant.ClarificationOptionsFooter)
}
