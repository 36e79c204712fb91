package response

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/store"
)

const module = "GENERATION"

const (
	maxReferenceDocs   = 8
	maxReferenceLength = 1500
)

// Generator composes answers from evidence or from the model's own knowledge.
// It never returns provider errors: failures become static fallback messages.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, logger logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// FromDocuments answers using ONLY the given documents
func (g *Generator) FromDocuments(ctx context.Context, question string, docs []store.ScoredDocument, history []llm.Message) string {
	return g.grounded(ctx, constant.GroundedAnswerSystemPrompt, question, docs, history)
}

// FromWebResults answers using ONLY the given web results
func (g *Generator) FromWebResults(ctx context.Context, question string, docs []store.ScoredDocument, history []llm.Message) string {
	return g.grounded(ctx, constant.WebAnswerSystemPrompt, question, docs, history)
}

// General answers from the model's own knowledge
func (g *Generator) General(ctx context.Context, question string, history []llm.Message) string {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: constant.GeneralAnswerSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})

	response, err := g.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.3))
	if err != nil {
		return g.failure("General answer failed", err)
	}

	g.logger.Info(module, "General answer generated", map[string]interface{}{
		"length": len(response),
	})
	return strings.TrimSpace(response)
}

func (g *Generator) grounded(ctx context.Context, system, question string, docs []store.ScoredDocument, history []llm.Message) string {
	if len(docs) == 0 {
		g.logger.Warn(module, "Cannot generate: no grounded context", nil)
		return constant.MessageNoContext
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: buildGroundedPrompt(question, docs)})

	response, err := g.llmProvider.Chat(ctx, messages, llm.WithTemperature(0.1))
	if err != nil {
		return g.failure("Grounded answer failed", err)
	}

	g.logger.Info(module, "Answer generated from references", map[string]interface{}{
		"documents": len(docs),
	})
	return strings.TrimSpace(response)
}

func (g *Generator) failure(message string, err error) string {
	g.logger.Error(module, message, map[string]interface{}{
		"error": err.Error(),
	})
	if llm.IsProviderFailure(err) && !errors.Is(err, context.Canceled) {
		return constant.MessageProviderUnavailable
	}
	return constant.MessageAnswerFailed
}

func buildGroundedPrompt(question string, docs []store.ScoredDocument) string {
	var prompt strings.Builder

	prompt.WriteString("<grounded_reference_material>\n")
	prompt.WriteString("CRITICAL: This is the ONLY data source. Do NOT use outside knowledge.\n")
	for i, doc := range docs {
		if i >= maxReferenceDocs {
			break
		}
		title := doc.Metadata.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&prompt, "\n[%d] %s", i+1, title)
		if doc.Metadata.URL != "" {
			fmt.Fprintf(&prompt, " (%s)", doc.Metadata.URL)
		}
		prompt.WriteString("\n")
		prompt.WriteString(lexical.Truncate(doc.Content, maxReferenceLength))
		prompt.WriteString("\n")
	}
	prompt.WriteString("</grounded_reference_material>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</user_question>\n\n")

	prompt.WriteString("Answer:")
	return prompt.String()
}
