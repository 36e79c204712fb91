package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-knowledge-router-be/pkg/llm"
)

// OllamaProvider talks to the /api/chat endpoint of a local Ollama server
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   modelName,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7, Model: o.model}, opts...)

	messages := make([]ollamaMessage, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		// gemini-style history from stored turns
		if role == "model" {
			role = "assistant"
		}
		messages = append(messages, ollamaMessage{Role: role, Content: msg.Content})
	}

	var resp ollamaChatResponse
	err := llm.PostJSON(ctx, o.client, o.baseURL+"/api/chat", nil, ollamaChatRequest{
		Model:    options.Model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", fmt.Errorf("ollama chat: empty message from %s: %w", options.Model, llm.ErrProviderError)
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
