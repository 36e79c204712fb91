package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-knowledge-router-be/pkg/llm"
)

const defaultRouterURL = "https://router.huggingface.co/v1"

// HuggingFaceProvider calls the OpenAI-compatible chat completions route of the
// Hugging Face inference router
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = defaultRouterURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(llm.Options{Temperature: 0.7, Model: p.model, MaxTokens: 500}, options...)

	messages := make([]llm.Message, len(history))
	for i, msg := range history {
		if msg.Role == "model" {
			msg.Role = "assistant"
		}
		messages[i] = msg
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var resp chatResponse
	err := llm.PostJSON(ctx, p.client, p.baseURL+"/chat/completions", headers, chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("huggingface chat: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("huggingface chat: %s: %w", resp.Error.Message, llm.ErrProviderError)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("huggingface chat: no choices: %w", llm.ErrProviderError)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
