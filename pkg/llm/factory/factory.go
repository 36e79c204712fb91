package factory

import (
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/llm/huggingface"
	"ai-knowledge-router-be/pkg/llm/ollama"
	"fmt"
	"time"
)

// NewLLMProvider builds the completion backend and bounds every call with timeout
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	var provider llm.LLMProvider
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		provider = ollama.NewOllamaProvider(baseURL, modelName)
	case "huggingface":
		provider = huggingface.NewHuggingFaceProvider(apiKey, "", modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
	return llm.WithTimeout(provider, timeout), nil
}
