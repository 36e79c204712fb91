package embedding

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"ai-knowledge-router-be/pkg/llm"
)

// OllamaProvider embeds queries with a local nomic-embed-text style model
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// taskPrefixes are the instruction prefixes nomic models were trained with
var taskPrefixes = map[string]string{
	TaskRetrievalQuery:    "search_query: ",
	TaskRetrievalDocument: "search_document: ",
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var resp ollamaEmbeddingResponse
	err := llm.PostJSON(ctx, p.client, p.baseURL+"/api/embeddings", nil,
		ollamaEmbeddingRequest{Model: p.model, Prompt: taskPrefixes[taskType] + text}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embedding: empty vector from %s: %w", p.model, llm.ErrProviderError)
	}

	values := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		values[i] = float32(v)
	}

	// pgvector cosine distance assumes unit vectors
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: normalizeVector(values)},
	}, nil
}

func normalizeVector(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
