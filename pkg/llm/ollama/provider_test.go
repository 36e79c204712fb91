package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-knowledge-router-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "assistant", req.Messages[0].Role)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: "halo"}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{{Role: "model", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "halo", out)
}

func TestOllamaProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, llm.ErrRateLimited},
		{http.StatusUnauthorized, llm.ErrAuthFailed},
		{http.StatusInternalServerError, llm.ErrProviderError},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		p := NewOllamaProvider(srv.URL, "llama3")
		_, err := p.Generate(context.Background(), "hi")
		assert.ErrorIs(t, err, tt.want)
		srv.Close()
	}
}

func TestOllamaProvider_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, llm.ErrProviderError)
}

func TestOllamaProvider_EmptyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen2.5", req.Model)
		assert.Equal(t, 0.0, req.Options.Temperature)
		assert.Equal(t, 64, req.Options.NumPredict)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	_, err := p.Generate(context.Background(), "hi", llm.WithModel("qwen2.5"), llm.WithTemperature(0), llm.WithMaxTokens(64))
	assert.ErrorIs(t, err, llm.ErrProviderError)
}
