package llm

import (
	"context"
	"errors"
	"time"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Provider failures. Backends wrap one of these so callers can degrade without
// inspecting transport details.
var (
	ErrRateLimited   = errors.New("llm: rate limited")
	ErrAuthFailed    = errors.New("llm: authentication failed")
	ErrProviderError = errors.New("llm: provider error")
)

// IsProviderFailure reports whether err belongs to the provider failure taxonomy
// (including deadline/cancellation, which callers treat the same way).
func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrAuthFailed) ||
		errors.Is(err, ErrProviderError) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// StatusError maps an HTTP status code from a completion backend to the taxonomy
func StatusError(status int) error {
	switch {
	case status == 429:
		return ErrRateLimited
	case status == 401 || status == 403:
		return ErrAuthFailed
	default:
		return ErrProviderError
	}
}

// timeoutProvider bounds every call of the wrapped provider
type timeoutProvider struct {
	inner   LLMProvider
	timeout time.Duration
}

// WithTimeout wraps a provider so each Chat/Generate call runs under its own deadline
func WithTimeout(p LLMProvider, timeout time.Duration) LLMProvider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: timeout}
}

func (t *timeoutProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Chat(ctx, history, options...)
}

func (t *timeoutProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, prompt, options...)
}
