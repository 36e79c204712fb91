// Package llmtest provides a scripted LLMProvider for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"ai-knowledge-router-be/pkg/llm"
)

type rule struct {
	contains string
	response string
	err      error
}

// Provider answers with the first rule whose substring appears in the prompt.
// Without a matching rule it returns Default and DefaultErr.
type Provider struct {
	mu         sync.Mutex
	rules      []rule
	Default    string
	DefaultErr error
	prompts    []string
}

var _ llm.LLMProvider = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

// On registers a response for prompts containing substr
func (p *Provider) On(substr, response string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules = append(p.rules, rule{contains: substr, response: response})
	return p
}

// Fail registers an error for prompts containing substr
func (p *Provider) Fail(substr string, err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules = append(p.rules, rule{contains: substr, err: err})
	return p
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return p.Generate(ctx, b.String(), options...)
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, r := range p.rules {
		if strings.Contains(prompt, r.contains) {
			return r.response, r.err
		}
	}
	return p.Default, p.DefaultErr
}

// Calls returns how many prompts were received
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// Prompts returns a copy of every prompt received
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}
