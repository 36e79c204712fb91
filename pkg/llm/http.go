package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 512

// PostJSON sends in as a JSON body and decodes the reply into out. Transport
// errors, non-2xx statuses and undecodable bodies are wrapped with the matching
// provider failure.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", url, err, ErrProviderError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %v: %w", err, ErrProviderError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return fmt.Errorf("status %d: %s: %w", resp.StatusCode, body, StatusError(resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, ErrProviderError)
	}
	return nil
}

// ApplyOptions folds opts over defaults
func ApplyOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}
