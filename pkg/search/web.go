package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/store"
)

const module = "SEARCH"

// ErrSearchUnavailable wraps every failure of a search backend
var ErrSearchUnavailable = errors.New("search: backend unavailable")

// Searcher runs a query against a web index. An empty result is not an error.
type Searcher interface {
	Search(ctx context.Context, query string) ([]store.ScoredDocument, error)
}

// WebClient queries a SearxNG instance through its JSON API
type WebClient struct {
	baseURL    string
	apiKey     string
	maxResults int
	client     *http.Client
	cache      *QueryCache
	logger     logger.ILogger
}

var _ Searcher = (*WebClient)(nil)

func NewWebClient(baseURL, apiKey string, maxResults int, cache *QueryCache, logger logger.ILogger) *WebClient {
	if maxResults <= 0 {
		maxResults = 8
	}
	return &WebClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 20 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (c *WebClient) Search(ctx context.Context, query string) ([]store.ScoredDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []store.ScoredDocument{}, nil
	}

	if cached, ok := c.cache.Get(ctx, query); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchUnavailable, resp.StatusCode)
	}

	var body searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSearchUnavailable, err)
	}

	docs := make([]store.ScoredDocument, 0, len(body.Results))
	for _, r := range body.Results {
		if r.URL == "" || (strings.TrimSpace(r.Content) == "" && strings.TrimSpace(r.Title) == "") {
			continue
		}
		docs = append(docs, store.ScoredDocument{
			Content: strings.TrimSpace(r.Content),
			Metadata: store.DocumentMetadata{
				SourceType: store.SourceTypeWeb,
				Title:      strings.TrimSpace(r.Title),
				URL:        r.URL,
			},
		})
		if len(docs) == c.maxResults {
			break
		}
	}

	c.logger.Debug(module, "Web search completed", map[string]interface{}{
		"query":   query,
		"results": len(docs),
	})
	c.cache.Set(ctx, query, docs)
	return docs, nil
}
