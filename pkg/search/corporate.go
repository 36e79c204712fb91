package search

import (
	"context"
	"net/url"
	"strings"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/store"
)

// SiteCrawler is the fallback used when live search finds nothing
type SiteCrawler interface {
	Crawl(ctx context.Context, roots []string, question string) ([]store.ScoredDocument, error)
}

// CorporateSite searches only the allow-listed company domains
type CorporateSite struct {
	web     Searcher
	crawler SiteCrawler
	domains []string
	logger  logger.ILogger
}

func NewCorporateSite(web Searcher, crawler SiteCrawler, domains []string, logger logger.ILogger) *CorporateSite {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = hostOf(d); d != "" {
			normalized = append(normalized, d)
		}
	}
	return &CorporateSite{
		web:     web,
		crawler: crawler,
		domains: normalized,
		logger:  logger,
	}
}

// Configured reports whether any domain is allow-listed
func (s *CorporateSite) Configured() bool {
	return len(s.domains) > 0
}

// Search runs one site-restricted query per domain, drops results outside the
// allow-list and crawls the domains when nothing is left.
func (s *CorporateSite) Search(ctx context.Context, question string) ([]store.ScoredDocument, error) {
	var docs []store.ScoredDocument
	var lastErr error
	for _, domain := range s.domains {
		results, err := s.web.Search(ctx, question+" site:"+domain)
		if err != nil {
			lastErr = err
			s.logger.Warn(module, "Corporate site search failed", map[string]interface{}{
				"domain": domain,
				"error":  err.Error(),
			})
			continue
		}
		for _, r := range results {
			if s.Allowed(r.Metadata.URL) {
				r.Metadata.SourceType = store.SourceTypeWebsite
				docs = append(docs, r)
			}
		}
	}
	if len(docs) > 0 {
		return docs, nil
	}

	if s.crawler == nil {
		return []store.ScoredDocument{}, lastErr
	}
	roots := make([]string, 0, len(s.domains))
	for _, d := range s.domains {
		roots = append(roots, "https://"+d+"/")
	}
	s.logger.Info(module, "Live search empty, crawling corporate sites", map[string]interface{}{
		"domains": s.domains,
	})
	return s.crawler.Crawl(ctx, roots, question)
}

// Allowed reports whether rawURL belongs to an allow-listed domain or a subdomain of one
func (s *CorporateSite) Allowed(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range s.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
