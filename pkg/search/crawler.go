package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/store"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	maxPageBytes   = 2 << 20
	maxPageText    = 4000
	maxLinksPerDoc = 40
)

// Crawler walks allow-listed sites breadth-first and keeps pages that share
// keywords with the question. Requests are throttled by a token bucket.
type Crawler struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxPages int
	logger   logger.ILogger
}

func NewCrawler(ratePerSec float64, maxPages int, logger logger.ILogger) *Crawler {
	if ratePerSec <= 0 {
		ratePerSec = 2
	}
	if maxPages <= 0 {
		maxPages = 6
	}
	return &Crawler{
		client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), 1),
		maxPages: maxPages,
		logger:   logger,
	}
}

type page struct {
	title string
	text  string
	links []string
}

// Crawl visits up to maxPages pages reachable from roots on the same hosts
func (c *Crawler) Crawl(ctx context.Context, roots []string, question string) ([]store.ScoredDocument, error) {
	questionVocab := lexical.NewVocabulary(question)
	if questionVocab.Len() == 0 || len(roots) == 0 {
		return []store.ScoredDocument{}, nil
	}

	allowed := make(map[string]bool)
	queue := make([]string, 0, len(roots))
	for _, root := range roots {
		u, err := url.Parse(root)
		if err != nil || u.Host == "" {
			continue
		}
		allowed[strings.ToLower(u.Hostname())] = true
		queue = append(queue, u.String())
	}

	visited := make(map[string]bool)
	var docs []store.ScoredDocument
	for len(queue) > 0 && len(visited) < c.maxPages {
		target := queue[0]
		queue = queue[1:]
		if visited[target] {
			continue
		}
		visited[target] = true

		if err := c.limiter.Wait(ctx); err != nil {
			return docs, err
		}

		p, err := c.fetch(ctx, target)
		if err != nil {
			c.logger.Debug(module, "Crawl fetch failed", map[string]interface{}{
				"url":   target,
				"error": err.Error(),
			})
			continue
		}

		overlap := questionVocab.Intersect(lexical.NewVocabulary(p.title + " " + p.text))
		if overlap > 0 {
			docs = append(docs, store.ScoredDocument{
				Content: lexical.Truncate(p.text, maxPageText),
				Metadata: store.DocumentMetadata{
					SourceType: store.SourceTypeWebsite,
					Title:      p.title,
					URL:        target,
				},
				Score: store.Score(float64(overlap) / float64(questionVocab.Len())),
			})
		}

		for _, link := range p.links {
			u, err := url.Parse(link)
			if err != nil || !allowed[strings.ToLower(u.Hostname())] {
				continue
			}
			u.Fragment = ""
			if !visited[u.String()] {
				queue = append(queue, u.String())
			}
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ScoreValue() > docs[j].ScoreValue()
	})

	c.logger.Info(module, "Crawl finished", map[string]interface{}{
		"visited": len(visited),
		"matched": len(docs),
	})
	return docs, nil
}

func (c *Crawler) fetch(ctx context.Context, target string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "knowledge-router-crawler/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("unsupported content type %q", ct)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}

	base := resp.Request.URL
	p := &page{}
	var text strings.Builder
	walk(doc, base, p, &text, 0)
	p.text = strings.Join(strings.Fields(text.String()), " ")
	if p.title == "" {
		p.title = base.String()
	}
	return p, nil
}

func walk(n *html.Node, base *url.URL, p *page, text *strings.Builder, depth int) {
	if depth > 60 {
		return
	}
	switch n.Type {
	case html.TextNode:
		text.WriteString(n.Data)
		text.WriteString(" ")
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg":
			return
		case "title":
			if n.FirstChild != nil && p.title == "" {
				p.title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		case "a":
			if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") && len(p.links) < maxLinksPerDoc {
				if ref, err := url.Parse(href); err == nil {
					p.links = append(p.links, base.ResolveReference(ref).String())
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, base, p, text, depth+1)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
