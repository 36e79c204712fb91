package citation

import (
	"strings"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/store"
)

const module = "CITATION"

const snippetLength = 300

// Mode selects the citation policy of the probe that produced the evidence
type Mode string

const (
	ModeGeneral     Mode = "general"
	ModeCurated     Mode = "curated"
	ModeAttachments Mode = "attachments"
	ModeWeb         Mode = "web"
)

// Policy bounds one mode's citations. Min > 0 enables the back-fill floor.
type Policy struct {
	Min       int
	Max       int
	Threshold float64
	Preferred []string
}

// Selector turns evidence documents into a deduplicated, capped reference list
type Selector struct {
	policies map[Mode]Policy
	logger   logger.ILogger
}

func NewSelector(cfg config.RoutingConfig, logger logger.ILogger) *Selector {
	general := Policy{Max: cfg.GeneralCitationMax, Threshold: cfg.GeneralCitationThreshold}
	return &Selector{
		policies: map[Mode]Policy{
			ModeGeneral: general,
			ModeCurated: {
				Min:       cfg.CuratedCitationMin,
				Max:       cfg.CuratedCitationMax,
				Threshold: cfg.CuratedCitationThreshold,
				Preferred: []string{store.SourceTypePortal, store.SourceTypeAdmin},
			},
			ModeAttachments: {
				Max:       cfg.AttachmentCitationMax,
				Preferred: []string{store.SourceTypeUser},
			},
			ModeWeb: general,
		},
		logger: logger,
	}
}

// PolicyFor returns the policy of mode, falling back to general
func (s *Selector) PolicyFor(mode Mode) Policy {
	if p, ok := s.policies[mode]; ok {
		return p
	}
	return s.policies[ModeGeneral]
}

// Select dedupes, tiers, filters, back-fills and caps docs.
// Selecting its own output again yields the same documents.
func (s *Selector) Select(docs []store.ScoredDocument, mode Mode) []store.ScoredDocument {
	if len(docs) == 0 {
		return []store.ScoredDocument{}
	}
	policy := s.PolicyFor(mode)

	unique := dedupe(docs, func(d store.ScoredDocument) string { return d.StableKey() })
	unique = dedupe(unique, pairKey)
	ordered := tier(unique, policy.Preferred)

	marked := make([]bool, len(ordered))
	passing := 0
	for i, d := range ordered {
		if d.ScoreValue() >= policy.Threshold {
			marked[i] = true
			passing++
		}
	}

	if passing < policy.Min {
		filled := 0
		for i := range ordered {
			if passing+filled >= policy.Min {
				break
			}
			if !marked[i] {
				marked[i] = true
				filled++
			}
		}
		if filled > 0 {
			s.logger.Info(module, "Citation floor engaged, back-filling below threshold", map[string]interface{}{
				"mode":      string(mode),
				"passing":   passing,
				"filled":    filled,
				"threshold": policy.Threshold,
			})
		}
	}

	selected := make([]store.ScoredDocument, 0, policy.Max)
	for i, d := range ordered {
		if policy.Max > 0 && len(selected) >= policy.Max {
			break
		}
		if marked[i] {
			selected = append(selected, d)
		}
	}
	return selected
}

// Citations is Select followed by ToCitations
func (s *Selector) Citations(docs []store.ScoredDocument, mode Mode) []store.Citation {
	return ToCitations(s.Select(docs, mode))
}

// ToCitations projects documents to their public form
func ToCitations(docs []store.ScoredDocument) []store.Citation {
	citations := make([]store.Citation, 0, len(docs))
	for _, d := range docs {
		title := strings.TrimSpace(d.Metadata.Title)
		if title == "" {
			title = "Untitled"
		}
		citations = append(citations, store.Citation{
			ContentSnippet: lexical.Truncate(strings.Join(strings.Fields(d.Content), " "), snippetLength),
			Title:          title,
			URL:            d.Metadata.URL,
			SourceType:     d.Metadata.SourceType,
			DocumentID:     d.Metadata.DocumentID,
		})
	}
	return citations
}

// dedupe keeps the best document per key (higher score, then longer content)
// at the position of the key's first appearance. Empty keys are never merged.
func dedupe(docs []store.ScoredDocument, key func(store.ScoredDocument) string) []store.ScoredDocument {
	index := make(map[string]int, len(docs))
	out := make([]store.ScoredDocument, 0, len(docs))
	for _, d := range docs {
		k := key(d)
		if k == "" {
			out = append(out, d)
			continue
		}
		if i, ok := index[k]; ok {
			if better(d, out[i]) {
				out[i] = d
			}
			continue
		}
		index[k] = len(out)
		out = append(out, d)
	}
	return out
}

func better(a, b store.ScoredDocument) bool {
	if a.ScoreValue() != b.ScoreValue() {
		return a.ScoreValue() > b.ScoreValue()
	}
	return len(a.Content) > len(b.Content)
}

func pairKey(d store.ScoredDocument) string {
	url := strings.TrimSpace(d.Metadata.URL)
	id := strings.TrimSpace(d.Metadata.DocumentID)
	if url == "" && id == "" {
		return ""
	}
	return url + "|" + id
}

// tier moves preferred source types to the front, keeping relative order
func tier(docs []store.ScoredDocument, preferred []string) []store.ScoredDocument {
	if len(preferred) == 0 {
		return docs
	}
	isPreferred := make(map[string]bool, len(preferred))
	for _, p := range preferred {
		isPreferred[p] = true
	}

	front := make([]store.ScoredDocument, 0, len(docs))
	back := make([]store.ScoredDocument, 0, len(docs))
	for _, d := range docs {
		if isPreferred[d.Metadata.SourceType] {
			front = append(front, d)
		} else {
			back = append(back, d)
		}
	}
	return append(front, back...)
}
