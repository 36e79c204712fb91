package search

import (
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/store"
)

// FilterByOverlap keeps documents sharing at least minOverlap keywords with question
func FilterByOverlap(docs []store.ScoredDocument, question string, minOverlap int) []store.ScoredDocument {
	questionVocab := lexical.NewVocabulary(question)
	out := make([]store.ScoredDocument, 0, len(docs))
	for _, d := range docs {
		if questionVocab.Intersect(lexical.NewVocabulary(d.Metadata.Title+" "+d.Content)) >= minOverlap {
			out = append(out, d)
		}
	}
	return out
}
