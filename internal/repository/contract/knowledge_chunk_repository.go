package contract

import (
	"context"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/repository/specification"
)

// ScoredKnowledgeChunk wraps a chunk with its cosine similarity
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64
}

type KnowledgeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore ranks chunks by cosine similarity. specs narrow the
	// candidate set (source types, conversation).
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64, specs ...specification.Specification) ([]*ScoredKnowledgeChunk, error)
}
