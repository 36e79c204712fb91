package mapper

import (
	"time"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/pkg/store"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkMapper struct{}

func NewKnowledgeChunkMapper() *KnowledgeChunkMapper {
	return &KnowledgeChunkMapper{}
}

func (m *KnowledgeChunkMapper) ToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.KnowledgeChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ConversationId: c.ConversationId,
		SourceType:     c.SourceType,
		Title:          c.Title,
		Url:            c.Url,
		Content:        c.Content,
		ChunkIndex:     c.ChunkIndex,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      c.DeletedAt.Valid,
	}
}

func (m *KnowledgeChunkMapper) ToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.KnowledgeChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ConversationId: c.ConversationId,
		SourceType:     c.SourceType,
		Title:          c.Title,
		Url:            c.Url,
		Content:        c.Content,
		ChunkIndex:     c.ChunkIndex,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

// ToScoredDocument normalizes a search hit at the retrieval boundary
func (m *KnowledgeChunkMapper) ToScoredDocument(c *entity.KnowledgeChunk, similarity float64) store.ScoredDocument {
	return store.ScoredDocument{
		Content: c.Content,
		Metadata: store.DocumentMetadata{
			SourceType: c.SourceType,
			Title:      c.Title,
			URL:        c.Url,
			DocumentID: c.DocumentId.String(),
		},
		Score: store.Score(clamp01(similarity)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
