package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	ConversationId *uuid.UUID
	SourceType     string
	Title          string
	Url            string
	Content        string
	ChunkIndex     int
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
