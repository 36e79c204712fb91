package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// KnowledgeChunk is one embedded passage. ConversationId is set only for
// chunks of user uploads (source_type "user").
type KnowledgeChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ConversationId *uuid.UUID      `gorm:"type:uuid;index"`
	SourceType     string          `gorm:"type:varchar(32);not null;index"`
	Title          string          `gorm:"type:text"`
	Url            string          `gorm:"type:text"`
	Content        string          `gorm:"type:text;not null"`
	ChunkIndex     int             `gorm:"default:0"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
