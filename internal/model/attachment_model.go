package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Attachment struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	FileName       string         `gorm:"type:text;not null"`
	Description    string         `gorm:"type:text"`
	StoragePath    string         `gorm:"type:text;not null"`
	MimeType       string         `gorm:"type:varchar(128)"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Attachment) TableName() string {
	return "attachments"
}
