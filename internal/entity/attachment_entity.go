package entity

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	UserId         uuid.UUID
	FileName       string
	Description    string
	StoragePath    string
	MimeType       string
	CreatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
