package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// BySourceTypes keeps rows whose source_type is in the list. An empty list does not filter.
type BySourceTypes struct {
	SourceTypes []string
}

func (s BySourceTypes) Apply(db *gorm.DB) *gorm.DB {
	if len(s.SourceTypes) == 0 {
		return db
	}
	return db.Where("source_type IN ?", s.SourceTypes)
}

// UserOwnedBy keeps rows written by one user
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}
