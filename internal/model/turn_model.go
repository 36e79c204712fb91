package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Turn is append-only: no UpdatedAt, no soft delete
type Turn struct {
	Id               uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	ConversationId   uuid.UUID                   `gorm:"type:uuid;not null;index:idx_turns_conversation_created,priority:1"`
	UserId           uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Question         string                      `gorm:"type:text;not null"`
	Answer           string                      `gorm:"type:text;not null"`
	ModeCompany      bool                        `gorm:"not null;default:false"`
	ModeGeneral      bool                        `gorm:"not null;default:false"`
	ModeBrowse       bool                        `gorm:"not null;default:false"`
	Citations        datatypes.JSON              `gorm:"type:jsonb"`
	Confidence       float64                     `gorm:"not null;default:0"`
	Source           string                      `gorm:"type:varchar(32)"`
	DialogueState    string                      `gorm:"type:varchar(20)"`
	ProposedQuestion string                      `gorm:"type:text"`
	BaseQuestion     string                      `gorm:"type:text"`
	DialogueOptions  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime;index:idx_turns_conversation_created,priority:2"`
}

func (Turn) TableName() string {
	return "turns"
}
