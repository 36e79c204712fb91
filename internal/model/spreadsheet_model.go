package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Spreadsheet struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text"`
	StoragePath string         `gorm:"type:text;not null"`
	SourceType  string         `gorm:"type:varchar(32);not null;default:'admin'"`
	Url         string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Spreadsheet) TableName() string {
	return "spreadsheets"
}
