package entity

import (
	"time"

	"github.com/google/uuid"
)

type Spreadsheet struct {
	Id          uuid.UUID
	Title       string
	Description string
	StoragePath string
	SourceType  string
	Url         string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
