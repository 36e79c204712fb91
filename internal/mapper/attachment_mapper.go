package mapper

import (
	"path/filepath"
	"strings"
	"time"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/pkg/store"

	"gorm.io/gorm"
)

var spreadsheetExtensions = map[string]bool{".csv": true, ".tsv": true}

type AttachmentMapper struct{}

func NewAttachmentMapper() *AttachmentMapper {
	return &AttachmentMapper{}
}

func (m *AttachmentMapper) ToEntity(a *model.Attachment) *entity.Attachment {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Attachment{
		Id:             a.Id,
		ConversationId: a.ConversationId,
		UserId:         a.UserId,
		FileName:       a.FileName,
		Description:    a.Description,
		StoragePath:    a.StoragePath,
		MimeType:       a.MimeType,
		CreatedAt:      a.CreatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      a.DeletedAt.Valid,
	}
}

func (m *AttachmentMapper) ToModel(a *entity.Attachment) *model.Attachment {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	} else if a.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Attachment{
		Id:             a.Id,
		ConversationId: a.ConversationId,
		UserId:         a.UserId,
		FileName:       a.FileName,
		Description:    a.Description,
		StoragePath:    a.StoragePath,
		MimeType:       a.MimeType,
		CreatedAt:      a.CreatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *AttachmentMapper) ToStore(a *entity.Attachment) store.Attachment {
	return store.Attachment{
		ID:             a.Id.String(),
		ConversationID: a.ConversationId.String(),
		FileName:       a.FileName,
		Description:    a.Description,
		StoragePath:    a.StoragePath,
		IsSpreadsheet:  IsSpreadsheet(a.FileName, a.MimeType),
	}
}

// IsSpreadsheet reports whether the tabular agent can read the file
func IsSpreadsheet(fileName, mimeType string) bool {
	if spreadsheetExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return true
	}
	mimeType = strings.ToLower(mimeType)
	return mimeType == "text/csv" || mimeType == "text/tab-separated-values"
}
