package mapper

import (
	"time"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/pkg/store"
)

type SpreadsheetMapper struct{}

func NewSpreadsheetMapper() *SpreadsheetMapper {
	return &SpreadsheetMapper{}
}

func (m *SpreadsheetMapper) ToEntity(s *model.Spreadsheet) *entity.Spreadsheet {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Spreadsheet{
		Id:          s.Id,
		Title:       s.Title,
		Description: s.Description,
		StoragePath: s.StoragePath,
		SourceType:  s.SourceType,
		Url:         s.Url,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
		IsDeleted:   s.DeletedAt.Valid,
	}
}

func (m *SpreadsheetMapper) ToModel(s *entity.Spreadsheet) *model.Spreadsheet {
	if s == nil {
		return nil
	}
	return &model.Spreadsheet{
		Id:          s.Id,
		Title:       s.Title,
		Description: s.Description,
		StoragePath: s.StoragePath,
		SourceType:  s.SourceType,
		Url:         s.Url,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *SpreadsheetMapper) ToStore(s *entity.Spreadsheet) store.Spreadsheet {
	return store.Spreadsheet{
		ID:          s.Id.String(),
		Title:       s.Title,
		Description: s.Description,
		StoragePath: s.StoragePath,
		SourceType:  s.SourceType,
		URL:         s.Url,
	}
}
