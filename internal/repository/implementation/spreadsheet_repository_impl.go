package implementation

import (
	"context"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SpreadsheetRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SpreadsheetMapper
}

func NewSpreadsheetRepository(db *gorm.DB) contract.SpreadsheetRepository {
	return &SpreadsheetRepositoryImpl{
		db:     db,
		mapper: mapper.NewSpreadsheetMapper(),
	}
}

func (r *SpreadsheetRepositoryImpl) Create(ctx context.Context, sheet *entity.Spreadsheet) error {
	m := r.mapper.ToModel(sheet)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*sheet = *r.mapper.ToEntity(m)
	return nil
}

func (r *SpreadsheetRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Spreadsheet, error) {
	var models []*model.Spreadsheet
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Spreadsheet, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
