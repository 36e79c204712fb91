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

type AttachmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AttachmentMapper
}

func NewAttachmentRepository(db *gorm.DB) contract.AttachmentRepository {
	return &AttachmentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAttachmentMapper(),
	}
}

func (r *AttachmentRepositoryImpl) Create(ctx context.Context, attachment *entity.Attachment) error {
	m := r.mapper.ToModel(attachment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attachment = *r.mapper.ToEntity(m)
	return nil
}

func (r *AttachmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error) {
	var models []*model.Attachment
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Attachment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
