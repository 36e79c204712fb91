package implementation

import (
	"context"
	"errors"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TurnMapper
}

func NewTurnRepository(db *gorm.DB) contract.TurnRepository {
	return &TurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewTurnMapper(),
	}
}

func (r *TurnRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TurnRepositoryImpl) Append(ctx context.Context, turn *entity.Turn) (bool, error) {
	m := r.mapper.ToModel(turn)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*turn = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *TurnRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Turn, error) {
	var m model.Turn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Turn, error) {
	var models []*model.Turn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TurnRepositoryImpl) Recent(ctx context.Context, conversationId uuid.UUID, limit int) ([]*entity.Turn, error) {
	if limit <= 0 {
		limit = 6
	}
	var models []*model.Turn
	err := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: limit},
	).Find(&models).Error
	if err != nil {
		return nil, err
	}

	// newest-first from the query, callers want oldest-first
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return r.mapper.ToEntities(models), nil
}
