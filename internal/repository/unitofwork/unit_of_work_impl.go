package unitofwork

import (
	"context"

	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork binds the repositories to ctx so request cancellation reaches
// the queries.
func NewUnitOfWork(ctx context.Context, db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db.WithContext(ctx)}
}

func (u *UnitOfWorkImpl) TurnRepository() contract.TurnRepository {
	return implementation.NewTurnRepository(u.db)
}

func (u *UnitOfWorkImpl) AttachmentRepository() contract.AttachmentRepository {
	return implementation.NewAttachmentRepository(u.db)
}

func (u *UnitOfWorkImpl) KnowledgeChunkRepository() contract.KnowledgeChunkRepository {
	return implementation.NewKnowledgeChunkRepository(u.db)
}

func (u *UnitOfWorkImpl) SpreadsheetRepository() contract.SpreadsheetRepository {
	return implementation.NewSpreadsheetRepository(u.db)
}
