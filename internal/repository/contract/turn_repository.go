package contract

import (
	"context"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/repository/specification"

	"github.com/google/uuid"
)

// TurnRepository is the append-only turn history of every conversation
type TurnRepository interface {
	// Append writes the turn once. A retried append with the same ID is a no-op
	// and reports inserted=false.
	Append(ctx context.Context, turn *entity.Turn) (inserted bool, err error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Turn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Turn, error)
	// Recent returns at most limit turns, oldest first
	Recent(ctx context.Context, conversationId uuid.UUID, limit int) ([]*entity.Turn, error)
}
