package history

import (
	"context"
	"fmt"

	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/store"

	"github.com/google/uuid"
)

const defaultWindow = 10

// Loader reads the recent turns of a conversation
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.TurnMapper
	window     int
}

// NewLoader creates a history loader returning at most window turns
func NewLoader(uowFactory unitofwork.RepositoryFactory, window int) *Loader {
	if window <= 0 {
		window = defaultWindow
	}
	return &Loader{
		uowFactory: uowFactory,
		mapper:     mapper.NewTurnMapper(),
		window:     window,
	}
}

// Recent loads the conversation's last turns, oldest first
func (l *Loader) Recent(ctx context.Context, conversationId uuid.UUID) ([]store.Turn, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.TurnRepository().Recent(ctx, conversationId, l.window)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	recent := make([]store.Turn, 0, len(turns))
	for _, t := range turns {
		recent = append(recent, l.mapper.ToStore(t))
	}
	return recent, nil
}
