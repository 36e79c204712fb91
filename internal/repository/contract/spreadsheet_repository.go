package contract

import (
	"context"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/repository/specification"
)

type SpreadsheetRepository interface {
	Create(ctx context.Context, sheet *entity.Spreadsheet) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Spreadsheet, error)
}
