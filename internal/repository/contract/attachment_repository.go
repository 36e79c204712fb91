package contract

import (
	"context"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/repository/specification"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error)
}
