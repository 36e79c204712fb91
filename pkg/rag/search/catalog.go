package search

import (
	"context"
	"fmt"

	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/repository/specification"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/store"

	"github.com/google/uuid"
)

// Catalog lists the files the probes can read outside the vector index:
// indexed company spreadsheets and per-conversation uploads.
type Catalog struct {
	uowFactory        unitofwork.RepositoryFactory
	attachmentMapper  *mapper.AttachmentMapper
	spreadsheetMapper *mapper.SpreadsheetMapper
}

func NewCatalog(uowFactory unitofwork.RepositoryFactory) *Catalog {
	return &Catalog{
		uowFactory:        uowFactory,
		attachmentMapper:  mapper.NewAttachmentMapper(),
		spreadsheetMapper: mapper.NewSpreadsheetMapper(),
	}
}

// Spreadsheets returns every live company spreadsheet ordered by title
func (c *Catalog) Spreadsheets(ctx context.Context) ([]store.Spreadsheet, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	sheets, err := uow.SpreadsheetRepository().FindAll(ctx,
		specification.NotDeleted{},
		specification.OrderBy{Field: "title"},
	)
	if err != nil {
		return nil, fmt.Errorf("list spreadsheets: %w", err)
	}

	result := make([]store.Spreadsheet, 0, len(sheets))
	for _, s := range sheets {
		result = append(result, c.spreadsheetMapper.ToStore(s))
	}
	return result, nil
}

// ForConversation returns the live uploads of one conversation, oldest first
func (c *Catalog) ForConversation(ctx context.Context, conversationID string) ([]store.Attachment, error) {
	conversationId, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation id: %w", err)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	attachments, err := uow.AttachmentRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.NotDeleted{},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	result := make([]store.Attachment, 0, len(attachments))
	for _, a := range attachments {
		result = append(result, c.attachmentMapper.ToStore(a))
	}
	return result, nil
}
