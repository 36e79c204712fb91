package search

import (
	"context"
	"errors"
	"testing"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/specification"
	"ai-knowledge-router-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttachmentRepo struct {
	contract.AttachmentRepository
	rows  []*entity.Attachment
	specs []specification.Specification
}

func (f *fakeAttachmentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error) {
	f.specs = specs
	return f.rows, nil
}

type fakeSpreadsheetRepo struct {
	contract.SpreadsheetRepository
	rows []*entity.Spreadsheet
	err  error
}

func (f *fakeSpreadsheetRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Spreadsheet, error) {
	return f.rows, f.err
}

type catalogUow struct {
	unitofwork.UnitOfWork
	attachments *fakeAttachmentRepo
	sheets      *fakeSpreadsheetRepo
}

func (u *catalogUow) AttachmentRepository() contract.AttachmentRepository   { return u.attachments }
func (u *catalogUow) SpreadsheetRepository() contract.SpreadsheetRepository { return u.sheets }

type catalogFactory struct{ uow *catalogUow }

func (f *catalogFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func TestCatalog_ForConversation(t *testing.T) {
	conversationId := uuid.New()
	repo := &fakeAttachmentRepo{rows: []*entity.Attachment{
		{Id: uuid.New(), ConversationId: conversationId, FileName: "gaji.csv", MimeType: "text/csv"},
		{Id: uuid.New(), ConversationId: conversationId, FileName: "memo.pdf", MimeType: "application/pdf"},
	}}
	c := NewCatalog(&catalogFactory{uow: &catalogUow{attachments: repo}})

	got, err := c.ForConversation(context.Background(), conversationId.String())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsSpreadsheet)
	assert.False(t, got[1].IsSpreadsheet)
	assert.Equal(t, conversationId.String(), got[1].ConversationID)
	assert.Len(t, repo.specs, 3)

	_, err = c.ForConversation(context.Background(), "nope")
	assert.Error(t, err)
}

func TestCatalog_Spreadsheets(t *testing.T) {
	id := uuid.New()
	c := NewCatalog(&catalogFactory{uow: &catalogUow{sheets: &fakeSpreadsheetRepo{rows: []*entity.Spreadsheet{
		{Id: id, Title: "Rekap Lembur", StoragePath: "sheets/lembur.csv", SourceType: "admin"},
	}}}})

	got, err := c.Spreadsheets(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id.String(), got[0].ID)
	assert.Equal(t, "Rekap Lembur", got[0].Title)

	failing := NewCatalog(&catalogFactory{uow: &catalogUow{sheets: &fakeSpreadsheetRepo{err: errors.New("db down")}}})
	_, err = failing.Spreadsheets(context.Background())
	assert.Error(t, err)
}
