package unitofwork

import (
	"ai-knowledge-router-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one request's connection. Every
// write in the routing pipeline is a single statement, so no transaction API.
type UnitOfWork interface {
	TurnRepository() contract.TurnRepository
	AttachmentRepository() contract.AttachmentRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
	SpreadsheetRepository() contract.SpreadsheetRepository
}
