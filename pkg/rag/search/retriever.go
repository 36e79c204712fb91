package search

import (
	"context"
	"fmt"
	"strings"

	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/specification"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/embedding"
	"ai-knowledge-router-be/pkg/store"

	"github.com/google/uuid"
)

const module = "VECTOR_SEARCH"

const maxMergedContent = 6000

// Retriever runs vector similarity search over knowledge chunks and returns
// one ScoredDocument per source document.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	uowFactory        unitofwork.RepositoryFactory
	mapper            *mapper.KnowledgeChunkMapper
	logger            logger.ILogger
}

func NewRetriever(embeddingProvider embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		uowFactory:        uowFactory,
		mapper:            mapper.NewKnowledgeChunkMapper(),
		logger:            logger,
	}
}

// Search embeds query and returns the best documents, highest score first
func (r *Retriever) Search(ctx context.Context, query string, filter store.SearchFilter) ([]store.ScoredDocument, error) {
	embeddingRes, err := r.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	specs := []specification.Specification{
		specification.BySourceTypes{SourceTypes: filter.SourceTypes},
	}
	if filter.ConversationID != "" {
		conversationId, err := uuid.Parse(filter.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("invalid conversation id: %w", err)
		}
		specs = append(specs, specification.ByConversationID{ConversationID: conversationId})
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeChunkRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		filter.TopK,
		0,
		specs...,
	)
	if err != nil {
		r.logger.Error(module, "Vector search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	docs := r.mergeByDocument(scored)
	r.logger.Debug(module, "Vector search completed", map[string]interface{}{
		"chunks":       len(scored),
		"documents":    len(docs),
		"source_types": filter.SourceTypes,
	})
	return docs, nil
}

// mergeByDocument folds chunks of the same document into one entry that keeps
// the best similarity. Input order (similarity desc) is preserved.
func (r *Retriever) mergeByDocument(scored []*contract.ScoredKnowledgeChunk) []store.ScoredDocument {
	docs := make([]store.ScoredDocument, 0, len(scored))
	index := make(map[string]int)
	for _, s := range scored {
		if s == nil || s.Chunk == nil {
			continue
		}
		doc := r.mapper.ToScoredDocument(s.Chunk, s.Similarity)
		key := doc.StableKey()
		if i, ok := index[key]; ok {
			if len(docs[i].Content) < maxMergedContent && !strings.Contains(docs[i].Content, doc.Content) {
				docs[i].Content += "\n\n" + doc.Content
			}
			continue
		}
		index[key] = len(docs)
		docs = append(docs, doc)
	}
	return docs
}
