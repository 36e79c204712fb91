package implementation

import (
	"context"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeChunkMapper
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeChunkMapper(),
	}
}

func (r *KnowledgeChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KnowledgeChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KnowledgeChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore computes 1 - cosine distance as the similarity
func (r *KnowledgeChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64, specs ...specification.Specification) ([]*contract.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 20
	}

	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)
	query := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("knowledge_chunks.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold)
	query = r.applySpecifications(query, specs...)

	if err := query.Order("similarity DESC").Limit(limit).Scan(&results).Error; err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgeChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKnowledgeChunk{
			Chunk:      r.mapper.ToEntity(&res.KnowledgeChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
