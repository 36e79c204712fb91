package main

import (
	"flag"
	"log"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/pkg/database"
)

// extensions must exist before AutoMigrate creates uuid defaults and vector columns
var extensions = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE EXTENSION IF NOT EXISTS vector`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_embedding
	 ON knowledge_chunks USING hnsw (embedding_value vector_cosine_ops)`,
	// knowledge base probe filters by trusted source type before ranking
	`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_source_document
	 ON knowledge_chunks (source_type, document_id) WHERE deleted_at IS NULL`,
}

func main() {
	skipIndexes := flag.Bool("skip-indexes", false, "only create tables")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	for _, stmt := range extensions {
		if err := db.Exec(stmt).Error; err != nil {
			log.Printf("extension skipped: %v", err)
		}
	}

	if err := db.AutoMigrate(
		&model.Turn{},
		&model.Attachment{},
		&model.KnowledgeChunk{},
		&model.Spreadsheet{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Println("tables ready: turns, attachments, knowledge_chunks, spreadsheets")

	if *skipIndexes {
		return
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			log.Printf("index skipped: %v", err)
		}
	}
	log.Println("migration finished")
}
