package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is a single embedded chunk stored in a collection.
type Document struct {
	ID      string
	Text    string
	Vector  []float32
	Payload map[string]interface{}
}

// Match is a scored search hit. Score is cosine similarity in [0, 1].
type Match struct {
	Document Document
	Score    float64
}

// Service is the vector persistence layer shared by record ingestion,
// the retrieval engines and the memory system.
type Service interface {
	Init(ctx context.Context) error
	EnsureCollection(ctx context.Context, name string, dim int) error
	Upsert(ctx context.Context, collection string, docs []Document) error
	Search(ctx context.Context, collection string, vector []float32, filter map[string]string, k int) ([]Match, error)
	Delete(ctx context.Context, collection string, filter map[string]string) error
	Count(ctx context.Context, collection string) (int64, error)
	Close() error
}

// The embedding column is created with the configured dimension, so the
// struct carries no column type itself.
type vectorRecord struct {
	Id         string `gorm:"primaryKey"`
	Collection string
	Document   string
	Embedding  pgvector.Vector
	Payload    datatypes.JSONMap
	CreatedAt  time.Time
}

func (vectorRecord) TableName() string {
	return "vector_records"
}

type pgvectorService struct {
	db  *gorm.DB
	dim int
}

// NewPgVectorService builds the store over an existing gorm connection.
// dim fixes the dimensionality of every stored vector.
func NewPgVectorService(db *gorm.DB, dim int) Service {
	return &pgvectorService{db: db, dim: dim}
}

func (s *pgvectorService) tableDDL() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS vector_records (
			id text PRIMARY KEY,
			collection varchar(255) NOT NULL,
			document text,
			embedding vector(%d),
			payload jsonb,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, s.dim)
}

func (s *pgvectorService) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}
	if err := s.db.WithContext(ctx).Exec(s.tableDDL()).Error; err != nil {
		return fmt.Errorf("failed to create vector records table: %w", err)
	}
	err := s.db.WithContext(ctx).
		Exec("CREATE INDEX IF NOT EXISTS idx_vector_records_collection ON vector_records (collection)").Error
	if err != nil {
		return fmt.Errorf("failed to index vector records: %w", err)
	}
	return nil
}

// EnsureCollection verifies the requested dimension matches the column
// the store was created with, and that any stored vectors agree.
// Collections are rows sharing a name, so there is nothing to create up
// front.
func (s *pgvectorService) EnsureCollection(ctx context.Context, name string, dim int) error {
	if dim != s.dim {
		return fmt.Errorf("collection %s requested with dim %d, store is fixed at %d", name, dim, s.dim)
	}

	var rec vectorRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", name).
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return err
	}
	if rec.Id != "" && len(rec.Embedding.Slice()) != dim {
		return fmt.Errorf("collection %s holds %d-dim vectors, expected %d", name, len(rec.Embedding.Slice()), dim)
	}
	return nil
}

func (s *pgvectorService) Upsert(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, doc := range docs {
			rec := vectorRecord{
				Id:         doc.ID,
				Collection: collection,
				Document:   doc.Text,
				Embedding:  pgvector.NewVector(doc.Vector),
				Payload:    doc.Payload,
			}
			err := tx.Exec(`
				INSERT INTO vector_records (id, collection, document, embedding, payload, created_at)
				VALUES (?, ?, ?, ?, ?, NOW())
				ON CONFLICT (id) DO UPDATE
				SET document = EXCLUDED.document, embedding = EXCLUDED.embedding, payload = EXCLUDED.payload
			`, rec.Id, rec.Collection, rec.Document, rec.Embedding, rec.Payload).Error
			if err != nil {
				return fmt.Errorf("failed to upsert vector %s: %w", doc.ID, err)
			}
		}
		return nil
	})
}

func (s *pgvectorService) Search(ctx context.Context, collection string, vector []float32, filter map[string]string, k int) ([]Match, error) {
	type scoredRecord struct {
		vectorRecord
		Score float64
	}

	query := s.db.WithContext(ctx).
		Table("vector_records").
		Select("*, 1 - (embedding <=> ?) as score", pgvector.NewVector(vector)).
		Where("collection = ?", collection)

	for key, value := range filter {
		query = query.Where("payload ->> ? = ?", key, value)
	}

	var rows []scoredRecord
	err := query.
		Order("score DESC").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, Match{
			Document: Document{
				ID:      row.Id,
				Text:    row.Document,
				Vector:  row.Embedding.Slice(),
				Payload: row.Payload,
			},
			Score: row.Score,
		})
	}
	return matches, nil
}

func (s *pgvectorService) Delete(ctx context.Context, collection string, filter map[string]string) error {
	query := s.db.WithContext(ctx).
		Where("collection = ?", collection)

	for key, value := range filter {
		query = query.Where("payload ->> ? = ?", key, value)
	}

	return query.Delete(&vectorRecord{}).Error
}

func (s *pgvectorService) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&vectorRecord{}).
		Where("collection = ?", collection).
		Count(&count).Error
	return count, err
}

func (s *pgvectorService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
