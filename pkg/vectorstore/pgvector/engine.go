// Package pgvector is the Postgres vector engine: rows live in a pgvector
// table and ranking uses the cosine distance operator (<=>).
package pgvector

import (
	"context"
	"fmt"

	"pdf-rag-be/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Engine struct {
	db *gorm.DB
}

var _ vectorstore.Engine = (*Engine)(nil)

// NewEngine enables the vector extension and migrates the collection table.
func NewEngine(ctx context.Context, db *gorm.DB) (*Engine, error) {
	e := &Engine{db: db}
	if err := e.migrate(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Kind() string { return vectorstore.StoragePostgres }

func (e *Engine) migrate(ctx context.Context) error {
	if err := e.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enabling pgvector extension: %w", err)
	}
	if err := e.db.WithContext(ctx).AutoMigrate(&Chunk{}); err != nil {
		return fmt.Errorf("migrating collection table: %w", err)
	}
	return nil
}

func (e *Engine) Add(ctx context.Context, records []vectorstore.Record) error {
	rows := make([]*Chunk, len(records))
	for i, r := range records {
		meta, err := vectorstore.MarshalMetadata(r.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", r.ID, err)
		}
		rows[i] = &Chunk{
			Id:        r.ID,
			Document:  r.Text,
			Metadata:  datatypes.JSON(meta),
			Embedding: pgvector.NewVector(r.Embedding),
		}
	}
	return e.db.WithContext(ctx).Create(rows).Error
}

func (e *Engine) Query(ctx context.Context, vector []float32, n int, where vectorstore.Where) ([]vectorstore.Match, error) {
	if n <= 0 {
		return []vectorstore.Match{}, nil
	}

	query := e.db.WithContext(ctx).
		Model(&Chunk{}).
		Select("*, embedding <=> ? AS distance", pgvector.NewVector(vector))
	for key, value := range where {
		query = query.Where(datatypes.JSONQuery("metadata").Equals(value, key))
	}

	var rows []scoredChunk
	if err := query.Order("distance").Order("seq").Limit(n).Scan(&rows).Error; err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row.Chunk)
		if err != nil {
			return nil, err
		}
		matches = append(matches, vectorstore.Match{Record: rec, Distance: row.Distance})
	}
	return matches, nil
}

func (e *Engine) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return e.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Chunk{}).Error
}

func (e *Engine) Count(ctx context.Context) (int, error) {
	var count int64
	if err := e.db.WithContext(ctx).Model(&Chunk{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (e *Engine) Peek(ctx context.Context, n int) ([]vectorstore.Record, error) {
	var rows []Chunk
	if err := e.db.WithContext(ctx).Order("seq").Limit(n).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]vectorstore.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Reset drops the collection table and migrates it again.
func (e *Engine) Reset(ctx context.Context) error {
	if err := e.db.WithContext(ctx).Migrator().DropTable(&Chunk{}); err != nil {
		return fmt.Errorf("dropping collection table: %w", err)
	}
	return e.migrate(ctx)
}

func (e *Engine) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(row Chunk) (vectorstore.Record, error) {
	metadata, err := vectorstore.UnmarshalMetadata(row.Metadata)
	if err != nil {
		return vectorstore.Record{}, fmt.Errorf("decoding metadata for %s: %w", row.Id, err)
	}
	return vectorstore.Record{
		ID:        row.Id,
		Text:      row.Document,
		Metadata:  metadata,
		Embedding: row.Embedding.Slice(),
	}, nil
}
