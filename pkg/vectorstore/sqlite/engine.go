// Package sqlite is the "local" vector engine: records persist in a SQLite
// file and ranking is a brute-force cosine scan over the collection.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"pdf-rag-be/pkg/vectorstore"
)

const dbFileName = "vectors.db"

type Engine struct {
	db    *sql.DB
	path  string
	table string
}

var _ vectorstore.Engine = (*Engine)(nil)

// NewEngine opens (or creates) <dir>/vectors.db and ensures the collection
// table exists.
func NewEngine(dir string) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating vector db directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	e := &Engine{db: db, path: dbPath, table: vectorstore.CollectionName}
	if err := e.createTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) Kind() string { return vectorstore.StorageLocal }

// Path returns the database file path.
func (e *Engine) Path() string { return e.path }

func (e *Engine) createTable(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document TEXT NOT NULL,
			metadata TEXT NOT NULL,
			embedding BLOB NOT NULL
		)
	`, e.table))
	if err != nil {
		return fmt.Errorf("creating collection table: %w", err)
	}
	return nil
}

func (e *Engine) Add(ctx context.Context, records []vectorstore.Record) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, document, metadata, embedding) VALUES (?, ?, ?, ?)", e.table))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		meta, err := vectorstore.MarshalMetadata(r.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Text, string(meta), encodeVector(r.Embedding)); err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (e *Engine) Query(ctx context.Context, vector []float32, n int, where vectorstore.Where) ([]vectorstore.Match, error) {
	if n <= 0 {
		return []vectorstore.Match{}, nil
	}

	rows, err := e.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, document, metadata, embedding FROM %s ORDER BY seq", e.table))
	if err != nil {
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	defer rows.Close()

	matches := []vectorstore.Match{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if !where.Matches(rec.Metadata) {
			continue
		}
		matches = append(matches, vectorstore.Match{
			Record:   rec,
			Distance: vectorstore.CosineDistance(vector, rec.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

func (e *Engine) Delete(ctx context.Context, ids []string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", e.table))
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("deleting record %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (e *Engine) Count(ctx context.Context) (int, error) {
	var count int
	err := e.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", e.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

func (e *Engine) Peek(ctx context.Context, n int) ([]vectorstore.Record, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT id, document, metadata, embedding FROM %s ORDER BY seq LIMIT ?", e.table), n)
	if err != nil {
		return nil, fmt.Errorf("peeking collection: %w", err)
	}
	defer rows.Close()

	records := []vectorstore.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Reset drops the collection table and creates it again.
func (e *Engine) Reset(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", e.table)); err != nil {
		return fmt.Errorf("dropping collection table: %w", err)
	}
	return e.createTable(ctx)
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func scanRecord(rows *sql.Rows) (vectorstore.Record, error) {
	var (
		rec  vectorstore.Record
		meta string
		blob []byte
	)
	if err := rows.Scan(&rec.ID, &rec.Text, &meta, &blob); err != nil {
		return rec, fmt.Errorf("scanning record: %w", err)
	}

	metadata, err := vectorstore.UnmarshalMetadata([]byte(meta))
	if err != nil {
		return rec, fmt.Errorf("decoding metadata for %s: %w", rec.ID, err)
	}
	rec.Metadata = metadata
	rec.Embedding = decodeVector(blob)
	return rec, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
