// Package vectorstore is the boundary between the pipeline and the
// similarity-search engine. Store normalizes add/search/delete and the
// result shape; Engine implementations own storage and ranking.
package vectorstore

import (
	"context"
	"math"
)

// CollectionName is the single logical collection holding every document.
// Documents are told apart by metadata, not by separate collections.
const CollectionName = "pdf_documents"

// Storage modes.
const (
	StorageMemory   = "memory"
	StorageLocal    = "local"
	StoragePostgres = "postgres"
)

// Record is the persisted form of a chunk. Metadata holds only scalars
// (string, bool, int64, float64); see EncodeMetadata.
type Record struct {
	ID        string
	Text      string
	Metadata  map[string]any
	Embedding []float32
}

// Match is a record ranked by an engine. Lower distance = more similar.
type Match struct {
	Record
	Distance float64
}

// Where is an exact-match conjunction over metadata fields. Nil or empty
// means no filter.
type Where map[string]any

// Engine is the native similarity-search capability. Query returns matches
// in the engine's own order (ascending distance, engine-defined ties).
type Engine interface {
	Kind() string
	Add(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, n int, where Where) ([]Match, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	Peek(ctx context.Context, n int) ([]Record, error)
	Reset(ctx context.Context) error
	Close() error
}

// Matches reports whether metadata satisfies every condition in w.
// Numbers compare by value regardless of their Go type.
func (w Where) Matches(metadata map[string]any) bool {
	for key, want := range w {
		got, ok := metadata[key]
		if !ok || !scalarEqual(got, want) {
			return false
		}
	}
	return true
}

// CosineDistance returns 1 - cos(a, b). A zero vector is at distance 1
// from everything.
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
