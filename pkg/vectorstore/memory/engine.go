package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"pdf-rag-be/pkg/vectorstore"
)

// Engine is an in-process vector engine using brute-force cosine distance.
// Nothing survives a restart. Ties keep insertion order.
type Engine struct {
	mu        sync.RWMutex
	dimension int
	records   []vectorstore.Record
	index     map[string]int
}

var _ vectorstore.Engine = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{index: map[string]int{}}
}

func (e *Engine) Kind() string { return vectorstore.StorageMemory }

func (e *Engine) Add(_ context.Context, records []vectorstore.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dim := e.dimension
	seen := map[string]struct{}{}
	for _, r := range records {
		if r.ID == "" {
			return errors.New("record id is required")
		}
		if _, ok := e.index[r.ID]; ok {
			return fmt.Errorf("duplicate record id %s", r.ID)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("duplicate record id %s in batch", r.ID)
		}
		seen[r.ID] = struct{}{}

		if dim == 0 {
			dim = len(r.Embedding)
		}
		if len(r.Embedding) != dim {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(r.Embedding), dim)
		}
	}

	e.dimension = dim
	for _, r := range records {
		e.index[r.ID] = len(e.records)
		e.records = append(e.records, clone(r))
	}
	return nil
}

func (e *Engine) Query(_ context.Context, vector []float32, n int, where vectorstore.Where) ([]vectorstore.Match, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if n <= 0 {
		return []vectorstore.Match{}, nil
	}
	if e.dimension != 0 && len(vector) != e.dimension {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(vector), e.dimension)
	}

	matches := make([]vectorstore.Match, 0, len(e.records))
	for _, r := range e.records {
		if !where.Matches(r.Metadata) {
			continue
		}
		matches = append(matches, vectorstore.Match{
			Record:   clone(r),
			Distance: vectorstore.CosineDistance(vector, r.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

func (e *Engine) Delete(_ context.Context, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := e.records[:0]
	for _, r := range e.records {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	e.records = kept
	e.reindex()
	return nil
}

func (e *Engine) Count(_ context.Context) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records), nil
}

func (e *Engine) Peek(_ context.Context, n int) ([]vectorstore.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if n > len(e.records) {
		n = len(e.records)
	}
	out := make([]vectorstore.Record, 0, max(n, 0))
	for _, r := range e.records[:max(n, 0)] {
		out = append(out, clone(r))
	}
	return out, nil
}

func (e *Engine) Reset(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = nil
	e.index = map[string]int{}
	e.dimension = 0
	return nil
}

func (e *Engine) Close() error { return nil }

func (e *Engine) reindex() {
	e.index = make(map[string]int, len(e.records))
	for i, r := range e.records {
		e.index[r.ID] = i
	}
	if len(e.records) == 0 {
		e.dimension = 0
	}
}

func clone(r vectorstore.Record) vectorstore.Record {
	r.Metadata = maps.Clone(r.Metadata)
	r.Embedding = slices.Clone(r.Embedding)
	return r
}
