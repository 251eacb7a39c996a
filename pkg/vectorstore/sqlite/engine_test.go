package sqlite

import (
	"context"
	"testing"

	"pdf-rag-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func seed(t *testing.T, e *Engine) {
	t.Helper()
	err := e.Add(context.Background(), []vectorstore.Record{
		{ID: "1", Text: "east", Metadata: map[string]any{"document_name": "a.pdf", "chunk_index": int64(0)}, Embedding: []float32{1, 0}},
		{ID: "2", Text: "north", Metadata: map[string]any{"document_name": "a.pdf", "chunk_index": int64(1)}, Embedding: []float32{0, 1}},
		{ID: "3", Text: "east again", Metadata: map[string]any{"document_name": "b.pdf", "chunk_index": int64(0)}, Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)
}

func TestEngine_QueryOrdering(t *testing.T) {
	e := newTestEngine(t)
	seed(t, e)

	matches, err := e.Query(context.Background(), []float32{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Equal distances keep insertion order.
	assert.Equal(t, []string{"1", "3", "2"}, []string{matches[0].ID, matches[1].ID, matches[2].ID})
	assert.InDelta(t, 0, matches[0].Distance, 1e-6)
	assert.Equal(t, int64(1), matches[2].Metadata["chunk_index"])
	assert.Equal(t, []float32{0, 1}, matches[2].Embedding)
}

func TestEngine_QueryWithFilter(t *testing.T) {
	e := newTestEngine(t)
	seed(t, e)

	matches, err := e.Query(context.Background(), []float32{1, 0}, 10, vectorstore.Where{"document_name": "a.pdf"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, "a.pdf", m.Metadata["document_name"])
	}
}

func TestEngine_DeleteCountPeek(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seed(t, e)

	require.NoError(t, e.Delete(ctx, []string{"1", "2"}))

	count, err := e.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	recs, err := e.Peek(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "east again", recs[0].Text)
}

func TestEngine_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	seed(t, e)

	err := e.Add(ctx, []vectorstore.Record{
		{ID: "4", Text: "new", Metadata: map[string]any{}, Embedding: []float32{1, 1}},
		{ID: "1", Text: "dup", Metadata: map[string]any{}, Embedding: []float32{1, 1}},
	})
	assert.Error(t, err)

	count, err := e.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestEngine_ResetAndReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	e, err := NewEngine(dir)
	require.NoError(t, err)
	seed(t, e)
	require.NoError(t, e.Close())

	reopened, err := NewEngine(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, reopened.Reset(ctx))
	count, err = reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
