package rag

import (
	"context"
	"testing"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results []vectorstore.Result
	gotN    int
	gotF    vectorstore.Where
}

func (s *stubSearcher) Search(_ context.Context, _ string, n int, filter vectorstore.Where) []vectorstore.Result {
	s.gotN, s.gotF = n, filter
	if len(s.results) > n {
		return s.results[:n]
	}
	return s.results
}

func dist(d float64) *float64 { return &d }

func TestRetriever_Retrieve_DefaultK(t *testing.T) {
	s := &stubSearcher{}
	r := NewRetriever(s, logger.NewNopLogger(), 0)

	got := r.Retrieve(context.Background(), "q", 0, vectorstore.Where{"document_name": "a.pdf"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, DefaultK, s.gotN)
	assert.Equal(t, vectorstore.Where{"document_name": "a.pdf"}, s.gotF)

	r.Retrieve(context.Background(), "q", 2, nil)
	assert.Equal(t, 2, s.gotN)
}

func TestRetriever_RetrieveWithSources_Empty(t *testing.T) {
	r := NewRetriever(&stubSearcher{}, logger.NewNopLogger(), 5)
	got := r.RetrieveWithSources(context.Background(), "q", 3)

	assert.Equal(t, RetrievedContext{Chunks: []RetrievedChunk{}, Sources: []string{}, Context: ""}, got)
}

func TestRetriever_RetrieveWithSources(t *testing.T) {
	s := &stubSearcher{results: []vectorstore.Result{
		{ID: "1", Text: "first", Metadata: map[string]any{"document_name": "b.pdf", "chunk_index": int64(4)}, Distance: dist(0.1)},
		{ID: "2", Text: "second", Metadata: map[string]any{"document_name": "a.pdf", "chunk_index": float64(2)}, Distance: dist(0.2)},
		{ID: "3", Text: "third", Metadata: map[string]any{"document_name": "b.pdf"}, Distance: dist(0.3)},
		{ID: "4", Text: "fourth", Metadata: map[string]any{}},
	}}
	r := NewRetriever(s, logger.NewNopLogger(), 5)

	got := r.RetrieveWithSources(context.Background(), "q", 10)

	require.Len(t, got.Chunks, 4)
	assert.Equal(t, "first\n\nsecond\n\nthird\n\nfourth", got.Context)
	assert.Equal(t, []string{"b.pdf", "a.pdf", UnknownSource}, got.Sources)

	assert.Equal(t, 4, got.Chunks[0].ChunkIndex)
	assert.Equal(t, 2, got.Chunks[1].ChunkIndex)
	assert.Equal(t, 0, got.Chunks[2].ChunkIndex)
	assert.Equal(t, UnknownSource, got.Chunks[3].Source)
	assert.Nil(t, got.Chunks[3].Distance)
	assert.InDelta(t, 0.2, *got.Chunks[1].Distance, 1e-9)
}

func TestIntValue(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{3, 3},
		{int64(7), 7},
		{float64(2), 2},
		{"5", 5},
		{"x", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, intValue(tt.in), "%#v", tt.in)
	}
}
