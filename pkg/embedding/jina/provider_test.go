package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdf-rag-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsTaskAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultModel, req.Model)
		assert.Equal(t, []string{"what is rag"}, req.Input)
		assert.Equal(t, "retrieval.query", req.Task)

		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[3,4]}]}`))
	}))
	defer srv.Close()

	res, err := NewJinaProvider("key", srv.URL, "").Generate(context.Background(), "what is rag", embedding.TaskRetrievalQuery)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, res.Embedding.Values, 1e-6)
}

func TestTaskOnlyForV3Models(t *testing.T) {
	assert.Equal(t, "retrieval.passage", NewJinaProvider("k", "", "").task(embedding.TaskRetrievalDocument))
	assert.Empty(t, NewJinaProvider("k", "", "jina-embeddings-v2-base-en").task(embedding.TaskRetrievalQuery))
}

func TestGenerateErrors(t *testing.T) {
	_, err := NewJinaProvider("", "", "").Generate(context.Background(), "x", embedding.TaskRetrievalQuery)
	assert.ErrorIs(t, err, embedding.ErrEmbedding)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err = NewJinaProvider("bad", srv.URL, "").Generate(context.Background(), "x", embedding.TaskRetrievalQuery)
	assert.ErrorIs(t, err, embedding.ErrEmbedding)
	assert.Contains(t, err.Error(), "401")
}
