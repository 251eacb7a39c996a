package rag

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/chunker"
	"pdf-rag-be/pkg/vectorstore"
)

const (
	DefaultK      = 5
	UnknownSource = "Unknown"

	retrieverModule = "retriever"
)

// Searcher is the part of vectorstore.Store the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, n int, filter vectorstore.Where) []vectorstore.Result
}

type RetrievedChunk struct {
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	ChunkIndex int      `json:"chunk_index"`
	Distance   *float64 `json:"distance"`
}

// RetrievedContext is what the orchestrator feeds to generation. Context is
// the chunk texts joined by a blank line, in rank order.
type RetrievedContext struct {
	Chunks  []RetrievedChunk `json:"chunks"`
	Sources []string         `json:"sources"`
	Context string           `json:"context"`
}

func emptyContext() RetrievedContext {
	return RetrievedContext{Chunks: []RetrievedChunk{}, Sources: []string{}}
}

type Retriever struct {
	store    Searcher
	logger   logger.ILogger
	defaultK int
}

func NewRetriever(store Searcher, log logger.ILogger, defaultK int) *Retriever {
	if defaultK <= 0 {
		defaultK = DefaultK
	}
	return &Retriever{store: store, logger: log, defaultK: defaultK}
}

// Retrieve returns up to k ranked results; k <= 0 uses the default.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filter vectorstore.Where) []vectorstore.Result {
	if k <= 0 {
		k = r.defaultK
	}
	results := r.store.Search(ctx, query, k, filter)
	if results == nil {
		results = []vectorstore.Result{}
	}
	r.logger.Info(retrieverModule, "Retrieved chunks for query", map[string]interface{}{"count": len(results)})
	return results
}

// RetrieveWithSources shapes Retrieve's results for generation. Sources
// are the distinct document names in first-seen order.
func (r *Retriever) RetrieveWithSources(ctx context.Context, query string, k int) RetrievedContext {
	results := r.Retrieve(ctx, query, k, nil)
	if len(results) == 0 {
		return emptyContext()
	}

	out := emptyContext()
	seen := map[string]struct{}{}
	texts := make([]string, 0, len(results))
	for _, res := range results {
		chunk := ToRetrievedChunk(res)
		if _, dup := seen[chunk.Source]; !dup {
			seen[chunk.Source] = struct{}{}
			out.Sources = append(out.Sources, chunk.Source)
		}
		out.Chunks = append(out.Chunks, chunk)
		texts = append(texts, res.Text)
	}
	out.Context = strings.Join(texts, "\n\n")
	return out
}

// ToRetrievedChunk reads the source document and chunk index out of a
// result's metadata.
func ToRetrievedChunk(res vectorstore.Result) RetrievedChunk {
	source := UnknownSource
	if name, ok := res.Metadata[chunker.MetaDocumentName].(string); ok {
		source = name
	}
	return RetrievedChunk{
		Text:       res.Text,
		Source:     source,
		ChunkIndex: intValue(res.Metadata[chunker.MetaChunkIndex]),
		Distance:   res.Distance,
	}
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
