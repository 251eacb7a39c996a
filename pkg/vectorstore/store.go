package vectorstore

import (
	"context"
	"fmt"
	"sort"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/chunker"
	"pdf-rag-be/pkg/embedding"
	"pdf-rag-be/pkg/ragerror"

	"github.com/google/uuid"
)

const (
	logModule         = "vector_store"
	DefaultNResults   = 5
	DefaultSampleSize = 5
	documentNameKey   = chunker.MetaDocumentName
)

// Result is one ranked search hit as seen by the rest of the system.
// Distance is passed through from the engine; nil when the engine gave none.
type Result struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
	Distance *float64       `json:"distance"`
}

// CollectionInfo is a best-effort summary. TotalChunks is exact; document
// names come from a small sample of records.
type CollectionInfo struct {
	TotalChunks     int      `json:"total_chunks"`
	StorageType     string   `json:"storage_type"`
	CollectionName  string   `json:"collection_name"`
	UniqueDocuments int      `json:"unique_documents"`
	DocumentNames   []string `json:"document_names"`
	Error           string   `json:"error,omitempty"`
}

type Option func(*Store)

// WithSampleSize sets how many records GetCollectionInfo inspects.
func WithSampleSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithIDGenerator overrides record id generation (UUIDv4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store is the vector index adapter. Failures never escape as errors:
// writes report false, reads report empty results, and both are logged.
type Store struct {
	engine     Engine
	embedder   embedding.EmbeddingProvider
	logger     logger.ILogger
	sampleSize int
	newID      func() string
}

func NewStore(engine Engine, embedder embedding.EmbeddingProvider, log logger.ILogger, opts ...Option) *Store {
	s := &Store{
		engine:     engine,
		embedder:   embedder,
		logger:     log,
		sampleSize: DefaultSampleSize,
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) StorageType() string { return s.engine.Kind() }

// AddDocuments embeds and stores every chunk under a fresh id. The batch is
// all-or-nothing from the caller's point of view.
func (s *Store) AddDocuments(ctx context.Context, chunks []chunker.Chunk) bool {
	if len(chunks) == 0 {
		s.logger.Warn(logModule, "No chunks provided to add", nil)
		return false
	}

	records := make([]Record, 0, len(chunks))
	for i, ch := range chunks {
		res, err := s.embedder.Generate(ctx, ch.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			s.logger.Error(logModule, "Error embedding chunk", map[string]interface{}{
				"chunk": i,
				"error": fmt.Errorf("%w: %v", ragerror.ErrIndex, err).Error(),
			})
			return false
		}
		records = append(records, Record{
			ID:        s.newID(),
			Text:      ch.Text,
			Metadata:  EncodeMetadata(ch.Metadata),
			Embedding: res.Embedding.Values,
		})
	}

	if err := s.engine.Add(ctx, records); err != nil {
		s.logger.Error(logModule, "Error adding documents to vector store", map[string]interface{}{
			"error": fmt.Errorf("%w: %v", ragerror.ErrIndex, err).Error(),
		})
		return false
	}

	s.logger.Info(logModule, "Added chunks to vector store", map[string]interface{}{"count": len(records)})
	return true
}

// Search returns up to n results for query, optionally restricted by an
// exact-match metadata filter. Engine order is preserved.
func (s *Store) Search(ctx context.Context, query string, n int, filter Where) []Result {
	if n <= 0 {
		n = DefaultNResults
	}

	res, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		s.logger.Error(logModule, "Error embedding query", map[string]interface{}{"error": err.Error()})
		return []Result{}
	}

	matches, err := s.engine.Query(ctx, res.Embedding.Values, n, filter)
	if err != nil {
		s.logger.Error(logModule, "Error searching vector store", map[string]interface{}{
			"error": fmt.Errorf("%w: %v", ragerror.ErrIndex, err).Error(),
		})
		return []Result{}
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		distance := m.Distance
		results = append(results, Result{
			ID:       m.ID,
			Text:     m.Text,
			Metadata: m.Metadata,
			Distance: &distance,
		})
	}

	s.logger.Info(logModule, "Found results for query", map[string]interface{}{"count": len(results)})
	return results
}

// DeleteByDocument removes every record whose document_name equals name.
// The engine has no list-by-metadata primitive, so this runs a filtered
// query sized to the whole collection and deletes the hits by id.
// A document with no records is a successful no-op.
func (s *Store) DeleteByDocument(ctx context.Context, name string) bool {
	total, err := s.engine.Count(ctx)
	if err != nil {
		s.logger.Error(logModule, "Error counting collection", map[string]interface{}{"error": err.Error()})
		return false
	}
	if total == 0 {
		s.logger.Info(logModule, "No chunks found for document", map[string]interface{}{"document": name})
		return true
	}

	res, err := s.embedder.Generate(ctx, name, embedding.TaskRetrievalQuery)
	if err != nil {
		s.logger.Error(logModule, "Error embedding delete probe", map[string]interface{}{"error": err.Error()})
		return false
	}

	matches, err := s.engine.Query(ctx, res.Embedding.Values, total, Where{documentNameKey: name})
	if err != nil {
		s.logger.Error(logModule, "Error locating document chunks", map[string]interface{}{"error": err.Error()})
		return false
	}
	if len(matches) == 0 {
		s.logger.Info(logModule, "No chunks found for document", map[string]interface{}{"document": name})
		return true
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	if err := s.engine.Delete(ctx, ids); err != nil {
		s.logger.Error(logModule, "Error deleting document chunks", map[string]interface{}{
			"document": name,
			"error":    fmt.Errorf("%w: %v", ragerror.ErrIndex, err).Error(),
		})
		return false
	}

	s.logger.Info(logModule, "Deleted chunks from document", map[string]interface{}{
		"document": name,
		"count":    len(ids),
	})
	return true
}

func (s *Store) GetCollectionInfo(ctx context.Context) CollectionInfo {
	info := CollectionInfo{
		StorageType:    s.engine.Kind(),
		CollectionName: CollectionName,
		DocumentNames:  []string{},
	}

	count, err := s.engine.Count(ctx)
	if err != nil {
		s.logger.Error(logModule, "Error getting collection info", map[string]interface{}{"error": err.Error()})
		info.Error = err.Error()
		return info
	}
	info.TotalChunks = count

	if count > 0 {
		sample, err := s.engine.Peek(ctx, min(s.sampleSize, count))
		if err != nil {
			s.logger.Warn(logModule, "Error sampling collection", map[string]interface{}{"error": err.Error()})
		}
		seen := map[string]struct{}{}
		for _, rec := range sample {
			name, ok := rec.Metadata[documentNameKey].(string)
			if !ok {
				continue
			}
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				info.DocumentNames = append(info.DocumentNames, name)
			}
		}
		sort.Strings(info.DocumentNames)
	}

	info.UniqueDocuments = len(info.DocumentNames)
	return info
}

// ClearCollection drops and recreates the collection. Irreversible: callers
// must gate it behind explicit confirmation.
func (s *Store) ClearCollection(ctx context.Context) bool {
	if err := s.engine.Reset(ctx); err != nil {
		s.logger.Error(logModule, "Error clearing collection", map[string]interface{}{"error": err.Error()})
		return false
	}
	s.logger.Info(logModule, "Cleared all documents from collection", nil)
	return true
}

func (s *Store) Close() error {
	return s.engine.Close()
}
