package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/entity"
	"pdf-rag-be/internal/mapper"
	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/internal/repository/contract"
	"pdf-rag-be/pkg/chunker"
	"pdf-rag-be/pkg/events"
	"pdf-rag-be/pkg/extractor"
	"pdf-rag-be/pkg/metrics"
	"pdf-rag-be/pkg/ragerror"
	"pdf-rag-be/pkg/vectorstore"
)

const documentModule = "document_service"

var (
	ErrDocumentExists   = errors.New("document already exists")
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotPDF           = fmt.Errorf("%w: only PDF files are accepted", ragerror.ErrIngestion)
)

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Filename string
	Data     []byte
}

type IDocumentService interface {
	Upload(ctx context.Context, files []UploadFile) (*dto.UploadResponse, error)
	Ingest(ctx context.Context, filename string, data []byte) (*dto.DocumentResponse, error)
	GetAll(ctx context.Context) ([]*dto.DocumentResponse, error)
	Show(ctx context.Context, name string) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, name string) (*dto.DeleteDocumentResponse, error)
	Search(ctx context.Context, req *dto.SearchRequest) ([]*dto.SearchResult, error)
	CollectionInfo(ctx context.Context) dto.CollectionResponse
	ClearCollection(ctx context.Context) error
}

// DocumentIndex is the part of vectorstore.Store ingestion drives.
type DocumentIndex interface {
	AddDocuments(ctx context.Context, chunks []chunker.Chunk) bool
	Search(ctx context.Context, query string, n int, filter vectorstore.Where) []vectorstore.Result
	DeleteByDocument(ctx context.Context, name string) bool
	GetCollectionInfo(ctx context.Context) vectorstore.CollectionInfo
	ClearCollection(ctx context.Context) bool
}

type documentService struct {
	index     DocumentIndex
	documents contract.DocumentRepository
	extractor *extractor.Extractor
	chunker   *chunker.Chunker
	uploadDir string
	defaultK  int
	publisher events.Publisher
	metrics   *metrics.Metrics
	mapper    *mapper.DocumentMapper
	logger    logger.ILogger
}

func NewDocumentService(
	index DocumentIndex,
	documents contract.DocumentRepository,
	ext *extractor.Extractor,
	chk *chunker.Chunker,
	uploadDir string,
	defaultK int,
	publisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		index:     index,
		documents: documents,
		extractor: ext,
		chunker:   chk,
		uploadDir: uploadDir,
		defaultK:  defaultK,
		publisher: publisher,
		metrics:   m,
		mapper:    mapper.NewDocumentMapper(),
		logger:    log,
	}
}

// Upload ingests each file independently. Names that are already indexed
// are skipped; one bad file never aborts the batch.
func (s *documentService) Upload(ctx context.Context, files []UploadFile) (*dto.UploadResponse, error) {
	res := &dto.UploadResponse{Total: len(files), Results: make([]*dto.UploadResult, 0, len(files))}

	for _, f := range files {
		doc, err := s.Ingest(ctx, f.Filename, f.Data)
		result := &dto.UploadResult{Filename: f.Filename}
		switch {
		case err == nil:
			result.Status = "processed"
			result.Document = doc
			res.Processed++
		case errors.Is(err, ErrDocumentExists):
			result.Status = "skipped"
			result.Error = err.Error()
		default:
			result.Status = "failed"
			result.Error = err.Error()
		}
		res.Results = append(res.Results, result)
	}

	s.logger.Info(documentModule, fmt.Sprintf("Processed %d/%d files", res.Processed, res.Total), nil)
	return res, nil
}

// Ingest runs one PDF through extract, save, chunk, index and metadata.
func (s *documentService) Ingest(ctx context.Context, filename string, data []byte) (*dto.DocumentResponse, error) {
	if !isPDFName(filename) {
		s.metrics.ObserveIngestFailure("not_pdf")
		return nil, ErrNotPDF
	}

	existing, err := s.documents.FindByName(ctx, filename)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn(documentModule, "Document already exists, skipping", map[string]interface{}{"document": filename})
		return nil, fmt.Errorf("%w: %s", ErrDocumentExists, filename)
	}

	doc, err := s.extractor.Extract(data, int64(len(data)))
	if err != nil {
		s.metrics.ObserveIngestFailure(ingestFailureReason(err))
		s.logger.Error(documentModule, "Failed to extract text", map[string]interface{}{"document": filename, "error": err.Error()})
		return nil, err
	}

	savedPath, err := extractor.SaveUpload(s.uploadDir, filename, data)
	if err != nil {
		s.metrics.ObserveIngestFailure("save")
		return nil, fmt.Errorf("saving %s: %w", filename, err)
	}

	chunks := s.chunker.ChunkDocument(doc.Text, filename, savedPath)
	if len(chunks) == 0 {
		s.metrics.ObserveIngestFailure("chunk")
		s.removeUpload(savedPath)
		return nil, fmt.Errorf("%w: %s produced no chunks", ragerror.ErrNoText, filename)
	}

	if !s.index.AddDocuments(ctx, chunks) {
		s.metrics.ObserveIngestFailure("index")
		s.removeUpload(savedPath)
		return nil, fmt.Errorf("%w: failed to add %s to vector store", ragerror.ErrIndex, filename)
	}

	meta := &entity.DocumentMetadata{
		Name:         filename,
		FilePath:     savedPath,
		SizeMB:       extractor.RoundMB(int64(len(data))),
		NumPages:     doc.NumPages,
		NumChunks:    len(chunks),
		ChunkSize:    s.chunker.Size(),
		ChunkOverlap: s.chunker.Overlap(),
	}
	if err := s.documents.Save(ctx, meta); err != nil {
		s.metrics.ObserveIngestFailure("metadata")
		s.logger.Error(documentModule, "Failed to save document metadata", map[string]interface{}{"document": filename, "error": err.Error()})
		// no metadata means no later delete can find these chunks
		if !s.index.DeleteByDocument(ctx, filename) {
			s.logger.Error(documentModule, "Failed to roll back indexed chunks", map[string]interface{}{"document": filename})
		}
		s.removeUpload(savedPath)
		return nil, fmt.Errorf("saving metadata for %s: %w", filename, err)
	}

	s.metrics.ObserveIngest(len(chunks))
	s.publish(ctx, events.TypeDocumentIngested, map[string]interface{}{
		"document":   filename,
		"num_chunks": len(chunks),
		"num_pages":  doc.NumPages,
	})
	s.logger.Info(documentModule, "Processed document", map[string]interface{}{"document": filename, "chunks": len(chunks)})

	return s.mapper.ToResponse(meta), nil
}

func (s *documentService) GetAll(ctx context.Context) ([]*dto.DocumentResponse, error) {
	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToResponses(docs), nil
}

func (s *documentService) Show(ctx context.Context, name string) (*dto.DocumentResponse, error) {
	doc, err := s.documents.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	return s.mapper.ToResponse(doc), nil
}

// Delete removes a document's vectors and its metadata. Unknown names are
// not an error when there was nothing to delete on either side. When the
// vectors cannot be removed the metadata and upload are kept so the delete
// can be retried.
func (s *documentService) Delete(ctx context.Context, name string) (*dto.DeleteDocumentResponse, error) {
	doc, err := s.documents.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if !s.index.DeleteByDocument(ctx, name) {
		s.logger.Error(documentModule, "Failed to delete document vectors", map[string]interface{}{"document": name})
		return nil, fmt.Errorf("%w: failed to delete vectors of %s", ragerror.ErrIndex, name)
	}
	metaDeleted, err := s.documents.Delete(ctx, name)
	if err != nil {
		return nil, err
	}

	if doc != nil && doc.FilePath != "" {
		s.removeUpload(doc.FilePath)
	}

	s.publish(ctx, events.TypeDocumentDeleted, map[string]interface{}{"document": name})
	return &dto.DeleteDocumentResponse{
		Name:            name,
		VectorsDeleted:  true,
		MetadataDeleted: metaDeleted,
	}, nil
}

func (s *documentService) Search(ctx context.Context, req *dto.SearchRequest) ([]*dto.SearchResult, error) {
	k := req.K
	if k <= 0 {
		k = s.defaultK
	}
	var filter vectorstore.Where
	if req.Document != "" {
		filter = vectorstore.Where{chunker.MetaDocumentName: req.Document}
	}
	return s.mapper.SearchResultsToResponse(s.index.Search(ctx, req.Query, k, filter)), nil
}

func (s *documentService) CollectionInfo(ctx context.Context) dto.CollectionResponse {
	return s.mapper.CollectionToResponse(s.index.GetCollectionInfo(ctx))
}

// ClearCollection drops every vector and, with them, all document metadata.
func (s *documentService) ClearCollection(ctx context.Context) error {
	if !s.index.ClearCollection(ctx) {
		return fmt.Errorf("%w: failed to clear collection", ragerror.ErrIndex)
	}

	docs, err := s.documents.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if _, err := s.documents.Delete(ctx, d.Name); err != nil {
			return err
		}
	}

	s.publish(ctx, events.TypeCollectionCleared, map[string]interface{}{"documents": len(docs)})
	s.logger.Info(documentModule, "Cleared collection", map[string]interface{}{"documents": len(docs)})
	return nil
}

func (s *documentService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn(documentModule, "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func (s *documentService) removeUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn(documentModule, "Failed to remove uploaded file", map[string]interface{}{"path": path, "error": err.Error()})
	}
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func ingestFailureReason(err error) string {
	switch {
	case errors.Is(err, ragerror.ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, ragerror.ErrNoText):
		return "no_text"
	case errors.Is(err, ragerror.ErrUnreadable):
		return "unreadable"
	}
	return "extract"
}
