package service

import (
	"context"
	"errors"
	"time"

	"pdf-rag-be/internal/config"
	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/pkg/logger"
)

// zap's ISO8601 encoder layout.
const logTimeLayout = "2006-01-02T15:04:05.000Z0700"

type IAdminService interface {
	GetSystemLogs(ctx context.Context, page, limit int, level, module string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
	GetSystemStatus(ctx context.Context) (*dto.SystemStatusResponse, error)
	ValidateConfig(ctx context.Context) *dto.ValidateConfigResponse
}

type adminService struct {
	cfg       *config.Config
	documents IDocumentService
	chatbot   IChatbotService
	logger    logger.ILogger
}

func NewAdminService(cfg *config.Config, documents IDocumentService, chatbot IChatbotService, log logger.ILogger) IAdminService {
	return &adminService{
		cfg:       cfg,
		documents: documents,
		chatbot:   chatbot,
		logger:    log,
	}
}

func (s *adminService) GetSystemLogs(ctx context.Context, page, limit int, level, module string) ([]*dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	logs, err := s.logger.GetLogs(logger.LogQuery{
		Level:  level,
		Module: module,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, &dto.LogListResponse{
			Id:        l.Id,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: parseLogTime(l.Timestamp),
		})
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	l, err := s.logger.GetLogById(logId)
	if err != nil {
		return nil, err
	}

	return &dto.LogDetailResponse{
		LogListResponse: dto.LogListResponse{
			Id:        logId,
			Level:     l.Level,
			Module:    l.Module,
			Message:   l.Message,
			CreatedAt: parseLogTime(l.Timestamp),
		},
		Details: l.Details,
	}, nil
}

func (s *adminService) GetSystemStatus(ctx context.Context) (*dto.SystemStatusResponse, error) {
	docs, err := s.documents.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.SystemStatusResponse{
		Backends:   *s.chatbot.GetBackends(ctx),
		Collection: s.documents.CollectionInfo(ctx),
		Documents:  len(docs),
		Paths: dto.StoragePaths{
			UploadDir:      s.cfg.UploadDir(),
			VectorDBPath:   s.cfg.VectorDBPath(),
			ChatHistoryDir: s.cfg.ChatHistoryDir(),
		},
		Settings: dto.ProcessingSettings{
			ChunkSize:         s.cfg.Processing.ChunkSize,
			ChunkOverlap:      s.cfg.Processing.ChunkOverlap,
			MaxFileSizeMB:     s.cfg.Processing.MaxFileSizeMB,
			RetrievalK:        s.cfg.Processing.RetrievalK,
			StorageType:       s.cfg.Storage.StorageType,
			RecordStore:       s.cfg.Storage.RecordStore,
			EmbeddingProvider: s.cfg.Embedding.Provider,
		},
	}, nil
}

// ValidateConfig re-runs config validation and adds a warning when no
// language model can currently be reached.
func (s *adminService) ValidateConfig(ctx context.Context) *dto.ValidateConfigResponse {
	res := &dto.ValidateConfigResponse{Valid: true, Errors: []string{}}

	if err := s.cfg.Validate(ctx); err != nil {
		res.Valid = false
		res.Errors = append(res.Errors, splitJoined(err)...)
	}
	if len(s.chatbot.GetBackends(ctx).Available) == 0 {
		res.Valid = false
		res.Errors = append(res.Errors, "no language model available: set GEMINI_API_KEY or OPENAI_API_KEY, or start Ollama")
	}
	return res
}

func parseLogTime(raw string) time.Time {
	if ts, err := time.Parse(logTimeLayout, raw); err == nil {
		return ts
	}
	ts, _ := time.Parse(time.RFC3339, raw)
	return ts
}

func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		out := []string{}
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
