package service

import (
	"context"
	"path/filepath"
	"testing"

	"pdf-rag-be/internal/config"
	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Storage:    config.StorageConfig{DataDir: dataDir, StorageType: "memory", RecordStore: "memory"},
		Processing: config.ProcessingConfig{ChunkSize: 40, ChunkOverlap: 5, MaxFileSizeMB: 1, RetrievalK: 5, HistoryMaxRecords: 100},
		Embedding:  config.EmbeddingConfig{Provider: "hash"},
		Ai:         config.AIConfig{LLMTimeout: 1},
		Events:     config.EventsConfig{Bus: "gochannel"},
	}
}

func TestAdminService_Logs(t *testing.T) {
	ctx := context.Background()
	logPath := filepath.Join(t.TempDir(), "app.log")
	log := logger.NewIsolatedLogger(logPath)
	log.Info("vector_store", "Added documents", map[string]interface{}{"count": 3})
	log.Error("rag_generator", "Error in RAG generation", nil)
	require.NoError(t, log.Sync())

	svc := NewAdminService(testConfig(t.TempDir()), nil, nil, log)

	logs, err := svc.GetSystemLogs(ctx, 0, 0, "", "")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Error in RAG generation", logs[0].Message, "newest first")
	assert.Equal(t, "rag_generator", logs[0].Module)
	assert.False(t, logs[0].CreatedAt.IsZero())

	errorsOnly, err := svc.GetSystemLogs(ctx, 1, 10, "ERROR", "")
	require.NoError(t, err)
	assert.Len(t, errorsOnly, 1)

	store, err := svc.GetSystemLogs(ctx, 1, 10, "", "vector_store")
	require.NoError(t, err)
	require.Len(t, store, 1)
	assert.Equal(t, "Added documents", store[0].Message)

	detail, err := svc.GetLogDetail(ctx, logs[1].Id)
	require.NoError(t, err)
	assert.Equal(t, "Added documents", detail.Message)
	assert.EqualValues(t, 3, detail.Details["count"])

	_, err = svc.GetLogDetail(ctx, "missing")
	assert.ErrorIs(t, err, logger.ErrLogNotFound)
}

func TestAdminService_StatusAndValidate(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	cfg := testConfig(dataDir)

	docs := newDocumentFixture(t, nil)
	chat := newChatFixture(t, &stubBackend{name: llm.BackendOllama, available: true})
	svc := NewAdminService(cfg, docs.svc, chat.svc, logger.NewNopLogger())

	status, err := svc.GetSystemStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{llm.BackendOllama}, status.Backends.Available)
	assert.Equal(t, 0, status.Documents)
	assert.Equal(t, "memory", status.Collection.StorageType)
	assert.Equal(t, filepath.Join(dataDir, "uploads"), status.Paths.UploadDir)
	assert.Equal(t, 40, status.Settings.ChunkSize)

	res := svc.ValidateConfig(ctx)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	cfg.Processing.ChunkOverlap = 40
	cfg.Storage.StorageType = "s3"
	res = svc.ValidateConfig(ctx)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)

	offline := NewAdminService(testConfig(dataDir), docs.svc, newChatFixture(t, &stubBackend{name: llm.BackendGemini}).svc, logger.NewNopLogger())
	res = offline.ValidateConfig(ctx)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "no language model available")
}
