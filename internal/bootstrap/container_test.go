package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"pdf-rag-be/internal/config"
	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/ragerror"
	"pdf-rag-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama2"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, storage string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App:        config.AppConfig{LogFilePath: filepath.Join(dir, "app.log")},
		Storage:    config.StorageConfig{DataDir: filepath.Join(dir, "data"), StorageType: storage, RecordStore: "memory"},
		Processing: config.ProcessingConfig{ChunkSize: 100, ChunkOverlap: 10, MaxFileSizeMB: 5, RetrievalK: 3, HistoryMaxRecords: 50},
		Embedding:  config.EmbeddingConfig{Provider: "hash", HashDimensions: 32, CacheTTL: time.Minute},
		Ai:         config.AIConfig{OllamaBaseURL: fakeOllama(t).URL, OllamaModel: "llama2", LLMTimeout: time.Second, BreakerEnabled: true, BreakerThreshold: 2},
		Events:     config.EventsConfig{Bus: "gochannel", Topic: "test_events"},
	}
}

func TestNewContainer_Memory(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t, vectorstore.StorageMemory))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, vectorstore.StorageMemory, c.Store.StorageType())
	assert.Equal(t, []string{llm.BackendGemini, llm.BackendOllama, llm.BackendOpenAI}, c.Registry.Names())
	assert.Equal(t, llm.BackendOllama, c.Registry.DefaultBackend())
	assert.NotNil(t, c.DocumentController)
	assert.NotNil(t, c.ChatbotController)
	assert.NotNil(t, c.AdminController)
	assert.NotNil(t, c.ConsumerService)
	assert.Nil(t, c.ActivityService, "activity log only runs on the NATS bus")
}

func TestNewContainer_LocalCreatesDirectories(t *testing.T) {
	cfg := testConfig(t, "local")
	cfg.Storage.RecordStore = "file"

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, vectorstore.StorageLocal, c.Store.StorageType())
	assert.DirExists(t, cfg.UploadDir())
	assert.FileExists(t, filepath.Join(cfg.VectorDBPath(), "vectors.db"))
}

func TestNewContainer_InvalidChunking(t *testing.T) {
	cfg := testConfig(t, vectorstore.StorageMemory)
	cfg.Processing.ChunkOverlap = cfg.Processing.ChunkSize

	_, err := NewContainer(context.Background(), cfg)
	assert.ErrorIs(t, err, ragerror.ErrConfiguration)
}
