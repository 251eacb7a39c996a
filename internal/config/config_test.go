package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pdf-rag-be/pkg/ragerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("LLM_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, 500, cfg.Processing.ChunkSize)
	assert.Equal(t, 60*time.Second, cfg.Ai.LLMTimeout)
	require.NoError(t, cfg.Validate(context.Background()))
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "800")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("STORAGE_TYPE", "memory")
	t.Setenv("LLM_TIMEOUT", "90")
	t.Setenv("EMBEDDING_CACHE_TTL", "30s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("DATA_DIR", "/tmp/rag")

	cfg := Load()

	assert.Equal(t, 800, cfg.Processing.ChunkSize)
	assert.Equal(t, 100, cfg.Processing.ChunkOverlap)
	assert.Equal(t, "memory", cfg.Storage.StorageType)
	assert.Equal(t, 90*time.Second, cfg.Ai.LLMTimeout)
	assert.Equal(t, 30*time.Second, cfg.Embedding.CacheTTL)
	assert.True(t, cfg.Telemetry.OtelEnabled)
	assert.Equal(t, filepath.Join("/tmp/rag", "uploads"), cfg.UploadDir())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad storage", func(c *Config) { c.Storage.StorageType = "s3" }, "STORAGE_TYPE"},
		{"postgres without dsn", func(c *Config) { c.Storage.StorageType = "postgres" }, "DB_CONNECTION_STRING"},
		{"bad record store", func(c *Config) { c.Storage.RecordStore = "mongo" }, "RECORD_STORE"},
		{"zero chunk size", func(c *Config) { c.Processing.ChunkSize = 0 }, "CHUNK_SIZE must be positive"},
		{"negative overlap", func(c *Config) { c.Processing.ChunkOverlap = -1 }, "CHUNK_OVERLAP must be non-negative"},
		{"overlap too big", func(c *Config) { c.Processing.ChunkOverlap = 500 }, "must be smaller than CHUNK_SIZE"},
		{"max file size", func(c *Config) { c.Processing.MaxFileSizeMB = 0 }, "MAX_FILE_SIZE_MB"},
		{"gemini embeddings without key", func(c *Config) { c.Embedding.Provider = "gemini" }, "GEMINI_API_KEY"},
		{"bad event bus", func(c *Config) { c.Events.Bus = "kafka" }, "EVENT_BUS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ragerror.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.StorageType = "s3"
	cfg.Processing.RetrievalK = 0

	err := cfg.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_TYPE")
	assert.Contains(t, err.Error(), "RETRIEVAL_K")
}

func TestCreateDirectories(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.DataDir = t.TempDir()

	require.NoError(t, cfg.CreateDirectories())
	assert.DirExists(t, cfg.UploadDir())
	assert.DirExists(t, cfg.VectorDBPath())
	assert.DirExists(t, cfg.ChatHistoryDir())
}

func validConfig() *Config {
	return &Config{
		Storage:    StorageConfig{DataDir: "data", StorageType: "local", RecordStore: "file"},
		Processing: ProcessingConfig{ChunkSize: 500, ChunkOverlap: 50, MaxFileSizeMB: 50, RetrievalK: 5, HistoryMaxRecords: 1000},
		Embedding:  EmbeddingConfig{Provider: "hash"},
		Ai:         AIConfig{LLMTimeout: time.Minute},
		Events:     EventsConfig{Bus: "gochannel"},
	}
}
