package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"pdf-rag-be/pkg/ragerror"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Processing ProcessingConfig
	Embedding  EmbeddingConfig
	Keys       APIKeys
	Ai         AIConfig
	Events     EventsConfig
	Telemetry  TelemetryConfig
	Auth       AuthConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	DataDir     string
	StorageType string // "memory", "local" or "postgres"
	RecordStore string // "file", "memory" or "redis"
}

type ProcessingConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	MaxFileSizeMB     int
	RetrievalK        int
	HistoryMaxRecords int
}

type EmbeddingConfig struct {
	Provider       string // "hash", "ollama", "gemini" or "jina"
	OllamaModel    string
	HashDimensions int
	CacheTTL       time.Duration
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Jina         string
}

type AIConfig struct {
	GeminiModel      string
	OllamaBaseURL    string
	OllamaModel      string
	OpenAIBaseURL    string
	OpenAIModel      string
	LLMTimeout       time.Duration
	BreakerEnabled   bool
	BreakerThreshold int
}

type EventsConfig struct {
	Bus   string // "gochannel" or "nats"
	Topic string
}

type TelemetryConfig struct {
	OtelEnabled  bool
	OtelEndpoint string
	ServiceName  string
}

type AuthConfig struct {
	JWTSecret string
}

var (
	storageTypes       = []string{"memory", "local", "postgres"}
	recordStores       = []string{"file", "memory", "redis"}
	embeddingProviders = []string{"hash", "ollama", "gemini", "jina"}
	eventBuses         = []string{"gochannel", "nats"}
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			DataDir:     getEnv("DATA_DIR", "data"),
			StorageType: getEnv("STORAGE_TYPE", "local"),
			RecordStore: getEnv("RECORD_STORE", "file"),
		},
		Processing: ProcessingConfig{
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 500),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 50),
			MaxFileSizeMB:     getEnvAsInt("MAX_FILE_SIZE_MB", 50),
			RetrievalK:        getEnvAsInt("RETRIEVAL_K", 5),
			HistoryMaxRecords: getEnvAsInt("HISTORY_MAX_RECORDS", 1000),
		},
		Embedding: EmbeddingConfig{
			Provider:       getEnv("EMBEDDING_PROVIDER", "hash"),
			OllamaModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			HashDimensions: getEnvAsInt("HASH_EMBEDDING_DIMENSIONS", 384),
			CacheTTL:       getEnvAsDuration("EMBEDDING_CACHE_TTL", 10*time.Minute),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:      getEnv("OLLAMA_MODEL", "llama2"),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			LLMTimeout:       getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			BreakerEnabled:   getEnvAsBool("LLM_BREAKER_ENABLED", true),
			BreakerThreshold: getEnvAsInt("LLM_BREAKER_THRESHOLD", 3),
		},
		Events: EventsConfig{
			Bus:   getEnv("EVENT_BUS", "gochannel"),
			Topic: getEnv("EVENTS_TOPIC_NAME", "PDF_RAG_EVENTS"),
		},
		Telemetry: TelemetryConfig{
			OtelEnabled:  getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "pdf-rag-be"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
}

// Validate checks every setting and returns all problems at once, each
// wrapping ragerror.ErrConfiguration.
func (c *Config) Validate(ctx context.Context) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ragerror.ErrConfiguration}, args...)...))
	}

	if !slices.Contains(storageTypes, c.Storage.StorageType) {
		add("invalid STORAGE_TYPE %q, must be one of %v", c.Storage.StorageType, storageTypes)
	}
	if c.Storage.StorageType == "postgres" && c.Database.Connection == "" {
		add("STORAGE_TYPE=postgres requires DB_CONNECTION_STRING")
	}
	if !slices.Contains(recordStores, c.Storage.RecordStore) {
		add("invalid RECORD_STORE %q, must be one of %v", c.Storage.RecordStore, recordStores)
	}
	if c.Processing.ChunkSize <= 0 {
		add("CHUNK_SIZE must be positive")
	}
	if c.Processing.ChunkOverlap < 0 {
		add("CHUNK_OVERLAP must be non-negative")
	}
	if c.Processing.ChunkSize > 0 && c.Processing.ChunkOverlap >= c.Processing.ChunkSize {
		add("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.Processing.ChunkOverlap, c.Processing.ChunkSize)
	}
	if c.Processing.MaxFileSizeMB <= 0 {
		add("MAX_FILE_SIZE_MB must be positive")
	}
	if c.Processing.RetrievalK <= 0 {
		add("RETRIEVAL_K must be positive")
	}
	if c.Processing.HistoryMaxRecords <= 0 {
		add("HISTORY_MAX_RECORDS must be positive")
	}
	if !slices.Contains(embeddingProviders, c.Embedding.Provider) {
		add("invalid EMBEDDING_PROVIDER %q, must be one of %v", c.Embedding.Provider, embeddingProviders)
	}
	if c.Embedding.Provider == "gemini" && c.Keys.GoogleGemini == "" {
		add("EMBEDDING_PROVIDER=gemini requires GEMINI_API_KEY")
	}
	if c.Embedding.Provider == "jina" && c.Keys.Jina == "" {
		add("EMBEDDING_PROVIDER=jina requires JINA_API_KEY")
	}
	if c.Ai.LLMTimeout <= 0 {
		add("LLM_TIMEOUT must be positive")
	}
	if !slices.Contains(eventBuses, c.Events.Bus) {
		add("invalid EVENT_BUS %q, must be one of %v", c.Events.Bus, eventBuses)
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) UploadDir() string      { return filepath.Join(c.Storage.DataDir, "uploads") }
func (c *Config) VectorDBPath() string   { return filepath.Join(c.Storage.DataDir, "vector_db") }
func (c *Config) ChatHistoryDir() string { return filepath.Join(c.Storage.DataDir, "chat_history") }

// CreateDirectories makes the data directories the local stores write to.
func (c *Config) CreateDirectories() error {
	for _, dir := range []string{c.UploadDir(), c.VectorDBPath(), c.ChatHistoryDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
