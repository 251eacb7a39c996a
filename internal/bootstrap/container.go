package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pdf-rag-be/internal/config"
	"pdf-rag-be/internal/controller"
	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/internal/repository/contract"
	"pdf-rag-be/internal/repository/file"
	"pdf-rag-be/internal/repository/memory"
	redisrepo "pdf-rag-be/internal/repository/redis"
	"pdf-rag-be/internal/service"
	"pdf-rag-be/pkg/chunker"
	"pdf-rag-be/pkg/database"
	"pdf-rag-be/pkg/embedding"
	"pdf-rag-be/pkg/embedding/jina"
	"pdf-rag-be/pkg/events"
	"pdf-rag-be/pkg/extractor"
	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/llm/factory"
	"pdf-rag-be/pkg/metrics"
	pktNats "pdf-rag-be/pkg/nats"
	"pdf-rag-be/pkg/rag"
	"pdf-rag-be/pkg/ragerror"
	"pdf-rag-be/pkg/vectorstore"
	vsmemory "pdf-rag-be/pkg/vectorstore/memory"
	"pdf-rag-be/pkg/vectorstore/pgvector"
	"pdf-rag-be/pkg/vectorstore/sqlite"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatbotController  controller.IChatbotController
	AdminController    controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ActivityService *service.ActivityService

	Logger          logger.ILogger
	MetricsRegistry *prometheus.Registry
	Registry        *llm.Registry
	Store           *vectorstore.Store

	closers []func() error
}

// NewContainer wires every component from cfg. Optional infrastructure
// (NATS, a reachable backend) only produces warnings; a broken vector
// engine or record store is an error.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() error { _ = sysLogger.Sync(); return nil })

	if err := cfg.CreateDirectories(); err != nil {
		return nil, fmt.Errorf("%w: %v", ragerror.ErrConfiguration, err)
	}

	c.MetricsRegistry = prometheus.NewRegistry()
	c.MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(c.MetricsRegistry)

	// 2. Vector index
	embedder := newEmbeddingProvider(cfg)
	engine, err := c.newEngine(ctx, cfg)
	if err != nil {
		return nil, c.fail(err)
	}
	c.Store = vectorstore.NewStore(engine, embedder, sysLogger)
	c.closers = append(c.closers, c.Store.Close)
	log.Printf("[INFO] Vector store: %s (embeddings: %s)", c.Store.StorageType(), embedder.Name())

	// 3. Record stores
	documents, history, err := c.newRecordStores(ctx, cfg)
	if err != nil {
		return nil, c.fail(err)
	}

	// 4. Language models
	breaker := llm.DefaultBreakerSettings()
	breaker.FailureThreshold = uint32(max(cfg.Ai.BreakerThreshold, 1))
	settings := factory.Settings{
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		GeminiModel:   cfg.Ai.GeminiModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.OllamaModel,
		OpenAIAPIKey:  cfg.Keys.OpenAI,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		OpenAIModel:   cfg.Ai.OpenAIModel,
		Timeout:       cfg.Ai.LLMTimeout,
	}
	if cfg.Ai.BreakerEnabled {
		settings.Breaker = &breaker
	}
	c.Registry = llm.NewRegistry(ctx, sysLogger, factory.NewBackends(settings)...)
	if c.Registry.DefaultBackend() == "" {
		log.Printf("[WARN] No language model available. Set GEMINI_API_KEY or OPENAI_API_KEY, or start Ollama at %s", cfg.Ai.OllamaBaseURL)
	} else {
		log.Printf("[INFO] Default language model: %s", c.Registry.DefaultBackend())
	}

	// 5. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, pubSub.Close)
	publisher := service.NewPublisherService(cfg.Events.Topic, pubSub)

	var forward events.Publisher
	if cfg.Events.Bus == "nats" {
		forward = c.connectNats(cfg)
	}
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Events.Topic, forward, sysLogger)

	// 6. Services
	chk, err := chunker.New(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	if err != nil {
		return nil, c.fail(err)
	}
	retriever := rag.NewRetriever(c.Store, sysLogger, cfg.Processing.RetrievalK)
	orchestrator := rag.NewOrchestrator(retriever, c.Registry, history, sysLogger,
		rag.WithPublisher(publisher),
		rag.WithMetrics(m),
	)

	documentService := service.NewDocumentService(
		c.Store,
		documents,
		extractor.New(cfg.Processing.MaxFileSizeMB, sysLogger),
		chk,
		cfg.UploadDir(),
		cfg.Processing.RetrievalK,
		publisher,
		m,
		sysLogger,
	)
	chatbotService := service.NewChatbotService(orchestrator, history, c.Registry, cfg.Processing.RetrievalK)
	adminService := service.NewAdminService(cfg, documentService, chatbotService, sysLogger)

	// 7. Controllers
	c.DocumentController = controller.NewDocumentController(documentService)
	c.ChatbotController = controller.NewChatbotController(chatbotService)
	c.AdminController = controller.NewAdminController(adminService)

	return c, nil
}

func newEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	var provider embedding.EmbeddingProvider
	switch cfg.Embedding.Provider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Embedding.OllamaModel)
	case "gemini":
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	case "jina":
		provider = jina.NewJinaProvider(cfg.Keys.Jina, "", "")
	default:
		provider = embedding.NewHashProvider(cfg.Embedding.HashDimensions)
	}
	if cfg.Embedding.CacheTTL > 0 {
		provider = embedding.NewCachedProvider(provider, cfg.Embedding.CacheTTL)
	}
	return provider
}

func (c *Container) newEngine(ctx context.Context, cfg *config.Config) (vectorstore.Engine, error) {
	switch cfg.Storage.StorageType {
	case "memory":
		return vsmemory.NewEngine(), nil
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: connecting to postgres: %v", ragerror.ErrIndex, err)
		}
		return pgvector.NewEngine(ctx, db)
	default:
		return sqlite.NewEngine(cfg.VectorDBPath())
	}
}

func (c *Container) newRecordStores(ctx context.Context, cfg *config.Config) (contract.DocumentRepository, contract.ChatHistoryRepository, error) {
	limit := cfg.Processing.HistoryMaxRecords
	switch cfg.Storage.RecordStore {
	case "memory":
		return memory.NewDocumentRepository(), memory.NewChatHistoryRepository(limit), nil
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		c.closers = append(c.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return redisrepo.NewDocumentRepository(rdb, redisrepo.DefaultKeyPrefix),
			redisrepo.NewChatHistoryRepository(rdb, redisrepo.DefaultKeyPrefix, limit), nil
	default:
		return file.NewDocumentRepository(cfg.ChatHistoryDir()), file.NewChatHistoryRepository(cfg.ChatHistoryDir(), limit), nil
	}
}

// connectNats returns the forwarding publisher, or nil when NATS is down.
func (c *Container) connectNats(cfg *config.Config) events.Publisher {
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		return nil
	}
	c.closers = append(c.closers, func() error { natsPub.Close(); return nil })

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, func() error { natsSub.Close(); return nil })
		c.ActivityService = service.NewActivityService(natsSub, logger.NewIsolatedLogger("logs/activity.log"))
	}
	return natsPub
}

func (c *Container) fail(err error) error {
	return errors.Join(err, c.Close())
}

// Close releases everything NewContainer opened, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
