package server

import (
	"context"
	"errors"
	"log"

	"pdf-rag-be/internal/bootstrap"
	"pdf-rag-be/internal/config"
	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/internal/pkg/serverutils"
	"pdf-rag-be/internal/service"
	"pdf-rag-be/pkg/llm"
	"pdf-rag-be/pkg/ragerror"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const bytesPerMB = 1024 * 1024

// errorStatuses is checked in order, so wrapped sentinels come before
// their parents.
var errorStatuses = []serverutils.ErrorStatus{
	{Err: service.ErrDocumentNotFound, Status: fiber.StatusNotFound},
	{Err: service.ErrDocumentExists, Status: fiber.StatusConflict},
	{Err: logger.ErrLogNotFound, Status: fiber.StatusNotFound},
	{Err: ragerror.ErrFileTooLarge, Status: fiber.StatusRequestEntityTooLarge},
	{Err: ragerror.ErrIngestion, Status: fiber.StatusUnprocessableEntity},
	{Err: ragerror.ErrUnknownBackend, Status: fiber.StatusNotFound},
	{Err: llm.ErrListingUnsupported, Status: fiber.StatusBadRequest},
	{Err: ragerror.ErrBackendUnavailable, Status: fiber.StatusServiceUnavailable},
	{Err: ragerror.ErrGenerationFailed, Status: fiber.StatusBadGateway},
	{Err: ragerror.ErrConfiguration, Status: fiber.StatusBadRequest},
	{Err: ragerror.ErrIndex, Status: fiber.StatusInternalServerError},
}

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		// Several PDFs may arrive in one multipart request.
		BodyLimit:    (cfg.Processing.MaxFileSizeMB*4 + 1) * bytesPerMB,
		ErrorHandler: serverutils.ErrorHandler(container.Logger, errorStatuses...),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/health"
	})))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(serverutils.SuccessResponse("ok", fiber.Map{
			"storage_type": container.Store.StorageType(),
			"default_llm":  container.Registry.DefaultBackend(),
		}))
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(container.MetricsRegistry, promhttp.HandlerOpts{})))

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Println("[WARN] Shutdown deadline reached with requests still running")
	}
	return err
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")
	admin := serverutils.AdminMiddleware(cfg.Auth.JWTSecret)

	c.DocumentController.RegisterRoutes(api, admin)
	c.ChatbotController.RegisterRoutes(api, admin)
	c.AdminController.RegisterRoutes(api, admin)
}
