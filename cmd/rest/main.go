package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-rag-be/internal/bootstrap"
	"pdf-rag-be/internal/config"
	"pdf-rag-be/internal/server"
	"pdf-rag-be/internal/tracer"

	"github.com/fatih/color"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(ctx); err != nil {
		color.Red("Invalid configuration:\n%v", err)
		os.Exit(1)
	}

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(ctx, cfg.Telemetry)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("Container close error: %v", err)
		}
	}()

	// 4. Start Background Services
	go func() {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	if container.ActivityService != nil {
		if err := container.ActivityService.Start(ctx); err != nil {
			log.Printf("Activity log disabled: %v", err)
		}
	}

	printBanner(ctx, cfg, container)

	// 5. Run Server
	srv := server.New(cfg, container)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}

func printBanner(ctx context.Context, cfg *config.Config, c *bootstrap.Container) {
	color.Cyan("PDF RAG backend (%s)", cfg.App.Environment)
	color.White("  storage:   %s (%s)", c.Store.StorageType(), cfg.Storage.DataDir)
	color.White("  embedding: %s", cfg.Embedding.Provider)

	available := c.Registry.AvailableBackends(ctx)
	if len(available) == 0 {
		color.Yellow("  llm:       no backend available")
	} else {
		color.Green("  llm:       %v (default %s)", available, c.Registry.DefaultBackend())
	}
	if cfg.Auth.JWTSecret == "" {
		color.Yellow("  admin routes are open: JWT_SECRET is not set")
	}
}
