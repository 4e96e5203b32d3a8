package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/api"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facegate/internal/audit"
	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/database"
	"github.com/saturnino-fabrica-de-software/facegate/internal/face"
	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
	"github.com/saturnino-fabrica-de-software/facegate/internal/service"
	"github.com/saturnino-fabrica-de-software/facegate/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the persistence backends of one run mode.
type stores struct {
	gallery   recognition.Gallery
	users     repository.UserStore
	accessLog repository.AccessLog
	ready     handler.ReadinessCheck
	close     func()
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting Facegate API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("detector", cfg.DetectorType),
		slog.Bool("in_memory", cfg.InMemory()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detector, err := face.NewFaceDetector(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create face detector: %w", err)
	}

	extractor, err := face.NewExtractor(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}
	if closer, ok := extractor.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	engine := recognition.NewEngine(detector, extractor, st.gallery, cfg.Engine(), logger)

	// Live feed for the admin dashboard
	hub := ws.NewHub()
	go hub.Run(ctx)

	auditLogger := audit.NewMultiLogger(
		audit.NewSlogLogger(logger),
		audit.NewRepositoryLogger(st.accessLog),
		hub,
	)

	accounts := service.NewAccountService(engine, st.users, st.accessLog, auditLogger, cfg.MinEnrollmentPhotos, logger)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Accounts:       accounts,
		Ready:          st.ready,
		LoginRateLimit: cfg.LoginRateLimit,
		RequestTimeout: cfg.RequestTimeout,
		Live:           hub,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")
	return nil
}

// openStores picks PostgreSQL when DATABASE_URL is set, memory otherwise.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.InMemory() {
		logger.Warn("DATABASE_URL not set, data will not survive a restart")
		return &stores{
			gallery:   recognition.NewMemoryGallery(),
			users:     repository.NewMemoryUserStore(),
			accessLog: repository.NewMemoryAccessLog(0),
			close:     func() {},
		}, nil
	}

	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL, logger); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &stores{
		gallery:   repository.NewProfileRepository(pool),
		users:     repository.NewUserRepository(pool),
		accessLog: repository.NewAccessEventRepository(pool),
		ready: func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		},
		close: pool.Close,
	}, nil
}
