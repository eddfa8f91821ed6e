package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-ai/inkwell-api/internal/cache"
	"github.com/inkwell-ai/inkwell-api/internal/config"
	"github.com/inkwell-ai/inkwell-api/internal/events"
	"github.com/inkwell-ai/inkwell-api/internal/platform/gemini"
	"github.com/inkwell-ai/inkwell-api/internal/platform/media"
	"github.com/inkwell-ai/inkwell-api/internal/platform/postgres"
	"github.com/inkwell-ai/inkwell-api/internal/service"
	"github.com/inkwell-ai/inkwell-api/internal/service/auth"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when no database URL is configured; asset tracking is
	// disabled in that case and results live only in the task registry.
	db *sql.DB

	jwtService auth.JWTService

	registry *task.Registry
	executor *task.Executor

	contentCache *cache.Cache
	mediaStore   *media.LocalStore

	blogService    *service.BlogService
	storyService   *service.StoryService
	podcastService *service.PodcastService
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration and logging must already be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// The asset store is optional. Without it, completed content is only
	// available through task results until the registry sweeps them.
	var emitter events.EventEmitter
	if cfg.Database.URL != "" {
		app.db, err = setupAppDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(app.db); err != nil {
			return nil, err
		}

		assetStore := postgres.NewTransactionalTextAssetStore(app.db, logger)
		tracker, err := service.NewAssetTracker(assetStore, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create asset tracker: %w", err)
		}
		inMemory := events.NewInMemoryEventEmitter(logger)
		inMemory.RegisterHandler(tracker)
		emitter = inMemory
		logger.Info("Text asset tracking enabled")
	}

	app.registry = task.NewRegistry(task.RegistryConfig{
		MaxProgressMessages: cfg.Task.MaxProgressMessages,
		Retention:           time.Duration(cfg.Task.RetentionMinutes) * time.Minute,
	}, logger)
	app.registry.StartSweeper(time.Duration(cfg.Task.SweepIntervalMinutes) * time.Minute)

	app.executor = task.NewExecutor(app.registry,
		time.Duration(cfg.Task.StageTimeoutMinutes)*time.Minute, logger)

	generator, err := gemini.NewGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text generator: %w", err)
	}
	logger.Info("Text generator initialized", "model", cfg.LLM.ModelName)

	app.mediaStore, err = media.NewLocalStore(cfg.Media.Dir, cfg.Media.BaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}
	images, err := media.NewImageGenerator(generator.Client(), app.mediaStore, cfg.Media.ImageModel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image generator: %w", err)
	}
	speech, err := media.NewSpeechSynthesizer(cfg.Media.TTSEndpoint, app.mediaStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech synthesizer: %w", err)
	}
	composer, err := media.NewComposer(app.mediaStore, cfg.Media.FFmpegPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize video composer: %w", err)
	}

	app.contentCache, err = setupCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	app.blogService, err = service.NewBlogService(
		generator, app.contentCache, app.executor, emitter, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog service: %w", err)
	}
	app.storyService, err = service.NewStoryService(
		generator, images, speech, composer, app.executor, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create story service: %w", err)
	}
	app.podcastService, err = service.NewPodcastService(
		generator, speech, app.executor, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create podcast service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupCache selects the cache backend. Redis is used when configured so
// multiple server processes share one cache; otherwise entries live in
// process memory.
func setupCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*cache.Cache, error) {
	var backend cache.Backend
	if cfg.RedisURL != "" {
		redisBackend, err := cache.NewRedisBackend(ctx, cfg.RedisURL, "inkwell")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		backend = redisBackend
		logger.Info("Using redis cache backend")
	} else {
		backend = cache.NewMemoryBackend()
		logger.Info("Using in-memory cache backend")
	}
	return cache.New(backend, cfg.Bypass, logger), nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. The executor
// stops first so in-flight pipelines finish before the registry goes away.
func (app *application) cleanup() {
	if app.executor != nil {
		app.executor.Stop()
	}
	if app.registry != nil {
		app.registry.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
