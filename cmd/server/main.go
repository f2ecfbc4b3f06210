package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"steam4all/internal/catalog"
	"steam4all/internal/config"
	"steam4all/internal/database"
	"steam4all/internal/editor"
	"steam4all/internal/gemini"
	"steam4all/internal/handlers"
	"steam4all/internal/logger"
	"steam4all/internal/markup"
	"steam4all/internal/player"
	"steam4all/internal/repository"
	"steam4all/internal/security"
	"steam4all/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs a fatal run error and flushes the logger before the process
// exits, since os.Exit skips deferred calls.
func exitCode(log *logger.Logger, err error) int {
	defer log.Sync()
	if err != nil {
		log.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	log.Info("database connection established", "type", cfg.DatabaseType)

	applied, err := db.RunMigrations(ctx, cfg.MigrationsPath)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed", "applied", applied)

	course, err := catalog.Load(cfg.CoursePath)
	if err != nil {
		return fmt.Errorf("failed to load course: %w", err)
	}
	log.Info("course loaded", "course", course.ID, "lessons", course.LessonCount())

	checks := map[string]handlers.Pinger{"database": db}

	// Progress lives in SQL unless Redis is asked for
	var progress service.ProgressStore
	switch cfg.ProgressStore {
	case "redis":
		store, err := repository.NewRedisProgressStore(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer store.Close()
		progress = store
		checks["redis"] = store
	case "sql", "":
		progress = repository.NewProgressRepository(db)
	default:
		return fmt.Errorf("unsupported progress store: %s", cfg.ProgressStore)
	}
	log.Info("progress store ready", "store", cfg.ProgressStore)

	// Remote collaborators
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set; runs and tutor replies will report a connection error")
	}

	registry := player.NewRegistry(course, cfg.PlayerIdleTimeout)
	go registry.Cleanup(ctx, time.Minute)
	courseService := service.NewCourseService(
		registry,
		progress,
		repository.NewAttemptRepository(db),
		gemini.NewInterpreter(client, log),
		gemini.NewTutor(client, log),
		log,
	)

	// Rendering
	highlighter := editor.NewChromaHighlighter("python", "monokai")
	highlightCSS, err := handlers.HighlightCSS(highlighter)
	if err != nil {
		return err
	}
	templates, err := handlers.LoadTemplates(cfg.TemplatesPath, handlers.TemplateFuncs(highlighter, markup.New()))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	log.Info("templates loaded")

	// Security
	if cfg.SessionSecret == "change-me-in-production" {
		log.Warn("SESSION_SECRET is the default value; set it before deploying")
	}
	limiter := security.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	go limiter.Cleanup(ctx, 10*time.Minute)
	middleware := handlers.NewMiddleware(
		security.NewLearnerTokens(cfg.SessionSecret, cfg.LearnerTokenTTL),
		security.NewCSRFGenerator(cfg.SessionSecret),
		limiter,
		log,
	)

	routes := handlers.Routes{
		Middleware:   middleware,
		Landing:      handlers.NewLandingHandler(courseService, middleware, templates, log),
		Course:       handlers.NewCourseHandler(courseService, highlighter, middleware, templates, log),
		Theme:        handlers.NewThemeHandler(log),
		Health:       handlers.NewHealthHandler(checks, log),
		HighlightCSS: highlightCSS,
		StaticPath:   cfg.StaticFilesPath,
	}

	// Runs and tutor questions wait on the model, so writes get a long deadline
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      routes.Handler(log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", "http://localhost"+addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
