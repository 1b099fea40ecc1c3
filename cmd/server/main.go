package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/database"
	"github.com/alexpaac/testrh-backend/internal/engine"
	"github.com/alexpaac/testrh-backend/internal/handler"
	"github.com/alexpaac/testrh-backend/internal/logger"
	"github.com/alexpaac/testrh-backend/internal/repository"
	"github.com/alexpaac/testrh-backend/internal/router"
	"github.com/alexpaac/testrh-backend/internal/service"
	"github.com/alexpaac/testrh-backend/internal/store"
	"github.com/alexpaac/testrh-backend/internal/validator"
	"github.com/alexpaac/testrh-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TestRH Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	sessionStore := store.NewSessionStore(rdb, log)

	authService := service.NewAuthService(cfg, adminRepo)
	quizService := service.NewQuizService(quizRepo, questionRepo, rdb, log)
	questionService := service.NewQuestionService(questionRepo)
	candidateService := service.NewCandidateService(candidateRepo)
	importService := service.NewImportService(questionRepo, cfg, log)
	portalService := service.NewPortalService(quizService, candidateService, sessionStore, log)
	reportService := service.NewReportService(sessionRepo)
	notifyService := service.NewNotifyService(
		cfg.WebhookURL,
		&http.Client{Timeout: cfg.WebhookTimeout},
		log,
	)

	// ─── Initialize Session Engine ─────────────────────────────────────
	eng := engine.New(engine.Options{
		Store:                 sessionStore,
		Notifier:              notifyService,
		ClassificationSeconds: cfg.ClassificationSeconds,
		ResultSeconds:         cfg.ResultSeconds,
		Logger:                log,
	})

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Portal:    handler.NewPortalHandler(portalService, log),
		WS:        handler.NewWSHandler(portalService, eng, log, cfg.AllowedOrigins),
		Quiz:      handler.NewQuizHandler(quizService, log),
		Question:  handler.NewQuestionHandler(questionService, importService, cfg, log),
		Candidate: handler.NewCandidateHandler(candidateService, log),
		Report:    handler.NewReportHandler(reportService, log),
		Monitor:   handler.NewMonitorHandler(sessionStore, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	cheatWorker := worker.NewCheatWorker(pool, rdb, log)
	sessionWorker := worker.NewSessionWorker(sessionRepo, rdb, log)

	go cheatWorker.Start(workerCtx)
	go sessionWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load every active quiz into Redis BEFORE accepting traffic so a
	// cohort logging in at once never stampedes Postgres.
	quizService.PrewarmAllCaches(ctx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Suspend live attempts so their latest state reaches Redis.
	eng.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
