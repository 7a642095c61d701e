package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/database"
	"github.com/admitra/admitra-backend/internal/handler"
	"github.com/admitra/admitra-backend/internal/logger"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/admitra/admitra-backend/internal/router"
	"github.com/admitra/admitra-backend/internal/service"
	"github.com/admitra/admitra-backend/internal/token"
	"github.com/admitra/admitra-backend/internal/validator"
	"github.com/admitra/admitra-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting Admitra Backend")

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
	staffRepo := repository.NewStaffRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	scanRepo := repository.NewScanRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	issuer := token.NewIssuer(cfg.QRSecret)
	audit := service.NewRedisAuditPublisher(rdb, log)
	feed := service.NewRedisScanFeed(rdb, log)

	authService := service.NewAuthService(cfg, rdb)
	staffService := service.NewStaffService(staffRepo)
	sessionService := service.NewSessionService(sessionRepo)
	issuanceService := service.NewIssuanceService(applicationRepo, assignmentRepo, issuer, audit, log)
	scanService := service.NewScanService(assignmentRepo, scanRepo, issuer, audit, feed, cfg.Location(), log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, staffService),
		Scan:       handler.NewScanHandler(scanService),
		Assignment: handler.NewAssignmentHandler(issuanceService, assignmentRepo),
		Session:    handler.NewSessionHandler(sessionService),
		Feed:       handler.NewFeedHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)

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

	// 2. Stop the audit worker and let the queue drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
