package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursekit/coursekit-backend/internal/config"
	"github.com/coursekit/coursekit-backend/internal/database"
	"github.com/coursekit/coursekit-backend/internal/handler"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/coursekit/coursekit-backend/internal/router"
	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/coursekit/coursekit-backend/internal/validator"
	"github.com/coursekit/coursekit-backend/internal/worker"
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
		Msg("Starting CourseKit Backend")

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
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	enrollRepo := repository.NewEnrollmentRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	events := monitor.NewPublisher(rdb, log)

	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	courseService := service.NewCourseService(courseRepo, lessonRepo, enrollRepo, log)
	enrollService := service.NewEnrollmentService(courseRepo, enrollRepo, log)
	testService := service.NewTestService(testRepo, questionRepo, courseRepo, enrollRepo, rdb, log)
	questionService := service.NewQuestionService(testRepo, questionRepo, log)
	attemptService := service.NewAttemptService(testRepo, attemptRepo, enrollRepo, responseRepo, events, log)
	responseService := service.NewResponseService(testRepo, questionRepo, attemptRepo, responseRepo, events, cfg.AttemptExpiryGrace, log)
	scoringService := service.NewScoringService(testRepo, attemptRepo, responseRepo, events, cfg.AttemptExpiryGrace, log)
	gradingService := service.NewGradingService(testRepo, questionRepo, attemptRepo, responseRepo, events, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(userService, authService, log),
		Course:     handler.NewCourseHandler(courseService, log),
		Enrollment: handler.NewEnrollmentHandler(enrollService, log),
		Test:       handler.NewTestHandler(testService, log),
		Question:   handler.NewQuestionHandler(questionService, log),
		Attempt:    handler.NewAttemptHandler(attemptService, responseService, scoringService, log),
		Grading:    handler.NewGradingHandler(gradingService, log),
		Monitor:    handler.NewMonitorHandler(testService, events, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	expiryWorker := worker.NewExpiryWorker(scoringService, cfg.AttemptSweepInterval, log)
	go expiryWorker.Start(workerCtx)

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

	// 2. Stop the expiry worker.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
