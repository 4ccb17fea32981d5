package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/config"
	"github.com/Juenzo/CloudComputing-Project/internal/database"
	"github.com/Juenzo/CloudComputing-Project/internal/handler"
	"github.com/Juenzo/CloudComputing-Project/internal/logger"
	"github.com/Juenzo/CloudComputing-Project/internal/middleware"
	"github.com/Juenzo/CloudComputing-Project/internal/observability"
	"github.com/Juenzo/CloudComputing-Project/internal/quiz"
	"github.com/Juenzo/CloudComputing-Project/internal/repository"
	"github.com/Juenzo/CloudComputing-Project/internal/router"
	"github.com/Juenzo/CloudComputing-Project/internal/service"
	"github.com/Juenzo/CloudComputing-Project/internal/storage"
	"github.com/Juenzo/CloudComputing-Project/internal/validator"
	"github.com/Juenzo/CloudComputing-Project/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, observability.ServiceName)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageBackend).
		Msg("Starting course platform backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Tracing ───────────────────────────────────────────────────────
	shutdownTracing := observability.InitTracing(ctx, cfg, log)

	policy, err := quiz.NewPassPolicy(cfg.QuizPassThreshold)
	if err != nil {
		log.Fatal().Err(err).Float64("threshold", cfg.QuizPassThreshold).Msg("Invalid QUIZ_PASS_THRESHOLD")
	}

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

	// ─── Blob Storage ──────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	// ─── Initialize Repositories ───────────────────────────────────────
	courseRepo := repository.NewCourseRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	mediaService := service.NewMediaService(store, cfg.MaxUploadBytes, cfg.SignedURLTTL, log)
	quizService := service.NewQuizService(quizRepo, courseRepo, service.NewRedisQuizCache(rdb), service.QuizOptions{
		Policy:     policy,
		CacheTTL:   cfg.QuizCacheTTL,
		AttemptTTL: cfg.AttemptTTL,
	}, log)
	lessonService := service.NewLessonService(lessonRepo, courseRepo, mediaService, log)
	courseService := service.NewCourseService(courseRepo, lessonRepo, quizService, mediaService, log)

	warmQueue := worker.NewRedisQueue(rdb, config.WorkerKey.WarmQuizCacheQueue)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Course: handler.NewCourseHandler(courseService, log),
		Lesson: handler.NewLessonHandler(lessonService, log),
		Quiz:   handler.NewQuizHandler(quizService, log),
		Media:  handler.NewMediaHandler(mediaService, log),
		WS:     handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, warmQueue.Len, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	cacheWorker := worker.NewQuizCacheWorker(warmQueue, quizService, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		cacheWorker.Start(workerCtx)
	}()

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load every quiz into Redis BEFORE accepting traffic so the first
	// submissions do not all miss at once.
	if err := quizService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, submitLimiter(rdb, cfg, log))

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// 2. Stop background workers and wait for them to flush.
	workerCancel()
	workers.Wait()

	// 3. Flush pending spans.
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Tracing shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// openStore returns the configured blob store and its release function.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	if cfg.StorageBackend == config.StorageGCS {
		gcs, err := storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}
	local, err := storage.NewLocal(cfg.UploadDir, "/uploads")
	if err != nil {
		return nil, nil, err
	}
	return local, func() {}, nil
}

// submitLimiter throttles quiz grading per client IP.
func submitLimiter(rdb *redis.Client, cfg *config.Config, log zerolog.Logger) gin.HandlerFunc {
	limiter := middleware.NewRateLimiter(rdb, cfg.SubmitRatePerMinute, time.Minute, func(c *gin.Context) string {
		return config.CacheKey.SubmitRateKey(c.ClientIP())
	}, log)
	return limiter.Middleware()
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
