package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/batch"
	"github.com/Harsh-BH/recordflow/internal/config"
	handler "github.com/Harsh-BH/recordflow/internal/delivery/http"
	"github.com/Harsh-BH/recordflow/internal/pool"
	"github.com/Harsh-BH/recordflow/internal/publisher"
	"github.com/Harsh-BH/recordflow/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/recordflow/internal/repository/redis"
	"github.com/Harsh-BH/recordflow/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting records API server")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	gin.SetMode(cfg.Server.GinMode)

	// Connect to PostgreSQL
	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
	}
	if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
		logger.Fatal("Failed to prepare database schema", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to ping Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis")

	// Initialize RabbitMQ publisher
	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer pub.Close()
	logger.Info("Connected to RabbitMQ")

	// Worker pool for synchronous batch runs
	workerPool, err := pool.New(cfg.PoolConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to start worker pool", zap.Error(err))
	}
	defer workerPool.Close()

	// Initialize repositories
	recordRepo := postgres.NewPostgresRecordRepository(dbPool)
	batchLock := redisrepo.NewRedisBatchLock(rdb)
	runStore := redisrepo.NewRedisBatchRunStore(rdb, cfg.Batch.RunTTL)

	// Initialize use cases
	orchestrator := batch.NewOrchestrator(recordRepo, workerPool, cfg.Batch.ProcessingDelay, logger)
	recordUC := usecase.NewRecordUsecase(recordRepo, logger)
	runBatchUC := usecase.NewRunBatchUsecase(orchestrator, batchLock, runStore, cfg.Batch.LockTTL, logger)
	enqueueUC := usecase.NewEnqueueBatchUsecase(runStore, pub, logger)
	getRunUC := usecase.NewGetBatchRunUsecase(runStore, logger)

	// Initialize router
	router := handler.NewRouter(&handler.RouterDeps{
		RecordUC:       recordUC,
		RunBatchUC:     runBatchUC,
		EnqueueBatchUC: enqueueUC,
		GetBatchRunUC:  getRunUC,
		HealthChecks: map[string]handler.HealthCheck{
			"postgres": dbPool.Ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
		Logger:          logger,
		RateLimitPerMin: cfg.Server.RateLimit,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
