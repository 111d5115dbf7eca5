package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harsh-BH/recordflow/internal/batch"
	"github.com/Harsh-BH/recordflow/internal/config"
	amqpdelivery "github.com/Harsh-BH/recordflow/internal/delivery/amqp"
	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/pool"
	"github.com/Harsh-BH/recordflow/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/recordflow/internal/repository/redis"
	"github.com/Harsh-BH/recordflow/internal/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting records batch worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
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
	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Invalid Redis URL", zap.Error(err))
	}
	redisClient := goredis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Worker pool for batch units
	workerPool, err := pool.New(cfg.PoolConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to start worker pool", zap.Error(err))
	}
	defer workerPool.Close()

	// Initialize repositories and use case
	recordRepo := postgres.NewPostgresRecordRepository(dbPool)
	batchLock := redisrepo.NewRedisBatchLock(redisClient)
	runStore := redisrepo.NewRedisBatchRunStore(redisClient, cfg.Batch.RunTTL)

	orchestrator := batch.NewOrchestrator(recordRepo, workerPool, cfg.Batch.ProcessingDelay, logger)
	runBatchUC := usecase.NewRunBatchUsecase(orchestrator, batchLock, runStore, cfg.Batch.LockTTL, logger)

	// Unbuffered: prefetch=1 already bounds what the broker hands us.
	runsChan := make(chan *domain.BatchRunMessage)

	consumer, err := amqpdelivery.NewConsumer(cfg.RabbitMQ.URL, runsChan, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AMQP consumer", zap.Error(err))
	}
	defer consumer.Close()
	logger.Info("Connected to RabbitMQ")

	dispatcher := amqpdelivery.NewDispatcher(runsChan, runBatchUC, logger)

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler: metricsMux(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Start(gctx)
	})
	g.Go(func() error {
		return dispatcher.Start(gctx)
	})
	g.Go(func() error {
		logger.Info("Metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker exited with error", zap.Error(err))
	}

	logger.Info("Worker stopped")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
