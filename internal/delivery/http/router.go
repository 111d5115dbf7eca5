package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/delivery/http/middleware"
	"github.com/Harsh-BH/recordflow/internal/usecase"
)

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	RecordUC        *usecase.RecordUsecase
	RunBatchUC      *usecase.RunBatchUsecase
	EnqueueBatchUC  *usecase.EnqueueBatchUsecase
	GetBatchRunUC   *usecase.GetBatchRunUsecase
	HealthChecks    map[string]HealthCheck
	Logger          *zap.Logger
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps *RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.BodySizeLimit(deps.MaxBodyBytes))
	{
		healthHandler := NewHealthHandler(deps.HealthChecks, deps.Logger)
		v1.GET("/health", healthHandler.Health)

		limited := v1.Group("")
		limited.Use(middleware.RateLimiter(deps.RateLimitPerMin))

		recordHandler := NewRecordHandler(deps.RecordUC, deps.Logger)
		batchHandler := NewBatchHandler(deps.RunBatchUC, deps.EnqueueBatchUC, deps.GetBatchRunUC, deps.Logger)

		limited.GET("/records", recordHandler.List)
		limited.POST("/records", recordHandler.Create)
		limited.GET("/records/process", batchHandler.Process)
		limited.GET("/records/:id", recordHandler.GetByID)
		limited.PUT("/records/:id", recordHandler.Update)
		limited.DELETE("/records/:id", recordHandler.Delete)

		limited.POST("/batches", batchHandler.Enqueue)
		limited.GET("/batches/:id", batchHandler.GetByID)

		// WebSocket for live batch run status
		wsHandler := NewWebSocketHandler(deps.GetBatchRunUC, deps.Logger)
		v1.GET("/batches/:id/stream", wsHandler.Stream)
	}

	return router
}
