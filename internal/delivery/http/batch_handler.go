package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/delivery/http/middleware"
	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/usecase"
)

// BatchHandler handles HTTP requests that start or inspect batch runs.
type BatchHandler struct {
	runUC     *usecase.RunBatchUsecase
	enqueueUC *usecase.EnqueueBatchUsecase
	getRunUC  *usecase.GetBatchRunUsecase
	logger    *zap.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(
	runUC *usecase.RunBatchUsecase,
	enqueueUC *usecase.EnqueueBatchUsecase,
	getRunUC *usecase.GetBatchRunUsecase,
	logger *zap.Logger,
) *BatchHandler {
	return &BatchHandler{
		runUC:     runUC,
		enqueueUC: enqueueUC,
		getRunUC:  getRunUC,
		logger:    logger,
	}
}

// Process handles GET /api/v1/records/process. It runs a batch synchronously
// and answers with every processed record.
func (h *BatchHandler) Process(c *gin.Context) {
	records, err := h.runUC.Execute(c.Request.Context())
	if err != nil {
		var bf *domain.BatchFailure
		switch {
		case errors.Is(err, domain.ErrBatchInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &bf):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     bf.Error(),
				"failures":  bf.Failures(),
				"processed": bf.Processed,
			})
		default:
			h.logger.Error("Batch run failed", zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, records)
}

// Enqueue handles POST /api/v1/batches
func (h *BatchHandler) Enqueue(c *gin.Context) {
	run, err := h.enqueueUC.Execute(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrPublishFailed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return
		}
		h.logger.Error("Enqueue batch run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, run)
}

// GetByID handles GET /api/v1/batches/:id
func (h *BatchHandler) GetByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch run ID format"})
		return
	}

	run, err := h.getRunUC.Execute(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrBatchRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch run not found"})
			return
		}
		h.logger.Error("Get batch run failed", zap.Error(err), zap.String("run_id", idStr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, run)
}
