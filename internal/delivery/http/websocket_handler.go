package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/usecase"
)

const streamInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams batch run status until the run settles.
type WebSocketHandler struct {
	getRunUC *usecase.GetBatchRunUsecase
	interval time.Duration
	logger   *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(getRunUC *usecase.GetBatchRunUsecase, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		getRunUC: getRunUC,
		interval: streamInterval,
		logger:   logger,
	}
}

// Stream handles GET /api/v1/batches/:id/stream (WebSocket upgrade)
func (h *WebSocketHandler) Stream(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch run ID format"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("WebSocket connection opened", zap.String("run_id", idStr))

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		run, err := h.getRunUC.Execute(ctx, id)
		if err != nil {
			conn.WriteJSON(gin.H{"error": "Batch run not found"})
			return
		}

		if err := conn.WriteJSON(run); err != nil {
			h.logger.Debug("WebSocket write failed (client disconnected)", zap.Error(err))
			return
		}

		if run.Status.IsTerminal() {
			h.logger.Debug("Batch run settled, closing WebSocket", zap.String("run_id", idStr))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(run.Status)))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
