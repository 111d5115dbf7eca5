package amqp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
)

var errPanicked = errors.New("batch run panicked")

// RunExecutor drives one asynchronous batch run to completion.
type RunExecutor interface {
	ExecuteRun(ctx context.Context, runID uuid.UUID) (*domain.BatchRun, error)
}

// Dispatcher feeds consumed batch run requests to a RunExecutor one at a time
// and settles each message once its run has finished.
type Dispatcher struct {
	runs     <-chan *domain.BatchRunMessage
	executor RunExecutor
	logger   *zap.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(runs <-chan *domain.BatchRunMessage, exec RunExecutor, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		runs:     runs,
		executor: exec,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled or the message channel is closed.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Batch run dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Batch run dispatcher stopping")
			return nil
		case msg, ok := <-d.runs:
			if !ok {
				d.logger.Debug("Batch run channel closed")
				return nil
			}
			d.handle(ctx, msg)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg *domain.BatchRunMessage) {
	runID := msg.Request.RunID
	d.logger.Info("Dispatching batch run", zap.String("run_id", runID.String()))

	start := time.Now()
	run, err := d.executeSafely(ctx, runID)
	if err != nil {
		d.logger.Error("Batch run execution failed",
			zap.String("run_id", runID.String()),
			zap.Error(err),
		)
		// Requeuing would redeliver the same failure forever.
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Error("Failed to NACK message",
				zap.String("run_id", runID.String()),
				zap.Error(nackErr),
			)
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		d.logger.Error("Failed to ACK message after batch run",
			zap.String("run_id", runID.String()),
			zap.Error(ackErr),
		)
	}

	d.logger.Info("Batch run settled",
		zap.String("run_id", runID.String()),
		zap.String("status", string(run.Status)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (d *Dispatcher) executeSafely(ctx context.Context, runID uuid.UUID) (run *domain.BatchRun, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Dispatcher panic recovered",
				zap.String("run_id", runID.String()),
				zap.Any("panic", r),
			)
			run, err = nil, errPanicked
		}
	}()
	return d.executor.ExecuteRun(ctx, runID)
}
