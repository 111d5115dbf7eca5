package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/publisher"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

// EnqueueBatchUsecase creates asynchronous batch runs and hands them to the worker.
type EnqueueBatchUsecase struct {
	runs      repository.BatchRunStore
	publisher publisher.Publisher
	logger    *zap.Logger
}

// NewEnqueueBatchUsecase creates a new EnqueueBatchUsecase.
func NewEnqueueBatchUsecase(runs repository.BatchRunStore, pub publisher.Publisher, logger *zap.Logger) *EnqueueBatchUsecase {
	return &EnqueueBatchUsecase{
		runs:      runs,
		publisher: pub,
		logger:    logger,
	}
}

// Execute stores a QUEUED run and publishes it.
func (uc *EnqueueBatchUsecase) Execute(ctx context.Context) (*domain.BatchRun, error) {
	// Generate UUIDv7 (time-ordered)
	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}

	run := &domain.BatchRun{
		RunID:     runID,
		Status:    domain.RunQueued,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.runs.Put(ctx, run); err != nil {
		uc.logger.Error("Failed to store batch run", zap.Error(err), zap.String("run_id", runID.String()))
		return nil, fmt.Errorf("create batch run: %w", err)
	}

	if err := uc.publisher.Publish(ctx, &domain.BatchRunRequest{RunID: runID}); err != nil {
		uc.logger.Error("Failed to publish batch run", zap.Error(err), zap.String("run_id", runID.String()))
		// The worker will never see this run.
		finished := time.Now().UTC()
		run.Status = domain.RunFailed
		run.Error = domain.ErrPublishFailed.Error()
		run.FinishedAt = &finished
		_ = uc.runs.Put(ctx, run)
		return nil, domain.ErrPublishFailed
	}

	uc.logger.Info("Batch run queued", zap.String("run_id", runID.String()))
	return run, nil
}
