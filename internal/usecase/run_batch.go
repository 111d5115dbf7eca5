package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/metrics"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

// BatchRunner executes one batch run. *batch.Orchestrator implements it.
type BatchRunner interface {
	Run(ctx context.Context) ([]*domain.Record, error)
}

// RunBatchUsecase guards batch runs with the cross-process batch lock and
// tracks asynchronous runs in the run store.
type RunBatchUsecase struct {
	runner  BatchRunner
	lock    repository.BatchLock
	runs    repository.BatchRunStore
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewRunBatchUsecase creates a new RunBatchUsecase. runs may be nil when only
// synchronous runs are served.
func NewRunBatchUsecase(
	runner BatchRunner,
	lock repository.BatchLock,
	runs repository.BatchRunStore,
	lockTTL time.Duration,
	logger *zap.Logger,
) *RunBatchUsecase {
	return &RunBatchUsecase{
		runner:  runner,
		lock:    lock,
		runs:    runs,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// Execute runs one batch synchronously. It returns domain.ErrBatchInProgress
// when another run holds the lock and *domain.BatchFailure when a unit failed.
func (uc *RunBatchUsecase) Execute(ctx context.Context) ([]*domain.Record, error) {
	token, ok, err := uc.lock.Acquire(ctx, uc.lockTTL)
	if err != nil {
		uc.logger.Error("Failed to acquire batch lock", zap.Error(err))
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !ok {
		metrics.BatchRunsTotal.WithLabelValues("busy").Inc()
		uc.logger.Info("Batch run skipped, lock held by another run")
		return nil, domain.ErrBatchInProgress
	}
	defer func() {
		if err := uc.lock.Release(context.WithoutCancel(ctx), token); err != nil {
			uc.logger.Warn("Failed to release batch lock", zap.Error(err))
		}
	}()

	records, err := uc.runner.Run(ctx)
	if err != nil {
		metrics.BatchRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.BatchRunsTotal.WithLabelValues("succeeded").Inc()
	return records, nil
}

// ExecuteRun drives a queued asynchronous run to a terminal state. Batch
// outcomes, including a busy lock, are recorded on the run document and are
// not returned as errors; only store failures are.
func (uc *RunBatchUsecase) ExecuteRun(ctx context.Context, runID uuid.UUID) (*domain.BatchRun, error) {
	run, err := uc.runs.Get(ctx, runID)
	if err != nil {
		uc.logger.Error("Failed to load batch run", zap.Error(err), zap.String("run_id", runID.String()))
		return nil, err
	}
	if run.Status.IsTerminal() {
		uc.logger.Info("Batch run already finished, skipping",
			zap.String("run_id", runID.String()),
			zap.String("status", string(run.Status)),
		)
		return run, nil
	}

	started := time.Now().UTC()
	run.Status = domain.RunRunning
	run.StartedAt = &started
	if err := uc.runs.Put(ctx, run); err != nil {
		return nil, fmt.Errorf("mark run running: %w", err)
	}

	records, runErr := uc.Execute(ctx)

	finished := time.Now().UTC()
	run.FinishedAt = &finished

	var bf *domain.BatchFailure
	switch {
	case runErr == nil:
		run.Status = domain.RunSucceeded
		run.ProcessedIDs = make([]int64, 0, len(records))
		for _, rec := range records {
			run.ProcessedIDs = append(run.ProcessedIDs, rec.ID)
		}
		run.ProcessedCount = len(records)
	case errors.As(runErr, &bf):
		run.Status = domain.RunFailed
		run.ProcessedCount = bf.Processed
		run.Failures = bf.Failures()
		run.Error = bf.Error()
	default:
		run.Status = domain.RunFailed
		run.Error = runErr.Error()
	}

	if err := uc.runs.Put(context.WithoutCancel(ctx), run); err != nil {
		return nil, fmt.Errorf("store run outcome: %w", err)
	}

	uc.logger.Info("Batch run finished",
		zap.String("run_id", runID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("processed", run.ProcessedCount),
		zap.Int("failed", len(run.Failures)),
	)
	return run, nil
}
