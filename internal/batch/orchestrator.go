package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/metrics"
	"github.com/Harsh-BH/recordflow/internal/pool"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

// Executor is the part of the worker pool a batch run needs.
type Executor interface {
	Submit(ctx context.Context, task pool.Task) (*pool.Handle, error)
}

// Orchestrator drives batch runs: one unit of work per pending record,
// wait for all of them, then decide.
type Orchestrator struct {
	repo   repository.RecordRepository
	exec   Executor
	delay  time.Duration
	logger *zap.Logger
}

// NewOrchestrator creates an Orchestrator. delay is the fixed pause each unit
// takes before touching the store.
func NewOrchestrator(repo repository.RecordRepository, exec Executor, delay time.Duration, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		repo:   repo,
		exec:   exec,
		delay:  delay,
		logger: logger,
	}
}

// Run processes every pending record and returns them all, or a
// *domain.BatchFailure if any unit failed. Records saved by successful units
// stay PROCESSED in the store either way. Result order is unspecified.
func (o *Orchestrator) Run(ctx context.Context) ([]*domain.Record, error) {
	start := time.Now()

	ids, err := o.repo.ListPendingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	if len(ids) == 0 {
		o.logger.Info("No pending records, batch run skipped")
		return []*domain.Record{}, nil
	}

	o.logger.Info("Starting batch run", zap.Int("records", len(ids)))

	// In-flight units are never cancelled, not even when the caller goes away.
	unitCtx := context.WithoutCancel(ctx)
	agg := NewAggregator(len(ids))

	errs := make([]error, len(ids))
	handles := make([]*pool.Handle, 0, len(ids))
	submitted := make([]int, 0, len(ids))

	for i, id := range ids {
		id := id
		h, err := o.exec.Submit(unitCtx, func(ctx context.Context) error {
			return o.processOne(ctx, id, agg)
		})
		if err != nil {
			errs[i] = o.fail(id, fmt.Errorf("submit: %w", err))
			continue
		}
		handles = append(handles, h)
		submitted = append(submitted, i)
	}

	for j, err := range pool.Await(handles...) {
		if err == nil {
			continue
		}
		i := submitted[j]
		var perr *domain.ProcessingError
		if !errors.As(err, &perr) {
			err = o.fail(ids[i], err)
		}
		errs[i] = err
	}

	failures := pool.Failed(errs)
	elapsed := time.Since(start)
	metrics.BatchDuration.Observe(elapsed.Seconds())

	if len(failures) > 0 {
		o.logger.Error("Batch run failed",
			zap.Int("records", len(ids)),
			zap.Int("processed", agg.Count()),
			zap.Int("failed", len(failures)),
			zap.Duration("elapsed", elapsed),
			zap.Error(failures[0]),
		)
		return nil, &domain.BatchFailure{
			First:     failures[0],
			Errors:    failures,
			Processed: agg.Count(),
		}
	}

	o.logger.Info("Completed batch run",
		zap.Int("processed", agg.Count()),
		zap.Duration("elapsed", elapsed),
	)
	return agg.Drain(), nil
}
