package batch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/metrics"
)

// processOne is the unit of work for one record: pause, fetch, mark PROCESSED,
// save, then publish the saved record into agg.
func (o *Orchestrator) processOne(ctx context.Context, id int64, agg *Aggregator) error {
	if o.delay > 0 {
		timer := time.NewTimer(o.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return o.fail(id, ctx.Err())
		}
	}

	rec, err := o.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return o.fail(id, &domain.NotFoundError{ID: id})
	}
	if err != nil {
		return o.fail(id, &domain.PersistenceError{ID: id, Op: "find", Err: err})
	}

	rec.Status = domain.StatusProcessed
	saved, err := o.repo.Save(ctx, rec)
	if errors.Is(err, domain.ErrRecordNotFound) {
		// Deleted between fetch and save.
		return o.fail(id, &domain.NotFoundError{ID: id})
	}
	if err != nil {
		return o.fail(id, &domain.PersistenceError{ID: id, Op: "save", Err: err})
	}

	agg.Add(saved)
	metrics.RecordsProcessedTotal.WithLabelValues("processed").Inc()
	o.logger.Debug("Record processed", zap.Int64("record_id", id))
	return nil
}

func (o *Orchestrator) fail(id int64, cause error) error {
	metrics.RecordsProcessedTotal.WithLabelValues("failed").Inc()
	o.logger.Warn("Record processing failed", zap.Int64("record_id", id), zap.Error(cause))
	return &domain.ProcessingError{ID: id, Err: cause}
}
