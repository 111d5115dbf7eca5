package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Harsh-BH/recordflow/internal/domain"
)

// RecordRepository defines record persistence operations.
// Implementations must be safe for concurrent use.
type RecordRepository interface {
	// ListPendingIDs returns the distinct IDs of records eligible for a batch run.
	ListPendingIDs(ctx context.Context) ([]int64, error)

	// FindByID returns domain.ErrRecordNotFound when no record has the given ID.
	FindByID(ctx context.Context, id int64) (*domain.Record, error)

	// FindAll returns every record ordered by ID.
	FindAll(ctx context.Context) ([]*domain.Record, error)

	// Save inserts a record with a zero ID, otherwise updates it by ID and
	// returns domain.ErrRecordNotFound if it no longer exists.
	Save(ctx context.Context, record *domain.Record) (*domain.Record, error)

	// Delete removes a record, returning domain.ErrRecordNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// BatchLock serializes batch runs across processes.
type BatchLock interface {
	// Acquire returns a release token, or ok=false when another run holds the lock.
	Acquire(ctx context.Context, ttl time.Duration) (token string, ok bool, err error)

	// Release frees the lock if token still owns it.
	Release(ctx context.Context, token string) error
}

// BatchRunStore keeps asynchronous batch run documents.
type BatchRunStore interface {
	// Put creates or replaces the run document.
	Put(ctx context.Context, run *domain.BatchRun) error

	// Get returns domain.ErrBatchRunNotFound for unknown or expired runs.
	Get(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error)
}
