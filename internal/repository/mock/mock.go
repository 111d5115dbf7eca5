package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

// ---- RecordRepository mock ----

var _ repository.RecordRepository = (*RecordRepository)(nil)

// RecordRepository is an in-memory test double for repository.RecordRepository.
// Records are stored by value so callers never share pointers with the store.
type RecordRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Record

	// Hook functions for injecting errors or custom behaviour.
	ListPendingIDsFn func(ctx context.Context) ([]int64, error)
	FindByIDFn       func(ctx context.Context, id int64) (*domain.Record, error)
	SaveFn           func(ctx context.Context, record *domain.Record) (*domain.Record, error)
	DeleteFn         func(ctx context.Context, id int64) error

	// Recorded calls for assertions.
	FindCalls []int64
	SaveCalls []int64
}

// NewRecordRepository creates an empty in-memory repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{items: make(map[int64]domain.Record)}
}

// Seed stores records with consecutive IDs starting at 1 and returns the IDs.
func (m *RecordRepository) Seed(n int, status domain.Status) []int64 {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		rec := m.Put(&domain.Record{
			Name:   "record",
			Status: status,
			Email:  "owner@example.com",
		})
		ids = append(ids, rec.ID)
	}
	return ids
}

// Get returns a copy of the stored record (for test assertions).
func (m *RecordRepository) Get(id int64) (domain.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.items[id]
	return rec, ok
}

func (m *RecordRepository) ListPendingIDs(ctx context.Context) ([]int64, error) {
	if m.ListPendingIDsFn != nil {
		return m.ListPendingIDsFn(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.items))
	for id, rec := range m.items {
		if rec.Status != domain.StatusProcessed {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *RecordRepository) FindByID(ctx context.Context, id int64) (*domain.Record, error) {
	m.mu.Lock()
	m.FindCalls = append(m.FindCalls, id)
	m.mu.Unlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.items[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *RecordRepository) FindAll(ctx context.Context) ([]*domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Record, 0, len(m.items))
	for _, rec := range m.items {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *RecordRepository) Save(ctx context.Context, record *domain.Record) (*domain.Record, error) {
	m.mu.Lock()
	m.SaveCalls = append(m.SaveCalls, record.ID)
	m.mu.Unlock()
	if m.SaveFn != nil {
		return m.SaveFn(ctx, record)
	}
	if record.ID != 0 {
		if _, ok := m.Get(record.ID); !ok {
			return nil, domain.ErrRecordNotFound
		}
	}
	return m.Put(record), nil
}

// Put stores a copy of record the way Save does by default, bypassing hooks.
func (m *RecordRepository) Put(record *domain.Record) *domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := *record
	now := time.Now().UTC()
	if rec.ID == 0 {
		m.nextID++
		rec.ID = m.nextID
		rec.CreatedAt = now
	} else if rec.ID > m.nextID {
		m.nextID = rec.ID
	}
	rec.UpdatedAt = now
	m.items[rec.ID] = rec
	return &rec
}

func (m *RecordRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

// ---- BatchLock mock ----

var _ repository.BatchLock = (*BatchLock)(nil)

// BatchLock is an in-process test double for repository.BatchLock.
type BatchLock struct {
	mu   sync.Mutex
	held string

	AcquireFn func(ctx context.Context, ttl time.Duration) (string, bool, error)

	AcquireCalls int
	ReleaseCalls []string
}

func (m *BatchLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	m.AcquireCalls++
	m.mu.Unlock()
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held != "" {
		return "", false, nil
	}
	m.held = uuid.NewString()
	return m.held, true, nil
}

func (m *BatchLock) Release(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls = append(m.ReleaseCalls, token)
	if m.held == token {
		m.held = ""
	}
	return nil
}

// Held reports whether the lock is currently taken.
func (m *BatchLock) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held != ""
}

// ---- BatchRunStore mock ----

var _ repository.BatchRunStore = (*BatchRunStore)(nil)

// BatchRunStore is an in-memory test double for repository.BatchRunStore.
type BatchRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]domain.BatchRun

	PutFn func(ctx context.Context, run *domain.BatchRun) error

	// Statuses records every status written, in order.
	Statuses []domain.BatchRunStatus
}

// NewBatchRunStore creates an empty run store.
func NewBatchRunStore() *BatchRunStore {
	return &BatchRunStore{runs: make(map[uuid.UUID]domain.BatchRun)}
}

func (m *BatchRunStore) Put(ctx context.Context, run *domain.BatchRun) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.RunID] = *run
	m.Statuses = append(m.Statuses, run.Status)
	return nil
}

func (m *BatchRunStore) Get(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrBatchRunNotFound
	}
	return &run, nil
}
