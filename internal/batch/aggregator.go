package batch

import (
	"sync"

	"github.com/Harsh-BH/recordflow/internal/domain"
)

// Aggregator collects the records processed by one batch run.
// Many units append concurrently; the orchestrator drains once all have settled.
type Aggregator struct {
	mu      sync.Mutex
	records []*domain.Record
	count   int
}

// NewAggregator returns an empty aggregator sized for n units.
func NewAggregator(n int) *Aggregator {
	return &Aggregator{records: make([]*domain.Record, 0, n)}
}

// Add appends a processed record and bumps the counter in one critical section.
func (a *Aggregator) Add(rec *domain.Record) {
	a.mu.Lock()
	a.records = append(a.records, rec)
	a.count++
	a.mu.Unlock()
}

// Count returns the number of successful units so far.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Drain returns a copy of the collected records.
func (a *Aggregator) Drain() []*domain.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*domain.Record, len(a.records))
	copy(out, a.records)
	return out
}
