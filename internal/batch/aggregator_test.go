package batch_test

import (
	"sync"
	"testing"

	"github.com/Harsh-BH/recordflow/internal/batch"
	"github.com/Harsh-BH/recordflow/internal/domain"
)

// Test: concurrent appends are neither lost nor duplicated.
func TestAggregator_ConcurrentAdd(t *testing.T) {
	const n = 500
	agg := batch.NewAggregator(0)

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			agg.Add(&domain.Record{ID: id, Status: domain.StatusProcessed})
		}(int64(i))
	}
	wg.Wait()

	if agg.Count() != n {
		t.Fatalf("expected count %d, got %d", n, agg.Count())
	}

	records := agg.Drain()
	if len(records) != n {
		t.Fatalf("expected %d records, got %d", n, len(records))
	}
	seen := make(map[int64]bool, n)
	for _, r := range records {
		if seen[r.ID] {
			t.Fatalf("record %d appears twice", r.ID)
		}
		seen[r.ID] = true
	}
}

// Test: Drain returns a copy that later appends do not touch.
func TestAggregator_DrainIsSnapshot(t *testing.T) {
	agg := batch.NewAggregator(2)
	agg.Add(&domain.Record{ID: 1})

	snapshot := agg.Drain()
	agg.Add(&domain.Record{ID: 2})

	if len(snapshot) != 1 {
		t.Errorf("expected snapshot of 1 record, got %d", len(snapshot))
	}
	if agg.Count() != 2 {
		t.Errorf("expected count 2, got %d", agg.Count())
	}
}
