package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/recordflow/internal/domain"
	redisrepo "github.com/Harsh-BH/recordflow/internal/repository/redis"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// Test: only one holder at a time; release frees the lock.
func TestBatchLock_AcquireRelease(t *testing.T) {
	_, client := newTestClient(t)
	lock := redisrepo.NewRedisBatchLock(client)
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, ok=%v err=%v", ok, err)
	}

	if _, ok, err := lock.Acquire(ctx, time.Minute); err != nil || ok {
		t.Fatalf("expected second acquire to fail, ok=%v err=%v", ok, err)
	}

	if err := lock.Release(ctx, token); err != nil {
		t.Fatalf("release: %v", err)
	}

	if _, ok, err := lock.Acquire(ctx, time.Minute); err != nil || !ok {
		t.Fatalf("expected acquire after release to succeed, ok=%v err=%v", ok, err)
	}
}

// Test: a stale token cannot release a lock held by someone else.
func TestBatchLock_StaleTokenKeepsLock(t *testing.T) {
	mr, client := newTestClient(t)
	lock := redisrepo.NewRedisBatchLock(client)
	ctx := context.Background()

	stale, ok, err := lock.Acquire(ctx, time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	mr.FastForward(2 * time.Second)

	if _, ok, err := lock.Acquire(ctx, time.Minute); err != nil || !ok {
		t.Fatalf("expected acquire after expiry, ok=%v err=%v", ok, err)
	}

	if err := lock.Release(ctx, stale); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, _ := lock.Acquire(ctx, time.Minute); ok {
		t.Error("stale token released the current holder's lock")
	}
}

func TestRunStore_PutGet(t *testing.T) {
	mr, client := newTestClient(t)
	store := redisrepo.NewRedisBatchRunStore(client, time.Hour)
	ctx := context.Background()

	run := &domain.BatchRun{
		RunID:          uuid.New(),
		Status:         domain.RunFailed,
		ProcessedIDs:   []int64{1, 2},
		ProcessedCount: 2,
		Failures:       []domain.UnitFailure{{RecordID: 3, Error: "record 3 not found"}},
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Put(ctx, run); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, run.RunID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.RunFailed || got.ProcessedCount != 2 || len(got.Failures) != 1 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Failures[0].RecordID != 3 {
		t.Errorf("expected failure for record 3, got %+v", got.Failures[0])
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, run.RunID); !errors.Is(err, domain.ErrBatchRunNotFound) {
		t.Errorf("expected expired run to be not found, got %v", err)
	}
}

func TestRunStore_UnknownRun(t *testing.T) {
	_, client := newTestClient(t)
	store := redisrepo.NewRedisBatchRunStore(client, time.Hour)

	if _, err := store.Get(context.Background(), uuid.New()); !errors.Is(err, domain.ErrBatchRunNotFound) {
		t.Errorf("expected ErrBatchRunNotFound, got %v", err)
	}
}
