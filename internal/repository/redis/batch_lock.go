package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/recordflow/internal/repository"
)

var _ repository.BatchLock = (*redisBatchLock)(nil)

const batchLockKey = "records:batch:lock"

// releaseScript deletes the lock only while it still holds the caller's token,
// so a run whose lock expired cannot free a successor's lock.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type redisBatchLock struct {
	client *goredis.Client
}

// NewRedisBatchLock creates a Redis-backed batch lock using SET NX with a random token.
func NewRedisBatchLock(client *goredis.Client) repository.BatchLock {
	return &redisBatchLock{client: client}
}

func (l *redisBatchLock) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, batchLockKey, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: acquire batch lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *redisBatchLock) Release(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{batchLockKey}, token).Err(); err != nil {
		return fmt.Errorf("redis: release batch lock: %w", err)
	}
	return nil
}
