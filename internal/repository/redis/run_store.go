package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

var _ repository.BatchRunStore = (*redisRunStore)(nil)

const runKeyPrefix = "records:batch:run:"

type redisRunStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisBatchRunStore stores run documents as JSON strings that expire after ttl.
func NewRedisBatchRunStore(client *goredis.Client, ttl time.Duration) repository.BatchRunStore {
	return &redisRunStore{client: client, ttl: ttl}
}

func (s *redisRunStore) Put(ctx context.Context, run *domain.BatchRun) error {
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("redis: marshal batch run: %w", err)
	}
	if err := s.client.Set(ctx, runKeyPrefix+run.RunID.String(), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: put batch run: %w", err)
	}
	return nil
}

func (s *redisRunStore) Get(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error) {
	body, err := s.client.Get(ctx, runKeyPrefix+id.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrBatchRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get batch run: %w", err)
	}

	run := &domain.BatchRun{}
	if err := json.Unmarshal(body, run); err != nil {
		return nil, fmt.Errorf("redis: unmarshal batch run: %w", err)
	}
	return run, nil
}
