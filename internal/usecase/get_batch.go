package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

// GetBatchRunUsecase handles fetching asynchronous run status and outcome.
type GetBatchRunUsecase struct {
	runs   repository.BatchRunStore
	logger *zap.Logger
}

// NewGetBatchRunUsecase creates a new GetBatchRunUsecase.
func NewGetBatchRunUsecase(runs repository.BatchRunStore, logger *zap.Logger) *GetBatchRunUsecase {
	return &GetBatchRunUsecase{
		runs:   runs,
		logger: logger,
	}
}

// Execute retrieves a batch run by its ID.
func (uc *GetBatchRunUsecase) Execute(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error) {
	run, err := uc.runs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBatchRunNotFound) {
			uc.logger.Debug("Batch run not found", zap.String("run_id", id.String()))
			return nil, domain.ErrBatchRunNotFound
		}
		return nil, fmt.Errorf("get batch run: %w", err)
	}
	return run, nil
}
