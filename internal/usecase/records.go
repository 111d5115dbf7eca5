package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.#$%&'*+=?^_`{|}~-]+@[a-zA-Z0-9-]+\\.([a-zA-Z0-9-]{2,})+$")

// RecordUsecase handles record CRUD. It never assigns StatusProcessed; only
// batch runs do.
type RecordUsecase struct {
	repo   repository.RecordRepository
	logger *zap.Logger
}

// NewRecordUsecase creates a new RecordUsecase.
func NewRecordUsecase(repo repository.RecordRepository, logger *zap.Logger) *RecordUsecase {
	return &RecordUsecase{
		repo:   repo,
		logger: logger,
	}
}

// List returns every record ordered by ID.
func (uc *RecordUsecase) List(ctx context.Context) ([]*domain.Record, error) {
	records, err := uc.repo.FindAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to list records", zap.Error(err))
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Get returns a record by ID.
func (uc *RecordUsecase) Get(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			uc.logger.Debug("Record not found", zap.Int64("record_id", id))
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Create validates and stores a new record.
func (uc *RecordUsecase) Create(ctx context.Context, req *domain.CreateRecordRequest) (*domain.Record, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrNameRequired
	}
	if strings.TrimSpace(string(req.Status)) == "" {
		return nil, domain.ErrStatusRequired
	}
	if req.Status.IsReserved() {
		return nil, domain.ErrReservedStatus
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, domain.ErrEmailRequired
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, domain.ErrInvalidEmail
	}

	saved, err := uc.repo.Save(ctx, &domain.Record{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Email:       req.Email,
	})
	if err != nil {
		uc.logger.Error("Failed to create record", zap.Error(err))
		return nil, fmt.Errorf("create record: %w", err)
	}

	uc.logger.Info("Record created", zap.Int64("record_id", saved.ID), zap.String("status", string(saved.Status)))
	return saved, nil
}

// Update applies the non-nil fields of req to an existing record.
func (uc *RecordUsecase) Update(ctx context.Context, id int64, req *domain.UpdateRecordRequest) (*domain.Record, error) {
	rec, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, domain.ErrNameRequired
		}
		rec.Name = *req.Name
	}
	if req.Description != nil {
		rec.Description = req.Description
	}
	if req.Status != nil {
		if strings.TrimSpace(string(*req.Status)) == "" {
			return nil, domain.ErrStatusRequired
		}
		if req.Status.IsReserved() {
			return nil, domain.ErrReservedStatus
		}
		rec.Status = *req.Status
	}
	if req.Email != nil {
		if !emailPattern.MatchString(*req.Email) {
			return nil, domain.ErrInvalidEmail
		}
		rec.Email = *req.Email
	}

	saved, err := uc.repo.Save(ctx, rec)
	if err != nil {
		uc.logger.Error("Failed to update record", zap.Error(err), zap.Int64("record_id", id))
		return nil, fmt.Errorf("update record: %w", err)
	}
	return saved, nil
}

// Delete removes a record by ID.
func (uc *RecordUsecase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrRecordNotFound
		}
		uc.logger.Error("Failed to delete record", zap.Error(err), zap.Int64("record_id", id))
		return fmt.Errorf("delete record: %w", err)
	}
	uc.logger.Info("Record deleted", zap.Int64("record_id", id))
	return nil
}
