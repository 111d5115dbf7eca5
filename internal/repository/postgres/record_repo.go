package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/recordflow/internal/domain"
	"github.com/Harsh-BH/recordflow/internal/repository"
)

// Ensure pgRecordRepo implements repository.RecordRepository.
var _ repository.RecordRepository = (*pgRecordRepo)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS records (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT        NOT NULL,
		description TEXT,
		status      TEXT        NOT NULL,
		email       TEXT        NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS records_status_idx ON records (status);`

const recordColumns = `id, name, description, status, email, created_at, updated_at`

type pgRecordRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordRepository creates a new PostgreSQL-backed record repository.
func NewPostgresRecordRepository(pool *pgxpool.Pool) repository.RecordRepository {
	return &pgRecordRepo{pool: pool}
}

// EnsureSchema creates the records table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (r *pgRecordRepo) ListPendingIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM records WHERE status <> $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, domain.StatusProcessed)
	if err != nil {
		return nil, fmt.Errorf("postgres: list pending ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan pending ids: %w", err)
	}
	return ids, nil
}

func (r *pgRecordRepo) FindByID(ctx context.Context, id int64) (*domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find record: %w", err)
	}
	return rec, nil
}

func (r *pgRecordRepo) FindAll(ctx context.Context) ([]*domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: find all records: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate records: %w", err)
	}
	return records, nil
}

func (r *pgRecordRepo) Save(ctx context.Context, record *domain.Record) (*domain.Record, error) {
	now := time.Now().UTC()

	if record.ID == 0 {
		query := `
			INSERT INTO records (name, description, status, email, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING ` + recordColumns
		saved, err := scanRecord(r.pool.QueryRow(ctx, query,
			record.Name, record.Description, record.Status, record.Email, now,
		))
		if err != nil {
			return nil, fmt.Errorf("postgres: insert record: %w", err)
		}
		return saved, nil
	}

	query := `
		UPDATE records
		SET name = $2, description = $3, status = $4, email = $5, updated_at = $6
		WHERE id = $1
		RETURNING ` + recordColumns
	saved, err := scanRecord(r.pool.QueryRow(ctx, query,
		record.ID, record.Name, record.Description, record.Status, record.Email, now,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: update record: %w", err)
	}
	return saved, nil
}

func (r *pgRecordRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	rec := &domain.Record{}
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Description, &rec.Status, &rec.Email,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
