package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/recordflow/internal/domain"
	mockpub "github.com/Harsh-BH/recordflow/internal/publisher/mock"
	mockrepo "github.com/Harsh-BH/recordflow/internal/repository/mock"
)

func strPtr(s string) *string { return &s }

func statusPtr(s domain.Status) *domain.Status { return &s }

// stubRunner is a BatchRunner returning canned results.
type stubRunner struct {
	records []*domain.Record
	err     error
	calls   int
}

func (s *stubRunner) Run(ctx context.Context) ([]*domain.Record, error) {
	s.calls++
	return s.records, s.err
}

// ---- RecordUsecase ----

func TestCreateRecord_Success(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	uc := NewRecordUsecase(repo, zap.NewNop())

	rec, err := uc.Create(context.Background(), &domain.CreateRecordRequest{
		Name:        "invoice",
		Description: strPtr("march"),
		Status:      domain.StatusNew,
		Email:       "billing@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected store-assigned ID")
	}

	stored, ok := repo.Get(rec.ID)
	if !ok {
		t.Fatal("expected record in repo")
	}
	if stored.Status != domain.StatusNew || stored.Email != "billing@example.com" {
		t.Errorf("unexpected stored record: %+v", stored)
	}
}

func TestCreateRecord_Validation(t *testing.T) {
	uc := NewRecordUsecase(mockrepo.NewRecordRepository(), zap.NewNop())

	cases := []struct {
		name string
		req  domain.CreateRecordRequest
		want error
	}{
		{"missing name", domain.CreateRecordRequest{Status: domain.StatusNew, Email: "a@example.com"}, domain.ErrNameRequired},
		{"missing status", domain.CreateRecordRequest{Name: "n", Email: "a@example.com"}, domain.ErrStatusRequired},
		{"missing email", domain.CreateRecordRequest{Name: "n", Status: domain.StatusNew}, domain.ErrEmailRequired},
		{"bad email", domain.CreateRecordRequest{Name: "n", Status: domain.StatusNew, Email: "not-an-email"}, domain.ErrInvalidEmail},
		{"short tld", domain.CreateRecordRequest{Name: "n", Status: domain.StatusNew, Email: "a@example.c"}, domain.ErrInvalidEmail},
		{"reserved status", domain.CreateRecordRequest{Name: "n", Status: domain.StatusProcessed, Email: "a@example.com"}, domain.ErrReservedStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), &tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateRecord_PartialFields(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	ids := repo.Seed(1, domain.StatusNew)
	uc := NewRecordUsecase(repo, zap.NewNop())

	rec, err := uc.Update(context.Background(), ids[0], &domain.UpdateRecordRequest{
		Status: statusPtr(domain.StatusDone),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != domain.StatusDone {
		t.Errorf("expected DONE, got %s", rec.Status)
	}
	if rec.Name != "record" || rec.Email != "owner@example.com" {
		t.Errorf("expected untouched fields to survive, got %+v", rec)
	}
}

func TestUpdateRecord_RejectsProcessed(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	ids := repo.Seed(1, domain.StatusNew)
	uc := NewRecordUsecase(repo, zap.NewNop())

	_, err := uc.Update(context.Background(), ids[0], &domain.UpdateRecordRequest{
		Status: statusPtr(domain.StatusProcessed),
	})
	if !errors.Is(err, domain.ErrReservedStatus) {
		t.Fatalf("expected ErrReservedStatus, got %v", err)
	}
	if stored, _ := repo.Get(ids[0]); stored.Status != domain.StatusNew {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}
}

func TestUpdateRecord_InvalidEmail(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	ids := repo.Seed(1, domain.StatusNew)
	uc := NewRecordUsecase(repo, zap.NewNop())

	_, err := uc.Update(context.Background(), ids[0], &domain.UpdateRecordRequest{Email: strPtr("nope")})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	uc := NewRecordUsecase(mockrepo.NewRecordRepository(), zap.NewNop())

	_, err := uc.Update(context.Background(), 42, &domain.UpdateRecordRequest{Name: strPtr("x")})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetRecord_StoreError(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	repo.FindByIDFn = func(ctx context.Context, id int64) (*domain.Record, error) {
		return nil, errors.New("connection reset")
	}
	uc := NewRecordUsecase(repo, zap.NewNop())

	_, err := uc.Get(context.Background(), 1)
	if err == nil || errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected store error to pass through, got %v", err)
	}
}

func TestDeleteRecord(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	ids := repo.Seed(1, domain.StatusNew)
	uc := NewRecordUsecase(repo, zap.NewNop())

	if err := uc.Delete(context.Background(), ids[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Delete(context.Background(), ids[0]); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestListRecords(t *testing.T) {
	repo := mockrepo.NewRecordRepository()
	repo.Seed(3, domain.StatusPending)
	uc := NewRecordUsecase(repo, zap.NewNop())

	records, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

// ---- RunBatchUsecase ----

func TestRunBatch_Success(t *testing.T) {
	runner := &stubRunner{records: []*domain.Record{{ID: 1}, {ID: 2}}}
	lock := &mockrepo.BatchLock{}
	uc := NewRunBatchUsecase(runner, lock, nil, time.Minute, zap.NewNop())

	records, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	if lock.Held() {
		t.Error("expected lock to be released")
	}
	if len(lock.ReleaseCalls) != 1 {
		t.Errorf("expected 1 release, got %d", len(lock.ReleaseCalls))
	}
}

func TestRunBatch_LockHeld(t *testing.T) {
	runner := &stubRunner{}
	lock := &mockrepo.BatchLock{}
	if _, ok, _ := lock.Acquire(context.Background(), time.Minute); !ok {
		t.Fatal("setup: could not take lock")
	}
	uc := NewRunBatchUsecase(runner, lock, nil, time.Minute, zap.NewNop())

	_, err := uc.Execute(context.Background())
	if !errors.Is(err, domain.ErrBatchInProgress) {
		t.Fatalf("expected ErrBatchInProgress, got %v", err)
	}
	if runner.calls != 0 {
		t.Errorf("expected runner not to be called, got %d calls", runner.calls)
	}
	if !lock.Held() {
		t.Error("expected foreign lock to stay held")
	}
}

func TestRunBatch_FailureReleasesLock(t *testing.T) {
	bf := &domain.BatchFailure{First: errors.New("x"), Errors: []error{errors.New("x")}}
	runner := &stubRunner{err: bf}
	lock := &mockrepo.BatchLock{}
	uc := NewRunBatchUsecase(runner, lock, nil, time.Minute, zap.NewNop())

	_, err := uc.Execute(context.Background())
	var got *domain.BatchFailure
	if !errors.As(err, &got) {
		t.Fatalf("expected BatchFailure, got %v", err)
	}
	if lock.Held() {
		t.Error("expected lock to be released after failure")
	}
}

func TestRunBatch_LockError(t *testing.T) {
	lock := &mockrepo.BatchLock{
		AcquireFn: func(ctx context.Context, ttl time.Duration) (string, bool, error) {
			return "", false, errors.New("redis down")
		},
	}
	runner := &stubRunner{}
	uc := NewRunBatchUsecase(runner, lock, nil, time.Minute, zap.NewNop())

	if _, err := uc.Execute(context.Background()); err == nil || errors.Is(err, domain.ErrBatchInProgress) {
		t.Errorf("expected lock error, got %v", err)
	}
	if runner.calls != 0 {
		t.Error("expected runner not to be called")
	}
}

func queuedRun(t *testing.T, runs *mockrepo.BatchRunStore) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := runs.Put(context.Background(), &domain.BatchRun{RunID: id, Status: domain.RunQueued, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return id
}

func TestExecuteRun_Succeeded(t *testing.T) {
	runs := mockrepo.NewBatchRunStore()
	id := queuedRun(t, runs)
	runner := &stubRunner{records: []*domain.Record{{ID: 7}, {ID: 9}}}
	uc := NewRunBatchUsecase(runner, &mockrepo.BatchLock{}, runs, time.Minute, zap.NewNop())

	run, err := uc.ExecuteRun(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunSucceeded || run.ProcessedCount != 2 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.StartedAt == nil || run.FinishedAt == nil {
		t.Error("expected start and finish timestamps")
	}

	want := []domain.BatchRunStatus{domain.RunQueued, domain.RunRunning, domain.RunSucceeded}
	if len(runs.Statuses) != len(want) {
		t.Fatalf("expected statuses %v, got %v", want, runs.Statuses)
	}
	for i := range want {
		if runs.Statuses[i] != want[i] {
			t.Errorf("status %d: expected %s, got %s", i, want[i], runs.Statuses[i])
		}
	}
}

func TestExecuteRun_BatchFailure(t *testing.T) {
	runs := mockrepo.NewBatchRunStore()
	id := queuedRun(t, runs)
	first := &domain.ProcessingError{ID: 3, Err: &domain.NotFoundError{ID: 3}}
	runner := &stubRunner{err: &domain.BatchFailure{First: first, Errors: []error{first}, Processed: 4}}
	uc := NewRunBatchUsecase(runner, &mockrepo.BatchLock{}, runs, time.Minute, zap.NewNop())

	run, err := uc.ExecuteRun(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunFailed {
		t.Errorf("expected FAILED, got %s", run.Status)
	}
	if run.ProcessedCount != 4 {
		t.Errorf("expected 4 processed, got %d", run.ProcessedCount)
	}
	if len(run.Failures) != 1 || run.Failures[0].RecordID != 3 {
		t.Errorf("expected failure for record 3, got %+v", run.Failures)
	}
}

func TestExecuteRun_LockHeldMarksFailed(t *testing.T) {
	runs := mockrepo.NewBatchRunStore()
	id := queuedRun(t, runs)
	lock := &mockrepo.BatchLock{}
	lock.Acquire(context.Background(), time.Minute)
	runner := &stubRunner{}
	uc := NewRunBatchUsecase(runner, lock, runs, time.Minute, zap.NewNop())

	run, err := uc.ExecuteRun(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunFailed || run.Error != domain.ErrBatchInProgress.Error() {
		t.Errorf("unexpected run: %+v", run)
	}
	if runner.calls != 0 {
		t.Error("expected runner not to be called")
	}
}

func TestExecuteRun_TerminalRunSkipped(t *testing.T) {
	runs := mockrepo.NewBatchRunStore()
	id := uuid.New()
	runs.Put(context.Background(), &domain.BatchRun{RunID: id, Status: domain.RunSucceeded})
	runner := &stubRunner{}
	uc := NewRunBatchUsecase(runner, &mockrepo.BatchLock{}, runs, time.Minute, zap.NewNop())

	run, err := uc.ExecuteRun(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunSucceeded || runner.calls != 0 {
		t.Errorf("expected redelivered run to be skipped, got %+v (calls=%d)", run, runner.calls)
	}
}

func TestExecuteRun_UnknownRun(t *testing.T) {
	uc := NewRunBatchUsecase(&stubRunner{}, &mockrepo.BatchLock{}, mockrepo.NewBatchRunStore(), time.Minute, zap.NewNop())

	if _, err := uc.ExecuteRun(context.Background(), uuid.New()); !errors.Is(err, domain.ErrBatchRunNotFound) {
		t.Errorf("expected ErrBatchRunNotFound, got %v", err)
	}
}

// ---- EnqueueBatchUsecase / GetBatchRunUsecase ----

func TestEnqueueBatch_Success(t *testing.T) {
	runs := mockrepo.NewBatchRunStore()
	pub := mockpub.NewMockPublisher()
	uc := NewEnqueueBatchUsecase(runs, pub, zap.NewNop())

	run, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.RunQueued {
		t.Errorf("expected QUEUED, got %s", run.Status)
	}
	if run.RunID.Version() != 7 {
		t.Errorf("expected UUIDv7 run id, got version %d", run.RunID.Version())
	}
	if len(pub.Published) != 1 || pub.Published[0].RunID != run.RunID {
		t.Fatalf("expected run %s to be published, got %v", run.RunID, pub.Published)
	}

	got, err := NewGetBatchRunUsecase(runs, zap.NewNop()).Execute(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.RunQueued {
		t.Errorf("expected stored QUEUED run, got %s", got.Status)
	}
}

func TestEnqueueBatch_PublishFailure(t *testing.T) {
	runs := mockrepo.NewBatchRunStore()
	pub := mockpub.NewMockPublisher()
	pub.PublishFn = func(ctx context.Context, req *domain.BatchRunRequest) error {
		return errors.New("connection refused")
	}
	uc := NewEnqueueBatchUsecase(runs, pub, zap.NewNop())

	_, err := uc.Execute(context.Background())
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("expected ErrPublishFailed, got %v", err)
	}

	if len(runs.Statuses) != 2 || runs.Statuses[1] != domain.RunFailed {
		t.Errorf("expected run to be marked FAILED, got %v", runs.Statuses)
	}
}

func TestGetBatchRun_NotFound(t *testing.T) {
	uc := NewGetBatchRunUsecase(mockrepo.NewBatchRunStore(), zap.NewNop())

	_, err := uc.Execute(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrBatchRunNotFound) {
		t.Errorf("expected ErrBatchRunNotFound, got %v", err)
	}
}
