package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned when a record cannot be found by ID.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNameRequired is returned when a record is created without a name.
	ErrNameRequired = errors.New("record name is required")

	// ErrStatusRequired is returned when a record is created without a status.
	ErrStatusRequired = errors.New("record status is required")

	// ErrEmailRequired is returned when a record is created without an email.
	ErrEmailRequired = errors.New("record email is required")

	// ErrInvalidEmail is returned when an email does not match the accepted format.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrReservedStatus is returned when a client tries to assign a status owned by batch runs.
	ErrReservedStatus = errors.New("status PROCESSED can only be set by a batch run")

	// ErrBatchInProgress is returned when another batch run holds the batch lock.
	ErrBatchInProgress = errors.New("another batch run is in progress")

	// ErrBatchRunNotFound is returned when an asynchronous run cannot be found by ID.
	ErrBatchRunNotFound = errors.New("batch run not found")

	// ErrPublishFailed is returned when the message broker publish fails.
	ErrPublishFailed = errors.New("failed to publish batch run to message queue")
)

// NotFoundError reports that a unit of work's record vanished between listing and fetching.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}

// Is makes errors.Is(err, ErrRecordNotFound) hold for a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// PersistenceError reports that the store rejected a read or a write.
type PersistenceError struct {
	ID  int64
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s record %d: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ProcessingError attributes a unit-of-work failure to its record.
type ProcessingError struct {
	ID  int64
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("error processing record %d: %v", e.ID, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// BatchFailure is returned by a batch run when at least one unit failed.
// Units that succeeded before the failure keep their durable writes; Processed
// counts them.
type BatchFailure struct {
	First     error
	Errors    []error
	Processed int
}

func (e *BatchFailure) Error() string {
	if len(e.Errors) <= 1 {
		return fmt.Sprintf("batch failed: %v", e.First)
	}
	return fmt.Sprintf("batch failed with %d errors, first: %v", len(e.Errors), e.First)
}

func (e *BatchFailure) Unwrap() []error { return e.Errors }

// Failures flattens the failing units into transport-friendly values.
func (e *BatchFailure) Failures() []UnitFailure {
	out := make([]UnitFailure, 0, len(e.Errors))
	for _, err := range e.Errors {
		f := UnitFailure{Error: err.Error()}
		var perr *ProcessingError
		if errors.As(err, &perr) {
			f.RecordID = perr.ID
			f.Error = perr.Err.Error()
		}
		out = append(out, f)
	}
	return out
}
