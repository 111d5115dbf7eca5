package domain

import (
	"time"
)

// Status is the lifecycle state of a record. The set is open: any non-empty
// string is accepted by the CRUD layer except StatusProcessed.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusDone      Status = "DONE"
)

// IsReserved reports whether the status may only be assigned by a batch run.
func (s Status) IsReserved() bool {
	return s == StatusProcessed
}

// Record is the unit managed by the store and transitioned by batch runs.
type Record struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRecordRequest is the payload for creating a record.
type CreateRecordRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status" binding:"required"`
	Email       string  `json:"email" binding:"required"`
}

// UpdateRecordRequest carries the fields to change. Nil fields are left untouched.
type UpdateRecordRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Email       *string `json:"email,omitempty"`
}
