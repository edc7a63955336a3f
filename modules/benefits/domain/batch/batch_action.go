package batch

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("batch action not found")

type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionRemove ActionType = "remove"
)

type Flow string

const (
	FlowEmployee    Flow = "employee"
	FlowEndorsement Flow = "endorsement"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func StatusFrom(s string) Status {
	switch s {
	case "processing":
		return StatusProcessing
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	}
	return StatusPending
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// BatchAction is one user-initiated bulk upload and its processing
// lifecycle. Only the orchestrator mutates it after creation.
type BatchAction struct {
	ID            uuid.UUID
	CompanyID     int64
	PolicyID      int64
	EndorsementID *int64
	Flow          Flow
	ActionType    ActionType
	UploadedFile  string
	Status        Status

	TotalRecords  int
	InsertedCount int
	FailedCount   int

	AcceptedReportPath *string
	RejectedReportPath *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, ba *BatchAction) error
	GetByID(ctx context.Context, id uuid.UUID) (*BatchAction, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	// Finalize persists the terminal status together with counters and
	// report locations in one statement.
	Finalize(ctx context.Context, ba *BatchAction) error
}
