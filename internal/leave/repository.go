package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

var (
	ErrLeaveNotFound = errors.New("leave not found")
)

type ListFilter struct {
	Status *Status
	From   *calendar.Date
	To     *calendar.Date
}

// Decision carries the terminal state written by the approval workflow.
type Decision struct {
	Status          Status
	ActorID         uuid.UUID
	DecidedAt       time.Time
	RejectionReason *string
}

// Repository contains all DB interactions needed by the leave service.
type Repository interface {
	Create(ctx context.Context, l *Leave) error
	GetByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Leave, error)

	// ApplyDecision moves a leave out of PENDING with a compare-and-swap on
	// the current status; it returns ErrLeaveNotFound when the leave does
	// not exist or is no longer PENDING.
	ApplyDecision(ctx context.Context, id uuid.UUID, d Decision) (*Leave, error)

	// HasApprovedLeave reports whether an APPROVED leave covers the date.
	// Satisfies the slot deriver's LeaveCalendar.
	HasApprovedLeave(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (bool, error)
}
