package leave

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Leave is a doctor's request to be absent for an inclusive date range.
// APPROVED and REJECTED are terminal; rejection is a state, not a deletion.
type Leave struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	StartDate       calendar.Date
	EndDate         calendar.Date
	Reason          string
	Status          Status
	RequestedAt     time.Time
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Covers reports whether date falls inside the leave's inclusive range.
func (l *Leave) Covers(date calendar.Date) bool {
	return !date.Before(l.StartDate) && !date.After(l.EndDate)
}
