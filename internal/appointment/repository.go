package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrConflict means an active appointment already holds an overlapping
	// interval for the doctor and date.
	ErrConflict = errors.New("appointment conflicts with an existing booking")
)

type ListFilter struct {
	Status *Status
	Date   *calendar.Date
	From   *calendar.Date
	To     *calendar.Date
}

// Repository contains all DB interactions needed by the ledger.
type Repository interface {
	// CreateIfFree inserts the candidate only if no SCHEDULED/CONFIRMED
	// appointment for the same doctor and date overlaps its interval. The
	// check and insert are atomic; a losing racer gets ErrConflict.
	CreateIfFree(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus is a compare-and-swap: the row is only updated when its
	// current status equals from. No matching row yields
	// ErrAppointmentNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, filter ListFilter) ([]Appointment, error)

	// BookedIntervals feeds the slot deriver: intervals held by active
	// appointments for the doctor on the date.
	BookedIntervals(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]calendar.Interval, error)

	// ActiveInRange lists active appointments whose date falls inside the
	// inclusive range, for leave-approval warnings.
	ActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to calendar.Date) ([]Appointment, error)

	// Reminder worker support.
	FindDueReminders(ctx context.Context, from, to time.Time) ([]Appointment, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}
