package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

var (
	ErrAlreadyDecided = errors.New("leave has already been decided")
	ErrInvalidRange   = errors.New("leave date range is invalid")
)

// AppointmentRef identifies an active appointment that falls inside an
// approved leave's range. Approval never cancels these; they are returned as
// warnings for manual handling.
type AppointmentRef struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	Date      calendar.Date
	StartTime calendar.TimeOfDay
	EndTime   calendar.TimeOfDay
}

// AppointmentFinder surfaces SCHEDULED/CONFIRMED appointments inside a date
// range, used for approval warnings.
type AppointmentFinder interface {
	ActiveAppointmentsInRange(ctx context.Context, doctorID uuid.UUID, from, to calendar.Date) ([]AppointmentRef, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentFinder
}

func NewService(repo Repository, appointments AppointmentFinder) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
	}
}

// Request files a new leave. Every leave starts PENDING.
func (s *Service) Request(ctx context.Context, doctorID uuid.UUID, start, end calendar.Date, reason string) (*Leave, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s precedes start %s", ErrInvalidRange, end, start)
	}

	now := time.Now()
	l := &Leave{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		StartDate:   start,
		EndDate:     end,
		Reason:      reason,
		Status:      StatusPending,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create leave: %w", err)
	}
	return l, nil
}

// Decide approves or rejects a PENDING leave. The status write is a
// compare-and-swap, so a concurrent second decision loses and gets
// ErrAlreadyDecided. On approval the returned AppointmentRef list holds the
// still-active appointments inside the range; the caller decides what to do
// with them.
func (s *Service) Decide(ctx context.Context, leaveID uuid.UUID, approve bool, actorID uuid.UUID, rejectionReason string) (*Leave, []AppointmentRef, error) {
	current, err := s.repo.GetByID(ctx, leaveID)
	if err != nil {
		return nil, nil, fmt.Errorf("load leave: %w", err)
	}
	if current.Status != StatusPending {
		return nil, nil, ErrAlreadyDecided
	}

	d := Decision{
		ActorID:   actorID,
		DecidedAt: time.Now(),
	}
	if approve {
		d.Status = StatusApproved
	} else {
		d.Status = StatusRejected
		if rejectionReason != "" {
			d.RejectionReason = &rejectionReason
		}
	}

	decided, err := s.repo.ApplyDecision(ctx, leaveID, d)
	if err != nil {
		if errors.Is(err, ErrLeaveNotFound) {
			// The CAS lost to a concurrent decision.
			return nil, nil, ErrAlreadyDecided
		}
		return nil, nil, fmt.Errorf("apply decision: %w", err)
	}

	var warnings []AppointmentRef
	if approve {
		warnings, err = s.appointments.ActiveAppointmentsInRange(ctx, decided.DoctorID, decided.StartDate, decided.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("list affected appointments: %w", err)
		}
	}

	return decided, warnings, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Leave, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Leave, error) {
	return s.repo.ListByDoctor(ctx, doctorID, filter)
}
