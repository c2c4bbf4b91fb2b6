package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/calendar"
	redisclient "github.com/careflow/appointment-engine/internal/redis"
)

const (
	EventAppointmentBooked   = "APPOINTMENT_BOOKED"
	EventStatusChanged       = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentReminder = "APPOINTMENT_REMINDER"
)

var (
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

// Ledger is the authoritative store of appointment records. It owns the
// no-double-booking guarantee and the lifecycle state graph; everything above
// it (role checks, slot pre-checks) lives in the orchestrator.
type Ledger struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewLedger(repo Repository, locker redisclient.Locker, log *zap.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// Candidate is a booking request the orchestrator has already pre-checked
// against the slot deriver.
type Candidate struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      calendar.Date
	StartTime calendar.TimeOfDay
	EndTime   calendar.TimeOfDay
	Reason    string
}

// Book commits a candidate as a SCHEDULED appointment. The overlap re-check
// runs inside a per-(doctor, date) lock even when the caller just consulted
// the deriver, because time has passed between read and write. Lock
// contention is reported as ErrConflict: a concurrent booking for the same
// doctor/day is in flight and the caller must re-read availability either
// way.
func (l *Ledger) Book(ctx context.Context, c Candidate) (*Appointment, error) {
	if c.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", calendar.ErrInvalidInput)
	}
	iv := calendar.Interval{Start: c.StartTime, End: c.EndTime}
	if !iv.Valid() {
		return nil, fmt.Errorf("%w: time window %s is invalid", calendar.ErrInvalidInput, iv)
	}

	now := time.Now()
	appt := &Appointment{
		ID:        uuid.New(),
		DoctorID:  c.DoctorID,
		PatientID: c.PatientID,
		Date:      c.Date,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Status:    StatusScheduled,
		Reason:    c.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := l.locker.WithBookingLock(ctx, c.DoctorID, c.Date, func(lockCtx context.Context) error {
		if err := l.repo.CreateIfFree(lockCtx, appt); err != nil {
			return err
		}

		l.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"doctor_id":  c.DoctorID.String(),
			"patient_id": c.PatientID.String(),
			"date":       c.Date.String(),
			"start_time": c.StartTime.String(),
			"end_time":   c.EndTime.String(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return appt, nil
}

// UpdateStatus moves an appointment along the lifecycle graph. The write is
// a compare-and-swap on the loaded status, so two concurrent transitions on
// the same appointment cannot both win.
func (l *Ledger) UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	current, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !current.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}

	updated, err := l.repo.UpdateStatus(ctx, id, current.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The CAS lost to a concurrent transition.
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	l.logEvent(ctx, updated.ID, EventStatusChanged, map[string]any{
		"from": string(current.Status),
		"to":   string(to),
	})

	return updated, nil
}

// Cancel is shorthand for a transition to CANCELLED, valid only from
// SCHEDULED or CONFIRMED.
func (l *Ledger) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return l.UpdateStatus(ctx, id, StatusCancelled)
}

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return l.repo.GetByID(ctx, id)
}

func (l *Ledger) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Appointment, error) {
	return l.repo.ListByDoctor(ctx, doctorID, filter)
}

func (l *Ledger) ListByPatient(ctx context.Context, patientID uuid.UUID, filter ListFilter) ([]Appointment, error) {
	return l.repo.ListByPatient(ctx, patientID, filter)
}

// SendDueReminders records a reminder event for every active appointment
// starting inside [now, now+lead) that has not been reminded yet. The
// reminded flag is a conditional write, so overlapping worker runs emit each
// reminder at most once. Returns the number of reminders sent.
func (l *Ledger) SendDueReminders(ctx context.Context, now time.Time, lead time.Duration) (int, error) {
	due, err := l.repo.FindDueReminders(ctx, now, now.Add(lead))
	if err != nil {
		return 0, fmt.Errorf("find due reminders: %w", err)
	}

	sent := 0
	for _, appt := range due {
		won, err := l.repo.MarkReminded(ctx, appt.ID, now)
		if err != nil {
			l.log.Warn("mark reminded failed",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err))
			continue
		}
		if !won {
			continue
		}

		l.logEvent(ctx, appt.ID, EventAppointmentReminder, map[string]any{
			"starts_at": appt.StartsAt().Format(time.RFC3339),
		})
		sent++
	}

	return sent, nil
}

func (l *Ledger) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		l.log.Warn("marshal event payload failed",
			zap.String("event_type", eventType),
			zap.Error(err))
		data = nil
	}

	apptID := appointmentID
	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := l.repo.InsertEvent(ctx, ev); err != nil {
		l.log.Warn("insert event log failed",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err))
	}
}
