// Package booking composes the slot deriver and the appointment ledger into
// the patient-facing booking flow.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/schedule"
)

var (
	// ErrSlotUnavailable is the single user-facing "pick another slot"
	// condition: the requested interval is not an open slot, or a
	// concurrent booking won the race after the pre-check.
	ErrSlotUnavailable = errors.New("requested slot is not available")

	ErrRoleNotAllowed    = errors.New("actor role may not perform this transition")
	ErrDoctorNotBookable = errors.New("doctor is not accepting bookings")
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// SlotSource is the deriver's read contract.
type SlotSource interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]schedule.TimeSlot, error)
}

// Directory resolves the people referenced by a booking. Lookups are real;
// there is no silent fallback to canned records.
type Directory interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
}

type Orchestrator struct {
	slots  SlotSource
	ledger *appointment.Ledger
	dir    Directory
	log    *zap.Logger
}

func NewOrchestrator(slots SlotSource, ledger *appointment.Ledger, dir Directory, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		slots:  slots,
		ledger: ledger,
		dir:    dir,
		log:    log,
	}
}

type BookRequest struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      calendar.Date
	StartTime calendar.TimeOfDay
	EndTime   calendar.TimeOfDay
	Reason    string
}

// Book validates and commits a booking. The slot pre-check is an optimistic
// read that spares the ledger pointless commit attempts; the ledger's own
// re-check inside the booking lock is the authority, which is why a ledger
// conflict comes back as ErrSlotUnavailable rather than an internal error.
func (o *Orchestrator) Book(ctx context.Context, req BookRequest) (*appointment.Appointment, error) {
	doctor, err := o.dir.GetDoctorByID(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor.Status != directory.DoctorActive {
		return nil, ErrDoctorNotBookable
	}

	if _, err := o.dir.GetPatientByID(ctx, req.PatientID); err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	slots, err := o.slots.AvailableSlots(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("derive slots: %w", err)
	}

	requested := calendar.Interval{Start: req.StartTime, End: req.EndTime}
	if !slotIsOpen(slots, requested) {
		return nil, ErrSlotUnavailable
	}

	appt, err := o.ledger.Book(ctx, appointment.Candidate{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		if errors.Is(err, appointment.ErrConflict) {
			o.log.Info("booking lost commit race",
				zap.String("doctor_id", req.DoctorID.String()),
				zap.String("date", req.Date.String()),
				zap.String("slot", requested.String()))
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	return appt, nil
}

// UpdateStatus applies role policy, then delegates the state graph to the
// ledger. Only doctors close out visits as COMPLETED or NO_SHOW.
func (o *Orchestrator) UpdateStatus(ctx context.Context, id uuid.UUID, to appointment.Status, actor Role) (*appointment.Appointment, error) {
	if (to == appointment.StatusCompleted || to == appointment.StatusNoShow) && actor != RoleDoctor {
		return nil, fmt.Errorf("%w: only a doctor may mark %s", ErrRoleNotAllowed, to)
	}
	return o.ledger.UpdateStatus(ctx, id, to)
}

// Cancel is open to both roles.
func (o *Orchestrator) Cancel(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return o.ledger.Cancel(ctx, id)
}

func slotIsOpen(slots []schedule.TimeSlot, requested calendar.Interval) bool {
	for _, s := range slots {
		if s.StartTime == requested.Start && s.EndTime == requested.End {
			return s.Available
		}
	}
	return false
}
