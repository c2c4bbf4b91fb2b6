package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// transitions is the full lifecycle graph. COMPLETED, CANCELLED and NO_SHOW
// are terminal.
var transitions = map[Status]map[Status]bool{
	StatusScheduled: {
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle graph permits moving from s
// to target.
func (s Status) CanTransitionTo(target Status) bool {
	return transitions[s][target]
}

// Active reports whether the appointment still holds its slot. Only
// SCHEDULED and CONFIRMED appointments block other bookings.
func (s Status) Active() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

type Appointment struct {
	ID         uuid.UUID
	DoctorID   uuid.UUID
	PatientID  uuid.UUID
	Date       calendar.Date
	StartTime  calendar.TimeOfDay
	EndTime    calendar.TimeOfDay
	Status     Status
	Reason     string
	Notes      string
	RemindedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Appointment) Interval() calendar.Interval {
	return calendar.Interval{Start: a.StartTime, End: a.EndTime}
}

// StartsAt is the absolute UTC instant the appointment begins.
func (a *Appointment) StartsAt() time.Time {
	return a.Date.At(a.StartTime)
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
