package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

// DaySchedule is one weekday's availability window inside a weekly template.
type DaySchedule struct {
	ID                  uuid.UUID
	DayOfWeek           time.Weekday // 0 = Sunday
	IsAvailable         bool
	StartTime           calendar.TimeOfDay
	EndTime             calendar.TimeOfDay
	SlotDurationMinutes int
}

// WeeklySchedule is a doctor's recurring availability template, authoritative
// for the dates inside its effective range. EffectiveTo == nil means
// open-ended. Exactly one DaySchedule per weekday.
type WeeklySchedule struct {
	ID            uuid.UUID
	DoctorID      uuid.UUID
	EffectiveFrom calendar.Date
	EffectiveTo   *calendar.Date
	Days          []DaySchedule
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Covers reports whether date falls inside the effective range.
func (ws *WeeklySchedule) Covers(date calendar.Date) bool {
	if date.Before(ws.EffectiveFrom) {
		return false
	}
	return ws.EffectiveTo == nil || !date.After(*ws.EffectiveTo)
}

// RangeOverlaps reports whether two effective ranges share at least one date.
func (ws *WeeklySchedule) RangeOverlaps(other *WeeklySchedule) bool {
	if other.EffectiveTo != nil && ws.EffectiveFrom.After(*other.EffectiveTo) {
		return false
	}
	if ws.EffectiveTo != nil && other.EffectiveFrom.After(*ws.EffectiveTo) {
		return false
	}
	return true
}

// Day returns the day schedule for the given weekday.
func (ws *WeeklySchedule) Day(wd time.Weekday) (DaySchedule, bool) {
	for _, d := range ws.Days {
		if d.DayOfWeek == wd {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// TimeSlot is one bookable interval derived from a template. Available is
// false when the slot is suppressed by an approved leave or taken by an
// active appointment.
type TimeSlot struct {
	StartTime calendar.TimeOfDay
	EndTime   calendar.TimeOfDay
	Available bool
}

func (ts TimeSlot) Interval() calendar.Interval {
	return calendar.Interval{Start: ts.StartTime, End: ts.EndTime}
}
