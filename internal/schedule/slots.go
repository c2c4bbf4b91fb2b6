package schedule

import "github.com/careflow/appointment-engine/internal/calendar"

// expandDay walks the day's window from start to end in slot-duration steps.
// A trailing remainder shorter than the duration is dropped; short slots are
// never emitted. The result is ordered by start time.
func expandDay(day DaySchedule) []TimeSlot {
	if !day.IsAvailable || day.SlotDurationMinutes <= 0 {
		return nil
	}

	step := calendar.TimeOfDay(day.SlotDurationMinutes)
	var slots []TimeSlot
	for t := day.StartTime; t+step <= day.EndTime; t += step {
		slots = append(slots, TimeSlot{
			StartTime: t,
			EndTime:   t + step,
			Available: true,
		})
	}
	return slots
}
