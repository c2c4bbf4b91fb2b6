package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/appointment-engine/internal/calendar"
)

func mustTime(t *testing.T, s string) calendar.TimeOfDay {
	t.Helper()
	tod, err := calendar.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func TestExpandDaySlotCount(t *testing.T) {
	day := DaySchedule{
		DayOfWeek:           time.Monday,
		IsAvailable:         true,
		StartTime:           mustTime(t, "09:00"),
		EndTime:             mustTime(t, "17:00"),
		SlotDurationMinutes: 30,
	}

	slots := expandDay(day)

	// floor((end-start)/duration) slots, all inside the window.
	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].StartTime.String())
	assert.Equal(t, "16:30", slots[15].StartTime.String())
	for _, s := range slots {
		assert.True(t, s.Available)
		assert.LessOrEqual(t, s.EndTime, day.EndTime, "no slot crosses the end of the window")
		assert.Equal(t, 30, int(s.EndTime-s.StartTime))
	}
}

func TestExpandDayDropsTrailingPartialSlot(t *testing.T) {
	day := DaySchedule{
		IsAvailable:         true,
		StartTime:           mustTime(t, "09:00"),
		EndTime:             mustTime(t, "09:50"),
		SlotDurationMinutes: 30,
	}

	slots := expandDay(day)

	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].StartTime.String())
	assert.Equal(t, "09:30", slots[0].EndTime.String())
}

func TestExpandDayOrderedAscending(t *testing.T) {
	day := DaySchedule{
		IsAvailable:         true,
		StartTime:           mustTime(t, "08:00"),
		EndTime:             mustTime(t, "12:00"),
		SlotDurationMinutes: 45,
	}

	slots := expandDay(day)
	require.Len(t, slots, 5)
	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1].StartTime, slots[i].StartTime)
		assert.Equal(t, slots[i-1].EndTime, slots[i].StartTime, "slots are contiguous")
	}
}

func TestExpandDayUnavailable(t *testing.T) {
	day := DaySchedule{
		IsAvailable:         false,
		StartTime:           mustTime(t, "09:00"),
		EndTime:             mustTime(t, "17:00"),
		SlotDurationMinutes: 30,
	}
	assert.Empty(t, expandDay(day))
}

func TestExpandDayWindowShorterThanDuration(t *testing.T) {
	day := DaySchedule{
		IsAvailable:         true,
		StartTime:           mustTime(t, "09:00"),
		EndTime:             mustTime(t, "09:20"),
		SlotDurationMinutes: 30,
	}
	assert.Empty(t, expandDay(day))
}
