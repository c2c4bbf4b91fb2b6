package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type stubLeaveCalendar struct {
	onLeave map[string]bool
}

func (s *stubLeaveCalendar) HasApprovedLeave(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (bool, error) {
	return s.onLeave[doctorID.String()+":"+date.String()], nil
}

type stubBookedCalendar struct {
	booked map[string][]calendar.Interval
}

func (s *stubBookedCalendar) BookedIntervals(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]calendar.Interval, error) {
	return s.booked[doctorID.String()+":"+date.String()], nil
}

func allWeekdays(t *testing.T, start, end string, duration int) []DayScheduleInput {
	t.Helper()
	days := make([]DayScheduleInput, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, DayScheduleInput{
			DayOfWeek:           wd,
			IsAvailable:         wd != time.Sunday && wd != time.Saturday,
			StartTime:           mustTime(t, start),
			EndTime:             mustTime(t, end),
			SlotDurationMinutes: duration,
		})
	}
	return days
}

type testEnv struct {
	svc    *Service
	leaves *stubLeaveCalendar
	booked *stubBookedCalendar
}

func newTestEnv() *testEnv {
	leaves := &stubLeaveCalendar{onLeave: make(map[string]bool)}
	booked := &stubBookedCalendar{booked: make(map[string][]calendar.Interval)}
	return &testEnv{
		svc:    NewService(NewMemoryRepository(), leaves, booked),
		leaves: leaves,
		booked: booked,
	}
}

func TestCreateTemplateRejectsOverlappingRange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	to := calendar.NewDate(2024, time.June, 30)
	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		EffectiveTo:   &to,
		Days:          allWeekdays(t, "09:00", "17:00", 30),
	})
	require.NoError(t, err)

	// Overlaps the tail of the first range.
	_, err = env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.June, 1),
		Days:          allWeekdays(t, "10:00", "16:00", 30),
	})
	assert.ErrorIs(t, err, ErrOverlappingTemplate)

	// Starts the day after the first range ends: fine.
	_, err = env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.July, 1),
		Days:          allWeekdays(t, "10:00", "16:00", 30),
	})
	require.NoError(t, err)

	// Other doctors are unaffected.
	_, err = env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      uuid.New(),
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          allWeekdays(t, "09:00", "17:00", 30),
	})
	require.NoError(t, err)
}

func TestCreateTemplateValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	days := allWeekdays(t, "09:00", "17:00", 30)

	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      uuid.New(),
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          days[:6],
	})
	assert.ErrorIs(t, err, ErrInvalidTemplate, "six day schedules")

	bad := allWeekdays(t, "17:00", "09:00", 30)
	_, err = env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      uuid.New(),
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          bad,
	})
	assert.ErrorIs(t, err, ErrInvalidTemplate, "inverted window")

	zeroDur := allWeekdays(t, "09:00", "17:00", 0)
	_, err = env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      uuid.New(),
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          zeroDur,
	})
	assert.ErrorIs(t, err, ErrInvalidTemplate, "zero duration")

	from := calendar.NewDate(2024, time.June, 1)
	to := calendar.NewDate(2024, time.January, 1)
	_, err = env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      uuid.New(),
		EffectiveFrom: from,
		EffectiveTo:   &to,
		Days:          days,
	})
	assert.ErrorIs(t, err, ErrInvalidTemplate, "inverted effective range")
}

func TestAvailableSlotsOutsideEffectiveRange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	to := calendar.NewDate(2024, time.March, 31)
	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		EffectiveTo:   &to,
		Days:          allWeekdays(t, "09:00", "17:00", 30),
	})
	require.NoError(t, err)

	slots, err := env.svc.AvailableSlots(ctx, doctorID, calendar.NewDate(2024, time.April, 1))
	require.NoError(t, err)
	assert.Empty(t, slots)

	// Unknown doctor: also empty, not an error.
	slots, err = env.svc.AvailableSlots(ctx, uuid.New(), calendar.NewDate(2024, time.February, 5))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlotsUnavailableWeekday(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          allWeekdays(t, "09:00", "17:00", 30),
	})
	require.NoError(t, err)

	// 2024-01-07 is a Sunday, marked unavailable in the template.
	slots, err := env.svc.AvailableSlots(ctx, doctorID, calendar.NewDate(2024, time.January, 7))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlotsApprovedLeaveSuppressesWholeDay(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          allWeekdays(t, "09:00", "12:00", 30),
	})
	require.NoError(t, err)

	date := calendar.NewDate(2024, time.January, 2) // Tuesday
	env.leaves.onLeave[doctorID.String()+":"+date.String()] = true

	slots, err := env.svc.AvailableSlots(ctx, doctorID, date)
	require.NoError(t, err)
	require.Len(t, slots, 6)
	for _, s := range slots {
		assert.False(t, s.Available)
	}
}

func TestAvailableSlotsMarksBookedSlots(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          allWeekdays(t, "09:00", "11:00", 30),
	})
	require.NoError(t, err)

	date := calendar.NewDate(2024, time.January, 2)
	env.booked.booked[doctorID.String()+":"+date.String()] = []calendar.Interval{
		{Start: mustTime(t, "09:30"), End: mustTime(t, "10:00")},
	}

	slots, err := env.svc.AvailableSlots(ctx, doctorID, date)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.True(t, slots[0].Available, "09:00-09:30 stays open")
	assert.False(t, slots[1].Available, "09:30-10:00 is taken")
	assert.True(t, slots[2].Available, "back-to-back 10:00-10:30 does not overlap")
	assert.True(t, slots[3].Available)
}

func TestAvailableSlotsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          allWeekdays(t, "09:00", "17:00", 30),
	})
	require.NoError(t, err)

	date := calendar.NewDate(2024, time.January, 3)
	first, err := env.svc.AvailableSlots(ctx, doctorID, date)
	require.NoError(t, err)
	second, err := env.svc.AvailableSlots(ctx, doctorID, date)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUpdateTemplateRange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	to := calendar.NewDate(2024, time.March, 31)
	ws, err := env.svc.CreateTemplate(ctx, CreateTemplateInput{
		DoctorID:      doctorID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		EffectiveTo:   &to,
		Days:          allWeekdays(t, "09:00", "17:00", 30),
	})
	require.NoError(t, err)

	newTo := calendar.NewDate(2024, time.February, 29)
	updated, err := env.svc.UpdateTemplate(ctx, ws.ID, UpdateTemplateInput{EffectiveTo: &newTo})
	require.NoError(t, err)
	require.NotNil(t, updated.EffectiveTo)
	assert.Equal(t, "2024-02-29", updated.EffectiveTo.String())

	// Shrinking did not trip the overlap check against itself.
	open, err := env.svc.UpdateTemplate(ctx, ws.ID, UpdateTemplateInput{ClearTo: true})
	require.NoError(t, err)
	assert.Nil(t, open.EffectiveTo)
}
