package leave

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type stubAppointmentFinder struct {
	refs []AppointmentRef
}

func (s *stubAppointmentFinder) ActiveAppointmentsInRange(ctx context.Context, doctorID uuid.UUID, from, to calendar.Date) ([]AppointmentRef, error) {
	return s.refs, nil
}

func newTestService(finder *stubAppointmentFinder) *Service {
	if finder == nil {
		finder = &stubAppointmentFinder{}
	}
	return NewService(NewMemoryRepository(), finder)
}

func TestRequestStartsPending(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	doctorID := uuid.New()
	l, err := svc.Request(ctx, doctorID,
		calendar.NewDate(2024, time.February, 5),
		calendar.NewDate(2024, time.February, 9),
		"conference")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, l.Status)
	assert.Nil(t, l.ApprovedBy)

	loaded, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, loaded.Status)
}

func TestRequestRejectsInvalidRange(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Request(ctx, uuid.New(),
		calendar.NewDate(2024, time.February, 9),
		calendar.NewDate(2024, time.February, 5), "")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Request(ctx, uuid.New(), calendar.Date{}, calendar.Date{}, "")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRequestSingleDayRangeIsValid(t *testing.T) {
	svc := newTestService(nil)
	day := calendar.NewDate(2024, time.February, 5)

	l, err := svc.Request(context.Background(), uuid.New(), day, day, "")
	require.NoError(t, err)
	assert.True(t, l.Covers(day))
}

func TestDecideApprove(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	l, err := svc.Request(ctx, uuid.New(),
		calendar.NewDate(2024, time.March, 1),
		calendar.NewDate(2024, time.March, 3), "")
	require.NoError(t, err)

	actor := uuid.New()
	decided, warnings, err := svc.Decide(ctx, l.ID, true, actor, "")
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.ApprovedBy)
	assert.Equal(t, actor, *decided.ApprovedBy)
	assert.Empty(t, warnings)
}

func TestDecideReject(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	l, err := svc.Request(ctx, uuid.New(),
		calendar.NewDate(2024, time.March, 1),
		calendar.NewDate(2024, time.March, 3), "")
	require.NoError(t, err)

	decided, warnings, err := svc.Decide(ctx, l.ID, false, uuid.New(), "short staffed that week")
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, decided.Status)
	require.NotNil(t, decided.RejectionReason)
	assert.Equal(t, "short staffed that week", *decided.RejectionReason)
	assert.Nil(t, warnings, "rejections never produce appointment warnings")
}

func TestDecideTwiceFails(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	l, err := svc.Request(ctx, uuid.New(),
		calendar.NewDate(2024, time.March, 1),
		calendar.NewDate(2024, time.March, 3), "")
	require.NoError(t, err)

	_, _, err = svc.Decide(ctx, l.ID, true, uuid.New(), "")
	require.NoError(t, err)

	_, _, err = svc.Decide(ctx, l.ID, false, uuid.New(), "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	_, _, err = svc.Decide(ctx, l.ID, true, uuid.New(), "")
	assert.ErrorIs(t, err, ErrAlreadyDecided, "re-approving is just as invalid")
}

func TestDecideApproveSurfacesAffectedAppointments(t *testing.T) {
	apptID := uuid.New()
	finder := &stubAppointmentFinder{refs: []AppointmentRef{{
		ID:        apptID,
		PatientID: uuid.New(),
		Date:      calendar.NewDate(2024, time.March, 2),
	}}}
	svc := newTestService(finder)
	ctx := context.Background()

	l, err := svc.Request(ctx, uuid.New(),
		calendar.NewDate(2024, time.March, 1),
		calendar.NewDate(2024, time.March, 3), "")
	require.NoError(t, err)

	decided, warnings, err := svc.Decide(ctx, l.ID, true, uuid.New(), "")
	require.NoError(t, err)

	// Approval goes through; the overlapping appointment is reported, not
	// cancelled.
	assert.Equal(t, StatusApproved, decided.Status)
	require.Len(t, warnings, 1)
	assert.Equal(t, apptID, warnings[0].ID)
}

func TestOnlyApprovedLeavesSuppressSlots(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &stubAppointmentFinder{})
	ctx := context.Background()

	doctorID := uuid.New()
	day := calendar.NewDate(2024, time.April, 10)

	pending, err := svc.Request(ctx, doctorID, day, day, "")
	require.NoError(t, err)

	blocked, err := repo.HasApprovedLeave(ctx, doctorID, day)
	require.NoError(t, err)
	assert.False(t, blocked, "pending leave does not block")

	_, _, err = svc.Decide(ctx, pending.ID, false, uuid.New(), "no")
	require.NoError(t, err)

	blocked, err = repo.HasApprovedLeave(ctx, doctorID, day)
	require.NoError(t, err)
	assert.False(t, blocked, "rejected leave does not block")

	approved, err := svc.Request(ctx, doctorID, day, day, "")
	require.NoError(t, err)
	_, _, err = svc.Decide(ctx, approved.ID, true, uuid.New(), "")
	require.NoError(t, err)

	blocked, err = repo.HasApprovedLeave(ctx, doctorID, day)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = repo.HasApprovedLeave(ctx, doctorID, day.AddDays(1))
	require.NoError(t, err)
	assert.False(t, blocked, "day outside the range is unaffected")
}

func TestListByDoctorFilters(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	doctorID := uuid.New()

	a, err := svc.Request(ctx, doctorID,
		calendar.NewDate(2024, time.January, 10), calendar.NewDate(2024, time.January, 12), "")
	require.NoError(t, err)
	_, err = svc.Request(ctx, doctorID,
		calendar.NewDate(2024, time.May, 1), calendar.NewDate(2024, time.May, 2), "")
	require.NoError(t, err)

	_, _, err = svc.Decide(ctx, a.ID, true, uuid.New(), "")
	require.NoError(t, err)

	approved := StatusApproved
	got, err := svc.ListByDoctor(ctx, doctorID, ListFilter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	from := calendar.NewDate(2024, time.April, 1)
	got, err = svc.ListByDoctor(ctx, doctorID, ListFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-05-01", got[0].StartDate.String())
}
