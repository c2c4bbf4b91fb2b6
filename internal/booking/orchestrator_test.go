package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/leave"
	redisclient "github.com/careflow/appointment-engine/internal/redis"
	"github.com/careflow/appointment-engine/internal/schedule"
)

// fixture wires the full in-memory stack the way demo mode does.
type fixture struct {
	orch      *Orchestrator
	directory *directory.Service
	schedules *schedule.Service
	leaves    *leave.Service
	doctor    *directory.Doctor
	patient   *directory.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dirRepo := directory.NewMemoryRepository()
	dirSvc := directory.NewService(dirRepo)

	apptRepo := appointment.NewMemoryRepository()
	leaveRepo := leave.NewMemoryRepository()

	schedSvc := schedule.NewService(schedule.NewMemoryRepository(), leaveRepo, apptRepo)
	leaveSvc := leave.NewService(leaveRepo, appointment.NewLeaveWarningSource(apptRepo))
	ledger := appointment.NewLedger(apptRepo, redisclient.NewLocalBookingLocker(), zap.NewNop())

	doctor, err := dirSvc.RegisterDoctor(ctx, directory.RegisterDoctorInput{
		FirstName:          "Asha",
		LastName:           "Rao",
		Gender:             directory.GenderFemale,
		Email:              "asha.rao@clinic.test",
		RegistrationNumber: "MH-2211",
	})
	require.NoError(t, err)

	patient, err := dirSvc.RegisterPatient(ctx, directory.RegisterPatientInput{
		FirstName:   "Vikram",
		LastName:    "Shah",
		Gender:      directory.GenderMale,
		Email:       "vikram.shah@mail.test",
		DateOfBirth: calendar.NewDate(1990, time.March, 14),
	})
	require.NoError(t, err)

	// Mon-Fri 09:00-12:00, 30 minute slots.
	days := make([]schedule.DayScheduleInput, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		in := schedule.DayScheduleInput{DayOfWeek: wd}
		if wd != time.Sunday && wd != time.Saturday {
			in.IsAvailable = true
			in.StartTime = mustTime(t, "09:00")
			in.EndTime = mustTime(t, "12:00")
			in.SlotDurationMinutes = 30
		}
		days = append(days, in)
	}
	_, err = schedSvc.CreateTemplate(ctx, schedule.CreateTemplateInput{
		DoctorID:      doctor.ID,
		EffectiveFrom: calendar.NewDate(2024, time.January, 1),
		Days:          days,
	})
	require.NoError(t, err)

	return &fixture{
		orch:      NewOrchestrator(schedSvc, ledger, dirRepo, zap.NewNop()),
		directory: dirSvc,
		schedules: schedSvc,
		leaves:    leaveSvc,
		doctor:    doctor,
		patient:   patient,
	}
}

func mustTime(t *testing.T, s string) calendar.TimeOfDay {
	t.Helper()
	v, err := calendar.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func (f *fixture) request(t *testing.T, date calendar.Date, start, end string) BookRequest {
	return BookRequest{
		DoctorID:  f.doctor.ID,
		PatientID: f.patient.ID,
		Date:      date,
		StartTime: mustTime(t, start),
		EndTime:   mustTime(t, end),
		Reason:    "follow-up",
	}
}

// 2024-01-02 is a Tuesday.
var tuesday = calendar.NewDate(2024, time.January, 2)

func TestBookHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusScheduled, appt.Status)
	assert.Equal(t, f.doctor.ID, appt.DoctorID)
	assert.Equal(t, f.patient.ID, appt.PatientID)
}

func TestBookRejectsIntervalOffTheSlotGrid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Right duration, wrong alignment.
	_, err := f.orch.Book(ctx, f.request(t, tuesday, "09:10", "09:40"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Aligned but spans two slots.
	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Outside the working window.
	_, err = f.orch.Book(ctx, f.request(t, tuesday, "14:00", "14:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Closed weekday.
	sunday := calendar.NewDate(2024, time.January, 7)
	_, err = f.orch.Book(ctx, f.request(t, sunday, "09:00", "09:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookTakenSlotIsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	require.NoError(t, err)

	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// The neighbouring slot is untouched.
	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:30", "10:00"))
	require.NoError(t, err)
}

func TestBookBlockedByApprovedLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lv, err := f.leaves.Request(ctx, f.doctor.ID, tuesday, tuesday, "conference")
	require.NoError(t, err)

	// Pending leave does not block.
	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	require.NoError(t, err)

	_, warnings, err := f.leaves.Decide(ctx, lv.ID, true, uuid.New(), "")
	require.NoError(t, err)
	assert.Len(t, warnings, 1, "the booked visit falls inside the leave")

	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:30", "10:00"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookUnknownPartiesAndInactiveDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request(t, tuesday, "09:00", "09:30")
	req.DoctorID = uuid.New()
	_, err := f.orch.Book(ctx, req)
	assert.ErrorIs(t, err, directory.ErrDoctorNotFound)

	req = f.request(t, tuesday, "09:00", "09:30")
	req.PatientID = uuid.New()
	_, err = f.orch.Book(ctx, req)
	assert.ErrorIs(t, err, directory.ErrPatientNotFound)

	inactive := directory.DoctorInactive
	_, err = f.directory.UpdateDoctor(ctx, f.doctor.ID, directory.UpdateDoctorInput{Status: &inactive})
	require.NoError(t, err)

	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	assert.ErrorIs(t, err, ErrDoctorNotBookable)
}

func TestBookRaceSurfacesSlotUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const racers = 6
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.Book(ctx, f.request(t, tuesday, "10:00", "10:30"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestUpdateStatusRolePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	require.NoError(t, err)

	// Either role may confirm.
	_, err = f.orch.UpdateStatus(ctx, appt.ID, appointment.StatusConfirmed, RolePatient)
	require.NoError(t, err)

	// Closing out the visit is doctor-only.
	_, err = f.orch.UpdateStatus(ctx, appt.ID, appointment.StatusCompleted, RolePatient)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
	_, err = f.orch.UpdateStatus(ctx, appt.ID, appointment.StatusNoShow, RolePatient)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	done, err := f.orch.UpdateStatus(ctx, appt.ID, appointment.StatusCompleted, RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, done.Status)
}

func TestCancelReleasesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	require.NoError(t, err)

	cancelled, err := f.orch.Cancel(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, cancelled.Status)

	_, err = f.orch.Book(ctx, f.request(t, tuesday, "09:00", "09:30"))
	require.NoError(t, err, "slot opens up again after cancellation")
}
