package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/config"
	"github.com/careflow/appointment-engine/internal/db"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/logging"
	"github.com/careflow/appointment-engine/internal/schedule"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.Env)
	defer log.Sync()

	log.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := db.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		log.Fatal("migrator init failed", zap.Error(err))
	}
	if err := migrator.Up(ctx); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	_ = migrator.Close()

	gofakeit.Seed(time.Now().UnixNano())

	dirSvc := directory.NewService(directory.NewPgRepository(pool))
	schedRepo := schedule.NewPgRepository(pool)
	leaveCal := noLeaves{}
	bookedCal := noBookings{}
	schedSvc := schedule.NewService(schedRepo, leaveCal, bookedCal)

	doctors, err := seedDoctors(ctx, dirSvc, 25, log)
	if err != nil {
		log.Fatal("seed doctors", zap.Error(err))
	}

	if err := seedSchedules(ctx, schedSvc, doctors, log); err != nil {
		log.Fatal("seed schedules", zap.Error(err))
	}

	if err := seedPatients(ctx, dirSvc, 500, log); err != nil {
		log.Fatal("seed patients", zap.Error(err))
	}

	log.Info("seed complete")
}

// noLeaves and noBookings stand in for the live calendars; seeding never
// derives slots, the service just needs non-nil collaborators.
type noLeaves struct{}

func (noLeaves) HasApprovedLeave(context.Context, uuid.UUID, calendar.Date) (bool, error) {
	return false, nil
}

type noBookings struct{}

func (noBookings) BookedIntervals(context.Context, uuid.UUID, calendar.Date) ([]calendar.Interval, error) {
	return nil, nil
}

func seedDoctors(ctx context.Context, svc *directory.Service, count int, log *zap.Logger) ([]*directory.Doctor, error) {
	log.Info("seeding doctors", zap.Int("count", count))

	genders := []directory.Gender{directory.GenderMale, directory.GenderFemale, directory.GenderOther}
	doctors := make([]*directory.Doctor, 0, count)

	for i := 0; i < count; i++ {
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		d, err := svc.RegisterDoctor(ctx, directory.RegisterDoctorInput{
			FirstName:          gofakeit.FirstName(),
			LastName:           gofakeit.LastName(),
			Gender:             genders[gofakeit.Number(0, len(genders)-1)],
			Email:              fmt.Sprintf("dr.%d.%s", i, gofakeit.Email()),
			Phone:              gofakeit.Phone(),
			RegistrationNumber: fmt.Sprintf("REG-%06d", gofakeit.Number(1, 999999)),
			Specialty:          &spec,
			Qualifications:     []string{"MBBS", gofakeit.RandomString([]string{"MD", "MS", "DNB"})},
			Biography:          gofakeit.Sentence(12),
		})
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}

	log.Info("doctors seeded")
	return doctors, nil
}

func seedSchedules(ctx context.Context, svc *schedule.Service, doctors []*directory.Doctor, log *zap.Logger) error {
	log.Info("seeding weekly schedules", zap.Int("doctors", len(doctors)))

	durations := []int{15, 20, 30}

	for _, d := range doctors {
		duration := durations[gofakeit.Number(0, len(durations)-1)]
		startHour := gofakeit.Number(8, 10)
		endHour := gofakeit.Number(16, 19)

		days := make([]schedule.DayScheduleInput, 0, 7)
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			in := schedule.DayScheduleInput{DayOfWeek: wd}
			if wd != time.Sunday {
				in.IsAvailable = true
				in.StartTime = calendar.TimeOfDay(startHour * 60)
				in.EndTime = calendar.TimeOfDay(endHour * 60)
				in.SlotDurationMinutes = duration
			}
			days = append(days, in)
		}

		_, err := svc.CreateTemplate(ctx, schedule.CreateTemplateInput{
			DoctorID:      d.ID,
			EffectiveFrom: calendar.Today(),
			Days:          days,
		})
		if err != nil {
			return err
		}
	}

	log.Info("weekly schedules seeded")
	return nil
}

func seedPatients(ctx context.Context, svc *directory.Service, count int, log *zap.Logger) error {
	log.Info("seeding patients", zap.Int("count", count))

	genders := []directory.Gender{directory.GenderMale, directory.GenderFemale, directory.GenderOther}

	for i := 0; i < count; i++ {
		dob := gofakeit.DateRange(
			time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
		)
		address := gofakeit.Address().Address

		_, err := svc.RegisterPatient(ctx, directory.RegisterPatientInput{
			FirstName:   gofakeit.FirstName(),
			LastName:    gofakeit.LastName(),
			Gender:      genders[gofakeit.Number(0, len(genders)-1)],
			Email:       fmt.Sprintf("pt.%d.%s", i, gofakeit.Email()),
			Phone:       gofakeit.Phone(),
			DateOfBirth: calendar.DateOf(dob),
			Address:     &address,
		})
		if err != nil {
			return err
		}

		if (i+1)%100 == 0 {
			log.Info("patients seeded", zap.Int("done", i+1), zap.Int("total", count))
		}
	}

	log.Info("patients seeded")
	return nil
}
