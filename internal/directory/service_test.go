package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/appointment-engine/internal/calendar"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository())
}

func TestRegisterDoctor(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	specialty := "Cardiology"
	d, err := svc.RegisterDoctor(ctx, RegisterDoctorInput{
		FirstName:          "Asha",
		LastName:           "Rao",
		Gender:             GenderFemale,
		Email:              "Asha.Rao@example.com",
		Phone:              "555-0101",
		RegistrationNumber: "MED-1234",
		Specialty:          &specialty,
	})
	require.NoError(t, err)

	assert.Equal(t, DoctorActive, d.Status)
	assert.Equal(t, "asha.rao@example.com", d.Email, "email is normalized")

	loaded, err := svc.GetDoctor(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, loaded.ID)
}

func TestRegisterDoctorValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.RegisterDoctor(ctx, RegisterDoctorInput{
		FirstName: "Asha", LastName: "Rao", Gender: GenderFemale,
		Email: "asha@example.com",
	})
	assert.ErrorIs(t, err, ErrInvalidProfile, "missing registration number")

	_, err = svc.RegisterDoctor(ctx, RegisterDoctorInput{
		FirstName: "Asha", LastName: "Rao", Gender: "UNKNOWN",
		Email: "asha@example.com", RegistrationNumber: "MED-1",
	})
	assert.ErrorIs(t, err, ErrInvalidProfile, "bad gender")

	_, err = svc.RegisterDoctor(ctx, RegisterDoctorInput{
		FirstName: "Asha", LastName: "Rao", Gender: GenderFemale,
		Email: "not-an-email", RegistrationNumber: "MED-1",
	})
	assert.ErrorIs(t, err, ErrInvalidProfile, "bad email")
}

func TestRegisterDoctorDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RegisterDoctorInput{
		FirstName: "Asha", LastName: "Rao", Gender: GenderFemale,
		Email: "asha@example.com", RegistrationNumber: "MED-1",
	}
	_, err := svc.RegisterDoctor(ctx, in)
	require.NoError(t, err)

	_, err = svc.RegisterDoctor(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateDoctorStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	d, err := svc.RegisterDoctor(ctx, RegisterDoctorInput{
		FirstName: "Asha", LastName: "Rao", Gender: GenderFemale,
		Email: "asha@example.com", RegistrationNumber: "MED-1",
	})
	require.NoError(t, err)

	suspended := DoctorSuspended
	updated, err := svc.UpdateDoctor(ctx, d.ID, UpdateDoctorInput{Status: &suspended})
	require.NoError(t, err)
	assert.Equal(t, DoctorSuspended, updated.Status)

	bogus := DoctorStatus("ON_FIRE")
	_, err = svc.UpdateDoctor(ctx, d.ID, UpdateDoctorInput{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestRegisterPatient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.RegisterPatient(ctx, RegisterPatientInput{
		FirstName:   "Ben",
		LastName:    "Okafor",
		Gender:      GenderMale,
		Email:       "ben@example.com",
		Phone:       "555-0102",
		DateOfBirth: calendar.NewDate(1990, time.March, 14),
	})
	require.NoError(t, err)

	loaded, err := svc.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1990-03-14", loaded.DateOfBirth.String())

	_, err = svc.RegisterPatient(ctx, RegisterPatientInput{
		FirstName: "Ben", LastName: "Okafor", Gender: GenderMale,
		Email:       "ben2@example.com",
		DateOfBirth: calendar.Today().AddDays(1),
	})
	assert.ErrorIs(t, err, ErrInvalidProfile, "future date of birth")
}

func TestListDoctorsPagination(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	names := []string{"Adams", "Baker", "Chen"}
	for i, n := range names {
		_, err := svc.RegisterDoctor(ctx, RegisterDoctorInput{
			FirstName: "Doc", LastName: n, Gender: GenderOther,
			Email:              n + "@example.com",
			RegistrationNumber: "MED-" + n,
		})
		require.NoError(t, err, "doctor %d", i)
	}

	page, err := svc.ListDoctors(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Adams", page[0].LastName)
	assert.Equal(t, "Baker", page[1].LastName)

	rest, err := svc.ListDoctors(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Chen", rest[0].LastName)
}
