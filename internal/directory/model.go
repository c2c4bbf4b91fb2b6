package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type DoctorStatus string

const (
	DoctorActive    DoctorStatus = "ACTIVE"
	DoctorInactive  DoctorStatus = "INACTIVE"
	DoctorSuspended DoctorStatus = "SUSPENDED"
)

type Doctor struct {
	ID                 uuid.UUID
	FirstName          string
	LastName           string
	Gender             Gender
	Email              string
	Phone              string
	RegistrationNumber string
	Specialty          *string
	Qualifications     []string
	Biography          string
	Status             DoctorStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Patient struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Gender         Gender
	Email          string
	Phone          string
	DateOfBirth    calendar.Date
	Address        *string
	MedicalHistory *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func (s DoctorStatus) Valid() bool {
	switch s {
	case DoctorActive, DoctorInactive, DoctorSuspended:
		return true
	}
	return false
}
