package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

var ErrInvalidProfile = errors.New("invalid profile data")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type RegisterDoctorInput struct {
	FirstName          string
	LastName           string
	Gender             Gender
	Email              string
	Phone              string
	RegistrationNumber string
	Specialty          *string
	Qualifications     []string
	Biography          string
}

func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*Doctor, error) {
	if err := validatePerson(in.FirstName, in.LastName, in.Gender, in.Email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.RegistrationNumber) == "" {
		return nil, fmt.Errorf("%w: registration number is required", ErrInvalidProfile)
	}

	now := time.Now()
	d := &Doctor{
		ID:                 uuid.New(),
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Gender:             in.Gender,
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:              strings.TrimSpace(in.Phone),
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		Specialty:          in.Specialty,
		Qualifications:     in.Qualifications,
		Biography:          in.Biography,
		Status:             DoctorActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return d, nil
}

type UpdateDoctorInput struct {
	FirstName      *string
	LastName       *string
	Gender         *Gender
	Email          *string
	Phone          *string
	Specialty      *string
	Qualifications []string
	Biography      *string
	Status         *DoctorStatus
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, in UpdateDoctorInput) (*Doctor, error) {
	d, err := s.repo.GetDoctorByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	if in.FirstName != nil {
		d.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		d.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Gender != nil {
		d.Gender = *in.Gender
	}
	if in.Email != nil {
		d.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		d.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Specialty != nil {
		d.Specialty = in.Specialty
	}
	if in.Qualifications != nil {
		d.Qualifications = in.Qualifications
	}
	if in.Biography != nil {
		d.Biography = *in.Biography
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown doctor status %q", ErrInvalidProfile, *in.Status)
		}
		d.Status = *in.Status
	}

	if err := validatePerson(d.FirstName, d.LastName, d.Gender, d.Email); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDoctor(ctx, d); err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	d.UpdatedAt = time.Now()
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListDoctors(ctx, limit, offset)
}

type RegisterPatientInput struct {
	FirstName      string
	LastName       string
	Gender         Gender
	Email          string
	Phone          string
	DateOfBirth    calendar.Date
	Address        *string
	MedicalHistory *string
}

func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, error) {
	if err := validatePerson(in.FirstName, in.LastName, in.Gender, in.Email); err != nil {
		return nil, err
	}
	if in.DateOfBirth.IsZero() || in.DateOfBirth.After(calendar.Today()) {
		return nil, fmt.Errorf("%w: date of birth must be in the past", ErrInvalidProfile)
	}

	now := time.Now()
	p := &Patient{
		ID:             uuid.New(),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Gender:         in.Gender,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          strings.TrimSpace(in.Phone),
		DateOfBirth:    in.DateOfBirth,
		Address:        in.Address,
		MedicalHistory: in.MedicalHistory,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

type UpdatePatientInput struct {
	FirstName      *string
	LastName       *string
	Gender         *Gender
	Phone          *string
	DateOfBirth    *calendar.Date
	Address        *string
	MedicalHistory *string
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in UpdatePatientInput) (*Patient, error) {
	p, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Phone != nil {
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = *in.DateOfBirth
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = in.MedicalHistory
	}

	if err := validatePerson(p.FirstName, p.LastName, p.Gender, p.Email); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

func validatePerson(first, last string, gender Gender, email string) error {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(last) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidProfile)
	}
	if !gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, gender)
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidProfile)
	}
	return nil
}
