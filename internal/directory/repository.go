package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// Repository contains all DB interactions needed by the directory service.
type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) error

	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	UpdatePatient(ctx context.Context, p *Patient) error
}
