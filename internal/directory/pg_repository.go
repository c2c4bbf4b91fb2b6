package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty *string

	err := row.Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.Gender,
		&d.Email,
		&d.Phone,
		&d.RegistrationNumber,
		&specialty,
		&d.Qualifications,
		&d.Biography,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Specialty = specialty
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var dob time.Time
	var address, history *string

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Gender,
		&p.Email,
		&p.Phone,
		&dob,
		&address,
		&history,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.DateOfBirth = calendar.DateOf(dob)
	p.Address = address
	p.MedicalHistory = history
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "email")
}

// Interface methods

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, first_name, last_name, gender, email, phone,
		                     registration_number, specialty, qualifications, biography, status,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, d.ID, d.FirstName, d.LastName, d.Gender, d.Email, d.Phone,
		d.RegistrationNumber, d.Specialty, d.Qualifications, d.Biography, d.Status,
		d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, gender, email, phone,
		       registration_number, specialty, qualifications, biography, status,
		       created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, gender, email, phone,
		       registration_number, specialty, qualifications, biography, status,
		       created_at, updated_at
		FROM doctors
		ORDER BY last_name, first_name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors
		SET first_name = $2,
		    last_name = $3,
		    gender = $4,
		    email = $5,
		    phone = $6,
		    registration_number = $7,
		    specialty = $8,
		    qualifications = $9,
		    biography = $10,
		    status = $11,
		    updated_at = now()
		WHERE id = $1
	`, d.ID, d.FirstName, d.LastName, d.Gender, d.Email, d.Phone,
		d.RegistrationNumber, d.Specialty, d.Qualifications, d.Biography, d.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, gender, email, phone,
		                      date_of_birth, address, medical_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.FirstName, p.LastName, p.Gender, p.Email, p.Phone,
		p.DateOfBirth.Time(), p.Address, p.MedicalHistory, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, gender, email, phone,
		       date_of_birth, address, medical_history, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET first_name = $2,
		    last_name = $3,
		    gender = $4,
		    email = $5,
		    phone = $6,
		    date_of_birth = $7,
		    address = $8,
		    medical_history = $9,
		    updated_at = now()
		WHERE id = $1
	`, p.ID, p.FirstName, p.LastName, p.Gender, p.Email, p.Phone,
		p.DateOfBirth.Time(), p.Address, p.MedicalHistory)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}
