package appointment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careflow/appointment-engine/internal/calendar"
)

// DBTX is the slice of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DBTX
}

func NewPgRepository(db DBTX) *PgRepository {
	return &PgRepository{db: db}
}

const apptColumns = `id, doctor_id, patient_id, date, start_minute, end_minute, status,
	reason, notes, reminded_at, created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	var remindedAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Reason,
		&a.Notes,
		&remindedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date = calendar.DateOf(date)
	a.RemindedAt = remindedAt
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

// Interface methods

func (r *PgRepository) CreateIfFree(ctx context.Context, a *Appointment) error {
	// The overlap check and insert are one statement, so the database is the
	// final arbiter even if the per-day lock is ever bypassed.
	tag, err := r.db.Exec(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, date, start_minute, end_minute,
		                          status, reason, notes, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $2
			  AND date = $4
			  AND status IN ('SCHEDULED', 'CONFIRMED')
			  AND start_minute < $6
			  AND $5 < end_minute
		)
	`, a.ID, a.DoctorID, a.PatientID, a.Date.Time(), int16(a.StartTime), int16(a.EndTime),
		a.Status, a.Reason, a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+apptColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Appointment, error) {
	query := `
		SELECT ` + apptColumns + `
		FROM appointments
		WHERE doctor_id = $1
	`
	query, args := appendFilter(query, []any{doctorID}, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, filter ListFilter) ([]Appointment, error) {
	query := `
		SELECT ` + apptColumns + `
		FROM appointments
		WHERE patient_id = $1
	`
	query, args := appendFilter(query, []any{patientID}, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func appendFilter(query string, args []any, filter ListFilter) (string, []any) {
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Date != nil {
		args = append(args, filter.Date.Time())
		query += ` AND date = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, filter.From.Time())
		query += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, filter.To.Time())
		query += ` AND date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY date, start_minute`
	return query, args
}

func (r *PgRepository) BookedIntervals(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]calendar.Interval, error) {
	rows, err := r.db.Query(ctx, `
		SELECT start_minute, end_minute
		FROM appointments
		WHERE doctor_id = $1
		  AND date = $2
		  AND status IN ('SCHEDULED', 'CONFIRMED')
		ORDER BY start_minute
	`, doctorID, date.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []calendar.Interval
	for rows.Next() {
		var iv calendar.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		result = append(result, iv)
	}
	return result, rows.Err()
}

func (r *PgRepository) ActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to calendar.Date) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND date BETWEEN $2 AND $3
		  AND status IN ('SCHEDULED', 'CONFIRMED')
		ORDER BY date, start_minute
	`, doctorID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE status IN ('SCHEDULED', 'CONFIRMED')
		  AND reminded_at IS NULL
		  AND date + make_interval(mins => start_minute::int) >= $1
		  AND date + make_interval(mins => start_minute::int) < $2
		ORDER BY date, start_minute
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET reminded_at = $2
		WHERE id = $1
		  AND reminded_at IS NULL
	`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
