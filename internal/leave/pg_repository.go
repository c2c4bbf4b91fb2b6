package leave

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/appointment-engine/internal/calendar"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanLeave(row pgx.Row) (*Leave, error) {
	var l Leave
	var start, end time.Time
	var approvedBy *uuid.UUID
	var approvedAt *time.Time
	var rejectionReason *string

	err := row.Scan(
		&l.ID,
		&l.DoctorID,
		&start,
		&end,
		&l.Reason,
		&l.Status,
		&l.RequestedAt,
		&approvedBy,
		&approvedAt,
		&rejectionReason,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeaveNotFound
		}
		return nil, err
	}

	l.StartDate = calendar.DateOf(start)
	l.EndDate = calendar.DateOf(end)
	l.ApprovedBy = approvedBy
	l.ApprovedAt = approvedAt
	l.RejectionReason = rejectionReason
	return &l, nil
}

const leaveColumns = `id, doctor_id, start_date, end_date, reason, status, requested_at,
	approved_by, approved_at, rejection_reason, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, l *Leave) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leaves (id, doctor_id, start_date, end_date, reason, status,
		                    requested_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.ID, l.DoctorID, l.StartDate.Time(), l.EndDate.Time(), l.Reason, l.Status,
		l.RequestedAt, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leaveColumns+`
		FROM leaves
		WHERE id = $1
	`, id)
	return scanLeave(row)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Leave, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leaves
		WHERE doctor_id = $1
	`
	args := []any{doctorID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, filter.From.Time())
		query += ` AND end_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, filter.To.Time())
		query += ` AND start_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY start_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	return result, rows.Err()
}

func (r *PgRepository) ApplyDecision(ctx context.Context, id uuid.UUID, d Decision) (*Leave, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leaves
		SET status = $2,
		    approved_by = $3,
		    approved_at = $4,
		    rejection_reason = $5,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'PENDING'
		RETURNING `+leaveColumns+`
	`, id, d.Status, d.ActorID, d.DecidedAt, d.RejectionReason)
	return scanLeave(row)
}

func (r *PgRepository) HasApprovedLeave(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leaves
			WHERE doctor_id = $1
			  AND status = 'APPROVED'
			  AND start_date <= $2
			  AND end_date >= $2
		)
	`, doctorID, date.Time()).Scan(&exists)
	return exists, err
}
