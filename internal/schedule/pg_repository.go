package schedule

import (
	"context"
	"errors"
	"fmt"
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

func scanWeekly(row pgx.Row) (*WeeklySchedule, error) {
	var ws WeeklySchedule
	var from time.Time
	var to *time.Time

	err := row.Scan(
		&ws.ID,
		&ws.DoctorID,
		&from,
		&to,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	ws.EffectiveFrom = calendar.DateOf(from)
	if to != nil {
		d := calendar.DateOf(*to)
		ws.EffectiveTo = &d
	}
	return &ws, nil
}

func (r *PgRepository) loadDays(ctx context.Context, ws *WeeklySchedule) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, day_of_week, is_available, start_minute, end_minute, slot_duration_minutes
		FROM day_schedules
		WHERE schedule_id = $1
		ORDER BY day_of_week
	`, ws.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d DaySchedule
		var dow int16
		if err := rows.Scan(&d.ID, &dow, &d.IsAvailable, &d.StartTime, &d.EndTime, &d.SlotDurationMinutes); err != nil {
			return err
		}
		d.DayOfWeek = time.Weekday(dow)
		ws.Days = append(ws.Days, d)
	}

	return rows.Err()
}

func (r *PgRepository) insertDays(ctx context.Context, tx pgx.Tx, ws *WeeklySchedule) error {
	for _, d := range ws.Days {
		_, err := tx.Exec(ctx, `
			INSERT INTO day_schedules (id, schedule_id, day_of_week, is_available,
			                           start_minute, end_minute, slot_duration_minutes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, d.ID, ws.ID, int16(d.DayOfWeek), d.IsAvailable,
			int16(d.StartTime), int16(d.EndTime), int16(d.SlotDurationMinutes))
		if err != nil {
			return err
		}
	}
	return nil
}

func effectiveToValue(ws *WeeklySchedule) *time.Time {
	if ws.EffectiveTo == nil {
		return nil
	}
	t := ws.EffectiveTo.Time()
	return &t
}

func (r *PgRepository) Create(ctx context.Context, ws *WeeklySchedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO weekly_schedules (id, doctor_id, effective_from, effective_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ws.ID, ws.DoctorID, ws.EffectiveFrom.Time(), effectiveToValue(ws), ws.CreatedAt, ws.UpdatedAt)
	if err != nil {
		return err
	}

	if err := r.insertDays(ctx, tx, ws); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) Update(ctx context.Context, ws *WeeklySchedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE weekly_schedules
		SET effective_from = $2,
		    effective_to = $3,
		    updated_at = now()
		WHERE id = $1
	`, ws.ID, ws.EffectiveFrom.Time(), effectiveToValue(ws))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}

	// Day rows are replaced wholesale; the template is small and immutable
	// per weekday.
	if _, err := tx.Exec(ctx, `DELETE FROM day_schedules WHERE schedule_id = $1`, ws.ID); err != nil {
		return err
	}
	if err := r.insertDays(ctx, tx, ws); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*WeeklySchedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, effective_from, effective_to, created_at, updated_at
		FROM weekly_schedules
		WHERE id = $1
	`, id)

	ws, err := scanWeekly(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadDays(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]WeeklySchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, effective_from, effective_to, created_at, updated_at
		FROM weekly_schedules
		WHERE doctor_id = $1
		ORDER BY effective_from
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WeeklySchedule
	for rows.Next() {
		ws, err := scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ws)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := r.loadDays(ctx, &result[i]); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (r *PgRepository) FindActive(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (*WeeklySchedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, effective_from, effective_to, created_at, updated_at
		FROM weekly_schedules
		WHERE doctor_id = $1
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
	`, doctorID, date.Time())

	ws, err := scanWeekly(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadDays(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}
