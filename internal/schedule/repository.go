package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

var (
	ErrScheduleNotFound = errors.New("weekly schedule not found")
)

// Repository contains all DB interactions needed by the schedule service.
type Repository interface {
	Create(ctx context.Context, ws *WeeklySchedule) error
	Update(ctx context.Context, ws *WeeklySchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*WeeklySchedule, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]WeeklySchedule, error)

	// FindActive returns the template whose effective range contains date,
	// or ErrScheduleNotFound.
	FindActive(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (*WeeklySchedule, error)
}
