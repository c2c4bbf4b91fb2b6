package schedule

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

// MemoryRepository backs demo mode and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]WeeklySchedule
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{schedules: make(map[uuid.UUID]WeeklySchedule)}
}

func cloneSchedule(ws WeeklySchedule) WeeklySchedule {
	days := make([]DaySchedule, len(ws.Days))
	copy(days, ws.Days)
	ws.Days = days
	if ws.EffectiveTo != nil {
		to := *ws.EffectiveTo
		ws.EffectiveTo = &to
	}
	return ws
}

func (r *MemoryRepository) Create(ctx context.Context, ws *WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[ws.ID] = cloneSchedule(*ws)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, ws *WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[ws.ID]; !ok {
		return ErrScheduleNotFound
	}
	r.schedules[ws.ID] = cloneSchedule(*ws)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.schedules[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	out := cloneSchedule(ws)
	return &out, nil
}

func (r *MemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []WeeklySchedule
	for _, ws := range r.schedules {
		if ws.DoctorID == doctorID {
			result = append(result, cloneSchedule(ws))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EffectiveFrom.Before(result[j].EffectiveFrom)
	})
	return result, nil
}

func (r *MemoryRepository) FindActive(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (*WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ws := range r.schedules {
		if ws.DoctorID == doctorID && ws.Covers(date) {
			out := cloneSchedule(ws)
			return &out, nil
		}
	}
	return nil, ErrScheduleNotFound
}
