package leave

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

// MemoryRepository backs demo mode and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	leaves map[uuid.UUID]Leave
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{leaves: make(map[uuid.UUID]Leave)}
}

func (r *MemoryRepository) Create(ctx context.Context, l *Leave) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves[l.ID] = *l
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, ErrLeaveNotFound
	}
	return &l, nil
}

func (r *MemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Leave, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Leave
	for _, l := range r.leaves {
		if l.DoctorID != doctorID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if filter.From != nil && l.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.StartDate.After(*filter.To) {
			continue
		}
		result = append(result, l)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[j].StartDate.Before(result[i].StartDate)
	})
	return result, nil
}

func (r *MemoryRepository) ApplyDecision(ctx context.Context, id uuid.UUID, d Decision) (*Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leaves[id]
	if !ok || l.Status != StatusPending {
		return nil, ErrLeaveNotFound
	}

	l.Status = d.Status
	actor := d.ActorID
	l.ApprovedBy = &actor
	decidedAt := d.DecidedAt
	l.ApprovedAt = &decidedAt
	l.RejectionReason = d.RejectionReason
	l.UpdatedAt = d.DecidedAt
	r.leaves[id] = l
	return &l, nil
}

func (r *MemoryRepository) HasApprovedLeave(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.leaves {
		if l.DoctorID == doctorID && l.Status == StatusApproved && l.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}
