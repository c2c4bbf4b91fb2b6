package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

// MemoryRepository backs demo mode and tests. CreateIfFree holds the
// repository mutex across the overlap check and insert, mirroring the
// atomicity of the single-statement conditional insert in Postgres.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]Appointment
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{appointments: make(map[uuid.UUID]Appointment)}
}

func (r *MemoryRepository) CreateIfFree(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appointments {
		if existing.DoctorID == a.DoctorID &&
			existing.Date == a.Date &&
			existing.Status.Active() &&
			existing.Interval().Overlaps(a.Interval()) {
			return ErrConflict
		}
	}

	r.appointments[a.ID] = *a
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}

	a.Status = to
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, filter ListFilter) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && matchesFilter(a, filter) {
			result = append(result, a)
		}
	}
	sortAppointments(result)
	return result, nil
}

func (r *MemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, filter ListFilter) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID && matchesFilter(a, filter) {
			result = append(result, a)
		}
	}
	sortAppointments(result)
	return result, nil
}

func (r *MemoryRepository) BookedIntervals(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]calendar.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []calendar.Interval
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Date == date && a.Status.Active() {
			result = append(result, a.Interval())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start < result[j].Start })
	return result, nil
}

func (r *MemoryRepository) ActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to calendar.Date) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.Status.Active() &&
			!a.Date.Before(from) && !a.Date.After(to) {
			result = append(result, a)
		}
	}
	sortAppointments(result)
	return result, nil
}

func (r *MemoryRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		if !a.Status.Active() || a.RemindedAt != nil {
			continue
		}
		starts := a.StartsAt()
		if !starts.Before(from) && starts.Before(to) {
			result = append(result, a)
		}
	}
	sortAppointments(result)
	return result, nil
}

func (r *MemoryRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.RemindedAt != nil {
		return false, nil
	}
	a.RemindedAt = &at
	r.appointments[id] = a
	return true, nil
}

func (r *MemoryRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded audit trail, oldest first.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EventLog, len(r.events))
	copy(out, r.events)
	return out
}

func matchesFilter(a Appointment, filter ListFilter) bool {
	if filter.Status != nil && a.Status != *filter.Status {
		return false
	}
	if filter.Date != nil && a.Date != *filter.Date {
		return false
	}
	if filter.From != nil && a.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && a.Date.After(*filter.To) {
		return false
	}
	return true
}

func sortAppointments(list []Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].StartTime < list[j].StartTime
	})
}
