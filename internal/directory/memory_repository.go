package directory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository backs the explicit demo mode and tests. It is never wired
// in silently; cmd/api-server only selects it when APP_DEMO_MODE=true.
type MemoryRepository struct {
	mu       sync.RWMutex
	doctors  map[uuid.UUID]Doctor
	patients map[uuid.UUID]Patient
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		doctors:  make(map[uuid.UUID]Doctor),
		patients: make(map[uuid.UUID]Patient),
	}
}

func (r *MemoryRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.doctors {
		if existing.Email == d.Email {
			return ErrEmailTaken
		}
	}
	r.doctors[d.ID] = *d
	return nil
}

func (r *MemoryRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) UpdateDoctor(ctx context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	r.doctors[d.ID] = *d
	return nil
}

func (r *MemoryRepository) CreatePatient(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.patients {
		if existing.Email == p.Email {
			return ErrEmailTaken
		}
	}
	r.patients[p.ID] = *p
	return nil
}

func (r *MemoryRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) UpdatePatient(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	r.patients[p.ID] = *p
	return nil
}
