package redisclient

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

// localBookingLocker is the in-process equivalent of the Redis locker, used
// by demo mode and tests. Unlike the Redis locker it blocks instead of
// failing when the key is contended.
type localBookingLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalBookingLocker() Locker {
	return &localBookingLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localBookingLocker) WithBookingLock(ctx context.Context, doctorID uuid.UUID, date calendar.Date, fn func(ctx context.Context) error) error {
	key := doctorID.String() + ":" + date.String()

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(ctx)
}
