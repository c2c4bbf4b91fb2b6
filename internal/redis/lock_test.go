package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/appointment-engine/internal/calendar"
)

func newTestLocker(t *testing.T) (Locker, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewBookingLocker(client, 5*time.Second), client
}

func TestBookingLockSerializesSameKey(t *testing.T) {
	locker, _ := newTestLocker(t)

	doctorID := uuid.New()
	date := calendar.NewDate(2024, time.January, 2)

	err := locker.WithBookingLock(context.Background(), doctorID, date, func(ctx context.Context) error {
		// Second acquisition of the same key must fail while held.
		inner := locker.WithBookingLock(ctx, doctorID, date, func(ctx context.Context) error {
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)

	// Released after the critical section.
	err = locker.WithBookingLock(context.Background(), doctorID, date, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
}

func TestBookingLockIndependentKeys(t *testing.T) {
	locker, _ := newTestLocker(t)

	doctorID := uuid.New()
	date := calendar.NewDate(2024, time.January, 2)

	err := locker.WithBookingLock(context.Background(), doctorID, date, func(ctx context.Context) error {
		// Different doctor, same date: no contention.
		return locker.WithBookingLock(ctx, uuid.New(), date, func(ctx context.Context) error {
			// Same doctor, different date: no contention either.
			return locker.WithBookingLock(ctx, doctorID, date.AddDays(1), func(ctx context.Context) error {
				return nil
			})
		})
	})
	require.NoError(t, err)
}

func TestBookingLockPropagatesCallbackError(t *testing.T) {
	locker, _ := newTestLocker(t)

	sentinel := errors.New("boom")
	err := locker.WithBookingLock(context.Background(), uuid.New(), calendar.Today(), func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestLocalBookingLockerBlocksAndReleases(t *testing.T) {
	locker := NewLocalBookingLocker()

	doctorID := uuid.New()
	date := calendar.NewDate(2024, time.January, 2)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- locker.WithBookingLock(context.Background(), doctorID, date, func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered

	second := make(chan error, 1)
	go func() {
		second <- locker.WithBookingLock(context.Background(), doctorID, date, func(ctx context.Context) error {
			return nil
		})
	}()

	select {
	case err := <-second:
		t.Fatalf("second locker entered while first held the key: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-second)
}
