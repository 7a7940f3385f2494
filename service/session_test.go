package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"he-demo/models"
)

func TestSessionStoreCreateGet(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{Scheduler: NewManualScheduler()})

	demo, err := store.Create()
	require.NoError(t, err)

	got, err := store.Get(demo.ID())
	require.NoError(t, err)
	assert.Same(t, demo, got)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.Delete(demo.ID())
	_, err = store.Get(demo.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreExpiryClosesDemo(t *testing.T) {
	sched := NewManualScheduler()
	store := NewSessionStore(SessionStoreOptions{TTL: time.Minute, Scheduler: sched})
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	demo, err := store.Create()
	require.NoError(t, err)
	require.NoError(t, demo.Run())
	assert.Equal(t, 1, sched.Pending())

	clock = clock.Add(30 * time.Second)
	assert.Zero(t, store.Sweep())

	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Zero(t, sched.Pending())

	sched.Advance(time.Hour)
	assert.Equal(t, models.StepEncrypting, demo.Step())
	assert.ErrorIs(t, demo.Run(), ErrClosed)

	_, err = store.Get(demo.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreGetExpired(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{TTL: time.Minute, Scheduler: NewManualScheduler()})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	demo, err := store.Create()
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = store.Get(demo.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, store.Len())
}

func TestSessionStoreRunClosesOnCancel(t *testing.T) {
	store := NewSessionStore(SessionStoreOptions{Scheduler: NewManualScheduler()})
	_, err := store.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Zero(t, store.Len())
}
