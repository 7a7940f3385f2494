package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerOrder(t *testing.T) {
	s := NewManualScheduler()
	var order []int

	s.Schedule(2*time.Second, func() { order = append(order, 2) })
	s.Schedule(time.Second, func() {
		order = append(order, 1)
		s.Schedule(500*time.Millisecond, func() { order = append(order, 15) })
	})
	s.Schedule(time.Second, func() { order = append(order, 11) })

	s.Advance(999 * time.Millisecond)
	assert.Empty(t, order)

	s.Advance(time.Second)
	assert.Equal(t, []int{1, 11, 15}, order)

	s.Advance(time.Second)
	assert.Equal(t, []int{1, 11, 15, 2}, order)
	assert.Zero(t, s.Pending())
}

func TestManualSchedulerCancel(t *testing.T) {
	s := NewManualScheduler()
	fired := false

	cancel := s.Schedule(time.Second, func() { fired = true })
	assert.Equal(t, 1, s.Pending())
	cancel()
	cancel()

	s.Advance(time.Minute)
	assert.False(t, fired)
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler()
	var fired atomic.Bool

	cancel := s.Schedule(50*time.Millisecond, func() { fired.Store(true) })
	cancel()
	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())

	done := make(chan struct{})
	s.Schedule(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
