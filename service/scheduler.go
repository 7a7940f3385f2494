package service

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs callbacks after a delay. The returned function cancels the
// callback if it has not started; calling it more than once is safe.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler fires callbacks only when Advance moves its clock past
// their deadline.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTask
}

type manualTask struct {
	at  time.Duration
	seq int
	fn  func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) Schedule(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	task := &manualTask{at: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, task)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, p := range m.pending {
			if p == task {
				m.pending = append(m.pending[:i], m.pending[i+1:]...)
				return
			}
		}
	}
}

// Advance moves the clock forward by d, running due callbacks in deadline
// order. Callbacks scheduled while advancing run too if they fall due.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		task := m.nextDue(target)
		if task == nil {
			break
		}
		m.now = task.at
		m.mu.Unlock()
		task.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of callbacks not yet run or cancelled
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *ManualScheduler) nextDue(target time.Duration) *manualTask {
	if len(m.pending) == 0 {
		return nil
	}
	sort.Slice(m.pending, func(i, j int) bool {
		if m.pending[i].at == m.pending[j].at {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at < m.pending[j].at
	})
	if m.pending[0].at > target {
		return nil
	}
	task := m.pending[0]
	m.pending = m.pending[1:]
	return task
}
