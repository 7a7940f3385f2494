package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"he-demo/encryption"
	"he-demo/logging"
)

var ErrSessionNotFound = errors.New("session not found")

// DemoSession is one browser's demo and its idle deadline
type DemoSession struct {
	Demo     *Demo
	lastSeen time.Time
}

// SessionStore hosts one Demo per session id
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*DemoSession
	ttl       time.Duration
	timings   Timings
	scheduler Scheduler
	crypto    *encryption.CryptoService
	metrics   *MetricsCollector
	now       func() time.Time
}

type SessionStoreOptions struct {
	TTL       time.Duration
	Timings   Timings
	Scheduler Scheduler
	Crypto    *encryption.CryptoService
	Metrics   *MetricsCollector
}

func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler()
	}
	if opts.Crypto == nil {
		opts.Crypto = encryption.NewCryptoService(encryption.NewMockCKKS())
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetricsCollector(nil)
	}
	return &SessionStore{
		sessions:  make(map[string]*DemoSession),
		ttl:       opts.TTL,
		timings:   opts.Timings,
		scheduler: opts.Scheduler,
		crypto:    opts.Crypto,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
}

// Create starts a fresh demo under a new id
func (s *SessionStore) Create() (*Demo, error) {
	id := uuid.New().String()
	demo, err := NewDemo(DemoOptions{
		ID:        id,
		Timings:   s.timings,
		Scheduler: s.scheduler,
		Crypto:    s.crypto,
		Metrics:   s.metrics,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &DemoSession{Demo: demo, lastSeen: s.now()}
	logging.Debugf("session %s created", id)
	return demo, nil
}

// Get returns the demo for id and marks the session as active
func (s *SessionStore) Get(id string) (*Demo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		s.remove(id, sess)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess.Demo, nil
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		s.remove(id, sess)
	}
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			s.remove(id, sess)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx ends, then closes all demos
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logging.Infof("expired %d idle sessions", n)
			}
		}
	}
}

func (s *SessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		s.remove(id, sess)
	}
}

func (s *SessionStore) remove(id string, sess *DemoSession) {
	sess.Demo.Close()
	delete(s.sessions, id)
	logging.Debugf("session %s closed", id)
}
