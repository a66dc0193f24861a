package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process sliding-window limiter: per key it keeps the
// timestamps of recent requests and drops the ones that aged out of the
// window on every check.
type Memory struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time
}

// NewMemory allows max requests per key within window.
func NewMemory(max int, window time.Duration) *Memory {
	return &Memory{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// SetClock overrides the clock; tests only.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	recent := m.hits[key][:0]
	for _, t := range m.hits[key] {
		if now.Sub(t) < m.window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= m.max {
		m.hits[key] = recent
		return false, nil
	}

	m.hits[key] = append(recent, now)
	return true, nil
}
