// Package clock provides an injectable time source so expiration and
// promotion logic can be tested deterministically.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts the passage of time.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once d has elapsed. The returned stop function
	// cancels the callback if it has not fired yet.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// System is the wall-clock implementation.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}

// Mock is a manually advanced clock for tests. Timers registered through
// AfterFunc fire synchronously during Advance.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

type mockTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

// NewMock creates a Mock starting at the given instant.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) AfterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{at: m.now.Add(d), f: f}
	m.timers = append(m.timers, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		was := !t.stopped
		t.stopped = true
		return was
	}
}

// Advance moves the clock forward and fires every due timer in order.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	var due []*mockTimer
	var rest []*mockTimer
	for _, t := range m.timers {
		if !t.stopped && !t.at.After(now) {
			due = append(due, t)
		} else if !t.stopped {
			rest = append(rest, t)
		}
	}
	m.timers = rest
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Set jumps the clock to an absolute instant without firing timers.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}
