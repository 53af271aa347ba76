// Package testutil provides thread-safe fakes shared by the package tests.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// MockIdleProbe is a mock implementation of interfaces.IdleProbe for testing
type MockIdleProbe struct {
	mu        sync.Mutex
	idle      time.Duration
	callCount int
}

// NewMockIdleProbe creates a new mock idle probe
func NewMockIdleProbe(idle time.Duration) *MockIdleProbe {
	return &MockIdleProbe{idle: idle}
}

// IdleTime implements the IdleProbe interface
func (m *MockIdleProbe) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	return m.idle
}

// SetIdle sets the idle time returned by IdleTime
func (m *MockIdleProbe) SetIdle(idle time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle = idle
}

// GetCallCount returns how many times IdleTime was called
func (m *MockIdleProbe) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockFocus is a mock implementation of interfaces.FocusQuery for testing
type MockFocus struct {
	mu     sync.Mutex
	active bool
}

// NewMockFocus creates a new mock focus query
func NewMockFocus(active bool) *MockFocus {
	return &MockFocus{active: active}
}

// IsActive implements the FocusQuery interface
func (m *MockFocus) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetActive sets the focus state
func (m *MockFocus) SetActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = active
}

// FakeClock is a manually advanced interfaces.Clock. Timers fire
// synchronously on the goroutine calling Advance.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*FakeTimer

	armed   int
	stopped int
	fired   int
}

// NewFakeClock creates a fake clock set to start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now implements the Clock interface
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements the Clock interface
func (c *FakeClock) AfterFunc(d time.Duration, f func()) interfaces.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &FakeTimer{clock: c, when: c.now.Add(d), fn: f, seq: c.seq, Duration: d}
	c.pending = append(c.pending, t)
	c.armed++
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due
// in deadline order. Timers armed by a firing callback fire too if they fall
// inside the window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.removeLocked(next)
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.fired++
		c.mu.Unlock()

		next.fn()
	}
}

// Set moves the clock to t without firing timers.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Pending returns the timers that are armed and not yet fired or stopped.
func (c *FakeClock) Pending() []*FakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]*FakeTimer, len(c.pending))
	copy(result, c.pending)
	return result
}

// ArmedCount returns how many timers were created
func (c *FakeClock) ArmedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// StoppedCount returns how many pending timers were stopped
func (c *FakeClock) StoppedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// FiredCount returns how many timers fired
func (c *FakeClock) FiredCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

func (c *FakeClock) nextDueLocked(target time.Time) *FakeTimer {
	due := make([]*FakeTimer, 0, len(c.pending))
	for _, t := range c.pending {
		if !t.when.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].when.Equal(due[j].when) {
			return due[i].seq < due[j].seq
		}
		return due[i].when.Before(due[j].when)
	})
	return due[0]
}

func (c *FakeClock) removeLocked(t *FakeTimer) bool {
	for i, p := range c.pending {
		if p == t {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

// FakeTimer is a timer created by FakeClock
type FakeTimer struct {
	clock    *FakeClock
	when     time.Time
	fn       func()
	seq      int
	Duration time.Duration
}

// Stop implements the Timer interface
func (t *FakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.clock.removeLocked(t) {
		t.clock.stopped++
		return true
	}
	return false
}
