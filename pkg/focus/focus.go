// Package focus answers whether the host application currently has user
// input focus.
package focus

import (
	"sync"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// Static reports a fixed focus state.
type Static bool

// IsActive returns the fixed state.
func (s Static) IsActive() bool {
	return bool(s)
}

// Tracker holds a focus state pushed by the host through focus-in and
// focus-out events.
type Tracker struct {
	mu      sync.RWMutex
	focused bool
}

// NewTracker creates a tracker with the given initial state.
func NewTracker(focused bool) *Tracker {
	return &Tracker{focused: focused}
}

// IsActive reports the last pushed state.
func (t *Tracker) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.focused
}

// HandleFocusIn marks the application as focused.
func (t *Tracker) HandleFocusIn() {
	t.mu.Lock()
	t.focused = true
	t.mu.Unlock()
}

// HandleFocusOut marks the application as unfocused.
func (t *Tracker) HandleFocusOut() {
	t.mu.Lock()
	t.focused = false
	t.mu.Unlock()
}

var (
	_ interfaces.FocusQuery = Static(true)
	_ interfaces.FocusQuery = (*Tracker)(nil)
)
