// Package clock provides the wall clock used outside of tests.
package clock

import (
	"time"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// System is a Clock backed by the time package.
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on its own goroutine after d.
func (System) AfterFunc(d time.Duration, f func()) interfaces.Timer {
	return time.AfterFunc(d, f)
}

var _ interfaces.Clock = System{}
