//go:build darwin
// +build darwin

package idle

import (
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// newPlatformProbe creates a Darwin-specific idle probe.
func newPlatformProbe() interfaces.IdleProbe {
	return NewIORegProbe()
}
