//go:build !linux && !darwin
// +build !linux,!darwin

package idle

import (
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// newPlatformProbe creates a fallback probe for unsupported platforms.
func newPlatformProbe() interfaces.IdleProbe {
	return ZeroProbe{}
}
