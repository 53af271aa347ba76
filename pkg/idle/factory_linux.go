//go:build linux
// +build linux

package idle

import (
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// newPlatformProbe creates a Linux-specific idle probe. X11 idle time is
// preferred; inside tmux the session's client activity is used when no X
// server answers.
func newPlatformProbe() interfaces.IdleProbe {
	return newChainProbe("linux", NewXprintidleProbe(), NewTmuxProbe(""))
}
