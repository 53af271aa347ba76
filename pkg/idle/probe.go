// Package idle provides probes that report how long the user has been away
// from the keyboard and mouse.
package idle

import (
	"os/exec"
	"time"

	"github.com/op/go-logging"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

var log = logging.MustGetLogger("activity-monitor")

// measurer is implemented by probes that can fail. IdleTime wraps it and
// turns failures into a zero reading.
type measurer interface {
	measure() (time.Duration, error)
}

// NewProbe creates a platform-appropriate idle probe.
// It returns:
// - an ioreg-based probe on macOS
// - an xprintidle probe with tmux fallback on Linux
// - ZeroProbe on other platforms.
func NewProbe() interfaces.IdleProbe {
	return newPlatformProbe()
}

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

// soft runs m and reports 0 when the measurement fails.
func soft(name string, m measurer) time.Duration {
	d, err := m.measure()
	if err != nil {
		log.Debugf("%s idle probe unavailable: %v", name, err)
		return 0
	}
	if d < 0 {
		return 0
	}
	return d
}

// ZeroProbe is used where no idle-time mechanism exists. It always reports
// the user as fully idle.
type ZeroProbe struct{}

// IdleTime always returns 0.
func (ZeroProbe) IdleTime() time.Duration {
	return 0
}

// ChainProbe asks each probe in turn and returns the first successful
// reading, or 0 when all of them fail.
type ChainProbe struct {
	name   string
	probes []measurer
}

func newChainProbe(name string, probes ...measurer) *ChainProbe {
	return &ChainProbe{name: name, probes: probes}
}

// IdleTime implements interfaces.IdleProbe.
func (c *ChainProbe) IdleTime() time.Duration {
	return soft(c.name, c)
}

func (c *ChainProbe) measure() (time.Duration, error) {
	var lastErr error
	for _, p := range c.probes {
		d, err := p.measure()
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errNoProbes
	}
	return 0, lastErr
}

var (
	_ interfaces.IdleProbe = ZeroProbe{}
	_ interfaces.IdleProbe = (*ChainProbe)(nil)
)
