package idle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// XprintidleProbe asks the X server for the user idle time via xprintidle.
type XprintidleProbe struct {
	cmdExecutor func(name string, args ...string) ([]byte, error)
}

// NewXprintidleProbe creates a new xprintidle probe.
func NewXprintidleProbe() *XprintidleProbe {
	return &XprintidleProbe{cmdExecutor: defaultCmdExecutor}
}

// IdleTime returns the X11 idle time, or 0 if xprintidle fails.
func (p *XprintidleProbe) IdleTime() time.Duration {
	return soft("xprintidle", p)
}

func (p *XprintidleProbe) measure() (time.Duration, error) {
	output, err := p.cmdExecutor("xprintidle")
	if err != nil {
		return 0, fmt.Errorf("failed to execute xprintidle: %w", err)
	}

	// xprintidle prints milliseconds
	value := strings.TrimSpace(string(output))
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse xprintidle output %q: %w", value, err)
	}
	if millis < 0 {
		return 0, fmt.Errorf("negative idle time %d", millis)
	}

	return time.Duration(millis) * time.Millisecond, nil
}
