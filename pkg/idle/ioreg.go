package idle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	errNoProbes          = errors.New("no idle probes configured")
	errHIDIdleTimeAbsent = errors.New("HIDIdleTime not found in ioreg output")
)

// hidIdleTimePattern matches lines like: "HIDIdleTime" = 123456789
var hidIdleTimePattern = regexp.MustCompile(`"HIDIdleTime"\s*=\s*"?(\d+)`)

// IORegProbe reads the HID idle time that macOS exposes through ioreg.
type IORegProbe struct {
	cmdExecutor func(name string, args ...string) ([]byte, error)
}

// NewIORegProbe creates a new ioreg idle probe.
func NewIORegProbe() *IORegProbe {
	return &IORegProbe{cmdExecutor: defaultCmdExecutor}
}

// IdleTime returns the time since the last HID event, or 0 if ioreg fails.
func (p *IORegProbe) IdleTime() time.Duration {
	return soft("ioreg", p)
}

func (p *IORegProbe) measure() (time.Duration, error) {
	output, err := p.cmdExecutor("ioreg", "-c", "IOHIDSystem")
	if err != nil {
		return 0, fmt.Errorf("failed to execute ioreg: %w", err)
	}

	nanos, err := parseHIDIdleTime(output)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HIDIdleTime: %w", err)
	}

	return time.Duration(nanos), nil
}

// parseHIDIdleTime returns the smallest HIDIdleTime in the output. Machines
// with several HID systems report one value each; the most recent input wins.
func parseHIDIdleTime(output []byte) (int64, error) {
	matches := hidIdleTimePattern.FindAllSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, errHIDIdleTimeAbsent
	}

	minNanos := int64(-1)
	for _, m := range matches {
		value, err := strconv.ParseInt(string(m[1]), 10, 64)
		if err != nil {
			continue
		}
		if minNanos < 0 || value < minNanos {
			minNanos = value
		}
	}

	if minNanos < 0 {
		return 0, fmt.Errorf("no parsable HIDIdleTime value among %d matches", len(matches))
	}
	return minNanos, nil
}
