package status

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Indicator draws a one-line summary of the latest poll on the last
// terminal row.
type Indicator struct {
	mu      sync.Mutex
	enabled bool
	writer  io.Writer

	polling  bool
	hasPoll  bool
	focused  bool
	active   bool
	changes  int
	lastPoll time.Time

	refreshChan chan struct{}
}

// NewIndicator creates a new status indicator
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	return &Indicator{
		writer:      writer,
		enabled:     enabled,
		refreshChan: make(chan struct{}, 1),
	}
}

// Update records sample as the latest poll and redraws.
func (i *Indicator) Update(sample types.PollSample) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.hasPoll = true
	i.focused = sample.ApplicationIsActive
	i.active = sample.UserActivityObserved || sample.DocumentActivityObserved
	i.changes = len(sample.Notifications)
	i.lastPoll = sample.Time

	// Best effort - don't fail if we can't update the display
	_ = i.draw()
}

// SetPolling records whether the poller is running and redraws.
func (i *Indicator) SetPolling(polling bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.polling = polling
	_ = i.draw()
}

// draw renders the status indicator
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	statusText := i.getStatusText()
	if statusText == "" {
		return nil
	}

	// \0337 - DECSC: Save cursor position and attributes
	// \033[r - Reset scroll region to full screen
	// \033[999;1H - Move to line 999, column 1 (clamped to the last line)
	// \033[2K - Clear entire line
	// \0338 - DECRC: Restore cursor position and attributes
	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", statusText)

	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// getStatusText returns the appropriate status text with color
func (i *Indicator) getStatusText() string {
	if !i.polling {
		return "\033[90m⏸ paused\033[0m"
	}
	if !i.hasPoll {
		return "\033[90m… waiting for first poll\033[0m"
	}

	var parts []string

	if i.focused {
		parts = append(parts, "\033[36m◉\033[0m") // Cyan filled circle for focused
	} else {
		parts = append(parts, "\033[90m○\033[0m") // Gray empty circle for unfocused
	}

	if i.active {
		parts = append(parts, "\033[32m▶\033[0m") // Green play for active
	} else {
		parts = append(parts, "\033[33mⓏ\033[0m") // Yellow Z for idle
	}

	if i.changes > 0 {
		parts = append(parts, fmt.Sprintf("\033[35m✎ %d\033[0m", i.changes))
	}

	parts = append(parts, fmt.Sprintf("\033[90m%s\033[0m", i.lastPoll.Format("15:04:05")))

	return strings.Join(parts, " ")
}

// Clear removes the status indicator
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled || i.writer == nil {
		return nil
	}

	// Clear the status line using DEC save/restore
	sequence := "\0337\033[999;1H\033[2K\0338"
	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// Refresh requests a redraw from the auto refresh loop.
func (i *Indicator) Refresh() {
	if !i.enabled {
		return
	}
	select {
	case i.refreshChan <- struct{}{}:
	default:
		// Channel is full, refresh already pending
	}
}

// StartAutoRefresh redraws every interval, and on Refresh, until stopChan
// is closed. Output from other writers can scroll the line away.
func (i *Indicator) StartAutoRefresh(interval time.Duration, stopChan <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				i.mu.Lock()
				_ = i.draw() // Best effort
				i.mu.Unlock()
			case <-i.refreshChan:
				i.mu.Lock()
				_ = i.draw()
				i.mu.Unlock()
			case <-stopChan:
				_ = i.Clear() // Best effort
				return
			}
		}
	}()
}
