package idle

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TmuxProbe measures idle time from the client activity of a tmux session.
type TmuxProbe struct {
	sessionName string
	cmdExecutor func(name string, args ...string) ([]byte, error)
	now         func() time.Time
}

// NewTmuxProbe creates a new tmux idle probe.
// If sessionName is empty, it will attempt to detect the current session.
func NewTmuxProbe(sessionName string) *TmuxProbe {
	return &TmuxProbe{
		sessionName: sessionName,
		cmdExecutor: defaultCmdExecutor,
		now:         time.Now,
	}
}

// IdleTime returns the idle time of the most recently active client, or 0.
func (p *TmuxProbe) IdleTime() time.Duration {
	return soft("tmux", p)
}

func (p *TmuxProbe) measure() (time.Duration, error) {
	if !p.isInTmux() {
		return 0, fmt.Errorf("not in a tmux session")
	}

	sessionName := p.sessionName
	if sessionName == "" {
		name, err := p.getCurrentSessionName()
		if err != nil {
			return 0, fmt.Errorf("failed to get current session name: %w", err)
		}
		sessionName = name
	}

	idleTime, err := p.getSessionIdleTime(sessionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get session idle time: %w", err)
	}

	return idleTime, nil
}

// isInTmux checks if we're running inside a tmux session.
func (p *TmuxProbe) isInTmux() bool {
	return os.Getenv("TMUX") != ""
}

// getCurrentSessionName gets the name of the current tmux session.
func (p *TmuxProbe) getCurrentSessionName() (string, error) {
	output, err := p.cmdExecutor("tmux", "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}

// getSessionIdleTime gets the minimum idle time across all clients in a session.
func (p *TmuxProbe) getSessionIdleTime(sessionName string) (time.Duration, error) {
	output, err := p.cmdExecutor("tmux", "list-clients", "-t", sessionName, "-F", "#{client_activity}")
	if err != nil {
		return 0, err
	}

	var mostRecentActivity time.Time
	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		// client_activity is seconds since epoch
		activitySecs, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			continue
		}

		activityTime := time.Unix(activitySecs, 0)
		if mostRecentActivity.IsZero() || activityTime.After(mostRecentActivity) {
			mostRecentActivity = activityTime
		}
	}

	if mostRecentActivity.IsZero() {
		return 0, fmt.Errorf("no client activity for session %s", sessionName)
	}

	idleTime := p.now().Sub(mostRecentActivity)
	if idleTime < 0 {
		// Clock skew between tmux server and us
		idleTime = 0
	}

	return idleTime, nil
}
