package focus

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("activity-monitor")

// WindowQuery compares the frontmost application (macOS) or active window
// title (X11) against an application name.
type WindowQuery struct {
	appName     string
	goos        string
	cmdExecutor func(name string, args ...string) ([]byte, error)
}

// NewWindowQuery creates a query matching appName case-insensitively.
func NewWindowQuery(appName string) *WindowQuery {
	return &WindowQuery{
		appName:     appName,
		goos:        runtime.GOOS,
		cmdExecutor: defaultCmdExecutor,
	}
}

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

// IsActive reports whether the frontmost window belongs to the application.
// Any failure to determine the frontmost window counts as unfocused.
func (w *WindowQuery) IsActive() bool {
	if w.appName == "" {
		return false
	}

	front, err := w.frontmost()
	if err != nil {
		log.Debugf("focus query failed: %v", err)
		return false
	}

	return strings.Contains(strings.ToLower(front), strings.ToLower(w.appName))
}

// frontmost returns the name of the frontmost application or window.
func (w *WindowQuery) frontmost() (string, error) {
	var (
		output []byte
		err    error
	)

	switch w.goos {
	case "darwin":
		output, err = w.cmdExecutor("osascript", "-e",
			`tell application "System Events" to get name of first application process whose frontmost is true`)
	case "linux", "freebsd", "openbsd", "netbsd":
		output, err = w.cmdExecutor("xdotool", "getactivewindow", "getwindowname")
	default:
		return "", fmt.Errorf("window focus is not supported on %s", w.goos)
	}
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(string(output))
	if name == "" {
		return "", fmt.Errorf("empty frontmost window name")
	}
	return name, nil
}
