package focus

import (
	"fmt"
	"testing"
)

func TestStatic(t *testing.T) {
	if !Static(true).IsActive() {
		t.Error("Static(true).IsActive() = false")
	}
	if Static(false).IsActive() {
		t.Error("Static(false).IsActive() = true")
	}
}

func TestTracker(t *testing.T) {
	tracker := NewTracker(false)
	if tracker.IsActive() {
		t.Error("expected initial state to be unfocused")
	}

	tracker.HandleFocusIn()
	if !tracker.IsActive() {
		t.Error("expected focused after HandleFocusIn")
	}

	tracker.HandleFocusOut()
	if tracker.IsActive() {
		t.Error("expected unfocused after HandleFocusOut")
	}
}

func TestWindowQuery_IsActive(t *testing.T) {
	tests := []struct {
		name        string
		appName     string
		goos        string
		output      string
		err         error
		wantCommand string
		expected    bool
	}{
		{
			name:        "darwin frontmost matches",
			appName:     "RoboFont",
			goos:        "darwin",
			output:      "RoboFont\n",
			wantCommand: "osascript",
			expected:    true,
		},
		{
			name:        "darwin other app",
			appName:     "RoboFont",
			goos:        "darwin",
			output:      "Safari\n",
			wantCommand: "osascript",
			expected:    false,
		},
		{
			name:        "linux window title contains app name",
			appName:     "inkscape",
			goos:        "linux",
			output:      "drawing.svg - Inkscape\n",
			wantCommand: "xdotool",
			expected:    true,
		},
		{
			name:        "linux command fails",
			appName:     "inkscape",
			goos:        "linux",
			err:         fmt.Errorf("Can't open display"),
			wantCommand: "xdotool",
			expected:    false,
		},
		{
			name:        "empty output",
			appName:     "inkscape",
			goos:        "linux",
			output:      "  \n",
			wantCommand: "xdotool",
			expected:    false,
		},
		{
			name:     "unsupported platform",
			appName:  "notepad",
			goos:     "windows",
			expected: false,
		},
		{
			name:     "no app name configured",
			appName:  "",
			goos:     "linux",
			output:   "anything",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := NewWindowQuery(tt.appName)
			query.goos = tt.goos
			query.cmdExecutor = func(name string, args ...string) ([]byte, error) {
				if tt.wantCommand == "" {
					t.Errorf("unexpected command: %s", name)
				} else if name != tt.wantCommand {
					t.Errorf("command = %s, want %s", name, tt.wantCommand)
				}
				return []byte(tt.output), tt.err
			}

			if got := query.IsActive(); got != tt.expected {
				t.Errorf("IsActive() = %v, want %v", got, tt.expected)
			}
		})
	}
}
