package idle

import (
	"fmt"
	"testing"
	"time"
)

func TestNewIORegProbe(t *testing.T) {
	probe := NewIORegProbe()

	if probe == nil {
		t.Fatal("NewIORegProbe returned nil")
	}

	if probe.cmdExecutor == nil {
		t.Error("cmdExecutor should not be nil")
	}
}

func TestParseHIDIdleTime(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedNanos int64
		expectError   bool
	}{
		{
			name: "Valid HIDIdleTime",
			input: `    | |   |   +-o IOHIDSystem  <class IOHIDSystem, id 0x1000002d0, registered, matched, active, busy 0 (0 ms), retain 22>
    | |   |     {
    | |   |       "HIDIdleTime" = 3456789012
    | |   |       "IOClass" = "IOHIDSystem"
    | |   |     }`,
			expectedNanos: 3456789012,
		},
		{
			name: "HIDIdleTime with quotes",
			input: `    | |   |       "HIDIdleTime" = "1234567890"
    | |   |       "IOClass" = "IOHIDSystem"`,
			expectedNanos: 1234567890,
		},
		{
			name:          "Zero HIDIdleTime",
			input:         `    | |   |       "HIDIdleTime" = 0`,
			expectedNanos: 0,
		},
		{
			name: "Minimum across several HID systems",
			input: `      "HIDIdleTime" = 9000000000
      "IOClass" = "IOHIDSystem"
      "HIDIdleTime" = 250000000
      "HIDIdleTime" = 7000000000`,
			expectedNanos: 250000000,
		},
		{
			name:        "Missing HIDIdleTime",
			input:       `"IOClass" = "IOHIDSystem"`,
			expectError: true,
		},
		{
			name:        "Invalid HIDIdleTime format",
			input:       `"HIDIdleTime" = "not-a-number"`,
			expectError: true,
		},
		{
			name:        "HIDIdleTime without equals",
			input:       `"HIDIdleTime" 3456789012`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseHIDIdleTime([]byte(tt.input))

			if (err != nil) != tt.expectError {
				t.Errorf("parseHIDIdleTime() error = %v, expectError %v", err, tt.expectError)
			}

			if result != tt.expectedNanos {
				t.Errorf("parseHIDIdleTime() = %v, want %v", result, tt.expectedNanos)
			}
		})
	}
}

func TestIORegProbe_IdleTime(t *testing.T) {
	tests := []struct {
		name             string
		mockOutput       []byte
		mockError        error
		expectedIdleTime time.Duration
	}{
		{
			name:             "Valid idle time - 5 seconds",
			mockOutput:       []byte(`"HIDIdleTime" = 5000000000`),
			expectedIdleTime: 5 * time.Second,
		},
		{
			name:             "Valid idle time - 2 minutes",
			mockOutput:       []byte(`"HIDIdleTime" = 120000000000`),
			expectedIdleTime: 2 * time.Minute,
		},
		{
			name:             "ioreg command error reports zero",
			mockError:        fmt.Errorf("ioreg not found"),
			expectedIdleTime: 0,
		},
		{
			name:             "Invalid ioreg output reports zero",
			mockOutput:       []byte("invalid output"),
			expectedIdleTime: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &IORegProbe{
				cmdExecutor: func(name string, args ...string) ([]byte, error) {
					if name != "ioreg" {
						t.Errorf("unexpected command: %s", name)
					}
					return tt.mockOutput, tt.mockError
				},
			}

			if got := probe.IdleTime(); got != tt.expectedIdleTime {
				t.Errorf("IdleTime() = %v, want %v", got, tt.expectedIdleTime)
			}
		})
	}
}
