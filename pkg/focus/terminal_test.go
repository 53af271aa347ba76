package focus

import (
	"strings"
	"testing"
)

type recordingHandler struct {
	events []string
}

func (r *recordingHandler) HandleFocusIn()  { r.events = append(r.events, "in") }
func (r *recordingHandler) HandleFocusOut() { r.events = append(r.events, "out") }

func TestTerminalReaderFeed(t *testing.T) {
	tests := []struct {
		name           string
		chunks         []string
		wantEvents     []string
		wantInterrupts int
	}{
		{
			name:       "single focus in",
			chunks:     []string{"\033[I"},
			wantEvents: []string{"in"},
		},
		{
			name:       "in and out with typing",
			chunks:     []string{"abc\033[Ixyz\033[O"},
			wantEvents: []string{"in", "out"},
		},
		{
			name:       "sequence split across reads",
			chunks:     []string{"\033", "[", "O"},
			wantEvents: []string{"out"},
		},
		{
			name:       "unrelated escape sequence",
			chunks:     []string{"\033[A\033[B"},
			wantEvents: nil,
		},
		{
			name:           "ctrl-c and ctrl-d",
			chunks:         []string{"\x03", "q\x04"},
			wantInterrupts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &recordingHandler{}
			interrupts := 0
			reader := NewTerminalReader(handler, func() { interrupts++ })

			for _, chunk := range tt.chunks {
				reader.Feed([]byte(chunk))
			}

			if strings.Join(handler.events, ",") != strings.Join(tt.wantEvents, ",") {
				t.Errorf("events = %v, want %v", handler.events, tt.wantEvents)
			}
			if interrupts != tt.wantInterrupts {
				t.Errorf("interrupts = %d, want %d", interrupts, tt.wantInterrupts)
			}
		})
	}
}

func TestTerminalReaderDrivesTracker(t *testing.T) {
	tracker := NewTracker(true)
	reader := NewTerminalReader(tracker, nil)

	if err := reader.Run(strings.NewReader("\033[O")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tracker.IsActive() {
		t.Error("expected tracker to be unfocused after focus out report")
	}

	if err := reader.Run(strings.NewReader("\x03\033[I")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !tracker.IsActive() {
		t.Error("expected tracker to be focused after focus in report")
	}
}
