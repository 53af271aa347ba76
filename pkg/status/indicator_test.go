package status

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/types"
)

// syncBuffer is a bytes.Buffer safe for the auto refresh goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewIndicator(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)

	if indicator.polling {
		t.Errorf("expected indicator to start paused")
	}

	if indicator.writer != buf {
		t.Errorf("expected writer to be set")
	}

	if !indicator.enabled {
		t.Errorf("expected indicator to be enabled")
	}
}

func TestIndicatorUpdate(t *testing.T) {
	pollTime := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name        string
		sample      types.PollSample
		contains    []string
		notContains []string
	}{
		{
			name:        "focused and active",
			sample:      types.PollSample{Time: pollTime, ApplicationIsActive: true, UserActivityObserved: true},
			contains:    []string{"◉", "▶", "14:05:09"},
			notContains: []string{"○", "Ⓩ", "✎"},
		},
		{
			name:        "unfocused and idle",
			sample:      types.PollSample{Time: pollTime},
			contains:    []string{"○", "Ⓩ"},
			notContains: []string{"◉", "▶"},
		},
		{
			name: "document activity counts as active",
			sample: types.PollSample{
				Time:                     pollTime,
				DocumentActivityObserved: true,
				Notifications:            make([]types.ChangeNotification, 3),
			},
			contains: []string{"▶", "✎ 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := NewIndicator(buf, true)
			indicator.SetPolling(true)
			buf.Reset()

			indicator.Update(tt.sample)

			output := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(output, s) {
					t.Errorf("expected output to contain %q, got %q", s, output)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(output, s) {
					t.Errorf("expected output not to contain %q, got %q", s, output)
				}
			}
		})
	}
}

func TestIndicatorPollingState(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)

	indicator.SetPolling(false)
	if !strings.Contains(buf.String(), "paused") {
		t.Errorf("expected paused output, got %q", buf.String())
	}

	buf.Reset()
	indicator.SetPolling(true)
	if !strings.Contains(buf.String(), "waiting for first poll") {
		t.Errorf("expected waiting output, got %q", buf.String())
	}
}

func TestIndicatorDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, false)

	indicator.SetPolling(true)
	indicator.Update(types.PollSample{ApplicationIsActive: true})
	if err := indicator.Clear(); err != nil {
		t.Errorf("Clear() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no output for disabled indicator, got %q", buf.String())
	}
}

func TestIndicatorEscapeSequences(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)
	indicator.SetPolling(true)

	output := buf.String()
	if !strings.HasPrefix(output, "\0337\033[r\033[999;1H\033[2K") {
		t.Errorf("expected save/move/clear prefix, got %q", output)
	}
	if !strings.HasSuffix(output, "\0338") {
		t.Errorf("expected restore suffix, got %q", output)
	}

	buf.Reset()
	if err := indicator.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, want := buf.String(), "\0337\033[999;1H\033[2K\0338"; got != want {
		t.Errorf("Clear() wrote %q, want %q", got, want)
	}
}

func TestIndicatorAutoRefresh(t *testing.T) {
	buf := &syncBuffer{}
	indicator := NewIndicator(buf, true)
	indicator.SetPolling(true)

	stop := make(chan struct{})
	indicator.StartAutoRefresh(time.Hour, stop)

	before := strings.Count(buf.String(), "\0338")
	indicator.Refresh()

	deadline := time.Now().Add(2 * time.Second)
	for strings.Count(buf.String(), "\0338") == before {
		if time.Now().After(deadline) {
			t.Fatal("expected Refresh to redraw")
		}
		time.Sleep(10 * time.Millisecond)
	}

	close(stop)
	deadline = time.Now().Add(2 * time.Second)
	for !strings.HasSuffix(buf.String(), "\0337\033[999;1H\033[2K\0338") {
		if time.Now().After(deadline) {
			t.Fatal("expected stop to clear the status line")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
