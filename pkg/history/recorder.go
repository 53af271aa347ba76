// Package history keeps a bounded window of recent poll samples.
package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/activity-monitor/pkg/events"
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// DefaultLength is the number of samples kept when no length is configured.
const DefaultLength = 100

// ErrInvalidLength is returned for a non-positive history length.
var ErrInvalidLength = errors.New("history length must be positive")

// Recorder stores the most recent samples published on the activity topic.
type Recorder struct {
	mu      sync.RWMutex
	length  int
	samples []types.PollSample
	sub     interfaces.Subscription
}

// NewRecorder creates a recorder keeping length samples and subscribes it to
// bus. A non-positive length falls back to DefaultLength.
func NewRecorder(bus interfaces.EventBus, length int) *Recorder {
	if length <= 0 {
		length = DefaultLength
	}
	r := &Recorder{length: length}
	r.sub = events.SubscribeActivity(bus, r.Record)
	return r
}

// Record appends sample, dropping the oldest once the window is full.
func (r *Recorder) Record(sample types.PollSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, sample)
	r.trimLocked()
}

// SetLength resizes the window, keeping the newest samples.
func (r *Recorder) SetLength(length int) error {
	if length <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.length = length
	r.trimLocked()
	return nil
}

// Length returns the window size.
func (r *Recorder) Length() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.length
}

// Clear drops every recorded sample.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
}

// Samples returns a copy of the window, oldest first.
func (r *Recorder) Samples() []types.PollSample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]types.PollSample, len(r.samples))
	copy(result, r.samples)
	return result
}

// NotificationLines lists every buffered change notification in the window,
// newest first, as "<name> <document> <data>".
func (r *Recorder) NotificationLines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lines []string
	for i := len(r.samples) - 1; i >= 0; i-- {
		notifications := r.samples[i].Notifications
		for j := len(notifications) - 1; j >= 0; j-- {
			n := notifications[j]
			lines = append(lines, fmt.Sprintf("%s %s %v", n.Name, n.DocumentID, n.Data))
		}
	}
	return lines
}

// ActivityRatio returns the fraction of samples in the window that observed
// user activity, or 0 for an empty window.
func (r *Recorder) ActivityRatio() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.samples) == 0 {
		return 0
	}
	active := 0
	for _, s := range r.samples {
		if s.UserActivityObserved {
			active++
		}
	}
	return float64(active) / float64(len(r.samples))
}

// Close unsubscribes the recorder from the bus.
func (r *Recorder) Close() {
	r.sub.Unsubscribe()
}

func (r *Recorder) trimLocked() {
	if excess := len(r.samples) - r.length; excess > 0 {
		r.samples = append([]types.PollSample(nil), r.samples[excess:]...)
	}
}
