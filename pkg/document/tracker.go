// Package document tracks change activity on the documents a host
// application has open.
package document

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

var log = logging.MustGetLogger("activity-monitor")

// Tracker records when documents last changed and buffers their change
// notifications until the next Drain.
//
// Registry and document handlers may run on any goroutine; the timestamp and
// the buffer are guarded by one mutex so an append and a drain never
// interleave.
type Tracker struct {
	registry interfaces.DocumentRegistry
	clock    interfaces.Clock

	mu         sync.Mutex
	observing  bool
	lastChange time.Time
	buffer     []types.ChangeNotification
	lifecycle  interfaces.Subscription
	tracked    map[string]interfaces.Subscription
}

// NewTracker creates a tracker for the documents of registry.
func NewTracker(registry interfaces.DocumentRegistry, clock interfaces.Clock) *Tracker {
	return &Tracker{
		registry: registry,
		clock:    clock,
		tracked:  make(map[string]interfaces.Subscription),
	}
}

// IdleTime returns the time since the last observed change, or 0 when no
// change timestamp is set.
func (t *Tracker) IdleTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastChange.IsZero() {
		return 0
	}
	return t.clock.Now().Sub(t.lastChange)
}

// Drain returns the buffered notifications in arrival order and empties the
// buffer.
func (t *Tracker) Drain() []types.ChangeNotification {
	t.mu.Lock()
	defer t.mu.Unlock()

	drained := t.buffer
	t.buffer = nil
	if drained == nil {
		return []types.ChangeNotification{}
	}
	return drained
}

// StartObserving resets the change timestamp to now, subscribes to registry
// lifecycle events and subscribes to every document that is already open.
func (t *Tracker) StartObserving() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.observing {
		return
	}
	t.observing = true
	t.lastChange = t.clock.Now()

	if t.registry == nil {
		return
	}

	t.lifecycle = t.registry.OnLifecycle(t.handleLifecycle)

	// Lifecycle events only cover future opens.
	for _, doc := range t.registry.Documents() {
		t.trackLocked(doc)
	}

	log.Debugf("observing %d open documents", len(t.tracked))
}

// StopObserving clears the change timestamp and removes every subscription
// this tracker registered. Buffered notifications stay until drained.
func (t *Tracker) StopObserving() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.observing {
		return
	}
	t.observing = false
	t.lastChange = time.Time{}

	if t.lifecycle != nil {
		t.lifecycle.Unsubscribe()
		t.lifecycle = nil
	}
	for id, sub := range t.tracked {
		sub.Unsubscribe()
		delete(t.tracked, id)
	}
}

// Observing reports whether StartObserving is in effect.
func (t *Tracker) Observing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observing
}

// TrackedCount returns the number of documents with a change subscription.
func (t *Tracker) TrackedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tracked)
}

func (t *Tracker) handleLifecycle(event interfaces.LifecycleEvent) {
	if event.Document == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.observing {
		return
	}

	switch event.Kind {
	case interfaces.DocumentOpened:
		t.trackLocked(event.Document)
	case interfaces.DocumentWillClose:
		t.untrackLocked(event.Document)
	}
}

func (t *Tracker) trackLocked(doc interfaces.Document) {
	id := doc.ID()
	if _, ok := t.tracked[id]; ok {
		return
	}
	t.tracked[id] = doc.OnChange(t.handleChange)
}

func (t *Tracker) untrackLocked(doc interfaces.Document) {
	id := doc.ID()
	if sub, ok := t.tracked[id]; ok {
		sub.Unsubscribe()
		delete(t.tracked, id)
	}
}

func (t *Tracker) handleChange(n types.ChangeNotification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.observing {
		return
	}

	now := t.clock.Now()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Time.IsZero() {
		n.Time = now
	}

	t.lastChange = now
	t.buffer = append(t.buffer, n)
}
