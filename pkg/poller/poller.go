// Package poller samples focus, document activity and user idle time on a
// fixed interval and publishes the result as an "activity" event.
package poller

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/op/go-logging"

	"github.com/Veraticus/activity-monitor/pkg/events"
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

var log = logging.MustGetLogger("activity-monitor")

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 2 * time.Second

// ErrInvalidInterval is returned for non-positive or non-finite intervals.
var ErrInvalidInterval = errors.New("poll interval must be a positive, finite duration")

// DocumentSource is the document side of a poll: how long documents have been
// idle and which changes arrived since the last poll.
type DocumentSource interface {
	IdleTime() time.Duration
	Drain() []types.ChangeNotification
	StartObserving()
	StopObserving()
}

// Poller is the Stopped/Running state machine that drives polls.
//
// At most one timer is pending. A tick claims it, queries focus and the idle
// probe without the lock, completes the sample under the lock, publishes
// without the lock, and re-arms only if the same run is still active and
// nothing armed a timer meanwhile. Every start or re-arm begins a new epoch,
// so a timer that fired before it could be stopped is discarded. Subscribers may
// therefore stop, restart or reconfigure the poller from inside a delivery.
type Poller struct {
	documents DocumentSource
	probe     interfaces.IdleProbe
	focus     interfaces.FocusQuery
	bus       interfaces.EventBus
	clock     interfaces.Clock

	mu       sync.Mutex
	state    types.PollerState
	interval time.Duration
	lastPoll time.Time
	timer    interfaces.Timer
	epoch    uint64
}

// New creates a stopped poller. A non-positive interval falls back to
// DefaultInterval.
func New(documents DocumentSource, probe interfaces.IdleProbe, focus interfaces.FocusQuery,
	bus interfaces.EventBus, clock interfaces.Clock, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		documents: documents,
		probe:     probe,
		focus:     focus,
		bus:       bus,
		clock:     clock,
		interval:  interval,
	}
}

// StartPolling starts document observation, clears the poll baseline and
// arms the first tick. When already running only the timer is re-armed.
func (p *Poller) StartPolling() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == types.Running {
		// A new epoch keeps an already fired timer from ticking as well.
		p.cancelTimerLocked()
		p.epoch++
		p.armLocked()
		return
	}

	p.state = types.Running
	p.epoch++
	p.lastPoll = time.Time{}
	p.documents.StartObserving()
	p.armLocked()

	log.Infof("polling started (interval %s)", p.interval)
}

// StopPolling cancels the pending tick and stops document observation.
func (p *Poller) StopPolling() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == types.Stopped {
		return
	}
	p.stopLocked()

	log.Info("polling stopped")
}

// SetInterval changes the poll interval. A running poller is restarted,
// which also resets its baseline.
func (p *Poller) SetInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	p.mu.Lock()
	p.interval = interval
	running := p.state == types.Running
	p.mu.Unlock()

	if running {
		p.StopPolling()
		p.StartPolling()
	}
	return nil
}

// SetIntervalSeconds is SetInterval for a number of seconds.
func (p *Poller) SetIntervalSeconds(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, seconds)
	}
	d := time.Duration(seconds * float64(time.Second))
	if d <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, seconds)
	}
	return p.SetInterval(d)
}

// Polling reports whether the poller is running.
func (p *Poller) Polling() bool {
	return p.State() == types.Running
}

// State returns the current state.
func (p *Poller) State() types.PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Interval returns the configured interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

func (p *Poller) stopLocked() {
	p.state = types.Stopped
	p.epoch++
	p.cancelTimerLocked()
	p.documents.StopObserving()
}

func (p *Poller) cancelTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Poller) armLocked() {
	epoch := p.epoch
	p.timer = p.clock.AfterFunc(p.interval, func() { p.tick(epoch) })
	if p.timer == nil {
		log.Warningf("failed to arm poll timer; polling will not tick")
	}
}

func (p *Poller) tick(epoch uint64) {
	p.mu.Lock()
	if p.state != types.Running || p.epoch != epoch {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()

	// Focus and idle probes may run a subprocess; query them unlocked.
	now := p.clock.Now()
	active := p.focus.IsActive()
	var sinceUser *time.Duration
	if active {
		idle := p.probe.IdleTime()
		sinceUser = &idle
	}

	p.mu.Lock()
	if p.state != types.Running || p.epoch != epoch {
		p.mu.Unlock()
		return
	}
	sample := p.sampleLocked(now, active, sinceUser)
	p.mu.Unlock()

	p.bus.Publish(events.TopicActivity, sample)

	p.mu.Lock()
	defer p.mu.Unlock()
	// A subscriber may have stopped or restarted polling during delivery.
	if p.state == types.Running && p.epoch == epoch && p.timer == nil {
		p.armLocked()
	}
}

// sampleLocked completes one PollSample from the focus and user idle
// readings taken at now, and moves the baseline to now.
func (p *Poller) sampleLocked(now time.Time, active bool, sinceUser *time.Duration) types.PollSample {
	sinceDocument := p.documents.IdleTime()
	notifications := p.documents.Drain()

	documentObserved, userObserved := false, false
	if !p.lastPoll.IsZero() {
		elapsed := now.Sub(p.lastPoll)
		documentObserved = sinceDocument < elapsed
		userObserved = sinceUser != nil && *sinceUser < elapsed
	}
	p.lastPoll = now

	return types.PollSample{
		Time:                     now,
		ApplicationIsActive:      active,
		UserActivityObserved:     userObserved,
		SinceUserActivity:        sinceUser,
		DocumentActivityObserved: documentObserved,
		SinceDocumentActivity:    sinceDocument,
		Notifications:            notifications,
	}
}
