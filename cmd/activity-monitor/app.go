package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Veraticus/activity-monitor/pkg/clock"
	"github.com/Veraticus/activity-monitor/pkg/config"
	"github.com/Veraticus/activity-monitor/pkg/document"
	"github.com/Veraticus/activity-monitor/pkg/events"
	"github.com/Veraticus/activity-monitor/pkg/focus"
	"github.com/Veraticus/activity-monitor/pkg/history"
	"github.com/Veraticus/activity-monitor/pkg/idle"
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/poller"
	"github.com/Veraticus/activity-monitor/pkg/status"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Options carries the run flags and the collaborators tests replace.
// Zero values select the production implementations.
type Options struct {
	Stdout     io.Writer
	Stderr     io.Writer
	JSON       bool
	StatusLine bool

	Clock     interfaces.Clock
	IdleProbe interfaces.IdleProbe
	Focus     interfaces.FocusQuery
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config     *config.Config
	ConfigPath string

	Bus             *events.Bus
	Clock           interfaces.Clock
	IdleProbe       interfaces.IdleProbe
	Focus           interfaces.FocusQuery
	FocusTracker    *focus.Tracker
	Registry        interfaces.DocumentRegistry
	DocumentTracker *document.Tracker
	Poller          *poller.Poller
	History         *history.Recorder
	StatusIndicator *status.Indicator
	StatusReporter  *status.Reporter

	fileRegistry *document.FileRegistry
	jsonSub      interfaces.Subscription
	cancel       context.CancelFunc
	stopChan     chan struct{}
	closeOnce    sync.Once
}

// NewDependencies creates all dependencies with the given configuration
func NewDependencies(cfg *config.Config, configPath string, opts Options) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())
	deps := &Dependencies{
		Config:     cfg,
		ConfigPath: configPath,
		Bus:        events.NewBus(),
		Clock:      opts.Clock,
		IdleProbe:  opts.IdleProbe,
		Focus:      opts.Focus,
		cancel:     cancel,
		stopChan:   make(chan struct{}),
	}

	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.IdleProbe == nil {
		deps.IdleProbe = idle.NewProbe()
	}
	if deps.Focus == nil {
		deps.Focus = deps.newFocus()
	}

	// Documents come from watched directories when configured
	if len(cfg.Documents.Paths) > 0 {
		deps.fileRegistry = document.NewFileRegistry(cfg.Documents.Paths, cfg.Documents.Patterns)
		if err := deps.fileRegistry.Start(ctx); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to watch documents: %w", err)
		}
		deps.Registry = deps.fileRegistry
	} else {
		deps.Registry = document.NewMemoryRegistry()
	}

	deps.DocumentTracker = document.NewTracker(deps.Registry, deps.Clock)
	deps.Poller = poller.New(deps.DocumentTracker, deps.IdleProbe, deps.Focus, deps.Bus, deps.Clock, cfg.Polling.Interval)
	deps.History = history.NewRecorder(deps.Bus, cfg.History.Length)

	deps.StatusIndicator = status.NewIndicator(opts.Stderr, opts.StatusLine && opts.Stderr != nil)
	deps.StatusReporter = status.NewReporter(deps.Bus, deps.StatusIndicator)
	if opts.StatusLine {
		// Keep the line visible when other output scrolls it away
		deps.StatusIndicator.StartAutoRefresh(cfg.Polling.Interval, deps.stopChan)
	}

	if opts.JSON && opts.Stdout != nil {
		deps.jsonSub = subscribeJSON(deps.Bus, opts.Stdout)
	}

	return deps, nil
}

func (d *Dependencies) newFocus() interfaces.FocusQuery {
	switch d.Config.Focus.Mode {
	case config.FocusWindow:
		return focus.NewWindowQuery(d.Config.Focus.AppName)
	case config.FocusTerminal:
		d.FocusTracker = focus.NewTracker(true)
		return d.FocusTracker
	default:
		return focus.Static(true)
	}
}

// subscribeJSON writes each sample's fields to w as one JSON object per line.
func subscribeJSON(bus interfaces.EventBus, w io.Writer) interfaces.Subscription {
	enc := json.NewEncoder(w)
	return events.SubscribeActivity(bus, func(sample types.PollSample) {
		fields := sample.Fields()
		fields["time"] = sample.Time
		if err := enc.Encode(fields); err != nil {
			log.Warningf("failed to write sample: %v", err)
		}
	})
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	d.closeOnce.Do(func() {
		if d.Poller != nil {
			d.Poller.StopPolling()
		}

		// Stop status indicator refresh
		close(d.stopChan)

		if d.jsonSub != nil {
			d.jsonSub.Unsubscribe()
		}
		if d.StatusReporter != nil {
			d.StatusReporter.Close()
		}
		if d.History != nil {
			d.History.Close()
		}

		if d.fileRegistry != nil {
			if err := d.fileRegistry.Close(); err != nil {
				log.Warningf("failed to close document watcher: %v", err)
			}
		}
		d.cancel()

		// Clean up status indicator
		if d.StatusIndicator != nil {
			_ = d.StatusIndicator.Clear() // Best effort
		}
	})
}

type signalAction int

const (
	actionNone signalAction = iota
	actionStop
	actionToggle
	actionReload
)

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run polls until ctx is cancelled or a stop signal arrives. Toggle and
// reload signals are applied while running.
func (a *Application) Run(ctx context.Context, signals <-chan os.Signal) error {
	if a.deps.Config.Polling.Enabled {
		a.deps.Poller.StartPolling()
	} else {
		log.Info("polling disabled in config; send SIGUSR1 to start")
	}
	a.deps.StatusReporter.ReportPolling(a.deps.Poller.Polling())

	for {
		select {
		case <-ctx.Done():
			a.Stop()
			return nil
		case sig := <-signals:
			switch actionFor(sig) {
			case actionStop:
				log.Debugf("received %v, stopping", sig)
				a.Stop()
				return nil
			case actionToggle:
				if err := a.Toggle(); err != nil {
					log.Warningf("failed to save polling state: %v", err)
				}
			case actionReload:
				if err := a.Reload(); err != nil {
					log.Errorf("failed to reload config: %v", err)
				}
			}
		}
	}
}

// Toggle starts or stops polling and persists the new state.
func (a *Application) Toggle() error {
	p := a.deps.Poller
	if p.Polling() {
		p.StopPolling()
	} else {
		p.StartPolling()
	}
	a.deps.StatusReporter.ReportPolling(p.Polling())

	a.deps.Config.Polling.Enabled = p.Polling()
	if a.deps.ConfigPath == "" {
		return nil
	}

	// Persist only the toggle, not environment overrides
	stored, err := config.LoadFile(a.deps.ConfigPath)
	if err != nil {
		return err
	}
	stored.Polling.Enabled = p.Polling()
	return config.Save(stored, a.deps.ConfigPath)
}

// Reload re-reads the config file and applies the interval and history
// length. Other settings take effect on the next start.
func (a *Application) Reload() error {
	cfg, err := config.LoadFrom(a.deps.ConfigPath)
	if err != nil {
		return err
	}

	if cfg.Polling.Interval != a.deps.Poller.Interval() {
		if err := a.deps.Poller.SetInterval(cfg.Polling.Interval); err != nil {
			return err
		}
		log.Infof("poll interval set to %s", cfg.Polling.Interval)
	}
	if err := a.deps.History.SetLength(cfg.History.Length); err != nil {
		return err
	}

	a.deps.Config.Polling.Interval = cfg.Polling.Interval
	a.deps.Config.History.Length = cfg.History.Length
	return nil
}

// Stop stops polling and logs a summary of the recorded window.
func (a *Application) Stop() {
	a.deps.Poller.StopPolling()
	a.deps.StatusReporter.ReportPolling(false)

	samples := a.deps.History.Samples()
	log.Infof("stopped after %d recorded polls, user active in %.0f%%",
		len(samples), a.deps.History.ActivityRatio()*100)
}
