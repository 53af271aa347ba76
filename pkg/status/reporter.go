package status

import (
	"github.com/Veraticus/activity-monitor/pkg/events"
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Reporter feeds poll samples from the bus into an Indicator.
type Reporter struct {
	indicator *Indicator
	sub       interfaces.Subscription
}

// NewReporter subscribes indicator to the activity topic of bus.
func NewReporter(bus interfaces.EventBus, indicator *Indicator) *Reporter {
	r := &Reporter{indicator: indicator}
	r.sub = events.SubscribeActivity(bus, r.report)
	return r
}

// ReportPolling forwards the poller state to the indicator.
func (r *Reporter) ReportPolling(polling bool) {
	if r.indicator != nil {
		r.indicator.SetPolling(polling)
	}
}

// Close stops forwarding samples.
func (r *Reporter) Close() {
	r.sub.Unsubscribe()
}

func (r *Reporter) report(sample types.PollSample) {
	if r.indicator != nil {
		r.indicator.Update(sample)
	}
}
