// Package types contains shared data structures used across the application.
package types

import "time"

// ChangeNotification records a single document mutation.
type ChangeNotification struct {
	ID         string
	Name       string
	DocumentID string
	Data       any
	Time       time.Time
}

// PollSample is the result of one poll. It is handed to the event bus as the
// payload of the "activity" topic.
type PollSample struct {
	Time                time.Time
	ApplicationIsActive bool

	UserActivityObserved bool
	// SinceUserActivity is nil unless ApplicationIsActive is true.
	SinceUserActivity *time.Duration

	DocumentActivityObserved bool
	SinceDocumentActivity    time.Duration

	Notifications []ChangeNotification
}

// Fields flattens the sample into the map layout consumers of the
// "activity" topic expect. Durations are reported in seconds.
func (s PollSample) Fields() map[string]any {
	notifications := make([]map[string]any, 0, len(s.Notifications))
	for _, n := range s.Notifications {
		notifications = append(notifications, map[string]any{
			"id":       n.ID,
			"name":     n.Name,
			"document": n.DocumentID,
			"data":     n.Data,
		})
	}

	fields := map[string]any{
		"applicationIsActive":          s.ApplicationIsActive,
		"userActivityObserved":         s.UserActivityObserved,
		"documentActivityObserved":     s.DocumentActivityObserved,
		"secondsSinceDocumentActivity": s.SinceDocumentActivity.Seconds(),
		"bufferedChangeNotifications":  notifications,
	}
	if s.SinceUserActivity != nil {
		fields["secondsSinceUserActivity"] = s.SinceUserActivity.Seconds()
	}
	return fields
}

// PollerState is the state of the activity poller.
type PollerState int

const (
	Stopped PollerState = iota
	Running
)

// String returns a human readable state name.
func (s PollerState) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
