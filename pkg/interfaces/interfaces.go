// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"time"

	"github.com/Veraticus/activity-monitor/pkg/types"
)

// IdleProbe reports how long it has been since the last global user input.
// Implementations never fail; an unavailable measurement is reported as 0.
type IdleProbe interface {
	IdleTime() time.Duration
}

// FocusQuery reports whether the host application has user input focus.
type FocusQuery interface {
	IsActive() bool
}

// Subscription is a handle returned by every subscribe call.
// Unsubscribe is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// ChangeHandler receives document change notifications.
type ChangeHandler func(types.ChangeNotification)

// Document is a unit of content the host application edits.
// Handlers must be invoked without the document's internal locks held.
type Document interface {
	ID() string
	Name() string
	OnChange(handler ChangeHandler) Subscription
}

// LifecycleKind identifies a document lifecycle transition.
type LifecycleKind int

const (
	DocumentOpened LifecycleKind = iota
	DocumentWillClose
)

// LifecycleEvent announces that a document opened or is about to close.
type LifecycleEvent struct {
	Kind     LifecycleKind
	Document Document
}

// LifecycleHandler receives document lifecycle events.
type LifecycleHandler func(LifecycleEvent)

// DocumentRegistry lists open documents and announces future opens/closes.
// Lifecycle subscriptions only see transitions that happen after subscribing.
type DocumentRegistry interface {
	Documents() []Document
	OnLifecycle(handler LifecycleHandler) Subscription
}

// EventHandler receives payloads published on a topic.
type EventHandler func(payload any)

// EventBus is a synchronous publish/subscribe channel.
type EventBus interface {
	Subscribe(topic string, handler EventHandler) Subscription
	Publish(topic string, payload any)
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}
