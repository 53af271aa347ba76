// Package events provides the in-process publish/subscribe bus that carries
// poll results from the poller to its consumers.
package events

import (
	"sync"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// TopicActivity carries a types.PollSample once per poll.
const TopicActivity = "activity"

type subscriber struct {
	id      uint64
	handler interfaces.EventHandler
}

// Bus is a synchronous, re-entrant publish/subscribe channel.
// Handlers run on the publishing goroutine and may subscribe, unsubscribe
// or publish from inside a delivery.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		topics: make(map[string][]subscriber),
	}
}

// Subscribe registers handler for topic.
func (b *Bus) Subscribe(topic string, handler interfaces.EventHandler) interfaces.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, handler: handler})

	return &subscription{bus: b, topic: topic, id: id}
}

// Publish delivers payload to every handler subscribed to topic at the time
// of the call. No lock is held while handlers run.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(payload)
	}
}

// SubscriberCount returns the number of handlers registered for topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}

type subscription struct {
	once  sync.Once
	bus   *Bus
	topic string
	id    uint64
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.topic, s.id)
	})
}

// SubscribeActivity registers a typed handler for TopicActivity.
// Payloads that are not poll samples are ignored.
func SubscribeActivity(bus interfaces.EventBus, handler func(types.PollSample)) interfaces.Subscription {
	return bus.Subscribe(TopicActivity, func(payload any) {
		switch sample := payload.(type) {
		case types.PollSample:
			handler(sample)
		case *types.PollSample:
			if sample != nil {
				handler(*sample)
			}
		}
	})
}

// Ensure Bus implements EventBus
var _ interfaces.EventBus = (*Bus)(nil)
