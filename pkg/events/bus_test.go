package events

import (
	"testing"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe("topic", func(payload any) { got = append(got, "first:"+payload.(string)) })
	bus.Subscribe("topic", func(payload any) { got = append(got, "second:"+payload.(string)) })
	bus.Subscribe("other", func(payload any) { got = append(got, "other") })

	bus.Publish("topic", "x")

	assert.Equal(t, []string{"first:x", "second:x"}, got)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	sub := bus.Subscribe("topic", func(any) { calls++ })
	require.Equal(t, 1, bus.SubscriberCount("topic"))

	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Publish("topic", nil)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.SubscriberCount("topic"))
}

func TestBusUnsubscribeOnlyRemovesOwnHandler(t *testing.T) {
	bus := NewBus()

	var a, b int
	subA := bus.Subscribe("topic", func(any) { a++ })
	bus.Subscribe("topic", func(any) { b++ })

	subA.Unsubscribe()
	bus.Publish("topic", nil)

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestBusReentrantDelivery(t *testing.T) {
	bus := NewBus()

	var sub interfaces.Subscription
	calls := 0
	sub = bus.Subscribe("topic", func(any) {
		calls++
		// Unsubscribing and publishing from inside a handler must not deadlock.
		sub.Unsubscribe()
		bus.Publish("topic", nil)
	})

	done := make(chan struct{})
	go func() {
		bus.Publish("topic", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("re-entrant publish deadlocked")
	}
	assert.Equal(t, 1, calls)
}

func TestSubscribeActivity(t *testing.T) {
	bus := NewBus()

	var samples []types.PollSample
	SubscribeActivity(bus, func(s types.PollSample) { samples = append(samples, s) })

	bus.Publish(TopicActivity, types.PollSample{ApplicationIsActive: true})
	bus.Publish(TopicActivity, &types.PollSample{DocumentActivityObserved: true})
	bus.Publish(TopicActivity, (*types.PollSample)(nil))
	bus.Publish(TopicActivity, "not a sample")

	require.Len(t, samples, 2)
	assert.True(t, samples[0].ApplicationIsActive)
	assert.True(t, samples[1].DocumentActivityObserved)
}
