package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

func TestMemoryRegistryLifecycle(t *testing.T) {
	registry := NewMemoryRegistry()

	var events []interfaces.LifecycleEvent
	sub := registry.OnLifecycle(func(e interfaces.LifecycleEvent) {
		// The closing document is still listed while its close is announced.
		if e.Kind == interfaces.DocumentWillClose {
			assert.Len(t, registry.Documents(), 2)
		}
		events = append(events, e)
	})

	a := registry.Open("a.ufo")
	b := registry.Open("b.ufo")
	require.Len(t, registry.Documents(), 2)
	assert.Equal(t, a.ID(), registry.Documents()[0].ID())

	registry.Close(a)
	require.Len(t, events, 3)
	assert.Equal(t, interfaces.DocumentOpened, events[0].Kind)
	assert.Equal(t, interfaces.DocumentOpened, events[1].Kind)
	assert.Equal(t, interfaces.DocumentWillClose, events[2].Kind)
	assert.Equal(t, a.ID(), events[2].Document.ID())

	docs := registry.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, b.ID(), docs[0].ID())

	// Closing twice is a no-op.
	registry.Close(a)
	assert.Len(t, events, 3)

	sub.Unsubscribe()
	sub.Unsubscribe()
	registry.Open("c.ufo")
	assert.Len(t, events, 3)
	assert.Equal(t, 0, registry.LifecycleSubscriberCount())
}

func TestMemoryDocumentChange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "default name", input: "", expected: ChangedNotificationName},
		{name: "custom name", input: "Glyph.Changed", expected: "Glyph.Changed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewMemoryRegistry().Open("a.ufo")

			var got []types.ChangeNotification
			doc.OnChange(func(n types.ChangeNotification) { got = append(got, n) })
			doc.Change(tt.input, "payload")

			require.Len(t, got, 1)
			assert.Equal(t, tt.expected, got[0].Name)
			assert.Equal(t, doc.ID(), got[0].DocumentID)
			assert.Equal(t, "payload", got[0].Data)
			assert.NotEmpty(t, got[0].ID)
		})
	}
}

func TestMemoryDocumentUnsubscribeDuringDispatch(t *testing.T) {
	doc := NewMemoryRegistry().Open("a.ufo")

	calls := 0
	var sub interfaces.Subscription
	sub = doc.OnChange(func(types.ChangeNotification) {
		calls++
		sub.Unsubscribe()
	})

	doc.Change("", nil)
	doc.Change("", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, doc.SubscriberCount())
}
