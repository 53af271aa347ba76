package document

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// ChangedNotificationName is the name carried by change notifications that
// documents in this package emit.
const ChangedNotificationName = "Document.Changed"

// MemoryRegistry is a DocumentRegistry for hosts that manage documents in
// process and push their lifecycle explicitly.
type MemoryRegistry struct {
	mu        sync.Mutex
	docs      []*MemoryDocument
	lifecycle handlerSet[interfaces.LifecycleHandler]
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{}
}

// Open registers a new document and announces it to lifecycle subscribers.
func (r *MemoryRegistry) Open(name string) *MemoryDocument {
	doc := &MemoryDocument{id: uuid.NewString(), name: name}

	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()

	r.dispatch(interfaces.LifecycleEvent{Kind: interfaces.DocumentOpened, Document: doc})
	return doc
}

// Close announces that doc will close and then removes it. Closing a
// document that is not open does nothing.
func (r *MemoryRegistry) Close(doc *MemoryDocument) {
	r.mu.Lock()
	index := -1
	for i, d := range r.docs {
		if d == doc {
			index = i
			break
		}
	}
	r.mu.Unlock()

	if index < 0 {
		return
	}

	r.dispatch(interfaces.LifecycleEvent{Kind: interfaces.DocumentWillClose, Document: doc})

	r.mu.Lock()
	for i, d := range r.docs {
		if d == doc {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
}

// Documents returns the open documents in opening order.
func (r *MemoryRegistry) Documents() []interfaces.Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]interfaces.Document, len(r.docs))
	for i, d := range r.docs {
		result[i] = d
	}
	return result
}

// OnLifecycle subscribes to future open and close events.
func (r *MemoryRegistry) OnLifecycle(handler interfaces.LifecycleHandler) interfaces.Subscription {
	return r.lifecycle.add(handler)
}

// LifecycleSubscriberCount returns the number of lifecycle subscribers.
func (r *MemoryRegistry) LifecycleSubscriberCount() int {
	return r.lifecycle.len()
}

func (r *MemoryRegistry) dispatch(event interfaces.LifecycleEvent) {
	for _, h := range r.lifecycle.snapshot() {
		h(event)
	}
}

// MemoryDocument is a document owned by a MemoryRegistry.
type MemoryDocument struct {
	id       string
	name     string
	handlers handlerSet[interfaces.ChangeHandler]
}

// ID returns the document identity.
func (d *MemoryDocument) ID() string {
	return d.id
}

// Name returns the display name.
func (d *MemoryDocument) Name() string {
	return d.name
}

// OnChange subscribes to change notifications of this document.
func (d *MemoryDocument) OnChange(handler interfaces.ChangeHandler) interfaces.Subscription {
	return d.handlers.add(handler)
}

// SubscriberCount returns the number of change subscribers.
func (d *MemoryDocument) SubscriberCount() int {
	return d.handlers.len()
}

// Change notifies subscribers of a mutation. An empty name defaults to
// ChangedNotificationName.
func (d *MemoryDocument) Change(name string, data any) {
	if name == "" {
		name = ChangedNotificationName
	}

	n := types.ChangeNotification{
		ID:         uuid.NewString(),
		Name:       name,
		DocumentID: d.id,
		Data:       data,
	}
	for _, h := range d.handlers.snapshot() {
		h(n)
	}
}

var (
	_ interfaces.DocumentRegistry = (*MemoryRegistry)(nil)
	_ interfaces.Document         = (*MemoryDocument)(nil)
)
