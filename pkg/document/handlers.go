package document

import (
	"sync"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

type handlerEntry[H any] struct {
	id      uint64
	handler H
}

// handlerSet is an ordered set of handlers. Callers snapshot it and invoke
// handlers outside the lock.
type handlerSet[H any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []handlerEntry[H]
}

func (s *handlerSet[H]) add(h H) interfaces.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, handlerEntry[H]{id: id, handler: h})

	return &funcSubscription{fn: func() { s.remove(id) }}
}

func (s *handlerSet[H]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *handlerSet[H]) snapshot() []H {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]H, len(s.entries))
	for i, e := range s.entries {
		result[i] = e.handler
	}
	return result
}

func (s *handlerSet[H]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (f *funcSubscription) Unsubscribe() {
	f.once.Do(f.fn)
}
