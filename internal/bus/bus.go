// Package bus carries change notifications between everything that
// observes the persistent store: screens inside one process, and
// detached processes sharing the same data directory (see Relay).
package bus

import (
	"encoding/json"
	"sync"
)

// Well-known change keys.
const (
	KeySessions         = "sessions"
	KeySettings         = "settings"
	KeyActiveSession    = "activeSession"
	KeyCompletedSession = "completedSession"
	KeyTheorySessions   = "theorySessions"
)

// Change is one store mutation. A nil Value means the key was cleared;
// observers must drop their local copy, not ignore the notification.
// Remote marks changes replayed from another process by a Relay, so a
// Relay never re-emits what it just received.
type Change struct {
	Key    string
	Value  json.RawMessage
	Remote bool
}

// Bus is an in-process broadcast channel with a subscriber registry.
// Subscribers observe changes in publish order.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Change)
}

func New() *Bus {
	return &Bus{subs: make(map[int]func(Change))}
}

// Subscribe registers fn and returns its unsubscribe function.
func (b *Bus) Subscribe(fn func(Change)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers c to every subscriber, synchronously.
func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	fns := make([]func(Change), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
