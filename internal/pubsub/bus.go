// Package pubsub provides the in-process broadcast bus for lock lifecycle
// events. Delivery is best-effort: a subscriber that falls behind loses
// events rather than blocking the publisher.
package pubsub

import (
	"sync"

	"github.com/routeworks/memoflow-backend/internal/domain"
)

const subscriberBuffer = 16

// Bus fans lock events out to all current subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan domain.LockEvent
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan domain.LockEvent)}
}

// Subscribe registers a new subscriber and returns its event channel plus a
// cancel function. Cancel is idempotent and closes the channel.
func (b *Bus) Subscribe() (<-chan domain.LockEvent, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan domain.LockEvent, subscriberBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has buffer room.
// Slow subscribers are skipped, never waited on.
func (b *Bus) Publish(event domain.LockEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
