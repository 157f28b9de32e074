// Package events distributes scan notifications to subscribers.
// Payloads are immutable; the controller consumes them on its own goroutine
// so it stays authoritative over window mutation.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// EventType represents the type of scan event.
type EventType int

const (
	// EventItemFound is emitted as each photo is indexed. Items arrive in
	// filesystem enumeration order, not timestamp order.
	EventItemFound EventType = iota

	// EventScanCompleted is emitted once a walk finishes or is cancelled.
	EventScanCompleted
)

// Event is a single scan notification.
type Event struct {
	Type EventType

	// Item is the indexed photo for EventItemFound.
	Item types.Photo

	// Earliest is the earliest indexed photo for EventScanCompleted,
	// or nil when the scan found nothing.
	Earliest *types.Photo
}

// Subscriber receives scan events on a buffered channel.
type Subscriber struct {
	ID     string
	Events chan Event
}

// Broadcaster fans scan events out to subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	closed      bool
}

// New creates a new Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]*Subscriber),
	}
}

// Subscribe creates a new subscription.
func (b *Broadcaster) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	sub := &Subscriber{
		ID:     uuid.New().String(),
		Events: make(chan Event, 256),
	}
	b.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.Events)
		delete(b.subscribers, id)
	}
}

// ItemFound notifies subscribers about a newly indexed photo.
func (b *Broadcaster) ItemFound(p types.Photo) {
	b.send(Event{Type: EventItemFound, Item: p})
}

// ScanCompleted notifies subscribers that a scan finished. earliest is nil
// when nothing was indexed.
func (b *Broadcaster) ScanCompleted(earliest *types.Photo) {
	b.send(Event{Type: EventScanCompleted, Earliest: earliest})
}

// send delivers an event to every subscriber without blocking.
func (b *Broadcaster) send(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subscribers {
		select {
		case sub.Events <- ev:
		default:
			// Channel full, event dropped.
		}
	}
}

// Close closes the broadcaster and all subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	for _, sub := range b.subscribers {
		close(sub.Events)
	}
	b.subscribers = make(map[string]*Subscriber)
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
