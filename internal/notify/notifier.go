// Package notify fans out record change events to in-process subscribers.
// A single dispatch goroutine drains a FIFO queue, so subscribers for the
// same collection observe events in publish order.
package notify

import (
	"log/slog"
	"sync"

	"dompet/internal/ledger"
)

// Kind tells subscribers what happened to a record.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Event describes a single record mutation.
type Event struct {
	Collection ledger.Collection
	Kind       Kind
	ID         string
	OwnerID    string
}

// Handler receives events for a subscribed collection. Handlers run on the
// dispatch goroutine; slow handlers delay later events.
type Handler func(Event)

const queueCapacity = 256

// Notifier queues events and delivers them to collection subscribers.
// The lifecycle lock covers the closed flag and the queue send, so Close
// cannot close the channel while a publisher is between the closed check
// and the send. Handlers have their own lock: dispatch must keep draining
// while a publisher blocks on a full queue holding the lifecycle lock.
type Notifier struct {
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	hmu      sync.RWMutex
	handlers map[ledger.Collection][]Handler

	queue chan Event
	done  chan struct{}
}

func New(logger *slog.Logger) *Notifier {
	n := &Notifier{
		logger:   logger,
		handlers: make(map[ledger.Collection][]Handler),
		queue:    make(chan Event, queueCapacity),
		done:     make(chan struct{}),
	}
	go n.dispatch()
	return n
}

// Subscribe registers a handler for one collection. All registered handlers
// for a collection receive every event published for it.
func (n *Notifier) Subscribe(c ledger.Collection, h Handler) {
	n.hmu.Lock()
	defer n.hmu.Unlock()
	n.handlers[c] = append(n.handlers[c], h)
}

// Publish enqueues an event for delivery. Publishing blocks when the queue
// is full rather than dropping events.
func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.Warn("event dropped after close",
			"collection", e.Collection, "kind", e.Kind, "id", e.ID)
		return
	}
	n.queue <- e
}

func (n *Notifier) dispatch() {
	defer close(n.done)
	for e := range n.queue {
		n.hmu.RLock()
		handlers := n.handlers[e.Collection]
		n.hmu.RUnlock()
		for _, h := range handlers {
			h(e)
		}
	}
}

// Close stops accepting events and waits for queued events to be delivered.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.mu.Unlock()

	<-n.done
}
