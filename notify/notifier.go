// Package notify is the in-process fan-out service for moderator
// notifications. One mailbox per subscriber, publish order preserved per
// mailbox, nothing persisted: a subscriber that connects after Publish
// returns never sees that event.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier owns the mailbox registry. The registry map is only ever
// mutated through Subscribe and Subscription.Close.
type Notifier struct {
	mu        sync.RWMutex
	log       *slog.Logger
	mailboxes map[string]*mailbox
	keepAlive time.Duration
}

func NewNotifier(log *slog.Logger, keepAlive time.Duration) *Notifier {
	return &Notifier{
		log:       log,
		mailboxes: make(map[string]*mailbox),
		keepAlive: keepAlive,
	}
}

// mailbox is an unbounded FIFO: Publish appends under the lock and pokes
// the wake channel, so it never blocks however slow the consumer is.
type mailbox struct {
	mu      sync.Mutex
	pending []Event
	wake    chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) put(e Event) {
	m.mu.Lock()
	m.pending = append(m.pending, e)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, false
	}
	e := m.pending[0]
	m.pending = m.pending[1:]
	return e, true
}

// Subscription is one live subscriber. The caller must Close it when the
// stream ends, however it ends, or the mailbox leaks past the connection.
type Subscription struct {
	id       string
	box      *mailbox
	notifier *Notifier
	once     sync.Once
}

// Subscribe registers a fresh mailbox under an opaque id. The Connected
// sentinel is already queued when Subscribe returns.
func (n *Notifier) Subscribe() *Subscription {
	id := uuid.NewString()
	box := newMailbox()
	box.put(Connected{})

	n.mu.Lock()
	n.mailboxes[id] = box
	n.mu.Unlock()

	n.log.Debug(fmt.Sprintf("Subscriber %s registered", id))
	return &Subscription{id: id, box: box, notifier: n}
}

// Publish delivers e to every mailbox registered right now, in registration
// snapshot order. It never blocks and never fails: with zero subscribers it
// simply returns.
func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	boxes := make([]*mailbox, 0, len(n.mailboxes))
	for _, box := range n.mailboxes {
		boxes = append(boxes, box)
	}
	n.mu.RUnlock()

	for _, box := range boxes {
		box.put(e)
	}
}

// SubscriberCount reports the current registry size.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.mailboxes)
}

// Next returns the next queued event in publish order. If nothing arrives
// within the keep-alive interval it returns a Heartbeat instead; it only
// errors when ctx is done.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	timer := time.NewTimer(s.notifier.keepAlive)
	defer timer.Stop()

	for {
		if e, ok := s.box.take(); ok {
			return e, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return Heartbeat{}, nil
		case <-s.box.wake:
			// Loop back and drain; a single wake may cover several events.
		}
	}
}

// Close removes the mailbox from the registry. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.notifier.mu.Lock()
		delete(s.notifier.mailboxes, s.id)
		s.notifier.mu.Unlock()
		s.notifier.log.Debug(fmt.Sprintf("Subscriber %s removed", s.id))
	})
}
