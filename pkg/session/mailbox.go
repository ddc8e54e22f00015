package session

import (
	"sync"

	"github.com/docscan/docscan-go/pkg/scanner"
)

// mailbox is an unbounded event queue. post never blocks, so a device may
// notify synchronously from inside a call made by the machine.
type mailbox struct {
	mu     sync.Mutex
	queue  []scanner.Event
	closed bool
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

// post enqueues ev. Events posted after close are dropped.
func (b *mailbox) post(ev scanner.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// drain removes and returns all queued events.
func (b *mailbox) drain() []scanner.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	evs := b.queue
	b.queue = nil
	return evs
}

// close stops accepting events and returns how many were left unread.
func (b *mailbox) close() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	n := len(b.queue)
	b.queue = nil
	return n
}
