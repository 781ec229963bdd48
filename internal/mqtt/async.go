package mqtt

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sweeney/sos-beacon/internal/logging"
	"github.com/sweeney/sos-beacon/internal/logic"
)

// DefaultQueueSize is how many messages may wait for the publish goroutine.
const DefaultQueueSize = 64

// ErrQueueFull is returned when a message finds the outgoing queue full.
var ErrQueueFull = errors.New("mqtt: publish queue full")

// ErrClosed is returned for messages published after Close.
var ErrClosed = errors.New("mqtt: publisher closed")

type outgoing struct {
	event  logic.Event
	system *SystemEvent
}

// AsyncPublisher queues messages for a background goroutine that forwards
// them to the wrapped Publisher. Publish and PublishSystem never wait on the
// broker; a message that finds the queue full is dropped and counted.
type AsyncPublisher struct {
	next  Publisher
	queue chan outgoing
	done  chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsyncPublisher starts the forwarding goroutine for next.
func NewAsyncPublisher(next Publisher, size int) *AsyncPublisher {
	if size < 1 {
		size = DefaultQueueSize
	}
	a := &AsyncPublisher{
		next:  next,
		queue: make(chan outgoing, size),
		done:  make(chan struct{}),
	}
	go a.forward()
	return a
}

func (a *AsyncPublisher) forward() {
	defer close(a.done)
	log := logging.Logger()
	for m := range a.queue {
		if m.system != nil {
			if err := a.next.PublishSystem(*m.system); err != nil {
				log.Warn().Err(err).Str("event", m.system.Event).Msg("mqtt: system publish failed")
			}
			continue
		}
		if err := a.next.Publish(m.event); err != nil {
			log.Warn().Err(err).Str("event", string(m.event.Type)).Msg("mqtt: publish failed")
		}
	}
}

func (a *AsyncPublisher) enqueue(m outgoing) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- m:
		return nil
	default:
		a.dropped.Add(1)
		return ErrQueueFull
	}
}

// Publish queues a beacon event.
func (a *AsyncPublisher) Publish(event logic.Event) error {
	return a.enqueue(outgoing{event: event})
}

// PublishSystem queues a system event.
func (a *AsyncPublisher) PublishSystem(event SystemEvent) error {
	return a.enqueue(outgoing{system: &event})
}

// IsConnected reports the wrapped publisher's connection state, or false
// if it does not track one.
func (a *AsyncPublisher) IsConnected() bool {
	if cs, ok := a.next.(ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}

// Buffered returns messages still queued here plus any the wrapped
// publisher holds for a reconnect.
func (a *AsyncPublisher) Buffered() int {
	n := len(a.queue)
	if b, ok := a.next.(BufferStatus); ok {
		n += b.Buffered()
	}
	return n
}

// Dropped returns how many messages were refused because the queue was full.
func (a *AsyncPublisher) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting messages, waits for the queue to drain, then closes
// the wrapped publisher.
func (a *AsyncPublisher) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return a.next.Close()
}
