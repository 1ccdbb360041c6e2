package wsclient

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// listener is one registered consumer of inbound messages, backing either a
// callback registration or a pull stream, never both.
type listener struct {
	id        string
	createdAt time.Time

	filter  Matcher
	msgType MessageType // zero means any type

	handler Handler // nil for streams
	mode    ExecutionMode

	buf     chan Message
	policy  BackpressurePolicy
	metrics *metrics // set at registration
	evicted chan struct{}
	closed  chan struct{}

	evictOnce sync.Once
	closeOnce sync.Once
}

func newListener(bufferSize int, policy BackpressurePolicy) *listener {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &listener{
		id:        uuid.New().String(),
		createdAt: time.Now(),
		buf:       make(chan Message, bufferSize),
		policy:    policy,
		evicted:   make(chan struct{}),
		closed:    make(chan struct{}),
	}
}

// wants reports whether the message passes the listener's type and filter
// restrictions. Non-matching messages never count against the buffer.
func (l *listener) wants(m Message) bool {
	if l.msgType != 0 && m.Type != l.msgType {
		return false
	}
	if l.filter != nil && !safeMatch(l.filter, m) {
		return false
	}
	return true
}

// push buffers a message according to the backpressure policy. It returns
// false when the listener must be evicted. Only the fan-out goroutine calls
// push, so the drop-oldest drain is race-free.
func (l *listener) push(m Message) bool {
	if l.done() {
		return true
	}
	switch l.policy {
	case DropNewest:
		select {
		case l.buf <- m:
		default:
			l.metrics.incDropped()
		}
		return true
	case EvictConsumer:
		select {
		case l.buf <- m:
			return true
		default:
			return false
		}
	default: // DropOldest
		for {
			select {
			case l.buf <- m:
				return true
			default:
				select {
				case <-l.buf:
					l.metrics.incDropped()
				default:
				}
			}
		}
	}
}

// pop blocks for the next buffered message. A non-positive timeout waits
// indefinitely, bounded only by close or eviction.
func (l *listener) pop(timeout time.Duration) (Message, error) {
	// Buffered messages win over a concurrent shutdown signal.
	select {
	case m := <-l.buf:
		return m, nil
	default:
	}

	var expire <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expire = timer.C
	}

	select {
	case m := <-l.buf:
		return m, nil
	case <-l.evicted:
		return Message{}, ErrListenerEvicted
	case <-l.closed:
		return Message{}, ErrListenerClosed
	case <-expire:
		return Message{}, ErrNoMessage
	}
}

// popNoWait returns the next buffered message without blocking.
func (l *listener) popNoWait() (Message, error) {
	select {
	case m := <-l.buf:
		return m, nil
	default:
	}
	select {
	case <-l.evicted:
		return Message{}, ErrListenerEvicted
	case <-l.closed:
		return Message{}, ErrListenerClosed
	default:
		return Message{}, ErrNoMessage
	}
}

// evict marks the listener removed by backpressure and wakes blocked readers.
func (l *listener) evict() {
	l.evictOnce.Do(func() { close(l.evicted) })
}

// close releases the listener and wakes blocked readers. Idempotent.
func (l *listener) close() {
	l.closeOnce.Do(func() { close(l.closed) })
}

func (l *listener) done() bool {
	select {
	case <-l.evicted:
		return true
	case <-l.closed:
		return true
	default:
		return false
	}
}
