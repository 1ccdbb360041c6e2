package wsclient

import "time"

// envelope is one outbound payload awaiting transmission.
type envelope struct {
	msgType  MessageType
	payload  []byte
	enqueued time.Time
}

// sendQueue is a bounded outbound queue with backpressure. The outbound path
// has no consumer to evict, so EvictConsumer degrades to DropOldest here.
type sendQueue struct {
	ch      chan *envelope
	policy  BackpressurePolicy
	metrics *metrics
	logger  Logger
}

func newSendQueue(capacity int, policy BackpressurePolicy, m *metrics, logger Logger) *sendQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &sendQueue{
		ch:      make(chan *envelope, capacity),
		policy:  policy,
		metrics: m,
		logger:  logger,
	}
}

// push enqueues according to the policy. Under DropNewest a full queue
// rejects the envelope with ErrMessageDropped; otherwise the oldest queued
// envelope is discarded to make room.
func (q *sendQueue) push(env *envelope) error {
	if q.policy == DropNewest {
		select {
		case q.ch <- env:
			return nil
		default:
			q.metrics.incDropped()
			return ErrMessageDropped
		}
	}

	for {
		select {
		case q.ch <- env:
			return nil
		default:
			select {
			case old := <-q.ch:
				q.metrics.incDropped()
				q.logger.Debugf("wsclient: dropped queued message aged %s", time.Since(old.enqueued))
			default:
			}
		}
	}
}

// drain discards all queued envelopes.
func (q *sendQueue) drain() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

func (q *sendQueue) len() int {
	return len(q.ch)
}
