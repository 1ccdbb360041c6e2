package wsclient

import (
	"iter"
	"time"
)

// CreateStream opens a pull stream with its own bounded buffer. A
// non-positive bufferSize uses the configured listener default.
func (c *Client) CreateStream(bufferSize int) (StreamID, error) {
	if err := c.closedErr(); err != nil {
		return "", err
	}
	if bufferSize <= 0 {
		bufferSize = c.cfg.ListenerBufferSize
	}
	l := newListener(bufferSize, c.cfg.Backpressure)
	if err := c.registry.add(l); err != nil {
		return "", err
	}
	c.logger.Debugf("wsclient: stream %s created, buffer %d", l.id, bufferSize)
	return StreamID(l.id), nil
}

// GetStreamMessage blocks for the next message on the stream. A non-positive
// timeout waits indefinitely, bounded only by Stop, CloseStream or eviction.
// Timeouts return ErrNoMessage; an unknown or evicted id returns
// ErrListenerEvicted.
func (c *Client) GetStreamMessage(id StreamID, timeout time.Duration) (Message, error) {
	l := c.registry.get(string(id))
	if l == nil {
		return Message{}, ErrListenerEvicted
	}
	return l.pop(timeout)
}

// GetStreamMessageNoWait returns the next buffered message without blocking,
// or ErrNoMessage when the buffer is empty.
func (c *Client) GetStreamMessageNoWait(id StreamID) (Message, error) {
	l := c.registry.get(string(id))
	if l == nil {
		return Message{}, ErrListenerEvicted
	}
	return l.popNoWait()
}

// Stream returns a restartable iterator over the stream. Iteration ends when
// the caller breaks or the stream is closed or evicted; a new call resumes
// from the current buffer position.
func (c *Client) Stream(id StreamID) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			m, err := c.GetStreamMessage(id, 0)
			if err != nil {
				return
			}
			if !yield(m) {
				return
			}
		}
	}
}

// CloseStream releases the stream's listener immediately, waking blocked
// readers. Closing an already-removed id is a no-op.
func (c *Client) CloseStream(id StreamID) {
	if l := c.registry.remove(string(id)); l != nil {
		l.close()
		c.logger.Debugf("wsclient: stream %s closed", l.id)
	}
}
