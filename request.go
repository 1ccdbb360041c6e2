package wsclient

import (
	"context"
	"time"
)

// Request atomically registers the matcher, sends the payload and awaits the
// first inbound message the matcher accepts. A non-positive timeout waits
// until ctx is done or the client stops. On expiry the pending entry is
// removed, so a late-arriving match cannot resolve it.
func (c *Client) Request(ctx context.Context, payload []byte, matcher Matcher, timeout time.Duration) (Message, error) {
	if matcher == nil {
		return Message{}, ErrNilMatcher
	}
	if err := c.runningErr(); err != nil {
		return Message{}, err
	}
	p := c.correlator.add(matcher)
	if err := c.Send(payload); err != nil {
		c.correlator.remove(p)
		return Message{}, err
	}
	return c.await(ctx, p, timeout)
}

// WaitForMessage is Request without the outbound send: it resolves with the
// first inbound message the matcher accepts, or times out.
func (c *Client) WaitForMessage(ctx context.Context, matcher Matcher, timeout time.Duration) (Message, error) {
	if matcher == nil {
		return Message{}, ErrNilMatcher
	}
	if err := c.runningErr(); err != nil {
		return Message{}, err
	}
	p := c.correlator.add(matcher)
	return c.await(ctx, p, timeout)
}

func (c *Client) await(ctx context.Context, p *pendingRequest, timeout time.Duration) (Message, error) {
	defer c.correlator.remove(p)

	if ctx == nil {
		ctx = context.Background()
	}
	var expire <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expire = timer.C
	}

	select {
	case m := <-p.result:
		return m, nil
	case <-expire:
		// A match that raced the deadline still wins.
		select {
		case m := <-p.result:
			return m, nil
		default:
			return Message{}, ErrTimeout
		}
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case <-c.done:
		return Message{}, ErrClosed
	}
}
