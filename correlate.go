package wsclient

import "sync"

// pendingRequest is a registered predicate awaiting a matching inbound
// message. It resolves at most once.
type pendingRequest struct {
	seq     uint64
	matcher Matcher
	result  chan Message
}

// correlator matches inbound messages against pending request predicates.
// Registration order is preserved so ties resolve deterministically in favor
// of the first-registered request.
type correlator struct {
	mu      sync.Mutex
	pending []*pendingRequest
	nextSeq uint64
}

func newCorrelator() *correlator {
	return &correlator{}
}

func (c *correlator) add(matcher Matcher) *pendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	p := &pendingRequest{
		seq:     c.nextSeq,
		matcher: matcher,
		result:  make(chan Message, 1),
	}
	c.pending = append(c.pending, p)
	return p
}

// remove deregisters a pending request. Removing an already-resolved request
// is a no-op, which makes the deadline path race-free: once removed, a late
// matching message can no longer resolve it.
func (c *correlator) remove(p *pendingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, q := range c.pending {
		if q.seq == p.seq {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// resolve tests a message against all live predicates in registration order.
// The first match wins and resolves exactly one pending request.
func (c *correlator) resolve(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if safeMatch(p.matcher, m) {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			p.result <- m
			return
		}
	}
}

func (c *correlator) count() int {
	c.mu.Lock()
	n := len(c.pending)
	c.mu.Unlock()
	return n
}

// safeMatch evaluates a caller-supplied predicate on the delivery path.
// A panicking predicate counts as no match rather than killing the reader.
func safeMatch(f Matcher, m Message) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return f(m)
}
