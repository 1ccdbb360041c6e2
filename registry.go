package wsclient

import "sync"

// registry distributes each inbound message to all live listeners.
type registry struct {
	mu        sync.RWMutex
	listeners map[string]*listener
	max       int

	dispatcher *dispatcher
	metrics    *metrics
	logger     Logger
}

func newRegistry(max int, d *dispatcher, m *metrics, logger Logger) *registry {
	return &registry{
		listeners:  make(map[string]*listener),
		max:        max,
		dispatcher: d,
		metrics:    m,
		logger:     logger,
	}
}

// add registers a listener, failing when the registry-wide cap is reached.
func (r *registry) add(l *listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.listeners) >= r.max {
		return ErrTooManyListeners
	}
	l.metrics = r.metrics
	r.listeners[l.id] = l
	return nil
}

// remove deletes a listener by id. Removing an unknown id is a no-op.
func (r *registry) remove(id string) *listener {
	r.mu.Lock()
	l, ok := r.listeners[id]
	if ok {
		delete(r.listeners, id)
	}
	r.mu.Unlock()
	return l
}

func (r *registry) get(id string) *listener {
	r.mu.RLock()
	l := r.listeners[id]
	r.mu.RUnlock()
	return l
}

func (r *registry) count() int {
	r.mu.RLock()
	n := len(r.listeners)
	r.mu.RUnlock()
	return n
}

// publish fans one message out to every live listener. Sync callbacks run
// inline here, before the next message is delivered anywhere; buffered modes
// only ever block per their backpressure policy.
func (r *registry) publish(m Message) {
	r.mu.RLock()
	targets := make([]*listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		targets = append(targets, l)
	}
	r.mu.RUnlock()

	for _, l := range targets {
		if !l.wants(m) {
			continue
		}
		if l.handler != nil && l.mode == ModeSync {
			r.dispatcher.invoke(l, m)
			continue
		}
		if !l.push(m) {
			r.evict(l)
		}
	}
}

// evict removes a listener whose buffer overflowed under EvictConsumer.
// Blocked readers observe ErrListenerEvicted; the callback, if any, stops
// receiving.
func (r *registry) evict(l *listener) {
	r.mu.Lock()
	delete(r.listeners, l.id)
	r.mu.Unlock()
	l.evict()
	r.metrics.incEvictions()
	r.logger.Warnf("wsclient: listener %s evicted, buffer overflow", l.id)
}

// closeAll releases every listener, waking all blocked readers.
func (r *registry) closeAll() {
	r.mu.Lock()
	listeners := r.listeners
	r.listeners = make(map[string]*listener)
	r.mu.Unlock()
	for _, l := range listeners {
		l.close()
	}
}
