package wsclient

import "sync"

// dispatcher executes listener callbacks under their registered execution
// mode and isolates failures at the invocation boundary.
type dispatcher struct {
	workers chan struct{}
	metrics *metrics
	logger  Logger
	wg      sync.WaitGroup
}

func newDispatcher(workers int, m *metrics, logger Logger) *dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &dispatcher{
		workers: make(chan struct{}, workers),
		metrics: m,
		logger:  logger,
	}
}

// start begins draining a callback listener's buffer. ModeAsync drains on a
// dedicated goroutine; ModeThreaded additionally gates each invocation on a
// bounded worker slot so a blocking handler occupies one slot, never the
// delivery path. ModeSync listeners are invoked inline by fan-out and do not
// get a drainer.
func (d *dispatcher) start(l *listener) {
	if l.handler == nil || l.mode == ModeSync {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case m := <-l.buf:
				if l.mode == ModeThreaded {
					d.workers <- struct{}{}
					d.invoke(l, m)
					<-d.workers
				} else {
					d.invoke(l, m)
				}
			case <-l.evicted:
				return
			case <-l.closed:
				return
			}
		}
	}()
}

// invoke runs the handler, recovering panics so one failing callback cannot
// affect other listeners or the connection.
func (d *dispatcher) invoke(l *listener, m Message) {
	defer func() {
		if rec := recover(); rec != nil {
			d.metrics.incErrors()
			d.logger.Errorf("wsclient: callback %s panicked: %v", l.id, rec)
		}
	}()
	l.handler(m)
}

// wait blocks until all drainer goroutines have exited.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
