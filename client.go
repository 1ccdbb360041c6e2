package wsclient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"golang.org/x/time/rate"
)

var (
	errSessionRecycled = errors.New("wsclient: session recycled")
	errHeartbeatMissed = errors.New("wsclient: heartbeat acknowledgements missed")
)

// heartbeatMissLimit is the number of consecutive unacknowledged application
// heartbeats that forces a reconnect.
const heartbeatMissLimit = 3

// Client maintains one upstream WebSocket connection and serves many
// independent consumers: callbacks, pull streams and request waiters.
type Client struct {
	cfg        Config
	logger     Logger
	dialer     Dialer
	metrics    *metrics
	registry   *registry
	dispatcher *dispatcher
	correlator *correlator
	dataQ      *sendQueue
	cmdQ       *sendQueue
	limiter    *rate.Limiter

	state   atomic.Uint32
	hbAcked atomic.Bool

	mu        sync.Mutex
	started   bool
	stopped   bool
	runCancel context.CancelFunc
	runDone   chan struct{}
	err       error

	finishOnce sync.Once
	done       chan struct{}
}

// New validates the config and builds a client. The connection is not
// established until Start.
func New(cfg Config) (*Client, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &metrics{}
	d := newDispatcher(cfg.ThreadPoolWorkers, m, cfg.Logger)

	c := &Client{
		cfg:        cfg,
		logger:     cfg.Logger,
		metrics:    m,
		dispatcher: d,
		registry:   newRegistry(cfg.MaxListeners, d, m, cfg.Logger),
		correlator: newCorrelator(),
		dataQ:      newSendQueue(cfg.SendQueueSize, cfg.Backpressure, m, cfg.Logger),
		cmdQ:       newSendQueue(cfg.CommandQueueSize, cfg.Backpressure, m, cfg.Logger),
		done:       make(chan struct{}),
	}
	if cfg.Dialer != nil {
		c.dialer = cfg.Dialer
	} else {
		c.dialer = newGorillaDialer(&c.cfg, cfg.Logger)
	}
	if cfg.ReceiveRate > 0 {
		c.limiter = rate.NewLimiter(cfg.ReceiveRate, cfg.ReceiveBurst)
	}
	return c, nil
}

// Start launches the connection lifecycle. It returns immediately; observe
// Done and Err for the terminal state.
func (c *Client) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.runCancel = cancel
	c.runDone = make(chan struct{})
	go func() {
		defer close(c.runDone)
		c.run(runCtx)
	}()
	c.logger.Infof("wsclient: started, uri %s", c.cfg.URI)
	return nil
}

// Stop cancels in-flight work, abandons queued sends, wakes blocked readers
// and shuts the worker pool down. Safe to call multiple times.
func (c *Client) Stop() error {
	c.mu.Lock()
	cancel := c.runCancel
	runDone := c.runDone
	c.stopped = true
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if runDone != nil {
		<-runDone
	}
	c.finish(nil)
	return nil
}

// Done is closed once the client reaches its terminal state.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns the fatal connection error, if any, after Done is closed.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Metrics returns an immutable snapshot of the client counters.
func (c *Client) Metrics() Snapshot {
	snap := c.metrics.snapshot()
	snap.State = c.State()
	snap.ActiveListeners = c.registry.count()
	snap.MaxListeners = c.cfg.MaxListeners
	return snap
}

// Send enqueues a binary payload for transmission. Under DropNewest
// backpressure a full queue reports ErrMessageDropped.
func (c *Client) Send(payload []byte) error {
	return c.enqueue(MessageBinary, payload)
}

// SendText enqueues a text payload for transmission.
func (c *Client) SendText(s string) error {
	return c.enqueue(MessageText, []byte(s))
}

func (c *Client) enqueue(t MessageType, payload []byte) error {
	if err := c.runningErr(); err != nil {
		return err
	}
	return c.dataQ.push(&envelope{msgType: t, payload: payload, enqueued: time.Now()})
}

func (c *Client) runningErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrClosed
	}
	if !c.started {
		return ErrNotRunning
	}
	return nil
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrClosed
	}
	return nil
}

func (c *Client) setState(s State) {
	old := State(c.state.Swap(uint32(s)))
	if old != s {
		c.logger.Debugf("wsclient: state %s -> %s", old, s)
	}
}

// run owns the reconnection state machine. attempt counts consecutive
// failed connection attempts; it resets on handshake success.
func (c *Client) run(ctx context.Context) {
	backoff := c.cfg.backoff()
	attempt := 0
	first := true

	for {
		if ctx.Err() != nil {
			c.finish(nil)
			return
		}
		if first {
			c.setState(StateConnecting)
		} else {
			c.setState(StateReconnecting)
		}

		wait := backoff.Next(attempt + 1)
		if !first {
			c.metrics.observeReconnect(wait)
		}
		if wait > 0 {
			c.logger.Infof("wsclient: reconnecting in %s, attempt %d", wait, attempt+1)
			if !sleepCtx(ctx, wait) {
				c.finish(nil)
				return
			}
		}

		c.metrics.observeConnAttempt()
		conn, err := c.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.finish(nil)
				return
			}
			c.metrics.observeConnFailure()
			attempt++
			first = false
			c.logger.Errorf("wsclient: connection failed: %+v", err)
			if c.cfg.ReconnectAttempts >= 0 && attempt >= c.cfg.ReconnectAttempts {
				c.logger.Errorf("wsclient: giving up after %d failed attempts", attempt)
				c.finish(errors.Wrapf(ErrReconnectExhausted, "%d failed attempts, last: %v", attempt, err))
				return
			}
			continue
		}

		c.metrics.observeConnSuccess()
		attempt = 0
		first = false
		c.setState(StateConnected)
		c.logger.Infof("wsclient: connected to %s", c.cfg.URI)

		err = c.session(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			c.finish(nil)
			return
		}
		if err == errSessionRecycled {
			c.logger.Infof("wsclient: session recycled after %s", c.cfg.SessionTimeout)
		} else {
			c.metrics.incErrors()
			c.logger.Warnf("wsclient: connection dropped: %+v", err)
		}
	}
}

// session drives one established connection: a reader goroutine feeds
// fan-out while this loop holds exclusive write access, draining commands
// with priority over data envelopes.
func (c *Client) session(ctx context.Context, conn Conn) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go c.readLoop(conn, errCh)

	ticker := time.NewTicker(c.cfg.Heartbeat)
	defer ticker.Stop()

	var expire <-chan time.Time
	if c.cfg.SessionTimeout > 0 {
		timer := time.NewTimer(c.cfg.SessionTimeout)
		defer timer.Stop()
		expire = timer.C
	}

	c.hbAcked.Store(false)
	hbSent := false
	missed := 0

	for {
		select {
		case <-sessionCtx.Done():
			return sessionCtx.Err()
		case err := <-errCh:
			return err
		case <-expire:
			return errSessionRecycled
		case env := <-c.cmdQ.ch:
			if err := c.write(conn, env, c.cmdQ); err != nil {
				return err
			}
		case env := <-c.dataQ.ch:
			if err := c.flushCommands(conn); err != nil {
				return err
			}
			if err := c.write(conn, env, c.dataQ); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return errors.Wrap(err, "keepalive ping")
			}
			if !c.cfg.EnableAppHeartbeat {
				continue
			}
			if hbSent {
				if c.hbAcked.Swap(false) {
					missed = 0
				} else {
					missed++
				}
				if missed >= heartbeatMissLimit {
					return errors.Wrapf(errHeartbeatMissed, "%d consecutive", missed)
				}
			}
			if err := c.cmdQ.push(&envelope{
				msgType:  MessageText,
				payload:  c.cfg.HeartbeatPayload,
				enqueued: time.Now(),
			}); err == nil {
				hbSent = true
			}
		}
	}
}

func (c *Client) flushCommands(conn Conn) error {
	for {
		select {
		case env := <-c.cmdQ.ch:
			if err := c.write(conn, env, c.cmdQ); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// write transmits one envelope; on failure the envelope is re-queued so the
// payload survives the reconnect.
func (c *Client) write(conn Conn, env *envelope, q *sendQueue) error {
	if err := conn.Write(env.msgType, env.payload); err != nil {
		_ = q.push(env)
		return errors.Wrap(err, "write")
	}
	c.metrics.observeSent(len(env.payload))
	return nil
}

// readLoop pushes every inbound message through the correlator and the
// fan-out registry. It exits on the first read error, which the session
// loop turns into a reconnect.
func (c *Client) readLoop(conn Conn, errCh chan<- error) {
	for {
		m, err := conn.Read()
		if err != nil {
			errCh <- err
			return
		}
		c.metrics.observeReceived(len(m.Data))

		if c.limiter != nil && !c.limiter.Allow() {
			c.metrics.incRateLimited()
			continue
		}
		if c.cfg.EnableAppHeartbeat && c.cfg.HeartbeatAck != nil && safeMatch(c.cfg.HeartbeatAck, m) {
			c.hbAcked.Store(true)
		}

		c.correlator.resolve(m)
		c.registry.publish(m)
	}
}

// finish moves the client into its terminal state exactly once.
func (c *Client) finish(err error) {
	c.finishOnce.Do(func() {
		c.setState(StateClosing)
		c.mu.Lock()
		c.stopped = true
		c.err = err
		cancel := c.runCancel
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		c.registry.closeAll()
		c.dataQ.drain()
		c.cmdQ.drain()
		c.dispatcher.wait()

		c.setState(StateClosed)
		close(c.done)
		c.logger.Infof("wsclient: stopped")
	})
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
