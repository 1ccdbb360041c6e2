package wsclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/yanun0323/errors"
	"golang.org/x/time/rate"
)

// Config defines the client runtime configuration. Zero values fall back to
// the documented defaults; URI is the only required field.
type Config struct {
	// URI is the upstream endpoint and must use a ws:// or wss:// scheme.
	URI string
	// Headers are attached to the handshake request unchanged. Session and
	// authentication logic beyond that is a caller concern.
	Headers http.Header

	// Heartbeat is the interval for protocol keepalive pings and, when
	// EnableAppHeartbeat is set, for the application heartbeat payload.
	Heartbeat time.Duration
	// ReceiveTimeout is the idle read deadline; keepalive pongs extend it.
	ReceiveTimeout time.Duration
	// ConnectTimeout bounds dial plus handshake.
	ConnectTimeout time.Duration
	// SessionTimeout recycles an established connection after this long.
	// Zero disables recycling.
	SessionTimeout time.Duration

	// ReconnectAttempts is the number of consecutive failed connection
	// attempts tolerated before the client closes with a fatal error.
	// Zero defaults to 5; negative means retry forever.
	ReconnectAttempts int
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	// JitterFactor must be in [0, 1].
	JitterFactor float64

	SendQueueSize    int
	CommandQueueSize int
	// Backpressure applies uniformly to the outbound queue and every
	// listener buffer.
	Backpressure BackpressurePolicy

	// Compression enables permessage-deflate at the given level (1-9).
	// Zero disables compression.
	Compression int
	// InsecureSkipVerify disables TLS certificate verification for wss
	// endpoints.
	InsecureSkipVerify bool

	MaxListeners       int
	ListenerBufferSize int

	// CallbackMode is the default execution mode for RegisterCallback.
	CallbackMode ExecutionMode
	// ThreadPoolWorkers bounds concurrently running ModeThreaded callbacks.
	ThreadPoolWorkers int

	// EnableAppHeartbeat sends HeartbeatPayload every Heartbeat interval.
	// Three consecutive intervals without a message matching HeartbeatAck
	// force a reconnect.
	EnableAppHeartbeat bool
	HeartbeatPayload   []byte
	HeartbeatAck       Matcher

	// ReceiveRate throttles inbound fan-out; messages over the rate are
	// counted and discarded. Zero disables throttling.
	ReceiveRate  rate.Limit
	ReceiveBurst int

	// Logger receives client diagnostics. Defaults to the yanun0323/logs
	// backed logger.
	Logger Logger

	// Dialer overrides the transport used to establish connections.
	// Defaults to the gorilla/websocket transport built from this config.
	Dialer Dialer
}

func (c *Config) normalize() {
	if c.Heartbeat <= 0 {
		c.Heartbeat = 30 * time.Second
	}
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = 60 * time.Second
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 20 * time.Second
	}
	if c.ReconnectAttempts == 0 {
		c.ReconnectAttempts = 5
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 60 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 1024
	}
	if c.CommandQueueSize <= 0 {
		c.CommandQueueSize = 64
	}
	if c.MaxListeners <= 0 {
		c.MaxListeners = 1000
	}
	if c.ListenerBufferSize <= 0 {
		c.ListenerBufferSize = 100
	}
	if c.ThreadPoolWorkers <= 0 {
		c.ThreadPoolWorkers = 8
	}
	if c.ReceiveBurst <= 0 {
		c.ReceiveBurst = 1
	}
	if c.Logger == nil {
		c.Logger = defaultLogger{}
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.URI, "ws://") && !strings.HasPrefix(c.URI, "wss://") {
		return errors.Wrap(ErrInvalidConfig, "uri must start with ws:// or wss://")
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1 {
		return errors.Wrapf(ErrInvalidConfig, "jitter factor %v outside [0, 1]", c.JitterFactor)
	}
	if c.Compression < 0 || c.Compression > 9 {
		return errors.Wrapf(ErrInvalidConfig, "compression level %d outside [0, 9]", c.Compression)
	}
	switch c.Backpressure {
	case DropOldest, DropNewest, EvictConsumer:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown backpressure policy %d", c.Backpressure)
	}
	switch c.CallbackMode {
	case ModeAsync, ModeThreaded, ModeSync:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown execution mode %d", c.CallbackMode)
	}
	if c.EnableAppHeartbeat && len(c.HeartbeatPayload) == 0 {
		return errors.Wrap(ErrInvalidConfig, "app heartbeat enabled without payload")
	}
	if c.ReceiveRate < 0 {
		return errors.Wrapf(ErrInvalidConfig, "receive rate %v negative", c.ReceiveRate)
	}
	return nil
}

func (c *Config) backoff() Backoff {
	return Backoff{
		Base:   c.BackoffBase,
		Max:    c.BackoffMax,
		Jitter: c.JitterFactor,
	}
}
