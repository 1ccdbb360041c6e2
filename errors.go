package wsclient

import "github.com/yanun0323/errors"

var (
	ErrInvalidConfig      = errors.New("wsclient: invalid config")
	ErrAlreadyStarted     = errors.New("wsclient: already started")
	ErrNotRunning         = errors.New("wsclient: client not running")
	ErrClosed             = errors.New("wsclient: client closed")
	ErrReconnectExhausted = errors.New("wsclient: reconnect attempts exhausted")

	// ErrMessageDropped reports a send rejected under DropNewest backpressure.
	ErrMessageDropped = errors.New("wsclient: message dropped")

	ErrTooManyListeners = errors.New("wsclient: listener limit reached")
	// ErrListenerEvicted covers both backpressure eviction and lookups of
	// ids no longer present in the registry.
	ErrListenerEvicted = errors.New("wsclient: listener evicted")
	ErrListenerClosed  = errors.New("wsclient: listener closed")

	// ErrNoMessage is the no-message sentinel returned when a stream read
	// times out or a non-blocking read finds an empty buffer.
	ErrNoMessage = errors.New("wsclient: no message")
	// ErrTimeout reports an unmatched request or wait deadline.
	ErrTimeout = errors.New("wsclient: timed out")

	ErrNilHandler = errors.New("wsclient: nil handler")
	ErrNilMatcher = errors.New("wsclient: nil matcher")
)
