package wsclient

import (
	"sync/atomic"
	"time"
)

// metrics collects lightweight atomic counters for the client. Counters are
// monotonically increasing; reads never take a lock.
type metrics struct {
	sent          atomic.Uint64
	received      atomic.Uint64
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	errors        atomic.Uint64
	dropped       atomic.Uint64
	rateLimited   atomic.Uint64
	evictions     atomic.Uint64

	connAttempts   atomic.Uint64
	connSuccesses  atomic.Uint64
	connFailures   atomic.Uint64
	reconnects     atomic.Uint64
	reconnectNanos atomic.Uint64
}

// Snapshot is a point-in-time, read-only view of the client counters.
type Snapshot struct {
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64
	Errors           uint64
	Dropped          uint64
	RateLimited      uint64
	Evictions        uint64

	ConnectionAttempts    uint64
	SuccessfulConnections uint64
	FailedConnections     uint64
	ReconnectAttempts     uint64
	ReconnectTime         time.Duration

	State           State
	ActiveListeners int
	MaxListeners    int
}

func (m *metrics) observeSent(n int) {
	if m == nil {
		return
	}
	m.sent.Add(1)
	m.bytesSent.Add(uint64(n))
}

func (m *metrics) observeReceived(n int) {
	if m == nil {
		return
	}
	m.received.Add(1)
	m.bytesReceived.Add(uint64(n))
}

func (m *metrics) incErrors() {
	if m == nil {
		return
	}
	m.errors.Add(1)
}

func (m *metrics) incDropped() {
	if m == nil {
		return
	}
	m.dropped.Add(1)
}

func (m *metrics) incRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Add(1)
}

func (m *metrics) incEvictions() {
	if m == nil {
		return
	}
	m.evictions.Add(1)
}

func (m *metrics) observeConnAttempt() {
	if m == nil {
		return
	}
	m.connAttempts.Add(1)
}

func (m *metrics) observeConnSuccess() {
	if m == nil {
		return
	}
	m.connSuccesses.Add(1)
}

func (m *metrics) observeConnFailure() {
	if m == nil {
		return
	}
	m.connFailures.Add(1)
	m.errors.Add(1)
}

func (m *metrics) observeReconnect(wait time.Duration) {
	if m == nil {
		return
	}
	m.reconnects.Add(1)
	if wait > 0 {
		m.reconnectNanos.Add(uint64(wait))
	}
}

// snapshot copies the counter values. Each counter is loaded independently;
// no lock spans more than one read.
func (m *metrics) snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		MessagesSent:          m.sent.Load(),
		MessagesReceived:      m.received.Load(),
		BytesSent:             m.bytesSent.Load(),
		BytesReceived:         m.bytesReceived.Load(),
		Errors:                m.errors.Load(),
		Dropped:               m.dropped.Load(),
		RateLimited:           m.rateLimited.Load(),
		Evictions:             m.evictions.Load(),
		ConnectionAttempts:    m.connAttempts.Load(),
		SuccessfulConnections: m.connSuccesses.Load(),
		FailedConnections:     m.connFailures.Load(),
		ReconnectAttempts:     m.reconnects.Load(),
		ReconnectTime:         time.Duration(m.reconnectNanos.Load()),
	}
}
