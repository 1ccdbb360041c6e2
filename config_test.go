package wsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URI: "wss://example.invalid/stream"}
	cfg.normalize()

	assert.Equal(t, 30*time.Second, cfg.Heartbeat)
	assert.Equal(t, 60*time.Second, cfg.ReceiveTimeout)
	assert.Equal(t, 20*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.Equal(t, 60*time.Second, cfg.BackoffMax)
	assert.Equal(t, 5, cfg.ReconnectAttempts)
	assert.Equal(t, 1024, cfg.SendQueueSize)
	assert.Equal(t, 64, cfg.CommandQueueSize)
	assert.Equal(t, 1000, cfg.MaxListeners)
	assert.Equal(t, 100, cfg.ListenerBufferSize)
	assert.Equal(t, 8, cfg.ThreadPoolWorkers)
	assert.Equal(t, DropOldest, cfg.Backpressure)
	assert.Equal(t, ModeAsync, cfg.CallbackMode)
	assert.NotNil(t, cfg.Logger)
}

func TestConfigReconnectForeverPreserved(t *testing.T) {
	cfg := Config{URI: "ws://x", ReconnectAttempts: -1}
	cfg.normalize()
	assert.Equal(t, -1, cfg.ReconnectAttempts)
}

func TestConfigValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
	}{
		{"missing uri", Config{}},
		{"http scheme", Config{URI: "http://example.invalid"}},
		{"jitter above one", Config{URI: "ws://x", JitterFactor: 1.5}},
		{"jitter negative", Config{URI: "ws://x", JitterFactor: -0.1}},
		{"compression out of range", Config{URI: "ws://x", Compression: 10}},
		{"unknown policy", Config{URI: "ws://x", Backpressure: BackpressurePolicy(9)}},
		{"unknown mode", Config{URI: "ws://x", CallbackMode: ExecutionMode(9)}},
		{"heartbeat without payload", Config{URI: "ws://x", EnableAppHeartbeat: true}},
		{"negative receive rate", Config{URI: "ws://x", ReceiveRate: -1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigValidAccepted(t *testing.T) {
	c, err := New(Config{
		URI:          "wss://example.invalid/stream",
		JitterFactor: 0.5,
		Compression:  6,
		Backpressure: EvictConsumer,
		CallbackMode: ModeThreaded,
	})
	require.NoError(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConfigBackoff(t *testing.T) {
	cfg := Config{
		URI:          "ws://x",
		BackoffBase:  2 * time.Second,
		BackoffMax:   30 * time.Second,
		JitterFactor: 0.25,
	}
	cfg.normalize()
	b := cfg.backoff()
	assert.Equal(t, 2*time.Second, b.Base)
	assert.Equal(t, 30*time.Second, b.Max)
	assert.Equal(t, 0.25, b.Jitter)
}
