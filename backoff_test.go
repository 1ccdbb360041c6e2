package wsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffFirstAttemptImmediate(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, time.Duration(0), b.Next(0))
	assert.Equal(t, time.Duration(0), b.Next(1))
}

func TestBackoffDoublesWithoutJitter(t *testing.T) {
	b := Backoff{Base: time.Second, Max: time.Minute, Jitter: 0}

	assert.Equal(t, 1*time.Second, b.Next(2))
	assert.Equal(t, 2*time.Second, b.Next(3))
	assert.Equal(t, 4*time.Second, b.Next(4))
	assert.Equal(t, 8*time.Second, b.Next(5))
}

func TestBackoffCapsAtMax(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second, Jitter: 0}

	assert.Equal(t, 10*time.Second, b.Next(6))
	assert.Equal(t, 10*time.Second, b.Next(20))
	assert.Equal(t, 10*time.Second, b.Next(60), "large attempts stay clamped")
}

func TestBackoffJitterStaysInBand(t *testing.T) {
	b := Backoff{Base: time.Second, Max: time.Minute, Jitter: 0.5}

	for range 200 {
		d := b.Next(4) // nominal 4s, band [2s, 6s]
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 6*time.Second)
	}
}

func TestBackoffJitterNeverNegative(t *testing.T) {
	b := Backoff{Base: time.Second, Max: time.Minute, Jitter: 1}

	for range 200 {
		assert.GreaterOrEqual(t, b.Next(2), time.Duration(0))
	}
}
