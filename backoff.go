package wsclient

import (
	"math"
	"math/rand"
	"time"
)

// Backoff defines reconnect delay behavior.
type Backoff struct {
	// Base is the delay scale for the first retry.
	Base time.Duration
	// Max caps the un-jittered delay.
	Max time.Duration
	// Jitter randomizes the delay by a uniform factor in [1-Jitter, 1+Jitter].
	Jitter float64
}

// DefaultBackoff provides conservative reconnect defaults.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:   time.Second,
		Max:    60 * time.Second,
		Jitter: 0.5,
	}
}

// Next returns the delay before the given attempt (1-based). The first
// attempt retries immediately; subsequent delays double up to Max.
func (b Backoff) Next(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	max := b.Max
	if max <= 0 {
		max = 60 * time.Second
	}

	wait := float64(base) * math.Pow(2, float64(attempt-2))
	if wait > float64(max) {
		wait = float64(max)
	}

	if b.Jitter > 0 {
		jitter := b.Jitter
		if jitter > 1 {
			jitter = 1
		}
		wait *= 1 - jitter + rand.Float64()*2*jitter
	}
	if wait < 0 {
		return 0
	}
	return time.Duration(wait)
}
