package wsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(s string) *envelope {
	return &envelope{msgType: MessageText, payload: []byte(s), enqueued: time.Now()}
}

func drainPayloads(q *sendQueue) []string {
	var out []string
	for {
		select {
		case e := <-q.ch:
			out = append(out, string(e.payload))
		default:
			return out
		}
	}
}

func TestSendQueueDropOldest(t *testing.T) {
	m := &metrics{}
	q := newSendQueue(2, DropOldest, m, NopLogger())

	require.NoError(t, q.push(env("A")))
	require.NoError(t, q.push(env("B")))
	require.NoError(t, q.push(env("C")))

	assert.Equal(t, []string{"B", "C"}, drainPayloads(q))
	assert.Equal(t, uint64(1), m.dropped.Load())
}

func TestSendQueueDropNewest(t *testing.T) {
	m := &metrics{}
	q := newSendQueue(2, DropNewest, m, NopLogger())

	require.NoError(t, q.push(env("A")))
	require.NoError(t, q.push(env("B")))
	assert.ErrorIs(t, q.push(env("C")), ErrMessageDropped)

	assert.Equal(t, []string{"A", "B"}, drainPayloads(q))
	assert.Equal(t, uint64(1), m.dropped.Load())
}

func TestSendQueueEvictConsumerDegradesToDropOldest(t *testing.T) {
	q := newSendQueue(2, EvictConsumer, &metrics{}, NopLogger())

	require.NoError(t, q.push(env("A")))
	require.NoError(t, q.push(env("B")))
	require.NoError(t, q.push(env("C")))

	assert.Equal(t, []string{"B", "C"}, drainPayloads(q))
}

func TestSendQueueNeverExceedsCapacity(t *testing.T) {
	for _, policy := range []BackpressurePolicy{DropOldest, DropNewest, EvictConsumer} {
		q := newSendQueue(3, policy, &metrics{}, NopLogger())
		for i := 0; i < 10; i++ {
			_ = q.push(env("x"))
		}
		assert.Equal(t, 3, q.len(), "policy %s", policy)
	}
}

func TestSendQueueDrain(t *testing.T) {
	q := newSendQueue(4, DropOldest, &metrics{}, NopLogger())
	require.NoError(t, q.push(env("A")))
	require.NoError(t, q.push(env("B")))
	q.drain()
	assert.Equal(t, 0, q.len())
}
