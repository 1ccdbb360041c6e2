package wsclient

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRequestRoundTrip(t *testing.T) {
	dialer := &fakeDialer{}
	c, err := New(testConfig(dialer))
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	defer c.Stop()
	waitConnected(t, c)

	id, err := c.CreateStream(4)
	require.NoError(t, err)

	got := make(chan Message, 1)
	errs := make(chan error, 1)
	go func() {
		m, err := c.Request(t.Context(), []byte(`{"op":"sub"}`), func(m Message) bool {
			return strings.Contains(string(m.Data), "sub_ok")
		}, time.Second)
		got <- m
		errs <- err
	}()

	require.Eventually(t, func() bool {
		return len(dialer.conn().written()) == 1
	}, time.Second, time.Millisecond, "request payload sent")
	dialer.conn().in <- text(`{"op":"sub_ok"}`)

	select {
	case m := <-got:
		require.NoError(t, <-errs)
		assert.Equal(t, `{"op":"sub_ok"}`, string(m.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("request never resolved")
	}

	// The matched response still reaches listeners.
	m, err := c.GetStreamMessage(id, time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"op":"sub_ok"}`, string(m.Data))
	assert.Equal(t, 0, c.correlator.count())
}

func TestClientRequestTimeout(t *testing.T) {
	dialer := &fakeDialer{}
	c, err := New(testConfig(dialer))
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	defer c.Stop()
	waitConnected(t, c)

	id, err := c.CreateStream(4)
	require.NoError(t, err)

	_, err = c.Request(t.Context(), []byte("ask"), func(m Message) bool {
		return string(m.Data) == "answer"
	}, 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 0, c.correlator.count(), "expired request deregistered")

	// A match arriving after expiry only fans out; nothing is resolved.
	dialer.conn().in <- text("answer")
	m, err := c.GetStreamMessage(id, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "answer", string(m.Data))
	assert.Equal(t, 0, c.correlator.count())
}

func TestClientWaitForMessage(t *testing.T) {
	dialer := &fakeDialer{}
	c, err := New(testConfig(dialer))
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	defer c.Stop()
	waitConnected(t, c)

	got := make(chan Message, 1)
	errs := make(chan error, 1)
	go func() {
		m, err := c.WaitForMessage(t.Context(), func(m Message) bool {
			return string(m.Data) == "event"
		}, time.Second)
		got <- m
		errs <- err
	}()

	require.Eventually(t, func() bool {
		return c.correlator.count() == 1
	}, time.Second, time.Millisecond)
	dialer.conn().in <- text("noise")
	dialer.conn().in <- text("event")

	select {
	case m := <-got:
		require.NoError(t, <-errs)
		assert.Equal(t, "event", string(m.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("wait never resolved")
	}
	assert.Equal(t, uint64(0), c.Metrics().MessagesSent, "wait sends nothing")
}

func TestClientRequestValidation(t *testing.T) {
	dialer := &fakeDialer{}
	c, err := New(testConfig(dialer))
	require.NoError(t, err)

	_, err = c.Request(t.Context(), []byte("x"), nil, time.Second)
	assert.ErrorIs(t, err, ErrNilMatcher)
	_, err = c.Request(t.Context(), []byte("x"), func(Message) bool { return true }, time.Second)
	assert.ErrorIs(t, err, ErrNotRunning)
	_, err = c.WaitForMessage(t.Context(), func(Message) bool { return true }, time.Second)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestClientStreamIteration(t *testing.T) {
	dialer := &fakeDialer{}
	c, err := New(testConfig(dialer))
	require.NoError(t, err)
	require.NoError(t, c.Start(t.Context()))
	defer c.Stop()
	waitConnected(t, c)

	id, err := c.CreateStream(8)
	require.NoError(t, err)

	for _, s := range []string{"a", "b", "c"} {
		dialer.conn().in <- text(s)
	}

	var first []string
	for m := range c.Stream(id) {
		first = append(first, string(m.Data))
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, first)

	// A fresh iteration resumes from the current buffer position.
	for m := range c.Stream(id) {
		assert.Equal(t, "c", string(m.Data))
		break
	}

	c.CloseStream(id)
	count := 0
	for range c.Stream(id) {
		count++
	}
	assert.Equal(t, 0, count, "iteration over a closed stream ends immediately")
}
