package wsclient

type callbackOptions struct {
	filter  Matcher
	msgType MessageType
	mode    ExecutionMode
	buffer  int
}

// CallbackOption configures one callback registration.
type CallbackOption func(*callbackOptions)

// WithFilter restricts delivery to messages the predicate accepts. Filtered
// messages never count against the listener buffer.
func WithFilter(f Matcher) CallbackOption {
	return func(o *callbackOptions) { o.filter = f }
}

// WithMessageType restricts delivery to one message type.
func WithMessageType(t MessageType) CallbackOption {
	return func(o *callbackOptions) { o.msgType = t }
}

// WithExecutionMode overrides the client's default execution mode.
func WithExecutionMode(m ExecutionMode) CallbackOption {
	return func(o *callbackOptions) { o.mode = m }
}

// WithBufferSize overrides the listener buffer capacity.
func WithBufferSize(n int) CallbackOption {
	return func(o *callbackOptions) { o.buffer = n }
}

// RegisterCallback attaches a handler to the inbound flow and returns an
// opaque handle. Registration fails once the listener limit is reached.
func (c *Client) RegisterCallback(h Handler, opts ...CallbackOption) (Handle, error) {
	if h == nil {
		return "", ErrNilHandler
	}
	if err := c.closedErr(); err != nil {
		return "", err
	}

	o := callbackOptions{
		mode:   c.cfg.CallbackMode,
		buffer: c.cfg.ListenerBufferSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	l := newListener(o.buffer, c.cfg.Backpressure)
	l.filter = o.filter
	l.msgType = o.msgType
	l.handler = h
	l.mode = o.mode

	if err := c.registry.add(l); err != nil {
		return "", err
	}
	c.dispatcher.start(l)
	c.logger.Debugf("wsclient: callback %s registered, mode %s", l.id, l.mode)
	return Handle(l.id), nil
}

// UnregisterCallback removes a callback registration. Unregistering an
// already-removed handle is a no-op.
func (c *Client) UnregisterCallback(h Handle) {
	if l := c.registry.remove(string(h)); l != nil {
		l.close()
		c.logger.Debugf("wsclient: callback %s unregistered", l.id)
	}
}
