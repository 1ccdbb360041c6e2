package wsclient

// MessageType represents a WebSocket message type.
// Values match RFC 6455 opcodes where applicable.
type MessageType uint8

const (
	// MessageText is a text data frame.
	MessageText MessageType = 1
	// MessageBinary is a binary data frame.
	MessageBinary MessageType = 2
	// MessageClose is a close control frame.
	MessageClose MessageType = 8
	// MessagePing is a ping control frame.
	MessagePing MessageType = 9
	// MessagePong is a pong control frame.
	MessagePong MessageType = 10
)

func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	case MessageClose:
		return "close"
	case MessagePing:
		return "ping"
	case MessagePong:
		return "pong"
	default:
		return "unknown"
	}
}

// Message is one inbound payload plus its type tag. The payload is shared
// read-only across consumers and must not be mutated.
type Message struct {
	Data []byte
	Type MessageType
}

// Matcher is a pure predicate over inbound messages. It is invoked
// synchronously on the delivery path and must not block or perform I/O.
type Matcher func(Message) bool

// Handler consumes one delivered message.
type Handler func(Message)

// BackpressurePolicy defines buffer behavior when full.
type BackpressurePolicy uint8

const (
	// DropOldest discards the oldest buffered item to make room.
	DropOldest BackpressurePolicy = iota
	// DropNewest discards the incoming item and reports it dropped.
	DropNewest
	// EvictConsumer removes the overflowing listener from the registry.
	// On the outbound queue, where no consumer exists, it degrades to
	// DropOldest.
	EvictConsumer
)

func (p BackpressurePolicy) String() string {
	switch p {
	case DropOldest:
		return "drop_oldest"
	case DropNewest:
		return "drop_newest"
	case EvictConsumer:
		return "evict_consumer"
	default:
		return "unknown"
	}
}

// ExecutionMode selects how a registered callback runs.
type ExecutionMode uint8

const (
	// ModeAsync runs the callback on a goroutine dedicated to its listener.
	ModeAsync ExecutionMode = iota
	// ModeThreaded runs the callback under a bounded worker-slot pool so
	// blocking handlers cannot stall delivery to other listeners.
	ModeThreaded
	// ModeSync runs the callback inline with fan-out, before the next
	// message is delivered anywhere. Only for trivial non-blocking handlers.
	ModeSync
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeAsync:
		return "async"
	case ModeThreaded:
		return "threaded"
	case ModeSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Handle identifies a callback registration.
type Handle string

// StreamID identifies an open pull stream.
type StreamID string
