/*
Package wsclient maintains a single resilient WebSocket connection and
fans inbound messages out to many independent consumers.

# Module
  - connection: state machine, reconnect with exponential backoff and jitter
  - outbound: bounded send and command queues, single writer
  - fan-out: listener registry, callback dispatch, pull streams
  - correlate: request/response matching over the inbound flow

# Consumes
  - one upstream WebSocket endpoint

# Produces
  - (message, type) pairs delivered to callbacks, streams and request waiters

Payload contents are never interpreted; framing above the raw message
boundary is a caller concern.
*/
package wsclient
