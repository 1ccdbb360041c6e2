package wsclient

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
)

// Conn is the minimal transport surface the client drives. Read blocks for
// the next data message; control frames are handled below this boundary.
type Conn interface {
	Read() (Message, error)
	Write(msgType MessageType, payload []byte) error
	Ping() error
	Close() error
}

// Dialer establishes new connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

const writeTimeout = 10 * time.Second

// compressionDowngradeAfter is the consecutive-handshake-failure threshold
// used when the client retries forever and no attempt budget exists to halve.
const compressionDowngradeAfter = 2

type gorillaDialer struct {
	cfg    *Config
	logger Logger

	// fails is only touched by the run loop, which dials serially.
	fails          int
	downgradeAfter int
	compressionOff bool
}

func newGorillaDialer(cfg *Config, logger Logger) *gorillaDialer {
	// Compression is disabled once half the allowed attempts fail, leaving
	// the rest to establish an uncompressed session.
	after := compressionDowngradeAfter
	if cfg.ReconnectAttempts > 1 {
		after = cfg.ReconnectAttempts / 2
	}
	return &gorillaDialer{cfg: cfg, logger: logger, downgradeAfter: after}
}

func (d *gorillaDialer) Dial(ctx context.Context) (Conn, error) {
	compress := d.cfg.Compression > 0 && !d.compressionOff

	wd := websocket.Dialer{
		HandshakeTimeout:  d.cfg.ConnectTimeout,
		EnableCompression: compress,
	}
	if strings.HasPrefix(d.cfg.URI, "wss://") {
		wd.TLSClientConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: d.cfg.InsecureSkipVerify,
		}
	}

	conn, resp, err := wd.DialContext(ctx, d.cfg.URI, d.cfg.Headers)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		d.fails++
		if compress && d.fails >= d.downgradeAfter {
			d.compressionOff = true
			d.logger.Warnf("wsclient: disabling compression after %d failed handshakes", d.fails)
		}
		return nil, errors.Wrapf(err, "dial %s", d.cfg.URI)
	}
	d.fails = 0

	if compress {
		if err := conn.SetCompressionLevel(d.cfg.Compression); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "set compression level")
		}
	}

	gc := &gorillaConn{
		conn:        conn,
		receiveWait: d.cfg.ReceiveTimeout,
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(d.cfg.ReceiveTimeout))
	})
	return gc, nil
}

type gorillaConn struct {
	conn        *websocket.Conn
	receiveWait time.Duration
}

func (c *gorillaConn) Read() (Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.receiveWait)); err != nil {
		return Message{}, err
	}
	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		return Message{}, err
	}
	return Message{Data: data, Type: MessageType(msgType)}, nil
}

func (c *gorillaConn) Write(msgType MessageType, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(int(msgType), payload)
}

func (c *gorillaConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (c *gorillaConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
