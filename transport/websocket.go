// Package transport carries the live channel to the chat server over a
// WebSocket connection.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"auction-chat/contract"
	"auction-chat/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
	pongTimeout      = 60 * time.Second
	pingInterval     = 30 * time.Second
	maxFrameSize     = 65536
)

type WebsocketTransport struct {
	dialer *websocket.Dialer
	url    string
	log    *slog.Logger
}

func NewWebsocketTransport(url string, log *slog.Logger) *WebsocketTransport {
	return &WebsocketTransport{
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		url:    url,
		log:    log,
	}
}

// Dial opens the channel, placing the credential both as an
// Authorization header and as an auth frame sent right after the
// handshake. The server extracts whichever placement its code path
// looks at first.
func (t *WebsocketTransport) Dial(ctx context.Context, token string) (contract.Conn, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	raw, resp, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}

	conn := newWSConn(raw, t.log)
	if err := conn.WriteEvent(string(protocol.EventAuth), protocol.AuthPayload{Token: token}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// wsConn wraps one gorilla connection. Gorilla allows a single
// concurrent writer, so all writes (frames and pings) go through mu.
type wsConn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	log    *slog.Logger
	done   chan struct{}
	closed sync.Once
}

func newWSConn(conn *websocket.Conn, log *slog.Logger) *wsConn {
	c := &wsConn{conn: conn, log: log, done: make(chan struct{})}

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	go c.keepalive()
	return c
}

func (c *wsConn) keepalive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				c.log.Debug("Ping failed, closing connection", "err", err)
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadEnvelope blocks until the next well-formed frame. A frame that
// fails to parse is logged and skipped; only transport-level read
// failures surface as errors, so a single garbage frame never tears
// down a healthy connection.
func (c *wsConn) ReadEnvelope() (protocol.Envelope, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return protocol.Envelope{}, err
		}
		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			c.log.Warn("Skipping unparsable frame", "err", err)
			continue
		}
		return env, nil
	}
}

func (c *wsConn) WriteEvent(name string, payload any) error {
	env, err := protocol.NewEnvelope(protocol.EventName(name), payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(env)
}

func (c *wsConn) Close() error {
	var err error
	c.closed.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}
