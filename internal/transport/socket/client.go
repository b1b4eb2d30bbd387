// Package socket implements the bridge Transport over a websocket
// connection to the order backend.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/bridge"
)

const handshakeTimeout = 10 * time.Second

// Client is a websocket implementation of bridge.Transport.
// Emit is safe for concurrent use; Next must be called from a single reader.
type Client struct {
	url string

	mu     sync.Mutex // guards conn and writes
	conn   *websocket.Conn
	closed bool
}

// New creates a Client for the given ws:// or wss:// URL. No connection is
// made until Dial.
func New(url string) *Client {
	return &Client{url: url}
}

// Dial establishes the websocket connection, replacing any previous one.
func (c *Client) Dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		conn.Close()
		return errors.New("socket: client closed")
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	log.Debug().Str("url", c.url).Msg("socket connected")
	return nil
}

// Emit sends an outbound control event as a JSON envelope.
func (c *Client) Emit(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("socket: not connected")
	}

	env := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data}
	return c.conn.WriteJSON(env)
}

// Next blocks until the next inbound envelope. Frames that are not valid
// envelopes are skipped; connection errors are returned to the caller, which
// owns reconnection.
func (c *Client) Next() (bridge.Envelope, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return bridge.Envelope{}, errors.New("socket: not connected")
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return bridge.Envelope{}, err
		}
		var env bridge.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			log.Debug().Msg("socket: non-envelope frame, skipping")
			continue
		}
		return env, nil
	}
}

// Close shuts the connection down and unblocks any pending Next.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
