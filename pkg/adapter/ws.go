package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsPath         = "/api/ws"
	defaultTimeout = 60 * time.Second
)

// Client sends commands to a server's websocket endpoint. Calls are serialized.
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to addr, which may be host:port, an http(s) URL or a ws(s) URL.
func Dial(ctx context.Context, addr string) (*Client, error) {
	target, err := websocketURL(addr)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn, timeout: defaultTimeout}, nil
}

// Exec sends cmd and waits for the reply.
func (c *Client) Exec(ctx context.Context, cmd string) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := writeWSMessage(c.conn, Message{Cmd: cmd}); err != nil {
		return nil, err
	}
	_ = c.conn.SetReadDeadline(deadline)
	var resp Response
	if err := readWSMessage(c.conn, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

func websocketURL(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = wsPath
	}
	return u.String(), nil
}

func writeWSMessage(conn *websocket.Conn, payload interface{}) error {
	return conn.WriteJSON(payload)
}

func readWSMessage(conn *websocket.Conn, out interface{}) error {
	return conn.ReadJSON(out)
}
