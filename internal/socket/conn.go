package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn is one open socket.
type Conn interface {
	// Emit writes an event. Safe for concurrent use.
	Emit(name string, data any) error
	// Next blocks until the next inbound event. Only one goroutine may call it.
	Next() (Event, error)
	Close() error
}

// Dialer opens sockets to the origin.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// EndpointURL derives the socket endpoint from the origin base URL.
func EndpointURL(origin string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("origin %q: unsupported scheme %q", origin, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket"
	u.RawQuery = ""
	return u.String(), nil
}

// WSDialer dials a gorilla websocket.
type WSDialer struct {
	URL   string
	Token string
}

// NewDialer returns a dialer for the origin's socket endpoint.
func NewDialer(origin, token string) (*WSDialer, error) {
	endpoint, err := EndpointURL(origin)
	if err != nil {
		return nil, err
	}
	return &WSDialer{URL: endpoint, Token: token}, nil
}

// Dial implements Dialer.
func (d *WSDialer) Dial(ctx context.Context) (Conn, error) {
	header := http.Header{}
	if d.Token != "" {
		header.Set("Authorization", "Bearer "+d.Token)
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
	ws, resp, err := dialer.DialContext(ctx, d.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", d.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", d.URL, err)
	}
	return Wrap(ws), nil
}

// WSConn adapts a gorilla connection to Conn.
type WSConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Wrap adapts an established websocket. Servers use it on upgraded connections.
func Wrap(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

// Emit implements Conn.
func (c *WSConn) Emit(name string, data any) error {
	ev, err := NewEvent(name, data)
	if err != nil {
		return err
	}
	return c.WriteEvent(ev)
}

// WriteEvent writes an already encoded envelope.
func (c *WSConn) WriteEvent(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("emit %s: %w", ev.Name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return fmt.Errorf("emit %s: %w", ev.Name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("emit %s: %w", ev.Name, err)
	}
	return nil
}

// Ping sends a keepalive control frame.
func (c *WSConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Next implements Conn.
func (c *WSConn) Next() (Event, error) {
	var ev Event
	if err := c.ws.ReadJSON(&ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Close sends a close frame and closes the connection.
func (c *WSConn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.ws.Close()
}

// IsClosed reports whether err means the peer went away rather than a
// protocol failure.
func IsClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
