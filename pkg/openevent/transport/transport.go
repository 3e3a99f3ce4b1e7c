// Package transport wraps gorilla/websocket with the framing the
// open-event client needs: a signed handshake dial, text-message
// read/write, and a server-ping handler that replies pong and reports
// liveness to the caller. The client never sends its own ping frames.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kso-sdk/openevent-client/errs"
)

// Conn is a single WebSocket connection, owned exclusively by the
// lifecycle controller for its lifetime.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	onPing func()
}

// Dial opens a WebSocket connection to endpoint with the given
// request headers (the KSO-1 handshake headers), failing with a
// *errs.ConnectionError on any dial-level failure. The caller
// inspects resp.StatusCode when err is non-nil and resp is non-nil to
// distinguish a rejected handshake (HTTP 4xx/5xx) from a network
// failure.
func Dial(ctx context.Context, endpoint string, headers http.Header, dialTimeout time.Duration) (*Conn, *http.Response, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: dialTimeout,
	}

	ws, resp, err := dialer.DialContext(ctx, endpoint, headers)
	if err != nil {
		if resp != nil {
			return nil, resp, err
		}
		return nil, nil, &errs.ConnectionError{Cause: fmt.Errorf("transport: dial %s: %w", endpoint, err)}
	}

	return &Conn{ws: ws}, resp, nil
}

// OnPing installs the callback invoked whenever a server ping frame
// is received, before the pong reply is written. The lifecycle
// controller uses it to reset the pong-liveness deadline.
func (c *Conn) OnPing(fn func()) {
	c.onPing = fn
	c.ws.SetPingHandler(func(appData string) error {
		if c.onPing != nil {
			c.onPing()
		}
		return c.writeControl(websocket.PongMessage, []byte(appData))
	})
}

// SetReadDeadline bounds the next ReadMessage call.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

// ReadMessage blocks for the next text/binary frame. Control frames
// (ping/close) are handled internally by gorilla and do not surface
// here.
func (c *Conn) ReadMessage() (messageType int, data []byte, err error) {
	return c.ws.ReadMessage()
}

// WriteMessage sends a text/binary frame, serialized against
// concurrent writers (gorilla/websocket permits only one writer at a
// time per connection).
func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

func (c *Conn) writeControl(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	deadline := time.Now().Add(5 * time.Second)
	return c.ws.WriteControl(messageType, data, deadline)
}

// Close sends a normal-closure control frame, then closes the
// underlying TCP connection. It returns the close-frame write error if
// there was one, otherwise the TCP close error; callers that only care
// whether the socket is gone can ignore the result.
func (c *Conn) Close() error {
	writeErr := c.writeControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	closeErr := c.ws.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// IsUnexpectedClose reports whether err represents a close condition
// other than a normal or going-away closure.
func IsUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
