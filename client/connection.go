package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/kso-sdk/openevent-client/errs"
	"github.com/kso-sdk/openevent-client/internal/logger"
	"github.com/kso-sdk/openevent-client/pkg/openevent/transport"
	"github.com/kso-sdk/openevent-client/pkg/version"
)

// connectOnce makes a single handshake attempt against c.cfg.Endpoint,
// per spec.md §4.5. On success it installs the connection, resets
// receivedGoAway and retryCount, and arms the pong-liveness timer. It
// never retries; the caller's reconnect loop owns retry policy.
func (c *Client) connectOnce(ctx context.Context) error {
	endpoint := c.cfg.Endpoint

	u, err := url.Parse(endpoint)
	if err != nil {
		return &errs.ClientError{StatusCode: 0, Message: fmt.Sprintf("invalid endpoint: %v", err)}
	}
	uri := u.Path
	if u.RawQuery != "" {
		uri += "?" + u.RawQuery
	}

	dateHeader, authHeader := c.signer.HandshakeHeaders(uri, time.Now())

	headers := http.Header{}
	headers.Set("X-Kso-Date", dateHeader)
	headers.Set("X-Kso-Authorization", authHeader)
	headers.Set("User-Agent", version.UserAgent())
	if c.cfg.AckMode {
		headers.Set("X-Ack-Mode", "required")
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.WriteTimeout)
	defer cancel()

	conn, resp, dialErr := transport.Dial(dialCtx, endpoint, headers, c.cfg.WriteTimeout)
	if dialErr != nil {
		return translateConnectError(dialErr, resp)
	}

	conn.OnPing(c.onPing)
	c.setConn(conn)

	connID := uuid.NewString()
	c.setConnID(connID)

	c.resetRetryState()
	c.armPongTimer()
	c.setState(Connected)

	c.cfg.Logger.Info("connected", logger.String("endpoint", endpoint), logger.String("connId", connID))
	return nil
}

// translateConnectError maps a handshake failure to the error kinds
// spec.md §4.5 enumerates.
func translateConnectError(dialErr error, resp *http.Response) error {
	if resp == nil {
		var netErr net.Error
		if errors.As(dialErr, &netErr) && netErr.Timeout() {
			return &errs.ServerError{StatusCode: 0, Message: "Connection timeout"}
		}
		if errors.Is(dialErr, context.DeadlineExceeded) {
			return &errs.ServerError{StatusCode: 0, Message: "Connection timeout"}
		}
		return &errs.ConnectionError{Cause: dialErr}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &errs.ClientError{StatusCode: resp.StatusCode, Message: "Authentication failed"}
	case http.StatusForbidden:
		return &errs.ClientError{StatusCode: resp.StatusCode, Message: "Forbidden"}
	case http.StatusTooManyRequests:
		return &errs.ServerError{StatusCode: resp.StatusCode, Message: "Too many connections"}
	default:
		return &errs.ServerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)}
	}
}
