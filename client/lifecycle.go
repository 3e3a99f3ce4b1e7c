package client

import (
	"context"
	"errors"
	"time"

	"github.com/kso-sdk/openevent-client/errs"
	"github.com/kso-sdk/openevent-client/internal/logger"
	"github.com/kso-sdk/openevent-client/internal/metrics"
	"github.com/kso-sdk/openevent-client/pkg/openevent/backoff"
)

// backoffOutcome distinguishes why backoffAndWait returned, so Start
// can tell a deliberate Stop apart from an exhausted retry budget.
type backoffOutcome int

const (
	outcomeRetry backoffOutcome = iota
	outcomeClosed
	outcomeExceeded
)

// Start runs the supervisor loop for the client's whole lifetime,
// alternating connect and wait-for-close per spec.md §4.7. It blocks
// until the client is stopped, a non-retryable error occurs, or the
// reconnect budget is exhausted.
func (c *Client) Start(ctx context.Context) error {
	if c.State() == Closed {
		return &errs.ClientClosedError{}
	}
	c.setState(Connecting)

	for {
		select {
		case <-c.closeCh:
			c.setState(Closed)
			return nil
		default:
		}

		if err := c.connectOnce(ctx); err != nil {
			var clientErr *errs.ClientError
			if errors.As(err, &clientErr) {
				c.setState(Closed)
				return err
			}

			metrics.ConnectErrors.WithLabelValues(errorKind(err)).Inc()
			c.cfg.Logger.Warn("connect failed", logger.Err(err))

			switch c.backoffAndWait(err) {
			case outcomeRetry:
				continue
			case outcomeClosed:
				return nil
			case outcomeExceeded:
				return &errs.ReconnectExceededError{RetryCount: c.currentRetryCount()}
			}
		}

		waitErr := c.waitForClose(ctx)
		c.stopPongTimer()
		c.closeConn()

		if c.State() == Closed {
			return nil
		}

		c.cfg.Logger.Warn("connection lost", logger.Err(waitErr))
		metrics.ConnectErrors.WithLabelValues(errorKind(waitErr)).Inc()

		switch c.backoffAndWait(waitErr) {
		case outcomeRetry:
			continue
		case outcomeClosed:
			return nil
		case outcomeExceeded:
			return &errs.ReconnectExceededError{RetryCount: c.currentRetryCount()}
		}
	}
}

// backoffAndWait consults the reconnect policy with the number of
// retries already made, increments retryCount, and either waits out
// the computed delay or observes a Stop in the meantime.
func (c *Client) backoffAndWait(cause error) backoffOutcome {
	c.retryMu.Lock()
	if !backoff.ShouldReconnect(c.cfg.Reconnect, c.retryCount) {
		c.retryMu.Unlock()
		c.setState(Closed)
		return outcomeExceeded
	}
	c.retryCount++
	retryCount := c.retryCount
	c.retryMu.Unlock()

	c.setState(Reconnecting)
	delay := backoff.Calculate(c.cfg.Reconnect, retryCount, c.rnd)
	c.cfg.Logger.Warn("scheduling reconnect",
		logger.Int("retryCount", retryCount),
		logger.Duration("delay", delay),
		logger.Err(cause))
	metrics.ReconnectAttempts.Inc()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		c.setState(Connecting)
		return outcomeRetry
	case <-c.closeCh:
		c.setState(Closed)
		return outcomeClosed
	}
}

func (c *Client) currentRetryCount() int {
	c.retryMu.Lock()
	defer c.retryMu.Unlock()
	return c.retryCount
}

// waitForClose blocks until the connection closes, ctx is cancelled,
// or Stop is called, returning the error (if any) that ended the
// read loop. A force-close from either cancellation path unblocks the
// underlying ReadMessage call.
func (c *Client) waitForClose(ctx context.Context) error {
	conn := c.getConn()
	if conn == nil {
		return errors.New("client: no active connection")
	}

	errCh := make(chan error, 1)
	go func() {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			c.handleFrame(raw)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-c.closeCh:
		conn.Close()
		return <-errCh
	case <-ctx.Done():
		conn.Close()
		return <-errCh
	}
}

// Stop idempotently tears the client down: it signals the supervisor
// loop, cancels any pending backoff wait, and force-closes the
// socket. Concurrent Stop calls collapse into a single execution.
func (c *Client) Stop() error {
	_, err, _ := c.stopOnce.Do("stop", func() (interface{}, error) {
		c.closeMu.Lock()
		select {
		case <-c.closeCh:
		default:
			close(c.closeCh)
		}
		c.closeMu.Unlock()

		c.stopPongTimer()
		c.closeConn()
		c.setState(Closed)
		return nil, nil
	})
	return err
}

// onPing is installed as the transport's ping callback: every
// server-initiated ping restarts the pong-liveness deadline.
func (c *Client) onPing() {
	c.armPongTimer()
}

// armPongTimer (re)starts the pong-liveness deadline.
func (c *Client) armPongTimer() {
	c.pongMu.Lock()
	defer c.pongMu.Unlock()
	if c.pongTimer != nil {
		c.pongTimer.Stop()
	}
	c.pongTimer = time.AfterFunc(c.cfg.PongTimeout, c.onPongTimeout)
}

func (c *Client) stopPongTimer() {
	c.pongMu.Lock()
	defer c.pongMu.Unlock()
	if c.pongTimer != nil {
		c.pongTimer.Stop()
	}
}

// onPongTimeout force-closes the socket when liveness lapses; the
// supervisor loop's waitForClose then observes the resulting read
// error and drives reconnection.
func (c *Client) onPongTimeout() {
	c.cfg.Logger.Warn("pong timeout; closing connection")
	metrics.PongTimeouts.Inc()
	c.closeConn()
}

// errorKind labels an error for the connect_errors_total metric.
func errorKind(err error) string {
	var clientErr *errs.ClientError
	var serverErr *errs.ServerError
	var connErr *errs.ConnectionError
	switch {
	case errors.As(err, &clientErr):
		return "client_error"
	case errors.As(err, &serverErr):
		return "server_error"
	case errors.As(err, &connErr):
		return "connection_error"
	default:
		return "other"
	}
}
