// Package errs defines the error taxonomy used across the open-event
// client: connection failures, per-event drops, and lifecycle
// violations. Every type here implements error, and the ones carrying a
// Cause also implement Unwrap, so callers can use errors.As/errors.Is
// instead of string matching.
package errs

import "fmt"

// ClientError is a non-retryable failure surfaced from Start. The
// lifecycle controller never attempts to reconnect after one of these.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error (status %d): %s", e.StatusCode, e.Message)
}

// ServerError is a retryable failure: the lifecycle controller backs
// off and reconnects if policy allows, otherwise Start returns a
// *ReconnectExceededError.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
}

// SignatureError wraps a per-event signature verification failure.
// The event is dropped; no ACK is sent; the connection is unaffected.
type SignatureError struct {
	Cause error
}

func (e *SignatureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signature verification failed: %v", e.Cause)
	}
	return "signature verification failed"
}

func (e *SignatureError) Unwrap() error { return e.Cause }

// DecryptError wraps a per-event decryption failure. The event is
// dropped; no ACK is sent; the connection is unaffected.
type DecryptError struct {
	Cause error
}

func (e *DecryptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decrypt failed: %v", e.Cause)
	}
	return "decrypt failed"
}

func (e *DecryptError) Unwrap() error { return e.Cause }

// ConnectionError is a generic transport failure while dialing, when
// no HTTP response was received. It drives a reconnect attempt.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %v", e.Cause)
	}
	return "connection error"
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// HandlerNotSetError is a construction-time configuration error
// (config.New, ClientConfig.Validate, client.New): neither a Handler
// nor a Dispatcher was configured, or both were.
type HandlerNotSetError struct{}

func (e *HandlerNotSetError) Error() string {
	return "exactly one of handler or dispatcher must be configured"
}

// ReconnectExceededError is returned when the backoff policy gives up
// after maxRetry attempts.
type ReconnectExceededError struct {
	RetryCount int
}

func (e *ReconnectExceededError) Error() string {
	return fmt.Sprintf("reconnect attempts exceeded after %d retries", e.RetryCount)
}

// ClientClosedError is returned by Start when Stop has already been
// called.
type ClientClosedError struct{}

func (e *ClientClosedError) Error() string { return "client is closed" }

// AlreadyConnectedError guards re-entry: connecting while a WebSocket
// already exists is a programmer error.
type AlreadyConnectedError struct{}

func (e *AlreadyConnectedError) Error() string { return "client already has an open connection" }

// Retryable reports whether err should trigger a reconnect attempt
// rather than propagate out of Start.
func Retryable(err error) bool {
	switch err.(type) {
	case *ServerError, *ConnectionError:
		return true
	default:
		return false
	}
}
