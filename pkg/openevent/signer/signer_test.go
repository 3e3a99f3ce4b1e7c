package signer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandshakeHeadersFormat(t *testing.T) {
	s := New("app-1", "secret-1")
	now := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)

	date, auth := s.HandshakeHeaders("/v7/event/ws", now)

	assert.Equal(t, "Thu, 30 Jul 2026 12:00:00 GMT", date)
	assert.Contains(t, auth, Scheme+" app-1:")

	// Recomputing with the same inputs must be deterministic.
	date2, auth2 := s.HandshakeHeaders("/v7/event/ws", now)
	assert.Equal(t, date, date2)
	assert.Equal(t, auth, auth2)
}

func TestHandshakeHeadersVaryWithSecret(t *testing.T) {
	now := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)
	_, authA := New("app-1", "secret-1").HandshakeHeaders("/v7/event/ws", now)
	_, authB := New("app-1", "secret-2").HandshakeHeaders("/v7/event/ws", now)
	assert.NotEqual(t, authA, authB)
}

func TestVerifyEventRoundTrip(t *testing.T) {
	s := New("accessKey123", "topSecret")
	sig := s.SignEvent("kso.app_chat.message", "nonce-1", 1690000000, "cGF5bG9hZA==")

	assert.True(t, s.VerifyEvent("kso.app_chat.message", "nonce-1", 1690000000, "cGF5bG9hZA==", sig))
}

func TestVerifyEventRejectsTamperedFields(t *testing.T) {
	s := New("accessKey123", "topSecret")
	sig := s.SignEvent("kso.app_chat.message", "nonce-1", 1690000000, "cGF5bG9hZA==")

	assert.False(t, s.VerifyEvent("kso.app_chat.message", "nonce-2", 1690000000, "cGF5bG9hZA==", sig))
	assert.False(t, s.VerifyEvent("kso.app_chat.message", "nonce-1", 1690000001, "cGF5bG9hZA==", sig))
	assert.False(t, s.VerifyEvent("kso.app_chat.message", "nonce-1", 1690000000, "dGFtcGVyZWQ=", sig))
}

func TestVerifyEventRejectsWrongLengthSignature(t *testing.T) {
	s := New("accessKey123", "topSecret")
	assert.False(t, s.VerifyEvent("kso.app_chat.message", "nonce-1", 1690000000, "cGF5bG9hZA==", "short"))
}

func TestVerifyEventRejectsWrongSecret(t *testing.T) {
	s := New("accessKey123", "topSecret")
	sig := s.SignEvent("kso.app_chat.message", "nonce-1", 1690000000, "cGF5bG9hZA==")

	other := New("accessKey123", "wrongSecret")
	assert.False(t, other.VerifyEvent("kso.app_chat.message", "nonce-1", 1690000000, "cGF5bG9hZA==", sig))
}
