package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

func TestDialAndExchangeTextFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, append([]byte("echo: "), data...)))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, resp, err := Dial(ctx, wsURL, nil, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", string(data))
}

func TestDialSendsHandshakeHeaders(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Kso-Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	headers := http.Header{}
	headers.Set("X-Kso-Authorization", "KSO-1 app:sig")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := Dial(ctx, wsURL, headers, 5*time.Second)
	require.NoError(t, err)
	conn.Close()

	assert.Equal(t, "KSO-1 app:sig", gotAuth)
}

func TestDialReturnsResponseOnRejectedHandshake(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, resp, err := Dial(ctx, wsURL, nil, 5*time.Second)
	assert.Error(t, err)
	assert.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOnPingRepliesPongAndNotifies(t *testing.T) {
	pongReceived := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.SetPongHandler(func(string) error {
			pongReceived <- struct{}{}
			return nil
		})
		require.NoError(t, conn.WriteMessage(websocket.PingMessage, []byte("hi")))

		// Keep the read loop alive long enough to process the pong.
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		conn.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := Dial(ctx, wsURL, nil, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	var pingSeen int32
	conn.OnPing(func() { atomic.StoreInt32(&pingSeen, 1) })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	go conn.ReadMessage()

	select {
	case <-pongReceived:
	case <-time.After(2 * time.Second):
		t.Fatal("server never received pong reply")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&pingSeen))
}
