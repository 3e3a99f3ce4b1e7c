// Package client implements the open-event client's connection
// lifecycle and message pipeline: the reconnecting WebSocket
// supervisor described in spec.md §4.7, wired to the Signer, Cipher,
// Backoff, and Dispatcher components.
package client

import (
	"math/rand"
	"sync"
	"time"

	"github.com/kso-sdk/openevent-client/config"
	"github.com/kso-sdk/openevent-client/errs"
	"github.com/kso-sdk/openevent-client/internal/metrics"
	"github.com/kso-sdk/openevent-client/pkg/openevent/dispatcher"
	"github.com/kso-sdk/openevent-client/pkg/openevent/event"
	"github.com/kso-sdk/openevent-client/pkg/openevent/signer"
	"github.com/kso-sdk/openevent-client/pkg/openevent/transport"

	"golang.org/x/sync/singleflight"
)

// State is one of the connection lifecycle's five states.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// eventSink is satisfied by *dispatcher.Dispatcher; it lets the
// client treat a typed dispatcher and a bare handler uniformly.
type eventSink interface {
	Handle(e event.Event) error
}

// handlerSink adapts a config.EventHandler into an eventSink.
type handlerSink struct {
	fn config.EventHandler
}

func (h handlerSink) Handle(e event.Event) error {
	return h.fn(e)
}

// Client is a single open-event connection: one WebSocket at a time,
// reconnected automatically per its ReconnectConfig until Stop is
// called or the retry budget is exhausted.
type Client struct {
	cfg    *config.ClientConfig
	signer signer.Signer
	sink   eventSink

	stateMu sync.Mutex
	state   State

	connMu sync.Mutex
	conn   *transport.Conn
	connID string

	retryMu        sync.Mutex
	retryCount     int
	receivedGoAway bool

	pongMu    sync.Mutex
	pongTimer *time.Timer

	rnd *rand.Rand

	closeCh  chan struct{}
	closeMu  sync.Mutex
	stopOnce singleflight.Group
}

// New builds a Client from cfg. cfg must already satisfy
// cfg.Validate() (config.New does this); New type-asserts
// cfg.Dispatcher to *dispatcher.Dispatcher, returning
// *errs.HandlerNotSetError if it was set to something else.
func New(cfg *config.ClientConfig, seed int64) (*Client, error) {
	sink, err := resolveSink(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		signer:  signer.New(cfg.AppID, cfg.AppSecret),
		sink:    sink,
		state:   Disconnected,
		rnd:     rand.New(rand.NewSource(seed)),
		closeCh: make(chan struct{}),
	}, nil
}

func resolveSink(cfg *config.ClientConfig) (eventSink, error) {
	if cfg.Dispatcher != nil {
		d, ok := cfg.Dispatcher.(*dispatcher.Dispatcher)
		if !ok {
			return nil, &errs.HandlerNotSetError{}
		}
		return d, nil
	}
	if cfg.Handler != nil {
		return handlerSink{fn: cfg.Handler}, nil
	}
	return nil, &errs.HandlerNotSetError{}
}

// State reports the client's current lifecycle state.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()

	for st := Disconnected; st <= Closed; st++ {
		v := 0.0
		if st == s {
			v = 1
		}
		metrics.ConnectionState.WithLabelValues(st.String()).Set(v)
	}
}

// Stats is a point-in-time snapshot of the client's health, exposed
// for callers that want a cheap alternative to scraping Prometheus.
type Stats struct {
	State          State
	RetryCount     int
	ReceivedGoAway bool
	AutoReconnect  bool
}

// Stats returns a snapshot of the client's current state.
func (c *Client) Stats() Stats {
	c.retryMu.Lock()
	retryCount, receivedGoAway := c.retryCount, c.receivedGoAway
	c.retryMu.Unlock()

	return Stats{
		State:          c.State(),
		RetryCount:     retryCount,
		ReceivedGoAway: receivedGoAway,
		AutoReconnect:  c.cfg.Reconnect.AutoReconnect,
	}
}

func (c *Client) getConn() *transport.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}

func (c *Client) setConn(conn *transport.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

func (c *Client) setConnID(id string) {
	c.connMu.Lock()
	c.connID = id
	c.connMu.Unlock()
}

func (c *Client) getConnID() string {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connID
}

func (c *Client) closeConn() {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (c *Client) hasReceivedGoAway() bool {
	c.retryMu.Lock()
	defer c.retryMu.Unlock()
	return c.receivedGoAway
}

func (c *Client) setReceivedGoAway(v bool) {
	c.retryMu.Lock()
	c.receivedGoAway = v
	c.retryMu.Unlock()
}

func (c *Client) resetRetryState() {
	c.retryMu.Lock()
	c.retryCount = 0
	c.receivedGoAway = false
	c.retryMu.Unlock()
}

func (c *Client) disableReconnect() {
	c.cfg.Reconnect.AutoReconnect = false
}

func (c *Client) setReconnectBaseInterval(d time.Duration) {
	c.cfg.Reconnect.BaseInterval = d
}
