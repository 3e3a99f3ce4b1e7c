// Copyright (C) 2025 kso-sdk
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config holds the configuration surface of the open-event
// client: credentials, endpoint, reconnect policy, timeouts, and the
// event sink (a Handler or a Dispatcher, never both).
package config

import (
	"fmt"
	"time"

	"github.com/kso-sdk/openevent-client/errs"
	"github.com/kso-sdk/openevent-client/internal/logger"
)

// DefaultEndpoint is the vendor's production open-event endpoint.
const DefaultEndpoint = "wss://openapi.wps.cn/v7/event/ws"

// ReconnectConfig governs the exponential-backoff reconnect policy.
type ReconnectConfig struct {
	AutoReconnect bool
	BaseInterval  time.Duration
	MaxInterval   time.Duration
	Multiplier    float64
	MaxRetry      int // -1 = unlimited
	Jitter        float64
}

func defaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		AutoReconnect: true,
		BaseInterval:  1000 * time.Millisecond,
		MaxInterval:   60000 * time.Millisecond,
		Multiplier:    2.0,
		MaxRetry:      -1,
		Jitter:        0.2,
	}
}

// Validate checks the reconnect policy's internal consistency (spec.md §3).
func (c ReconnectConfig) Validate() error {
	if c.BaseInterval <= 0 {
		return fmt.Errorf("reconnect: baseInterval must be > 0")
	}
	if c.MaxInterval < c.BaseInterval {
		return fmt.Errorf("reconnect: maxInterval must be >= baseInterval")
	}
	if c.Multiplier <= 1.0 {
		return fmt.Errorf("reconnect: multiplier must be > 1.0")
	}
	if c.MaxRetry < -1 {
		return fmt.Errorf("reconnect: maxRetry must be -1 or >= 0")
	}
	if c.Jitter < 0.0 || c.Jitter > 1.0 {
		return fmt.Errorf("reconnect: jitter must be within [0.0, 1.0]")
	}
	return nil
}

// EventHandler is the untyped event sink: one callback handling every
// delivered event. Mutually exclusive with Dispatcher.
type EventHandler func(event interface{}) error

// ClientConfig gathers the configuration surface enumerated in
// spec.md §6.
type ClientConfig struct {
	AppID     string
	AppSecret string
	Endpoint  string

	Logger   logger.Logger
	LogLevel logger.Level

	Reconnect ReconnectConfig

	WriteTimeout time.Duration
	PongTimeout  time.Duration
	AckMode      bool

	// Handler XOR Dispatcher: exactly one must end up set before Start.
	Handler    EventHandler
	Dispatcher interface{} // *dispatcher.Dispatcher; client.New rejects any other type
}

// Option configures a ClientConfig at construction time.
type Option func(*ClientConfig)

// WithEndpoint overrides the vendor default endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *ClientConfig) { c.Endpoint = endpoint }
}

// WithLogger sets the logging sink and records level in LogLevel. The
// client does not filter on LogLevel; what l writes is decided by l's
// own level.
func WithLogger(l logger.Logger, level logger.Level) Option {
	return func(c *ClientConfig) {
		c.Logger = l
		c.LogLevel = level
	}
}

// WithReconnect overrides the default reconnect policy.
func WithReconnect(r ReconnectConfig) Option {
	return func(c *ClientConfig) { c.Reconnect = r }
}

// WithWriteTimeout overrides the handshake deadline. ACK writes after
// the handshake are not bounded by it.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *ClientConfig) { c.WriteTimeout = d }
}

// WithPongTimeout overrides the liveness deadline.
func WithPongTimeout(d time.Duration) Option {
	return func(c *ClientConfig) { c.PongTimeout = d }
}

// WithAckMode toggles at-least-once acknowledgement.
func WithAckMode(enabled bool) Option {
	return func(c *ClientConfig) { c.AckMode = enabled }
}

// WithHandler sets the untyped event sink. Mutually exclusive with
// WithDispatcher.
func WithHandler(h EventHandler) Option {
	return func(c *ClientConfig) { c.Handler = h }
}

// WithDispatcher sets the typed-registration event sink. Mutually
// exclusive with WithHandler. Accepts interface{}; New() and Validate()
// only check that it is set, and client.New type-asserts it to
// *dispatcher.Dispatcher.
func WithDispatcher(d interface{}) Option {
	return func(c *ClientConfig) { c.Dispatcher = d }
}

// New builds a ClientConfig from required credentials plus options,
// applying the defaults from spec.md §6.
func New(appID, appSecret string, opts ...Option) (*ClientConfig, error) {
	if appID == "" || appSecret == "" {
		return nil, fmt.Errorf("config: appId and appSecret are required")
	}

	c := &ClientConfig{
		AppID:        appID,
		AppSecret:    appSecret,
		Endpoint:     DefaultEndpoint,
		Logger:       logger.Discard(),
		LogLevel:     logger.InfoLevel,
		Reconnect:    defaultReconnectConfig(),
		WriteTimeout: 10000 * time.Millisecond,
		PongTimeout:  90000 * time.Millisecond,
		AckMode:      true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate enforces the invariants spec.md §6 describes: reconnect
// policy consistency and exactly one event sink configured.
func (c *ClientConfig) Validate() error {
	if err := c.Reconnect.Validate(); err != nil {
		return err
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("config: writeTimeout must be > 0")
	}
	if c.PongTimeout <= 0 {
		return fmt.Errorf("config: pongTimeout must be > 0")
	}
	hasHandler := c.Handler != nil
	hasDispatcher := c.Dispatcher != nil
	if hasHandler == hasDispatcher {
		return &errs.HandlerNotSetError{}
	}
	return nil
}
