// Package dispatcher routes decoded events to user-registered
// handlers by event code, with an optional fallback for unmatched
// codes and typed registration helpers for the vendor's canonical
// event codes.
package dispatcher

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kso-sdk/openevent-client/pkg/openevent/event"
)

// Handler processes one decoded Event. A returned error propagates to
// the message pipeline, which turns it into a 500 ACK under ack mode.
type Handler func(e event.Event) error

// Dispatcher maps event codes to handlers, with an optional fallback
// for codes with no registered handler.
//
// By contract (spec.md §4.7) the handler map is mutated only during
// setup, before Start; Dispatcher's own locking exists to make
// concurrent reads from the message pipeline safe, not to support
// post-start registration.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
}

// New returns an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// On registers h for eventCode, overwriting any prior registration
// for that code. Returns the receiver for chaining.
func (d *Dispatcher) On(eventCode string, h Handler) *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventCode] = h
	return d
}

// OnFallback registers the handler invoked when no code-specific
// handler matches. Returns the receiver for chaining.
func (d *Dispatcher) OnFallback(h Handler) *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = h
	return d
}

// HasHandler reports whether a handler is registered for eventCode.
func (d *Dispatcher) HasHandler(eventCode string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[eventCode]
	return ok
}

// Handle routes e to its registered handler, falling back to the
// fallback handler, or silently dropping e if neither is set. Handler
// errors propagate to the caller unchanged.
func (d *Dispatcher) Handle(e event.Event) error {
	d.mu.RLock()
	h, ok := d.handlers[e.EventCode()]
	fallback := d.fallback
	d.mu.RUnlock()

	switch {
	case ok:
		return h(e)
	case fallback != nil:
		return fallback(e)
	default:
		return nil
	}
}

// registerTyped parses e.Data as JSON into a fresh T, invokes cb with
// the resulting TypedEvent, and registers that under eventCode. Parse
// errors propagate as handler errors, yielding a 500 ACK per spec.md §4.4.
func registerTyped[T any](d *Dispatcher, eventCode string, cb func(event.TypedEvent[T]) error) *Dispatcher {
	return d.On(eventCode, func(e event.Event) error {
		var parsed T
		if err := json.Unmarshal([]byte(e.Data), &parsed); err != nil {
			return fmt.Errorf("dispatcher: parse payload for %s: %w", eventCode, err)
		}
		return cb(event.TypedEvent[T]{Event: e, ParsedData: parsed})
	})
}

// OnV7AppChatMessageCreate registers a typed handler for
// CodeAppChatMessageCreate.
func (d *Dispatcher) OnV7AppChatMessageCreate(cb func(event.TypedEvent[AppChatMessageCreatePayload]) error) *Dispatcher {
	return registerTyped(d, CodeAppChatMessageCreate, cb)
}

// OnV7AppChatCreate registers a typed handler for CodeAppChatCreate.
func (d *Dispatcher) OnV7AppChatCreate(cb func(event.TypedEvent[AppChatCreatePayload]) error) *Dispatcher {
	return registerTyped(d, CodeAppChatCreate, cb)
}

// OnV7GroupChatDelete registers a typed handler for CodeGroupChatDelete.
func (d *Dispatcher) OnV7GroupChatDelete(cb func(event.TypedEvent[GroupChatDeletePayload]) error) *Dispatcher {
	return registerTyped(d, CodeGroupChatDelete, cb)
}

// OnV7GroupChatMemberUserCreate registers a typed handler for
// CodeGroupChatMemberUserCreate.
func (d *Dispatcher) OnV7GroupChatMemberUserCreate(cb func(event.TypedEvent[GroupChatMemberPayload]) error) *Dispatcher {
	return registerTyped(d, CodeGroupChatMemberUserCreate, cb)
}

// OnV7GroupChatMemberUserDelete registers a typed handler for
// CodeGroupChatMemberUserDelete.
func (d *Dispatcher) OnV7GroupChatMemberUserDelete(cb func(event.TypedEvent[GroupChatMemberPayload]) error) *Dispatcher {
	return registerTyped(d, CodeGroupChatMemberUserDelete, cb)
}

// OnV7GroupChatMemberRobotCreate registers a typed handler for
// CodeGroupChatMemberRobotCreate.
func (d *Dispatcher) OnV7GroupChatMemberRobotCreate(cb func(event.TypedEvent[GroupChatMemberPayload]) error) *Dispatcher {
	return registerTyped(d, CodeGroupChatMemberRobotCreate, cb)
}

// OnV7GroupChatMemberRobotDelete registers a typed handler for
// CodeGroupChatMemberRobotDelete.
func (d *Dispatcher) OnV7GroupChatMemberRobotDelete(cb func(event.TypedEvent[GroupChatMemberPayload]) error) *Dispatcher {
	return registerTyped(d, CodeGroupChatMemberRobotDelete, cb)
}
