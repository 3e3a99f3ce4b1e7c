package dispatcher

import (
	"errors"
	"testing"

	"github.com/kso-sdk/openevent-client/pkg/openevent/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnRoutesByEventCode(t *testing.T) {
	var got string
	d := New().On("kso.app_chat.create", func(e event.Event) error {
		got = e.Data
		return nil
	})

	err := d.Handle(event.Event{Topic: "kso.app_chat", Operation: "create", Data: "payload"})
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
}

func TestOnOverwritesPriorRegistration(t *testing.T) {
	calls := 0
	d := New()
	d.On("c.create", func(event.Event) error { calls += 1; return nil })
	d.On("c.create", func(event.Event) error { calls += 10; return nil })

	err := d.Handle(event.Event{Topic: "c", Operation: "create"})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
}

func TestFallbackInvokedWhenNoSpecificHandler(t *testing.T) {
	var gotCode string
	d := New().OnFallback(func(e event.Event) error {
		gotCode = e.EventCode()
		return nil
	})

	err := d.Handle(event.Event{Topic: "unknown.topic", Operation: "create"})
	require.NoError(t, err)
	assert.Equal(t, "unknown.topic.create", gotCode)
}

func TestHandleSilentlyIgnoresUnmatchedWithNoFallback(t *testing.T) {
	d := New()
	err := d.Handle(event.Event{Topic: "unknown.topic", Operation: "create"})
	assert.NoError(t, err)
}

func TestHandleErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	d := New().On("c.create", func(event.Event) error { return boom })

	err := d.Handle(event.Event{Topic: "c", Operation: "create"})
	assert.ErrorIs(t, err, boom)
}

func TestHasHandler(t *testing.T) {
	d := New().On("c", func(event.Event) error { return nil })
	assert.True(t, d.HasHandler("c"))
	assert.False(t, d.HasHandler("other"))
}

func TestTypedDispatchParsesPayload(t *testing.T) {
	var gotChatID, gotText string
	d := New().OnV7AppChatMessageCreate(func(e event.TypedEvent[AppChatMessageCreatePayload]) error {
		gotChatID = e.ParsedData.Chat.ID
		gotText = e.ParsedData.Message.Content.Text
		return nil
	})

	data := `{"company_id":"c","chat":{"id":"x","type":"single"},"sender":{"type":"user","id":"u"},"send_time":1,"message":{"id":"m","type":"text","content":{"text":"hi"}}}`
	err := d.Handle(event.Event{Topic: "kso.app_chat.message", Operation: "create", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "x", gotChatID)
	assert.Equal(t, "hi", gotText)
}

func TestTypedDispatchPropagatesParseError(t *testing.T) {
	d := New().OnV7AppChatMessageCreate(func(e event.TypedEvent[AppChatMessageCreatePayload]) error {
		return nil
	})

	err := d.Handle(event.Event{Topic: "kso.app_chat.message", Operation: "create", Data: "not json"})
	assert.Error(t, err)
}

func TestChainedRegistration(t *testing.T) {
	var order []string
	d := New().
		On("a.create", func(event.Event) error { order = append(order, "a"); return nil }).
		On("b.create", func(event.Event) error { order = append(order, "b"); return nil }).
		OnFallback(func(event.Event) error { order = append(order, "fallback"); return nil })

	require.NoError(t, d.Handle(event.Event{Topic: "a", Operation: "create"}))
	require.NoError(t, d.Handle(event.Event{Topic: "b", Operation: "create"}))
	require.NoError(t, d.Handle(event.Event{Topic: "z", Operation: "create"}))
	assert.Equal(t, []string{"a", "b", "fallback"}, order)
}
