package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kso-sdk/openevent-client/internal/logger"
	"github.com/kso-sdk/openevent-client/internal/metrics"
	"github.com/kso-sdk/openevent-client/pkg/openevent/cipher"
	"github.com/kso-sdk/openevent-client/pkg/openevent/event"
)

// handleFrame demultiplexes one inbound text frame per spec.md §4.6:
// goaway control messages update reconnect policy, event frames are
// verified, decrypted, dispatched, and acknowledged.
func (c *Client) handleFrame(raw []byte) {
	if c.hasReceivedGoAway() {
		// Strict drop-after-goaway: the server's close frame is imminent;
		// nothing arriving after the goaway is dispatched or acked.
		metrics.EventsDropped.WithLabelValues("after_goaway").Inc()
		return
	}

	isGoAway, topic, operation, err := event.ProbeFrame(raw)
	if err != nil {
		c.cfg.Logger.Error("malformed frame", logger.Err(err))
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		return
	}

	if isGoAway {
		c.handleGoAway(raw)
		return
	}

	if topic == "" || operation == "" {
		c.cfg.Logger.Error("event frame missing topic/operation")
		metrics.EventsDropped.WithLabelValues("missing_fields").Inc()
		return
	}

	c.handleEvent(raw)
}

func (c *Client) handleGoAway(raw []byte) {
	var msg event.GoAwayMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.cfg.Logger.Error("malformed goaway frame", logger.Err(err))
		return
	}

	c.setReceivedGoAway(true)
	c.cfg.Logger.Info("received goaway", logger.String("reason", string(msg.Reason)), logger.String("message", msg.Message))
	metrics.GoAwaysReceived.WithLabelValues(string(msg.Reason)).Inc()

	switch {
	case msg.Reason == event.ReasonConnectionReplaced:
		c.disableReconnect()
		c.cfg.Logger.Warn("connection replaced; reconnect disabled for this client")
	case msg.ReconnectMs != nil && *msg.ReconnectMs > 0:
		c.setReconnectBaseInterval(time.Duration(*msg.ReconnectMs) * time.Millisecond)
	}
}

func (c *Client) handleEvent(raw []byte) {
	var msg event.EventMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.cfg.Logger.Error("malformed event frame", logger.Err(err))
		metrics.EventsDropped.WithLabelValues("malformed").Inc()
		return
	}

	if !c.signer.VerifyEvent(msg.Topic, msg.Nonce, msg.Time, msg.EncryptedData, msg.Signature) {
		c.cfg.Logger.Error("signature verification failed", logger.String("topic", msg.Topic))
		metrics.EventsDropped.WithLabelValues("bad_signature").Inc()
		return
	}

	plaintext, err := cipher.Decrypt(c.cfg.AppSecret, msg.Nonce, msg.EncryptedData)
	if err != nil {
		c.cfg.Logger.Error("decrypt failed", logger.Err(err))
		metrics.EventsDropped.WithLabelValues("decrypt_error").Inc()
		return
	}

	e := event.Event{
		Topic:     msg.Topic,
		Operation: msg.Operation,
		Time:      msg.Time,
		Data:      string(plaintext),
	}

	handlerErr := c.sink.Handle(e)
	if handlerErr != nil {
		c.cfg.Logger.Error("handler returned error", logger.String("eventCode", e.EventCode()), logger.Err(handlerErr))
		metrics.EventsDispatched.WithLabelValues("error").Inc()
	} else {
		metrics.EventsDispatched.WithLabelValues("ok").Inc()
	}

	if c.cfg.AckMode && msg.Nonce != "" {
		c.sendAck(msg.Nonce, handlerErr)
	}
}

// sendAck emits the ACK for one event; send failures are logged and
// swallowed per spec.md §4.6 step 7.
func (c *Client) sendAck(nonce string, handlerErr error) {
	ack := event.AckMessage{
		Type:  "ack",
		Nonce: nonce,
		Code:  event.AckSuccess,
	}
	if handlerErr != nil {
		ack.Code = event.AckHandlerError
		ack.Msg = event.TruncateAckMessage(handlerErr.Error())
	}

	payload, err := json.Marshal(ack)
	if err != nil {
		c.cfg.Logger.Error("failed to marshal ack", logger.Err(err))
		return
	}

	conn := c.getConn()
	if conn == nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.cfg.Logger.Error("failed to send ack", logger.Err(err))
		return
	}
	metrics.AcksSent.WithLabelValues(fmt.Sprint(int(ack.Code))).Inc()
}
