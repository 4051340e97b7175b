package chathub

import (
	"encoding/json"

	"go.uber.org/zap"

	"popin/backend/internal/models"
)

// startPubSubListener subscribes to every room channel and fans inbound
// messages into the hub's dispatch loop. Messages published by this instance
// come back through the same path, which keeps multi-instance and
// single-instance delivery identical.
func (h *Hub) startPubSubListener() {
	if h.Storage == nil {
		return
	}
	pubsub := h.Storage.SubscribeMessages()
	if pubsub == nil {
		return
	}

	go func() {
		for raw := range pubsub.Channel() {
			var msg models.ChatMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				h.log.Warn("failed to decode pubsub message", zap.Error(err))
				continue
			}
			h.PubSubCh <- msg
		}
	}()
}
