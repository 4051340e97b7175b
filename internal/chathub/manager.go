// Package chathub routes room messages between connected clients. Rooms are
// keyed by place ID and a session may only speak in a room while the
// proximity gate holds open.
package chathub

import (
	"go.uber.org/zap"

	"popin/backend/internal/models"
	"popin/backend/internal/storage"
)

// Gate decides whether a session may currently speak in a place's room. The
// proximity watcher implements it; absence of state fails closed.
type Gate interface {
	CanJoin(sessionID, placeID string) bool
}

// Hub owns the set of connected clients and the message dispatch loop.
type Hub struct {
	// Clients is keyed by session ID. One connection per session.
	Clients map[string]Client

	IncomingCh   chan models.ChatMessage
	RegisterCh   chan Client
	UnregisterCh chan Client
	// PubSubCh receives messages fanned in from Redis, including those
	// published by other server instances.
	PubSubCh chan models.ChatMessage

	Storage storage.Storage
	Gate    Gate

	log *zap.Logger
}

func NewHub(s storage.Storage, gate Gate, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients:      make(map[string]Client),
		IncomingCh:   make(chan models.ChatMessage),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		PubSubCh:     make(chan models.ChatMessage, 64),
		Storage:      s,
		Gate:         gate,
		log:          log,
	}
}

// Run is the hub's main dispatch loop. All client-map mutation happens here.
func (h *Hub) Run() {
	h.startPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			// One connection per session: a reconnect displaces the old one.
			if old, ok := h.Clients[client.GetSessionID()]; ok && old != client {
				old.Close()
				h.log.Info("client displaced by reconnect",
					zap.String("session_id", client.GetSessionID()))
			}
			h.Clients[client.GetSessionID()] = client
			h.log.Info("client registered",
				zap.String("session_id", client.GetSessionID()),
				zap.String("place_id", client.GetPlaceID()))

		case client := <-h.UnregisterCh:
			if current, ok := h.Clients[client.GetSessionID()]; ok && current == client {
				delete(h.Clients, client.GetSessionID())
				client.Close()
				h.log.Info("client unregistered", zap.String("session_id", client.GetSessionID()))
			}

		case msg := <-h.IncomingCh:
			h.handleIncoming(msg)

		case msg := <-h.PubSubCh:
			h.broadcast(msg)
		}
	}
}

// handleIncoming persists and publishes a client message, unless the sender's
// proximity gate for the room is shut.
func (h *Hub) handleIncoming(msg models.ChatMessage) {
	if h.Gate != nil && !h.Gate.CanJoin(msg.SenderID, msg.PlaceID) {
		h.rejectOutOfRange(msg)
		return
	}

	if err := h.Storage.SaveMessage(&msg); err != nil {
		h.log.Error("failed to save message",
			zap.String("place_id", msg.PlaceID), zap.Error(err))
		return
	}
	if err := h.Storage.PublishMessage(msg.PlaceID, msg); err != nil {
		h.log.Error("failed to publish message",
			zap.String("place_id", msg.PlaceID), zap.Error(err))
	}
}

func (h *Hub) rejectOutOfRange(msg models.ChatMessage) {
	h.log.Info("message rejected, sender out of range",
		zap.String("session_id", msg.SenderID),
		zap.String("place_id", msg.PlaceID))

	client, ok := h.Clients[msg.SenderID]
	if !ok {
		return
	}
	notice := models.ChatMessage{
		PlaceID:  msg.PlaceID,
		SenderID: "system",
		Type:     "system_out_of_range",
		Content:  "You are too far from this place to chat.",
	}
	select {
	case client.GetSendChannel() <- notice:
	default:
		h.log.Warn("dropping system notice, send buffer full",
			zap.String("session_id", msg.SenderID))
	}
}

// broadcast delivers a room message to every connected member of that room.
func (h *Hub) broadcast(msg models.ChatMessage) {
	for _, client := range h.Clients {
		if client.GetPlaceID() != msg.PlaceID {
			continue
		}
		select {
		case client.GetSendChannel() <- msg:
		default:
			// Slow consumer: drop the message rather than stall the hub.
			h.log.Warn("dropping message, send buffer full",
				zap.String("session_id", client.GetSessionID()),
				zap.String("place_id", msg.PlaceID))
		}
	}
}
