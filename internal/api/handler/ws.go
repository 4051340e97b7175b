package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"popin/backend/internal/chathub"
	"popin/backend/internal/models"
	"popin/backend/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket joins the calling session to a place's room. The proximity
// gate is checked before the upgrade; the hub re-checks it on every message.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	sessionID := c.GetString(sessionContextKey)
	placeID := c.Query("place_id")
	if placeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place_id is required"})
		return
	}

	place, err := h.Storage.GetPlaceByID(placeID)
	if err != nil {
		if errors.Is(err, storage.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load place"})
		return
	}
	if !place.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
		return
	}

	if !h.Watcher.CanJoin(sessionID, placeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are too far from this place to chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &chathub.WebSocketClient{
		SessionID: sessionID,
		PlaceID:   placeID,
		Conn:      conn,
		Hub:       h.Hub,
		Send:      make(chan models.ChatMessage, 256),
		Log:       h.log,
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
