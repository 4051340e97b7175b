package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"popin/backend/internal/geo"
	"popin/backend/internal/models"
	"popin/backend/internal/storage"
)

// ListPlaces returns the active place directory.
func (h *Handler) ListPlaces(c *gin.Context) {
	places, err := h.Storage.ListActivePlaces()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load places"})
		return
	}
	c.JSON(http.StatusOK, places)
}

// CreatePlace registers a new place and its chat room.
func (h *Handler) CreatePlace(c *gin.Context) {
	var payload struct {
		Name      string   `json:"name"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Tags      []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot parse JSON"})
		return
	}
	if payload.Name == "" || payload.Latitude == nil || payload.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, latitude and longitude are required"})
		return
	}
	coord := geo.Coordinate{Lat: *payload.Latitude, Lng: *payload.Longitude}
	if err := coord.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude or longitude out of range"})
		return
	}

	place := models.Place{
		Name:      payload.Name,
		Latitude:  coord.Lat,
		Longitude: coord.Lng,
		IsActive:  true,
		Tags:      pq.StringArray(payload.Tags),
	}
	if err := h.Storage.SavePlace(&place); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save place"})
		return
	}
	c.JSON(http.StatusCreated, place)
}

// DeactivatePlace removes a place from proximity evaluation. Watcher state
// for it is dropped on each session's next tick.
func (h *Handler) DeactivatePlace(c *gin.Context) {
	id := c.Param("id")
	err := h.Storage.DeactivatePlace(id)
	if errors.Is(err, storage.ErrPlaceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate place"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// PlaceHistory returns recent room messages, but only to sessions whose
// proximity gate for the place is open.
func (h *Handler) PlaceHistory(c *gin.Context) {
	sessionID := c.GetString(sessionContextKey)
	placeID := c.Param("id")

	if _, err := h.Storage.GetPlaceByID(placeID); err != nil {
		if errors.Is(err, storage.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load place"})
		return
	}

	if !h.Watcher.CanJoin(sessionID, placeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are too far from this place to chat"})
		return
	}

	history, err := h.Storage.GetChatHistory(placeID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, history)
}
