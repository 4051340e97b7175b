package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"popin/backend/internal/geo"
	"popin/backend/internal/models"
	"popin/backend/internal/proximity"
)

// UpdateLocation applies one location tick for the calling session: it loads
// the active place snapshot, runs the proximity evaluation, and returns the
// per-place results the map and chat screens key off of.
func (h *Handler) UpdateLocation(c *gin.Context) {
	sessionID := c.GetString(sessionContextKey)

	var payload models.LocationUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot parse JSON"})
		return
	}
	if payload.Latitude == nil || payload.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	coord := geo.Coordinate{Lat: *payload.Latitude, Lng: *payload.Longitude}
	if err := coord.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude or longitude out of range"})
		return
	}

	if err := h.Storage.MarkSessionActive(sessionID); err != nil {
		h.log.Warn("failed to mark session active", zap.Error(err))
	}
	if err := h.Storage.SaveCheckIn(&models.CheckIn{SessionID: sessionID, Latitude: coord.Lat, Longitude: coord.Lng}); err != nil {
		h.log.Warn("failed to save check-in", zap.Error(err))
	}

	places, err := h.Storage.ListActivePlaces()
	if err != nil {
		h.log.Error("failed to load place directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load places"})
		return
	}

	snapshot := make([]proximity.Place, 0, len(places))
	names := make(map[string]string, len(places))
	for _, p := range places {
		snapshot = append(snapshot, proximity.Place{
			ID:     p.ID,
			Name:   p.Name,
			Coord:  geo.Coordinate{Lat: p.Latitude, Lng: p.Longitude},
			Active: p.IsActive,
		})
		names[p.ID] = p.Name
	}

	results, err := h.Watcher.Evaluate(sessionID, coord, snapshot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude or longitude out of range"})
		return
	}

	response := make([]models.PlaceProximity, 0, len(results))
	for _, r := range results {
		item := models.PlaceProximity{
			PlaceID:     r.PlaceID,
			Name:        names[r.PlaceID],
			DistanceM:   r.DistanceM,
			Tier:        r.Tier.String(),
			CanJoinChat: r.CanJoin,
			Notified:    r.Notified,
		}
		if r.Err != nil {
			item.Error = "evaluation failed"
			item.Tier = proximity.TierFar.String()
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "places": response})
}
