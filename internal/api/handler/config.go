package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"popin/backend/internal/proximity"
)

// UpdateProximityConfig swaps the watcher's thresholds and cooldown. A
// rejected configuration leaves the previous one in effect.
func (h *Handler) UpdateProximityConfig(c *gin.Context) {
	var payload struct {
		HotMeters       *float64 `json:"hot_meters"`
		CloseMeters     *float64 `json:"close_meters"`
		RangeMeters     *float64 `json:"range_meters"`
		CooldownMinutes *int     `json:"cooldown_minutes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot parse JSON"})
		return
	}

	thresholds := h.Watcher.Thresholds()
	if payload.HotMeters != nil {
		thresholds.HotMeters = *payload.HotMeters
	}
	if payload.CloseMeters != nil {
		thresholds.CloseMeters = *payload.CloseMeters
	}
	if payload.RangeMeters != nil {
		thresholds.RangeMeters = *payload.RangeMeters
	}

	cooldown := h.Watcher.Cooldown()
	if payload.CooldownMinutes != nil {
		cooldown = time.Duration(*payload.CooldownMinutes) * time.Minute
	}

	if err := h.Watcher.Configure(thresholds, cooldown); err != nil {
		if errors.Is(err, proximity.ErrInvalidThresholds) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid thresholds"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thresholds":       h.Watcher.Thresholds(),
		"cooldown_minutes": int(cooldown / time.Minute),
	})
}
