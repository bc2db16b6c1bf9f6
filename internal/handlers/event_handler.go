package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
)

// EventHandler serves the lifecycle event log
type EventHandler struct {
	eventService services.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// ListEvents handles GET /lottery/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()

	if roundParam := c.Query("round"); roundParam != "" {
		roundID, err := utils.ParseRoundID(roundParam)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		events, err := h.eventService.RoundEvents(ctx, roundID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "round_id": roundID})
		return
	}

	page := utils.IntOrDefault(c.Query("page"), 1)
	limit := utils.IntOrDefault(c.Query("limit"), 50)
	events, err := h.eventService.ListEvents(ctx, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "page": page, "limit": limit})
}
