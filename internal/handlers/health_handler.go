package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/raffle-backend/internal/services"
)

// HealthHandler reports liveness and the current phase
type HealthHandler struct {
	lotteryService services.LotteryService
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(lotteryService services.LotteryService) *HealthHandler {
	return &HealthHandler{lotteryService: lotteryService}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	phase, err := h.lotteryService.GetPhase(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "phase": phase})
}
