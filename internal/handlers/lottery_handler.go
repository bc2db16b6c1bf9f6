package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/raffle-backend/internal/middleware"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
)

const defaultRoundLimit = 20

// LotteryHandler handles lottery lifecycle requests
type LotteryHandler struct {
	lotteryService services.LotteryService
}

// NewLotteryHandler creates a new LotteryHandler
func NewLotteryHandler(lotteryService services.LotteryService) *LotteryHandler {
	return &LotteryHandler{lotteryService: lotteryService}
}

// InitRequest is the body of POST /lottery/init
type InitRequest struct {
	Operator    string         `json:"operator" binding:"required"`
	TicketPrice *models.Amount `json:"ticket_price" binding:"required"`
}

// BuyTicketRequest is the body of POST /lottery/tickets
type BuyTicketRequest struct {
	Count          uint32        `json:"count"`
	AttachedAmount models.Amount `json:"attached_amount"`
}

// TicketPriceRequest is the body of PUT /lottery/ticket-price
type TicketPriceRequest struct {
	TicketPrice *models.Amount `json:"ticket_price" binding:"required"`
}

// Init handles POST /lottery/init
func (h *LotteryHandler) Init(c *gin.Context) {
	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	state, err := h.lotteryService.Init(c.Request.Context(), middleware.Caller(c), req.Operator, *req.TicketPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// StartRound handles POST /lottery/rounds/start
func (h *LotteryHandler) StartRound(c *gin.Context) {
	round, err := h.lotteryService.StartRound(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

// BuyTicket handles POST /lottery/tickets
func (h *LotteryHandler) BuyTicket(c *gin.Context) {
	var req BuyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	receipt, err := h.lotteryService.BuyTicket(c.Request.Context(), middleware.Caller(c), req.Count, req.AttachedAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// DrawWinner handles POST /lottery/draw
func (h *LotteryHandler) DrawWinner(c *gin.Context) {
	result, err := h.lotteryService.DrawWinner(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SettlePayout handles POST /lottery/settle
func (h *LotteryHandler) SettlePayout(c *gin.Context) {
	result, err := h.lotteryService.SettlePayout(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetTicketPrice handles PUT /lottery/ticket-price
func (h *LotteryHandler) SetTicketPrice(c *gin.Context) {
	var req TicketPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	state, err := h.lotteryService.SetTicketPrice(c.Request.Context(), middleware.Caller(c), *req.TicketPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_price": state.TicketPrice})
}

// GetTicketPrice handles GET /lottery/ticket-price
func (h *LotteryHandler) GetTicketPrice(c *gin.Context) {
	price, err := h.lotteryService.GetTicketPrice(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_price": price})
}

// GetPhase handles GET /lottery/phase
func (h *LotteryHandler) GetPhase(c *gin.Context) {
	phase, err := h.lotteryService.GetPhase(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": phase})
}

// GetState handles GET /lottery/state
func (h *LotteryHandler) GetState(c *gin.Context) {
	state, err := h.lotteryService.GetState(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ListRounds handles GET /lottery/rounds
func (h *LotteryHandler) ListRounds(c *gin.Context) {
	limit := utils.IntOrDefault(c.Query("limit"), defaultRoundLimit)

	rounds, err := h.lotteryService.ListRounds(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds, "count": len(rounds)})
}

// GetRound handles GET /lottery/rounds/:id
func (h *LotteryHandler) GetRound(c *gin.Context) {
	id, err := utils.ParseRoundID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	round, err := h.lotteryService.GetRound(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// GetPlayerTickets handles GET /lottery/players/:player/tickets
func (h *LotteryHandler) GetPlayerTickets(c *gin.Context) {
	ctx := c.Request.Context()
	player := c.Param("player")

	if roundParam := c.Query("round"); roundParam != "" {
		roundID, err := utils.ParseRoundID(roundParam)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		count, err := h.lotteryService.GetPlayerTicketCountInRound(ctx, roundID, player)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"player": player, "round_id": roundID, "tickets": count})
		return
	}

	count, err := h.lotteryService.GetPlayerTicketCount(ctx, player)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player, "tickets": count})
}
