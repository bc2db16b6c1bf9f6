package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/raffle-backend/internal/middleware"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/ArowuTest/raffle-backend/internal/utils"
)

// PayoutHandler exposes the payout outbox
type PayoutHandler struct {
	payoutService services.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler
func NewPayoutHandler(payoutService services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// ListTransfers handles GET /payouts?round=id or ?status=PENDING,FAILED
func (h *PayoutHandler) ListTransfers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		transfers []*models.Transfer
		err       error
	)
	if roundParam := c.Query("round"); roundParam != "" {
		roundID, perr := utils.ParseRoundID(roundParam)
		if perr != nil {
			badRequest(c, perr.Error())
			return
		}
		transfers, err = h.payoutService.TransfersByRound(ctx, roundID)
	} else {
		statuses, perr := parseStatuses(c.Query("status"))
		if perr != nil {
			badRequest(c, perr.Error())
			return
		}
		transfers, err = h.payoutService.TransfersByStatus(ctx, statuses...)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers, "count": len(transfers)})
}

// Dispatch handles POST /payouts/dispatch
func (h *PayoutHandler) Dispatch(c *gin.Context) {
	retryFailed, _ := strconv.ParseBool(c.DefaultQuery("retry_failed", "false"))

	result, err := h.payoutService.Dispatch(c.Request.Context(), middleware.Caller(c), retryFailed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Confirm handles POST /payouts/confirm
func (h *PayoutHandler) Confirm(c *gin.Context) {
	result, err := h.payoutService.Confirm(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseStatuses(param string) ([]models.TransferStatus, error) {
	if param == "" {
		return nil, nil
	}
	var statuses []models.TransferStatus
	for _, s := range strings.Split(param, ",") {
		status := models.TransferStatus(strings.ToUpper(strings.TrimSpace(s)))
		switch status {
		case models.TransferStatusPending, models.TransferStatusSent, models.TransferStatusConfirmed, models.TransferStatusFailed:
			statuses = append(statuses, status)
		default:
			return nil, models.NewError(models.ErrorKindInvalidArgument, "unknown transfer status %q", s)
		}
	}
	return statuses, nil
}
