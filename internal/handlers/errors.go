package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

var statusByKind = map[models.ErrorKind]int{
	models.ErrorKindUnauthorized:    http.StatusForbidden,
	models.ErrorKindPhaseViolation:  http.StatusConflict,
	models.ErrorKindWindowClosed:    http.StatusConflict,
	models.ErrorKindWindowOpen:      http.StatusConflict,
	models.ErrorKindPaymentMismatch: http.StatusUnprocessableEntity,
	models.ErrorKindInvalidArgument: http.StatusBadRequest,
	models.ErrorKindNotFound:        http.StatusNotFound,
	models.ErrorKindConsistency:     http.StatusInternalServerError,
}

// respondError writes a lottery error as {"error", "kind"}
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": models.ErrorKindInvalidArgument})
}
