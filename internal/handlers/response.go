package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"construction_manager/internal/ledger"
	"construction_manager/internal/services"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var (
		txErr    *ledger.TransactionFailure
		valErr   *ledger.ValidationError
		capErr   *ledger.InsufficientCapitalError
		stateErr *ledger.InvalidStateTransitionError
		nfErr    *ledger.NotFoundError
	)
	switch {
	case errors.As(err, &txErr):
		// Pipeline failures were fully rolled back; the caller gets no
		// partial-state detail, just that nothing was applied.
		message = "transaction failed, no changes were applied"
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
	case errors.As(err, &capErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &stateErr):
		status = http.StatusConflict
	case errors.As(err, &nfErr):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrMaxRetries):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"message": message,
	})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, &ledger.ValidationError{Msg: "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// actingUser reads the authenticated user id the gateway forwards. Auth
// itself happens upstream; the core only needs the identity for audit rows
// and role checks.
func actingUser(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
