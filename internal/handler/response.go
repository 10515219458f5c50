package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lotto-service/internal/service"
)

// respondError maps a service error onto an HTTP status code:
// validation 400, not-found 404, conflicts 409, business-rule
// preconditions 422, anything else 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrInvalidDrawMethod),
		errors.Is(err, service.ErrInvalidTier),
		errors.Is(err, service.ErrInvalidTicketNumber),
		errors.Is(err, service.ErrNoTicketNumbers):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrPurchaseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrTicketUnavailable),
		errors.Is(err, service.ErrAlreadyRedeemed),
		errors.Is(err, service.ErrDrawExists),
		errors.Is(err, service.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInsufficientCandidates),
		errors.Is(err, service.ErrNoPrize),
		errors.Is(err, service.ErrTiersNotConfigured):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionInvalid):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrAccountDisabled):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
