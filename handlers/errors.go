package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nextride/ride"
	"nextride/utils"
)

// respondServiceError maps lifecycle errors onto HTTP statuses. Conflicts
// surface as 409 so a losing driver can tell "taken" apart from "failed".
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, ride.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, "Ride not found", err)
	case errors.Is(err, ride.ErrConflict):
		utils.RespondError(c, http.StatusConflict, "Ride is no longer available", err)
	case errors.Is(err, ride.ErrInvalidTransition):
		utils.RespondError(c, http.StatusUnprocessableEntity, "This action is not allowed in the ride's current state", err)
	case errors.Is(err, ride.ErrUnavailable):
		utils.RespondError(c, http.StatusBadGateway, "A required service is temporarily unavailable", err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, "Something went wrong", err)
	}
}
