package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextride/ride"
	"nextride/utils"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     fmt.Errorf("%w: rating 5.5 outside 1-5", ride.ErrValidation),
			status:  http.StatusBadRequest,
			message: "Invalid request",
		},
		{
			name:    "not found",
			err:     fmt.Errorf("%w: ride abc", ride.ErrNotFound),
			status:  http.StatusNotFound,
			message: "Ride not found",
		},
		{
			name:    "conflict",
			err:     ride.ErrConflict,
			status:  http.StatusConflict,
			message: "Ride is no longer available",
		},
		{
			name:    "invalid transition",
			err:     fmt.Errorf("%w: completed -> in_progress", ride.ErrInvalidTransition),
			status:  http.StatusUnprocessableEntity,
			message: "This action is not allowed in the ride's current state",
		},
		{
			name:    "unavailable",
			err:     fmt.Errorf("%w: directions request failed", ride.ErrUnavailable),
			status:  http.StatusBadGateway,
			message: "A required service is temporarily unavailable",
		},
		{
			name:    "unknown",
			err:     fmt.Errorf("connection reset"),
			status:  http.StatusInternalServerError,
			message: "Something went wrong",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)

			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

// Wrapped detail belongs in the log, never in the response body.
func TestRespondServiceError_DetailStaysOutOfResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondServiceError(c, fmt.Errorf("%w: rating 5.5 outside 1-5", ride.ErrValidation))

	assert.NotContains(t, w.Body.String(), "5.5")
	assert.NotContains(t, w.Body.String(), ride.ErrValidation.Error())
}
