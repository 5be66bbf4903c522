package utils

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"nextride/models"
)

// SendToken issues a JWT carrying the subject's id and role, and sends the
// authenticated response. Tokens live for 30 days, matching mobile sessions.
func SendToken(c *gin.Context, entity interface{}, id, role string) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"exp":  time.Now().Add(30 * 24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	switch v := entity.(type) {
	case *models.User:
		RespondSuccess(c, http.StatusOK, "Authentication successful", gin.H{
			"accessToken": tokenString,
			"user":        v,
		})
	case *models.Driver:
		RespondSuccess(c, http.StatusOK, "Authentication successful", gin.H{
			"accessToken": tokenString,
			"driver":      v,
		})
	}
}
