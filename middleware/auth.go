package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"nextride/db"
	"nextride/models"
	"nextride/utils"
)

func parseBearer(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Please log in to access this content", nil)
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>", nil)
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("ACCESS_TOKEN_SECRET")), nil
	})
	if err != nil || !token.Valid {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token", err)
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token claims", nil)
		return nil, false
	}
	if id, _ := claims["id"].(string); id == "" {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid token payload", nil)
		return nil, false
	}
	return claims, true
}

// IsAuthenticated loads the customer for a valid bearer token.
func IsAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			c.Abort()
			return
		}
		if role, _ := claims["role"].(string); role != "customer" {
			utils.RespondError(c, http.StatusForbidden, "Customer account required", nil)
			c.Abort()
			return
		}
		id := claims["id"].(string)

		var user models.User
		err := db.Pool.QueryRow(context.Background(),
			`SELECT id, email, "firstName", "lastName", "phoneNumber", "notificationToken", status, "createdAt", "updatedAt"
			 FROM users WHERE id=$1`, id).
			Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PhoneNumber,
				&user.NotificationToken, &user.Status, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "User not found", err)
			c.Abort()
			return
		}

		if user.Status == "suspended" {
			utils.RespondError(c, http.StatusForbidden, "Your account has been suspended. Contact support.", nil)
			c.Abort()
			return
		}

		c.Set("user", &user)
		c.Next()
	}
}

// IsAuthenticatedDriver loads the driver for a valid bearer token.
func IsAuthenticatedDriver() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			c.Abort()
			return
		}
		if role, _ := claims["role"].(string); role != "driver" {
			utils.RespondError(c, http.StatusForbidden, "Driver account required", nil)
			c.Abort()
			return
		}
		id := claims["id"].(string)

		var driver models.Driver
		err := db.Pool.QueryRow(context.Background(),
			`SELECT id, email, "firstName", "lastName", "phoneNumber", "licenseNumber",
				"vehicleMake", "vehicleModel", "vehicleYear", "vehicleColor", "licensePlate", "vehicleType",
				"isAvailable", "isVerified", ratings, "totalRides", "notificationToken", status, "createdAt", "updatedAt"
			 FROM drivers WHERE id=$1`, id).
			Scan(&driver.ID, &driver.Email, &driver.FirstName, &driver.LastName, &driver.PhoneNumber, &driver.LicenseNumber,
				&driver.VehicleMake, &driver.VehicleModel, &driver.VehicleYear, &driver.VehicleColor, &driver.LicensePlate, &driver.VehicleType,
				&driver.IsAvailable, &driver.IsVerified, &driver.Rating, &driver.TotalRides,
				&driver.NotificationToken, &driver.Status, &driver.CreatedAt, &driver.UpdatedAt)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Driver not found", err)
			c.Abort()
			return
		}

		if driver.Status == "suspended" {
			utils.RespondError(c, http.StatusForbidden, "Your account has been suspended. Contact support.", nil)
			c.Abort()
			return
		}

		c.Set("driver", &driver)
		c.Next()
	}
}

// IsAdmin validates admin access via x-admin-secret header.
func IsAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminSecret := os.Getenv("ADMIN_SECRET")
		if adminSecret == "" {
			utils.RespondError(c, http.StatusInternalServerError, "Admin access not configured", nil)
			c.Abort()
			return
		}

		headerSecret := c.GetHeader("x-admin-secret")
		if headerSecret == "" || headerSecret != adminSecret {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: Invalid admin credentials", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
