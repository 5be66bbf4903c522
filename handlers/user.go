package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"nextride/db"
	"nextride/directions"
	"nextride/geo"
	"nextride/models"
	"nextride/nav"
	"nextride/notify"
	"nextride/ride"
	"nextride/stores"
	"nextride/utils"
)

// UserHandler serves the customer app: estimates, booking, ride tracking,
// ratings, and notifications.
type UserHandler struct {
	Rides         *ride.Service
	Quotes        *stores.QuoteCache
	Maps          *directions.Client
	Notifications *notify.PGStore
	Nav           *nav.Manager
}

// RegisterUserRoutes defines all customer-facing API endpoints.
func (h *UserHandler) RegisterUserRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	userGroup := r.Group("/api/v1/user", authMiddleware)
	{
		userGroup.GET("/me", GetLoggedInUserData)
		userGroup.PUT("/notification-token", UpdateUserNotificationToken)

		userGroup.GET("/geocode/reverse", h.ReverseGeocode)

		userGroup.POST("/ride/estimate", h.GetRideEstimate)
		userGroup.POST("/ride/book", h.BookRide)
		userGroup.POST("/ride/cancel", h.CancelRide)
		userGroup.GET("/ride/:id", h.GetRideDetails)
		userGroup.GET("/ride/:id/driver-location", h.GetDriverLocation)
		userGroup.GET("/rides", h.GetUserRides)
		userGroup.POST("/rate-ride", h.RateRide)

		userGroup.GET("/notifications", h.GetNotifications)
		userGroup.POST("/notifications/:id/read", h.MarkNotificationRead)
	}
}

// GET /api/v1/user/me
func GetLoggedInUserData(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	utils.RespondSuccess(c, http.StatusOK, "User data", gin.H{"user": user})
}

// PUT /api/v1/user/notification-token
func UpdateUserNotificationToken(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	_, err := db.Pool.Exec(context.Background(),
		`UPDATE users SET "notificationToken"=$1, "updatedAt"=NOW() WHERE id=$2`,
		body.Token, user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update token", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Notification token updated", nil)
}

// GET /api/v1/user/geocode/reverse?lat=...&lng=...
func (h *UserHandler) ReverseGeocode(c *gin.Context) {
	lat, _ := strconv.ParseFloat(c.Query("lat"), 64)
	lng, _ := strconv.ParseFloat(c.Query("lng"), 64)

	loc, err := h.Maps.ReverseGeocode(c.Request.Context(), models.Coordinates{Latitude: lat, Longitude: lng})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Address resolved", gin.H{"location": loc})
}

// POST /api/v1/user/ride/estimate
func (h *UserHandler) GetRideEstimate(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	var body struct {
		Pickup      models.Location    `json:"pickup" binding:"required"`
		Destination models.Location    `json:"destination" binding:"required"`
		VehicleType models.VehicleType `json:"vehicleType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !body.VehicleType.Valid() {
		utils.RespondError(c, http.StatusBadRequest, "Unknown vehicle type", nil)
		return
	}

	fare := ride.EstimateFare(body.Pickup.Coords(), body.Destination.Coords(), body.VehicleType)
	duration := ride.EstimateDuration(body.Pickup.Coords(), body.Destination.Coords())

	// Freeze the quote so the fare cannot drift between estimate and booking.
	quoteID, err := h.Quotes.Put(c.Request.Context(), stores.Quote{
		CustomerID:        user.ID,
		Pickup:            body.Pickup,
		Destination:       body.Destination,
		VehicleType:       body.VehicleType,
		Fare:              fare,
		EstimatedDuration: duration,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to store estimate", err)
		return
	}

	// Map viewport that frames both endpoints with padding.
	region := geo.BoundingRegion(body.Pickup.Coords(), body.Destination.Coords(), 0.02)

	utils.RespondSuccess(c, http.StatusOK, "Ride estimate", gin.H{
		"quoteId":           quoteID,
		"fare":              fare,
		"estimatedDuration": duration,
		"region":            region,
	})
}

// POST /api/v1/user/ride/book
func (h *UserHandler) BookRide(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	var body struct {
		QuoteID       string `json:"quoteId" binding:"required"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.PaymentMethod == "" {
		body.PaymentMethod = "card"
	}

	quote, err := h.Quotes.Consume(c.Request.Context(), body.QuoteID)
	if err != nil {
		utils.RespondError(c, http.StatusGone, "This estimate has expired. Please get a fresh one.", err)
		return
	}
	if quote.CustomerID != user.ID {
		utils.RespondError(c, http.StatusForbidden, "Unauthorized access to this estimate", nil)
		return
	}

	r, err := h.Rides.CreateRequest(c.Request.Context(), ride.CreateRequestInput{
		CustomerID:    user.ID,
		CustomerName:  user.FullName(),
		Pickup:        quote.Pickup,
		Destination:   quote.Destination,
		VehicleType:   quote.VehicleType,
		PaymentMethod: body.PaymentMethod,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, "Ride requested", gin.H{"ride": r})
}

// POST /api/v1/user/ride/cancel
func (h *UserHandler) CancelRide(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	var body struct {
		RideID string `json:"rideId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	if !h.ownsRide(c, user.ID, body.RideID) {
		return
	}

	r, err := h.Rides.Cancel(c.Request.Context(), body.RideID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if h.Nav != nil {
		// A cancel during the pickup phase ends the driver's navigation
		// session too; there is no route left to track.
		h.Nav.Stop(body.RideID)
	}
	utils.RespondSuccess(c, http.StatusOK, "Ride cancelled", gin.H{"ride": r})
}

// GET /api/v1/user/ride/:id
func (h *UserHandler) GetRideDetails(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	rideID := c.Param("id")

	r, err := h.Rides.Get(c.Request.Context(), rideID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// IDOR prevention
	if r.CustomerID != user.ID {
		utils.RespondError(c, http.StatusForbidden, "Unauthorized access to this ride", nil)
		return
	}

	// Completed rides carry a scannable receipt.
	var receiptQR string
	if r.Status == models.StatusCompleted {
		payload := fmt.Sprintf("nextride://receipt?ride=%s&fare=%.2f&method=%s", r.ID, r.Fare, r.PaymentMethod)
		png, err := qrcode.Encode(payload, qrcode.Medium, 256)
		if err == nil {
			receiptQR = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
		} else {
			utils.Logger.Error("Failed to generate receipt QR code", zap.Error(err))
		}
	}

	utils.RespondSuccess(c, http.StatusOK, "Ride details", gin.H{
		"ride":      r,
		"receiptQr": receiptQR,
	})
}

// GET /api/v1/user/ride/:id/driver-location
func (h *UserHandler) GetDriverLocation(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	rideID := c.Param("id")

	r, err := h.Rides.Get(c.Request.Context(), rideID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if r.CustomerID != user.ID {
		utils.RespondError(c, http.StatusForbidden, "Unauthorized access to this ride", nil)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Driver location", gin.H{
		"location":  r.DriverLocation,
		"updatedAt": r.LastLocationUpdate,
	})
}

// GET /api/v1/user/rides?limit=...
func (h *UserHandler) GetUserRides(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rides, err := h.Rides.History(c.Request.Context(), user.ID, "customer", limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	utils.RespondSuccess(c, http.StatusOK, "Ride history", gin.H{"rides": rides})
}

// POST /api/v1/user/rate-ride
func (h *UserHandler) RateRide(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	var body struct {
		RideID string  `json:"rideId" binding:"required"`
		Rating float64 `json:"rating" binding:"required"`
		Review string  `json:"review"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	if !h.ownsRide(c, user.ID, body.RideID) {
		return
	}

	if err := h.Rides.Rate(c.Request.Context(), body.RideID, body.Rating, body.Review); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Rating submitted", nil)
}

// GET /api/v1/user/notifications
func (h *UserHandler) GetNotifications(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.Notifications.ListForUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to load notifications", err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	utils.RespondSuccess(c, http.StatusOK, "Notifications", gin.H{"notifications": items})
}

// POST /api/v1/user/notifications/:id/read
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	if err := h.Notifications.MarkRead(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Notification marked as read", nil)
}

// ownsRide loads the ride and rejects the request unless it belongs to the
// customer. Responds on failure and returns false.
func (h *UserHandler) ownsRide(c *gin.Context, userID, rideID string) bool {
	r, err := h.Rides.Get(c.Request.Context(), rideID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if r.CustomerID != userID {
		utils.RespondError(c, http.StatusForbidden, "Unauthorized access to this ride", nil)
		return false
	}
	return true
}
