package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nextride/db"
	"nextride/directions"
	"nextride/models"
	"nextride/nav"
	"nextride/ride"
	"nextride/stores"
	"nextride/utils"
)

// DriverHandler serves the driver app: availability, dispatch, the ride
// lifecycle from acceptance to dropoff, and turn-by-turn navigation.
type DriverHandler struct {
	Rides   *ride.Service
	Drivers *stores.DriverStore
	Maps    *directions.Client
	Nav     *nav.Manager
}

// RegisterDriverRoutes defines all driver-facing API endpoints.
func (h *DriverHandler) RegisterDriverRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	driverGroup := r.Group("/api/v1/driver", authMiddleware)
	{
		driverGroup.GET("/me", GetLoggedInDriverData)
		driverGroup.PUT("/notification-token", UpdateDriverNotificationToken)

		driverGroup.POST("/online", h.GoOnline)
		driverGroup.POST("/offline", h.GoOffline)
		driverGroup.POST("/location", h.UpdateLocation)

		driverGroup.GET("/rides/available", h.GetAvailableRides)
		driverGroup.POST("/ride/accept", h.AcceptRide)
		driverGroup.POST("/ride/arriving", h.MarkArriving)
		driverGroup.POST("/ride/pickup", h.StartRide)
		driverGroup.POST("/ride/dropoff", h.CompleteRide)
		driverGroup.GET("/rides", h.GetDriverRides)

		driverGroup.POST("/navigation/start", h.StartNavigation)
		driverGroup.POST("/navigation/stop", h.StopNavigation)
		driverGroup.GET("/navigation/:rideId", h.GetNavigationState)
	}
}

// GET /api/v1/driver/me
func GetLoggedInDriverData(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	utils.RespondSuccess(c, http.StatusOK, "Driver data", gin.H{"driver": driver})
}

// PUT /api/v1/driver/notification-token
func UpdateDriverNotificationToken(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	_, err := db.Pool.Exec(context.Background(),
		`UPDATE drivers SET "notificationToken"=$1, "updatedAt"=NOW() WHERE id=$2`,
		body.Token, driver.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update token", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Notification token updated", nil)
}

// POST /api/v1/driver/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		Latitude  float64 `json:"latitude" binding:"required"`
		Longitude float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	err := h.Drivers.SetOnline(c.Request.Context(), stores.DriverPresence{
		DriverID:    driver.ID,
		Name:        driver.FullName(),
		VehicleType: driver.VehicleType,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to go online", err)
		return
	}

	db.Pool.Exec(context.Background(),
		`UPDATE drivers SET "isAvailable"=TRUE, "updatedAt"=NOW() WHERE id=$1`, driver.ID)

	utils.RespondSuccess(c, http.StatusOK, "You are online", nil)
}

// POST /api/v1/driver/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)

	if err := h.Drivers.SetOffline(c.Request.Context(), driver.ID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to go offline", err)
		return
	}

	db.Pool.Exec(context.Background(),
		`UPDATE drivers SET "isAvailable"=FALSE, "updatedAt"=NOW() WHERE id=$1`, driver.ID)

	utils.RespondSuccess(c, http.StatusOK, "You are offline", nil)
}

// POST /api/v1/driver/location
// REST fallback for position updates; the socket path is preferred while a
// ride is active.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		Latitude  float64 `json:"latitude" binding:"required"`
		Longitude float64 `json:"longitude" binding:"required"`
		RideID    string  `json:"rideId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	pos := models.Coordinates{Latitude: body.Latitude, Longitude: body.Longitude}

	err := h.Drivers.SetOnline(c.Request.Context(), stores.DriverPresence{
		DriverID:    driver.ID,
		Name:        driver.FullName(),
		VehicleType: driver.VehicleType,
		Latitude:    pos.Latitude,
		Longitude:   pos.Longitude,
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update location", err)
		return
	}

	var navState *nav.Update
	if body.RideID != "" {
		if err := h.Rides.RecordDriverPosition(c.Request.Context(), body.RideID, pos); err != nil {
			utils.Logger.Warn("Failed to record driver position",
				zap.String("rideId", body.RideID), zap.Error(err))
		}
		if tracker := h.Nav.Get(body.RideID); tracker != nil {
			u := tracker.Feed(pos)
			navState = &u
		}
	}

	utils.RespondSuccess(c, http.StatusOK, "Location updated", gin.H{"navigation": navState})
}

// GET /api/v1/driver/rides/available?limit=...
func (h *DriverHandler) GetAvailableRides(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rides, err := h.Rides.Available(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	utils.RespondSuccess(c, http.StatusOK, "Open ride requests", gin.H{"rides": rides})
}

// POST /api/v1/driver/ride/accept
func (h *DriverHandler) AcceptRide(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		RideID string `json:"rideId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	r, err := h.Rides.Accept(c.Request.Context(), body.RideID, driver.ID, driver.FullName())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Ride accepted", gin.H{"ride": r})
}

// POST /api/v1/driver/ride/arriving
func (h *DriverHandler) MarkArriving(c *gin.Context) {
	h.advanceRide(c, models.StatusDriverArriving, "Marked as arriving")
}

// POST /api/v1/driver/ride/pickup
func (h *DriverHandler) StartRide(c *gin.Context) {
	h.advanceRide(c, models.StatusInProgress, "Ride started")
}

// POST /api/v1/driver/ride/dropoff
func (h *DriverHandler) CompleteRide(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		RideID string `json:"rideId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if !h.drivesRide(c, driver.ID, body.RideID) {
		return
	}

	r, err := h.Rides.UpdateStatus(c.Request.Context(), body.RideID, models.StatusCompleted)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The navigation session ends with the trip.
	h.Nav.Stop(body.RideID)

	// Receipt email, off the hot path.
	utils.SafeGo(func() {
		var email string
		err := db.Pool.QueryRow(context.Background(),
			`SELECT email FROM users WHERE id=$1`, r.CustomerID).Scan(&email)
		if err != nil {
			utils.Logger.Warn("No customer email for receipt", zap.String("rideId", r.ID), zap.Error(err))
			return
		}
		if err := utils.SendRideReceipt(email, r); err != nil {
			utils.Logger.Error("Failed to send receipt email", zap.String("rideId", r.ID), zap.Error(err))
		}
	})

	utils.RespondSuccess(c, http.StatusOK, "Ride completed", gin.H{"ride": r})
}

func (h *DriverHandler) advanceRide(c *gin.Context, to models.RideStatus, message string) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		RideID string `json:"rideId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if !h.drivesRide(c, driver.ID, body.RideID) {
		return
	}

	r, err := h.Rides.UpdateStatus(c.Request.Context(), body.RideID, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, message, gin.H{"ride": r})
}

// GET /api/v1/driver/rides?limit=...
func (h *DriverHandler) GetDriverRides(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rides, err := h.Rides.History(c.Request.Context(), driver.ID, "driver", limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	utils.RespondSuccess(c, http.StatusOK, "Ride history", gin.H{"rides": rides})
}

// POST /api/v1/driver/navigation/start
// Phase "pickup" routes to the rider; "dropoff" routes to the destination.
func (h *DriverHandler) StartNavigation(c *gin.Context) {
	driver := c.MustGet("driver").(*models.Driver)
	var body struct {
		RideID string  `json:"rideId" binding:"required"`
		Phase  string  `json:"phase"`
		Lat    float64 `json:"latitude"`
		Lng    float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	r, err := h.Rides.Get(c.Request.Context(), body.RideID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if r.DriverID == nil || *r.DriverID != driver.ID {
		utils.RespondError(c, http.StatusForbidden, "Unauthorized access to this ride", nil)
		return
	}

	origin := models.Coordinates{Latitude: body.Lat, Longitude: body.Lng}
	if origin.Latitude == 0 && origin.Longitude == 0 {
		origin = r.Pickup.Coords()
	}

	dest := r.Destination.Coords()
	if body.Phase == "pickup" {
		dest = r.Pickup.Coords()
	}

	route, err := h.Maps.Route(c.Request.Context(), origin, dest)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Nav.Start(body.RideID, route, dest)

	utils.RespondSuccess(c, http.StatusOK, "Navigation started", gin.H{"route": route})
}

// POST /api/v1/driver/navigation/stop
func (h *DriverHandler) StopNavigation(c *gin.Context) {
	var body struct {
		RideID string `json:"rideId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	h.Nav.Stop(body.RideID)
	utils.RespondSuccess(c, http.StatusOK, "Navigation stopped", nil)
}

// GET /api/v1/driver/navigation/:rideId
func (h *DriverHandler) GetNavigationState(c *gin.Context) {
	tracker := h.Nav.Get(c.Param("rideId"))
	if tracker == nil {
		utils.RespondError(c, http.StatusNotFound, "No active navigation session", nil)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Navigation state", gin.H{"state": tracker.State()})
}

// drivesRide loads the ride and rejects the request unless this driver is
// assigned to it. Responds on failure and returns false.
func (h *DriverHandler) drivesRide(c *gin.Context, driverID, rideID string) bool {
	r, err := h.Rides.Get(c.Request.Context(), rideID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if r.DriverID == nil || *r.DriverID != driverID {
		utils.RespondError(c, http.StatusForbidden, "Unauthorized access to this ride", nil)
		return false
	}
	return true
}
