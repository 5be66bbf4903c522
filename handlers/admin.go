package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nextride/db"
	"nextride/models"
	"nextride/ride"
	"nextride/utils"
)

// AdminHandler serves the operations dashboard.
type AdminHandler struct {
	Rides *ride.Service
}

// RegisterAdminRoutes defines all administrative API endpoints.
func (h *AdminHandler) RegisterAdminRoutes(r *gin.Engine, adminMiddleware gin.HandlerFunc) {
	adminGroup := r.Group("/api/v1/admin", adminMiddleware)
	{
		adminGroup.GET("/dashboard", AdminDashboard)
		adminGroup.GET("/rides/active", h.AdminGetActiveRides)
		adminGroup.GET("/rides/open", h.AdminGetOpenRequests)
	}
}

// GET /api/v1/admin/dashboard
func AdminDashboard(c *gin.Context) {
	ctx := context.Background()

	var totalUsers, totalDrivers, totalRides, activeRides, completedRides int
	var totalRevenue float64

	db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers)
	db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM drivers`).Scan(&totalDrivers)
	db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM rides`).Scan(&totalRides)
	db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rides WHERE status IN ($1, $2, $3)`,
		models.StatusAccepted, models.StatusDriverArriving, models.StatusInProgress).Scan(&activeRides)
	db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(fare), 0) FROM rides WHERE status=$1`,
		models.StatusCompleted).Scan(&completedRides, &totalRevenue)

	utils.RespondSuccess(c, http.StatusOK, "Dashboard", gin.H{
		"totalUsers":     totalUsers,
		"totalDrivers":   totalDrivers,
		"totalRides":     totalRides,
		"activeRides":    activeRides,
		"completedRides": completedRides,
		"totalRevenue":   totalRevenue,
	})
}

// GET /api/v1/admin/rides/active?limit=...
func (h *AdminHandler) AdminGetActiveRides(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	rows, err := db.Pool.Query(context.Background(), `
		SELECT id, "customerId", "customerName", "driverId", "driverName",
			"pickupAddress", "destAddress", "vehicleType", fare, status,
			"driverLat", "driverLng", "requestedAt"
		FROM rides
		WHERE status IN ($1, $2, $3)
		ORDER BY "requestedAt" DESC
		LIMIT $4`,
		models.StatusAccepted, models.StatusDriverArriving, models.StatusInProgress, limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to load active rides", err)
		return
	}
	defer rows.Close()

	type activeRide struct {
		ID            string             `json:"id"`
		CustomerID    string             `json:"customerId"`
		CustomerName  string             `json:"customerName"`
		DriverID      *string            `json:"driverId"`
		DriverName    *string            `json:"driverName"`
		PickupAddress string             `json:"pickupAddress"`
		DestAddress   string             `json:"destAddress"`
		VehicleType   models.VehicleType `json:"vehicleType"`
		Fare          float64            `json:"fare"`
		Status        models.RideStatus  `json:"status"`
		DriverLat     *float64           `json:"driverLat"`
		DriverLng     *float64           `json:"driverLng"`
		RequestedAt   time.Time          `json:"requestedAt"`
	}

	rides := []activeRide{}
	for rows.Next() {
		var r activeRide
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.CustomerName, &r.DriverID, &r.DriverName,
			&r.PickupAddress, &r.DestAddress, &r.VehicleType, &r.Fare, &r.Status,
			&r.DriverLat, &r.DriverLng, &r.RequestedAt); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to scan active rides", err)
			return
		}
		rides = append(rides, r)
	}

	utils.RespondSuccess(c, http.StatusOK, "Active rides", gin.H{"rides": rides})
}

// GET /api/v1/admin/rides/open?limit=...
func (h *AdminHandler) AdminGetOpenRequests(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

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
