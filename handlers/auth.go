package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"nextride/db"
	"nextride/models"
	"nextride/utils"
)

// RegisterAuthRoutes defines signup/login for both customer and driver apps.
func RegisterAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/user/signup", UserSignup)
		auth.POST("/user/login", UserLogin)
		auth.POST("/driver/signup", DriverSignup)
		auth.POST("/driver/login", DriverLogin)
	}
}

const userSelectCols = `id, email, "firstName", "lastName", "phoneNumber", "notificationToken", status, "createdAt", "updatedAt"`

func scanUser(scanner interface{ Scan(dest ...any) error }, u *models.User) error {
	return scanner.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.NotificationToken, &u.Status, &u.CreatedAt, &u.UpdatedAt)
}

const driverSelectCols = `id, email, "firstName", "lastName", "phoneNumber", "licenseNumber",
	"vehicleMake", "vehicleModel", "vehicleYear", "vehicleColor", "licensePlate", "vehicleType",
	"isAvailable", "isVerified", ratings, "totalRides", "notificationToken", status, "createdAt", "updatedAt"`

func scanDriver(scanner interface{ Scan(dest ...any) error }, d *models.Driver) error {
	return scanner.Scan(&d.ID, &d.Email, &d.FirstName, &d.LastName, &d.PhoneNumber, &d.LicenseNumber,
		&d.VehicleMake, &d.VehicleModel, &d.VehicleYear, &d.VehicleColor, &d.LicensePlate, &d.VehicleType,
		&d.IsAvailable, &d.IsVerified, &d.Rating, &d.TotalRides,
		&d.NotificationToken, &d.Status, &d.CreatedAt, &d.UpdatedAt)
}

// POST /api/v1/auth/user/signup
func UserSignup(c *gin.Context) {
	var body struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=8"`
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	hash, err := utils.HashPasswordArgon2(body.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	var phone *string
	if body.PhoneNumber != "" {
		phone = &body.PhoneNumber
	}

	var user models.User
	row := db.Pool.QueryRow(context.Background(),
		`INSERT INTO users (email, "passwordHash", "firstName", "lastName", "phoneNumber")
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userSelectCols,
		body.Email, hash, body.FirstName, body.LastName, phone)
	if err := scanUser(row, &user); err != nil {
		utils.RespondError(c, http.StatusConflict, "An account with this email already exists", err)
		return
	}

	utils.SendToken(c, &user, user.ID, "customer")
}

// POST /api/v1/auth/user/login
func UserLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	var user models.User
	var hash string
	err := db.Pool.QueryRow(context.Background(),
		`SELECT `+userSelectCols+`, "passwordHash" FROM users WHERE email=$1`, body.Email).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.PhoneNumber,
			&user.NotificationToken, &user.Status, &user.CreatedAt, &user.UpdatedAt, &hash)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password", err)
		return
	}

	ok, err := utils.ComparePasswordArgon2(body.Password, hash)
	if err != nil || !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password", err)
		return
	}

	if user.Status == "suspended" {
		utils.RespondError(c, http.StatusForbidden, "Your account has been suspended. Contact support.", nil)
		return
	}

	utils.SendToken(c, &user, user.ID, "customer")
}

// POST /api/v1/auth/driver/signup
func DriverSignup(c *gin.Context) {
	var body struct {
		Email         string             `json:"email" binding:"required,email"`
		Password      string             `json:"password" binding:"required,min=8"`
		FirstName     string             `json:"firstName" binding:"required"`
		LastName      string             `json:"lastName"`
		PhoneNumber   string             `json:"phoneNumber"`
		LicenseNumber string             `json:"licenseNumber" binding:"required"`
		VehicleMake   string             `json:"vehicleMake"`
		VehicleModel  string             `json:"vehicleModel"`
		VehicleYear   int                `json:"vehicleYear"`
		VehicleColor  string             `json:"vehicleColor"`
		LicensePlate  string             `json:"licensePlate"`
		VehicleType   models.VehicleType `json:"vehicleType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if !body.VehicleType.Valid() {
		utils.RespondError(c, http.StatusBadRequest, "Unknown vehicle type", nil)
		return
	}

	hash, err := utils.HashPasswordArgon2(body.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create account", err)
		return
	}

	var phone *string
	if body.PhoneNumber != "" {
		phone = &body.PhoneNumber
	}

	var driver models.Driver
	row := db.Pool.QueryRow(context.Background(),
		`INSERT INTO drivers (email, "passwordHash", "firstName", "lastName", "phoneNumber", "licenseNumber",
			"vehicleMake", "vehicleModel", "vehicleYear", "vehicleColor", "licensePlate", "vehicleType")
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+driverSelectCols,
		body.Email, hash, body.FirstName, body.LastName, phone, body.LicenseNumber,
		body.VehicleMake, body.VehicleModel, body.VehicleYear, body.VehicleColor, body.LicensePlate, body.VehicleType)
	if err := scanDriver(row, &driver); err != nil {
		utils.RespondError(c, http.StatusConflict, "An account with this email or license already exists", err)
		return
	}

	utils.SendToken(c, &driver, driver.ID, "driver")
}

// POST /api/v1/auth/driver/login
func DriverLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}

	var driver models.Driver
	var hash string
	err := db.Pool.QueryRow(context.Background(),
		`SELECT `+driverSelectCols+`, "passwordHash" FROM drivers WHERE email=$1`, body.Email).
		Scan(&driver.ID, &driver.Email, &driver.FirstName, &driver.LastName, &driver.PhoneNumber, &driver.LicenseNumber,
			&driver.VehicleMake, &driver.VehicleModel, &driver.VehicleYear, &driver.VehicleColor, &driver.LicensePlate, &driver.VehicleType,
			&driver.IsAvailable, &driver.IsVerified, &driver.Rating, &driver.TotalRides,
			&driver.NotificationToken, &driver.Status, &driver.CreatedAt, &driver.UpdatedAt, &hash)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password", err)
		return
	}

	ok, err := utils.ComparePasswordArgon2(body.Password, hash)
	if err != nil || !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password", err)
		return
	}

	if driver.Status == "suspended" {
		utils.RespondError(c, http.StatusForbidden, "Your account has been suspended. Contact support.", nil)
		return
	}

	utils.SendToken(c, &driver, driver.ID, "driver")
}
