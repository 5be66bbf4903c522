package models

import "time"

// Coordinates is a bare latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a coordinate pair plus the resolved postal address.
// Immutable once attached to a ride.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	Country   string  `json:"country,omitempty"`
}

// Coords returns just the coordinate pair of the location.
func (l Location) Coords() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

type VehicleType string

const (
	VehicleSedan     VehicleType = "sedan"
	VehicleSUV       VehicleType = "suv"
	VehicleHatchback VehicleType = "hatchback"
	VehicleLuxury    VehicleType = "luxury"
)

// Valid reports whether vt is one of the supported vehicle classes.
func (vt VehicleType) Valid() bool {
	switch vt {
	case VehicleSedan, VehicleSUV, VehicleHatchback, VehicleLuxury:
		return true
	}
	return false
}

type RideStatus string

const (
	StatusRequested      RideStatus = "requested"
	StatusAccepted       RideStatus = "accepted"
	StatusDriverArriving RideStatus = "driver_arriving"
	StatusInProgress     RideStatus = "in_progress"
	StatusCompleted      RideStatus = "completed"
	StatusCancelled      RideStatus = "cancelled"
)

// Terminal reports whether the status is an end state of the ride lifecycle.
func (s RideStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Ride is the central lifecycle record. Fare and estimated duration are
// computed once at creation and never re-quoted. DriverID/DriverName stay
// nil until the ride is accepted and are never cleared afterwards.
type Ride struct {
	ID                string      `json:"id"`
	CustomerID        string      `json:"customerId"`
	CustomerName      string      `json:"customerName"`
	Pickup            Location    `json:"pickupLocation"`
	Destination       Location    `json:"destination"`
	VehicleType       VehicleType `json:"vehicleType"`
	Fare              float64     `json:"fare"`
	EstimatedDuration int         `json:"estimatedDuration"` // minutes
	PaymentMethod     string      `json:"paymentMethod"`
	Status            RideStatus  `json:"status"`
	DriverID          *string     `json:"driverId,omitempty"`
	DriverName        *string     `json:"driverName,omitempty"`
	Rating            *float64    `json:"rating,omitempty"`
	Review            *string     `json:"review,omitempty"`

	// Live driver position while the ride is active.
	DriverLocation     *Coordinates `json:"driverLocation,omitempty"`
	LastLocationUpdate *time.Time   `json:"lastLocationUpdate,omitempty"`

	RequestedAt time.Time  `json:"requestedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Driver *Driver `json:"driver,omitempty"`
	User   *User   `json:"user,omitempty"`
}

// SavedLocation is a customer's named favorite (e.g. "Home", "Work").
type SavedLocation struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

type PaymentMethod struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // card, cash, wallet
	Last4     string `json:"last4,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// User is a customer profile.
type User struct {
	ID                string          `json:"id"`
	Email             string          `json:"email"`
	FirstName         string          `json:"firstName"`
	LastName          string          `json:"lastName"`
	PhoneNumber       *string         `json:"phoneNumber"`
	NotificationToken *string         `json:"notificationToken"`
	SavedLocations    []SavedLocation `json:"savedLocations,omitempty"`
	PaymentMethods    []PaymentMethod `json:"paymentMethods,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Driver is a driver profile with vehicle and availability fields.
type Driver struct {
	ID                string      `json:"id"`
	Email             string      `json:"email"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	PhoneNumber       *string     `json:"phoneNumber"`
	LicenseNumber     string      `json:"licenseNumber"`
	VehicleMake       string      `json:"vehicleMake"`
	VehicleModel      string      `json:"vehicleModel"`
	VehicleYear       int         `json:"vehicleYear"`
	VehicleColor      string      `json:"vehicleColor"`
	LicensePlate      string      `json:"licensePlate"`
	VehicleType       VehicleType `json:"vehicleType"`
	IsAvailable       bool        `json:"isAvailable"`
	IsVerified        bool        `json:"isVerified"`
	Rating            float64     `json:"rating"`
	TotalRides        int         `json:"totalRides"`
	NotificationToken *string     `json:"notificationToken"`
	Status            string      `json:"status"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// FullName joins the profile name fields for display.
func (d Driver) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type NotificationType string

const (
	NotifyRideRequest    NotificationType = "ride_request"
	NotifyRideAccepted   NotificationType = "ride_accepted"
	NotifyDriverArriving NotificationType = "driver_arriving"
	NotifyRideStarted    NotificationType = "ride_started"
	NotifyRideCompleted  NotificationType = "ride_completed"
	NotifyRideCancelled  NotificationType = "ride_cancelled"
)

// NotificationPayload is what the lifecycle manager hands to the dispatch
// collaborator. The lifecycle manager decides when to send and what to say;
// the dispatcher only delivers.
type NotificationPayload struct {
	RideID string           `json:"rideId"`
	Type   NotificationType `json:"type"`
	UserID string           `json:"userId"`
	Role   string           `json:"role"` // customer or driver
	Title  string           `json:"title"`
	Body   string           `json:"body"`
}

// Notification is the persisted form of a dispatched payload.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	RideID    *string          `json:"rideId,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// APILog records a request/response pair against an external provider.
type APILog struct {
	ID              string      `json:"id"`
	Provider        string      `json:"provider"`
	Endpoint        string      `json:"endpoint"`
	RequestID       *string     `json:"requestId"`
	RequestPayload  interface{} `json:"requestPayload"`
	ResponsePayload interface{} `json:"responsePayload"`
	StatusCode      int         `json:"statusCode"`
	DurationMs      int         `json:"durationMs"`
	CreatedAt       time.Time   `json:"createdAt"`
}
