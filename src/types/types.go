package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type BookingStatus string

const (
	BOOKING_WAITING   BookingStatus = "WAITING"
	BOOKING_APPROVED  BookingStatus = "APPROVED"
	BOOKING_REJECTED  BookingStatus = "REJECTED"
	BOOKING_CANCELLED BookingStatus = "CANCELLED"
)

type Zone string

const (
	ZONE_A Zone = "A"
	ZONE_B Zone = "B"
	ZONE_C Zone = "C"
)

type Role string

const (
	ROLE_USER  Role = "user"
	ROLE_STAFF Role = "staff"
)

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type BookingIDParams struct {
	BookingID string `uri:"bookingId" binding:"required"`
}

type RegisterUserRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name,omitempty"`
}

type LoginRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateCarRequestBody struct {
	License   string `json:"car_license" binding:"required"`
	Model     string `json:"car_model" binding:"required"`
	Color     string `json:"car_color,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type UpdateCarRequestBody struct {
	License   string `json:"car_license" binding:"required"`
	Model     string `json:"car_model" binding:"required"`
	Color     string `json:"car_color,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// CreateBookingRequestBody carries either a reference to one of the
// caller's registered cars or the car details typed in manually.
// Cross-field presence is checked by the booking helper, not here.
type CreateBookingRequestBody struct {
	CarID       *uint  `json:"car_id,omitempty"`
	CarLicense  string `json:"car_license,omitempty"`
	CarModel    string `json:"car_model,omitempty"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required,bookingdate"`
	StartTime   string `json:"start_time" binding:"required,timeofday"`
	EndTime     string `json:"end_time" binding:"required,timeofday"`
	Note        string `json:"note,omitempty"`
}

type BookingListCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type SpotCounts struct {
	Total     int64 `json:"total_spots"`
	Available int64 `json:"available_spots"`
	Occupied  int64 `json:"occupied_spots"`
}
