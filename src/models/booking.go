package models

import (
	"time"

	"parkres/src/types"
)

// Booking is a request to occupy a spot for a date/time window. The
// car details are a snapshot taken at creation time and do not follow
// later edits to the referenced Car. ParkingSpotID is set if and only
// if the booking has been approved; approval is never reverted.
type Booking struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	BookingID     string `gorm:"uniqueIndex" json:"booking_id"`
	UserID        uint   `json:"user_id,omitempty"`
	CarID         *uint  `json:"car_id,omitempty"`
	ParkingSpotID *uint  `json:"parking_spot_id,omitempty"`

	CarLicense  string `json:"car_license"`
	CarModel    string `json:"car_model"`
	PhoneNumber string `json:"phone_number"`

	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`

	Status types.BookingStatus `gorm:"default:'WAITING'" json:"status"`
	Note   string              `json:"note,omitempty"`

	ApprovedByID *uint      `json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`

	User        *User        `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Car         *Car         `gorm:"foreignKey:car_id" json:"car,omitempty"`
	ParkingSpot *ParkingSpot `gorm:"foreignKey:parking_spot_id" json:"parking_spot,omitempty"`
	ApprovedBy  *User        `gorm:"foreignKey:approved_by_id" json:"approved_by,omitempty"`
	Ticket      *Ticket      `json:"ticket,omitempty"`

	types.Timestamps
}
