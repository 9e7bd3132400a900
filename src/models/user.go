package models

import (
	"parkres/src/types"
)

type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Username     string `gorm:"uniqueIndex" json:"username"`
	Name         string `json:"name,omitempty"`
	PasswordHash string     `json:"-"`
	Role         types.Role `gorm:"default:'user'" json:"role,omitempty"`

	Cars     []Car     `gorm:"foreignKey:user_id" json:"cars,omitempty"`
	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`

	types.Timestamps
}
