package models

import (
	"parkres/src/types"
)

// Car is a user's registered vehicle. A user may register the same
// license only once; exactly one of their cars is the default as long
// as they own any.
type Car struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	UserID    uint   `gorm:"uniqueIndex:idx_cars_owner_license" json:"user_id,omitempty"`
	License   string `gorm:"uniqueIndex:idx_cars_owner_license" json:"car_license"`
	Model     string `json:"car_model"`
	Color     string `json:"car_color,omitempty"`
	IsDefault bool   `json:"is_default"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
