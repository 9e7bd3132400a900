package models

import (
	"parkres/src/types"
)

// ParkingSpot is one space in the fixed pool. Availability is toggled
// only inside the approval transaction (and by the administrative
// release action); spots are never deleted in normal operation.
type ParkingSpot struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	SpotNumber  string     `gorm:"uniqueIndex" json:"spot_number"`
	Zone        types.Zone `json:"zone"`
	IsAvailable bool       `gorm:"default:true" json:"is_available"`

	types.Timestamps
}
