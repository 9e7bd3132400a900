package boot

import (
	"fmt"
	"log"
	"parkres/src/db"
	"parkres/src/models"
	"parkres/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Car{},
		&models.ParkingSpot{},
		&models.Booking{},
		&models.Ticket{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// SeedParkingSpots inserts the fixed lot layout: ten spots per zone,
// numbered A01..A10, B01..B10, C01..C10. Existing spots are left untouched
// so reseeding on startup is safe.
func SeedParkingSpots(conn *gorm.DB) error {
	zones := []types.Zone{types.ZONE_A, types.ZONE_B, types.ZONE_C}
	spots := make([]models.ParkingSpot, 0, len(zones)*10)
	for _, zone := range zones {
		for i := 1; i <= 10; i++ {
			spots = append(spots, models.ParkingSpot{
				SpotNumber:  fmt.Sprintf("%s%02d", zone, i),
				Zone:        zone,
				IsAvailable: true,
			})
		}
	}
	err := conn.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "spot_number"}},
			DoNothing: true,
		}).
		Create(&spots).
		Error
	if err != nil {
		log.Printf("Error seeding parking spots: %s\n", err.Error())
		return err
	}
	return nil
}
