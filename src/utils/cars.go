package utils

import (
	"errors"
	"log"
	"parkres/src/db"
	"parkres/src/models"
	"parkres/src/types"

	"gorm.io/gorm"
)

func CreateNewCar(params *types.CreateCarRequestBody, userId uint) (uint, error) {
	car := models.Car{
		License:   params.License,
		Model:     params.Model,
		Color:     params.Color,
		IsDefault: params.IsDefault,
		UserID:    userId,
	}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.Car{}).
			Where(&models.Car{UserID: userId}).
			Count(&count).
			Error; err != nil {
			return err
		}
		// A user's first car is always the default.
		if count == 0 {
			car.IsDefault = true
		} else if car.IsDefault {
			if err := tx.
				Model(&models.Car{}).
				Where(&models.Car{UserID: userId}).
				Update("is_default", false).
				Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&car).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.ErrDuplicateLicense
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("CreateNewCar failed: %s\n", err.Error())
		return 0, err
	}
	return car.ID, nil
}

func UpdateCar(id uint, userId uint, params *types.UpdateCarRequestBody) (*models.Car, error) {
	var car models.Car
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Car{ID: id, UserID: userId}).
			First(&car).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if params.IsDefault && !car.IsDefault {
			if err := tx.
				Model(&models.Car{}).
				Where(&models.Car{UserID: userId}).
				Update("is_default", false).
				Error; err != nil {
				return err
			}
		}
		updates := map[string]any{
			"license": params.License,
			"model":   params.Model,
			"color":   params.Color,
		}
		// The default flag only moves forward here; pointing it at
		// another car happens through SetDefaultCar.
		if params.IsDefault {
			updates["is_default"] = true
		}
		if err := tx.
			Model(&models.Car{}).
			Where(&models.Car{ID: car.ID}).
			Updates(updates).
			Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.ErrDuplicateLicense
			}
			return err
		}
		return tx.Where(&models.Car{ID: car.ID}).First(&car).Error
	})
	if err != nil {
		log.Printf("UpdateCar failed: %s\n", err.Error())
		return nil, err
	}
	return &car, nil
}

func DeleteCar(id uint, userId uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := tx.
			Where(&models.Car{ID: id, UserID: userId}).
			First(&car).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		var active int64
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{CarID: &car.ID}).
			Where("status IN (?)", []types.BookingStatus{
				types.BOOKING_WAITING,
				types.BOOKING_APPROVED,
			}).
			Count(&active).
			Error; err != nil {
			return err
		}
		if active > 0 {
			return &types.CarInUseError{Count: active}
		}
		if err := tx.Delete(&car).Error; err != nil {
			return err
		}
		if car.IsDefault {
			// Promote the oldest remaining car so the invariant of one
			// default per owner survives the deletion.
			var next models.Car
			err := tx.
				Where(&models.Car{UserID: userId}).
				Order("created_at asc").
				First(&next).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return tx.
				Model(&models.Car{}).
				Where(&models.Car{ID: next.ID}).
				Update("is_default", true).
				Error
		}
		return nil
	})
	if err != nil {
		log.Printf("DeleteCar failed: %s\n", err.Error())
	}
	return err
}

func SetDefaultCar(id uint, userId uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var car models.Car
		if err := tx.
			Where(&models.Car{ID: id, UserID: userId}).
			First(&car).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if err := tx.
			Model(&models.Car{}).
			Where(&models.Car{UserID: userId}).
			Update("is_default", false).
			Error; err != nil {
			return err
		}
		return tx.
			Model(&models.Car{}).
			Where(&models.Car{ID: car.ID}).
			Update("is_default", true).
			Error
	})
	if err != nil {
		log.Printf("SetDefaultCar failed: %s\n", err.Error())
	}
	return err
}

func GetOwnCars(userId uint) ([]models.Car, error) {
	var cars []models.Car
	db := db.GetDb()
	err := db.
		Model(&models.Car{}).
		Where(&models.Car{UserID: userId}).
		Order("is_default desc, created_at desc").
		Find(&cars).
		Error
	return cars, err
}
