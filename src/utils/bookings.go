package utils

import (
	"errors"
	"fmt"
	"log"
	"parkres/src/config"
	"parkres/src/db"
	"parkres/src/models"
	"parkres/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// createBookingWithFreshID inserts the booking under a savepoint so a
// booking_id collision can be retried without aborting the enclosing
// transaction.
func createBookingWithFreshID(tx *gorm.DB, booking *models.Booking) error {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		booking.BookingID = NewBookingID(time.Now())
		sp := fmt.Sprintf("sp_booking_%d", attempt)
		tx.SavePoint(sp)
		err := tx.Create(booking).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		log.Printf("booking_id collision on %s, retrying\n", booking.BookingID)
		tx.RollbackTo(sp)
	}
	return types.ErrDuplicateIdentifier
}

func createTicketWithFreshNumber(tx *gorm.DB, booking *models.Booking) (*models.Ticket, error) {
	const maxAttempts = 3
	ticket := models.Ticket{BookingID: booking.ID}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ticket.TicketNumber = NewTicketNumber(time.Now())
		ticket.QRCode = QRPayload(ticket.TicketNumber, booking.BookingID)
		sp := fmt.Sprintf("sp_ticket_%d", attempt)
		tx.SavePoint(sp)
		err := tx.Create(&ticket).Error
		if err == nil {
			return &ticket, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		log.Printf("ticket_number collision on %s, retrying\n", ticket.TicketNumber)
		tx.RollbackTo(sp)
	}
	return nil, types.ErrDuplicateIdentifier
}

func CreateNewBooking(params *types.CreateBookingRequestBody, userId uint) (*models.Booking, error) {
	// Times are stored as entered; overnight windows (end before start)
	// are legitimate, so there is no cross-field check here.
	if _, err := time.Parse(config.TIME_OF_DAY_FORMAT, params.StartTime); err != nil {
		return nil, &types.ValidationError{Fields: []string{"start_time must be HH:MM"}}
	}
	if _, err := time.Parse(config.TIME_OF_DAY_FORMAT, params.EndTime); err != nil {
		return nil, &types.ValidationError{Fields: []string{"end_time must be HH:MM"}}
	}

	booking := models.Booking{
		UserID:      userId,
		PhoneNumber: params.PhoneNumber,
		BookingDate: params.BookingDate,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Note:        params.Note,
		Status:      types.BOOKING_WAITING,
	}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if params.CarID != nil {
			var car models.Car
			if err := tx.
				Where(&models.Car{ID: *params.CarID}).
				First(&car).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.ErrNotFound
				}
				return err
			}
			// Another user's car is indistinguishable from a missing one.
			if car.UserID != userId {
				return types.ErrNotFound
			}
			// Snapshot the car details; later edits to the Car must not
			// rewrite booking history.
			booking.CarID = &car.ID
			booking.CarLicense = car.License
			booking.CarModel = car.Model
		} else {
			fields := []string{}
			if params.CarLicense == "" {
				fields = append(fields, "car_license is required when car_id is not set")
			}
			if params.CarModel == "" {
				fields = append(fields, "car_model is required when car_id is not set")
			}
			if len(fields) > 0 {
				return &types.ValidationError{Fields: fields}
			}
			booking.CarLicense = params.CarLicense
			booking.CarModel = params.CarModel
		}
		return createBookingWithFreshID(tx, &booking)
	})
	if err != nil {
		log.Printf("CreateNewBooking failed: %s\n", err.Error())
		return nil, err
	}
	return &booking, nil
}

func GetOwnBookings(userId uint) ([]models.Booking, *types.BookingListCounts, error) {
	var bookings []models.Booking
	counts := types.BookingListCounts{}
	db := db.GetDb()
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{UserID: userId}).
		Preload("ParkingSpot").
		Preload("Ticket").
		Order("created_at DESC").
		Find(&bookings).
		Error
	if err != nil {
		return nil, nil, err
	}
	counts.Total = int64(len(bookings))
	for _, b := range bookings {
		switch b.Status {
		case types.BOOKING_WAITING:
			counts.Pending++
		case types.BOOKING_APPROVED:
			counts.Approved++
		case types.BOOKING_REJECTED:
			counts.Rejected++
		}
	}
	return bookings, &counts, nil
}

// CancelBooking lets the owner withdraw a booking that has not been
// decided yet. Approved bookings are released by staff, not cancelled.
func CancelBooking(bookingId string, userId uint) (*models.Booking, error) {
	var booking models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Table:    clause.Table{Name: clause.CurrentTable},
			}).
			Where(&models.Booking{BookingID: bookingId}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if booking.UserID != userId {
			return types.ErrForbidden
		}
		if booking.Status != types.BOOKING_WAITING {
			return types.ErrInvalidTransition
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", types.BOOKING_CANCELLED).
			Error; err != nil {
			return err
		}
		booking.Status = types.BOOKING_CANCELLED
		return nil
	})
	if err != nil {
		log.Printf("CancelBooking failed: %s\n", err.Error())
		return nil, err
	}
	return &booking, nil
}

// ApproveBooking moves a WAITING booking to APPROVED: it locks the
// booking row, claims the first free spot in zone-then-number order
// under a row lock, and issues the ticket, all in one transaction. Concurrent approvals
// of the last free spot serialize on the spot lock; the loser sees no
// free spot and the booking stays WAITING.
func ApproveBooking(bookingId string, staffId uint, role types.Role) (*models.Booking, error) {
	if role != types.ROLE_STAFF {
		return nil, types.ErrForbidden
	}
	var booking models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Table:    clause.Table{Name: clause.CurrentTable},
			}).
			Where(&models.Booking{BookingID: bookingId}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if booking.Status != types.BOOKING_WAITING {
			return types.ErrInvalidTransition
		}

		var spot models.ParkingSpot
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Table:    clause.Table{Name: clause.CurrentTable},
			}).
			Where(&models.ParkingSpot{IsAvailable: true}).
			Order("zone asc, spot_number asc").
			First(&spot).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNoCapacity
			}
			return err
		}
		if err := tx.
			Model(&models.ParkingSpot{}).
			Where(&models.ParkingSpot{ID: spot.ID}).
			Update("is_available", false).
			Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(&models.Booking{
				Status:        types.BOOKING_APPROVED,
				ParkingSpotID: &spot.ID,
				ApprovedByID:  &staffId,
				ApprovedAt:    &now,
			}).
			Error; err != nil {
			return err
		}

		ticket, err := createTicketWithFreshNumber(tx, &booking)
		if err != nil {
			return err
		}

		booking.Status = types.BOOKING_APPROVED
		booking.ParkingSpotID = &spot.ID
		booking.ParkingSpot = &spot
		booking.ApprovedByID = &staffId
		booking.ApprovedAt = &now
		booking.Ticket = ticket
		return nil
	})
	if err != nil {
		log.Printf("ApproveBooking failed: %s\n", err.Error())
		return nil, err
	}
	return &booking, nil
}

// RejectBooking moves a WAITING booking to REJECTED. No spot or ticket
// is involved; the decision is recorded the same way as an approval.
func RejectBooking(bookingId string, staffId uint, role types.Role) (*models.Booking, error) {
	if role != types.ROLE_STAFF {
		return nil, types.ErrForbidden
	}
	var booking models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Table:    clause.Table{Name: clause.CurrentTable},
			}).
			Where(&models.Booking{BookingID: bookingId}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if booking.Status != types.BOOKING_WAITING {
			return types.ErrInvalidTransition
		}
		now := time.Now()
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(&models.Booking{
				Status:       types.BOOKING_REJECTED,
				ApprovedByID: &staffId,
				ApprovedAt:   &now,
			}).
			Error; err != nil {
			return err
		}
		booking.Status = types.BOOKING_REJECTED
		booking.ApprovedByID = &staffId
		booking.ApprovedAt = &now
		return nil
	})
	if err != nil {
		log.Printf("RejectBooking failed: %s\n", err.Error())
		return nil, err
	}
	return &booking, nil
}

// ReleaseSpot returns an approved booking's spot to the pool, e.g.
// when the car has left. The booking keeps its APPROVED status and
// spot reference for history.
func ReleaseSpot(bookingId string, staffId uint, role types.Role) (*models.Booking, error) {
	if role != types.ROLE_STAFF {
		return nil, types.ErrForbidden
	}
	var booking models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Table:    clause.Table{Name: clause.CurrentTable},
			}).
			Where(&models.Booking{BookingID: bookingId}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.ErrNotFound
			}
			return err
		}
		if booking.Status != types.BOOKING_APPROVED || booking.ParkingSpotID == nil {
			return types.ErrInvalidTransition
		}
		return tx.
			Model(&models.ParkingSpot{}).
			Where(&models.ParkingSpot{ID: *booking.ParkingSpotID}).
			Update("is_available", true).
			Error
	})
	if err != nil {
		log.Printf("ReleaseSpot failed: %s\n", err.Error())
		return nil, err
	}
	return &booking, nil
}

func GetSpotCounts() (*types.SpotCounts, error) {
	counts := types.SpotCounts{}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.ParkingSpot{}).
			Count(&counts.Total).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.ParkingSpot{}).
			Where(&models.ParkingSpot{IsAvailable: true}).
			Count(&counts.Available).
			Error; err != nil {
			return err
		}
		counts.Occupied = counts.Total - counts.Available
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func GetParkingSpots() ([]models.ParkingSpot, error) {
	var spots []models.ParkingSpot
	db := db.GetDb()
	err := db.
		Model(&models.ParkingSpot{}).
		Order("zone asc, spot_number asc").
		Find(&spots).
		Error
	return spots, err
}

func GetWaitingBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	db := db.GetDb()
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{Status: types.BOOKING_WAITING}).
		Preload("User").
		Order("created_at asc").
		Find(&bookings).
		Error
	return bookings, err
}

// GetTicketForBooking loads the ticket issued for a booking. Regular
// users may only read tickets for their own bookings.
func GetTicketForBooking(bookingId string, userId uint, role types.Role) (*models.Ticket, error) {
	var booking models.Booking
	db := db.GetDb()
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{BookingID: bookingId}).
		Preload("Ticket").
		Preload("ParkingSpot").
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	if booking.UserID != userId && role != types.ROLE_STAFF {
		return nil, types.ErrForbidden
	}
	if booking.Status != types.BOOKING_APPROVED || booking.Ticket == nil {
		return nil, types.ErrNotFound
	}
	ticket := booking.Ticket
	booking.Ticket = nil
	ticket.Booking = &booking
	return ticket, nil
}
