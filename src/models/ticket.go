package models

import (
	"time"
)

// Ticket is the proof-of-approval artifact, bound one-to-one to its
// booking. Created once, inside the approval transaction; never
// mutated or deleted afterwards.
type Ticket struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	TicketNumber string    `gorm:"uniqueIndex" json:"ticket_number"`
	BookingID    uint      `gorm:"uniqueIndex" json:"booking_id"`
	QRCode       string    `json:"qr_code"`
	IssuedAt     time.Time `gorm:"autoCreateTime" json:"issued_at"`

	Booking *Booking `json:"booking,omitempty"`
}
