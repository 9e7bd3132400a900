package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	BOOKING_ID_PREFIX    = "PK"
	TICKET_NUMBER_PREFIX = "TK"
)

func randomHex(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:n]
}

// NewBookingID returns a candidate booking identifier, e.g.
// PK20250614A3F2B1. Uniqueness is enforced by the database; callers
// retry with a fresh candidate on collision.
func NewBookingID(now time.Time) string {
	return fmt.Sprintf("%s%s%s", BOOKING_ID_PREFIX, now.Format("20060102"), randomHex(6))
}

// NewTicketNumber returns a candidate ticket number, e.g.
// TK20250614A3F2B1C4.
func NewTicketNumber(now time.Time) string {
	return fmt.Sprintf("%s%s%s", TICKET_NUMBER_PREFIX, now.Format("20060102"), randomHex(8))
}

// QRPayload is the string encoded into a ticket's QR image.
func QRPayload(ticketNumber string, bookingId string) string {
	return fmt.Sprintf("TICKET:%s|BOOKING:%s", ticketNumber, bookingId)
}
