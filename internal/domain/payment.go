package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// Payment is the read/write view of the payment this service reconciles
// refunds against. Only the status column is ever written.
type Payment struct {
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	BookingID      *int64          `json:"booking_id"`
	EventBookingID *int64          `json:"event_booking_id"`
	TransactionID  *string         `json:"transaction_id"`
	Method         string          `json:"payment_method"`
	Status         PaymentStatus   `json:"payment_status"`
	Amount         decimal.Decimal `json:"amount"`
	ID             int64           `json:"id"`
}

// IsRefundable returns true if the payment's own status permits refunds.
// Booking state is checked separately.
func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentStatusCompleted
}

// BookingStatus represents the state of a room booking (read-only lookup)
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusCheckedIn  BookingStatus = "CHECKED_IN"
	BookingStatusCheckedOut BookingStatus = "CHECKED_OUT"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// EventBookingStatus represents the state of an event booking (read-only lookup)
type EventBookingStatus string

const (
	EventBookingStatusPending   EventBookingStatus = "PENDING"
	EventBookingStatusConfirmed EventBookingStatus = "CONFIRMED"
	EventBookingStatusCompleted EventBookingStatus = "COMPLETED"
	EventBookingStatusCancelled EventBookingStatus = "CANCELLED"
)
