package ports

import (
	"context"

	"github.com/palmgrove/refund-service/internal/domain"
)

// PaymentRepository defines the read/write contract against the payments
// table. Refunds only ever write the status column.
type PaymentRepository interface {
	// GetByID retrieves a payment by its ID
	GetByID(ctx context.Context, db DBTX, id int64) (*domain.Payment, error)

	// GetByIDForUpdate retrieves a payment and takes a row-level lock so the
	// refundable-balance check and the subsequent writes see a stable row.
	// Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, tx DBTX, id int64) (*domain.Payment, error)

	// UpdateStatus updates a payment's status
	UpdateStatus(ctx context.Context, tx DBTX, id int64, status domain.PaymentStatus) error
}

// BookingRepository is the read-only lookup for room bookings
type BookingRepository interface {
	// GetStatus returns the status of a booking
	GetStatus(ctx context.Context, db DBTX, id int64) (domain.BookingStatus, error)
}

// EventBookingRepository is the read-only lookup for event bookings
type EventBookingRepository interface {
	// GetStatus returns the status of an event booking
	GetStatus(ctx context.Context, db DBTX, id int64) (domain.EventBookingStatus, error)
}
