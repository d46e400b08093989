package ports

import (
	"context"

	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	// Create inserts a new refund and fills in its generated ID and
	// bookkeeping timestamps. Returns a REFUND_DUPLICATE_REFERENCE domain
	// error when the reference collides with an existing row.
	Create(ctx context.Context, tx DBTX, refund *domain.Refund) error

	// GetByID retrieves a refund by its ID
	GetByID(ctx context.Context, db DBTX, id int64) (*domain.Refund, error)

	// GetByReference retrieves a refund by its human-readable reference
	GetByReference(ctx context.Context, db DBTX, reference string) (*domain.Refund, error)

	// Update persists all mutable fields of an existing refund
	Update(ctx context.Context, tx DBTX, refund *domain.Refund) error

	// List returns all refunds, newest first
	List(ctx context.Context, db DBTX) ([]*domain.Refund, error)

	// ListByStatus returns refunds in the given status
	ListByStatus(ctx context.Context, db DBTX, status domain.RefundStatus) ([]*domain.Refund, error)

	// ListByRequestedBy returns refunds requested by the given user
	ListByRequestedBy(ctx context.Context, db DBTX, requestedBy string) ([]*domain.Refund, error)

	// ListByPayment returns all refunds against the given payment
	ListByPayment(ctx context.Context, db DBTX, paymentID int64) ([]*domain.Refund, error)

	// ListActiveByPayment returns non-cancelled refunds against the given payment
	ListActiveByPayment(ctx context.Context, db DBTX, paymentID int64) ([]*domain.Refund, error)

	// ListByBooking returns refunds linked to the given booking
	ListByBooking(ctx context.Context, db DBTX, bookingID int64) ([]*domain.Refund, error)

	// ListByEventBooking returns refunds linked to the given event booking
	ListByEventBooking(ctx context.Context, db DBTX, eventBookingID int64) ([]*domain.Refund, error)

	// CountByStatus returns the number of refunds in the given status
	CountByStatus(ctx context.Context, db DBTX, status domain.RefundStatus) (int64, error)

	// SumAmountByStatus returns the summed refund amount for the given status,
	// zero when no rows match
	SumAmountByStatus(ctx context.Context, db DBTX, status domain.RefundStatus) (decimal.Decimal, error)
}
