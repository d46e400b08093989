package ports

import (
	"context"

	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateRefundRequest carries everything needed to open a refund request
type CreateRefundRequest struct {
	Type        domain.RefundType
	Reason      string
	Method      string
	Notes       string
	RequestedBy string
	Amount      decimal.Decimal
	PaymentID   int64
}

// UpdateRefundRequest is a partial update: nil fields are left untouched
type UpdateRefundRequest struct {
	Status        *domain.RefundStatus
	Method        *string
	TransactionID *string
	AdminNotes    *string
	Notes         *string
	Amount        *decimal.Decimal
}

// RefundWithPayment pairs a refund with its originating payment for detail views
type RefundWithPayment struct {
	Refund  *domain.Refund
	Payment *domain.Payment
}

// StatusMetrics holds the aggregate count and summed amount for one status
type StatusMetrics struct {
	Amount decimal.Decimal
	Count  int64
}

// RefundStats aggregates refund counts and amounts per status
type RefundStats struct {
	ByStatus map[domain.RefundStatus]StatusMetrics
}

// RefundService defines the refund workflow operations
type RefundService interface {
	// Create validates payment eligibility and the refundable balance, then
	// persists a pending refund and moves the payment to REFUNDED or
	// PARTIALLY_REFUNDED in the same transaction
	Create(ctx context.Context, req CreateRefundRequest) (*domain.Refund, error)

	// Update applies a partial update; a status change triggers its
	// corresponding actor/timestamp side effect
	Update(ctx context.Context, id int64, patch UpdateRefundRequest, actor string) (*domain.Refund, error)

	// Cancel marks a non-completed refund as cancelled and reverts the
	// payment's refunded status in the same transaction
	Cancel(ctx context.Context, id int64, actor string) error

	// GetByID returns a refund and its originating payment
	GetByID(ctx context.Context, id int64) (*RefundWithPayment, error)

	// GetByReference returns a refund and its originating payment
	GetByReference(ctx context.Context, reference string) (*RefundWithPayment, error)

	List(ctx context.Context) ([]*domain.Refund, error)
	ListByStatus(ctx context.Context, status domain.RefundStatus) ([]*domain.Refund, error)
	ListByUser(ctx context.Context, requestedBy string) ([]*domain.Refund, error)
	ListByPayment(ctx context.Context, paymentID int64) ([]*domain.Refund, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Refund, error)
	ListByEventBooking(ctx context.Context, eventBookingID int64) ([]*domain.Refund, error)
	ListPending(ctx context.Context) ([]*domain.Refund, error)

	// Stats aggregates counts and summed amounts for the given statuses
	// (all statuses when none are given). Statuses with no rows report zero.
	Stats(ctx context.Context, statuses ...domain.RefundStatus) (*RefundStats, error)
}
