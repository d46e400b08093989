package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus represents the lifecycle state of a refund request
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "PENDING"
	RefundStatusApproved   RefundStatus = "APPROVED"
	RefundStatusRejected   RefundStatus = "REJECTED"
	RefundStatusProcessing RefundStatus = "PROCESSING"
	RefundStatusCompleted  RefundStatus = "COMPLETED"
	RefundStatusFailed     RefundStatus = "FAILED"
	RefundStatusCancelled  RefundStatus = "CANCELLED"
)

// RefundStatuses lists every valid refund status
var RefundStatuses = []RefundStatus{
	RefundStatusPending,
	RefundStatusApproved,
	RefundStatusRejected,
	RefundStatusProcessing,
	RefundStatusCompleted,
	RefundStatusFailed,
	RefundStatusCancelled,
}

// RefundType classifies why a refund was requested
type RefundType string

const (
	RefundTypeFull         RefundType = "FULL_REFUND"
	RefundTypePartial      RefundType = "PARTIAL_REFUND"
	RefundTypeCancellation RefundType = "CANCELLATION_REFUND"
	RefundTypeNoShow       RefundType = "NO_SHOW_REFUND"
	RefundTypeServiceIssue RefundType = "SERVICE_ISSUE_REFUND"
)

// Refund represents a refund request against a payment
type Refund struct {
	RequestedDate  time.Time       `json:"requested_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	ApprovedDate   *time.Time      `json:"approved_date"`
	ProcessedDate  *time.Time      `json:"processed_date"`
	RefundDate     *time.Time      `json:"refund_date"`
	BookingID      *int64          `json:"booking_id"`
	EventBookingID *int64          `json:"event_booking_id"`
	Method         *string         `json:"refund_method"`
	TransactionID  *string         `json:"refund_transaction_id"`
	ProcessedBy    *string         `json:"processed_by"`
	ApprovedBy     *string         `json:"approved_by"`
	Notes          *string         `json:"notes"`
	AdminNotes     *string         `json:"admin_notes"`
	Reference      string          `json:"refund_reference"`
	Reason         string          `json:"refund_reason"`
	RequestedBy    string          `json:"requested_by"`
	Status         RefundStatus    `json:"refund_status"`
	Type           RefundType      `json:"refund_type"`
	Amount         decimal.Decimal `json:"refund_amount"`
	ID             int64           `json:"id"`
	PaymentID      int64           `json:"payment_id"`
}

// IsActive returns true if the refund still counts against the payment's
// refundable balance
func (r *Refund) IsActive() bool {
	return r.Status != RefundStatusCancelled
}

// CanBeCancelled returns true if the refund can still be cancelled.
// Completed refunds are terminal.
func (r *Refund) CanBeCancelled() bool {
	return r.Status != RefundStatusCompleted
}

// ParseRefundStatus parses a refund status string (case-insensitive)
func ParseRefundStatus(s string) (RefundStatus, bool) {
	status := RefundStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case RefundStatusPending, RefundStatusApproved, RefundStatusRejected,
		RefundStatusProcessing, RefundStatusCompleted, RefundStatusFailed,
		RefundStatusCancelled:
		return status, true
	}
	return "", false
}

// ParseRefundType parses a refund type string (case-insensitive)
func ParseRefundType(s string) (RefundType, bool) {
	t := RefundType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case RefundTypeFull, RefundTypePartial, RefundTypeCancellation,
		RefundTypeNoShow, RefundTypeServiceIssue:
		return t, true
	}
	return "", false
}
