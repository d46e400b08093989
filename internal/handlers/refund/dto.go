package refund

import (
	"time"

	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
	"github.com/shopspring/decimal"
)

type createRefundRequest struct {
	PaymentID    int64           `json:"paymentId" binding:"required"`
	RefundAmount decimal.Decimal `json:"refundAmount" binding:"required"`
	RefundType   string          `json:"refundType" binding:"required"`
	RefundReason string          `json:"refundReason" binding:"required"`
	RefundMethod string          `json:"refundMethod"`
	Notes        string          `json:"notes"`
	RequestedBy  string          `json:"requestedBy"`
}

type updateRefundRequest struct {
	RefundStatus  *string          `json:"refundStatus"`
	RefundMethod  *string          `json:"refundMethod"`
	TransactionID *string          `json:"transactionId"`
	AdminNotes    *string          `json:"adminNotes"`
	Notes         *string          `json:"notes"`
	RefundAmount  *decimal.Decimal `json:"refundAmount"`
}

type refundResponse struct {
	ID              int64           `json:"id"`
	RefundReference string          `json:"refundReference"`
	PaymentID       int64           `json:"paymentId"`
	BookingID       *int64          `json:"bookingId,omitempty"`
	EventBookingID  *int64          `json:"eventBookingId,omitempty"`
	RefundAmount    decimal.Decimal `json:"refundAmount"`
	RefundStatus    string          `json:"refundStatus"`
	RefundType      string          `json:"refundType"`
	RefundReason    string          `json:"refundReason"`
	RefundMethod    *string         `json:"refundMethod,omitempty"`
	TransactionID   *string         `json:"transactionId,omitempty"`
	RequestedBy     string          `json:"requestedBy"`
	ProcessedBy     *string         `json:"processedBy,omitempty"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	RequestedDate   time.Time       `json:"requestedDate"`
	ProcessedDate   *time.Time      `json:"processedDate,omitempty"`
	ApprovedDate    *time.Time      `json:"approvedDate,omitempty"`
	RefundDate      *time.Time      `json:"refundDate,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	AdminNotes      *string         `json:"adminNotes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type paymentResponse struct {
	ID             int64           `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentStatus  string          `json:"paymentStatus"`
	PaymentMethod  string          `json:"paymentMethod"`
	TransactionID  *string         `json:"transactionId,omitempty"`
	BookingID      *int64          `json:"bookingId,omitempty"`
	EventBookingID *int64          `json:"eventBookingId,omitempty"`
}

type refundDetailResponse struct {
	refundResponse
	Payment *paymentResponse `json:"payment,omitempty"`
}

func toRefundResponse(r *domain.Refund) refundResponse {
	return refundResponse{
		ID:              r.ID,
		RefundReference: r.Reference,
		PaymentID:       r.PaymentID,
		BookingID:       r.BookingID,
		EventBookingID:  r.EventBookingID,
		RefundAmount:    r.Amount,
		RefundStatus:    string(r.Status),
		RefundType:      string(r.Type),
		RefundReason:    r.Reason,
		RefundMethod:    r.Method,
		TransactionID:   r.TransactionID,
		RequestedBy:     r.RequestedBy,
		ProcessedBy:     r.ProcessedBy,
		ApprovedBy:      r.ApprovedBy,
		RequestedDate:   r.RequestedDate,
		ProcessedDate:   r.ProcessedDate,
		ApprovedDate:    r.ApprovedDate,
		RefundDate:      r.RefundDate,
		Notes:           r.Notes,
		AdminNotes:      r.AdminNotes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toRefundListResponse(refunds []*domain.Refund) []refundResponse {
	out := make([]refundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, toRefundResponse(r))
	}
	return out
}

func toRefundDetailResponse(detail *ports.RefundWithPayment) refundDetailResponse {
	resp := refundDetailResponse{refundResponse: toRefundResponse(detail.Refund)}
	if detail.Payment != nil {
		p := detail.Payment
		resp.Payment = &paymentResponse{
			ID:             p.ID,
			Amount:         p.Amount,
			PaymentStatus:  string(p.Status),
			PaymentMethod:  p.Method,
			TransactionID:  p.TransactionID,
			BookingID:      p.BookingID,
			EventBookingID: p.EventBookingID,
		}
	}
	return resp
}

// toStatsResponse flattens per-status aggregates into the dashboard's flat
// key shape, e.g. pendingCount / pendingAmount
func toStatsResponse(stats *ports.RefundStats) map[string]interface{} {
	keys := map[domain.RefundStatus]string{
		domain.RefundStatusPending:    "pending",
		domain.RefundStatusApproved:   "approved",
		domain.RefundStatusRejected:   "rejected",
		domain.RefundStatusProcessing: "processing",
		domain.RefundStatusCompleted:  "completed",
		domain.RefundStatusFailed:     "failed",
		domain.RefundStatusCancelled:  "cancelled",
	}

	out := make(map[string]interface{}, len(stats.ByStatus)*2)
	for status, metrics := range stats.ByStatus {
		prefix, ok := keys[status]
		if !ok {
			continue
		}
		out[prefix+"Count"] = metrics.Count
		out[prefix+"Amount"] = metrics.Amount
	}
	return out
}
