package refund

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
	"github.com/palmgrove/refund-service/pkg/observability"
	"github.com/palmgrove/refund-service/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// maxReferenceAttempts bounds regeneration when a generated refund reference
// collides with an existing row on the same day
const maxReferenceAttempts = 5

// Service implements ports.RefundService
type Service struct {
	db            ports.DBPort
	refunds       ports.RefundRepository
	payments      ports.PaymentRepository
	bookings      ports.BookingRepository
	eventBookings ports.EventBookingRepository
	logger        ports.Logger
}

// NewService creates a new refund service
func NewService(
	db ports.DBPort,
	refunds ports.RefundRepository,
	payments ports.PaymentRepository,
	bookings ports.BookingRepository,
	eventBookings ports.EventBookingRepository,
	logger ports.Logger,
) *Service {
	return &Service{
		db:            db,
		refunds:       refunds,
		payments:      payments,
		bookings:      bookings,
		eventBookings: eventBookings,
		logger:        logger,
	}
}

// Create validates payment eligibility and the refundable balance, persists a
// pending refund, and updates the payment status. The payment row is locked
// for the duration of the transaction so both writes commit as one unit and
// concurrent creates against the same payment serialize.
func (s *Service) Create(ctx context.Context, req ports.CreateRefundRequest) (*domain.Refund, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	var created *domain.Refund

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		payment, err := s.payments.GetByIDForUpdate(ctx, tx, req.PaymentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewDomainError(domain.ErrorCodePaymentNotFound, "payment not found").
					WithDetail("payment_id", req.PaymentID)
			}
			return fmt.Errorf("get payment: %w", err)
		}

		if err := s.checkEligibility(ctx, tx, payment); err != nil {
			return err
		}

		if err := s.validateAmount(ctx, tx, payment, req.Amount); err != nil {
			return err
		}

		now := timeutil.Now()
		refund := &domain.Refund{
			PaymentID:     payment.ID,
			Amount:        req.Amount,
			Status:        domain.RefundStatusPending,
			Type:          req.Type,
			Reason:        req.Reason,
			RequestedBy:   req.RequestedBy,
			RequestedDate: now,
		}
		if req.Method != "" {
			refund.Method = &req.Method
		}
		if req.Notes != "" {
			refund.Notes = &req.Notes
		}

		// A refund inherits whichever booking link the payment carries
		if payment.BookingID != nil {
			refund.BookingID = payment.BookingID
		} else if payment.EventBookingID != nil {
			refund.EventBookingID = payment.EventBookingID
		}

		if err := s.insertWithReference(ctx, tx, refund, now); err != nil {
			return err
		}

		paymentStatus := domain.PaymentStatusPartiallyRefunded
		if req.Amount.Equal(payment.Amount) {
			paymentStatus = domain.PaymentStatusRefunded
		}
		if err := s.payments.UpdateStatus(ctx, tx, payment.ID, paymentStatus); err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}

		created = refund
		return nil
	})

	if err != nil {
		s.logger.Error("create refund failed",
			ports.Int64("payment_id", req.PaymentID),
			ports.String("amount", req.Amount.String()),
			ports.Err(err))
		return nil, err
	}

	s.logger.Info("refund created",
		ports.Int64("refund_id", created.ID),
		ports.String("refund_reference", created.Reference),
		ports.Int64("payment_id", created.PaymentID),
		ports.String("amount", created.Amount.String()))

	return created, nil
}

// insertWithReference generates a reference and inserts the refund, retrying
// with a fresh reference while the store reports a collision
func (s *Service) insertWithReference(ctx context.Context, tx ports.DBTX, refund *domain.Refund, now time.Time) error {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		reference, err := domain.NewRefundReference(now)
		if err != nil {
			return fmt.Errorf("generate refund reference: %w", err)
		}
		refund.Reference = reference

		err = s.refunds.Create(ctx, tx, refund)
		if err == nil {
			return nil
		}
		if !domain.IsDomainError(err, domain.ErrorCodeDuplicateReference) {
			return err
		}

		observability.RecordReferenceRetry()
		s.logger.Warn("refund reference collision, regenerating",
			ports.String("refund_reference", reference),
			ports.Int("attempt", attempt+1))
	}

	return domain.NewDomainError(domain.ErrorCodeInternalError, "could not generate a unique refund reference").
		WithDetail("attempts", maxReferenceAttempts)
}

// Update applies a partial update to a refund. A status change triggers the
// corresponding actor and timestamp side effect; other fields are written
// through only when present.
func (s *Service) Update(ctx context.Context, id int64, patch ports.UpdateRefundRequest, actor string) (*domain.Refund, error) {
	refund, err := s.getRefund(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		refund.Status = *patch.Status

		now := timeutil.Now()
		switch *patch.Status {
		case domain.RefundStatusApproved:
			refund.ApprovedBy = &actor
			refund.ApprovedDate = &now
		case domain.RefundStatusProcessing:
			refund.ProcessedBy = &actor
			refund.ProcessedDate = &now
		case domain.RefundStatusCompleted:
			refund.RefundDate = &now
		default:
			// Pending, Rejected, Cancelled, Failed carry no side effect
		}
	}

	if patch.Method != nil {
		refund.Method = patch.Method
	}
	if patch.TransactionID != nil {
		refund.TransactionID = patch.TransactionID
	}
	if patch.AdminNotes != nil {
		refund.AdminNotes = patch.AdminNotes
	}
	if patch.Notes != nil {
		refund.Notes = patch.Notes
	}
	if patch.Amount != nil {
		refund.Amount = *patch.Amount
	}

	if err := s.refunds.Update(ctx, nil, refund); err != nil {
		s.logger.Error("update refund failed",
			ports.Int64("refund_id", id),
			ports.Err(err))
		return nil, err
	}

	s.logger.Info("refund updated",
		ports.Int64("refund_id", refund.ID),
		ports.String("refund_status", string(refund.Status)),
		ports.String("actor", actor))

	return refund, nil
}

// Cancel marks a non-completed refund as cancelled and reverts the payment's
// refunded status in the same transaction. The revert is tied to this single
// cancellation: it does not recompute the status from other refunds that may
// still be active against the payment.
func (s *Service) Cancel(ctx context.Context, id int64, actor string) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		refund, err := s.getRefund(ctx, tx, id)
		if err != nil {
			return err
		}

		if !refund.CanBeCancelled() {
			return domain.NewDomainError(domain.ErrorCodeRefundInvalidState, "cannot cancel a completed refund").
				WithDetail("refund_id", id)
		}

		now := timeutil.Now()
		refund.Status = domain.RefundStatusCancelled
		refund.ProcessedBy = &actor
		refund.ProcessedDate = &now

		if err := s.refunds.Update(ctx, tx, refund); err != nil {
			return err
		}

		payment, err := s.payments.GetByIDForUpdate(ctx, tx, refund.PaymentID)
		if err != nil {
			return fmt.Errorf("get payment: %w", err)
		}

		if payment.Status == domain.PaymentStatusRefunded || payment.Status == domain.PaymentStatusPartiallyRefunded {
			if err := s.payments.UpdateStatus(ctx, tx, payment.ID, domain.PaymentStatusCompleted); err != nil {
				return fmt.Errorf("revert payment status: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		s.logger.Error("cancel refund failed",
			ports.Int64("refund_id", id),
			ports.Err(err))
		return err
	}

	s.logger.Info("refund cancelled",
		ports.Int64("refund_id", id),
		ports.String("actor", actor))

	return nil
}

// GetByID returns a refund and its originating payment
func (s *Service) GetByID(ctx context.Context, id int64) (*ports.RefundWithPayment, error) {
	refund, err := s.getRefund(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.withPayment(ctx, refund)
}

// GetByReference returns a refund and its originating payment
func (s *Service) GetByReference(ctx context.Context, reference string) (*ports.RefundWithPayment, error) {
	refund, err := s.refunds.GetByReference(ctx, nil, reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeRefundNotFound, "refund not found").
				WithDetail("refund_reference", reference)
		}
		return nil, err
	}
	return s.withPayment(ctx, refund)
}

// List returns all refunds
func (s *Service) List(ctx context.Context) ([]*domain.Refund, error) {
	return s.refunds.List(ctx, nil)
}

// ListByStatus returns refunds in the given status
func (s *Service) ListByStatus(ctx context.Context, status domain.RefundStatus) ([]*domain.Refund, error) {
	return s.refunds.ListByStatus(ctx, nil, status)
}

// ListByUser returns refunds requested by the given user
func (s *Service) ListByUser(ctx context.Context, requestedBy string) ([]*domain.Refund, error) {
	return s.refunds.ListByRequestedBy(ctx, nil, requestedBy)
}

// ListByPayment returns all refunds against the given payment
func (s *Service) ListByPayment(ctx context.Context, paymentID int64) ([]*domain.Refund, error) {
	return s.refunds.ListByPayment(ctx, nil, paymentID)
}

// ListByBooking returns refunds linked to the given booking
func (s *Service) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Refund, error) {
	return s.refunds.ListByBooking(ctx, nil, bookingID)
}

// ListByEventBooking returns refunds linked to the given event booking
func (s *Service) ListByEventBooking(ctx context.Context, eventBookingID int64) ([]*domain.Refund, error) {
	return s.refunds.ListByEventBooking(ctx, nil, eventBookingID)
}

// ListPending returns refunds awaiting review
func (s *Service) ListPending(ctx context.Context) ([]*domain.Refund, error) {
	return s.refunds.ListByStatus(ctx, nil, domain.RefundStatusPending)
}

// Stats aggregates counts and summed amounts for the given statuses (all
// statuses when none are given). Runs inside a read-only transaction so the
// counts and sums describe one consistent snapshot.
func (s *Service) Stats(ctx context.Context, statuses ...domain.RefundStatus) (*ports.RefundStats, error) {
	if len(statuses) == 0 {
		statuses = domain.RefundStatuses
	}

	stats := &ports.RefundStats{
		ByStatus: make(map[domain.RefundStatus]ports.StatusMetrics, len(statuses)),
	}

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, status := range statuses {
			count, err := s.refunds.CountByStatus(ctx, tx, status)
			if err != nil {
				return fmt.Errorf("count refunds: %w", err)
			}
			amount, err := s.refunds.SumAmountByStatus(ctx, tx, status)
			if err != nil {
				return fmt.Errorf("sum refund amounts: %w", err)
			}
			stats.ByStatus[status] = ports.StatusMetrics{Count: count, Amount: amount}
		}
		return nil
	})

	if err != nil {
		s.logger.Error("refund stats failed", ports.Err(err))
		return nil, err
	}

	return stats, nil
}

// getRefund loads a refund, mapping a missing row to a not-found domain error
func (s *Service) getRefund(ctx context.Context, db ports.DBTX, id int64) (*domain.Refund, error) {
	refund, err := s.refunds.GetByID(ctx, db, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeRefundNotFound, "refund not found").
				WithDetail("refund_id", id)
		}
		return nil, err
	}
	return refund, nil
}

// withPayment attaches the originating payment to a refund detail view
func (s *Service) withPayment(ctx context.Context, refund *domain.Refund) (*ports.RefundWithPayment, error) {
	payment, err := s.payments.GetByID(ctx, nil, refund.PaymentID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		payment = nil
	}
	return &ports.RefundWithPayment{Refund: refund, Payment: payment}, nil
}

// checkEligibility verifies the payment and its booking permit a refund
func (s *Service) checkEligibility(ctx context.Context, tx ports.DBTX, payment *domain.Payment) error {
	if !payment.IsRefundable() {
		return domain.NewDomainError(domain.ErrorCodeRefundInvalidState, "payment is not eligible for refund").
			WithDetail("payment_id", payment.ID).
			WithDetail("payment_status", string(payment.Status))
	}

	if payment.BookingID != nil {
		status, err := s.bookings.GetStatus(ctx, tx, *payment.BookingID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewDomainError(domain.ErrorCodeBookingNotFound, "booking not found").
					WithDetail("booking_id", *payment.BookingID)
			}
			return fmt.Errorf("get booking status: %w", err)
		}
		if status == domain.BookingStatusCheckedOut || status == domain.BookingStatusCancelled {
			return domain.NewDomainError(domain.ErrorCodeRefundInvalidState, "payment is not eligible for refund").
				WithDetail("booking_id", *payment.BookingID).
				WithDetail("booking_status", string(status))
		}
		return nil
	}

	if payment.EventBookingID != nil {
		status, err := s.eventBookings.GetStatus(ctx, tx, *payment.EventBookingID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewDomainError(domain.ErrorCodeBookingNotFound, "event booking not found").
					WithDetail("event_booking_id", *payment.EventBookingID)
			}
			return fmt.Errorf("get event booking status: %w", err)
		}
		if status == domain.EventBookingStatusCancelled {
			return domain.NewDomainError(domain.ErrorCodeRefundInvalidState, "payment is not eligible for refund").
				WithDetail("event_booking_id", *payment.EventBookingID).
				WithDetail("event_booking_status", string(status))
		}
	}

	return nil
}

// validateAmount enforces the refundable-balance invariant: the new amount
// plus all active refunds against the payment must not exceed its total
func (s *Service) validateAmount(ctx context.Context, tx ports.DBTX, payment *domain.Payment, amount decimal.Decimal) error {
	if amount.GreaterThan(payment.Amount) {
		return domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "refund amount cannot exceed payment amount").
			WithDetail("refund_amount", amount.String()).
			WithDetail("payment_amount", payment.Amount.String())
	}

	active, err := s.refunds.ListActiveByPayment(ctx, tx, payment.ID)
	if err != nil {
		return fmt.Errorf("list active refunds: %w", err)
	}

	total := decimal.Zero
	for _, r := range active {
		total = total.Add(r.Amount)
	}

	if total.Add(amount).GreaterThan(payment.Amount) {
		return domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "total refund amount cannot exceed payment amount").
			WithDetail("refund_amount", amount.String()).
			WithDetail("already_refunded", total.String()).
			WithDetail("payment_amount", payment.Amount.String())
	}

	return nil
}

// validateCreateRequest checks required fields before touching the store
func validateCreateRequest(req ports.CreateRefundRequest) error {
	if req.PaymentID == 0 {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "payment_id is required")
	}
	if req.Type == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "refund_type is required")
	}
	if req.Reason == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "refund_reason is required")
	}
	if req.RequestedBy == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "requested_by is required")
	}
	if !req.Amount.IsPositive() {
		return domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "refund amount must be greater than zero").
			WithDetail("refund_amount", req.Amount.String())
	}
	return nil
}
