package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
)

const paymentColumns = `id, amount, payment_status, payment_method, transaction_id,
	booking_id, event_booking_id, created_at, updated_at`

// PaymentRepository implements ports.PaymentRepository
type PaymentRepository struct {
	db ports.DBPort
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db ports.DBPort) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) conn(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.db.GetDB()
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, db ports.DBTX, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.conn(db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return payment, nil
}

// GetByIDForUpdate retrieves a payment and takes a row-level lock.
// The lock serializes concurrent refund creation against the same payment.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx ports.DBTX, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	payment, err := scanPayment(r.conn(tx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment for update: %w", err)
	}
	return payment, nil
}

// UpdateStatus updates a payment's status
func (r *PaymentRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id int64, status domain.PaymentStatus) error {
	query := `UPDATE payments SET payment_status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.conn(tx).Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update payment status: payment %d not found", id)
	}
	return nil
}

// scanPayment scans one payment row into a domain model
func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment        domain.Payment
		amount         pgtype.Numeric
		status         string
		transactionID  pgtype.Text
		bookingID      pgtype.Int8
		eventBookingID pgtype.Int8
	)

	err := row.Scan(
		&payment.ID,
		&amount,
		&status,
		&payment.Method,
		&transactionID,
		&bookingID,
		&eventBookingID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Amount, err = numericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert payment amount: %w", err)
	}

	payment.Status = domain.PaymentStatus(status)
	payment.TransactionID = textPtr(transactionID)
	payment.BookingID = int64Ptr(bookingID)
	payment.EventBookingID = int64Ptr(eventBookingID)

	return &payment, nil
}
