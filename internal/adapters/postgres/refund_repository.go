package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
	"github.com/shopspring/decimal"
)

const refundColumns = `id, refund_reference, payment_id, booking_id, event_booking_id,
	refund_amount, refund_status, refund_type, refund_reason, refund_method,
	refund_transaction_id, requested_by, processed_by, approved_by,
	requested_date, processed_date, approved_date, refund_date,
	notes, admin_notes, created_at, updated_at`

// RefundRepository implements ports.RefundRepository with hand-written SQL
type RefundRepository struct {
	db ports.DBPort
}

// NewRefundRepository creates a new refund repository
func NewRefundRepository(db ports.DBPort) *RefundRepository {
	return &RefundRepository{db: db}
}

// conn returns the given executor, falling back to the pool
func (r *RefundRepository) conn(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.db.GetDB()
}

// Create inserts a new refund and fills in its generated ID and timestamps
func (r *RefundRepository) Create(ctx context.Context, tx ports.DBTX, refund *domain.Refund) error {
	amount, err := decimalToNumeric(refund.Amount)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO refunds (
			refund_reference, payment_id, booking_id, event_booking_id,
			refund_amount, refund_status, refund_type, refund_reason,
			refund_method, refund_transaction_id, requested_by,
			notes, admin_notes, requested_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err = r.conn(tx).QueryRow(ctx, query,
		refund.Reference,
		refund.PaymentID,
		nullInt8(refund.BookingID),
		nullInt8(refund.EventBookingID),
		amount,
		string(refund.Status),
		string(refund.Type),
		refund.Reason,
		nullText(refund.Method),
		nullText(refund.TransactionID),
		refund.RequestedBy,
		nullText(refund.Notes),
		nullText(refund.AdminNotes),
		refund.RequestedDate,
	).Scan(&refund.ID, &refund.CreatedAt, &refund.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrorCodeDuplicateReference,
				"refund reference already exists", err).
				WithDetail("refund_reference", refund.Reference)
		}
		return fmt.Errorf("create refund: %w", err)
	}

	return nil
}

// GetByID retrieves a refund by its ID
func (r *RefundRepository) GetByID(ctx context.Context, db ports.DBTX, id int64) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`

	refund, err := scanRefund(r.conn(db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get refund by id: %w", err)
	}
	return refund, nil
}

// GetByReference retrieves a refund by its human-readable reference
func (r *RefundRepository) GetByReference(ctx context.Context, db ports.DBTX, reference string) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE refund_reference = $1`

	refund, err := scanRefund(r.conn(db).QueryRow(ctx, query, reference))
	if err != nil {
		return nil, fmt.Errorf("get refund by reference: %w", err)
	}
	return refund, nil
}

// Update persists all mutable fields of an existing refund
func (r *RefundRepository) Update(ctx context.Context, tx ports.DBTX, refund *domain.Refund) error {
	amount, err := decimalToNumeric(refund.Amount)
	if err != nil {
		return err
	}

	query := `
		UPDATE refunds SET
			refund_amount = $2,
			refund_status = $3,
			refund_method = $4,
			refund_transaction_id = $5,
			processed_by = $6,
			approved_by = $7,
			processed_date = $8,
			approved_date = $9,
			refund_date = $10,
			notes = $11,
			admin_notes = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err = r.conn(tx).QueryRow(ctx, query,
		refund.ID,
		amount,
		string(refund.Status),
		nullText(refund.Method),
		nullText(refund.TransactionID),
		nullText(refund.ProcessedBy),
		nullText(refund.ApprovedBy),
		nullTimestamptz(refund.ProcessedDate),
		nullTimestamptz(refund.ApprovedDate),
		nullTimestamptz(refund.RefundDate),
		nullText(refund.Notes),
		nullText(refund.AdminNotes),
	).Scan(&refund.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update refund: %w", err)
	}

	return nil
}

// List returns all refunds, newest first
func (r *RefundRepository) List(ctx context.Context, db ports.DBTX) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query)
}

// ListByStatus returns refunds in the given status
func (r *RefundRepository) ListByStatus(ctx context.Context, db ports.DBTX, status domain.RefundStatus) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE refund_status = $1 ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query, string(status))
}

// ListByRequestedBy returns refunds requested by the given user
func (r *RefundRepository) ListByRequestedBy(ctx context.Context, db ports.DBTX, requestedBy string) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE requested_by = $1 ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query, requestedBy)
}

// ListByPayment returns all refunds against the given payment
func (r *RefundRepository) ListByPayment(ctx context.Context, db ports.DBTX, paymentID int64) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE payment_id = $1 ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query, paymentID)
}

// ListActiveByPayment returns non-cancelled refunds against the given payment
func (r *RefundRepository) ListActiveByPayment(ctx context.Context, db ports.DBTX, paymentID int64) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds
		WHERE payment_id = $1 AND refund_status <> $2
		ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query, paymentID, string(domain.RefundStatusCancelled))
}

// ListByBooking returns refunds linked to the given booking
func (r *RefundRepository) ListByBooking(ctx context.Context, db ports.DBTX, bookingID int64) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE booking_id = $1 ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query, bookingID)
}

// ListByEventBooking returns refunds linked to the given event booking
func (r *RefundRepository) ListByEventBooking(ctx context.Context, db ports.DBTX, eventBookingID int64) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE event_booking_id = $1 ORDER BY created_at DESC`
	return r.queryRefunds(ctx, db, query, eventBookingID)
}

// CountByStatus returns the number of refunds in the given status
func (r *RefundRepository) CountByStatus(ctx context.Context, db ports.DBTX, status domain.RefundStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM refunds WHERE refund_status = $1`

	if err := r.conn(db).QueryRow(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count refunds by status: %w", err)
	}
	return count, nil
}

// SumAmountByStatus returns the summed refund amount for the given status,
// zero when no rows match
func (r *RefundRepository) SumAmountByStatus(ctx context.Context, db ports.DBTX, status domain.RefundStatus) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	query := `SELECT COALESCE(SUM(refund_amount), 0) FROM refunds WHERE refund_status = $1`

	if err := r.conn(db).QueryRow(ctx, query, string(status)).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum refund amount by status: %w", err)
	}
	return numericToDecimal(sum)
}

// queryRefunds runs a multi-row refund query and scans the results
func (r *RefundRepository) queryRefunds(ctx context.Context, db ports.DBTX, query string, args ...interface{}) ([]*domain.Refund, error) {
	rows, err := r.conn(db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*domain.Refund
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		refunds = append(refunds, refund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refunds: %w", err)
	}

	return refunds, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRefund scans one refund row into a domain model
func scanRefund(row rowScanner) (*domain.Refund, error) {
	var (
		refund         domain.Refund
		bookingID      pgtype.Int8
		eventBookingID pgtype.Int8
		amount         pgtype.Numeric
		status         string
		refundType     string
		method         pgtype.Text
		transactionID  pgtype.Text
		processedBy    pgtype.Text
		approvedBy     pgtype.Text
		processedDate  pgtype.Timestamptz
		approvedDate   pgtype.Timestamptz
		refundDate     pgtype.Timestamptz
		notes          pgtype.Text
		adminNotes     pgtype.Text
	)

	err := row.Scan(
		&refund.ID,
		&refund.Reference,
		&refund.PaymentID,
		&bookingID,
		&eventBookingID,
		&amount,
		&status,
		&refundType,
		&refund.Reason,
		&method,
		&transactionID,
		&refund.RequestedBy,
		&processedBy,
		&approvedBy,
		&refund.RequestedDate,
		&processedDate,
		&approvedDate,
		&refundDate,
		&notes,
		&adminNotes,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	refund.Amount, err = numericToDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("convert refund amount: %w", err)
	}

	refund.Status = domain.RefundStatus(status)
	refund.Type = domain.RefundType(refundType)
	refund.BookingID = int64Ptr(bookingID)
	refund.EventBookingID = int64Ptr(eventBookingID)
	refund.Method = textPtr(method)
	refund.TransactionID = textPtr(transactionID)
	refund.ProcessedBy = textPtr(processedBy)
	refund.ApprovedBy = textPtr(approvedBy)
	refund.ProcessedDate = timePtr(processedDate)
	refund.ApprovedDate = timePtr(approvedDate)
	refund.RefundDate = timePtr(refundDate)
	refund.Notes = textPtr(notes)
	refund.AdminNotes = textPtr(adminNotes)

	return &refund, nil
}
