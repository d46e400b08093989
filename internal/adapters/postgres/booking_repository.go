package postgres

import (
	"context"
	"fmt"

	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/palmgrove/refund-service/internal/domain/ports"
)

// BookingRepository implements the read-only ports.BookingRepository lookup
type BookingRepository struct {
	db ports.DBPort
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db ports.DBPort) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetStatus returns the status of a booking
func (r *BookingRepository) GetStatus(ctx context.Context, db ports.DBTX, id int64) (domain.BookingStatus, error) {
	conn := db
	if conn == nil {
		conn = r.db.GetDB()
	}

	var status string
	if err := conn.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&status); err != nil {
		return "", fmt.Errorf("get booking status: %w", err)
	}
	return domain.BookingStatus(status), nil
}

// EventBookingRepository implements the read-only ports.EventBookingRepository lookup
type EventBookingRepository struct {
	db ports.DBPort
}

// NewEventBookingRepository creates a new event booking repository
func NewEventBookingRepository(db ports.DBPort) *EventBookingRepository {
	return &EventBookingRepository{db: db}
}

// GetStatus returns the status of an event booking
func (r *EventBookingRepository) GetStatus(ctx context.Context, db ports.DBTX, id int64) (domain.EventBookingStatus, error) {
	conn := db
	if conn == nil {
		conn = r.db.GetDB()
	}

	var status string
	if err := conn.QueryRow(ctx, `SELECT status FROM event_bookings WHERE id = $1`, id).Scan(&status); err != nil {
		return "", fmt.Errorf("get event booking status: %w", err)
	}
	return domain.EventBookingStatus(status), nil
}
