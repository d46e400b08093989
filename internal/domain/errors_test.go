package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := domain.NewDomainError(domain.ErrorCodeRefundNotFound, "refund not found")
	assert.Equal(t, "REFUND_NOT_FOUND: refund not found", err.Error())

	wrapped := domain.WrapError(domain.ErrorCodeDatabaseError, "query failed", errors.New("timeout"))
	assert.Equal(t, "INTERNAL_DATABASE_ERROR: query failed: timeout", wrapped.Error())
}

func TestDomainError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := domain.WrapError(domain.ErrorCodeDatabaseError, "query failed", inner)

	assert.True(t, errors.Is(err, inner))
}

func TestIsDomainError_ThroughWrapping(t *testing.T) {
	err := domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "too large")
	wrapped := fmt.Errorf("create refund: %w", err)

	assert.True(t, domain.IsDomainError(wrapped, domain.ErrorCodeRefundInvalidAmount))
	assert.False(t, domain.IsDomainError(wrapped, domain.ErrorCodeRefundNotFound))
	assert.False(t, domain.IsDomainError(errors.New("plain"), domain.ErrorCodeRefundNotFound))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, domain.ErrorCodeRefundInvalidState,
		domain.GetErrorCode(domain.NewDomainError(domain.ErrorCodeRefundInvalidState, "nope")))
	assert.Equal(t, domain.ErrorCode(""), domain.GetErrorCode(errors.New("plain")))
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, domain.IsNotFoundError(domain.NewDomainError(domain.ErrorCodePaymentNotFound, "missing")))
	assert.True(t, domain.IsNotFoundError(domain.NewDomainError(domain.ErrorCodeBookingNotFound, "missing")))
	assert.True(t, domain.IsInvalidAmountError(domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "bad")))
	assert.True(t, domain.IsValidationError(domain.NewDomainError(domain.ErrorCodeValidationMissingField, "bad")))
	assert.False(t, domain.IsNotFoundError(domain.NewDomainError(domain.ErrorCodeRefundInvalidAmount, "bad")))
}

func TestWithDetail(t *testing.T) {
	err := domain.NewDomainError(domain.ErrorCodeRefundNotFound, "refund not found").
		WithDetail("refund_id", int64(42))

	assert.Equal(t, int64(42), err.Details["refund_id"])
}
