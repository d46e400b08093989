package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Refund Errors (REFUND_*)
	ErrorCodeRefundNotFound      ErrorCode = "REFUND_NOT_FOUND"
	ErrorCodeRefundInvalidState  ErrorCode = "REFUND_INVALID_STATE"
	ErrorCodeRefundInvalidAmount ErrorCode = "REFUND_INVALID_AMOUNT"
	ErrorCodeDuplicateReference  ErrorCode = "REFUND_DUPLICATE_REFERENCE"

	// Payment Errors (PAYMENT_*)
	ErrorCodePaymentNotFound ErrorCode = "PAYMENT_NOT_FOUND"

	// Booking Errors (BOOKING_*)
	ErrorCodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"

	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeRefundNotFound ||
		code == ErrorCodePaymentNotFound ||
		code == ErrorCodeBookingNotFound
}

// IsInvalidStateError checks if an error represents an ineligible payment or
// booking state, or an illegal cancel of a completed refund
func IsInvalidStateError(err error) bool {
	return GetErrorCode(err) == ErrorCodeRefundInvalidState
}

// IsInvalidAmountError checks if an error represents a refund amount violation
func IsInvalidAmountError(err error) bool {
	return GetErrorCode(err) == ErrorCodeRefundInvalidAmount
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationMissingField
}

// ErrDuplicateReference is returned by the refund repository when an insert
// collides with an existing refund reference. Callers regenerate and retry.
var ErrDuplicateReference = NewDomainError(ErrorCodeDuplicateReference, "refund reference already exists")
