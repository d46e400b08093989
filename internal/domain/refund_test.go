package domain_test

import (
	"testing"

	"github.com/palmgrove/refund-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRefund_CanBeCancelled(t *testing.T) {
	for _, status := range domain.RefundStatuses {
		r := domain.Refund{Status: status}
		if status == domain.RefundStatusCompleted {
			assert.False(t, r.CanBeCancelled(), "completed refunds are final")
		} else {
			assert.True(t, r.CanBeCancelled(), "status %s should be cancellable", status)
		}
	}
}

func TestRefund_IsActive(t *testing.T) {
	assert.True(t, (&domain.Refund{Status: domain.RefundStatusPending}).IsActive())
	assert.True(t, (&domain.Refund{Status: domain.RefundStatusCompleted}).IsActive())
	assert.False(t, (&domain.Refund{Status: domain.RefundStatusCancelled}).IsActive())
}

func TestParseRefundStatus(t *testing.T) {
	tests := []struct {
		input string
		want  domain.RefundStatus
		ok    bool
	}{
		{"PENDING", domain.RefundStatusPending, true},
		{"pending", domain.RefundStatusPending, true},
		{" Completed ", domain.RefundStatusCompleted, true},
		{"CANCELLED", domain.RefundStatusCancelled, true},
		{"UNKNOWN", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := domain.ParseRefundStatus(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestParseRefundType(t *testing.T) {
	tests := []struct {
		input string
		want  domain.RefundType
		ok    bool
	}{
		{"FULL_REFUND", domain.RefundTypeFull, true},
		{"partial_refund", domain.RefundTypePartial, true},
		{"no_show_refund", domain.RefundTypeNoShow, true},
		{"REFUND", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := domain.ParseRefundType(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestPayment_IsRefundable(t *testing.T) {
	assert.True(t, (&domain.Payment{Status: domain.PaymentStatusCompleted}).IsRefundable())
	assert.False(t, (&domain.Payment{Status: domain.PaymentStatusPending}).IsRefundable())
	assert.False(t, (&domain.Payment{Status: domain.PaymentStatusRefunded}).IsRefundable())
	assert.False(t, (&domain.Payment{Status: domain.PaymentStatusPartiallyRefunded}).IsRefundable())
}
