package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	// Refund workflow metrics
	refundOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_operations_total",
		Help: "Total number of refund workflow operations",
	}, []string{
		"operation", // create, update, cancel
		"status",    // resulting refund status, or "error"
	})

	refundAmountCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_amount_cents_total",
		Help: "Total refunded amount in cents (for revenue impact tracking)",
	}, []string{
		"refund_type", // FULL_REFUND, PARTIAL_REFUND, ...
	})

	refundReferenceRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refund_reference_retries_total",
		Help: "Number of refund reference regenerations after a collision",
	})
)

// RecordRefundOperation records a refund workflow operation and its outcome
func RecordRefundOperation(operation, status string) {
	refundOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRefundAmount records a created refund's amount by type
func RecordRefundAmount(refundType string, amount decimal.Decimal) {
	cents, _ := amount.Mul(decimal.NewFromInt(100)).Float64()
	refundAmountCents.WithLabelValues(refundType).Add(cents)
}

// RecordReferenceRetry records a reference collision retry
func RecordReferenceRetry() {
	refundReferenceRetries.Inc()
}
