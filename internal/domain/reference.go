package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// referenceSuffixRange bounds the numeric suffix of a refund reference.
// The format stays human-readable (RF + yyyymmdd + 3 digits); uniqueness is
// enforced by the store, and callers retry generation on collision.
var referenceSuffixRange = big.NewInt(1000)

// NewRefundReference generates a refund reference of the form RF20240131042.
// The suffix is drawn from crypto/rand; same-day collisions are possible and
// must be handled by retrying against the store's unique constraint.
func NewRefundReference(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, referenceSuffixRange)
	if err != nil {
		return "", fmt.Errorf("generate reference suffix: %w", err)
	}
	return fmt.Sprintf("RF%s%03d", now.UTC().Format("20060102"), n.Int64()), nil
}
