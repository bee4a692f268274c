package processors

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// UniqueHash derives the stable dedup fingerprint for a transaction:
// SHA-1 over "isoDate|normalizedDescription|abs(amount) to 2dp|sign", where
// sign is C for credits and D for debits (zero hashes as D). Identical
// tuples yield identical keys across runs, which is what makes re-ingesting
// the same statement a no-op.
func UniqueHash(isoDate, normDesc string, amount decimal.Decimal) string {
	sign := "D"
	if amount.IsPositive() {
		sign = "C"
	}
	base := fmt.Sprintf("%s|%s|%s|%s", isoDate, normDesc, amount.Abs().StringFixed(2), sign)
	sum := sha1.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
