// file: common/money.go

package common

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount to 2 fractional digits. Every amount is
// passed through here before it is written to the ledger; intermediate
// conversion math stays unrounded.
func Round2(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// IsValidAmount reports whether amount is a positive, finite number.
func IsValidAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}
