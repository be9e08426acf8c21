// Package domain holds the payment value objects. They are immutable and
// validate themselves at construction; there is no way to obtain an instance
// that violates its invariants.
package domain

import (
	"math"

	"dentalcare_backend/platform/apperr"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Money is a non-negative amount rounded to two fractional digits.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates a Money value. Negative and non-finite amounts are rejected.
// Halves round away from zero on the decimal written, so 1.005 becomes 1.01.
func NewMoney(amount float64) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, apperr.InvalidValueObject("amount must be a finite number")
	}
	if amount < 0 {
		return Money{}, apperr.InvalidValueObject("amount cannot be negative")
	}
	return Money{amount: decimal.NewFromFloat(amount).Round(moneyPlaces)}, nil
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the rounded amount as a float for JSON responses.
func (m Money) Amount() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Decimal returns the exact amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Subtract returns m - other, floored at zero.
func (m Money) Subtract(other Money) Money {
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Zero()
	}
	return Money{amount: result}
}

// Multiply returns m × quantity, e.g. a line subtotal of jumlah × hargaSatuan.
func (m Money) Multiply(quantity float64) (Money, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return Money{}, apperr.InvalidValueObject("quantity must be a non-negative number")
	}
	return Money{amount: m.amount.Mul(decimal.NewFromFloat(quantity)).Round(moneyPlaces)}, nil
}

func (m Money) IsGreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

func (m Money) IsGreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String renders the amount with two decimals.
func (m Money) String() string {
	return m.amount.StringFixed(moneyPlaces)
}
