// Package money provides decimal-backed monetary arithmetic.
// All cost calculations must use these primitives instead of float64.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept by divisions.
// Rounding below this scale happens only at presentation boundaries.
const DivisionScale = 8

// Money represents a monetary amount with full precision.
// NEVER use float64 for money calculations.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money from a decimal string
func New(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d, currency: currency}, nil
}

// MustNew creates a Money from a decimal string, panicking on parse failure.
// Intended for literals in tests and fixtures.
func MustNew(amount string, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal creates Money from a decimal
func FromDecimal(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// FromFloat creates Money from float64 (use sparingly)
func FromFloat(amount float64, currency string) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: currency}
}

// Zero creates zero money
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() string {
	return m.currency
}

// Add adds two monetary amounts
func (m Money) Add(other Money) Money {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot add %s and %s", m.currency, other.currency))
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}
}

// Sub subtracts monetary amounts
func (m Money) Sub(other Money) Money {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot subtract %s and %s", m.currency, other.currency))
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}
}

// Mul multiplies by a scalar
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Div divides by a scalar, keeping DivisionScale fractional digits
func (m Money) Div(divisor decimal.Decimal) Money {
	return Money{amount: m.amount.DivRound(divisor, DivisionScale), currency: m.currency}
}

// IsZero returns true if amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Cmp compares two monetary amounts
func (m Money) Cmp(other Money) int {
	if m.currency != other.currency {
		panic(fmt.Sprintf("cannot compare %s and %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount)
}

// Equal reports whether two monetary amounts are equal in value and currency
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// RoundCurrency returns the amount rounded to 2 decimal places.
// This is the presentation boundary; never feed the result back into
// chained calculations.
func (m Money) RoundCurrency() Money {
	return Money{amount: m.amount.Round(2), currency: m.currency}
}

// String returns formatted money (2 decimal places)
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// StringRaw returns the raw decimal string (full precision)
func (m Money) StringRaw() string {
	return m.amount.String()
}

// MarshalJSON encodes the amount as a fixed 2-decimal string with currency
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"amount":%q,"currency":%q}`, m.amount.StringFixed(2), m.currency)), nil
}

// UnmarshalJSON decodes a {"amount","currency"} object
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return err
	}
	m.amount = d
	m.currency = raw.Currency
	return nil
}

// RoundPercent rounds a percentage to 1 decimal place for display
func RoundPercent(p decimal.Decimal) decimal.Decimal {
	return p.Round(1)
}
