/*
Package accrual is the interest-accrual engine.

PURPOSE:
  This package contains the pure-computation core: reconstructing a
  day-by-day balance history from a transaction ledger, and computing
  average-daily-balance (ADB) interest under a configurable agreement
  (APR, day-count basis, rounding policy, timezone).

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A fixed-precision monetary value (USD cents and below)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors.
     Fractional cents are never dropped until an explicit rounding call.
  2. Purity: No I/O, no clock, no shared state. Same inputs, same outputs.
  3. Honest failures: Missing data is an error, never a guessed zero.

USAGE:
  balance := accrual.NewMoney(500)
  interest := balance.MulDecimal(rate).Round2()

SEE ALSO:
  - date.go: LocalDate, the calendar-day abstraction
  - reconstruct.go: Daily balance reconstruction
  - accrue.go: ADB interest calculation
*/
package accrual

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-precision monetary value
// =============================================================================

// Money is a monetary amount with exact decimal arithmetic.
// The zero value is $0.00.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

// MustParseMoney parses a decimal string, returning $0.00 on bad input.
// Intended for constants and tests, not for untrusted data (use ParseMoney).
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return Money{Value: d}
}

// ParseMoney parses a decimal string such as "10.19" or "-42".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func (m Money) Add(b Money) Money                 { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money                 { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Neg() Money                        { return Money{Value: m.Value.Neg()} }
func (m Money) MulDecimal(d decimal.Decimal) Money { return Money{Value: m.Value.Mul(d)} }
func (m Money) DivInt(n int64) Money              { return Money{Value: m.Value.Div(decimal.NewFromInt(n))} }
func (m Money) IsZero() bool                      { return m.Value.IsZero() }
func (m Money) IsNegative() bool                  { return m.Value.IsNegative() }
func (m Money) IsPositive() bool                  { return m.Value.IsPositive() }
func (m Money) Equal(b Money) bool                { return m.Value.Equal(b.Value) }
func (m Money) GreaterThan(b Money) bool          { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool             { return m.Value.LessThan(b.Value) }
func (m Money) Min(b Money) Money                 { if m.LessThan(b) { return m }; return b }
func (m Money) Max(b Money) Money                 { if m.GreaterThan(b) { return m }; return b }

// Round rounds half-away-from-zero to the given number of decimal places.
// This matches statement math: $0.005 of interest becomes $0.01.
func (m Money) Round(places int32) Money {
	return Money{Value: m.Value.Round(places)}
}

// Round2 rounds to whole cents, the final precision of every user-facing
// monetary result in this engine.
func (m Money) Round2() Money {
	return m.Round(2)
}

// String renders with exactly two decimal places ("10.19", "-0.50").
func (m Money) String() string {
	return m.Value.StringFixed(2)
}

// MarshalJSON encodes Money as a JSON number string with two decimals,
// so clients never see binary-float artifacts.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Value.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Value = d
	return nil
}
