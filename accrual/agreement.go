package accrual

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGREEMENT - Cardholder agreement configuration (external input)
// =============================================================================

// RoundingPolicy selects when rounding to cents happens during accrual.
//
// The two policies legitimately diverge by a few cents over a billing
// cycle; that divergence reflects real issuer behavior and is preserved,
// not reconciled.
type RoundingPolicy string

const (
	// RoundSumThenRound computes interest on the exact average daily
	// balance and rounds the final total once.
	RoundSumThenRound RoundingPolicy = "sum_then_round"

	// RoundDailyThenSum rounds each day's interest (to 6 then 2 places)
	// and sums the per-day cents.
	RoundDailyThenSum RoundingPolicy = "daily_then_sum"
)

// Defaults applied by Normalize when a field is absent.
const (
	DefaultBasisDays = 365
	DefaultTimeZone  = "America/New_York"
)

// Agreement is the cardholder agreement as consumed by the engine.
// Fields beyond the accrual quartet (APR, basis, rounding, timezone) carry
// the rest of the agreement terms used by the account services.
type Agreement struct {
	// Accrual configuration
	PurchaseAPR decimal.Decimal // percent, e.g. 24.00
	BasisDays   int             // day-count convention (365, 360)
	Rounding    RoundingPolicy
	TimeZone    string // IANA zone id

	// Additional APRs
	CashAdvanceAPR     *decimal.Decimal
	BalanceTransferAPR *decimal.Decimal
	PenaltyAPR         *decimal.Decimal

	// Grace and trailing interest terms
	HasGracePeriod   bool
	GraceCondition   string
	TrailingInterest bool

	// Minimum payment terms
	MinFixedFloor       Money
	MinPercentOfBalance decimal.Decimal // fraction, e.g. 0.01
}

// Normalize fills absent fields with the documented defaults and returns
// the result. The receiver is not modified.
func (a Agreement) Normalize() Agreement {
	if a.BasisDays == 0 {
		a.BasisDays = DefaultBasisDays
	}
	if a.Rounding == "" {
		a.Rounding = RoundSumThenRound
	}
	if a.TimeZone == "" {
		a.TimeZone = DefaultTimeZone
	}
	return a
}

// Location resolves the agreement's IANA timezone.
func (a Agreement) Location() (*time.Location, error) {
	return time.LoadLocation(a.TimeZone)
}

// DailyRate converts the purchase APR into a daily periodic rate:
// (apr / 100) / basis. Callers must have validated BasisDays > 0.
func (a Agreement) DailyRate() decimal.Decimal {
	return a.PurchaseAPR.
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(a.BasisDays)))
}

// =============================================================================
// MINIMUM PAYMENT
// =============================================================================

// MinimumDue computes the minimum payment for a statement balance:
// the greater of the fixed floor and the percent-of-balance amount,
// capped at the balance itself. Non-positive balances owe nothing.
func (a Agreement) MinimumDue(balance Money) Money {
	if !balance.IsPositive() {
		return Money{}
	}
	pct := balance.MulDecimal(a.MinPercentOfBalance)
	due := a.MinFixedFloor.Max(pct)
	return due.Min(balance).Round2()
}
