/*
accrue.go - Average-daily-balance interest calculation

PURPOSE:
  Consumes a daily balance sequence plus an APR and day-count basis,
  computes the average daily balance, applies the daily periodic rate, and
  rounds under one of two selectable rounding policies.

ROUNDING POLICIES:
  sum_then_round: interest = round(ADB * daily_rate * days, 2)
                  One rounding step, applied to the final total.
  daily_then_sum: per day, round(round(balance * daily_rate, 6), 2),
                  then sum the per-day cents.

  The policies accrue rounding error differently and will generally differ
  by a few cents over a billing cycle. That divergence mirrors how issuers
  actually bill and is preserved, not reconciled.

EVIDENCE:
  Every result carries the inputs a reviewer needs to re-derive it:
  the ADB, day count, and rate for sum_then_round, or the full per-day
  interest sequence for daily_then_sum.
*/
package accrual

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCRUAL RESULT - Interest amount plus its supporting evidence
// =============================================================================

// EvidenceLine is one entry in the result's audit trail.
// For sum_then_round results the lines carry (date, balance); for
// daily_then_sum they carry (date, that day's rounded interest).
type EvidenceLine struct {
	Date     LocalDate `json:"date"`
	Balance  *Money    `json:"balance,omitempty"`
	Interest *Money    `json:"interest,omitempty"`
}

// AccrualResult is the engine's structured output: a monetary amount the
// surrounding layer displays verbatim, plus the trail that justifies it.
type AccrualResult struct {
	Interest Money          `json:"interest"`
	Rounding RoundingPolicy `json:"rounding"`

	// Aggregate evidence (always populated)
	AverageDailyBalance Money           `json:"average_daily_balance"`
	Days                int             `json:"days"`
	DailyRate           decimal.Decimal `json:"daily_rate"`

	// Per-entry evidence
	Evidence []EvidenceLine `json:"evidence"`
}

// =============================================================================
// ACCRUAL
// =============================================================================

// DailyRate converts an annual percentage rate into a daily periodic rate
// under the given day-count basis: (apr / 100) / basis.
func DailyRate(aprPercent decimal.Decimal, basisDays int) decimal.Decimal {
	return aprPercent.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(basisDays)))
}

// Accrue computes period interest over the daily balance sequence.
//
// Fails with ErrEmptySeries when the sequence is empty, ErrInvalidBasis
// when basisDays is not a positive whole number of days, and
// ErrInvalidRounding for an unrecognized rounding policy.
func Accrue(balances []DailyBalance, aprPercent decimal.Decimal, basisDays int, rounding RoundingPolicy) (AccrualResult, error) {
	if basisDays <= 0 {
		return AccrualResult{}, ErrInvalidBasis
	}
	switch rounding {
	case RoundSumThenRound, RoundDailyThenSum:
	default:
		return AccrualResult{}, fmt.Errorf("%q: %w", rounding, ErrInvalidRounding)
	}
	if len(balances) == 0 {
		return AccrualResult{}, ErrEmptySeries
	}

	rate := DailyRate(aprPercent, basisDays)
	days := len(balances)

	sum := Money{}
	for _, db := range balances {
		sum = sum.Add(db.Balance)
	}
	adb := sum.DivInt(int64(days))

	result := AccrualResult{
		Rounding:            rounding,
		AverageDailyBalance: adb.Round2(),
		Days:                days,
		DailyRate:           rate,
	}

	switch rounding {
	case RoundDailyThenSum:
		total := Money{}
		result.Evidence = make([]EvidenceLine, 0, days)
		for _, db := range balances {
			daily := db.Balance.MulDecimal(rate).Round(6).Round2()
			total = total.Add(daily)
			line := daily
			result.Evidence = append(result.Evidence, EvidenceLine{Date: db.Date, Interest: &line})
		}
		result.Interest = total

	default: // RoundSumThenRound, validated above
		result.Interest = adb.MulDecimal(rate).MulDecimal(decimal.NewFromInt(int64(days))).Round2()
		result.Evidence = make([]EvidenceLine, 0, days)
		for _, db := range balances {
			bal := db.Balance
			result.Evidence = append(result.Evidence, EvidenceLine{Date: db.Date, Balance: &bal})
		}
	}

	return result, nil
}

// AccrueForPeriod reconstructs daily balances for the period and accrues
// interest under the agreement, in one call. This is the composition the
// service layer uses; the two halves stay independently testable.
func AccrueForPeriod(transactions []Transaction, agreement Agreement, period Period) (AccrualResult, error) {
	agreement = agreement.Normalize()
	if !period.Valid() {
		return AccrualResult{}, ErrInvalidPeriod
	}
	loc, err := agreement.Location()
	if err != nil {
		return AccrualResult{}, ErrInvalidTimeZone
	}
	balances, err := Reconstruct(transactions, period.Start, period.End, loc)
	if err != nil {
		return AccrualResult{}, err
	}
	return Accrue(balances, agreement.PurchaseAPR, agreement.BasisDays, agreement.Rounding)
}
