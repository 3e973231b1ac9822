/*
errors.go - Centralized error types for the accrual engine

PURPOSE:
  All engine failure modes in one place. Every error here is a
  recoverable-by-caller condition: the engine returns tagged failures for
  bad or insufficient input, it never panics on data.

ERROR CATEGORIES:
  1. Data sufficiency - EmptyLedger, NoAnchor, EmptySeries
  2. Configuration    - InvalidPeriod, InvalidBasis, InvalidTimeZone

PROPAGATION POLICY:
  The engine never retries (pure computation has nothing transient to
  retry against). The orchestrator decides whether to surface
  "insufficient data" or fall back to other evidence.

USAGE:
  if errors.Is(err, accrual.ErrNoAnchor) {
      // report "insufficient data", never fabricate a zero balance
  }
*/
package accrual

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmptyLedger is returned when the ledger contains no posted
	// transactions at all.
	ErrEmptyLedger = errors.New("no posted transactions in ledger")

	// ErrNoAnchor is returned when posted transactions exist but none at
	// or before the period start carries an ending balance. Reconstruction
	// must fail rather than assume a zero starting balance, which would
	// silently under- or over-state interest.
	ErrNoAnchor = errors.New("no anchor balance at or before period start")

	// ErrEmptySeries is returned when accrual is asked to run over an
	// empty daily-balance sequence.
	ErrEmptySeries = errors.New("empty daily balance series")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidBasis is returned when the day-count basis is zero or
	// negative; failing fast beats dividing by zero silently.
	ErrInvalidBasis = errors.New("invalid day-count basis")

	// ErrInvalidTimeZone is returned when the agreement timezone cannot
	// be resolved to an IANA location.
	ErrInvalidTimeZone = errors.New("invalid timezone")

	// ErrInvalidRounding is returned when the rounding policy is not one
	// of the recognized values. Accrual refuses to guess which contract
	// term was meant.
	ErrInvalidRounding = errors.New("invalid rounding policy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoAnchorError reports the period whose anchor could not be resolved and
// the earliest posted date available, so the caller can explain what data
// would be needed.
type NoAnchorError struct {
	Start         LocalDate
	EarliestKnown LocalDate
}

func (e *NoAnchorError) Error() string {
	if e.EarliestKnown.IsZero() {
		return fmt.Sprintf("no anchor balance at or before %s", e.Start)
	}
	return fmt.Sprintf("no anchor balance at or before %s (earliest posted activity %s)",
		e.Start, e.EarliestKnown)
}

func (e *NoAnchorError) Unwrap() error { return ErrNoAnchor }

// IsInsufficientData reports whether the error means the ledger cannot
// support the requested calculation (as opposed to a bad request).
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrEmptyLedger) ||
		errors.Is(err, ErrNoAnchor) ||
		errors.Is(err, ErrEmptySeries)
}

// IsBadRequest reports whether the error is due to invalid caller input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidBasis) ||
		errors.Is(err, ErrInvalidTimeZone) ||
		errors.Is(err, ErrInvalidRounding)
}
