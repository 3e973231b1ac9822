/*
reconstruct.go - Daily balance reconstruction

PURPOSE:
  Converts a set of posted transactions into a contiguous, timezone-bucketed
  sequence of end-of-day balances between two dates, anchored to the most
  recent issuer-reported balance at or before the period start.

ALGORITHM:
  1. Filter to POSTED transactions; bucket each instant into a calendar day
     in the agreement timezone; derive a signed delta per the sign policy.
  2. Stable-sort by timestamp; same-instant postings keep ledger order, so
     reconstruction is deterministic.
  3. Resolve the anchor: the ending balance of the last event dated at or
     before the period start. No anchor means the ledger cannot support the
     window - fail, never assume zero.
  4. Walk forward one calendar day at a time, applying each day's events to
     a running balance; record the balance after the day's last event.
     Event-free days carry the previous balance forward.

INVARIANTS:
  - Output has exactly Days(start,end) entries: contiguous, gap-free,
    strictly increasing dates.
  - The anchor event's own delta is never re-applied; its ending balance
    already includes it.
  - The running balance stays exact; only recorded values are rounded.

SEE ALSO:
  - accrue.go: Consumes the daily sequence to compute interest
  - errors.go: ErrEmptyLedger, ErrNoAnchor failure modes
*/
package accrual

import (
	"sort"
	"time"
)

// =============================================================================
// DAILY BALANCE - End-of-day balance for one calendar day
// =============================================================================

// DailyBalance is the balance carried at the close of one calendar day,
// after all of that day's posted events are applied.
type DailyBalance struct {
	Date    LocalDate `json:"date"`
	Balance Money     `json:"balance"`
}

// event is a posted transaction prepared for the day walk.
type event struct {
	at            time.Time
	date          LocalDate
	delta         Money
	endingBalance *Money
}

// =============================================================================
// RECONSTRUCTION
// =============================================================================

// Reconstruct builds the end-of-day balance sequence for [start, end]
// inclusive, bucketing transaction instants into calendar days in loc.
//
// Only POSTED transactions participate; others are ignored without error.
// Fails with ErrEmptyLedger when no posted transactions exist at all, and
// with ErrNoAnchor when none at or before start carries an ending balance.
func Reconstruct(transactions []Transaction, start, end LocalDate, loc *time.Location) ([]DailyBalance, error) {
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}

	sorted := make([]event, 0, len(transactions))
	for _, tx := range transactions {
		if !tx.Posted() {
			continue
		}
		sorted = append(sorted, event{
			at:            tx.Timestamp,
			date:          tx.LocalDate(loc),
			delta:         tx.SignedDelta(),
			endingBalance: tx.EndingBalance,
		})
	}
	if len(sorted) == 0 {
		return nil, ErrEmptyLedger
	}

	// Chronological order; the stable sort keeps original ledger order for
	// same-instant postings, so reconstruction is deterministic.
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].at.Before(sorted[b].at)
	})

	// Anchor resolution: latest event dated at or before start that carries
	// an issuer-reported ending balance.
	anchorIdx := -1
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].date.BeforeOrEqual(start) && sorted[i].endingBalance != nil {
			anchorIdx = i
			break
		}
	}
	if anchorIdx == -1 {
		return nil, &NoAnchorError{Start: start, EarliestKnown: sorted[0].date}
	}

	// The anchor's ending balance already includes its own delta. Events
	// after the anchor but still dated before start fold into the balance
	// carried into day one.
	running := *sorted[anchorIdx].endingBalance
	idx := anchorIdx + 1
	for idx < len(sorted) && sorted[idx].date.Before(start) {
		running = running.Add(sorted[idx].delta)
		idx++
	}

	balances := make([]DailyBalance, 0, start.DaysUntil(end)+1)
	for day := start; day.BeforeOrEqual(end); day = day.Next() {
		for idx < len(sorted) && sorted[idx].date.Equal(day) {
			running = running.Add(sorted[idx].delta)
			idx++
		}
		balances = append(balances, DailyBalance{Date: day, Balance: running.Round2()})
	}
	return balances, nil
}
