/*
service.go - Account-level operations over the ledger

PURPOSE:
  Implements the questions the orchestrator asks about an account. Each
  operation loads fully materialized data from the Store, hands it to the
  pure accrual engine (or applies a small documented policy itself), and
  returns a structured result the caller can display verbatim.

POLICIES (from the issuer's association rules):
  - Current balance: latest POSTED transaction's endingBalance; fallback
    to the issuer summary's currentBalance; otherwise insufficient data.
  - Upcoming payment: earliest future SCHEDULED payment by effective time,
    falling back to initiated time.
  - Posted interest totals: sum of POSTED INTEREST transactions in the
    window, with ordered evidence lines.

SEE ALSO:
  - accrual/accrue.go: The computation these operations delegate to
  - store.go: Data access
*/
package account

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/warp/accrual-engine/accrual"
)

// Service answers account-level questions using a Store and a Clock.
type Service struct {
	Store Store
	Now   Clock
}

// NewService creates a Service. A nil clock defaults to SystemClock.
func NewService(store Store, now Clock) *Service {
	if now == nil {
		now = SystemClock
	}
	return &Service{Store: store, Now: now}
}

// =============================================================================
// CURRENT BALANCE
// =============================================================================

// BalanceSource tells the caller where a balance figure came from.
type BalanceSource string

const (
	SourceLedger  BalanceSource = "ledger"
	SourceSummary BalanceSource = "account_summary"
)

// CurrentBalanceResult carries the balance and its provenance.
type CurrentBalanceResult struct {
	Balance accrual.Money
	Source  BalanceSource
	AsOf    *time.Time // timestamp of the ledger entry, when Source is ledger
}

// CurrentBalance returns the account's current balance: the ending balance
// of the latest POSTED transaction, or the issuer summary as a fallback.
// Fails with ErrEmptyLedger (wrapped) when neither is available.
func (s *Service) CurrentBalance(ctx context.Context, accountID string) (CurrentBalanceResult, error) {
	txs, err := s.Store.Transactions(ctx, accountID)
	if err != nil {
		return CurrentBalanceResult{}, err
	}

	var latest *accrual.Transaction
	for i := range txs {
		tx := &txs[i]
		if !tx.Posted() || tx.EndingBalance == nil {
			continue
		}
		if latest == nil || tx.Timestamp.After(latest.Timestamp) {
			latest = tx
		}
	}
	if latest != nil {
		at := latest.Timestamp
		return CurrentBalanceResult{Balance: latest.EndingBalance.Round2(), Source: SourceLedger, AsOf: &at}, nil
	}

	summary, err := s.Store.Summary(ctx, accountID)
	if err != nil {
		return CurrentBalanceResult{}, err
	}
	if summary.CurrentBalance != nil {
		return CurrentBalanceResult{Balance: summary.CurrentBalance.Round2(), Source: SourceSummary}, nil
	}
	return CurrentBalanceResult{}, fmt.Errorf("account %s: %w", accountID, accrual.ErrEmptyLedger)
}

// =============================================================================
// PERIOD INTEREST (ADB accrual)
// =============================================================================

// PeriodInterest reconstructs daily balances for the period and accrues
// ADB interest under the account's stored agreement.
func (s *Service) PeriodInterest(ctx context.Context, accountID string, period accrual.Period) (accrual.AccrualResult, error) {
	agreement, err := s.Store.Agreement(ctx, accountID)
	if err != nil {
		return accrual.AccrualResult{}, err
	}
	txs, err := s.Store.Transactions(ctx, accountID)
	if err != nil {
		return accrual.AccrualResult{}, err
	}
	return accrual.AccrueForPeriod(txs, agreement, period)
}

// DailyBalances reconstructs the end-of-day balance sequence for the
// period in the agreement's timezone.
func (s *Service) DailyBalances(ctx context.Context, accountID string, period accrual.Period) ([]accrual.DailyBalance, error) {
	agreement, err := s.Store.Agreement(ctx, accountID)
	if err != nil {
		return nil, err
	}
	loc, err := agreement.Location()
	if err != nil {
		return nil, accrual.ErrInvalidTimeZone
	}
	txs, err := s.Store.Transactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return accrual.Reconstruct(txs, period.Start, period.End, loc)
}

// StatementInterest accrues ADB interest over a statement's billing cycle.
func (s *Service) StatementInterest(ctx context.Context, accountID, statementID string) (accrual.AccrualResult, error) {
	agreement, err := s.Store.Agreement(ctx, accountID)
	if err != nil {
		return accrual.AccrualResult{}, err
	}
	loc, err := agreement.Location()
	if err != nil {
		return accrual.AccrualResult{}, accrual.ErrInvalidTimeZone
	}
	statements, err := s.Store.Statements(ctx, accountID)
	if err != nil {
		return accrual.AccrualResult{}, err
	}
	for _, st := range statements {
		if st.ID == statementID {
			return s.PeriodInterest(ctx, accountID, st.CyclePeriod(loc))
		}
	}
	return accrual.AccrualResult{}, fmt.Errorf("statement %s: %w", statementID, ErrAccountNotFound)
}

// =============================================================================
// POSTED INTEREST TOTALS
// =============================================================================

// InterestWindow selects the time window for posted-interest totals.
type InterestWindow string

const (
	WindowAll   InterestWindow = "all"
	WindowYear  InterestWindow = "year"  // calendar year containing now
	WindowMonth InterestWindow = "month" // calendar month containing now
)

// InterestLine is one POSTED INTEREST transaction in the evidence trail.
type InterestLine struct {
	TransactionID string
	Amount        accrual.Money
	PostedAt      time.Time
}

// PostedInterestResult is the window total plus its evidence.
type PostedInterestResult struct {
	Window InterestWindow
	Total  accrual.Money
	Lines  []InterestLine
}

// PostedInterest sums POSTED INTEREST transactions over the window.
// These are interest amounts the issuer already billed, as opposed to the
// ADB accrual the engine computes itself.
func (s *Service) PostedInterest(ctx context.Context, accountID string, window InterestWindow) (PostedInterestResult, error) {
	txs, err := s.Store.Transactions(ctx, accountID)
	if err != nil {
		return PostedInterestResult{}, err
	}

	var from, to time.Time
	bounded := false
	switch window {
	case WindowYear:
		now := s.Now().UTC()
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
		bounded = true
	case WindowMonth:
		now := s.Now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
		bounded = true
	case WindowAll, "":
		window = WindowAll
	default:
		return PostedInterestResult{}, fmt.Errorf("unknown interest window %q", window)
	}

	result := PostedInterestResult{Window: window}
	total := accrual.Money{}
	for _, tx := range txs {
		if !tx.Posted() || tx.Type != accrual.TxInterest {
			continue
		}
		at := tx.Timestamp.UTC()
		if bounded && (at.Before(from) || !at.Before(to)) {
			continue
		}
		total = total.Add(tx.Amount)
		result.Lines = append(result.Lines, InterestLine{
			TransactionID: tx.ID,
			Amount:        tx.Amount.Round2(),
			PostedAt:      tx.Timestamp,
		})
	}
	sort.Slice(result.Lines, func(a, b int) bool {
		return result.Lines[a].PostedAt.Before(result.Lines[b].PostedAt)
	})
	result.Total = total.Round2()
	return result, nil
}

// =============================================================================
// PAYMENTS AND MINIMUM DUE
// =============================================================================

// UpcomingPayment returns the earliest future SCHEDULED payment, by
// effective time with initiated time as fallback. Returns (nil, nil) when
// nothing is scheduled; absence of a payment is not an error.
func (s *Service) UpcomingPayment(ctx context.Context, accountID string) (*Payment, error) {
	payments, err := s.Store.Payments(ctx, accountID)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	var next *Payment
	var nextAt time.Time
	for i := range payments {
		p := payments[i]
		if p.State != PaymentScheduled {
			continue
		}
		at, ok := p.When()
		if !ok || at.Before(now) {
			continue
		}
		if next == nil || at.Before(nextAt) {
			next = &p
			nextAt = at
		}
	}
	return next, nil
}

// MinimumDue computes the minimum payment on the current balance under
// the account's agreement terms.
func (s *Service) MinimumDue(ctx context.Context, accountID string) (accrual.Money, error) {
	agreement, err := s.Store.Agreement(ctx, accountID)
	if err != nil {
		return accrual.Money{}, err
	}
	current, err := s.CurrentBalance(ctx, accountID)
	if err != nil {
		return accrual.Money{}, err
	}
	return agreement.MinimumDue(current.Balance), nil
}
