/*
Package account provides account-level services over a transaction ledger.

PURPOSE:
  The accrual package is pure computation: ledger in, number out. This
  package is the account-facing layer above it - it knows how to fetch an
  account's ledger, agreement, payments, and statements from a Store, and
  answers the questions an orchestrator asks: current balance, period
  interest, posted-interest totals, upcoming payment, minimum due.

KEY CONCEPTS IN THIS FILE (types.go):
  - Summary: Issuer-reported account snapshot (credit limit, balances)
  - Payment: A scheduled or completed payment
  - Statement: A billing-cycle statement with its open/close bounds

SEE ALSO:
  - store.go: Persistence interface
  - service.go: The service operations
*/
package account

import (
	"time"

	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// SUMMARY - Issuer-reported account snapshot
// =============================================================================

// Summary is the issuer-reported state of an account. CurrentBalance here
// is a fallback only; the ledger's latest posted ending balance wins when
// both are available.
type Summary struct {
	AccountID       string
	Last4           string
	Status          string
	CreditLimit     accrual.Money
	AvailableCredit accrual.Money
	CurrentBalance  *accrual.Money
	MinimumDue      *accrual.Money
	PaymentDueDate  *time.Time
}

// =============================================================================
// PAYMENT
// =============================================================================

// PaymentState is the lifecycle state of a payment.
type PaymentState string

const (
	PaymentScheduled PaymentState = "SCHEDULED"
	PaymentPosted    PaymentState = "POSTED"
	PaymentCancelled PaymentState = "CANCELLED"
	PaymentReturned  PaymentState = "RETURNED"
)

// Payment is a cardholder payment. EffectiveAt is when funds apply to the
// balance; InitiatedAt is when the cardholder scheduled it. Scheduling
// systems don't always populate both, so lookups fall back from effective
// to initiated time.
type Payment struct {
	ID          string
	State       PaymentState
	Amount      accrual.Money
	EffectiveAt *time.Time
	InitiatedAt *time.Time
}

// When returns the payment's effective time, falling back to the
// initiated time. The second return is false when neither is known.
func (p Payment) When() (time.Time, bool) {
	if p.EffectiveAt != nil {
		return *p.EffectiveAt, true
	}
	if p.InitiatedAt != nil {
		return *p.InitiatedAt, true
	}
	return time.Time{}, false
}

// =============================================================================
// STATEMENT
// =============================================================================

// Statement is one billing cycle as reported by the issuer.
type Statement struct {
	ID                 string
	OpeningAt          time.Time
	ClosingAt          time.Time
	DueDate            *time.Time
	Purchases          accrual.Money
	PaymentsAndCredits accrual.Money
	InterestCharged    accrual.Money
	FeesCharged        accrual.Money
	MinimumPaymentDue  accrual.Money
	UnpaidBalance      accrual.Money
}

// CyclePeriod returns the statement's billing cycle as an inclusive date
// window in the given location.
func (s Statement) CyclePeriod(loc *time.Location) accrual.Period {
	return accrual.Period{
		Start: accrual.DateOf(s.OpeningAt, loc),
		End:   accrual.DateOf(s.ClosingAt, loc),
	}
}
