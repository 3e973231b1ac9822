package accrual

import "time"

// =============================================================================
// TRANSACTION - Immutable ledger entry (external input)
// =============================================================================

// TransactionType categorizes a ledger entry. The type determines the sign
// applied during reconstruction; the amount itself is always non-negative.
type TransactionType string

const (
	TxPurchase        TransactionType = "PURCHASE"
	TxFee             TransactionType = "FEE"
	TxInterest        TransactionType = "INTEREST"
	TxCashAdvance     TransactionType = "CASH_ADVANCE"
	TxBalanceTransfer TransactionType = "BALANCE_TRANSFER"
	TxPayment         TransactionType = "PAYMENT"
	TxRefund          TransactionType = "REFUND"
	TxCredit          TransactionType = "CREDIT"
)

// TransactionStatus is the issuer's settlement state. Only posted entries
// participate in balance math; pending entries are provisional and excluded.
type TransactionStatus string

const (
	StatusPosted   TransactionStatus = "POSTED"
	StatusPending  TransactionStatus = "PENDING"
	StatusDeclined TransactionStatus = "DECLINED"
)

// Transaction is a single ledger record as supplied by the issuer feed.
// EndingBalance is the issuer-reported account balance immediately after
// this transaction posted; it is optional and used only for anchoring.
type Transaction struct {
	ID            string
	Type          TransactionType
	Status        TransactionStatus
	Timestamp     time.Time
	Amount        Money
	EndingBalance *Money
}

// Posted reports whether this entry participates in accrual.
func (t Transaction) Posted() bool {
	return t.Status == StatusPosted
}

// SignedDelta returns the balance effect of this transaction.
//
// This is a policy invariant, not a value read from the record:
// balance-increasing categories (and any unrecognized type) apply +amount,
// balance-decreasing categories apply -amount.
func (t Transaction) SignedDelta() Money {
	switch t.Type {
	case TxPayment, TxRefund, TxCredit:
		return t.Amount.Neg()
	default:
		// PURCHASE, FEE, INTEREST, CASH_ADVANCE, BALANCE_TRANSFER,
		// and anything unrecognized, increase the balance owed.
		return t.Amount
	}
}

// LocalDate returns the calendar day this transaction posted on, in the
// agreement timezone.
func (t Transaction) LocalDate(loc *time.Location) LocalDate {
	return DateOf(t.Timestamp, loc)
}
