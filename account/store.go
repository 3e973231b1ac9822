package account

import (
	"context"
	"errors"

	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// STORE - Persistence interface for account data
// =============================================================================

var (
	// ErrAccountNotFound is returned for lookups against an unknown account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateRecord is returned when appending a record whose ID
	// already exists. The ledger is append-only and idempotent: re-sending
	// the same record is rejected, never silently merged.
	ErrDuplicateRecord = errors.New("duplicate record id")
)

// Store persists account data. The transaction ledger is APPEND-ONLY:
// there is no update or delete, and corrections arrive as new offsetting
// transactions from the issuer feed.
type Store interface {
	// Accounts lists the summaries of all known accounts.
	Accounts(ctx context.Context) ([]Summary, error)

	// Summary returns the issuer snapshot for one account.
	Summary(ctx context.Context, accountID string) (Summary, error)

	// Transactions returns the full ledger for an account, in feed order.
	Transactions(ctx context.Context, accountID string) ([]accrual.Transaction, error)

	// AppendTransactions appends ledger records. Fails with
	// ErrDuplicateRecord if any ID already exists; the batch is atomic.
	AppendTransactions(ctx context.Context, accountID string, txs []accrual.Transaction) error

	// Payments returns all payments for an account.
	Payments(ctx context.Context, accountID string) ([]Payment, error)

	// AppendPayments appends payment records, atomically.
	AppendPayments(ctx context.Context, accountID string, payments []Payment) error

	// Statements returns all statements for an account, oldest first.
	Statements(ctx context.Context, accountID string) ([]Statement, error)

	// Agreement returns the stored cardholder agreement for an account,
	// already normalized. Accounts without an explicit agreement get the
	// documented defaults with a zero APR.
	Agreement(ctx context.Context, accountID string) (accrual.Agreement, error)

	// PutAgreement stores (or replaces) the agreement for an account.
	PutAgreement(ctx context.Context, accountID string, agreement accrual.Agreement) error

	// PutAccount creates or replaces an account summary and its statements.
	// Used by ingest and scenario loading.
	PutAccount(ctx context.Context, summary Summary, statements []Statement) error
}
