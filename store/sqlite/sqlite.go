/*
Package sqlite provides a SQLite-backed implementation of account.Store.

PURPOSE:
  Persists accounts, their transaction ledgers, payments, statements, and
  agreements using SQLite. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The transactions and payments tables are append-only:
  - No UPDATE statements, no DELETE statements
  - Record IDs are primary keys, so a re-sent feed record is rejected
    rather than silently merged

KEY TABLES:
  accounts:     Issuer account summaries
  transactions: Immutable ledger (the engine's only balance source)
  payments:     Scheduled/posted payments
  statements:   Billing-cycle statements
  agreements:   Cardholder agreement JSON per account

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/accrual.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := account.NewService(store, nil)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - account/store.go: Interface definition
  - account/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/accrual"
)

// Store implements account.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		last4 TEXT,
		status TEXT,
		credit_limit TEXT NOT NULL DEFAULT '0',
		available_credit TEXT NOT NULL DEFAULT '0',
		current_balance TEXT,
		minimum_due TEXT,
		payment_due_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Append-only ledger
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		tx_type TEXT NOT NULL,
		status TEXT NOT NULL,
		posted_at TEXT NOT NULL,
		seq INTEGER NOT NULL,
		amount TEXT NOT NULL,
		ending_balance TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account
		ON transactions(account_id, seq);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_posted
		ON transactions(account_id, posted_at);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		state TEXT NOT NULL,
		amount TEXT NOT NULL,
		effective_at TEXT,
		initiated_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_payments_account
		ON payments(account_id, effective_at);

	CREATE TABLE IF NOT EXISTS statements (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		opening_at TEXT NOT NULL,
		closing_at TEXT NOT NULL,
		due_date TEXT,
		purchases TEXT NOT NULL DEFAULT '0',
		payments_and_credits TEXT NOT NULL DEFAULT '0',
		interest_charged TEXT NOT NULL DEFAULT '0',
		fees_charged TEXT NOT NULL DEFAULT '0',
		minimum_payment_due TEXT NOT NULL DEFAULT '0',
		unpaid_balance TEXT NOT NULL DEFAULT '0'
	);

	CREATE INDEX IF NOT EXISTS idx_statements_account
		ON statements(account_id, opening_at);

	CREATE TABLE IF NOT EXISTS agreements (
		account_id TEXT PRIMARY KEY REFERENCES accounts(id),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) Accounts(ctx context.Context) ([]account.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, last4, status, credit_limit, available_credit,
		       current_balance, minimum_due, payment_due_date
		FROM accounts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var out []account.Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *Store) Summary(ctx context.Context, accountID string) (account.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, last4, status, credit_limit, available_credit,
		       current_balance, minimum_due, payment_due_date
		FROM accounts WHERE id = ?`, accountID)
	if err != nil {
		return account.Summary{}, fmt.Errorf("loading account: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return account.Summary{}, account.ErrAccountNotFound
	}
	return scanSummary(rows)
}

func (s *Store) PutAccount(ctx context.Context, summary account.Summary, statements []account.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO accounts (id, last4, status, credit_limit, available_credit,
		                      current_balance, minimum_due, payment_due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last4 = excluded.last4,
			status = excluded.status,
			credit_limit = excluded.credit_limit,
			available_credit = excluded.available_credit,
			current_balance = excluded.current_balance,
			minimum_due = excluded.minimum_due,
			payment_due_date = excluded.payment_due_date`,
		summary.AccountID,
		summary.Last4,
		summary.Status,
		summary.CreditLimit.Value.String(),
		summary.AvailableCredit.Value.String(),
		nullMoney(summary.CurrentBalance),
		nullMoney(summary.MinimumDue),
		nullTime(summary.PaymentDueDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}

	// Statements describe issuer-closed cycles; replacing the set on
	// account upsert keeps scenario loading simple.
	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM statements WHERE account_id = ?`, summary.AccountID); err != nil {
		return fmt.Errorf("clearing statements: %w", err)
	}
	for _, st := range statements {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO statements (id, account_id, opening_at, closing_at, due_date,
			                        purchases, payments_and_credits, interest_charged,
			                        fees_charged, minimum_payment_due, unpaid_balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID,
			summary.AccountID,
			st.OpeningAt.UTC().Format(time.RFC3339),
			st.ClosingAt.UTC().Format(time.RFC3339),
			nullTime(st.DueDate),
			st.Purchases.Value.String(),
			st.PaymentsAndCredits.Value.String(),
			st.InterestCharged.Value.String(),
			st.FeesCharged.Value.String(),
			st.MinimumPaymentDue.Value.String(),
			st.UnpaidBalance.Value.String(),
		)
		if err != nil {
			return fmt.Errorf("saving statement %s: %w", st.ID, err)
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// TRANSACTIONS (append-only)
// =============================================================================

func (s *Store) Transactions(ctx context.Context, accountID string) ([]accrual.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tx_type, status, posted_at, amount, ending_balance
		FROM transactions
		WHERE account_id = ?
		ORDER BY seq ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	defer rows.Close()

	var out []accrual.Transaction
	for rows.Next() {
		var (
			tx            accrual.Transaction
			postedAt      string
			amount        string
			endingBalance sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Status, &postedAt, &amount, &endingBalance); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.Timestamp, err = time.Parse(time.RFC3339, postedAt)
		if err != nil {
			return nil, fmt.Errorf("transaction %s posted_at: %w", tx.ID, err)
		}
		tx.Amount, err = accrual.ParseMoney(amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", tx.ID, err)
		}
		if endingBalance.Valid {
			eb, err := accrual.ParseMoney(endingBalance.String)
			if err != nil {
				return nil, fmt.Errorf("transaction %s ending_balance: %w", tx.ID, err)
			}
			tx.EndingBalance = &eb
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) AppendTransactions(ctx context.Context, accountID string, txs []accrual.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return err
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	// seq preserves feed order, which is the tie-breaker for same-instant
	// postings during reconstruction.
	var next int64
	if err := sqlTx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions WHERE account_id = ?`,
		accountID).Scan(&next); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	for _, tx := range txs {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO transactions (id, account_id, tx_type, status, posted_at, seq, amount, ending_balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID,
			accountID,
			string(tx.Type),
			string(tx.Status),
			tx.Timestamp.UTC().Format(time.RFC3339),
			next,
			tx.Amount.Value.String(),
			nullMoney(tx.EndingBalance),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return account.ErrDuplicateRecord
			}
			return fmt.Errorf("appending transaction %s: %w", tx.ID, err)
		}
		next++
	}

	return sqlTx.Commit()
}

// =============================================================================
// PAYMENTS (append-only)
// =============================================================================

func (s *Store) Payments(ctx context.Context, accountID string) ([]account.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, state, amount, effective_at, initiated_at
		FROM payments WHERE account_id = ?
		ORDER BY COALESCE(effective_at, initiated_at) ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading payments: %w", err)
	}
	defer rows.Close()

	var out []account.Payment
	for rows.Next() {
		var (
			p                      account.Payment
			amount                 string
			effectiveAt, initiated sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.State, &amount, &effectiveAt, &initiated); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		p.Amount, err = accrual.ParseMoney(amount)
		if err != nil {
			return nil, fmt.Errorf("payment %s amount: %w", p.ID, err)
		}
		if p.EffectiveAt, err = parseNullTime(effectiveAt); err != nil {
			return nil, fmt.Errorf("payment %s effective_at: %w", p.ID, err)
		}
		if p.InitiatedAt, err = parseNullTime(initiated); err != nil {
			return nil, fmt.Errorf("payment %s initiated_at: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) AppendPayments(ctx context.Context, accountID string, payments []account.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return err
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	for _, p := range payments {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO payments (id, account_id, state, amount, effective_at, initiated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID,
			accountID,
			string(p.State),
			p.Amount.Value.String(),
			nullTime(p.EffectiveAt),
			nullTime(p.InitiatedAt),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return account.ErrDuplicateRecord
			}
			return fmt.Errorf("appending payment %s: %w", p.ID, err)
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// STATEMENTS
// =============================================================================

func (s *Store) Statements(ctx context.Context, accountID string) ([]account.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, opening_at, closing_at, due_date, purchases, payments_and_credits,
		       interest_charged, fees_charged, minimum_payment_due, unpaid_balance
		FROM statements WHERE account_id = ?
		ORDER BY opening_at ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading statements: %w", err)
	}
	defer rows.Close()

	var out []account.Statement
	for rows.Next() {
		var (
			st                   account.Statement
			opening, closing     string
			dueDate              sql.NullString
			purchases, payCred   string
			interest, fees       string
			minDue, unpaid       string
		)
		if err := rows.Scan(&st.ID, &opening, &closing, &dueDate, &purchases, &payCred,
			&interest, &fees, &minDue, &unpaid); err != nil {
			return nil, fmt.Errorf("scanning statement: %w", err)
		}
		if st.OpeningAt, err = time.Parse(time.RFC3339, opening); err != nil {
			return nil, fmt.Errorf("statement %s opening_at: %w", st.ID, err)
		}
		if st.ClosingAt, err = time.Parse(time.RFC3339, closing); err != nil {
			return nil, fmt.Errorf("statement %s closing_at: %w", st.ID, err)
		}
		if st.DueDate, err = parseNullTime(dueDate); err != nil {
			return nil, fmt.Errorf("statement %s due_date: %w", st.ID, err)
		}
		for _, bind := range []struct {
			raw  string
			dest *accrual.Money
		}{
			{purchases, &st.Purchases},
			{payCred, &st.PaymentsAndCredits},
			{interest, &st.InterestCharged},
			{fees, &st.FeesCharged},
			{minDue, &st.MinimumPaymentDue},
			{unpaid, &st.UnpaidBalance},
		} {
			m, err := accrual.ParseMoney(bind.raw)
			if err != nil {
				return nil, fmt.Errorf("statement %s amount: %w", st.ID, err)
			}
			*bind.dest = m
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// =============================================================================
// AGREEMENTS
// =============================================================================

// storedAgreement is the persisted JSON shape of an agreement.
type storedAgreement struct {
	PurchaseAPR         string  `json:"purchase_apr"`
	BasisDays           int     `json:"basis_days"`
	Rounding            string  `json:"rounding"`
	TimeZone            string  `json:"timezone"`
	CashAdvanceAPR      *string `json:"cash_advance_apr,omitempty"`
	BalanceTransferAPR  *string `json:"balance_transfer_apr,omitempty"`
	PenaltyAPR          *string `json:"penalty_apr,omitempty"`
	HasGracePeriod      bool    `json:"has_grace_period"`
	GraceCondition      string  `json:"grace_condition,omitempty"`
	TrailingInterest    bool    `json:"trailing_interest"`
	MinFixedFloor       string  `json:"min_fixed_floor"`
	MinPercentOfBalance string  `json:"min_percent_of_balance"`
}

func (s *Store) Agreement(ctx context.Context, accountID string) (accrual.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return accrual.Agreement{}, err
	}

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT config_json FROM agreements WHERE account_id = ?`, accountID).Scan(&configJSON)
	if err == sql.ErrNoRows {
		return accrual.Agreement{}.Normalize(), nil
	}
	if err != nil {
		return accrual.Agreement{}, fmt.Errorf("loading agreement: %w", err)
	}

	var stored storedAgreement
	if err := json.Unmarshal([]byte(configJSON), &stored); err != nil {
		return accrual.Agreement{}, fmt.Errorf("parsing stored agreement: %w", err)
	}

	agreement := accrual.Agreement{
		BasisDays: stored.BasisDays,
		Rounding:  accrual.RoundingPolicy(stored.Rounding),
		TimeZone:  stored.TimeZone,

		HasGracePeriod:   stored.HasGracePeriod,
		GraceCondition:   stored.GraceCondition,
		TrailingInterest: stored.TrailingInterest,
	}
	if agreement.PurchaseAPR, err = decimal.NewFromString(stored.PurchaseAPR); err != nil {
		return accrual.Agreement{}, fmt.Errorf("stored purchase apr: %w", err)
	}
	if agreement.CashAdvanceAPR, err = parseOptionalDecimal(stored.CashAdvanceAPR); err != nil {
		return accrual.Agreement{}, fmt.Errorf("stored cash advance apr: %w", err)
	}
	if agreement.BalanceTransferAPR, err = parseOptionalDecimal(stored.BalanceTransferAPR); err != nil {
		return accrual.Agreement{}, fmt.Errorf("stored balance transfer apr: %w", err)
	}
	if agreement.PenaltyAPR, err = parseOptionalDecimal(stored.PenaltyAPR); err != nil {
		return accrual.Agreement{}, fmt.Errorf("stored penalty apr: %w", err)
	}
	if agreement.MinFixedFloor, err = accrual.ParseMoney(stored.MinFixedFloor); err != nil {
		return accrual.Agreement{}, fmt.Errorf("stored min fixed floor: %w", err)
	}
	if agreement.MinPercentOfBalance, err = decimal.NewFromString(stored.MinPercentOfBalance); err != nil {
		return accrual.Agreement{}, fmt.Errorf("stored min percent: %w", err)
	}

	return agreement.Normalize(), nil
}

func (s *Store) PutAgreement(ctx context.Context, accountID string, agreement accrual.Agreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAccount(ctx, accountID); err != nil {
		return err
	}

	agreement = agreement.Normalize()
	stored := storedAgreement{
		PurchaseAPR:         agreement.PurchaseAPR.String(),
		BasisDays:           agreement.BasisDays,
		Rounding:            string(agreement.Rounding),
		TimeZone:            agreement.TimeZone,
		CashAdvanceAPR:      optionalDecimalString(agreement.CashAdvanceAPR),
		BalanceTransferAPR:  optionalDecimalString(agreement.BalanceTransferAPR),
		PenaltyAPR:          optionalDecimalString(agreement.PenaltyAPR),
		HasGracePeriod:      agreement.HasGracePeriod,
		GraceCondition:      agreement.GraceCondition,
		TrailingInterest:    agreement.TrailingInterest,
		MinFixedFloor:       agreement.MinFixedFloor.Value.String(),
		MinPercentOfBalance: agreement.MinPercentOfBalance.String(),
	}
	configJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding agreement: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agreements (account_id, config_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		accountID, string(configJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving agreement: %w", err)
	}
	return nil
}

// =============================================================================
// RESET (scenario loading)
// =============================================================================

// Reset drops all data. Used by scenario loading in dev; never exposed in
// production configurations.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"agreements", "statements", "payments", "transactions", "accounts"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("resetting %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) requireAccount(ctx context.Context, accountID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, accountID).Scan(&one)
	if err == sql.ErrNoRows {
		return account.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("checking account: %w", err)
	}
	return nil
}

type summaryScanner interface {
	Scan(dest ...any) error
}

func scanSummary(rows summaryScanner) (account.Summary, error) {
	var (
		summary                  account.Summary
		last4, status            sql.NullString
		creditLimit, available   string
		currentBalance, minDue   sql.NullString
		paymentDueDate           sql.NullString
	)
	err := rows.Scan(&summary.AccountID, &last4, &status, &creditLimit, &available,
		&currentBalance, &minDue, &paymentDueDate)
	if err != nil {
		return account.Summary{}, fmt.Errorf("scanning account: %w", err)
	}
	summary.Last4 = last4.String
	summary.Status = status.String
	if summary.CreditLimit, err = accrual.ParseMoney(creditLimit); err != nil {
		return account.Summary{}, fmt.Errorf("account %s credit_limit: %w", summary.AccountID, err)
	}
	if summary.AvailableCredit, err = accrual.ParseMoney(available); err != nil {
		return account.Summary{}, fmt.Errorf("account %s available_credit: %w", summary.AccountID, err)
	}
	if currentBalance.Valid {
		m, err := accrual.ParseMoney(currentBalance.String)
		if err != nil {
			return account.Summary{}, fmt.Errorf("account %s current_balance: %w", summary.AccountID, err)
		}
		summary.CurrentBalance = &m
	}
	if minDue.Valid {
		m, err := accrual.ParseMoney(minDue.String)
		if err != nil {
			return account.Summary{}, fmt.Errorf("account %s minimum_due: %w", summary.AccountID, err)
		}
		summary.MinimumDue = &m
	}
	if summary.PaymentDueDate, err = parseNullTime(paymentDueDate); err != nil {
		return account.Summary{}, fmt.Errorf("account %s payment_due_date: %w", summary.AccountID, err)
	}
	return summary, nil
}

func nullMoney(m *accrual.Money) any {
	if m == nil {
		return nil
	}
	return m.Value.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalDecimal(v *string) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalDecimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
