package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/account/store"
	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const testAccount = "acct-1"

func newTestService(t *testing.T, now time.Time) (*account.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, mem.PutAccount(context.Background(), account.Summary{AccountID: testAccount, Last4: "4242"}, nil))
	return account.NewService(mem, account.FixedClock(now)), mem
}

func money(s string) accrual.Money { return accrual.MustParseMoney(s) }

func moneyPtr(s string) *accrual.Money {
	m := accrual.MustParseMoney(s)
	return &m
}

func timePtr(t time.Time) *time.Time { return &t }

func tx(id string, typ accrual.TransactionType, at time.Time, amount string, endingBalance string) accrual.Transaction {
	t := accrual.Transaction{
		ID:        id,
		Type:      typ,
		Status:    accrual.StatusPosted,
		Timestamp: at,
		Amount:    money(amount),
	}
	if endingBalance != "" {
		t.EndingBalance = moneyPtr(endingBalance)
	}
	return t
}

// =============================================================================
// CURRENT BALANCE
// =============================================================================

func TestCurrentBalance_LatestPostedEndingBalanceWins(t *testing.T) {
	// GIVEN: Two posted transactions and a later pending one
	// THEN: The latest POSTED ending balance is the current balance;
	//       pending activity never moves the number

	ctx := context.Background()
	svc, mem := newTestService(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))

	pending := tx("t3", accrual.TxPurchase, time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC), "99.00", "700.00")
	pending.Status = accrual.StatusPending
	require.NoError(t, mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("t1", accrual.TxPurchase, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), "500.00", "500.00"),
		tx("t2", accrual.TxPayment, time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC), "100.00", "400.00"),
		pending,
	}))

	result, err := svc.CurrentBalance(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, "400.00", result.Balance.String())
	assert.Equal(t, account.SourceLedger, result.Source)
}

func TestCurrentBalance_FallsBackToSummary(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, time.Now())
	require.NoError(t, mem.PutAccount(ctx, account.Summary{
		AccountID:      testAccount,
		CurrentBalance: moneyPtr("123.45"),
	}, nil))

	result, err := svc.CurrentBalance(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, "123.45", result.Balance.String())
	assert.Equal(t, account.SourceSummary, result.Source)
}

func TestCurrentBalance_NoData_Fails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Now())

	_, err := svc.CurrentBalance(ctx, testAccount)
	assert.True(t, errors.Is(err, accrual.ErrEmptyLedger))
}

// =============================================================================
// POSTED INTEREST WINDOWS
// =============================================================================

func TestPostedInterest_Windows(t *testing.T) {
	// GIVEN: Interest postings across two years, plus a purchase and a
	//        pending interest entry that must not count
	// WHEN: Summing per window with "now" pinned to 2024-03-15

	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc, mem := newTestService(t, now)

	pendingInterest := tx("p1", accrual.TxInterest, time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC), "9.99", "")
	pendingInterest.Status = accrual.StatusPending
	require.NoError(t, mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("i1", accrual.TxInterest, time.Date(2023, time.November, 2, 9, 0, 0, 0, time.UTC), "4.50", ""),
		tx("i2", accrual.TxInterest, time.Date(2024, time.February, 2, 9, 0, 0, 0, time.UTC), "3.25", ""),
		tx("i3", accrual.TxInterest, time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC), "2.75", ""),
		tx("t1", accrual.TxPurchase, time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC), "50.00", ""),
		pendingInterest,
	}))

	all, err := svc.PostedInterest(ctx, testAccount, account.WindowAll)
	require.NoError(t, err)
	assert.Equal(t, "10.50", all.Total.String())
	require.Len(t, all.Lines, 3)
	// Evidence lines are in posting order.
	assert.Equal(t, "i1", all.Lines[0].TransactionID)
	assert.Equal(t, "i3", all.Lines[2].TransactionID)

	year, err := svc.PostedInterest(ctx, testAccount, account.WindowYear)
	require.NoError(t, err)
	assert.Equal(t, "6.00", year.Total.String())

	month, err := svc.PostedInterest(ctx, testAccount, account.WindowMonth)
	require.NoError(t, err)
	assert.Equal(t, "2.75", month.Total.String())

	_, err = svc.PostedInterest(ctx, testAccount, account.InterestWindow("decade"))
	assert.Error(t, err)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestUpcomingPayment_EarliestFutureScheduled(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	svc, mem := newTestService(t, now)

	require.NoError(t, mem.AppendPayments(ctx, testAccount, []account.Payment{
		{ID: "p1", State: account.PaymentScheduled, Amount: money("50.00"),
			EffectiveAt: timePtr(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))}, // past
		{ID: "p2", State: account.PaymentScheduled, Amount: money("75.00"),
			EffectiveAt: timePtr(time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC))},
		{ID: "p3", State: account.PaymentScheduled, Amount: money("20.00"),
			InitiatedAt: timePtr(time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC))}, // fallback time
		{ID: "p4", State: account.PaymentCancelled, Amount: money("10.00"),
			EffectiveAt: timePtr(time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC))},
	}))

	next, err := svc.UpcomingPayment(ctx, testAccount)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "p3", next.ID) // March 20 via initiated-time fallback beats March 25
}

func TestUpcomingPayment_NoneScheduled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Now())

	next, err := svc.UpcomingPayment(ctx, testAccount)
	require.NoError(t, err)
	assert.Nil(t, next)
}

// =============================================================================
// PERIOD INTEREST AND MINIMUM DUE
// =============================================================================

func TestPeriodInterest_UsesStoredAgreement(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, time.Now())

	require.NoError(t, mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("t1", accrual.TxPurchase, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), "500.00", "500.00"),
	}))
	require.NoError(t, mem.PutAgreement(ctx, testAccount, accrual.Agreement{
		PurchaseAPR: decimal.RequireFromString("24.00"),
	}))

	result, err := svc.PeriodInterest(ctx, testAccount, accrual.Period{
		Start: accrual.NewLocalDate(2024, time.March, 1),
		End:   accrual.NewLocalDate(2024, time.March, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, "10.19", result.Interest.String())
}

func TestPeriodInterest_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, time.Now())

	_, err := svc.PeriodInterest(ctx, "nope", accrual.Period{
		Start: accrual.NewLocalDate(2024, time.March, 1),
		End:   accrual.NewLocalDate(2024, time.March, 2),
	})
	assert.True(t, errors.Is(err, account.ErrAccountNotFound))
}

func TestMinimumDue_FromCurrentBalance(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, time.Now())

	require.NoError(t, mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("t1", accrual.TxPurchase, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), "5000.00", "5000.00"),
	}))
	require.NoError(t, mem.PutAgreement(ctx, testAccount, accrual.Agreement{
		PurchaseAPR:         decimal.RequireFromString("24.00"),
		MinFixedFloor:       money("25.00"),
		MinPercentOfBalance: decimal.RequireFromString("0.01"),
	}))

	due, err := svc.MinimumDue(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, "50.00", due.String())
}

func TestStatementInterest_OverBillingCycle(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, time.Now())

	require.NoError(t, mem.PutAccount(ctx, account.Summary{AccountID: testAccount}, []account.Statement{{
		ID:        "st-1",
		OpeningAt: time.Date(2024, time.March, 1, 5, 0, 0, 0, time.UTC),
		ClosingAt: time.Date(2024, time.March, 31, 5, 0, 0, 0, time.UTC),
	}}))
	require.NoError(t, mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("t1", accrual.TxPurchase, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), "500.00", "500.00"),
	}))
	require.NoError(t, mem.PutAgreement(ctx, testAccount, accrual.Agreement{
		PurchaseAPR: decimal.RequireFromString("24.00"),
	}))

	result, err := svc.StatementInterest(ctx, testAccount, "st-1")
	require.NoError(t, err)
	assert.Equal(t, 31, result.Days)
	assert.Equal(t, "10.19", result.Interest.String())

	_, err = svc.StatementInterest(ctx, testAccount, "st-404")
	assert.Error(t, err)
}

// =============================================================================
// STORE INVARIANTS
// =============================================================================

func TestAppendTransactions_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	_, mem := newTestService(t, time.Now())

	first := tx("t1", accrual.TxPurchase, time.Now(), "10.00", "")
	require.NoError(t, mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{first}))

	err := mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("t2", accrual.TxPurchase, time.Now(), "20.00", ""),
		first, // duplicate: whole batch must be rejected
	})
	assert.True(t, errors.Is(err, account.ErrDuplicateRecord))

	txs, err := mem.Transactions(ctx, testAccount)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestAppendTransactions_DuplicateWithinBatchRejected(t *testing.T) {
	ctx := context.Background()
	_, mem := newTestService(t, time.Now())

	// Two records sharing an ID inside one batch; nothing may land.
	err := mem.AppendTransactions(ctx, testAccount, []accrual.Transaction{
		tx("t1", accrual.TxPurchase, time.Now(), "10.00", ""),
		tx("t1", accrual.TxPurchase, time.Now(), "20.00", ""),
	})
	assert.True(t, errors.Is(err, account.ErrDuplicateRecord))

	txs, err := mem.Transactions(ctx, testAccount)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAppendPayments_DuplicateWithinBatchRejected(t *testing.T) {
	ctx := context.Background()
	_, mem := newTestService(t, time.Now())

	at := time.Now()
	dup := account.Payment{ID: "p1", State: account.PaymentPosted, Amount: money("50.00"), EffectiveAt: &at}
	err := mem.AppendPayments(ctx, testAccount, []account.Payment{dup, dup})
	assert.True(t, errors.Is(err, account.ErrDuplicateRecord))

	payments, err := mem.Payments(ctx, testAccount)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
