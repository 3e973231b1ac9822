package accrual_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func money(s string) accrual.Money {
	return accrual.MustParseMoney(s)
}

func moneyPtr(s string) *accrual.Money {
	m := accrual.MustParseMoney(s)
	return &m
}

func date(y int, m time.Month, d int) accrual.LocalDate {
	return accrual.NewLocalDate(y, m, d)
}

// postedTx builds a POSTED transaction at noon UTC on the given day.
func postedTx(id string, typ accrual.TransactionType, y int, m time.Month, d int, amount string) accrual.Transaction {
	return accrual.Transaction{
		ID:        id,
		Type:      typ,
		Status:    accrual.StatusPosted,
		Timestamp: time.Date(y, m, d, 12, 0, 0, 0, time.UTC),
		Amount:    money(amount),
	}
}

func withEndingBalance(tx accrual.Transaction, balance string) accrual.Transaction {
	tx.EndingBalance = moneyPtr(balance)
	return tx
}

// =============================================================================
// ANCHOR RESOLUTION
// =============================================================================

func TestReconstruct_AnchorBeforeStart_CarriesForward(t *testing.T) {
	// GIVEN: A known balance on March 1 and a purchase on March 15
	// WHEN: Reconstructing March 10 - March 20
	// THEN: Balance is 100.00 for days 10-14 and 150.00 for days 15-20

	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 1, "100.00"), "100.00"),
		postedTx("t2", accrual.TxPurchase, 2024, time.March, 15, "50.00"),
	}

	balances, err := accrual.Reconstruct(txs, date(2024, time.March, 10), date(2024, time.March, 20), eastern(t))
	require.NoError(t, err)
	require.Len(t, balances, 11)

	for i := 0; i < 5; i++ {
		assert.True(t, balances[i].Balance.Equal(money("100.00")), "day %s", balances[i].Date)
	}
	for i := 5; i < 11; i++ {
		assert.True(t, balances[i].Balance.Equal(money("150.00")), "day %s", balances[i].Date)
	}
}

func TestReconstruct_AnchorOnStartDay_NotReapplied(t *testing.T) {
	// GIVEN: A single purchase of 500 posted on the period's first day,
	//        carrying endingBalance=500
	// WHEN: Reconstructing the full month
	// THEN: Every day is 500.00 - the anchor's own delta is not re-applied

	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 1, "500.00"), "500.00"),
	}

	balances, err := accrual.Reconstruct(txs, date(2024, time.March, 1), date(2024, time.March, 31), eastern(t))
	require.NoError(t, err)
	require.Len(t, balances, 31)
	for _, db := range balances {
		assert.True(t, db.Balance.Equal(money("500.00")), "day %s: %s", db.Date, db.Balance)
	}
}

func TestReconstruct_NoAnchor_Fails(t *testing.T) {
	// GIVEN: A ledger whose earliest posted event is after the period start
	// WHEN: Reconstructing
	// THEN: ErrNoAnchor - the engine must not guess a zero starting balance

	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 15, "50.00"), "50.00"),
	}

	_, err := accrual.Reconstruct(txs, date(2024, time.March, 1), date(2024, time.March, 31), eastern(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, accrual.ErrNoAnchor))

	var noAnchor *accrual.NoAnchorError
	require.True(t, errors.As(err, &noAnchor))
	assert.Equal(t, date(2024, time.March, 1), noAnchor.Start)
	assert.Equal(t, date(2024, time.March, 15), noAnchor.EarliestKnown)
}

func TestReconstruct_EmptyLedger_Fails(t *testing.T) {
	// GIVEN: No posted transactions (pending ones don't count)
	txs := []accrual.Transaction{
		{ID: "p1", Type: accrual.TxPurchase, Status: accrual.StatusPending,
			Timestamp: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), Amount: money("10.00")},
	}

	_, err := accrual.Reconstruct(txs, date(2024, time.March, 1), date(2024, time.March, 2), eastern(t))
	assert.True(t, errors.Is(err, accrual.ErrEmptyLedger))

	_, err = accrual.Reconstruct(nil, date(2024, time.March, 1), date(2024, time.March, 2), eastern(t))
	assert.True(t, errors.Is(err, accrual.ErrEmptyLedger))
}

func TestReconstruct_AnchorWithoutEndingBalance_ScansFurtherBack(t *testing.T) {
	// GIVEN: The last pre-start event lacks an ending balance, but an
	//        earlier one carries it
	// WHEN: Reconstructing
	// THEN: The earlier balance anchors and the later delta folds in

	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 1, "100.00"), "100.00"),
		postedTx("t2", accrual.TxPurchase, 2024, time.March, 5, "40.00"), // no ending balance
	}

	balances, err := accrual.Reconstruct(txs, date(2024, time.March, 10), date(2024, time.March, 12), eastern(t))
	require.NoError(t, err)
	require.Len(t, balances, 3)
	for _, db := range balances {
		assert.True(t, db.Balance.Equal(money("140.00")), "day %s: %s", db.Date, db.Balance)
	}
}

// =============================================================================
// CONTIGUITY AND BUCKETING
// =============================================================================

func TestReconstruct_Contiguity(t *testing.T) {
	// GIVEN: Any valid window
	// THEN: Exactly days(start,end)+1 entries with gap-free increasing dates

	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.January, 1, "250.00"), "250.00"),
	}

	start := date(2024, time.February, 20)
	end := date(2024, time.March, 10) // crosses a leap-February boundary
	balances, err := accrual.Reconstruct(txs, start, end, eastern(t))
	require.NoError(t, err)

	require.Len(t, balances, start.DaysUntil(end)+1)
	for i, db := range balances {
		assert.Equal(t, start.AddDays(i), db.Date)
	}
}

func TestReconstruct_SingleDayPeriod(t *testing.T) {
	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 1, "75.50"), "75.50"),
	}

	balances, err := accrual.Reconstruct(txs, date(2024, time.March, 3), date(2024, time.March, 3), eastern(t))
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(money("75.50")))
}

func TestReconstruct_InvalidPeriod_Fails(t *testing.T) {
	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 1, "10.00"), "10.00"),
	}

	_, err := accrual.Reconstruct(txs, date(2024, time.March, 10), date(2024, time.March, 9), eastern(t))
	assert.True(t, errors.Is(err, accrual.ErrInvalidPeriod))
}

func TestReconstruct_TimezoneBucketing(t *testing.T) {
	// GIVEN: A purchase at 02:00 UTC on March 16, which is still the
	//        evening of March 15 in New York
	// WHEN: Reconstructing in the agreement timezone
	// THEN: The purchase lands on March 15's end-of-day balance

	anchor := withEndingBalance(postedTx("t1", accrual.TxPurchase, 2024, time.March, 1, "100.00"), "100.00")
	lateNight := accrual.Transaction{
		ID:        "t2",
		Type:      accrual.TxPurchase,
		Status:    accrual.StatusPosted,
		Timestamp: time.Date(2024, time.March, 16, 2, 0, 0, 0, time.UTC),
		Amount:    money("25.00"),
	}

	balances, err := accrual.Reconstruct([]accrual.Transaction{anchor, lateNight},
		date(2024, time.March, 14), date(2024, time.March, 16), eastern(t))
	require.NoError(t, err)
	require.Len(t, balances, 3)

	assert.True(t, balances[0].Balance.Equal(money("100.00"))) // Mar 14
	assert.True(t, balances[1].Balance.Equal(money("125.00"))) // Mar 15 (local)
	assert.True(t, balances[2].Balance.Equal(money("125.00"))) // Mar 16
}

// =============================================================================
// SIGN CONVENTION
// =============================================================================

func TestReconstruct_SignConvention_SameInstantEvents(t *testing.T) {
	// GIVEN: A purchase, a refund, and an unknown-type posting all at the
	//        exact same instant on March 10
	// WHEN: Reconstructing
	// THEN: +30 - 20 + 5 nets to +15 on top of the 100 anchor, regardless
	//       of how the tie is ordered internally

	at := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)
	txs := []accrual.Transaction{
		withEndingBalance(postedTx("t0", accrual.TxPurchase, 2024, time.March, 1, "100.00"), "100.00"),
		{ID: "t1", Type: accrual.TxPurchase, Status: accrual.StatusPosted, Timestamp: at, Amount: money("30.00")},
		{ID: "t2", Type: accrual.TxRefund, Status: accrual.StatusPosted, Timestamp: at, Amount: money("20.00")},
		{ID: "t3", Type: accrual.TransactionType("MYSTERY"), Status: accrual.StatusPosted, Timestamp: at, Amount: money("5.00")},
	}

	balances, err := accrual.Reconstruct(txs, date(2024, time.March, 9), date(2024, time.March, 11), eastern(t))
	require.NoError(t, err)
	require.Len(t, balances, 3)

	assert.True(t, balances[0].Balance.Equal(money("100.00")))
	assert.True(t, balances[1].Balance.Equal(money("115.00")))
	assert.True(t, balances[2].Balance.Equal(money("115.00")))
}

func TestTransaction_SignedDelta(t *testing.T) {
	cases := []struct {
		typ  accrual.TransactionType
		want string
	}{
		{accrual.TxPurchase, "50.00"},
		{accrual.TxFee, "50.00"},
		{accrual.TxInterest, "50.00"},
		{accrual.TxCashAdvance, "50.00"},
		{accrual.TxBalanceTransfer, "50.00"},
		{accrual.TransactionType("SOMETHING_NEW"), "50.00"},
		{accrual.TxPayment, "-50.00"},
		{accrual.TxRefund, "-50.00"},
		{accrual.TxCredit, "-50.00"},
	}

	for _, tc := range cases {
		tx := accrual.Transaction{Type: tc.typ, Amount: money("50.00")}
		assert.True(t, tx.SignedDelta().Equal(money(tc.want)), "type %s", tc.typ)
	}
}
