/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	card-account data for testing and demos. Each scenario creates an
	account, an agreement, a ledger, and optionally payments and
	statements that demonstrate specific behaviors.

AVAILABLE SCENARIOS:

	new-cardholder:  Fresh account, a handful of purchases, no interest yet
	carried-balance: Revolving balance across three cycles with posted
	                 interest, statements, and an upcoming scheduled payment
	promo-payoff:    Balance transfer with fee being paid down monthly

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Store the account summary and statements
 3. Store the agreement
 4. Append ledger transactions and payments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "carried-balance"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ListScenarios, LoadScenario handlers
  - factory/agreement.go: Agreement JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "new-cardholder",
		Name:        "New Cardholder",
		Description: "Fresh account with a few purchases and no interest yet",
	},
	{
		ID:          "carried-balance",
		Name:        "Carried Balance",
		Description: "Revolving balance with posted interest, statements, and an upcoming payment",
	},
	{
		ID:          "promo-payoff",
		Name:        "Promo Payoff",
		Description: "Balance transfer with transfer fee being paid down monthly",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// ResetData clears all store data.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if h.reset == nil {
		writeBadRequest(w, "reset is not enabled on this deployment")
		return
	}
	if err := h.reset(); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Code: "internal"})
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	ctx := r.Context()

	// Reset first
	if h.reset != nil {
		if err := h.reset(); err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Code: "internal"})
			return
		}
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "new-cardholder":
		err = h.loadNewCardholderScenario(ctx)
	case "carried-balance":
		err = h.loadCarriedBalanceScenario(ctx)
	case "promo-payoff":
		err = h.loadPromoPayoffScenario(ctx)
	default:
		writeBadRequest(w, "unknown scenario")
		return
	}

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{
			Error: fmt.Sprintf("failed to load scenario: %v", err),
			Code:  "internal",
		})
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadNewCardholderScenario(ctx context.Context) error {
	const acct = "acct-new-001"
	now := h.Service.Now().UTC()

	balance := accrual.MustParseMoney("259.40")
	summary := account.Summary{
		AccountID:       acct,
		Last4:           "4821",
		Status:          "OPEN",
		CreditLimit:     accrual.MustParseMoney("3000.00"),
		AvailableCredit: accrual.MustParseMoney("2740.60"),
		CurrentBalance:  &balance,
	}
	if err := h.Store.PutAccount(ctx, summary, nil); err != nil {
		return err
	}

	agreement := accrual.Agreement{
		PurchaseAPR:   decimal.RequireFromString("24.99"),
		MinFixedFloor: accrual.MustParseMoney("25.00"),
	}.Normalize()
	if err := h.Store.PutAgreement(ctx, acct, agreement); err != nil {
		return err
	}

	txs := []accrual.Transaction{
		seedTx("tx-new-1", accrual.TxPurchase, now.AddDate(0, 0, -20), "120.00", "120.00"),
		seedTx("tx-new-2", accrual.TxPurchase, now.AddDate(0, 0, -14), "64.15", "184.15"),
		seedTx("tx-new-3", accrual.TxPurchase, now.AddDate(0, 0, -6), "75.25", "259.40"),
	}
	return h.Store.AppendTransactions(ctx, acct, txs)
}

func (h *Handler) loadCarriedBalanceScenario(ctx context.Context) error {
	const acct = "acct-rev-001"
	now := h.Service.Now().UTC()

	dueDate := now.AddDate(0, 0, 12)
	minDue := accrual.MustParseMoney("35.00")
	balance := accrual.MustParseMoney("1258.13")
	summary := account.Summary{
		AccountID:       acct,
		Last4:           "7710",
		Status:          "OPEN",
		CreditLimit:     accrual.MustParseMoney("5000.00"),
		AvailableCredit: accrual.MustParseMoney("3741.87"),
		CurrentBalance:  &balance,
		MinimumDue:      &minDue,
		PaymentDueDate:  &dueDate,
	}

	// Two closed cycles. Cycle bounds are chosen so the most recent close
	// sits a few days in the past.
	stmt1Open := now.AddDate(0, 0, -95)
	stmt1Close := now.AddDate(0, 0, -65)
	stmt2Open := now.AddDate(0, 0, -64)
	stmt2Close := now.AddDate(0, 0, -35)
	stmt2Due := stmt2Close.AddDate(0, 0, 21)
	statements := []account.Statement{
		{
			ID:                 "stmt-rev-1",
			OpeningAt:          stmt1Open,
			ClosingAt:          stmt1Close,
			Purchases:          accrual.MustParseMoney("410.85"),
			PaymentsAndCredits: accrual.MustParseMoney("200.00"),
			InterestCharged:    accrual.MustParseMoney("31.40"),
			MinimumPaymentDue:  accrual.MustParseMoney("35.00"),
			UnpaidBalance:      accrual.MustParseMoney("1312.25"),
		},
		{
			ID:                 "stmt-rev-2",
			OpeningAt:          stmt2Open,
			ClosingAt:          stmt2Close,
			DueDate:            &stmt2Due,
			Purchases:          accrual.MustParseMoney("175.73"),
			PaymentsAndCredits: accrual.MustParseMoney("260.00"),
			InterestCharged:    accrual.MustParseMoney("29.85"),
			MinimumPaymentDue:  accrual.MustParseMoney("35.00"),
			UnpaidBalance:      accrual.MustParseMoney("1258.13"),
		},
	}
	if err := h.Store.PutAccount(ctx, summary, statements); err != nil {
		return err
	}

	agreement := accrual.Agreement{
		PurchaseAPR:   decimal.RequireFromString("27.24"),
		MinFixedFloor: accrual.MustParseMoney("35.00"),
	}.Normalize()
	if err := h.Store.PutAgreement(ctx, acct, agreement); err != nil {
		return err
	}

	txs := []accrual.Transaction{
		seedTx("tx-rev-anchor", accrual.TxPurchase, now.AddDate(0, 0, -100), "1070.00", "1070.00"),
		seedTx("tx-rev-p1", accrual.TxPurchase, now.AddDate(0, 0, -88), "210.85", "1280.85"),
		seedTx("tx-rev-pay1", accrual.TxPayment, now.AddDate(0, 0, -80), "200.00", "1080.85"),
		seedTx("tx-rev-p2", accrual.TxPurchase, now.AddDate(0, 0, -71), "200.00", "1280.85"),
		seedTx("tx-rev-int1", accrual.TxInterest, stmt1Close, "31.40", "1312.25"),
		seedTx("tx-rev-p3", accrual.TxPurchase, now.AddDate(0, 0, -55), "175.73", "1487.98"),
		seedTx("tx-rev-pay2", accrual.TxPayment, now.AddDate(0, 0, -44), "260.00", "1227.98"),
		seedTx("tx-rev-int2", accrual.TxInterest, stmt2Close, "29.85", "1257.83"),
		seedTx("tx-rev-fee", accrual.TxFee, now.AddDate(0, 0, -10), "0.30", "1258.13"),
	}
	if err := h.Store.AppendTransactions(ctx, acct, txs); err != nil {
		return err
	}

	pay1At := now.AddDate(0, 0, -80)
	pay2At := now.AddDate(0, 0, -44)
	upcomingAt := now.AddDate(0, 0, 9)
	payments := []account.Payment{
		{ID: "pay-rev-1", State: account.PaymentPosted, Amount: accrual.MustParseMoney("200.00"), EffectiveAt: &pay1At},
		{ID: "pay-rev-2", State: account.PaymentPosted, Amount: accrual.MustParseMoney("260.00"), EffectiveAt: &pay2At},
		{ID: "pay-rev-3", State: account.PaymentScheduled, Amount: accrual.MustParseMoney("150.00"), EffectiveAt: &upcomingAt},
	}
	return h.Store.AppendPayments(ctx, acct, payments)
}

func (h *Handler) loadPromoPayoffScenario(ctx context.Context) error {
	const acct = "acct-bt-001"
	now := h.Service.Now().UTC()

	balance := accrual.MustParseMoney("1720.00")
	summary := account.Summary{
		AccountID:       acct,
		Last4:           "0294",
		Status:          "OPEN",
		CreditLimit:     accrual.MustParseMoney("4000.00"),
		AvailableCredit: accrual.MustParseMoney("2280.00"),
		CurrentBalance:  &balance,
	}
	if err := h.Store.PutAccount(ctx, summary, nil); err != nil {
		return err
	}

	// Promotional zero-rate balance transfers; purchases accrue normally.
	promoRate := decimal.Zero
	agreement := accrual.Agreement{
		PurchaseAPR:        decimal.RequireFromString("22.49"),
		BalanceTransferAPR: &promoRate,
		MinFixedFloor:      accrual.MustParseMoney("25.00"),
	}.Normalize()
	if err := h.Store.PutAgreement(ctx, acct, agreement); err != nil {
		return err
	}

	txs := []accrual.Transaction{
		seedTx("tx-bt-transfer", accrual.TxBalanceTransfer, now.AddDate(0, 0, -90), "2400.00", "2400.00"),
		seedTx("tx-bt-fee", accrual.TxFee, now.AddDate(0, 0, -90), "72.00", "2472.00"),
		seedTx("tx-bt-pay1", accrual.TxPayment, now.AddDate(0, 0, -62), "250.00", "2222.00"),
		seedTx("tx-bt-pay2", accrual.TxPayment, now.AddDate(0, 0, -31), "250.00", "1972.00"),
		seedTx("tx-bt-pay3", accrual.TxPayment, now.AddDate(0, 0, -2), "252.00", "1720.00"),
	}
	if err := h.Store.AppendTransactions(ctx, acct, txs); err != nil {
		return err
	}

	pay1At := now.AddDate(0, 0, -62)
	pay2At := now.AddDate(0, 0, -31)
	pay3At := now.AddDate(0, 0, -2)
	payments := []account.Payment{
		{ID: "pay-bt-1", State: account.PaymentPosted, Amount: accrual.MustParseMoney("250.00"), EffectiveAt: &pay1At},
		{ID: "pay-bt-2", State: account.PaymentPosted, Amount: accrual.MustParseMoney("250.00"), EffectiveAt: &pay2At},
		{ID: "pay-bt-3", State: account.PaymentPosted, Amount: accrual.MustParseMoney("252.00"), EffectiveAt: &pay3At},
	}
	return h.Store.AppendPayments(ctx, acct, payments)
}

// seedTx builds a posted ledger record with a recorded ending balance.
func seedTx(id string, typ accrual.TransactionType, at time.Time, amount, ending string) accrual.Transaction {
	end := accrual.MustParseMoney(ending)
	return accrual.Transaction{
		ID:            id,
		Type:          typ,
		Status:        accrual.StatusPosted,
		Timestamp:     at,
		Amount:        accrual.MustParseMoney(amount),
		EndingBalance: &end,
	}
}
