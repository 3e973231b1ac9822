/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Accounts, agreements, ledgers, payments, and statements exist
	- Current balance and posted-interest totals match the seeded data
	- Reset clears everything

These tests ensure scenarios work correctly and can be used as integration tests.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/account/store"
)

func setupScenarioHandler(t *testing.T) (*Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(mem, account.FixedClock(testNow), func() error {
		mem.Reset()
		return nil
	})
	return h, mem
}

func TestScenario_NewCardholder(t *testing.T) {
	// GIVEN: New cardholder scenario
	// WHEN: Loading the scenario
	// THEN: One account with a purchase-only ledger and no posted interest

	h, mem := setupScenarioHandler(t)
	ctx := context.Background()

	if err := h.loadNewCardholderScenario(ctx); err != nil {
		t.Fatalf("Failed to load new-cardholder scenario: %v", err)
	}

	accounts, err := mem.Accounts(ctx)
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("Expected 1 account, got %d", len(accounts))
	}
	if accounts[0].AccountID != "acct-new-001" {
		t.Errorf("Expected account 'acct-new-001', got '%s'", accounts[0].AccountID)
	}

	balance, err := h.Service.CurrentBalance(ctx, "acct-new-001")
	if err != nil {
		t.Fatalf("Failed to get current balance: %v", err)
	}
	if balance.Balance.String() != "259.40" {
		t.Errorf("Expected balance '259.40', got '%s'", balance.Balance.String())
	}
	if balance.Source != account.SourceLedger {
		t.Errorf("Expected ledger-sourced balance, got '%s'", balance.Source)
	}

	interest, err := h.Service.PostedInterest(ctx, "acct-new-001", account.WindowAll)
	if err != nil {
		t.Fatalf("Failed to get posted interest: %v", err)
	}
	if !interest.Total.IsZero() {
		t.Errorf("Expected zero posted interest, got '%s'", interest.Total.String())
	}
	if len(interest.Lines) != 0 {
		t.Errorf("Expected no interest lines, got %d", len(interest.Lines))
	}
}

func TestScenario_CarriedBalance(t *testing.T) {
	// GIVEN: Carried balance scenario
	// WHEN: Loading the scenario
	// THEN: Revolving account with posted interest, statements, and an
	//       upcoming scheduled payment

	h, mem := setupScenarioHandler(t)
	ctx := context.Background()

	if err := h.loadCarriedBalanceScenario(ctx); err != nil {
		t.Fatalf("Failed to load carried-balance scenario: %v", err)
	}

	balance, err := h.Service.CurrentBalance(ctx, "acct-rev-001")
	if err != nil {
		t.Fatalf("Failed to get current balance: %v", err)
	}
	if balance.Balance.String() != "1258.13" {
		t.Errorf("Expected balance '1258.13', got '%s'", balance.Balance.String())
	}

	// Two cycles of posted interest: 31.40 + 29.85
	interest, err := h.Service.PostedInterest(ctx, "acct-rev-001", account.WindowAll)
	if err != nil {
		t.Fatalf("Failed to get posted interest: %v", err)
	}
	if interest.Total.String() != "61.25" {
		t.Errorf("Expected posted interest '61.25', got '%s'", interest.Total.String())
	}
	if len(interest.Lines) != 2 {
		t.Errorf("Expected 2 interest lines, got %d", len(interest.Lines))
	}

	upcoming, err := h.Service.UpcomingPayment(ctx, "acct-rev-001")
	if err != nil {
		t.Fatalf("Failed to get upcoming payment: %v", err)
	}
	if upcoming == nil {
		t.Fatal("Expected an upcoming scheduled payment")
	}
	if upcoming.ID != "pay-rev-3" || upcoming.Amount.String() != "150.00" {
		t.Errorf("Unexpected upcoming payment: %+v", upcoming)
	}

	statements, err := mem.Statements(ctx, "acct-rev-001")
	if err != nil {
		t.Fatalf("Failed to list statements: %v", err)
	}
	if len(statements) != 2 {
		t.Errorf("Expected 2 statements, got %d", len(statements))
	}
}

func TestScenario_PromoPayoff(t *testing.T) {
	// GIVEN: Promo payoff scenario
	// WHEN: Loading the scenario
	// THEN: Balance transfer account with three posted payments

	h, mem := setupScenarioHandler(t)
	ctx := context.Background()

	if err := h.loadPromoPayoffScenario(ctx); err != nil {
		t.Fatalf("Failed to load promo-payoff scenario: %v", err)
	}

	balance, err := h.Service.CurrentBalance(ctx, "acct-bt-001")
	if err != nil {
		t.Fatalf("Failed to get current balance: %v", err)
	}
	if balance.Balance.String() != "1720.00" {
		t.Errorf("Expected balance '1720.00', got '%s'", balance.Balance.String())
	}

	payments, err := mem.Payments(ctx, "acct-bt-001")
	if err != nil {
		t.Fatalf("Failed to list payments: %v", err)
	}
	if len(payments) != 3 {
		t.Errorf("Expected 3 payments, got %d", len(payments))
	}

	agreement, err := mem.Agreement(ctx, "acct-bt-001")
	if err != nil {
		t.Fatalf("Failed to get agreement: %v", err)
	}
	if agreement.BalanceTransferAPR == nil || !agreement.BalanceTransferAPR.IsZero() {
		t.Error("Expected promotional zero balance-transfer rate")
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	h, _ := setupScenarioHandler(t)
	router := NewRouter(h)

	rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "does-not-exist"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown scenario, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoadScenario_ThenReset(t *testing.T) {
	// GIVEN: A loaded scenario
	// WHEN: Resetting over the API
	// THEN: The store is empty and no scenario is current

	h, mem := setupScenarioHandler(t)
	router := NewRouter(h)

	rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "carried-balance"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if h.currentScenario != "carried-balance" {
		t.Errorf("Expected current scenario 'carried-balance', got '%s'", h.currentScenario)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if h.currentScenario != "" {
		t.Errorf("Expected no current scenario after reset, got '%s'", h.currentScenario)
	}

	accounts, err := mem.Accounts(context.Background())
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected empty store after reset, got %d accounts", len(accounts))
	}
}

func TestListScenarios(t *testing.T) {
	h, _ := setupScenarioHandler(t)
	router := NewRouter(h)

	rec := doRequest(t, router, http.MethodGet, "/api/scenarios", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	list := decodeBody[[]ScenarioDTO](t, rec)
	if len(list) != 3 {
		t.Errorf("Expected 3 scenarios, got %d", len(list))
	}
}
