/*
handlers.go - HTTP API handlers for the interest-accrual engine

PURPOSE:
  Exposes the accrual engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the account service and the pure
  engine. The engine returns structured results; this layer is the
  orchestrator that turns them into wire responses, verbatim.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                      List accounts
    GET    /api/accounts/{id}                 Account summary
    GET    /api/accounts/{id}/balance         Current balance (+provenance)
    GET    /api/accounts/{id}/minimum-due     Minimum payment on balance

  Ledger:
    GET    /api/accounts/{id}/transactions    Full ledger
    POST   /api/accounts/{id}/transactions    Ingest feed records
    GET    /api/accounts/{id}/balances/daily  Daily balance reconstruction

  Interest:
    POST   /api/accounts/{id}/interest        ADB interest for a period
    GET    /api/accounts/{id}/interest/posted Posted-interest totals

  Payments / statements:
    GET    /api/accounts/{id}/payments
    GET    /api/accounts/{id}/payments/upcoming
    GET    /api/accounts/{id}/statements
    GET    /api/accounts/{id}/statements/{stmtID}/interest

  Agreement:
    GET    /api/accounts/{id}/agreement
    PUT    /api/accounts/{id}/agreement

  Scenarios:
    GET    /api/scenarios
    GET    /api/scenarios/current
    POST   /api/scenarios/load
    POST   /api/reset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad dates, bad basis, malformed JSON)
  - 404: Unknown account/statement
  - 409: Duplicate ledger record
  - 422: Insufficient data (empty ledger, no anchor, empty series)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/accrual"
	"github.com/warp/accrual-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   account.Store
	Service *account.Service

	// reset drops all store data; nil disables /api/reset.
	reset func() error

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler over the given store. resetFn may be nil
// when the deployment should not expose destructive reset.
func NewHandler(store account.Store, clock account.Clock, resetFn func() error) *Handler {
	return &Handler{
		Store:   store,
		Service: account.NewService(store, clock),
		reset:   resetFn,
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Store.Accounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]AccountDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toAccountDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Store.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(summary))
}

func (h *Handler) GetCurrentBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.CurrentBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	dto := CurrentBalanceDTO{Balance: result.Balance.String(), Source: string(result.Source)}
	if result.AsOf != nil {
		v := result.AsOf.UTC().Format(time.RFC3339)
		dto.AsOf = &v
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetMinimumDue(w http.ResponseWriter, r *http.Request) {
	due, err := h.Service.MinimumDue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"minimum_due": due.String()})
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Store.Transactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) IngestTransactions(w http.ResponseWriter, r *http.Request) {
	var req IngestTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if len(req.Transactions) == 0 {
		writeBadRequest(w, "no transactions provided")
		return
	}

	txs := make([]accrual.Transaction, 0, len(req.Transactions))
	for _, dto := range req.Transactions {
		tx, err := parseTransactionDTO(dto)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		txs = append(txs, tx)
	}

	if err := h.Store.AppendTransactions(r.Context(), chi.URLParam(r, "id"), txs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"ingested": len(txs)})
}

func parseTransactionDTO(dto TransactionDTO) (accrual.Transaction, error) {
	tx := accrual.Transaction{
		ID:     dto.ID,
		Type:   accrual.TransactionType(dto.Type),
		Status: accrual.TransactionStatus(dto.Status),
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = accrual.StatusPosted
	}

	at, err := time.Parse(time.RFC3339, dto.Timestamp)
	if err != nil {
		return accrual.Transaction{}, errors.New("invalid timestamp: " + dto.Timestamp)
	}
	tx.Timestamp = at

	if tx.Amount, err = accrual.ParseMoney(dto.Amount); err != nil {
		return accrual.Transaction{}, errors.New("invalid amount: " + dto.Amount)
	}
	if tx.Amount.IsNegative() {
		return accrual.Transaction{}, errors.New("amount must be non-negative; the type determines the sign")
	}
	if dto.EndingBalance != nil {
		eb, err := accrual.ParseMoney(*dto.EndingBalance)
		if err != nil {
			return accrual.Transaction{}, errors.New("invalid ending_balance: " + *dto.EndingBalance)
		}
		tx.EndingBalance = &eb
	}
	return tx, nil
}

func (h *Handler) GetDailyBalances(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriodQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	balances, err := h.Service.DailyBalances(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]DailyBalanceDTO, 0, len(balances))
	for _, db := range balances {
		out = append(out, DailyBalanceDTO{Date: db.Date.String(), Balance: db.Balance.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func parsePeriodQuery(r *http.Request) (accrual.Period, error) {
	start, err := accrual.ParseLocalDate(r.URL.Query().Get("start"))
	if err != nil {
		return accrual.Period{}, errors.New("invalid start date")
	}
	end, err := accrual.ParseLocalDate(r.URL.Query().Get("end"))
	if err != nil {
		return accrual.Period{}, errors.New("invalid end date")
	}
	return accrual.Period{Start: start, End: end}, nil
}

// =============================================================================
// INTEREST HANDLERS
// =============================================================================

func (h *Handler) ComputeInterest(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req InterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	start, err := accrual.ParseLocalDate(req.Start)
	if err != nil {
		writeBadRequest(w, "invalid start date")
		return
	}
	end, err := accrual.ParseLocalDate(req.End)
	if err != nil {
		writeBadRequest(w, "invalid end date")
		return
	}
	period := accrual.Period{Start: start, End: end}

	var result accrual.AccrualResult
	if req.APR == nil && req.Basis == nil && req.Rounding == nil {
		result, err = h.Service.PeriodInterest(r.Context(), accountID, period)
	} else {
		result, err = h.computeWithOverrides(r, accountID, period, req)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccrualResultDTO(result))
}

// computeWithOverrides applies per-request agreement overrides on top of
// the stored agreement, for what-if questions ("at 19.99% instead?").
func (h *Handler) computeWithOverrides(r *http.Request, accountID string, period accrual.Period, req InterestRequest) (accrual.AccrualResult, error) {
	agreement, err := h.Store.Agreement(r.Context(), accountID)
	if err != nil {
		return accrual.AccrualResult{}, err
	}
	if req.APR != nil {
		agreement.PurchaseAPR = decimal.NewFromFloat(*req.APR)
	}
	if req.Basis != nil {
		// Normalize would quietly turn a zero basis into the default;
		// an explicit override must fail instead.
		if *req.Basis <= 0 {
			return accrual.AccrualResult{}, fmt.Errorf("basis %d: %w", *req.Basis, accrual.ErrInvalidBasis)
		}
		agreement.BasisDays = *req.Basis
	}
	if req.Rounding != nil {
		policy := accrual.RoundingPolicy(*req.Rounding)
		switch policy {
		case accrual.RoundSumThenRound, accrual.RoundDailyThenSum:
			agreement.Rounding = policy
		default:
			return accrual.AccrualResult{}, errors.New("unknown rounding policy: " + *req.Rounding)
		}
	}
	txs, err := h.Store.Transactions(r.Context(), accountID)
	if err != nil {
		return accrual.AccrualResult{}, err
	}
	return accrual.AccrueForPeriod(txs, agreement, period)
}

func (h *Handler) GetPostedInterest(w http.ResponseWriter, r *http.Request) {
	window := account.InterestWindow(r.URL.Query().Get("window"))

	result, err := h.Service.PostedInterest(r.Context(), chi.URLParam(r, "id"), window)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			writeError(w, err)
		} else {
			writeBadRequest(w, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, toPostedInterestDTO(result))
}

// =============================================================================
// PAYMENT AND STATEMENT HANDLERS
// =============================================================================

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.Payments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetUpcomingPayment(w http.ResponseWriter, r *http.Request) {
	next, err := h.Service.UpcomingPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if next == nil {
		writeJSON(w, http.StatusOK, map[string]any{"upcoming": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"upcoming": toPaymentDTO(*next)})
}

func (h *Handler) ListStatements(w http.ResponseWriter, r *http.Request) {
	statements, err := h.Store.Statements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]StatementDTO, 0, len(statements))
	for _, st := range statements {
		out = append(out, toStatementDTO(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetStatementInterest(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.StatementInterest(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "stmtID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccrualResultDTO(result))
}

// =============================================================================
// AGREEMENT HANDLERS
// =============================================================================

func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	agreement, err := h.Store.Agreement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgreementJSON(agreement))
}

func (h *Handler) PutAgreement(w http.ResponseWriter, r *http.Request) {
	var doc factory.AgreementJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	agreement, err := factory.Build(doc)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.Store.PutAgreement(r.Context(), chi.URLParam(r, "id"), agreement); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgreementJSON(agreement))
}

func toAgreementJSON(a accrual.Agreement) factory.AgreementJSON {
	doc := factory.AgreementJSON{
		APRBasis: a.BasisDays,
		Rounding: string(a.Rounding),
		TimeZone: a.TimeZone,
	}
	purchase, _ := a.PurchaseAPR.Float64()
	doc.PurchaseAPR = &purchase
	doc.CashAdvanceAPR = optionalFloat(a.CashAdvanceAPR)
	doc.BalanceTransferAPR = optionalFloat(a.BalanceTransferAPR)
	doc.PenaltyAPR = optionalFloat(a.PenaltyAPR)
	grace := a.HasGracePeriod
	doc.HasGracePeriod = &grace
	doc.GraceCondition = a.GraceCondition
	trailing := a.TrailingInterest
	doc.TrailingInterest = &trailing
	floor, _ := a.MinFixedFloor.Value.Float64()
	doc.MinFixedFloor = &floor
	pct, _ := a.MinPercentOfBalance.Float64()
	doc.MinPercentOfBalance = &pct
	return doc
}

func optionalFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v, _ := d.Float64()
	return &v
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: msg, Code: "bad_request"})
}

// writeError maps domain errors onto HTTP statuses. Insufficient-data
// failures are 422: the request was well-formed, the ledger just cannot
// answer it, and the client should say so rather than show a number.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, ErrorDTO{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, account.ErrDuplicateRecord):
		writeJSON(w, http.StatusConflict, ErrorDTO{Error: err.Error(), Code: "duplicate"})
	case accrual.IsInsufficientData(err):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorDTO{Error: err.Error(), Code: "insufficient_data"})
	case accrual.IsBadRequest(err):
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error(), Code: "bad_request"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: err.Error(), Code: "internal"})
	}
}
