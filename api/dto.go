/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND DATES:
  Monetary fields are JSON strings with two decimals ("10.19"); dates are
  "2006-01-02". Clients never see binary-float artifacts.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/agreement.go: AgreementJSON, reused as the agreement wire shape
*/
package api

import (
	"time"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountDTO represents an account summary in API responses.
type AccountDTO struct {
	ID              string  `json:"id"`
	Last4           string  `json:"last4,omitempty"`
	Status          string  `json:"status,omitempty"`
	CreditLimit     string  `json:"credit_limit"`
	AvailableCredit string  `json:"available_credit"`
	CurrentBalance  *string `json:"current_balance,omitempty"`
	MinimumDue      *string `json:"minimum_due,omitempty"`
	PaymentDueDate  *string `json:"payment_due_date,omitempty"`
}

func toAccountDTO(s account.Summary) AccountDTO {
	dto := AccountDTO{
		ID:              s.AccountID,
		Last4:           s.Last4,
		Status:          s.Status,
		CreditLimit:     s.CreditLimit.String(),
		AvailableCredit: s.AvailableCredit.String(),
	}
	if s.CurrentBalance != nil {
		v := s.CurrentBalance.String()
		dto.CurrentBalance = &v
	}
	if s.MinimumDue != nil {
		v := s.MinimumDue.String()
		dto.MinimumDue = &v
	}
	if s.PaymentDueDate != nil {
		v := s.PaymentDueDate.UTC().Format(time.RFC3339)
		dto.PaymentDueDate = &v
	}
	return dto
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO represents a ledger record on the wire.
type TransactionDTO struct {
	ID            string  `json:"id,omitempty"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"` // RFC 3339
	Amount        string  `json:"amount"`
	EndingBalance *string `json:"ending_balance,omitempty"`
}

// IngestTransactionsRequest appends feed records to an account's ledger.
type IngestTransactionsRequest struct {
	Transactions []TransactionDTO `json:"transactions"`
}

func toTransactionDTO(tx accrual.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:        tx.ID,
		Type:      string(tx.Type),
		Status:    string(tx.Status),
		Timestamp: tx.Timestamp.UTC().Format(time.RFC3339),
		Amount:    tx.Amount.String(),
	}
	if tx.EndingBalance != nil {
		v := tx.EndingBalance.String()
		dto.EndingBalance = &v
	}
	return dto
}

// =============================================================================
// BALANCES AND INTEREST
// =============================================================================

// CurrentBalanceDTO is the current balance with its provenance.
type CurrentBalanceDTO struct {
	Balance string  `json:"balance"`
	Source  string  `json:"source"`
	AsOf    *string `json:"as_of,omitempty"`
}

// DailyBalanceDTO is one end-of-day balance.
type DailyBalanceDTO struct {
	Date    string `json:"date"`
	Balance string `json:"balance"`
}

// InterestRequest asks for ADB interest over a period. Agreement overrides
// are optional; absent fields use the account's stored agreement.
type InterestRequest struct {
	Start string `json:"start"` // "2006-01-02"
	End   string `json:"end"`

	APR      *float64 `json:"apr,omitempty"`
	Basis    *int     `json:"basis,omitempty"`
	Rounding *string  `json:"rounding,omitempty"`
}

// EvidenceLineDTO is one entry of the accrual evidence trail.
type EvidenceLineDTO struct {
	Date     string  `json:"date"`
	Balance  *string `json:"balance,omitempty"`
	Interest *string `json:"interest,omitempty"`
}

// AccrualResultDTO is the engine's structured result on the wire.
type AccrualResultDTO struct {
	Interest            string            `json:"interest"`
	Rounding            string            `json:"rounding"`
	AverageDailyBalance string            `json:"average_daily_balance"`
	Days                int               `json:"days"`
	DailyRate           string            `json:"daily_rate"`
	Evidence            []EvidenceLineDTO `json:"evidence"`
}

func toAccrualResultDTO(r accrual.AccrualResult) AccrualResultDTO {
	dto := AccrualResultDTO{
		Interest:            r.Interest.String(),
		Rounding:            string(r.Rounding),
		AverageDailyBalance: r.AverageDailyBalance.String(),
		Days:                r.Days,
		DailyRate:           r.DailyRate.String(),
		Evidence:            make([]EvidenceLineDTO, 0, len(r.Evidence)),
	}
	for _, line := range r.Evidence {
		e := EvidenceLineDTO{Date: line.Date.String()}
		if line.Balance != nil {
			v := line.Balance.String()
			e.Balance = &v
		}
		if line.Interest != nil {
			v := line.Interest.String()
			e.Interest = &v
		}
		dto.Evidence = append(dto.Evidence, e)
	}
	return dto
}

// PostedInterestDTO is a posted-interest window total with evidence.
type PostedInterestDTO struct {
	Window string            `json:"window"`
	Total  string            `json:"total"`
	Lines  []InterestLineDTO `json:"lines"`
}

// InterestLineDTO is one POSTED INTEREST transaction in the evidence.
type InterestLineDTO struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	PostedAt      string `json:"posted_at"`
}

func toPostedInterestDTO(r account.PostedInterestResult) PostedInterestDTO {
	dto := PostedInterestDTO{
		Window: string(r.Window),
		Total:  r.Total.String(),
		Lines:  make([]InterestLineDTO, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		dto.Lines = append(dto.Lines, InterestLineDTO{
			TransactionID: line.TransactionID,
			Amount:        line.Amount.String(),
			PostedAt:      line.PostedAt.UTC().Format(time.RFC3339),
		})
	}
	return dto
}

// =============================================================================
// PAYMENTS AND STATEMENTS
// =============================================================================

// PaymentDTO represents a payment on the wire.
type PaymentDTO struct {
	ID          string  `json:"id"`
	State       string  `json:"state"`
	Amount      string  `json:"amount"`
	EffectiveAt *string `json:"effective_at,omitempty"`
	InitiatedAt *string `json:"initiated_at,omitempty"`
}

func toPaymentDTO(p account.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:     p.ID,
		State:  string(p.State),
		Amount: p.Amount.String(),
	}
	if p.EffectiveAt != nil {
		v := p.EffectiveAt.UTC().Format(time.RFC3339)
		dto.EffectiveAt = &v
	}
	if p.InitiatedAt != nil {
		v := p.InitiatedAt.UTC().Format(time.RFC3339)
		dto.InitiatedAt = &v
	}
	return dto
}

// StatementDTO represents a billing-cycle statement.
type StatementDTO struct {
	ID                 string  `json:"id"`
	OpeningAt          string  `json:"opening_at"`
	ClosingAt          string  `json:"closing_at"`
	DueDate            *string `json:"due_date,omitempty"`
	Purchases          string  `json:"purchases"`
	PaymentsAndCredits string  `json:"payments_and_credits"`
	InterestCharged    string  `json:"interest_charged"`
	FeesCharged        string  `json:"fees_charged"`
	MinimumPaymentDue  string  `json:"minimum_payment_due"`
	UnpaidBalance      string  `json:"unpaid_balance"`
}

func toStatementDTO(st account.Statement) StatementDTO {
	dto := StatementDTO{
		ID:                 st.ID,
		OpeningAt:          st.OpeningAt.UTC().Format(time.RFC3339),
		ClosingAt:          st.ClosingAt.UTC().Format(time.RFC3339),
		Purchases:          st.Purchases.String(),
		PaymentsAndCredits: st.PaymentsAndCredits.String(),
		InterestCharged:    st.InterestCharged.String(),
		FeesCharged:        st.FeesCharged.String(),
		MinimumPaymentDue:  st.MinimumPaymentDue.String(),
		UnpaidBalance:      st.UnpaidBalance.String(),
	}
	if st.DueDate != nil {
		v := st.DueDate.UTC().Format(time.RFC3339)
		dto.DueDate = &v
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorDTO is the uniform error envelope.
type ErrorDTO struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
