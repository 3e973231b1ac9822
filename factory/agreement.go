/*
Package factory provides JSON/YAML to Go agreement conversion.

PURPOSE:
  Converts external agreement documents into accrual.Agreement values.
  Upstream extraction (out of scope here) turns the cardholder agreement
  PDF into structured JSON; this factory validates that JSON, applies the
  documented defaults for absent fields, and rejects configurations the
  engine cannot safely compute with.

JSON SCHEMA:
  {
    "purchaseApr": 24.00,
    "cashAdvanceApr": 29.99,
    "apr_basis": 365,
    "rounding": "sum_then_round",
    "timezone": "America/New_York",
    "hasGracePeriod": true,
    "graceCondition": "prior statement paid in full by due date",
    "trailingInterest": true,
    "minFixedFloor": 25.0,
    "minPercentOfBalance": 0.01
  }

DEFAULTS:
  apr_basis 365, rounding "sum_then_round", timezone "America/New_York".

VALIDATION:
  Rejected outright: apr_basis <= 0, unknown rounding policy, unresolvable
  IANA timezone, negative APR. These are configuration mistakes; failing
  at parse time beats failing mid-calculation.

USAGE:
  agreement, err := factory.ParseAgreement(jsonBytes)

SEE ALSO:
  - accrual/agreement.go: The Agreement type and its defaults
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/accrual-engine/accrual"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// AgreementJSON is the external representation of a cardholder agreement.
// Field names follow the issuer extraction format.
type AgreementJSON struct {
	PurchaseAPR        *float64 `json:"purchaseApr" yaml:"purchaseApr"`
	CashAdvanceAPR     *float64 `json:"cashAdvanceApr,omitempty" yaml:"cashAdvanceApr,omitempty"`
	BalanceTransferAPR *float64 `json:"balanceTransferApr,omitempty" yaml:"balanceTransferApr,omitempty"`
	PenaltyAPR         *float64 `json:"penaltyApr,omitempty" yaml:"penaltyApr,omitempty"`

	APRBasis int    `json:"apr_basis,omitempty" yaml:"apr_basis,omitempty"`
	Rounding string `json:"rounding,omitempty" yaml:"rounding,omitempty"`
	TimeZone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	HasGracePeriod   *bool  `json:"hasGracePeriod,omitempty" yaml:"hasGracePeriod,omitempty"`
	GraceCondition   string `json:"graceCondition,omitempty" yaml:"graceCondition,omitempty"`
	TrailingInterest *bool  `json:"trailingInterest,omitempty" yaml:"trailingInterest,omitempty"`

	MinFixedFloor       *float64 `json:"minFixedFloor,omitempty" yaml:"minFixedFloor,omitempty"`
	MinPercentOfBalance *float64 `json:"minPercentOfBalance,omitempty" yaml:"minPercentOfBalance,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseAgreement converts agreement JSON into a validated, normalized
// accrual.Agreement.
func ParseAgreement(data []byte) (accrual.Agreement, error) {
	var doc AgreementJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return accrual.Agreement{}, fmt.Errorf("parsing agreement json: %w", err)
	}
	return Build(doc)
}

// LoadAgreementYAML reads an agreement from a YAML config file.
func LoadAgreementYAML(path string) (accrual.Agreement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return accrual.Agreement{}, fmt.Errorf("reading agreement config: %w", err)
	}
	var doc AgreementJSON
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return accrual.Agreement{}, fmt.Errorf("parsing agreement config: %w", err)
	}
	return Build(doc)
}

// Build validates an AgreementJSON document and produces the normalized
// domain value.
func Build(doc AgreementJSON) (accrual.Agreement, error) {
	a := accrual.Agreement{
		BasisDays: doc.APRBasis,
		Rounding:  accrual.RoundingPolicy(doc.Rounding),
		TimeZone:  doc.TimeZone,
	}.Normalize()

	if a.BasisDays <= 0 {
		return accrual.Agreement{}, fmt.Errorf("apr_basis %d: %w", doc.APRBasis, accrual.ErrInvalidBasis)
	}
	switch a.Rounding {
	case accrual.RoundSumThenRound, accrual.RoundDailyThenSum:
	default:
		return accrual.Agreement{}, fmt.Errorf("unknown rounding policy %q", doc.Rounding)
	}
	if _, err := time.LoadLocation(a.TimeZone); err != nil {
		return accrual.Agreement{}, fmt.Errorf("timezone %q: %w", a.TimeZone, accrual.ErrInvalidTimeZone)
	}

	if doc.PurchaseAPR != nil {
		if *doc.PurchaseAPR < 0 {
			return accrual.Agreement{}, fmt.Errorf("purchaseApr %v must not be negative", *doc.PurchaseAPR)
		}
		a.PurchaseAPR = decimal.NewFromFloat(*doc.PurchaseAPR)
	}
	a.CashAdvanceAPR = optionalRate(doc.CashAdvanceAPR)
	a.BalanceTransferAPR = optionalRate(doc.BalanceTransferAPR)
	a.PenaltyAPR = optionalRate(doc.PenaltyAPR)

	// Grace and trailing interest default to the issuer's standard terms.
	a.HasGracePeriod = true
	if doc.HasGracePeriod != nil {
		a.HasGracePeriod = *doc.HasGracePeriod
	}
	a.GraceCondition = doc.GraceCondition
	if a.HasGracePeriod && a.GraceCondition == "" {
		a.GraceCondition = "prior statement paid in full by due date"
	}
	a.TrailingInterest = true
	if doc.TrailingInterest != nil {
		a.TrailingInterest = *doc.TrailingInterest
	}

	a.MinFixedFloor = accrual.NewMoney(25.0)
	if doc.MinFixedFloor != nil {
		a.MinFixedFloor = accrual.NewMoney(*doc.MinFixedFloor)
	}
	a.MinPercentOfBalance = decimal.NewFromFloat(0.01)
	if doc.MinPercentOfBalance != nil {
		a.MinPercentOfBalance = decimal.NewFromFloat(*doc.MinPercentOfBalance)
	}

	return a, nil
}

func optionalRate(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
