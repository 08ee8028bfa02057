// Package financing prices a system under cash, loan, lease and PPA
// ownership structures.
//
// Every option carries its own payment schedule; the summary totals are
// derived from that schedule so the two can never disagree.
package financing

import (
	"fmt"

	"github.com/seenimoa/solarprop/pkg/models"
)

// Terms holds the financial assumptions shared by all ownership structures.
type Terms struct {
	TaxCreditFraction     float64 `json:"tax_credit_fraction"`
	DiscountRate          float64 `json:"discount_rate"`
	UtilityRateEscalation float64 `json:"utility_rate_escalation"`
	AnalysisYears         int     `json:"analysis_years"`
	// DiscountFirstYear discounts year-1 savings by one full period
	// (end-of-year convention). When false, year-1 savings are undiscounted.
	DiscountFirstYear bool `json:"discount_first_year"`

	LoanRate                float64 `json:"loan_rate"`
	LoanTermsYears          []int   `json:"loan_terms_years"`
	LoanDownPaymentFraction float64 `json:"loan_down_payment_fraction"`

	LeaseSavingsFraction float64 `json:"lease_savings_fraction"`
	LeaseEscalator       float64 `json:"lease_escalator"`
	LeaseTermYears       int     `json:"lease_term_years"`

	PPARateFraction float64 `json:"ppa_rate_fraction"`
	PPAEscalator    float64 `json:"ppa_escalator"`
	PPATermYears    int     `json:"ppa_term_years"`
}

// DefaultTerms returns the standard residential assumptions.
func DefaultTerms() Terms {
	return Terms{
		TaxCreditFraction:     0.30,
		DiscountRate:          0.06,
		UtilityRateEscalation: 0.03,
		AnalysisYears:         25,

		LoanRate:       0.0699,
		LoanTermsYears: []int{10, 15, 20},

		LeaseSavingsFraction: 0.80,
		LeaseEscalator:       0.029,
		LeaseTermYears:       20,

		PPARateFraction: 0.85,
		PPAEscalator:    0.029,
		PPATermYears:    25,
	}
}

// Validate rejects assumptions that would make the math meaningless.
func (t Terms) Validate() error {
	fractions := []struct {
		field string
		value float64
	}{
		{"tax_credit_fraction", t.TaxCreditFraction},
		{"loan_down_payment_fraction", t.LoanDownPaymentFraction},
		{"lease_savings_fraction", t.LeaseSavingsFraction},
		{"ppa_rate_fraction", t.PPARateFraction},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			return &models.InputError{Field: f.field, Detail: fmt.Sprintf("must be within [0, 1], got %g", f.value)}
		}
	}
	if t.AnalysisYears <= 0 {
		return &models.InputError{Field: "analysis_years", Detail: fmt.Sprintf("must be positive, got %d", t.AnalysisYears)}
	}
	if t.DiscountRate <= -1 {
		return &models.InputError{Field: "discount_rate", Detail: fmt.Sprintf("must be greater than -1, got %g", t.DiscountRate)}
	}
	if t.LoanRate < 0 {
		return &models.InputError{Field: "loan_rate", Detail: fmt.Sprintf("must not be negative, got %g", t.LoanRate)}
	}
	for _, y := range t.LoanTermsYears {
		if y <= 0 {
			return &models.InputError{Field: "loan_terms_years", Detail: fmt.Sprintf("terms must be positive, got %d", y)}
		}
	}
	if t.LeaseTermYears <= 0 {
		return &models.InputError{Field: "lease_term_years", Detail: fmt.Sprintf("must be positive, got %d", t.LeaseTermYears)}
	}
	if t.PPATermYears <= 0 {
		return &models.InputError{Field: "ppa_term_years", Detail: fmt.Sprintf("must be positive, got %d", t.PPATermYears)}
	}
	return nil
}

// Input is the system being financed.
type Input struct {
	SystemCostUsd       float64
	AnnualSavingsUsd    float64
	AnnualProductionKwh float64
	AverageRate         float64
	DegradationRate     float64
}

// Validate rejects negative costs and yields. Non-positive savings are a
// legitimate (if poor) outcome and are reported as issues instead.
func (in Input) Validate() error {
	if in.SystemCostUsd < 0 {
		return &models.InputError{Field: "system_cost_usd", Detail: fmt.Sprintf("must not be negative, got %g", in.SystemCostUsd)}
	}
	if in.AnnualProductionKwh < 0 {
		return &models.InputError{Field: "annual_production_kwh", Detail: fmt.Sprintf("must not be negative, got %g", in.AnnualProductionKwh)}
	}
	if in.AverageRate < 0 {
		return &models.InputError{Field: "average_rate", Detail: fmt.Sprintf("must not be negative, got %g", in.AverageRate)}
	}
	if in.DegradationRate < 0 || in.DegradationRate >= 1 {
		return &models.InputError{Field: "degradation_rate", Detail: fmt.Sprintf("must be within [0, 1), got %g", in.DegradationRate)}
	}
	return nil
}
