package models

import "time"

// FinancingKind tags a FinancingOption variant.
type FinancingKind string

const (
	KindCash  FinancingKind = "cash"
	KindLoan  FinancingKind = "loan"
	KindLease FinancingKind = "lease"
	KindPPA   FinancingKind = "ppa"
)

// CashMetrics are the ownership economics of buying a system outright.
// They are shared by cash financing and by every SizingOption.
type CashMetrics struct {
	SystemCostUsd      float64 `json:"system_cost_usd"`
	TaxCreditUsd       float64 `json:"tax_credit_usd"`
	NetCostUsd         float64 `json:"net_cost_usd"`
	AnnualSavingsUsd   float64 `json:"annual_savings_usd"`
	PaybackYears       float64 `json:"payback_years"`
	PaysBack           bool    `json:"pays_back"`
	ROI25Year          float64 `json:"roi_25_year"`
	NetPresentValueUsd float64 `json:"net_present_value_usd"`
	LifetimeSavingsUsd float64 `json:"lifetime_savings_usd"`
}

// ScheduledPayment is one payment the customer owes. Month 0 is due at
// signing; month 1 is the end of the first billing month.
type ScheduledPayment struct {
	Month     int     `json:"month"`
	AmountUsd float64 `json:"amount_usd"`
	Principal float64 `json:"principal,omitempty"`
	Interest  float64 `json:"interest,omitempty"`
	Balance   float64 `json:"balance,omitempty"`
}

// FinancingSummary is the projection every variant exposes.
type FinancingSummary struct {
	FirstYearNetCostUsd    float64 `json:"first_year_net_cost_usd"`
	TotalCostOverLifeUsd   float64 `json:"total_cost_over_life_usd"`
	EffectiveAnnualCostUsd float64 `json:"effective_annual_cost_usd"`
}

// CashTerms are the cash-only fields.
type CashTerms struct {
	UpfrontCostUsd float64 `json:"upfront_cost_usd"`
	CashMetrics
}

// LoanTerms are the loan-only fields.
type LoanTerms struct {
	PrincipalUsd      float64 `json:"principal_usd"`
	DownPaymentUsd    float64 `json:"down_payment_usd"`
	AnnualRate        float64 `json:"annual_rate"`
	TermYears         int     `json:"term_years"`
	MonthlyPaymentUsd float64 `json:"monthly_payment_usd"`
	TotalInterestUsd  float64 `json:"total_interest_usd"`
	BreakEvenMonth    int     `json:"break_even_month"`
	BreaksEven        bool    `json:"breaks_even"`
}

// LeaseTerms are the lease-only fields.
type LeaseTerms struct {
	MonthlyPaymentUsd float64 `json:"monthly_payment_usd"`
	Escalator         float64 `json:"escalator"`
	TermYears         int     `json:"term_years"`
}

// PPATerms are the power-purchase-agreement-only fields.
type PPATerms struct {
	RatePerKwh float64 `json:"rate_per_kwh"`
	Escalator  float64 `json:"escalator"`
	TermYears  int     `json:"term_years"`
}

// FinancingOption is a tagged union over the four ownership structures.
// Exactly one of Cash, Loan, Lease or PPA is set, matching Kind.
type FinancingOption struct {
	ID      string           `json:"id"`
	Kind    FinancingKind    `json:"kind"`
	Name    string           `json:"name"`
	Summary FinancingSummary `json:"summary"`

	Cash  *CashTerms  `json:"cash,omitempty"`
	Loan  *LoanTerms  `json:"loan,omitempty"`
	Lease *LeaseTerms `json:"lease,omitempty"`
	PPA   *PPATerms   `json:"ppa,omitempty"`

	Payments []ScheduledPayment `json:"payments,omitempty"`
	Issues   []Issue            `json:"issues,omitempty"`
}

// FinancingInputs echoes what a financing comparison was computed from.
type FinancingInputs struct {
	SystemCostUsd       float64 `json:"system_cost_usd"`
	AnnualSavingsUsd    float64 `json:"annual_savings_usd"`
	AnnualProductionKwh float64 `json:"annual_production_kwh"`
	AverageRate         float64 `json:"average_rate"`
	DegradationRate     float64 `json:"degradation_rate"`
}

// FinancingComparison is the full set of priced options for one system.
type FinancingComparison struct {
	ID                 string            `json:"id"`
	CreatedAt          time.Time         `json:"created_at"`
	Inputs             FinancingInputs   `json:"inputs"`
	Options            []FinancingOption `json:"options"`
	LifetimeSavingsUsd float64           `json:"lifetime_savings_usd"`
	RecommendedOption  string            `json:"recommended_option"`
	Selection          *Selection        `json:"selection,omitempty"`
	Issues             []Issue           `json:"issues,omitempty"`
}

// Option returns the option with the given ID.
func (c *FinancingComparison) Option(id string) (FinancingOption, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return FinancingOption{}, false
}
