package financing

import (
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/solarprop/pkg/models"
)

// Options prices every structure in enumeration order:
// cash, each loan term (ascending as configured), lease, PPA.
func Options(in Input, t Terms) []models.FinancingOption {
	options := make([]models.FinancingOption, 0, len(t.LoanTermsYears)+3)
	options = append(options, Cash(in, t))
	for _, years := range t.LoanTermsYears {
		options = append(options, Loan(in, t, years))
	}
	options = append(options, Lease(in, t), PPA(in, t))
	return options
}

// Compare validates the inputs and prices all options. The recommendation is
// left to the caller.
func Compare(in Input, t Terms) (*models.FinancingComparison, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	options := Options(in, t)
	lifetime := Project(0, in.AnnualSavingsUsd, CashFlowFor(t)).TotalSavings

	var issues []models.Issue
	for _, o := range options {
		issues = append(issues, o.Issues...)
	}

	return &models.FinancingComparison{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Inputs: models.FinancingInputs{
			SystemCostUsd:       in.SystemCostUsd,
			AnnualSavingsUsd:    in.AnnualSavingsUsd,
			AnnualProductionKwh: in.AnnualProductionKwh,
			AverageRate:         in.AverageRate,
			DegradationRate:     in.DegradationRate,
		},
		Options:            options,
		LifetimeSavingsUsd: lifetime,
		Issues:             issues,
	}, nil
}
