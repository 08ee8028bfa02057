package financing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/solarprop/pkg/models"
)

// Lease prices a third-party lease. The first-year monthly payment undercuts
// monthly savings by (1 − LeaseSavingsFraction) and steps up each year by
// LeaseEscalator.
func Lease(in Input, t Terms) models.FinancingOption {
	monthly := math.Max(0, in.AnnualSavingsUsd) / models.MonthsPerYear * t.LeaseSavingsFraction
	payments := escalatingMonthly(monthly, t.LeaseEscalator, t.LeaseTermYears)

	var issues []models.Issue
	if in.AnnualSavingsUsd <= 0 {
		issues = append(issues, models.Warning(models.IssueNonPositiveSavings, string(models.KindLease),
			"no savings to price a lease against"))
	}

	return models.FinancingOption{
		ID:      string(models.KindLease),
		Kind:    models.KindLease,
		Name:    "Lease",
		Summary: summarize(payments, in.AnnualSavingsUsd, t.AnalysisYears),
		Lease: &models.LeaseTerms{
			MonthlyPaymentUsd: cents(monthly).InexactFloat64(),
			Escalator:         t.LeaseEscalator,
			TermYears:         t.LeaseTermYears,
		},
		Payments: payments,
		Issues:   issues,
	}
}

// PPARate returns the first-year PPA price per kWh.
func PPARate(averageRate float64, t Terms) float64 {
	return averageRate * t.PPARateFraction
}

// PPA prices a power purchase agreement: the customer buys the array's
// (degrading) output at a discounted, escalating per-kWh rate, billed
// monthly.
func PPA(in Input, t Terms) models.FinancingOption {
	rate := PPARate(in.AverageRate, t)
	payments := make([]models.ScheduledPayment, 0, t.PPATermYears*models.MonthsPerYear)
	for y := 1; y <= t.PPATermYears; y++ {
		production := in.AnnualProductionKwh * math.Pow(1-in.DegradationRate, float64(y-1))
		yearRate := rate * math.Pow(1+t.PPAEscalator, float64(y-1))
		monthly := decimal.NewFromFloat(production * yearRate).
			Div(decimal.NewFromInt(models.MonthsPerYear)).
			Round(2)
		for m := 1; m <= models.MonthsPerYear; m++ {
			payments = append(payments, models.ScheduledPayment{
				Month:     (y-1)*models.MonthsPerYear + m,
				AmountUsd: monthly.InexactFloat64(),
			})
		}
	}

	return models.FinancingOption{
		ID:      string(models.KindPPA),
		Kind:    models.KindPPA,
		Name:    "Power Purchase Agreement",
		Summary: summarize(payments, in.AnnualSavingsUsd, t.AnalysisYears),
		PPA: &models.PPATerms{
			RatePerKwh: rate,
			Escalator:  t.PPAEscalator,
			TermYears:  t.PPATermYears,
		},
		Payments: payments,
	}
}
