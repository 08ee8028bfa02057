package financing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/solarprop/pkg/models"
)

// MonthlyPayment returns the fixed-rate amortizing payment
//
//	P × r × (1+r)^n / ((1+r)^n − 1)
//
// with r the monthly rate and n the number of months. A zero rate
// degenerates to straight-line repayment.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal / float64(months)
	}
	f := math.Pow(1+r, float64(months))
	return principal * r * f / (f - 1)
}

// Amortize builds the month-by-month schedule. The payment is rounded to
// cents and the final payment absorbs the residual so the balance lands on
// exactly zero.
func Amortize(principal, annualRate float64, months int) []models.ScheduledPayment {
	if months <= 0 || principal <= 0 {
		return nil
	}
	payment := cents(MonthlyPayment(principal, annualRate, months))
	balance := cents(principal)
	rate := decimal.NewFromFloat(annualRate).Div(decimal.NewFromInt(12))

	schedule := make([]models.ScheduledPayment, 0, months)
	for m := 1; m <= months; m++ {
		interest := balance.Mul(rate).Round(2)
		toPrincipal := payment.Sub(interest)
		if m == months || toPrincipal.GreaterThan(balance) {
			toPrincipal = balance
		}
		balance = balance.Sub(toPrincipal)
		schedule = append(schedule, models.ScheduledPayment{
			Month:     m,
			AmountUsd: toPrincipal.Add(interest).InexactFloat64(),
			Principal: toPrincipal.InexactFloat64(),
			Interest:  interest.InexactFloat64(),
			Balance:   balance.InexactFloat64(),
		})
		if balance.IsZero() {
			break
		}
	}
	return schedule
}

// BreakEvenMonth returns the first month in which cumulative escalated
// savings reach cumulative payments (including anything paid at signing).
// When that never happens within the schedule it returns the term length
// and false.
func BreakEvenMonth(payments []models.ScheduledPayment, annualSavings, escalation float64, termMonths int) (int, bool) {
	due := make([]float64, termMonths+1)
	for _, p := range payments {
		if p.Month >= 0 && p.Month <= termMonths {
			due[p.Month] += p.AmountUsd
		}
	}

	cumPaid := due[0]
	var cumSaved float64
	for m := 1; m <= termMonths; m++ {
		year := (m-1)/models.MonthsPerYear + 1
		cumSaved += annualSavings * math.Pow(1+escalation, float64(year-1)) / models.MonthsPerYear
		cumPaid += due[m]
		if cumSaved >= cumPaid {
			return m, true
		}
	}
	return termMonths, false
}

// Loan prices a fixed-rate loan over termYears.
func Loan(in Input, t Terms, termYears int) models.FinancingOption {
	id := fmt.Sprintf("loan_%dyr", termYears)
	months := termYears * models.MonthsPerYear
	down := cents(in.SystemCostUsd * t.LoanDownPaymentFraction)
	principal := cents(in.SystemCostUsd).Sub(down)

	var payments []models.ScheduledPayment
	if down.IsPositive() {
		payments = append(payments, models.ScheduledPayment{Month: 0, AmountUsd: down.InexactFloat64()})
	}
	amortized := Amortize(principal.InexactFloat64(), t.LoanRate, months)
	payments = append(payments, amortized...)

	interest := decimal.Zero
	for _, p := range amortized {
		interest = interest.Add(decimal.NewFromFloat(p.Interest))
	}

	breakEven, ok := BreakEvenMonth(payments, in.AnnualSavingsUsd, t.UtilityRateEscalation, months)

	var issues []models.Issue
	if in.AnnualSavingsUsd <= 0 {
		issues = append(issues, models.Warning(models.IssueNonPositiveSavings, id,
			"annual savings of $%.2f never offset loan payments", in.AnnualSavingsUsd))
	}

	return models.FinancingOption{
		ID:      id,
		Kind:    models.KindLoan,
		Name:    fmt.Sprintf("%d-Year Loan", termYears),
		Summary: summarize(payments, in.AnnualSavingsUsd, t.AnalysisYears),
		Loan: &models.LoanTerms{
			PrincipalUsd:      principal.InexactFloat64(),
			DownPaymentUsd:    down.InexactFloat64(),
			AnnualRate:        t.LoanRate,
			TermYears:         termYears,
			MonthlyPaymentUsd: cents(MonthlyPayment(principal.InexactFloat64(), t.LoanRate, months)).InexactFloat64(),
			TotalInterestUsd:  interest.InexactFloat64(),
			BreakEvenMonth:    breakEven,
			BreaksEven:        ok,
		},
		Payments: payments,
		Issues:   issues,
	}
}
