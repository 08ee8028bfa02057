package financing

import (
	"github.com/shopspring/decimal"

	"github.com/seenimoa/solarprop/pkg/models"
)

// cents rounds a dollar amount to the nearest cent.
func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// sumPayments adds the schedule in exact decimal arithmetic.
func sumPayments(payments []models.ScheduledPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(decimal.NewFromFloat(p.AmountUsd))
	}
	return total
}

// firstYearPayments adds everything due at signing and in months 1..12.
func firstYearPayments(payments []models.ScheduledPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Month <= models.MonthsPerYear {
			total = total.Add(decimal.NewFromFloat(p.AmountUsd))
		}
	}
	return total
}

// summarize derives the common projection from the option's own schedule.
func summarize(payments []models.ScheduledPayment, firstYearSavings float64, analysisYears int) models.FinancingSummary {
	total := sumPayments(payments)
	firstYear := firstYearPayments(payments).Sub(cents(firstYearSavings))
	years := analysisYears
	if years <= 0 {
		years = 1
	}
	return models.FinancingSummary{
		FirstYearNetCostUsd:    firstYear.InexactFloat64(),
		TotalCostOverLifeUsd:   total.InexactFloat64(),
		EffectiveAnnualCostUsd: total.Div(decimal.NewFromInt(int64(years))).Round(2).InexactFloat64(),
	}
}

// escalatingMonthly schedules a monthly payment that steps up once a year.
func escalatingMonthly(firstMonthly, escalator float64, termYears int) []models.ScheduledPayment {
	payments := make([]models.ScheduledPayment, 0, termYears*models.MonthsPerYear)
	growth := decimal.NewFromFloat(1 + escalator)
	monthly := decimal.NewFromFloat(firstMonthly)
	for y := 1; y <= termYears; y++ {
		amount := monthly.Round(2)
		for m := 1; m <= models.MonthsPerYear; m++ {
			payments = append(payments, models.ScheduledPayment{
				Month:     (y-1)*models.MonthsPerYear + m,
				AmountUsd: amount.InexactFloat64(),
			})
		}
		monthly = monthly.Mul(growth)
	}
	return payments
}

// ScheduleTotal recomputes an option's lifetime cost from its payments.
func ScheduleTotal(o models.FinancingOption) float64 {
	return sumPayments(o.Payments).InexactFloat64()
}
