package financing

import "github.com/seenimoa/solarprop/pkg/models"

// CashFlowFor returns the cash-purchase cash flow implied by the terms. Cash
// metrics escalate savings with the utility rate only; degradation and O&M
// belong to scenario analysis.
func CashFlowFor(t Terms) CashFlow {
	return CashFlow{
		Escalation:        t.UtilityRateEscalation,
		DiscountRate:      t.DiscountRate,
		Years:             t.AnalysisYears,
		DiscountFirstYear: t.DiscountFirstYear,
	}
}

// NetCost returns the system cost after the federal tax credit.
func NetCost(systemCost float64, t Terms) float64 {
	return systemCost * (1 - t.TaxCreditFraction)
}

// CashMetrics computes payback, ROI and NPV for buying the system outright.
// Non-positive savings leave payback undefined; the returned issues say so.
func CashMetrics(systemCost, annualSavings float64, t Terms) (models.CashMetrics, []models.Issue) {
	net := NetCost(systemCost, t)
	proj := Project(net, annualSavings, CashFlowFor(t))

	m := models.CashMetrics{
		SystemCostUsd:      systemCost,
		TaxCreditUsd:       systemCost - net,
		NetCostUsd:         net,
		AnnualSavingsUsd:   annualSavings,
		ROI25Year:          proj.ROI,
		NetPresentValueUsd: proj.NetPresentValue,
		LifetimeSavingsUsd: proj.TotalSavings,
	}

	var issues []models.Issue
	switch {
	case annualSavings <= 0:
		issues = append(issues, models.Warning(models.IssueNonPositiveSavings, "",
			"annual savings of $%.2f leave payback and ROI undefined", annualSavings))
	case net <= 0:
		m.PaysBack = true
	default:
		m.PaybackYears = net / annualSavings
		m.PaysBack = m.PaybackYears <= float64(t.AnalysisYears)
		if !m.PaysBack {
			issues = append(issues, models.Warning(models.IssuePaybackBeyondHorizon, "",
				"simple payback of %.1f years exceeds the %d-year horizon", m.PaybackYears, t.AnalysisYears))
		}
	}
	return m, issues
}

// Cash prices an outright purchase. The schedule is a single payment of the
// net cost at signing.
func Cash(in Input, t Terms) models.FinancingOption {
	metrics, issues := CashMetrics(in.SystemCostUsd, in.AnnualSavingsUsd, t)
	payments := []models.ScheduledPayment{
		{Month: 0, AmountUsd: cents(metrics.NetCostUsd).InexactFloat64()},
	}
	return models.FinancingOption{
		ID:       string(models.KindCash),
		Kind:     models.KindCash,
		Name:     "Cash Purchase",
		Summary:  summarize(payments, in.AnnualSavingsUsd, t.AnalysisYears),
		Cash:     &models.CashTerms{UpfrontCostUsd: in.SystemCostUsd, CashMetrics: metrics},
		Payments: payments,
		Issues:   tagIssues(issues, string(models.KindCash)),
	}
}

func tagIssues(issues []models.Issue, option string) []models.Issue {
	for i := range issues {
		issues[i].Option = option
	}
	return issues
}
