// Package savings converts a production estimate and a usage profile into
// utility-bill savings.
package savings

import (
	"fmt"
	"math"

	"github.com/seenimoa/solarprop/pkg/models"
)

// Policy holds the utility's compensation rules.
type Policy struct {
	// ExportCreditFraction is the share of retail rate paid for exported kWh.
	ExportCreditFraction  float64 `json:"export_credit_fraction"`
	FixedMonthlyChargeUsd float64 `json:"fixed_monthly_charge_usd"`
}

// DefaultPolicy returns partial net metering at 70% of retail.
func DefaultPolicy() Policy {
	return Policy{
		ExportCreditFraction:  0.70,
		FixedMonthlyChargeUsd: 10,
	}
}

// Validate checks the policy fractions.
func (p Policy) Validate() error {
	if p.ExportCreditFraction < 0 || p.ExportCreditFraction > 1 {
		return &models.InputError{Field: "export_credit_fraction", Detail: fmt.Sprintf("must be within [0, 1], got %g", p.ExportCreditFraction)}
	}
	if p.FixedMonthlyChargeUsd < 0 {
		return &models.InputError{Field: "fixed_monthly_charge_usd", Detail: fmt.Sprintf("must not be negative, got %g", p.FixedMonthlyChargeUsd)}
	}
	return nil
}

// AnnualSavings returns first-year bill savings.
//
// When production covers usage the whole bill is avoided and the excess is
// credited at ExportCreditFraction of averageRate. Otherwise savings are the
// bill scaled by the share of usage offset.
func AnnualSavings(productionKwh, usageKwh, billUsd, averageRate float64, policy Policy) (float64, error) {
	if usageKwh <= 0 {
		return 0, &models.InputError{Field: "annual_usage_kwh", Detail: fmt.Sprintf("must be positive, got %g", usageKwh)}
	}
	if billUsd < 0 {
		return 0, &models.InputError{Field: "annual_bill_cost_usd", Detail: fmt.Sprintf("must not be negative, got %g", billUsd)}
	}
	if productionKwh < 0 {
		return 0, &models.InputError{Field: "annual_production_kwh", Detail: fmt.Sprintf("must not be negative, got %g", productionKwh)}
	}
	if averageRate < 0 {
		return 0, &models.InputError{Field: "average_rate", Detail: fmt.Sprintf("must not be negative, got %g", averageRate)}
	}

	if productionKwh >= usageKwh {
		excess := productionKwh - usageKwh
		return billUsd + excess*averageRate*policy.ExportCreditFraction, nil
	}
	return billUsd * (productionKwh / usageKwh), nil
}

// MonthlyBills projects the post-install bill for each month. Net usage is
// floored at zero; the fixed service charge always applies.
func MonthlyBills(usage, production [models.MonthsPerYear]float64, rate float64, policy Policy) []models.MonthlyBill {
	bills := make([]models.MonthlyBill, models.MonthsPerYear)
	for i := 0; i < models.MonthsPerYear; i++ {
		net := math.Max(0, usage[i]-production[i])
		bills[i] = models.MonthlyBill{
			Month:            i + 1,
			UsageKwh:         usage[i],
			ProductionKwh:    production[i],
			NetUsageKwh:      net,
			ProjectedBillUsd: net*rate + policy.FixedMonthlyChargeUsd,
		}
	}
	return bills
}

// AnnualBill sums projected monthly bills.
func AnnualBill(bills []models.MonthlyBill) float64 {
	var total float64
	for _, b := range bills {
		total += b.ProjectedBillUsd
	}
	return total
}
