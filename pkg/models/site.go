package models

import "fmt"

// MonthsPerYear is the number of billing months in a projection year.
const MonthsPerYear = 12

// UsageProfile is a site's annual consumption and utility spend as supplied
// by the analysis record.
type UsageProfile struct {
	AnnualUsageKwh    float64 `json:"annual_usage_kwh"`
	AnnualBillCostUsd float64 `json:"annual_bill_cost_usd"`
	// MonthlyUsageKwh is optional; when all zero the annual usage is spread evenly.
	MonthlyUsageKwh [MonthsPerYear]float64 `json:"monthly_usage_kwh,omitempty"`
}

// AverageRateUsdPerKwh returns the blended rate (bill / usage).
func (u UsageProfile) AverageRateUsdPerKwh() float64 {
	if u.AnnualUsageKwh <= 0 {
		return 0
	}
	return u.AnnualBillCostUsd / u.AnnualUsageKwh
}

// DailyUsageKwh returns the average daily consumption.
func (u UsageProfile) DailyUsageKwh() float64 {
	return u.AnnualUsageKwh / 365
}

// Monthly returns the monthly usage profile, spreading the annual figure
// evenly when no monthly breakdown was provided.
func (u UsageProfile) Monthly() [MonthsPerYear]float64 {
	var total float64
	for _, m := range u.MonthlyUsageKwh {
		total += m
	}
	if total > 0 {
		return u.MonthlyUsageKwh
	}
	var out [MonthsPerYear]float64
	for i := range out {
		out[i] = u.AnnualUsageKwh / MonthsPerYear
	}
	return out
}

// Validate rejects profiles the engine cannot price.
func (u UsageProfile) Validate() error {
	if u.AnnualUsageKwh <= 0 {
		return &InputError{Field: "annual_usage_kwh", Detail: fmt.Sprintf("must be positive, got %g", u.AnnualUsageKwh)}
	}
	if u.AnnualBillCostUsd < 0 {
		return &InputError{Field: "annual_bill_cost_usd", Detail: fmt.Sprintf("must not be negative, got %g", u.AnnualBillCostUsd)}
	}
	for i, m := range u.MonthlyUsageKwh {
		if m < 0 {
			return &InputError{Field: "monthly_usage_kwh", Detail: fmt.Sprintf("month %d is negative", i+1)}
		}
	}
	return nil
}

// Location is the geographic position of the site.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinates are on the globe.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return &InputError{Field: "latitude", Detail: fmt.Sprintf("out of range: %g", l.Latitude)}
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return &InputError{Field: "longitude", Detail: fmt.Sprintf("out of range: %g", l.Longitude)}
	}
	return nil
}

// ProductionEstimate is the yield of a given array size at a location.
type ProductionEstimate struct {
	AnnualProductionKwh   float64                `json:"annual_production_kwh"`
	MonthlyProductionKwh  [MonthsPerYear]float64 `json:"monthly_production_kwh"`
	AnnualDegradationRate float64                `json:"annual_degradation_rate"`
	Source                string                 `json:"source,omitempty"`
}

// OffsetPercentage returns production as a percentage of usage.
func OffsetPercentage(productionKwh, usageKwh float64) float64 {
	if usageKwh <= 0 {
		return 0
	}
	return productionKwh / usageKwh * 100
}
