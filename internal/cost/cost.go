// Package cost prices a solar + battery installation from its component sizes.
package cost

import (
	"fmt"

	"github.com/seenimoa/solarprop/pkg/models"
)

// PriceBook holds regional equipment and labour prices.
type PriceBook struct {
	CostPerWattSolar      float64 `json:"cost_per_watt_solar"`
	CostPerKwhBattery     float64 `json:"cost_per_kwh_battery"`
	CostPerKwInverter     float64 `json:"cost_per_kw_inverter"`
	FixedInstallationCost float64 `json:"fixed_installation_cost"`
	PanelWattage          float64 `json:"panel_wattage"`
}

// DefaultPriceBook returns a typical US residential price book.
func DefaultPriceBook() PriceBook {
	return PriceBook{
		CostPerWattSolar:      2.75,
		CostPerKwhBattery:     800,
		CostPerKwInverter:     300,
		FixedInstallationCost: 2000,
		PanelWattage:          400,
	}
}

// Validate rejects negative prices and a non-positive panel wattage.
func (p PriceBook) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"cost_per_watt_solar", p.CostPerWattSolar},
		{"cost_per_kwh_battery", p.CostPerKwhBattery},
		{"cost_per_kw_inverter", p.CostPerKwInverter},
		{"fixed_installation_cost", p.FixedInstallationCost},
	}
	for _, c := range checks {
		if c.value < 0 {
			return &models.InputError{Field: c.field, Detail: fmt.Sprintf("must not be negative, got %g", c.value)}
		}
	}
	if p.PanelWattage <= 0 {
		return &models.InputError{Field: "panel_wattage", Detail: fmt.Sprintf("must be positive, got %g", p.PanelWattage)}
	}
	return nil
}

// LineItem is one component of an installed-cost breakdown.
type LineItem struct {
	Component string  `json:"component"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitCost  float64 `json:"unit_cost"`
	Total     float64 `json:"total"`
}

// Breakdown itemises the installed cost. Its totals sum to SystemCost.
func Breakdown(solarKw, batteryKwh, inverterKw float64, book PriceBook) ([]LineItem, error) {
	if err := validateSizes(solarKw, batteryKwh, inverterKw); err != nil {
		return nil, err
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return []LineItem{
		{Component: "solar", Quantity: solarKw * 1000, Unit: "W", UnitCost: book.CostPerWattSolar, Total: solarKw * 1000 * book.CostPerWattSolar},
		{Component: "battery", Quantity: batteryKwh, Unit: "kWh", UnitCost: book.CostPerKwhBattery, Total: batteryKwh * book.CostPerKwhBattery},
		{Component: "inverter", Quantity: inverterKw, Unit: "kW", UnitCost: book.CostPerKwInverter, Total: inverterKw * book.CostPerKwInverter},
		{Component: "installation", Quantity: 1, Unit: "job", UnitCost: book.FixedInstallationCost, Total: book.FixedInstallationCost},
	}, nil
}

// SystemCost returns the installed cost in USD:
//
//	solarKw×1000×$/W + batteryKwh×$/kWh + inverterKw×$/kW + fixed installation
func SystemCost(solarKw, batteryKwh, inverterKw float64, book PriceBook) (float64, error) {
	items, err := Breakdown(solarKw, batteryKwh, inverterKw, book)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.Total
	}
	return total, nil
}

func validateSizes(solarKw, batteryKwh, inverterKw float64) error {
	if solarKw < 0 {
		return &models.InputError{Field: "solar_kw", Detail: fmt.Sprintf("must not be negative, got %g", solarKw)}
	}
	if batteryKwh < 0 {
		return &models.InputError{Field: "battery_kwh", Detail: fmt.Sprintf("must not be negative, got %g", batteryKwh)}
	}
	if inverterKw < 0 {
		return &models.InputError{Field: "inverter_kw", Detail: fmt.Sprintf("must not be negative, got %g", inverterKw)}
	}
	return nil
}
