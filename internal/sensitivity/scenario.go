// Package sensitivity stress-tests a system's economics: canonical
// scenarios, one-at-a-time tornado analysis and Monte Carlo simulation.
package sensitivity

import (
	"fmt"

	"github.com/seenimoa/solarprop/internal/financing"
	"github.com/seenimoa/solarprop/pkg/models"
)

// Baseline is the system under analysis.
type Baseline struct {
	NetCostUsd          float64 `json:"net_cost_usd"`
	FirstYearSavingsUsd float64 `json:"first_year_savings_usd"`
	SolarKw             float64 `json:"solar_kw"`
	// SiteRate is the $/kWh the first-year savings were computed at.
	SiteRate          float64 `json:"site_rate"`
	Years             int     `json:"years"`
	DiscountFirstYear bool    `json:"discount_first_year"`
}

// Validate rejects baselines that cannot be projected.
func (b Baseline) Validate() error {
	if b.NetCostUsd < 0 {
		return &models.InputError{Field: "net_cost_usd", Detail: fmt.Sprintf("must not be negative, got %g", b.NetCostUsd)}
	}
	if b.SolarKw < 0 {
		return &models.InputError{Field: "solar_kw", Detail: fmt.Sprintf("must not be negative, got %g", b.SolarKw)}
	}
	if b.SiteRate < 0 {
		return &models.InputError{Field: "site_rate", Detail: fmt.Sprintf("must not be negative, got %g", b.SiteRate)}
	}
	if b.Years <= 0 {
		return &models.InputError{Field: "years", Detail: fmt.Sprintf("must be positive, got %d", b.Years)}
	}
	return nil
}

// Template is a scenario whose electricity rate is relative to the site.
type Template struct {
	UtilityRateEscalation float64 `json:"utility_rate_escalation"`
	SystemDegradation     float64 `json:"system_degradation"`
	RateMultiplier        float64 `json:"rate_multiplier"`
	DiscountRate          float64 `json:"discount_rate"`
	OMCostPerKw           float64 `json:"om_cost_per_kw"`
}

// Range is a tornado low/high pair. For the electricity rate it holds
// multipliers of the expected rate.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Config holds every scenario assumption.
type Config struct {
	Expected            Template                   `json:"expected"`
	Best                Template                   `json:"best"`
	Worst               Template                   `json:"worst"`
	FlatRateEscalation  float64                    `json:"flat_rate_escalation"`
	HighDegradationRate float64                    `json:"high_degradation_rate"`
	Ranges              map[models.Parameter]Range `json:"ranges"`
	MonteCarlo          MonteCarloConfig           `json:"monte_carlo"`
}

// DefaultConfig returns the standard residential scenario set.
func DefaultConfig() Config {
	return Config{
		Expected:            Template{0.03, 0.005, 1.0, 0.06, 20},
		Best:                Template{0.05, 0.0025, 1.10, 0.04, 10},
		Worst:               Template{0.01, 0.008, 0.90, 0.08, 30},
		FlatRateEscalation:  0,
		HighDegradationRate: 0.01,
		Ranges: map[models.Parameter]Range{
			models.ParamUtilityEscalation: {0.01, 0.05},
			models.ParamElectricityRate:   {0.8, 1.2},
			models.ParamDegradation:       {0.0025, 0.01},
			models.ParamDiscountRate:      {0.04, 0.08},
			models.ParamOMCost:            {10, 30},
		},
		MonteCarlo: DefaultMonteCarloConfig(),
	}
}

func (t Template) resolve(name string, siteRate float64) models.ScenarioParameters {
	return models.ScenarioParameters{
		Name:                              name,
		UtilityRateEscalation:             t.UtilityRateEscalation,
		SystemDegradation:                 t.SystemDegradation,
		ElectricityRate:                   siteRate * t.RateMultiplier,
		DiscountRate:                      t.DiscountRate,
		OperationsAndMaintenanceCostPerKw: t.OMCostPerKw,
	}
}

// Scenario returns one canonical scenario at the given site rate. Flat-rate
// and high-degradation are the expected case with one parameter changed.
func (c Config) Scenario(name string, siteRate float64) (models.ScenarioParameters, error) {
	expected := c.Expected.resolve(models.ScenarioExpected, siteRate)
	switch name {
	case models.ScenarioExpected:
		return expected, nil
	case models.ScenarioBest:
		return c.Best.resolve(name, siteRate), nil
	case models.ScenarioWorst:
		return c.Worst.resolve(name, siteRate), nil
	case models.ScenarioFlatRate:
		p := expected.With(models.ParamUtilityEscalation, c.FlatRateEscalation)
		p.Name = name
		return p, nil
	case models.ScenarioHighDegradation:
		p := expected.With(models.ParamDegradation, c.HighDegradationRate)
		p.Name = name
		return p, nil
	}
	return models.ScenarioParameters{}, fmt.Errorf("unknown scenario %q", name)
}

// ScenarioNames returns the canonical scenarios in reporting order.
func ScenarioNames() []string {
	return []string{
		models.ScenarioBest,
		models.ScenarioExpected,
		models.ScenarioWorst,
		models.ScenarioFlatRate,
		models.ScenarioHighDegradation,
	}
}

// cashFlow maps scenario parameters onto the shared cash-flow primitive.
func cashFlow(b Baseline, p models.ScenarioParameters) (financing.CashFlow, float64) {
	first := b.FirstYearSavingsUsd
	if b.SiteRate > 0 {
		first *= p.ElectricityRate / b.SiteRate
	}
	return financing.CashFlow{
		Escalation:        p.UtilityRateEscalation,
		Degradation:       p.SystemDegradation,
		DiscountRate:      p.DiscountRate,
		AnnualCost:        p.OperationsAndMaintenanceCostPerKw * b.SolarKw,
		Years:             b.Years,
		DiscountFirstYear: b.DiscountFirstYear,
	}, first
}

// Project runs the baseline under one set of parameters. Savings in year y
// are base × (rate/siteRate) × (1+esc)^(y−1) × (1−deg)^(y−1) − O&M × kW.
func Project(b Baseline, p models.ScenarioParameters) models.ScenarioResult {
	cf, first := cashFlow(b, p)
	proj := financing.Project(b.NetCostUsd, first, cf)
	return models.ScenarioResult{
		Scenario:              p.Name,
		Parameters:            p,
		AnnualSavings:         proj.TotalSavings / float64(len(proj.YearlySavings)),
		PaybackPeriodYears:    proj.PaybackYears,
		PaysBackWithinHorizon: proj.PaysBack,
		ROI25Year:             proj.ROI,
		NetPresentValueUsd:    proj.NetPresentValue,
		TotalSavings25Year:    proj.TotalSavings,
		EffectiveAnnualReturn: proj.EffectiveAnnualReturn,
	}
}

// Scenarios projects every canonical scenario.
func Scenarios(b Baseline, c Config) []models.ScenarioResult {
	results := make([]models.ScenarioResult, 0, len(ScenarioNames()))
	for _, name := range ScenarioNames() {
		p, _ := c.Scenario(name, b.SiteRate)
		results = append(results, Project(b, p))
	}
	return results
}
