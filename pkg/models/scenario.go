package models

import "time"

// Parameter names a tunable scenario assumption.
type Parameter string

const (
	ParamUtilityEscalation Parameter = "utility_rate_escalation"
	ParamElectricityRate   Parameter = "electricity_rate"
	ParamDegradation       Parameter = "system_degradation"
	ParamDiscountRate      Parameter = "discount_rate"
	ParamOMCost            Parameter = "om_cost_per_kw"
)

// Parameters returns the tunable parameters in reporting order.
func Parameters() []Parameter {
	return []Parameter{
		ParamUtilityEscalation,
		ParamElectricityRate,
		ParamDegradation,
		ParamDiscountRate,
		ParamOMCost,
	}
}

// Canonical scenario names.
const (
	ScenarioBest            = "best"
	ScenarioExpected        = "expected"
	ScenarioWorst           = "worst"
	ScenarioFlatRate        = "flat_rate"
	ScenarioHighDegradation = "high_degradation"
)

// ScenarioParameters is a named bundle of future-condition assumptions.
type ScenarioParameters struct {
	Name                              string  `json:"name"`
	UtilityRateEscalation             float64 `json:"utility_rate_escalation"`
	SystemDegradation                 float64 `json:"system_degradation"`
	ElectricityRate                   float64 `json:"electricity_rate"`
	DiscountRate                      float64 `json:"discount_rate"`
	OperationsAndMaintenanceCostPerKw float64 `json:"om_cost_per_kw"`
}

// Get returns the value of one parameter.
func (p ScenarioParameters) Get(param Parameter) float64 {
	switch param {
	case ParamUtilityEscalation:
		return p.UtilityRateEscalation
	case ParamElectricityRate:
		return p.ElectricityRate
	case ParamDegradation:
		return p.SystemDegradation
	case ParamDiscountRate:
		return p.DiscountRate
	case ParamOMCost:
		return p.OperationsAndMaintenanceCostPerKw
	}
	return 0
}

// With returns a copy with one parameter overridden.
func (p ScenarioParameters) With(param Parameter, value float64) ScenarioParameters {
	switch param {
	case ParamUtilityEscalation:
		p.UtilityRateEscalation = value
	case ParamElectricityRate:
		p.ElectricityRate = value
	case ParamDegradation:
		p.SystemDegradation = value
	case ParamDiscountRate:
		p.DiscountRate = value
	case ParamOMCost:
		p.OperationsAndMaintenanceCostPerKw = value
	}
	return p
}

// ScenarioResult is the 25-year projection under one ScenarioParameters.
type ScenarioResult struct {
	Scenario              string             `json:"scenario"`
	Parameters            ScenarioParameters `json:"parameters"`
	AnnualSavings         float64            `json:"annual_savings"`
	PaybackPeriodYears    float64            `json:"payback_period_years"`
	PaysBackWithinHorizon bool               `json:"pays_back_within_horizon"`
	ROI25Year             float64            `json:"roi_25_year"`
	NetPresentValueUsd    float64            `json:"net_present_value_usd"`
	TotalSavings25Year    float64            `json:"total_savings_25_year"`
	EffectiveAnnualReturn float64            `json:"effective_annual_return"`
}

// SensitivityEntry is one bar of a tornado chart.
type SensitivityEntry struct {
	Parameter     Parameter `json:"parameter"`
	LowValue      float64   `json:"low_value"`
	HighValue     float64   `json:"high_value"`
	LowImpactUsd  float64   `json:"low_impact_usd"`
	HighImpactUsd float64   `json:"high_impact_usd"`
	RangeUsd      float64   `json:"range_usd"`
}

// SensitivityReport is ordered by RangeUsd, largest first.
type SensitivityReport []SensitivityEntry

// MonteCarloResult summarises the distribution of 25-year ROI.
type MonteCarloResult struct {
	Iterations             int     `json:"iterations"`
	Seed                   int64   `json:"seed"`
	MeanROI                float64 `json:"mean_roi"`
	MedianROI              float64 `json:"median_roi"`
	StdDeviation           float64 `json:"std_deviation"`
	P10                    float64 `json:"p10"`
	P50                    float64 `json:"p50"`
	P90                    float64 `json:"p90"`
	ProbabilityPositiveROI float64 `json:"probability_positive_roi"`
	Discarded              int     `json:"discarded,omitempty"`
}

// SensitivityAnalysis bundles scenario, tornado and Monte Carlo output.
type SensitivityAnalysis struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	BaselineNPVUsd float64           `json:"baseline_npv_usd"`
	Scenarios      []ScenarioResult  `json:"scenarios"`
	Sensitivity    SensitivityReport `json:"sensitivity"`
	MonteCarlo     *MonteCarloResult `json:"monte_carlo,omitempty"`
	Issues         []Issue           `json:"issues,omitempty"`
}

// Proposal is the combined output for a site: size comparison, financing of
// the recommended size and its risk profile.
type Proposal struct {
	ID          string               `json:"id"`
	CreatedAt   time.Time            `json:"created_at"`
	Sizing      *SizingComparison    `json:"sizing"`
	Financing   *FinancingComparison `json:"financing,omitempty"`
	Sensitivity *SensitivityAnalysis `json:"sensitivity,omitempty"`
	Issues      []Issue              `json:"issues,omitempty"`
}
