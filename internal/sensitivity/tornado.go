package sensitivity

import (
	"math"
	"sort"

	"github.com/seenimoa/solarprop/pkg/models"
)

// TornadoRanges resolves the configured ranges against the expected
// scenario, turning rate multipliers into $/kWh. Parameters without a
// configured range use the DefaultConfig range, so every parameter is
// reported.
func (c Config) TornadoRanges(expected models.ScenarioParameters) map[models.Parameter]Range {
	defaults := DefaultConfig().Ranges
	out := make(map[models.Parameter]Range, len(defaults))
	for _, param := range models.Parameters() {
		r, ok := c.Ranges[param]
		if !ok {
			r = defaults[param]
		}
		if param == models.ParamElectricityRate {
			r = Range{Low: expected.ElectricityRate * r.Low, High: expected.ElectricityRate * r.High}
		}
		out[param] = r
	}
	return out
}

// Tornado perturbs each parameter to its low and high value with the rest
// held at expected, and reports the NPV change against expected. Entries
// are sorted by range, largest first; equal ranges keep parameter order.
func Tornado(b Baseline, expected models.ScenarioParameters, ranges map[models.Parameter]Range) models.SensitivityReport {
	baseNPV := Project(b, expected).NetPresentValueUsd

	report := make(models.SensitivityReport, 0, len(ranges))
	for _, param := range models.Parameters() {
		r, ok := ranges[param]
		if !ok {
			continue
		}
		low := Project(b, expected.With(param, r.Low)).NetPresentValueUsd - baseNPV
		high := Project(b, expected.With(param, r.High)).NetPresentValueUsd - baseNPV
		report = append(report, models.SensitivityEntry{
			Parameter:     param,
			LowValue:      r.Low,
			HighValue:     r.High,
			LowImpactUsd:  low,
			HighImpactUsd: high,
			RangeUsd:      math.Abs(high - low),
		})
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].RangeUsd > report[j].RangeUsd
	})
	return report
}
