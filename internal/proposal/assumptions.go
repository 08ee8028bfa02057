package proposal

import (
	"time"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/cost"
	"github.com/seenimoa/solarprop/internal/financing"
	"github.com/seenimoa/solarprop/internal/savings"
	"github.com/seenimoa/solarprop/internal/sensitivity"
	"github.com/seenimoa/solarprop/internal/sizing"
	"github.com/seenimoa/solarprop/pkg/models"
)

// Assumptions is every injected constant the engine runs on.
type Assumptions struct {
	PriceBook       cost.PriceBook     `json:"price_book"`
	Policy          savings.Policy     `json:"utility_policy"`
	Terms           financing.Terms    `json:"finance_terms"`
	Sizing          sizing.Config      `json:"sizing"`
	Scenarios       sensitivity.Config `json:"scenarios"`
	DegradationRate float64            `json:"degradation_rate"`
	MonteCarloSeed  int64              `json:"monte_carlo_seed"`
}

// DefaultAssumptions returns the built-in defaults without reading config.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		PriceBook:       cost.DefaultPriceBook(),
		Policy:          savings.DefaultPolicy(),
		Terms:           financing.DefaultTerms(),
		Sizing:          sizing.DefaultConfig(),
		Scenarios:       sensitivity.DefaultConfig(),
		DegradationRate: 0.005,
		MonteCarloSeed:  42,
	}
}

// AssumptionsFrom converts loaded configuration into engine inputs.
func AssumptionsFrom(cfg *config.Config) Assumptions {
	p, f, s, sc, mc := cfg.Pricing, cfg.Finance, cfg.Sizing, cfg.Scenarios, cfg.MonteCarlo

	return Assumptions{
		PriceBook: cost.PriceBook{
			CostPerWattSolar:      p.CostPerWattSolar,
			CostPerKwhBattery:     p.CostPerKwhBattery,
			CostPerKwInverter:     p.CostPerKwInverter,
			FixedInstallationCost: p.FixedInstallationCost,
			PanelWattage:          p.PanelWattage,
		},
		Policy: savings.Policy{
			ExportCreditFraction:  f.ExportCreditFraction,
			FixedMonthlyChargeUsd: s.FixedMonthlyChargeUsd,
		},
		Terms: financing.Terms{
			TaxCreditFraction:       f.TaxCreditFraction,
			DiscountRate:            f.DiscountRate,
			UtilityRateEscalation:   f.UtilityRateEscalation,
			AnalysisYears:           f.AnalysisYears,
			DiscountFirstYear:       f.DiscountFirstYear,
			LoanRate:                f.LoanRate,
			LoanTermsYears:          append([]int(nil), f.LoanTermsYears...),
			LoanDownPaymentFraction: f.LoanDownPaymentFraction,
			LeaseSavingsFraction:    f.LeaseSavingsFraction,
			LeaseEscalator:          f.LeaseEscalator,
			LeaseTermYears:          f.LeaseTermYears,
			PPARateFraction:         f.PPARateFraction,
			PPAEscalator:            f.PPAEscalator,
			PPATermYears:            f.PPATermYears,
		},
		Sizing: sizing.Config{
			SmallOffsetPercent:         s.SmallOffsetPercent,
			MediumOffsetPercent:        s.MediumOffsetPercent,
			LargeOffsetPercent:         s.LargeOffsetPercent,
			PeakSunHours:               s.PeakSunHours,
			MaxSystemKw:                s.MaxSystemKw,
			IncludeBattery:             s.IncludeBattery,
			CriticalLoadFraction:       s.CriticalLoadFraction,
			BatteryOverheadFactor:      s.BatteryOverheadFactor,
			MaxBatteryKwh:              s.MaxBatteryKwh,
			InverterOversizeMultiplier: s.InverterOversizeMultiplier,
			EstimateTimeout:            time.Duration(cfg.Production.TimeoutSec) * time.Second,
		},
		Scenarios: sensitivity.Config{
			Expected:            template(sc.Expected),
			Best:                template(sc.Best),
			Worst:               template(sc.Worst),
			FlatRateEscalation:  sc.FlatRateEscalation,
			HighDegradationRate: sc.HighDegradationRate,
			Ranges: map[models.Parameter]sensitivity.Range{
				models.ParamUtilityEscalation: rangeOf(sc.Tornado.UtilityRateEscalation),
				models.ParamElectricityRate:   rangeOf(sc.Tornado.RateMultiplier),
				models.ParamDegradation:       rangeOf(sc.Tornado.SystemDegradation),
				models.ParamDiscountRate:      rangeOf(sc.Tornado.DiscountRate),
				models.ParamOMCost:            rangeOf(sc.Tornado.OMCostPerKw),
			},
			MonteCarlo: sensitivity.MonteCarloConfig{
				Iterations:    mc.Iterations,
				MaxIterations: mc.MaxIterations,
				Workers:       mc.Workers,
				StdDev: map[models.Parameter]float64{
					models.ParamUtilityEscalation: mc.EscalationStdDev,
					models.ParamElectricityRate:   mc.RateStdDevFraction,
					models.ParamDegradation:       mc.DegradationStdDev,
					models.ParamDiscountRate:      mc.DiscountStdDev,
					models.ParamOMCost:            mc.OMCostStdDev,
				},
			},
		},
		DegradationRate: f.DegradationRate,
		MonteCarloSeed:  mc.Seed,
	}
}

func template(s config.ScenarioConfig) sensitivity.Template {
	return sensitivity.Template{
		UtilityRateEscalation: s.UtilityRateEscalation,
		SystemDegradation:     s.SystemDegradation,
		RateMultiplier:        s.RateMultiplier,
		DiscountRate:          s.DiscountRate,
		OMCostPerKw:           s.OMCostPerKw,
	}
}

func rangeOf(r config.RangeConfig) sensitivity.Range {
	return sensitivity.Range{Low: r.Low, High: r.High}
}
