package sensitivity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/solarprop/pkg/models"
)

// Options selects the optional parts of an analysis.
type Options struct {
	MonteCarlo bool  `json:"monte_carlo"`
	Seed       int64 `json:"seed"`
	// Iterations overrides the configured Monte Carlo size when positive.
	Iterations int `json:"iterations,omitempty"`
}

// Analyze runs the scenarios, the tornado report and, when requested, the
// Monte Carlo simulation.
func Analyze(ctx context.Context, b Baseline, c Config, opts Options) (*models.SensitivityAnalysis, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	expected, err := c.Scenario(models.ScenarioExpected, b.SiteRate)
	if err != nil {
		return nil, err
	}
	base := Project(b, expected)

	a := &models.SensitivityAnalysis{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		BaselineNPVUsd: base.NetPresentValueUsd,
		Scenarios:      Scenarios(b, c),
		Sensitivity:    Tornado(b, expected, c.TornadoRanges(expected)),
	}

	if b.FirstYearSavingsUsd <= 0 {
		a.Issues = append(a.Issues, models.Warning(models.IssueNonPositiveSavings, "",
			"first-year savings of $%.2f make every scenario unprofitable", b.FirstYearSavingsUsd))
	} else if !base.PaysBackWithinHorizon {
		a.Issues = append(a.Issues, models.Warning(models.IssuePaybackBeyondHorizon, models.ScenarioExpected,
			"the expected scenario does not pay back within %d years", b.Years))
	}

	if opts.MonteCarlo {
		mc := c.MonteCarlo
		if opts.Iterations > 0 {
			mc.Iterations = opts.Iterations
		}
		res, err := MonteCarlo(ctx, b, expected, mc, opts.Seed)
		if err != nil {
			return nil, err
		}
		if res.Discarded > 0 {
			a.Issues = append(a.Issues, models.Warning(models.IssueDiscardedDraws, "",
				"%d of %d draws produced a non-finite ROI and were discarded", res.Discarded, res.Iterations))
		}
		a.MonteCarlo = res
	}
	return a, nil
}
