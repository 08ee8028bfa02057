package production

import (
	"context"
	"fmt"

	"github.com/seenimoa/solarprop/pkg/models"
)

const hoursPerYear = 8760

// MaxCapacityFactor bounds plausible fixed-tilt residential arrays.
const MaxCapacityFactor = 0.4

// northernProfile is the share of annual yield per month, Jan..Dec, for a
// fixed array in the northern hemisphere.
var northernProfile = [models.MonthsPerYear]float64{
	0.055, 0.065, 0.085, 0.095, 0.105, 0.105,
	0.110, 0.100, 0.090, 0.075, 0.060, 0.055,
}

// CapacityFactor estimates yield offline as kW × 8760 h × factor.
type CapacityFactor struct {
	factor      float64
	degradation float64
}

// NewCapacityFactor validates factor ∈ (0, 0.4] and degradation ∈ [0, 1).
func NewCapacityFactor(factor, degradation float64) (*CapacityFactor, error) {
	if factor <= 0 || factor > MaxCapacityFactor {
		return nil, &models.InputError{Field: "capacity_factor",
			Detail: fmt.Sprintf("must be within (0, %g], got %g", MaxCapacityFactor, factor)}
	}
	if degradation < 0 || degradation >= 1 {
		return nil, &models.InputError{Field: "degradation_rate",
			Detail: fmt.Sprintf("must be within [0, 1), got %g", degradation)}
	}
	return &CapacityFactor{factor: factor, degradation: degradation}, nil
}

// Name implements Estimator.
func (c *CapacityFactor) Name() string { return SourceCapacityFactor }

// Estimate implements Estimator. The seasonal profile is shifted six months
// south of the equator.
func (c *CapacityFactor) Estimate(ctx context.Context, solarKw float64, loc models.Location) (*models.ProductionEstimate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRequest(solarKw, loc); err != nil {
		return nil, err
	}

	annual := solarKw * hoursPerYear * c.factor
	est := &models.ProductionEstimate{
		AnnualProductionKwh:   annual,
		AnnualDegradationRate: c.degradation,
		Source:                SourceCapacityFactor,
	}
	for m := range est.MonthlyProductionKwh {
		src := m
		if loc.Latitude < 0 {
			src = (m + 6) % models.MonthsPerYear
		}
		est.MonthlyProductionKwh[m] = annual * northernProfile[src]
	}
	return est, nil
}
