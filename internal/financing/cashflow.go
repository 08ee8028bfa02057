package financing

import "math"

// CashFlow describes how first-year savings evolve over the horizon.
type CashFlow struct {
	Escalation        float64 // annual growth of the avoided utility rate
	Degradation       float64 // annual loss of production
	DiscountRate      float64
	AnnualCost        float64 // recurring owner cost (O&M), subtracted each year
	Years             int
	DiscountFirstYear bool
}

// Projection is the discounted-cash-flow outcome of owning a system.
type Projection struct {
	YearlySavings         []float64
	TotalSavings          float64
	NetPresentValue       float64
	ROI                   float64 // percent
	PaybackYears          float64
	PaysBack              bool
	EffectiveAnnualReturn float64 // percent, compound
}

// YearSavings returns the net savings of year y (1-based).
func (cf CashFlow) YearSavings(firstYearSavings float64, y int) float64 {
	growth := math.Pow(1+cf.Escalation, float64(y-1)) * math.Pow(1-cf.Degradation, float64(y-1))
	return firstYearSavings*growth - cf.AnnualCost
}

// DiscountFactor returns the divisor applied to year y.
func (cf CashFlow) DiscountFactor(y int) float64 {
	periods := y - 1
	if cf.DiscountFirstYear {
		periods = y
	}
	return math.Pow(1+cf.DiscountRate, float64(periods))
}

// Project runs the cash flow for an owner who paid netCost up front:
//
//	NPV = −netCost + Σ savings_y / (1+d)^k
//
// Payback is interpolated within the year cumulative savings reach netCost.
// It never returns ±Inf or NaN: a system that does not pay back within the
// horizon reports PaysBack=false and PaybackYears=0.
func Project(netCost, firstYearSavings float64, cf CashFlow) Projection {
	years := cf.Years
	if years <= 0 {
		years = 25
	}
	p := Projection{
		YearlySavings:   make([]float64, years),
		NetPresentValue: -netCost,
	}

	var cumulative float64
	if netCost <= 0 {
		p.PaysBack = true
	}
	for y := 1; y <= years; y++ {
		s := cf.YearSavings(firstYearSavings, y)
		p.YearlySavings[y-1] = s
		p.TotalSavings += s
		p.NetPresentValue += s / cf.DiscountFactor(y)

		prev := cumulative
		cumulative += s
		if !p.PaysBack && s > 0 && cumulative >= netCost {
			p.PaysBack = true
			p.PaybackYears = float64(y-1) + (netCost-prev)/s
		}
	}

	if netCost > 0 {
		p.ROI = (p.TotalSavings - netCost) / netCost * 100
		if p.TotalSavings > 0 {
			p.EffectiveAnnualReturn = (math.Pow(p.TotalSavings/netCost, 1/float64(years)) - 1) * 100
		} else {
			p.EffectiveAnnualReturn = -100
		}
	}
	return p
}
