// Package recommend scores sizing and financing options and picks a winner.
//
// Scores are on a 0-100 scale. Selection is pure: the same options always
// produce the same Selection, and ties go to the option that came first.
package recommend

import (
	"math"

	"github.com/seenimoa/solarprop/pkg/models"
)

// FinancingContext carries the savings figures the financing heuristics
// compare payments against.
type FinancingContext struct {
	MonthlySavingsUsd  float64
	LifetimeSavingsUsd float64
}

type candidate struct {
	id    string
	score float64
}

// ════════════════════════════════════════════════════════════════════
// Sizing
// ════════════════════════════════════════════════════════════════════

// SizeScore is 0.3×payback + 0.4×ROI + 0.3×offset.
func SizeScore(o models.SizingOption) float64 {
	payback := 0.0
	if o.PaysBack {
		payback = paybackScore(o.PaybackYears)
	}
	roi := math.Min(100, o.ROI25Year/2)
	offset := math.Min(100, o.OffsetPercentage())
	return 0.3*payback + 0.4*roi + 0.3*offset
}

// SelectSize picks the best viable sizing option. It reports false when
// every option failed.
func SelectSize(options []models.SizingOption) (models.Selection, bool) {
	cands := make([]candidate, 0, len(options))
	for _, o := range options {
		if !o.Viable() {
			continue
		}
		cands = append(cands, candidate{id: string(o.Size), score: SizeScore(o)})
	}
	return selectBest(cands)
}

// ════════════════════════════════════════════════════════════════════
// Financing
// ════════════════════════════════════════════════════════════════════

// FinancingScore scores one financing option. Options with no usable
// terms score zero.
func FinancingScore(o models.FinancingOption, ctx FinancingContext) float64 {
	switch o.Kind {
	case models.KindCash:
		if o.Cash == nil {
			return 0
		}
		payback := 0.0
		if o.Cash.PaysBack {
			payback = paybackScore(o.Cash.PaybackYears)
		}
		return 0.6*math.Min(100, o.Cash.ROI25Year/2) + 0.4*payback

	case models.KindLoan:
		if o.Loan == nil {
			return 0
		}
		payment := 0.0
		if ctx.MonthlySavingsUsd > 0 {
			payment = clamp(100 * (1 - o.Loan.MonthlyPaymentUsd/(2*ctx.MonthlySavingsUsd)))
		}
		breakEven := 0.0
		if o.Loan.BreaksEven {
			breakEven = paybackScore(float64(o.Loan.BreakEvenMonth) / models.MonthsPerYear)
		}
		return 0.5*payment + 0.5*breakEven

	case models.KindLease, models.KindPPA:
		if ctx.LifetimeSavingsUsd <= 0 {
			return 0
		}
		return clamp(100 * (1 - o.Summary.TotalCostOverLifeUsd/ctx.LifetimeSavingsUsd))
	}
	return 0
}

// SelectFinancing picks the best financing option.
func SelectFinancing(options []models.FinancingOption, ctx FinancingContext) (models.Selection, bool) {
	cands := make([]candidate, 0, len(options))
	for _, o := range options {
		cands = append(cands, candidate{id: o.ID, score: FinancingScore(o, ctx)})
	}
	return selectBest(cands)
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func paybackScore(years float64) float64 {
	return math.Max(0, 100-years*5)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// selectBest keeps the first candidate on ties, for both winner and
// runner-up.
func selectBest(cands []candidate) (models.Selection, bool) {
	if len(cands) == 0 {
		return models.Selection{}, false
	}

	scores := make(map[string]float64, len(cands))
	best, second := -1, -1
	for i, c := range cands {
		scores[c.id] = c.score
		switch {
		case best < 0 || c.score > cands[best].score:
			second = best
			best = i
		case second < 0 || c.score > cands[second].score:
			second = i
		}
	}

	sel := models.Selection{
		Winner: cands[best].id,
		Score:  cands[best].score,
		Scores: scores,
	}
	if second >= 0 {
		sel.RunnerUp = cands[second].id
		sel.RunnerUpScore = cands[second].score
		sel.Margin = sel.Score - sel.RunnerUpScore
	}
	return sel, true
}
