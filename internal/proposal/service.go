// Package proposal wires the sizing, financing, sensitivity and
// recommendation engines into the request/response operations exposed by
// the API and CLI.
package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/solarprop/internal/financing"
	"github.com/seenimoa/solarprop/internal/logging"
	"github.com/seenimoa/solarprop/internal/production"
	"github.com/seenimoa/solarprop/internal/recommend"
	"github.com/seenimoa/solarprop/internal/sensitivity"
	"github.com/seenimoa/solarprop/internal/sizing"
	"github.com/seenimoa/solarprop/pkg/models"
)

// FinancingRequest prices a known system.
type FinancingRequest struct {
	SystemCostUsd       float64 `json:"system_cost_usd"`
	AnnualSavingsUsd    float64 `json:"annual_savings_usd"`
	AnnualProductionKwh float64 `json:"annual_production_kwh"`
	AverageRate         float64 `json:"average_rate"`
	// DegradationRate defaults to the configured rate when nil.
	DegradationRate *float64 `json:"degradation_rate,omitempty"`
}

// SensitivityRequest stress-tests a known system.
type SensitivityRequest struct {
	SystemCostUsd    float64 `json:"system_cost_usd"`
	AnnualSavingsUsd float64 `json:"annual_savings_usd"`
	SolarKw          float64 `json:"solar_kw"`
	SiteRate         float64 `json:"site_rate"`
	MonteCarlo       bool    `json:"monte_carlo"`
	Seed             *int64  `json:"seed,omitempty"`
	Iterations       int     `json:"iterations,omitempty"`
}

// ProposalRequest sizes a site and analyses the recommended option.
type ProposalRequest struct {
	sizing.Request
	MonteCarlo bool   `json:"monte_carlo"`
	Seed       *int64 `json:"seed,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
}

// Service runs proposal operations against a fixed set of assumptions.
type Service struct {
	assumptions Assumptions
	sizer       *sizing.Generator
	estimator   production.Estimator
	log         *slog.Logger
}

// NewService validates the assumptions and builds the sizing generator.
func NewService(a Assumptions, estimator production.Estimator, logger *slog.Logger) (*Service, error) {
	sizer, err := sizing.NewGenerator(a.Sizing, a.PriceBook, a.Policy, a.Terms, estimator, logger)
	if err != nil {
		return nil, fmt.Errorf("building sizing generator: %w", err)
	}
	return &Service{
		assumptions: a,
		sizer:       sizer,
		estimator:   estimator,
		log:         logging.Component(logger, "proposal"),
	}, nil
}

// Assumptions returns the active assumptions.
func (s *Service) Assumptions() Assumptions {
	return s.assumptions
}

// EstimatorName reports which production source is in use.
func (s *Service) EstimatorName() string {
	return s.estimator.Name()
}

// CompareSizes generates the small/medium/large comparison.
func (s *Service) CompareSizes(ctx context.Context, req sizing.Request) (*models.SizingComparison, error) {
	return s.sizer.Generate(ctx, req)
}

// CompareFinancing prices every financing structure and recommends one.
func (s *Service) CompareFinancing(ctx context.Context, req FinancingRequest) (*models.FinancingComparison, error) {
	degradation := s.assumptions.DegradationRate
	if req.DegradationRate != nil {
		degradation = *req.DegradationRate
	}
	cmp, err := financing.Compare(financing.Input{
		SystemCostUsd:       req.SystemCostUsd,
		AnnualSavingsUsd:    req.AnnualSavingsUsd,
		AnnualProductionKwh: req.AnnualProductionKwh,
		AverageRate:         req.AverageRate,
		DegradationRate:     degradation,
	}, s.assumptions.Terms)
	if err != nil {
		return nil, err
	}

	sel, ok := recommend.SelectFinancing(cmp.Options, recommend.FinancingContext{
		MonthlySavingsUsd:  req.AnnualSavingsUsd / models.MonthsPerYear,
		LifetimeSavingsUsd: cmp.LifetimeSavingsUsd,
	})
	if ok {
		cmp.RecommendedOption = sel.Winner
		cmp.Selection = &sel
	}

	s.log.Info("financing compared", "id", cmp.ID, "system_cost", req.SystemCostUsd,
		"recommended", cmp.RecommendedOption, "issues", len(cmp.Issues))
	return cmp, nil
}

// Analyze runs the scenario, tornado and optional Monte Carlo analysis.
func (s *Service) Analyze(ctx context.Context, req SensitivityRequest) (*models.SensitivityAnalysis, error) {
	if req.SystemCostUsd < 0 {
		return nil, &models.InputError{Field: "system_cost_usd", Detail: fmt.Sprintf("must not be negative, got %g", req.SystemCostUsd)}
	}
	b := sensitivity.Baseline{
		NetCostUsd:          financing.NetCost(req.SystemCostUsd, s.assumptions.Terms),
		FirstYearSavingsUsd: req.AnnualSavingsUsd,
		SolarKw:             req.SolarKw,
		SiteRate:            req.SiteRate,
		Years:               s.assumptions.Terms.AnalysisYears,
		DiscountFirstYear:   s.assumptions.Terms.DiscountFirstYear,
	}

	start := time.Now()
	a, err := sensitivity.Analyze(ctx, b, s.assumptions.Scenarios, s.options(req.MonteCarlo, req.Seed, req.Iterations))
	if err != nil {
		return nil, err
	}
	s.log.Info("sensitivity analysed", "id", a.ID, "baseline_npv", a.BaselineNPVUsd,
		"monte_carlo", req.MonteCarlo, "elapsed", time.Since(start))
	return a, nil
}

func (s *Service) options(monteCarlo bool, seed *int64, iterations int) sensitivity.Options {
	opts := sensitivity.Options{
		MonteCarlo: monteCarlo,
		Seed:       s.assumptions.MonteCarloSeed,
		Iterations: iterations,
	}
	if seed != nil {
		opts.Seed = *seed
	}
	return opts
}

// BuildProposal sizes the site, then finances and stress-tests the
// recommended option. When no option is viable the proposal carries only
// the sizing comparison and its issues.
func (s *Service) BuildProposal(ctx context.Context, req ProposalRequest) (*models.Proposal, error) {
	sizes, err := s.CompareSizes(ctx, req.Request)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Sizing:    sizes,
		Issues:    append([]models.Issue(nil), sizes.Issues...),
	}
	chosen, ok := sizes.Option(sizes.RecommendedOption)
	if !ok {
		s.log.Warn("proposal has no viable size", "id", p.ID)
		return p, nil
	}

	rate := req.Usage.AverageRateUsdPerKwh()
	fin, err := s.CompareFinancing(ctx, FinancingRequest{
		SystemCostUsd:       chosen.SystemCostUsd,
		AnnualSavingsUsd:    chosen.AnnualSavingsUsd,
		AnnualProductionKwh: chosen.AnnualProductionKwh(),
		AverageRate:         rate,
		DegradationRate:     &chosen.Production.AnnualDegradationRate,
	})
	if err != nil {
		return nil, fmt.Errorf("financing %s option: %w", chosen.Size, err)
	}
	p.Financing = fin
	p.Issues = append(p.Issues, fin.Issues...)

	sens, err := s.Analyze(ctx, SensitivityRequest{
		SystemCostUsd:    chosen.SystemCostUsd,
		AnnualSavingsUsd: chosen.AnnualSavingsUsd,
		SolarKw:          chosen.SolarKw,
		SiteRate:         rate,
		MonteCarlo:       req.MonteCarlo,
		Seed:             req.Seed,
		Iterations:       req.Iterations,
	})
	if err != nil {
		return nil, fmt.Errorf("analysing %s option: %w", chosen.Size, err)
	}
	p.Sensitivity = sens
	p.Issues = append(p.Issues, sens.Issues...)

	s.log.Info("proposal built", "id", p.ID, "size", chosen.Size,
		"financing", fin.RecommendedOption, "issues", len(p.Issues))
	return p, nil
}
