// Package sizing generates small, medium and large candidate systems for a
// site and prices each one.
package sizing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/solarprop/internal/cost"
	"github.com/seenimoa/solarprop/internal/financing"
	"github.com/seenimoa/solarprop/internal/logging"
	"github.com/seenimoa/solarprop/internal/production"
	"github.com/seenimoa/solarprop/internal/recommend"
	"github.com/seenimoa/solarprop/internal/savings"
	"github.com/seenimoa/solarprop/pkg/models"
)

const daysPerYear = 365

// Config controls candidate generation.
type Config struct {
	SmallOffsetPercent         float64       `json:"small_offset_percent"`
	MediumOffsetPercent        float64       `json:"medium_offset_percent"`
	LargeOffsetPercent         float64       `json:"large_offset_percent"`
	PeakSunHours               float64       `json:"peak_sun_hours"`
	MaxSystemKw                float64       `json:"max_system_kw"`
	IncludeBattery             bool          `json:"include_battery"`
	CriticalLoadFraction       float64       `json:"critical_load_fraction"`
	BatteryOverheadFactor      float64       `json:"battery_overhead_factor"`
	MaxBatteryKwh              float64       `json:"max_battery_kwh"`
	InverterOversizeMultiplier float64       `json:"inverter_oversize_multiplier"`
	EstimateTimeout            time.Duration `json:"estimate_timeout"`
}

// DefaultConfig returns 75/100/125% offsets capped at 10 kW with battery
// backup.
func DefaultConfig() Config {
	return Config{
		SmallOffsetPercent:         75,
		MediumOffsetPercent:        100,
		LargeOffsetPercent:         125,
		PeakSunHours:               4,
		MaxSystemKw:                10,
		IncludeBattery:             true,
		CriticalLoadFraction:       0.30,
		BatteryOverheadFactor:      1.2,
		MaxBatteryKwh:              30,
		InverterOversizeMultiplier: 1.0,
		EstimateTimeout:            10 * time.Second,
	}
}

// OffsetPercent returns the target offset for a tier.
func (c Config) OffsetPercent(tier models.SizeTier) float64 {
	switch tier {
	case models.TierSmall:
		return c.SmallOffsetPercent
	case models.TierLarge:
		return c.LargeOffsetPercent
	default:
		return c.MediumOffsetPercent
	}
}

// Validate rejects configurations that cannot produce a system.
func (c Config) Validate() error {
	if c.PeakSunHours <= 0 {
		return &models.InputError{Field: "peak_sun_hours", Detail: fmt.Sprintf("must be positive, got %g", c.PeakSunHours)}
	}
	if c.MaxSystemKw <= 0 {
		return &models.InputError{Field: "max_system_kw", Detail: fmt.Sprintf("must be positive, got %g", c.MaxSystemKw)}
	}
	for _, tier := range models.Tiers() {
		if c.OffsetPercent(tier) <= 0 {
			return &models.InputError{Field: string(tier) + "_offset_percent", Detail: "must be positive"}
		}
	}
	if c.IncludeBattery && (c.CriticalLoadFraction < 0 || c.BatteryOverheadFactor < 1 || c.MaxBatteryKwh < 0) {
		return &models.InputError{Field: "battery", Detail: "critical load and cap must not be negative, overhead must be at least 1"}
	}
	if c.InverterOversizeMultiplier <= 0 {
		return &models.InputError{Field: "inverter_oversize_multiplier", Detail: fmt.Sprintf("must be positive, got %g", c.InverterOversizeMultiplier)}
	}
	return nil
}

// Request describes the site to size for.
type Request struct {
	Usage    models.UsageProfile `json:"usage"`
	Location models.Location     `json:"location"`
	// PeakSunHours overrides the configured value when positive.
	PeakSunHours float64 `json:"peak_sun_hours,omitempty"`
}

// Generator builds SizingComparisons.
type Generator struct {
	cfg       Config
	book      cost.PriceBook
	policy    savings.Policy
	terms     financing.Terms
	estimator production.Estimator
	log       *slog.Logger
}

// NewGenerator validates its inputs and returns a Generator.
func NewGenerator(cfg Config, book cost.PriceBook, policy savings.Policy, terms financing.Terms,
	estimator production.Estimator, logger *slog.Logger) (*Generator, error) {
	if estimator == nil {
		return nil, errors.New("sizing: production estimator is required")
	}
	for _, v := range []interface{ Validate() error }{cfg, book, policy, terms} {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if maxPanels(cfg.MaxSystemKw, book.PanelWattage) < 1 {
		return nil, &models.InputError{Field: "max_system_kw",
			Detail: fmt.Sprintf("%g kW cannot fit a single %g W panel", cfg.MaxSystemKw, book.PanelWattage)}
	}
	return &Generator{
		cfg:       cfg,
		book:      book,
		policy:    policy,
		terms:     terms,
		estimator: estimator,
		log:       logging.Component(logger, "sizing"),
	}, nil
}

// ════════════════════════════════════════════════════════════════════
// Sizing arithmetic
// ════════════════════════════════════════════════════════════════════

// TargetKw converts an offset percentage of daily usage into array size.
func TargetKw(offsetPercent, annualUsageKwh, peakSunHours float64) float64 {
	return offsetPercent / 100 * (annualUsageKwh / daysPerYear) / peakSunHours
}

// PanelLayout rounds a target size up to whole panels without exceeding
// maxKw. When the target or its rounding exceeds the cap, the panel count
// is recomputed from the cap and clamped is true.
func PanelLayout(targetKw, maxKw, panelWattage float64) (panels int, clamped bool) {
	limit := maxPanels(maxKw, panelWattage)
	if targetKw > maxKw {
		return limit, true
	}
	panels = int(math.Ceil(targetKw*1000/panelWattage - panelEps))
	if panels > limit {
		return limit, true
	}
	return panels, false
}

const panelEps = 1e-9

// maxPanels is the number of whole panels that fit under maxKw.
func maxPanels(maxKw, panelWattage float64) int {
	return int(math.Floor(maxKw*1000/panelWattage + panelEps))
}

// BatteryKwh sizes storage for a tier: half a day of critical load for
// small, a full day for medium, two days capped at MaxBatteryKwh for
// large, always grossed up by the overhead factor.
func (c Config) BatteryKwh(tier models.SizeTier, dailyUsageKwh float64) float64 {
	if !c.IncludeBattery {
		return 0
	}
	critical := c.CriticalLoadFraction * dailyUsageKwh
	var usable float64
	switch tier {
	case models.TierSmall:
		usable = 0.5 * critical
	case models.TierMedium:
		usable = critical
	case models.TierLarge:
		usable = math.Min(2*critical, c.MaxBatteryKwh)
	}
	return usable * c.BatteryOverheadFactor
}

// Plan sizes one tier. Production and economics are filled in later.
func (g *Generator) Plan(tier models.SizeTier, usage models.UsageProfile, peakSunHours float64) models.SizingOption {
	offset := g.cfg.OffsetPercent(tier)
	target := TargetKw(offset, usage.AnnualUsageKwh, peakSunHours)
	panels, clamped := PanelLayout(target, g.cfg.MaxSystemKw, g.book.PanelWattage)
	solarKw := float64(panels) * g.book.PanelWattage / 1000

	return models.SizingOption{
		Size:                tier,
		TargetOffsetPercent: offset,
		TargetKw:            target,
		SolarKw:             solarKw,
		PanelCount:          panels,
		PanelWattage:        g.book.PanelWattage,
		Clamped:             clamped,
		BatteryKwh:          g.cfg.BatteryKwh(tier, usage.DailyUsageKwh()),
		InverterKw:          solarKw * g.cfg.InverterOversizeMultiplier,
		AnnualUsageKwh:      usage.AnnualUsageKwh,
		Status:              models.StatusOK,
	}
}

// ════════════════════════════════════════════════════════════════════
// Generation
// ════════════════════════════════════════════════════════════════════

// Generate sizes and prices the three tiers. Production estimates are
// fetched concurrently; a failed estimate marks only that option failed.
// Input errors abort the whole request.
func (g *Generator) Generate(ctx context.Context, req Request) (*models.SizingComparison, error) {
	if err := req.Usage.Validate(); err != nil {
		return nil, err
	}
	if err := req.Location.Validate(); err != nil {
		return nil, err
	}
	psh := g.cfg.PeakSunHours
	if req.PeakSunHours > 0 {
		psh = req.PeakSunHours
	}

	tiers := models.Tiers()
	options := make([]models.SizingOption, len(tiers))
	for i, tier := range tiers {
		options[i] = g.Plan(tier, req.Usage, psh)
	}

	if err := g.estimate(ctx, options, req.Location); err != nil {
		return nil, err
	}

	cmp := &models.SizingComparison{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Usage:     req.Usage,
		Location:  req.Location,
		Options:   options,
	}
	for i := range options {
		if !options[i].Viable() {
			cmp.Issues = append(cmp.Issues, options[i].Issues...)
			continue
		}
		if err := g.price(&options[i], req.Usage); err != nil {
			return nil, fmt.Errorf("pricing %s option: %w", options[i].Size, err)
		}
		cmp.Issues = append(cmp.Issues, options[i].Issues...)
	}

	if sel, ok := recommend.SelectSize(options); ok {
		cmp.RecommendedOption = models.SizeTier(sel.Winner)
		cmp.Selection = &sel
	} else {
		cmp.Issues = append(cmp.Issues, models.Failure(models.IssueNoViableOption, "",
			"no sizing option could be priced"))
	}

	g.log.Info("sizing generated", "id", cmp.ID, "usage_kwh", req.Usage.AnnualUsageKwh,
		"recommended", cmp.RecommendedOption, "issues", len(cmp.Issues))
	return cmp, nil
}

// estimate fans out one production request per option and joins them
// before any scoring.
func (g *Generator) estimate(ctx context.Context, options []models.SizingOption, loc models.Location) error {
	var mu sync.Mutex
	eg, gctx := errgroup.WithContext(ctx)

	for i := range options {
		opt := &options[i]
		eg.Go(func() error {
			cctx := gctx
			if g.cfg.EstimateTimeout > 0 {
				var cancel context.CancelFunc
				cctx, cancel = context.WithTimeout(gctx, g.cfg.EstimateTimeout)
				defer cancel()
			}

			est, err := g.estimator.Estimate(cctx, opt.SolarKw, loc)
			if err == nil && est == nil {
				err = &production.ServiceError{Source: g.estimator.Name(), Err: errors.New("no estimate returned")}
			}
			if err != nil {
				var inputErr *models.InputError
				if errors.As(err, &inputErr) {
					return err
				}
				g.log.Warn("production estimate failed", "size", opt.Size, "solar_kw", opt.SolarKw, "error", err)
				mu.Lock()
				opt.Status = models.StatusFailed
				opt.Error = err.Error()
				opt.Issues = append(opt.Issues, models.Failure(models.IssueExternalService, string(opt.Size),
					"production estimate unavailable: %v", err))
				mu.Unlock()
				return nil // non-fatal
			}
			mu.Lock()
			opt.Production = est
			mu.Unlock()
			return nil
		})
	}
	return eg.Wait()
}

// price fills in cost, savings, cash metrics and the bill projection.
func (g *Generator) price(opt *models.SizingOption, usage models.UsageProfile) error {
	systemCost, err := cost.SystemCost(opt.SolarKw, opt.BatteryKwh, opt.InverterKw, g.book)
	if err != nil {
		return err
	}
	rate := usage.AverageRateUsdPerKwh()
	annualSavings, err := savings.AnnualSavings(opt.AnnualProductionKwh(), usage.AnnualUsageKwh,
		usage.AnnualBillCostUsd, rate, g.policy)
	if err != nil {
		return err
	}

	metrics, issues := financing.CashMetrics(systemCost, annualSavings, g.terms)
	for i := range issues {
		issues[i].Option = string(opt.Size)
	}
	opt.CashMetrics = metrics
	opt.Issues = append(opt.Issues, issues...)
	opt.MonthlyBills = savings.MonthlyBills(usage.Monthly(), opt.Production.MonthlyProductionKwh, rate, g.policy)
	return nil
}
