package sensitivity

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mathext/prng"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seenimoa/solarprop/pkg/models"
)

// MonteCarloConfig sizes the simulation and sets the spread of each
// parameter. The electricity-rate spread is a fraction of the mean rate.
// MaxIterations caps request-supplied sizes; zero means no cap.
type MonteCarloConfig struct {
	Iterations    int                          `json:"iterations"`
	MaxIterations int                          `json:"max_iterations"`
	Workers       int                          `json:"workers"`
	StdDev        map[models.Parameter]float64 `json:"std_dev"`
}

// DefaultMonteCarloConfig returns 1000 iterations over 4 shards.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		Iterations:    1000,
		MaxIterations: 100_000,
		Workers:       4,
		StdDev: map[models.Parameter]float64{
			models.ParamUtilityEscalation: 0.01,
			models.ParamElectricityRate:   0.10,
			models.ParamDegradation:       0.002,
			models.ParamDiscountRate:      0.01,
			models.ParamOMCost:            5,
		},
	}
}

// bounds keep draws physically meaningful.
var bounds = map[models.Parameter][2]float64{
	models.ParamUtilityEscalation: {-0.05, 0.15},
	models.ParamElectricityRate:   {0, math.Inf(1)},
	models.ParamDegradation:       {0, 0.05},
	models.ParamDiscountRate:      {0, 0.25},
	models.ParamOMCost:            {0, math.Inf(1)},
}

// checkEvery is how many draws Simulate runs between context checks.
const checkEvery = 1024

// ShardSource returns the random source for shard s of a seeded run, a
// xoshiro256** generator seeded with seed+s.
func ShardSource(seed int64, shard int) rand.Source {
	return prng.NewXoshiro256starstar(uint64(seed + int64(shard)))
}

// Draw samples one parameter set around mean, each parameter from a normal
// distribution on src and clamped to its bounds.
func Draw(src rand.Source, mean models.ScenarioParameters, stdDev map[models.Parameter]float64) models.ScenarioParameters {
	p := mean
	for _, param := range models.Parameters() {
		sd := math.Abs(stdDev[param])
		if param == models.ParamElectricityRate {
			sd *= mean.ElectricityRate
		}
		v := distuv.Normal{Mu: mean.Get(param), Sigma: sd, Src: src}.Rand()
		b := bounds[param]
		p = p.With(param, math.Min(b[1], math.Max(b[0], v)))
	}
	return p
}

// Simulate runs n draws on src and returns the finite 25-year ROIs and the
// number of draws discarded as non-finite. It stops with ctx's error once
// ctx is done.
func Simulate(ctx context.Context, b Baseline, mean models.ScenarioParameters, stdDev map[models.Parameter]float64,
	src rand.Source, n int) ([]float64, int, error) {
	rois := make([]float64, 0, n)
	discarded := 0
	for i := 0; i < n; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		roi := Project(b, Draw(src, mean, stdDev)).ROI25Year
		if math.IsNaN(roi) || math.IsInf(roi, 0) {
			discarded++
			continue
		}
		rois = append(rois, roi)
	}
	return rois, discarded, nil
}

// MonteCarlo runs the simulation sharded across cfg.Workers goroutines.
// Shard s draws from ShardSource(seed, s), and shard results are
// concatenated in shard order, so a given (seed, iterations, workers)
// always yields the same result.
func MonteCarlo(ctx context.Context, b Baseline, mean models.ScenarioParameters, cfg MonteCarloConfig, seed int64) (*models.MonteCarloResult, error) {
	n := cfg.Iterations
	if n < 0 {
		return nil, &models.InputError{Field: "iterations", Detail: fmt.Sprintf("must not be negative, got %d", n)}
	}
	if cfg.MaxIterations > 0 && n > cfg.MaxIterations {
		return nil, &models.InputError{Field: "iterations", Detail: fmt.Sprintf("must not exceed %d, got %d", cfg.MaxIterations, n)}
	}
	workers := max(1, min(cfg.Workers, n))

	shards := make([][]float64, workers)
	discards := make([]int, workers)
	eg, gctx := errgroup.WithContext(ctx)
	for s := 0; s < workers; s++ {
		count := n / workers
		if s < n%workers {
			count++
		}
		eg.Go(func() error {
			var err error
			shards[s], discards[s], err = Simulate(gctx, b, mean, cfg.StdDev, ShardSource(seed, s), count)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var rois []float64
	res := &models.MonteCarloResult{Iterations: n, Seed: seed}
	for s := range shards {
		rois = append(rois, shards[s]...)
		res.Discarded += discards[s]
	}
	summarize(res, rois)
	return res, nil
}

// summarize fills in the distribution statistics. Percentiles are read by
// index from the sorted sample: sorted[n×p/100].
func summarize(res *models.MonteCarloResult, rois []float64) {
	if len(rois) == 0 {
		return
	}
	sorted := append([]float64(nil), rois...)
	sort.Float64s(sorted)

	res.MeanROI, _ = stats.Mean(sorted)
	res.MedianROI, _ = stats.Median(sorted)
	if len(sorted) > 1 {
		res.StdDeviation, _ = stats.StandardDeviationSample(sorted)
	}
	res.P10 = percentile(sorted, 10)
	res.P50 = percentile(sorted, 50)
	res.P90 = percentile(sorted, 90)

	positive := 0
	for _, r := range sorted {
		if r > 0 {
			positive++
		}
	}
	res.ProbabilityPositiveROI = float64(positive) / float64(len(sorted)) * 100
}

func percentile(sorted []float64, p int) float64 {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
