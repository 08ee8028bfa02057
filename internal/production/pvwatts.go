package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/solarprop/internal/infra"
	"github.com/seenimoa/solarprop/internal/logging"
	"github.com/seenimoa/solarprop/pkg/models"
)

// DefaultPVWattsURL is the NREL PVWatts v8 JSON endpoint.
const DefaultPVWattsURL = "https://developer.nrel.gov/api/pvwatts/v8.json"

// minSystemCapacity is the smallest array PVWatts accepts, in kW.
const minSystemCapacity = 0.05

// PVWattsOptions configures the PVWatts client.
type PVWattsOptions struct {
	URL             string
	APIKey          string
	Azimuth         float64
	Tilt            float64
	ArrayType       int
	ModuleType      int
	Losses          float64 // percent
	DegradationRate float64
	Client          *http.Client
	CacheTTL        time.Duration
	RateLimit       int // requests per minute; 0 disables limiting
	Logger          *slog.Logger
}

// PVWatts estimates yield with NREL's PVWatts v8 API. Responses are cached
// per (kW, lat, lon) and requests are rate limited.
type PVWatts struct {
	opts    PVWattsOptions
	cache   *infra.Cache[models.ProductionEstimate]
	limiter *infra.RateLimiter
	log     *slog.Logger
}

// NewPVWatts validates opts and returns a client.
func NewPVWatts(opts PVWattsOptions) (*PVWatts, error) {
	if opts.APIKey == "" {
		return nil, errors.New("pvwatts: API key is required")
	}
	if opts.URL == "" {
		opts.URL = DefaultPVWattsURL
	}
	if opts.Client == nil {
		opts.Client = infra.DefaultClient
	}
	return &PVWatts{
		opts:    opts,
		cache:   infra.NewCache[models.ProductionEstimate](opts.CacheTTL),
		limiter: infra.NewRateLimiter(opts.RateLimit, time.Minute),
		log:     logging.Component(opts.Logger, "pvwatts"),
	}, nil
}

// Name implements Estimator.
func (p *PVWatts) Name() string { return SourcePVWatts }

// pvwattsResponse is the subset of the v8 response we read.
type pvwattsResponse struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Outputs  struct {
		ACMonthly []float64 `json:"ac_monthly"`
		ACAnnual  float64   `json:"ac_annual"`
	} `json:"outputs"`
}

// Estimate implements Estimator. Every failure after input validation is a
// *ServiceError.
func (p *PVWatts) Estimate(ctx context.Context, solarKw float64, loc models.Location) (*models.ProductionEstimate, error) {
	if err := validateRequest(solarKw, loc); err != nil {
		return nil, err
	}
	if solarKw < minSystemCapacity {
		// Below the API's floor; nothing to fetch.
		return &models.ProductionEstimate{AnnualDegradationRate: p.opts.DegradationRate, Source: SourcePVWatts}, nil
	}

	key := fmt.Sprintf("%.3f:%.4f:%.4f", solarKw, loc.Latitude, loc.Longitude)
	if est, ok := p.cache.Get(key); ok {
		p.log.Debug("cache hit", "key", key)
		return &est, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, p.fail(fmt.Errorf("rate limit: %w", err))
	}

	start := time.Now()
	est, err := p.fetch(ctx, solarKw, loc)
	if err != nil {
		p.log.Warn("estimate failed", "solar_kw", solarKw, "error", err)
		return nil, p.fail(err)
	}
	p.log.Debug("estimate fetched", "solar_kw", solarKw,
		"annual_kwh", est.AnnualProductionKwh, "elapsed", time.Since(start))

	p.cache.Cleanup()
	p.cache.Set(key, *est)
	p.log.Debug("estimate cached", "key", key, "entries", p.cache.Len())
	return est, nil
}

func (p *PVWatts) fail(err error) error {
	return &ServiceError{Source: SourcePVWatts, Err: err}
}

func (p *PVWatts) requestURL(solarKw float64, loc models.Location) string {
	q := url.Values{}
	q.Set("api_key", p.opts.APIKey)
	q.Set("system_capacity", formatFloat(solarKw))
	q.Set("lat", formatFloat(loc.Latitude))
	q.Set("lon", formatFloat(loc.Longitude))
	q.Set("azimuth", formatFloat(p.opts.Azimuth))
	q.Set("tilt", formatFloat(p.opts.Tilt))
	q.Set("array_type", strconv.Itoa(p.opts.ArrayType))
	q.Set("module_type", strconv.Itoa(p.opts.ModuleType))
	q.Set("losses", formatFloat(p.opts.Losses))
	return p.opts.URL + "?" + q.Encode()
}

func (p *PVWatts) fetch(ctx context.Context, solarKw float64, loc models.Location) (*models.ProductionEstimate, error) {
	body, status, err := infra.DoGetWith(ctx, p.opts.Client, p.requestURL(solarKw, loc),
		map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var resp pvwattsResponse
	decodeErr := json.Unmarshal(raw, &resp)
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("HTTP %d: %s", status, strings.Join(resp.Errors, "; "))
	}
	if status >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", status, truncate(string(raw), 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if len(resp.Outputs.ACMonthly) != models.MonthsPerYear {
		return nil, fmt.Errorf("expected %d monthly values, got %d", models.MonthsPerYear, len(resp.Outputs.ACMonthly))
	}
	for _, w := range resp.Warnings {
		p.log.Debug("service warning", "warning", w)
	}

	est := &models.ProductionEstimate{
		AnnualProductionKwh:   resp.Outputs.ACAnnual,
		AnnualDegradationRate: p.opts.DegradationRate,
		Source:                SourcePVWatts,
	}
	copy(est.MonthlyProductionKwh[:], resp.Outputs.ACMonthly)
	return est, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
