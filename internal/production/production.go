// Package production estimates the energy yield of a PV array at a site.
//
// Two estimators are provided: an offline capacity-factor model and a
// client for NREL's PVWatts v8 API. Both satisfy Estimator.
package production

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/pkg/models"
)

// Source names.
const (
	SourceCapacityFactor = "capacity_factor"
	SourcePVWatts        = "pvwatts"
)

// Estimator produces a first-year yield estimate for an array of solarKw
// at loc. Implementations must be safe for concurrent use.
type Estimator interface {
	Estimate(ctx context.Context, solarKw float64, loc models.Location) (*models.ProductionEstimate, error)
	Name() string
}

// ServiceError reports a failed call to an external estimate service. It
// is scoped to the option that requested it.
type ServiceError struct {
	Source string
	Err    error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// New builds the estimator selected by cfg.Source. degradation is the
// annual degradation rate attached to every estimate.
func New(cfg config.ProductionConfig, degradation float64, logger *slog.Logger) (Estimator, error) {
	switch cfg.Source {
	case SourceCapacityFactor, "":
		return NewCapacityFactor(cfg.CapacityFactor, degradation)
	case SourcePVWatts:
		return NewPVWatts(PVWattsOptions{
			URL:             cfg.PVWatts.URL,
			APIKey:          cfg.PVWatts.APIKey,
			Azimuth:         cfg.PVWatts.Azimuth,
			Tilt:            cfg.PVWatts.Tilt,
			ArrayType:       cfg.PVWatts.ArrayType,
			ModuleType:      cfg.PVWatts.ModuleType,
			Losses:          cfg.PVWatts.Losses,
			DegradationRate: degradation,
			Client:          &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
			CacheTTL:        time.Duration(cfg.CacheTTL) * time.Second,
			RateLimit:       cfg.RateLimit,
			Logger:          logger,
		})
	}
	return nil, fmt.Errorf("unknown production source %q", cfg.Source)
}

func validateRequest(solarKw float64, loc models.Location) error {
	if solarKw < 0 {
		return &models.InputError{Field: "solar_kw", Detail: fmt.Sprintf("must not be negative, got %g", solarKw)}
	}
	return loc.Validate()
}
