// Package config handles configuration loading for solarprop.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SOLARPROP"

// Config represents the complete application configuration.
type Config struct {
	Pricing    PricingConfig    `mapstructure:"pricing"     yaml:"pricing"`
	Finance    FinanceConfig    `mapstructure:"finance"     yaml:"finance"`
	Sizing     SizingConfig     `mapstructure:"sizing"      yaml:"sizing"`
	Scenarios  ScenariosConfig  `mapstructure:"scenarios"   yaml:"scenarios"`
	MonteCarlo MonteCarloConfig `mapstructure:"monte_carlo" yaml:"monte_carlo"`
	Production ProductionConfig `mapstructure:"production"  yaml:"production"`
	API        APIConfig        `mapstructure:"api"         yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"     yaml:"logging"`
}

// PricingConfig is the equipment price book.
type PricingConfig struct {
	CostPerWattSolar      float64 `mapstructure:"cost_per_watt_solar"     yaml:"cost_per_watt_solar"`
	CostPerKwhBattery     float64 `mapstructure:"cost_per_kwh_battery"    yaml:"cost_per_kwh_battery"`
	CostPerKwInverter     float64 `mapstructure:"cost_per_kw_inverter"    yaml:"cost_per_kw_inverter"`
	FixedInstallationCost float64 `mapstructure:"fixed_installation_cost" yaml:"fixed_installation_cost"`
	PanelWattage          float64 `mapstructure:"panel_wattage"           yaml:"panel_wattage"`
}

// FinanceConfig holds tax, discounting and financing-product assumptions.
type FinanceConfig struct {
	TaxCreditFraction     float64 `mapstructure:"tax_credit_fraction"     yaml:"tax_credit_fraction"`
	DiscountRate          float64 `mapstructure:"discount_rate"           yaml:"discount_rate"`
	UtilityRateEscalation float64 `mapstructure:"utility_rate_escalation" yaml:"utility_rate_escalation"`
	DegradationRate       float64 `mapstructure:"degradation_rate"        yaml:"degradation_rate"`
	AnalysisYears         int     `mapstructure:"analysis_years"          yaml:"analysis_years"`
	DiscountFirstYear     bool    `mapstructure:"discount_first_year"     yaml:"discount_first_year"`
	ExportCreditFraction  float64 `mapstructure:"export_credit_fraction"  yaml:"export_credit_fraction"`

	LoanRate                float64 `mapstructure:"loan_rate"                  yaml:"loan_rate"`
	LoanTermsYears          []int   `mapstructure:"loan_terms_years"           yaml:"loan_terms_years"`
	LoanDownPaymentFraction float64 `mapstructure:"loan_down_payment_fraction" yaml:"loan_down_payment_fraction"`

	LeaseSavingsFraction float64 `mapstructure:"lease_savings_fraction" yaml:"lease_savings_fraction"`
	LeaseEscalator       float64 `mapstructure:"lease_escalator"        yaml:"lease_escalator"`
	LeaseTermYears       int     `mapstructure:"lease_term_years"       yaml:"lease_term_years"`

	PPARateFraction float64 `mapstructure:"ppa_rate_fraction" yaml:"ppa_rate_fraction"`
	PPAEscalator    float64 `mapstructure:"ppa_escalator"     yaml:"ppa_escalator"`
	PPATermYears    int     `mapstructure:"ppa_term_years"    yaml:"ppa_term_years"`
}

// SizingConfig drives candidate generation.
type SizingConfig struct {
	SmallOffsetPercent         float64 `mapstructure:"small_offset_percent"         yaml:"small_offset_percent"`
	MediumOffsetPercent        float64 `mapstructure:"medium_offset_percent"        yaml:"medium_offset_percent"`
	LargeOffsetPercent         float64 `mapstructure:"large_offset_percent"         yaml:"large_offset_percent"`
	PeakSunHours               float64 `mapstructure:"peak_sun_hours"               yaml:"peak_sun_hours"`
	MaxSystemKw                float64 `mapstructure:"max_system_kw"                yaml:"max_system_kw"`
	IncludeBattery             bool    `mapstructure:"include_battery"              yaml:"include_battery"`
	CriticalLoadFraction       float64 `mapstructure:"critical_load_fraction"       yaml:"critical_load_fraction"`
	BatteryOverheadFactor      float64 `mapstructure:"battery_overhead_factor"      yaml:"battery_overhead_factor"`
	MaxBatteryKwh              float64 `mapstructure:"max_battery_kwh"              yaml:"max_battery_kwh"`
	InverterOversizeMultiplier float64 `mapstructure:"inverter_oversize_multiplier" yaml:"inverter_oversize_multiplier"`
	FixedMonthlyChargeUsd      float64 `mapstructure:"fixed_monthly_charge_usd"     yaml:"fixed_monthly_charge_usd"`
}

// ScenarioConfig is one named set of market assumptions. RateMultiplier
// scales the site's own average rate.
type ScenarioConfig struct {
	UtilityRateEscalation float64 `mapstructure:"utility_rate_escalation" yaml:"utility_rate_escalation"`
	SystemDegradation     float64 `mapstructure:"system_degradation"      yaml:"system_degradation"`
	RateMultiplier        float64 `mapstructure:"rate_multiplier"         yaml:"rate_multiplier"`
	DiscountRate          float64 `mapstructure:"discount_rate"           yaml:"discount_rate"`
	OMCostPerKw           float64 `mapstructure:"om_cost_per_kw"          yaml:"om_cost_per_kw"`
}

// RangeConfig is a tornado low/high pair.
type RangeConfig struct {
	Low  float64 `mapstructure:"low"  yaml:"low"`
	High float64 `mapstructure:"high" yaml:"high"`
}

// TornadoConfig holds the one-at-a-time perturbation ranges. The
// electricity rate range is expressed as multipliers.
type TornadoConfig struct {
	UtilityRateEscalation RangeConfig `mapstructure:"utility_rate_escalation" yaml:"utility_rate_escalation"`
	RateMultiplier        RangeConfig `mapstructure:"rate_multiplier"         yaml:"rate_multiplier"`
	SystemDegradation     RangeConfig `mapstructure:"system_degradation"      yaml:"system_degradation"`
	DiscountRate          RangeConfig `mapstructure:"discount_rate"           yaml:"discount_rate"`
	OMCostPerKw           RangeConfig `mapstructure:"om_cost_per_kw"          yaml:"om_cost_per_kw"`
}

// ScenariosConfig holds the canonical scenarios and tornado ranges.
type ScenariosConfig struct {
	Expected ScenarioConfig `mapstructure:"expected" yaml:"expected"`
	Best     ScenarioConfig `mapstructure:"best"     yaml:"best"`
	Worst    ScenarioConfig `mapstructure:"worst"    yaml:"worst"`

	FlatRateEscalation  float64 `mapstructure:"flat_rate_escalation"  yaml:"flat_rate_escalation"`
	HighDegradationRate float64 `mapstructure:"high_degradation_rate" yaml:"high_degradation_rate"`

	Tornado TornadoConfig `mapstructure:"tornado" yaml:"tornado"`
}

// MonteCarloConfig holds simulation size and per-parameter spread.
type MonteCarloConfig struct {
	Iterations         int     `mapstructure:"iterations"            yaml:"iterations"`
	MaxIterations      int     `mapstructure:"max_iterations"        yaml:"max_iterations"` // 0 = no cap
	Workers            int     `mapstructure:"workers"               yaml:"workers"`
	Seed               int64   `mapstructure:"seed"                  yaml:"seed"`
	EscalationStdDev   float64 `mapstructure:"escalation_std_dev"    yaml:"escalation_std_dev"`
	RateStdDevFraction float64 `mapstructure:"rate_std_dev_fraction" yaml:"rate_std_dev_fraction"`
	DegradationStdDev  float64 `mapstructure:"degradation_std_dev"   yaml:"degradation_std_dev"`
	DiscountStdDev     float64 `mapstructure:"discount_std_dev"      yaml:"discount_std_dev"`
	OMCostStdDev       float64 `mapstructure:"om_cost_std_dev"       yaml:"om_cost_std_dev"`
}

// ProductionConfig selects and tunes the production estimator.
type ProductionConfig struct {
	Source         string        `mapstructure:"source"          yaml:"source"` // "capacity_factor" or "pvwatts"
	CapacityFactor float64       `mapstructure:"capacity_factor" yaml:"capacity_factor"`
	TimeoutSec     int           `mapstructure:"timeout_sec"     yaml:"timeout_sec"`
	CacheTTL       int           `mapstructure:"cache_ttl"       yaml:"cache_ttl"`  // seconds
	RateLimit      int           `mapstructure:"rate_limit"      yaml:"rate_limit"` // requests per minute
	PVWatts        PVWattsConfig `mapstructure:"pvwatts"         yaml:"pvwatts"`
}

// PVWattsConfig holds NREL PVWatts v8 request parameters.
type PVWattsConfig struct {
	URL        string  `mapstructure:"url"         yaml:"url"`
	APIKey     string  `mapstructure:"api_key"     yaml:"api_key"`
	Azimuth    float64 `mapstructure:"azimuth"     yaml:"azimuth"`
	Tilt       float64 `mapstructure:"tilt"        yaml:"tilt"`
	ArrayType  int     `mapstructure:"array_type"  yaml:"array_type"`
	ModuleType int     `mapstructure:"module_type" yaml:"module_type"`
	Losses     float64 `mapstructure:"losses"      yaml:"losses"` // percent
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host           string   `mapstructure:"host"            yaml:"host"`
	Port           int      `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout int      `mapstructure:"request_timeout" yaml:"request_timeout"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.solarprop/config.yaml (home directory)
//  3. /etc/solarprop/config.yaml (system)
//
// Environment variables override config file values.
// Format: SOLARPROP_<SECTION>_<KEY>, e.g., SOLARPROP_FINANCE_LOAN_RATE
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".solarprop"))
	v.AddConfigPath("/etc/solarprop")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the built-in defaults with environment overrides applied
// and no config file.
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Price book (USD)
	v.SetDefault("pricing.cost_per_watt_solar", 2.75)
	v.SetDefault("pricing.cost_per_kwh_battery", 800.0)
	v.SetDefault("pricing.cost_per_kw_inverter", 300.0)
	v.SetDefault("pricing.fixed_installation_cost", 2000.0)
	v.SetDefault("pricing.panel_wattage", 400.0)

	// Finance
	v.SetDefault("finance.tax_credit_fraction", 0.30)
	v.SetDefault("finance.discount_rate", 0.06)
	v.SetDefault("finance.utility_rate_escalation", 0.03)
	v.SetDefault("finance.degradation_rate", 0.005)
	v.SetDefault("finance.analysis_years", 25)
	v.SetDefault("finance.discount_first_year", false)
	v.SetDefault("finance.export_credit_fraction", 0.70)
	v.SetDefault("finance.loan_rate", 0.0699)
	v.SetDefault("finance.loan_terms_years", []int{10, 15, 20})
	v.SetDefault("finance.loan_down_payment_fraction", 0.0)
	v.SetDefault("finance.lease_savings_fraction", 0.80)
	v.SetDefault("finance.lease_escalator", 0.029)
	v.SetDefault("finance.lease_term_years", 20)
	v.SetDefault("finance.ppa_rate_fraction", 0.85)
	v.SetDefault("finance.ppa_escalator", 0.029)
	v.SetDefault("finance.ppa_term_years", 25)

	// Sizing
	v.SetDefault("sizing.small_offset_percent", 75.0)
	v.SetDefault("sizing.medium_offset_percent", 100.0)
	v.SetDefault("sizing.large_offset_percent", 125.0)
	v.SetDefault("sizing.peak_sun_hours", 4.0)
	v.SetDefault("sizing.max_system_kw", 10.0)
	v.SetDefault("sizing.include_battery", true)
	v.SetDefault("sizing.critical_load_fraction", 0.30)
	v.SetDefault("sizing.battery_overhead_factor", 1.2)
	v.SetDefault("sizing.max_battery_kwh", 30.0)
	v.SetDefault("sizing.inverter_oversize_multiplier", 1.0)
	v.SetDefault("sizing.fixed_monthly_charge_usd", 10.0)

	// Scenarios
	setScenario(v, "expected", ScenarioConfig{0.03, 0.005, 1.0, 0.06, 20})
	setScenario(v, "best", ScenarioConfig{0.05, 0.0025, 1.10, 0.04, 10})
	setScenario(v, "worst", ScenarioConfig{0.01, 0.008, 0.90, 0.08, 30})
	v.SetDefault("scenarios.flat_rate_escalation", 0.0)
	v.SetDefault("scenarios.high_degradation_rate", 0.01)
	setRange(v, "utility_rate_escalation", 0.01, 0.05)
	setRange(v, "rate_multiplier", 0.8, 1.2)
	setRange(v, "system_degradation", 0.0025, 0.01)
	setRange(v, "discount_rate", 0.04, 0.08)
	setRange(v, "om_cost_per_kw", 10, 30)

	// Monte Carlo
	v.SetDefault("monte_carlo.iterations", 1000)
	v.SetDefault("monte_carlo.max_iterations", 100000)
	v.SetDefault("monte_carlo.workers", 4)
	v.SetDefault("monte_carlo.seed", 42)
	v.SetDefault("monte_carlo.escalation_std_dev", 0.01)
	v.SetDefault("monte_carlo.rate_std_dev_fraction", 0.10)
	v.SetDefault("monte_carlo.degradation_std_dev", 0.002)
	v.SetDefault("monte_carlo.discount_std_dev", 0.01)
	v.SetDefault("monte_carlo.om_cost_std_dev", 5.0)

	// Production
	v.SetDefault("production.source", "capacity_factor")
	v.SetDefault("production.capacity_factor", 0.16)
	v.SetDefault("production.timeout_sec", 10)
	v.SetDefault("production.cache_ttl", 3600) // 1 hour
	v.SetDefault("production.rate_limit", 60)
	v.SetDefault("production.pvwatts.url", "https://developer.nrel.gov/api/pvwatts/v8.json")
	v.SetDefault("production.pvwatts.azimuth", 180.0)
	v.SetDefault("production.pvwatts.tilt", 20.0)
	v.SetDefault("production.pvwatts.array_type", 1)
	v.SetDefault("production.pvwatts.module_type", 0)
	v.SetDefault("production.pvwatts.losses", 14.0)

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.request_timeout", 60)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func setScenario(v *viper.Viper, name string, s ScenarioConfig) {
	prefix := "scenarios." + name + "."
	v.SetDefault(prefix+"utility_rate_escalation", s.UtilityRateEscalation)
	v.SetDefault(prefix+"system_degradation", s.SystemDegradation)
	v.SetDefault(prefix+"rate_multiplier", s.RateMultiplier)
	v.SetDefault(prefix+"discount_rate", s.DiscountRate)
	v.SetDefault(prefix+"om_cost_per_kw", s.OMCostPerKw)
}

func setRange(v *viper.Viper, param string, low, high float64) {
	v.SetDefault("scenarios.tornado."+param+".low", low)
	v.SetDefault("scenarios.tornado."+param+".high", high)
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// NREL_API_KEY is honoured as a fallback since that is what NREL documents.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_PRODUCTION_PVWATTS_API_KEY"); key != "" {
		cfg.Production.PVWatts.APIKey = key
	} else if key := os.Getenv("NREL_API_KEY"); key != "" && cfg.Production.PVWatts.APIKey == "" {
		cfg.Production.PVWatts.APIKey = key
	}
}

// Validate checks the assumptions that would otherwise surface as
// nonsensical results deep inside a calculation.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	p := c.Pricing
	check(p.CostPerWattSolar >= 0 && p.CostPerKwhBattery >= 0 && p.CostPerKwInverter >= 0 && p.FixedInstallationCost >= 0,
		"pricing: costs must not be negative")
	check(p.PanelWattage > 0, "pricing.panel_wattage must be positive, got %g", p.PanelWattage)

	f := c.Finance
	check(f.AnalysisYears > 0, "finance.analysis_years must be positive, got %d", f.AnalysisYears)
	check(len(f.LoanTermsYears) > 0, "finance.loan_terms_years must not be empty")
	check(f.ExportCreditFraction >= 0 && f.ExportCreditFraction <= 1,
		"finance.export_credit_fraction must be within [0, 1], got %g", f.ExportCreditFraction)

	s := c.Sizing
	check(s.PeakSunHours > 0, "sizing.peak_sun_hours must be positive, got %g", s.PeakSunHours)
	check(s.MaxSystemKw > 0, "sizing.max_system_kw must be positive, got %g", s.MaxSystemKw)
	check(s.SmallOffsetPercent > 0 && s.MediumOffsetPercent > 0 && s.LargeOffsetPercent > 0,
		"sizing: offset percentages must be positive")
	check(s.BatteryOverheadFactor >= 1, "sizing.battery_overhead_factor must be at least 1, got %g", s.BatteryOverheadFactor)

	check(s.MaxSystemKw*1000 >= c.Pricing.PanelWattage,
		"sizing.max_system_kw of %g cannot fit a single %g W panel", s.MaxSystemKw, c.Pricing.PanelWattage)

	mc := c.MonteCarlo
	check(mc.Iterations >= 0, "monte_carlo.iterations must not be negative")
	check(mc.MaxIterations >= 0, "monte_carlo.max_iterations must not be negative")
	check(mc.MaxIterations == 0 || mc.Iterations <= mc.MaxIterations,
		"monte_carlo.iterations %d exceeds monte_carlo.max_iterations %d", mc.Iterations, mc.MaxIterations)

	switch c.Production.Source {
	case "capacity_factor", "pvwatts":
	default:
		errs = append(errs, fmt.Errorf("production.source %q is not supported", c.Production.Source))
	}

	check(c.Logging.Format == "text" || c.Logging.Format == "json",
		"logging.format must be text or json, got %q", c.Logging.Format)

	return errors.Join(errs...)
}

// Addr returns the API listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
