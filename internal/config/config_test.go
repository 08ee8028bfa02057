package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOLARPROP_PRODUCTION_PVWATTS_API_KEY", "")
	t.Setenv("NREL_API_KEY", "")
}

// ── Load / Defaults ──

func TestDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	// Price book
	if cfg.Pricing.CostPerWattSolar != 2.75 {
		t.Errorf("Pricing.CostPerWattSolar: got %f, want 2.75", cfg.Pricing.CostPerWattSolar)
	}
	if cfg.Pricing.CostPerKwhBattery != 800 {
		t.Errorf("Pricing.CostPerKwhBattery: got %f, want 800", cfg.Pricing.CostPerKwhBattery)
	}
	if cfg.Pricing.PanelWattage != 400 {
		t.Errorf("Pricing.PanelWattage: got %f, want 400", cfg.Pricing.PanelWattage)
	}

	// Finance
	if cfg.Finance.TaxCreditFraction != 0.30 {
		t.Errorf("Finance.TaxCreditFraction: got %f, want 0.30", cfg.Finance.TaxCreditFraction)
	}
	if cfg.Finance.LoanRate != 0.0699 {
		t.Errorf("Finance.LoanRate: got %f, want 0.0699", cfg.Finance.LoanRate)
	}
	if !slices.Equal(cfg.Finance.LoanTermsYears, []int{10, 15, 20}) {
		t.Errorf("Finance.LoanTermsYears: got %v", cfg.Finance.LoanTermsYears)
	}
	if cfg.Finance.ExportCreditFraction != 0.70 {
		t.Errorf("Finance.ExportCreditFraction: got %f, want 0.70", cfg.Finance.ExportCreditFraction)
	}
	if cfg.Finance.LeaseSavingsFraction != 0.80 || cfg.Finance.PPARateFraction != 0.85 {
		t.Errorf("lease/PPA fractions: got %f/%f", cfg.Finance.LeaseSavingsFraction, cfg.Finance.PPARateFraction)
	}
	if cfg.Finance.AnalysisYears != 25 {
		t.Errorf("Finance.AnalysisYears: got %d, want 25", cfg.Finance.AnalysisYears)
	}

	// Sizing
	if cfg.Sizing.MaxSystemKw != 10 {
		t.Errorf("Sizing.MaxSystemKw: got %f, want 10", cfg.Sizing.MaxSystemKw)
	}
	if cfg.Sizing.MediumOffsetPercent != 100 {
		t.Errorf("Sizing.MediumOffsetPercent: got %f, want 100", cfg.Sizing.MediumOffsetPercent)
	}
	if !cfg.Sizing.IncludeBattery {
		t.Error("Sizing.IncludeBattery should be true by default")
	}
	if cfg.Sizing.FixedMonthlyChargeUsd != 10 {
		t.Errorf("Sizing.FixedMonthlyChargeUsd: got %f, want 10", cfg.Sizing.FixedMonthlyChargeUsd)
	}

	// Scenarios
	if cfg.Scenarios.Best.UtilityRateEscalation != 0.05 {
		t.Errorf("Scenarios.Best.UtilityRateEscalation: got %f, want 0.05", cfg.Scenarios.Best.UtilityRateEscalation)
	}
	if cfg.Scenarios.Worst.DiscountRate != 0.08 {
		t.Errorf("Scenarios.Worst.DiscountRate: got %f, want 0.08", cfg.Scenarios.Worst.DiscountRate)
	}
	if cfg.Scenarios.Tornado.RateMultiplier.Low != 0.8 || cfg.Scenarios.Tornado.RateMultiplier.High != 1.2 {
		t.Errorf("Tornado.RateMultiplier: got %+v", cfg.Scenarios.Tornado.RateMultiplier)
	}

	// Monte Carlo
	if cfg.MonteCarlo.Iterations != 1000 {
		t.Errorf("MonteCarlo.Iterations: got %d, want 1000", cfg.MonteCarlo.Iterations)
	}
	if cfg.MonteCarlo.MaxIterations != 100000 {
		t.Errorf("MonteCarlo.MaxIterations: got %d, want 100000", cfg.MonteCarlo.MaxIterations)
	}

	// Production
	if cfg.Production.Source != "capacity_factor" {
		t.Errorf("Production.Source: got %q", cfg.Production.Source)
	}
	if !strings.Contains(cfg.Production.PVWatts.URL, "pvwatts/v8") {
		t.Errorf("Production.PVWatts.URL: got %q", cfg.Production.PVWatts.URL)
	}

	// API / logging
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr(): got %q", cfg.API.Addr())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearKeyEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
pricing:
  cost_per_watt_solar: 3.10
  panel_wattage: 430
finance:
  loan_rate: 0.0599
  loan_terms_years: [12, 20]
  discount_first_year: true
sizing:
  peak_sun_hours: 5.2
  include_battery: false
scenarios:
  best:
    rate_multiplier: 1.25
production:
  source: "pvwatts"
  pvwatts:
    api_key: "nrel_test_key_1234567890"
    tilt: 30
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Pricing.CostPerWattSolar != 3.10 {
		t.Errorf("Pricing.CostPerWattSolar: got %f, want 3.10", cfg.Pricing.CostPerWattSolar)
	}
	if cfg.Pricing.PanelWattage != 430 {
		t.Errorf("Pricing.PanelWattage: got %f, want 430", cfg.Pricing.PanelWattage)
	}
	if cfg.Pricing.CostPerKwhBattery != 800 {
		t.Errorf("unset values keep defaults, got %f", cfg.Pricing.CostPerKwhBattery)
	}
	if !slices.Equal(cfg.Finance.LoanTermsYears, []int{12, 20}) {
		t.Errorf("Finance.LoanTermsYears: got %v", cfg.Finance.LoanTermsYears)
	}
	if !cfg.Finance.DiscountFirstYear {
		t.Error("Finance.DiscountFirstYear should be true")
	}
	if cfg.Sizing.PeakSunHours != 5.2 || cfg.Sizing.IncludeBattery {
		t.Errorf("Sizing: got %+v", cfg.Sizing)
	}
	if cfg.Scenarios.Best.RateMultiplier != 1.25 {
		t.Errorf("Scenarios.Best.RateMultiplier: got %f", cfg.Scenarios.Best.RateMultiplier)
	}
	if cfg.Scenarios.Best.DiscountRate != 0.04 {
		t.Errorf("partially set scenario keeps defaults, got %f", cfg.Scenarios.Best.DiscountRate)
	}
	if cfg.Production.Source != "pvwatts" || cfg.Production.PVWatts.Tilt != 30 {
		t.Errorf("Production: got %+v", cfg.Production)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	content := []byte(`
pricing:
  panel_wattage: 0
production:
  source: "satellite"
monte_carlo:
  iterations: 500
  max_iterations: 100
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	_, err := LoadFromFile(cfgPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"panel_wattage", "satellite", "max_iterations"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestValidateSystemCapFitsOnePanel(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	cfg.Sizing.MaxSystemKw = 0.3
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "max_system_kw") {
		t.Errorf("expected max_system_kw error, got %v", err)
	}

	cfg.Sizing.MaxSystemKw = 0.4
	if err := cfg.Validate(); err != nil {
		t.Errorf("one-panel cap should be valid: %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("SOLARPROP_FINANCE_LOAN_RATE", "0.0525")
	t.Setenv("SOLARPROP_API_PORT", "7070")

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if cfg.Finance.LoanRate != 0.0525 {
		t.Errorf("Finance.LoanRate: got %f, want 0.0525", cfg.Finance.LoanRate)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port: got %d, want 7070", cfg.API.Port)
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("SOLARPROP_PRODUCTION_PVWATTS_API_KEY", "prefixed-key-123456")
	t.Setenv("NREL_API_KEY", "nrel-key-789012")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Production.PVWatts.APIKey != "prefixed-key-123456" {
		t.Errorf("prefixed env should win, got %q", cfg.Production.PVWatts.APIKey)
	}
}

func TestOverrideFromEnvNRELFallback(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("NREL_API_KEY", "nrel-key-789012")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Production.PVWatts.APIKey != "nrel-key-789012" {
		t.Errorf("APIKey: got %q", cfg.Production.PVWatts.APIKey)
	}

	cfg = &Config{Production: ProductionConfig{PVWatts: PVWattsConfig{APIKey: "from-config"}}}
	overrideFromEnv(cfg)
	if cfg.Production.PVWatts.APIKey != "from-config" {
		t.Errorf("config value should beat NREL_API_KEY, got %q", cfg.Production.PVWatts.APIKey)
	}
}

// ── maskKey ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"nrel_abcdef1234567890xyz", "nre...xyz"},
	}
	for _, tc := range tests {
		if got := maskKey(tc.input); got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys ──

func TestCheckAPIKeys(t *testing.T) {
	clearKeyEnv(t)

	cfg := &Config{Production: ProductionConfig{Source: "capacity_factor"}}
	statuses := CheckAPIKeys(cfg)
	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	if statuses[0].IsSet || statuses[0].Required || statuses[0].Source != KeySourceNone {
		t.Errorf("unexpected status %+v", statuses[0])
	}
	if len(MissingKeys(cfg)) != 0 {
		t.Error("capacity_factor source needs no keys")
	}

	cfg.Production.Source = "pvwatts"
	if missing := MissingKeys(cfg); len(missing) != 1 {
		t.Errorf("pvwatts without key: missing = %v", missing)
	}

	cfg.Production.PVWatts.APIKey = "nrel-config-key-value"
	s := CheckAPIKeys(cfg)[0]
	if s.Source != KeySourceConfig || s.Masked != "nre...lue" || !s.Required {
		t.Errorf("config key status %+v", s)
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	t.Setenv("TEST_VAR", "env-value-long-enough")

	s := checkKey("Test", "env-value-long-enough", "OTHER_VAR", "TEST_VAR")
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}

	s = checkKey("Test", "config-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}
}
