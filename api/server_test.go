package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/logging"
	"github.com/seenimoa/solarprop/internal/production"
	"github.com/seenimoa/solarprop/internal/proposal"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error: %v", err)
	}
	est, err := production.NewCapacityFactor(0.16, 0.005)
	if err != nil {
		t.Fatalf("NewCapacityFactor() error: %v", err)
	}
	svc, err := proposal.NewService(proposal.AssumptionsFrom(cfg), est, logging.Discard())
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return NewServer(cfg, svc, logging.Discard())
}

func do(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec, resp
}

// dataAs re-decodes the envelope payload into v.
func dataAs(t *testing.T, resp APIResponse, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

const siteBody = `{"usage":{"annual_usage_kwh":12000,"annual_bill_cost_usd":1800},"location":{"latitude":37.77,"longitude":-122.42}}`

// ════════════════════════════════════════════════════════════════════
// Handler tests
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			rec, resp := do(t, srv, http.MethodGet, path, "")
			if rec.Code != http.StatusOK || !resp.Success {
				t.Fatalf("status %d, success %v", rec.Code, resp.Success)
			}
			var data map[string]any
			dataAs(t, resp, &data)
			if data["status"] != "ok" {
				t.Errorf("status = %v, want ok", data["status"])
			}
			if data["estimator"] != production.SourceCapacityFactor {
				t.Errorf("estimator = %v", data["estimator"])
			}
		})
	}
}

func TestHandleSizing(t *testing.T) {
	srv := testServer(t)
	rec, resp := do(t, srv, http.MethodPost, "/api/v1/sizing", siteBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, resp.Error)
	}

	var data struct {
		Options []struct {
			Size   string `json:"size"`
			Status string `json:"status"`
		} `json:"options"`
		RecommendedOption string `json:"recommended_option"`
	}
	dataAs(t, resp, &data)
	if len(data.Options) != 3 {
		t.Fatalf("got %d options, want 3", len(data.Options))
	}
	for i, want := range []string{"small", "medium", "large"} {
		if data.Options[i].Size != want {
			t.Errorf("option %d = %q, want %q", i, data.Options[i].Size, want)
		}
	}
	if data.RecommendedOption == "" {
		t.Error("expected a recommended option")
	}
}

func TestHandleFinancing(t *testing.T) {
	srv := testServer(t)
	body := `{"system_cost_usd":26400,"annual_savings_usd":1833.6,"annual_production_kwh":12320,"average_rate":0.15}`
	rec, resp := do(t, srv, http.MethodPost, "/api/v1/financing", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, resp.Error)
	}

	var data struct {
		Options []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"options"`
		RecommendedOption string `json:"recommended_option"`
	}
	dataAs(t, resp, &data)
	if len(data.Options) != 6 {
		t.Fatalf("got %d options, want 6", len(data.Options))
	}
	if data.Options[0].Kind != "cash" || data.Options[5].Kind != "ppa" {
		t.Errorf("unexpected order: first %q, last %q", data.Options[0].Kind, data.Options[5].Kind)
	}
	if data.RecommendedOption == "" {
		t.Error("expected a recommended option")
	}
}

func TestHandleSensitivity(t *testing.T) {
	srv := testServer(t)
	body := `{"system_cost_usd":26400,"annual_savings_usd":1833.6,"solar_kw":8.8,"site_rate":0.15,"monte_carlo":true,"seed":1,"iterations":100}`
	rec, resp := do(t, srv, http.MethodPost, "/api/v1/sensitivity", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, resp.Error)
	}

	var data struct {
		Scenarios   []json.RawMessage `json:"scenarios"`
		Sensitivity []struct {
			RangeUsd float64 `json:"range_usd"`
		} `json:"sensitivity"`
		MonteCarlo *struct {
			Iterations int `json:"iterations"`
		} `json:"monte_carlo"`
	}
	dataAs(t, resp, &data)
	if len(data.Scenarios) != 5 {
		t.Errorf("got %d scenarios, want 5", len(data.Scenarios))
	}
	for i := 1; i < len(data.Sensitivity); i++ {
		if data.Sensitivity[i].RangeUsd > data.Sensitivity[i-1].RangeUsd {
			t.Errorf("tornado not sorted at %d", i)
		}
	}
	if data.MonteCarlo == nil || data.MonteCarlo.Iterations != 100 {
		t.Errorf("monte_carlo = %+v, want 100 iterations", data.MonteCarlo)
	}
}

func TestHandleProposal(t *testing.T) {
	srv := testServer(t)
	rec, resp := do(t, srv, http.MethodPost, "/api/v1/proposal", siteBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, resp.Error)
	}

	var data struct {
		ID          string          `json:"id"`
		Sizing      json.RawMessage `json:"sizing"`
		Financing   json.RawMessage `json:"financing"`
		Sensitivity json.RawMessage `json:"sensitivity"`
	}
	dataAs(t, resp, &data)
	if data.ID == "" || data.Sizing == nil || data.Financing == nil || data.Sensitivity == nil {
		t.Errorf("incomplete proposal: %+v", data)
	}
}

func TestHandleAssumptions(t *testing.T) {
	srv := testServer(t)
	rec, resp := do(t, srv, http.MethodGet, "/api/v1/assumptions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var data struct {
		PriceBook struct {
			CostPerWattSolar float64 `json:"cost_per_watt_solar"`
		} `json:"price_book"`
		Terms struct {
			AnalysisYears int `json:"analysis_years"`
		} `json:"finance_terms"`
		ProductionSource string `json:"production_source"`
	}
	dataAs(t, resp, &data)
	if data.PriceBook.CostPerWattSolar != 2.75 {
		t.Errorf("cost_per_watt_solar = %v, want 2.75", data.PriceBook.CostPerWattSolar)
	}
	if data.Terms.AnalysisYears != 25 {
		t.Errorf("analysis_years = %d, want 25", data.Terms.AnalysisYears)
	}
	if data.ProductionSource != production.SourceCapacityFactor {
		t.Errorf("production_source = %q", data.ProductionSource)
	}
}

func TestHandleConfigKeys(t *testing.T) {
	srv := testServer(t)
	rec, resp := do(t, srv, http.MethodGet, "/api/v1/config/keys", "")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status %d", rec.Code)
	}
	var keys []config.KeyStatus
	dataAs(t, resp, &keys)
	if len(keys) != 1 || keys[0].Required {
		t.Errorf("keys = %+v, want one optional key", keys)
	}
}

// ════════════════════════════════════════════════════════════════════
// Error mapping
// ════════════════════════════════════════════════════════════════════

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed json", "/api/v1/sizing", `{"usage":`, http.StatusBadRequest},
		{"unknown field", "/api/v1/sizing", `{"usage":{"annual_usage_kwh":1},"colour":"red"}`, http.StatusBadRequest},
		{"zero usage", "/api/v1/sizing", `{"usage":{"annual_usage_kwh":0,"annual_bill_cost_usd":100}}`, http.StatusBadRequest},
		{"bad latitude", "/api/v1/proposal", `{"usage":{"annual_usage_kwh":1000,"annual_bill_cost_usd":100},"location":{"latitude":95}}`, http.StatusBadRequest},
		{"negative cost", "/api/v1/financing", `{"system_cost_usd":-1,"annual_savings_usd":100}`, http.StatusBadRequest},
		{"negative sensitivity cost", "/api/v1/sensitivity", `{"system_cost_usd":-1,"annual_savings_usd":100,"solar_kw":1,"site_rate":0.1}`, http.StatusBadRequest},
		{"too many iterations", "/api/v1/sensitivity", `{"system_cost_usd":20000,"annual_savings_usd":1800,"solar_kw":8.8,"site_rate":0.15,"monte_carlo":true,"iterations":1000000000}`, http.StatusBadRequest},
	}

	srv := testServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, srv, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if resp.Success || resp.Error == "" {
				t.Errorf("expected error envelope, got %+v", resp)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
