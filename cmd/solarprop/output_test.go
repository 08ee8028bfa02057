package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/proposal"
	"github.com/seenimoa/solarprop/pkg/models"
)

func TestPrintSizing(t *testing.T) {
	c := &models.SizingComparison{
		Options: []models.SizingOption{
			{Size: models.TierSmall, SolarKw: 6.4, PanelCount: 16, AnnualUsageKwh: 12000, Status: models.StatusOK,
				Production:  &models.ProductionEstimate{AnnualProductionKwh: 8960},
				CashMetrics: models.CashMetrics{NetCostUsd: 13720, AnnualSavingsUsd: 1344, PaybackYears: 10.2, PaysBack: true}},
			{Size: models.TierMedium, SolarKw: 8.8, PanelCount: 22, Status: models.StatusFailed},
		},
		RecommendedOption: models.TierSmall,
		Selection:         &models.Selection{Winner: "small", Score: 0.8},
		Issues:            []models.Issue{models.Failure(models.IssueExternalService, "medium", "timeout")},
	}

	var buf bytes.Buffer
	printSizing(&buf, c)
	out := buf.String()
	for _, want := range []string{"small *", "8,960 kWh", "$13,720.00", "10.2 yr", "failed", "Recommended: small", "[medium] external_service"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHeadline(t *testing.T) {
	tests := []struct {
		opt  models.FinancingOption
		want string
	}{
		{models.FinancingOption{Cash: &models.CashTerms{UpfrontCostUsd: 26400}}, "$26,400.00 upfront"},
		{models.FinancingOption{Loan: &models.LoanTerms{MonthlyPaymentUsd: 214.5}}, "$214.50/mo"},
		{models.FinancingOption{Lease: &models.LeaseTerms{MonthlyPaymentUsd: 120}}, "$120.00/mo"},
		{models.FinancingOption{PPA: &models.PPATerms{RatePerKwh: 0.1275}}, "$0.1275/kWh"},
		{models.FinancingOption{}, "-"},
	}
	for _, tt := range tests {
		if got := headline(tt.opt); got != tt.want {
			t.Errorf("headline() = %q, want %q", got, tt.want)
		}
	}
}

func TestPrintAssumptions(t *testing.T) {
	keys := []config.KeyStatus{{Name: "NREL PVWatts API Key", Required: false}}
	var buf bytes.Buffer
	printAssumptions(&buf, proposal.DefaultAssumptions(), keys, "capacity_factor")
	out := buf.String()
	for _, want := range []string{"Tax credit", "capacity_factor", "not required"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
