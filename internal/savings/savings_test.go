package savings

import (
	"errors"
	"math"
	"testing"

	"github.com/seenimoa/solarprop/pkg/models"
)

func TestAnnualSavings(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name       string
		production float64
		usage      float64
		bill       float64
		rate       float64
		want       float64
	}{
		{"production equals usage", 12000, 12000, 1800, 0.15, 1800},
		{"partial offset is proportional", 9000, 12000, 1800, 0.15, 1350},
		{"excess credited at 70 percent", 15000, 12000, 1800, 0.15, 1800 + 3000*0.15*0.70},
		{"no production", 0, 12000, 1800, 0.15, 0},
		{"zero bill", 6000, 12000, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AnnualSavings(tt.production, tt.usage, tt.bill, tt.rate, policy)
			if err != nil {
				t.Fatalf("AnnualSavings() error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AnnualSavings() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAnnualSavingsExportCreditIsConfigurable(t *testing.T) {
	full := Policy{ExportCreditFraction: 1.0}
	none := Policy{ExportCreditFraction: 0}

	withFull, _ := AnnualSavings(14000, 12000, 1800, 0.15, full)
	withNone, _ := AnnualSavings(14000, 12000, 1800, 0.15, none)

	if math.Abs(withFull-(1800+2000*0.15)) > 1e-9 {
		t.Errorf("full retail credit: got %f", withFull)
	}
	if withNone != 1800 {
		t.Errorf("no export credit: got %f, want 1800", withNone)
	}
}

func TestAnnualSavingsRejectsBadInput(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		name                          string
		production, usage, bill, rate float64
	}{
		{"zero usage", 1000, 0, 100, 0.1},
		{"negative usage", 1000, -5, 100, 0.1},
		{"negative bill", 1000, 1000, -1, 0.1},
		{"negative production", -1, 1000, 100, 0.1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := AnnualSavings(c.production, c.usage, c.bill, c.rate, policy)
			var inputErr *models.InputError
			if !errors.As(err, &inputErr) {
				t.Errorf("expected InputError, got %v", err)
			}
		})
	}
}

func TestMonthlyBills(t *testing.T) {
	var usage, production [models.MonthsPerYear]float64
	for i := range usage {
		usage[i] = 1000
		production[i] = float64(i) * 150 // crosses usage mid-year
	}
	policy := Policy{FixedMonthlyChargeUsd: 12}

	bills := MonthlyBills(usage, production, 0.20, policy)
	if len(bills) != 12 {
		t.Fatalf("expected 12 bills, got %d", len(bills))
	}

	if bills[0].Month != 1 || bills[11].Month != 12 {
		t.Errorf("months should be 1-based: got %d..%d", bills[0].Month, bills[11].Month)
	}
	if got, want := bills[0].ProjectedBillUsd, 1000*0.20+12; math.Abs(got-want) > 1e-9 {
		t.Errorf("January bill = %f, want %f", got, want)
	}
	// production 1650 > usage 1000 → net usage floored at zero.
	if bills[11].NetUsageKwh != 0 {
		t.Errorf("December net usage = %f, want 0", bills[11].NetUsageKwh)
	}
	if bills[11].ProjectedBillUsd != 12 {
		t.Errorf("December bill = %f, want fixed charge only", bills[11].ProjectedBillUsd)
	}
	for _, b := range bills {
		if b.NetUsageKwh < 0 {
			t.Errorf("month %d: negative net usage", b.Month)
		}
	}
}

func TestAnnualBill(t *testing.T) {
	bills := []models.MonthlyBill{{ProjectedBillUsd: 10}, {ProjectedBillUsd: 15.5}}
	if got := AnnualBill(bills); got != 25.5 {
		t.Errorf("AnnualBill() = %f, want 25.5", got)
	}
}
