package financing

import (
	"errors"
	"math"
	"testing"

	"github.com/seenimoa/solarprop/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testInput() Input {
	return Input{
		SystemCostUsd:       28000,
		AnnualSavingsUsd:    1800,
		AnnualProductionKwh: 12000,
		AverageRate:         0.15,
		DegradationRate:     0.005,
	}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// ════════════════════════════════════════════════════════════════════
// Loan
// ════════════════════════════════════════════════════════════════════

func TestMonthlyPaymentTwentyYearLoan(t *testing.T) {
	got := MonthlyPayment(20000, 0.0699, 240)
	if !approx(got, 155.20, 0.30) {
		t.Errorf("MonthlyPayment(20000, 6.99%%, 240) = %.2f, want ≈155.20", got)
	}
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	if got := MonthlyPayment(12000, 0, 120); got != 100 {
		t.Errorf("zero-rate payment = %f, want 100", got)
	}
	if got := MonthlyPayment(0, 0.05, 120); got != 0 {
		t.Errorf("zero principal payment = %f, want 0", got)
	}
}

func TestAmortizeInvariants(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		months    int
	}{
		{"20yr at 6.99%", 20000, 0.0699, 240},
		{"10yr at 4.5%", 31750.55, 0.045, 120},
		{"15yr at 0%", 18000, 0, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := Amortize(tt.principal, tt.rate, tt.months)
			if len(schedule) != tt.months {
				t.Fatalf("expected %d payments, got %d", tt.months, len(schedule))
			}

			var paid, principal, interest float64
			for _, p := range schedule {
				paid += p.AmountUsd
				principal += p.Principal
				interest += p.Interest
			}

			if last := schedule[len(schedule)-1]; last.Balance != 0 {
				t.Errorf("final balance = %f, want 0", last.Balance)
			}
			if !approx(principal, tt.principal, 0.005) {
				t.Errorf("principal repaid = %.2f, want %.2f", principal, tt.principal)
			}

			payment := schedule[0].AmountUsd
			n := float64(tt.months)
			if !approx(payment*n, tt.principal+interest, 0.01*n) {
				t.Errorf("payment×n = %.2f, principal+interest = %.2f", payment*n, tt.principal+interest)
			}
			if !approx(paid, tt.principal+interest, 0.01) {
				t.Errorf("total paid %.2f != principal+interest %.2f", paid, tt.principal+interest)
			}
		})
	}
}

func TestBreakEvenMonth(t *testing.T) {
	monthly := func(n int, amount float64) []models.ScheduledPayment {
		out := make([]models.ScheduledPayment, n)
		for i := range out {
			out[i] = models.ScheduledPayment{Month: i + 1, AmountUsd: amount}
		}
		return out
	}

	t.Run("savings exceed payments immediately", func(t *testing.T) {
		m, ok := BreakEvenMonth(monthly(120, 100), 1800, 0, 120)
		if !ok || m != 1 {
			t.Errorf("got (%d, %v), want (1, true)", m, ok)
		}
	})

	t.Run("down payment recovered on the exact month", func(t *testing.T) {
		payments := append([]models.ScheduledPayment{{Month: 0, AmountUsd: 1000}}, monthly(120, 50)...)
		m, ok := BreakEvenMonth(payments, 1200, 0, 120)
		if !ok || m != 20 {
			t.Errorf("got (%d, %v), want (20, true)", m, ok)
		}
	})

	t.Run("never breaks even returns term length", func(t *testing.T) {
		m, ok := BreakEvenMonth(monthly(120, 200), 1200, 0, 120)
		if ok || m != 120 {
			t.Errorf("got (%d, %v), want (120, false)", m, ok)
		}
	})

	t.Run("escalation eventually catches up", func(t *testing.T) {
		m, ok := BreakEvenMonth(monthly(240, 110), 1200, 0.05, 240)
		if !ok {
			t.Fatal("expected break-even with 5% escalation")
		}
		if m <= 12 {
			t.Errorf("break-even month %d should be after the first year", m)
		}
	})
}

func TestLoanOption(t *testing.T) {
	terms := DefaultTerms()
	opt := Loan(testInput(), terms, 20)

	if opt.ID != "loan_20yr" || opt.Kind != models.KindLoan {
		t.Fatalf("unexpected option identity %q/%q", opt.ID, opt.Kind)
	}
	if opt.Loan == nil || opt.Cash != nil || opt.Lease != nil || opt.PPA != nil {
		t.Fatal("loan option must carry only loan terms")
	}
	if opt.Loan.PrincipalUsd != 28000 {
		t.Errorf("principal = %f, want 28000", opt.Loan.PrincipalUsd)
	}
	if len(opt.Payments) != 240 {
		t.Errorf("expected 240 payments, got %d", len(opt.Payments))
	}
	wantInterest := ScheduleTotal(opt) - opt.Loan.PrincipalUsd
	if !approx(opt.Loan.TotalInterestUsd, wantInterest, 0.01) {
		t.Errorf("total interest %.2f, schedule implies %.2f", opt.Loan.TotalInterestUsd, wantInterest)
	}
}

func TestLoanDownPayment(t *testing.T) {
	terms := DefaultTerms()
	terms.LoanDownPaymentFraction = 0.10
	opt := Loan(testInput(), terms, 10)

	if opt.Loan.DownPaymentUsd != 2800 {
		t.Errorf("down payment = %f, want 2800", opt.Loan.DownPaymentUsd)
	}
	if opt.Payments[0].Month != 0 || opt.Payments[0].AmountUsd != 2800 {
		t.Errorf("first scheduled payment should be the down payment, got %+v", opt.Payments[0])
	}
	if len(opt.Payments) != 121 {
		t.Errorf("expected 121 payments, got %d", len(opt.Payments))
	}
}

// ════════════════════════════════════════════════════════════════════
// Cash
// ════════════════════════════════════════════════════════════════════

func TestCashMetrics(t *testing.T) {
	terms := DefaultTerms()
	m, issues := CashMetrics(20000, 2000, terms)

	if len(issues) != 0 {
		t.Errorf("unexpected issues: %+v", issues)
	}
	if !approx(m.NetCostUsd, 14000, 1e-6) {
		t.Errorf("net cost = %f, want 14000", m.NetCostUsd)
	}
	if !approx(m.TaxCreditUsd, 6000, 1e-6) {
		t.Errorf("tax credit = %f, want 6000", m.TaxCreditUsd)
	}
	if !approx(m.PaybackYears, 7, 1e-9) || !m.PaysBack {
		t.Errorf("payback = %f (%v), want 7 years", m.PaybackYears, m.PaysBack)
	}
	if m.ROI25Year <= 0 {
		t.Errorf("ROI should be positive, got %f", m.ROI25Year)
	}
}

func TestCashNPVDegeneratesWhenDiscountEqualsEscalation(t *testing.T) {
	terms := DefaultTerms()
	terms.DiscountRate = 0.03
	terms.UtilityRateEscalation = 0.03

	m, _ := CashMetrics(20000, 1500, terms)
	want := -m.NetCostUsd + 1500*25
	if !approx(m.NetPresentValueUsd, want, 1e-6) {
		t.Errorf("NPV = %f, want %f", m.NetPresentValueUsd, want)
	}

	terms.DiscountFirstYear = true
	m, _ = CashMetrics(20000, 1500, terms)
	want = -m.NetCostUsd + 1500*25/1.03
	if !approx(m.NetPresentValueUsd, want, 1e-6) {
		t.Errorf("end-of-year NPV = %f, want %f", m.NetPresentValueUsd, want)
	}
}

func TestCashMetricsNonPositiveSavings(t *testing.T) {
	for _, s := range []float64{0, -250} {
		m, issues := CashMetrics(20000, s, DefaultTerms())
		if m.PaysBack || m.PaybackYears != 0 {
			t.Errorf("savings %f: payback should be undefined, got %f (%v)", s, m.PaybackYears, m.PaysBack)
		}
		if math.IsNaN(m.ROI25Year) || math.IsInf(m.ROI25Year, 0) {
			t.Errorf("savings %f: ROI must be finite, got %f", s, m.ROI25Year)
		}
		if len(issues) != 1 || issues[0].Code != models.IssueNonPositiveSavings || issues[0].Severity != models.SeverityWarning {
			t.Errorf("savings %f: expected a non_positive_savings warning, got %+v", s, issues)
		}
	}
}

func TestCashMetricsPaybackBeyondHorizon(t *testing.T) {
	_, issues := CashMetrics(100000, 1000, DefaultTerms())
	if len(issues) != 1 || issues[0].Code != models.IssuePaybackBeyondHorizon {
		t.Errorf("expected payback_beyond_horizon warning, got %+v", issues)
	}
}

func TestProjectPaybackInterpolates(t *testing.T) {
	p := Project(1500, 1000, CashFlow{Years: 25})
	if !p.PaysBack || !approx(p.PaybackYears, 1.5, 1e-9) {
		t.Errorf("payback = %f (%v), want 1.5", p.PaybackYears, p.PaysBack)
	}
	if !approx(p.TotalSavings, 25000, 1e-9) {
		t.Errorf("total savings = %f, want 25000", p.TotalSavings)
	}
	if !approx(p.ROI, (25000-1500)/1500.0*100, 1e-9) {
		t.Errorf("ROI = %f", p.ROI)
	}
}

func TestProjectNeverReturnsInf(t *testing.T) {
	p := Project(10000, 0, CashFlow{Years: 25, DiscountRate: 0.05})
	if p.PaysBack || p.PaybackYears != 0 {
		t.Errorf("zero savings should not pay back, got %f", p.PaybackYears)
	}
	for _, v := range []float64{p.ROI, p.NetPresentValue, p.EffectiveAnnualReturn} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("projection produced non-finite value %f", v)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Lease / PPA
// ════════════════════════════════════════════════════════════════════

func TestLeaseOption(t *testing.T) {
	terms := DefaultTerms()
	opt := Lease(testInput(), terms)

	if !approx(opt.Lease.MonthlyPaymentUsd, 120, 0.005) {
		t.Errorf("lease monthly = %f, want 120 (80%% of 150)", opt.Lease.MonthlyPaymentUsd)
	}
	if len(opt.Payments) != terms.LeaseTermYears*12 {
		t.Errorf("expected %d payments, got %d", terms.LeaseTermYears*12, len(opt.Payments))
	}
	if got := opt.Payments[12].AmountUsd; !approx(got, 123.48, 0.005) {
		t.Errorf("year-2 lease payment = %f, want 123.48", got)
	}
}

func TestPPAOption(t *testing.T) {
	terms := DefaultTerms()
	in := testInput()
	opt := PPA(in, terms)

	if !approx(opt.PPA.RatePerKwh, 0.1275, 1e-12) {
		t.Errorf("PPA rate = %f, want 0.1275", opt.PPA.RatePerKwh)
	}
	if got, want := opt.Payments[0].AmountUsd, 12000*0.1275/12; !approx(got, want, 0.005) {
		t.Errorf("first PPA payment = %f, want %f", got, want)
	}
	if len(opt.Payments) != terms.PPATermYears*12 {
		t.Errorf("expected %d payments, got %d", terms.PPATermYears*12, len(opt.Payments))
	}
}

// ════════════════════════════════════════════════════════════════════
// Comparison
// ════════════════════════════════════════════════════════════════════

func TestCompareEnumerationOrder(t *testing.T) {
	cmp, err := Compare(testInput(), DefaultTerms())
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	want := []string{"cash", "loan_10yr", "loan_15yr", "loan_20yr", "lease", "ppa"}
	if len(cmp.Options) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(cmp.Options))
	}
	for i, id := range want {
		if cmp.Options[i].ID != id {
			t.Errorf("option %d = %q, want %q", i, cmp.Options[i].ID, id)
		}
	}
	if cmp.ID == "" {
		t.Error("comparison should have an ID")
	}
}

func TestTotalCostMatchesSchedule(t *testing.T) {
	cmp, err := Compare(testInput(), DefaultTerms())
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	for _, o := range cmp.Options {
		if got := ScheduleTotal(o); got != o.Summary.TotalCostOverLifeUsd {
			t.Errorf("%s: total cost %.2f != schedule sum %.2f", o.ID, o.Summary.TotalCostOverLifeUsd, got)
		}
		if !approx(o.Summary.EffectiveAnnualCostUsd, o.Summary.TotalCostOverLifeUsd/25, 0.01) {
			t.Errorf("%s: effective annual cost %.2f", o.ID, o.Summary.EffectiveAnnualCostUsd)
		}
	}
}

func TestCompareRejectsInvalidInput(t *testing.T) {
	in := testInput()
	in.SystemCostUsd = -1
	_, err := Compare(in, DefaultTerms())
	var inputErr *models.InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("expected InputError, got %v", err)
	}
}

func TestCompareWithNoSavingsStillPrices(t *testing.T) {
	in := testInput()
	in.AnnualSavingsUsd = 0
	cmp, err := Compare(in, DefaultTerms())
	if err != nil {
		t.Fatalf("degenerate savings must not be a Go error: %v", err)
	}
	if len(cmp.Issues) == 0 {
		t.Error("expected issues for zero savings")
	}
	cash, _ := cmp.Option("cash")
	if cash.Cash.PaysBack {
		t.Error("cash should not pay back with zero savings")
	}

	// Every option reports the same degenerate outcome at the same severity.
	seen := 0
	for _, is := range cmp.Issues {
		if is.Code != models.IssueNonPositiveSavings {
			continue
		}
		seen++
		if is.Severity != models.SeverityWarning {
			t.Errorf("%s: non_positive_savings severity = %s, want warning", is.Option, is.Severity)
		}
	}
	if seen == 0 {
		t.Error("expected non_positive_savings issues")
	}
}
