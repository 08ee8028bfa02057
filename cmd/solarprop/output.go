package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/proposal"
	"github.com/seenimoa/solarprop/pkg/models"
	"github.com/seenimoa/solarprop/pkg/utils"
)

const rule = "═══════════════════════════════════════"

func header(w io.Writer, title string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, rule)
}

func printSizing(out io.Writer, c *models.SizingComparison) {
	header(out, "System Sizing")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tKW\tPANELS\tBATTERY\tPRODUCTION\tOFFSET\tNET COST\tSAVINGS/YR\tPAYBACK\tNPV\tSTATUS")
	for _, o := range c.Options {
		mark := ""
		if o.Size == c.RecommendedOption {
			mark = " *"
		}
		if !o.Viable() {
			fmt.Fprintf(w, "%s%s\t%.2f\t%d\t%.1f kWh\t-\t-\t-\t-\t-\t-\t%s\n",
				o.Size, mark, o.SolarKw, o.PanelCount, o.BatteryKwh, o.Status)
			continue
		}
		fmt.Fprintf(w, "%s%s\t%.2f\t%d\t%.1f kWh\t%s\t%.0f%%\t%s\t%s\t%s\t%s\t%s\n",
			o.Size, mark, o.SolarKw, o.PanelCount, o.BatteryKwh,
			utils.FormatKwh(o.AnnualProductionKwh()), o.OffsetPercentage(),
			utils.FormatUSD(o.NetCostUsd), utils.FormatUSD(o.AnnualSavingsUsd),
			utils.FormatYears(o.PaybackYears, o.PaysBack), utils.FormatUSDCompact(o.NetPresentValueUsd),
			o.Status)
	}
	w.Flush()
	printSelection(out, c.Selection)
	printIssues(out, c.Issues)
}

func printFinancing(out io.Writer, c *models.FinancingComparison) {
	header(out, "Financing Options")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTION\tUPFRONT / MONTHLY\tFIRST-YEAR NET\tTOTAL COST\tANNUAL COST")
	for _, o := range c.Options {
		mark := ""
		if o.ID == c.RecommendedOption {
			mark = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\n",
			o.Name, mark, headline(o),
			utils.FormatUSD(o.Summary.FirstYearNetCostUsd),
			utils.FormatUSD(o.Summary.TotalCostOverLifeUsd),
			utils.FormatUSD(o.Summary.EffectiveAnnualCostUsd))
	}
	w.Flush()
	fmt.Fprintf(out, "  Lifetime savings: %s\n", utils.FormatUSD(c.LifetimeSavingsUsd))
	printSelection(out, c.Selection)
	printIssues(out, c.Issues)
}

// headline is the one number a customer compares first.
func headline(o models.FinancingOption) string {
	switch {
	case o.Cash != nil:
		return utils.FormatUSD(o.Cash.UpfrontCostUsd) + " upfront"
	case o.Loan != nil:
		return utils.FormatUSD(o.Loan.MonthlyPaymentUsd) + "/mo"
	case o.Lease != nil:
		return utils.FormatUSD(o.Lease.MonthlyPaymentUsd) + "/mo"
	case o.PPA != nil:
		return fmt.Sprintf("$%.4f/kWh", o.PPA.RatePerKwh)
	}
	return "-"
}

func printSensitivity(out io.Writer, a *models.SensitivityAnalysis) {
	header(out, "Sensitivity Analysis")
	fmt.Fprintf(out, "  Baseline NPV: %s\n\n", utils.FormatUSD(a.BaselineNPVUsd))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tSAVINGS/YR\tPAYBACK\tROI 25Y\tNPV\t25Y SAVINGS")
	for _, s := range a.Scenarios {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Scenario, utils.FormatUSD(s.AnnualSavings),
			utils.FormatYears(s.PaybackPeriodYears, s.PaysBackWithinHorizon),
			utils.FormatPct(s.ROI25Year), utils.FormatUSD(s.NetPresentValueUsd),
			utils.FormatUSD(s.TotalSavings25Year))
	}
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tLOW\tHIGH\tLOW NPV Δ\tHIGH NPV Δ\tRANGE")
	for _, e := range a.Sensitivity {
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%s\t%s\t%s\n",
			e.Parameter, e.LowValue, e.HighValue,
			utils.FormatUSD(e.LowImpactUsd), utils.FormatUSD(e.HighImpactUsd), utils.FormatUSD(e.RangeUsd))
	}
	w.Flush()

	if mc := a.MonteCarlo; mc != nil {
		fmt.Fprintf(out, "\n  Monte Carlo (%d iterations, seed %d)\n", mc.Iterations, mc.Seed)
		fmt.Fprintf(out, "    Mean ROI:    %s   Median: %s   σ: %.2f\n",
			utils.FormatPct(mc.MeanROI), utils.FormatPct(mc.MedianROI), mc.StdDeviation)
		fmt.Fprintf(out, "    P10 / P50 / P90: %s / %s / %s\n",
			utils.FormatPct(mc.P10), utils.FormatPct(mc.P50), utils.FormatPct(mc.P90))
		fmt.Fprintf(out, "    P(ROI > 0):  %.1f%%\n", mc.ProbabilityPositiveROI)
	}
	printIssues(out, a.Issues)
}

func printAssumptions(out io.Writer, a proposal.Assumptions, keys []config.KeyStatus, source string) {
	header(out, "solarprop: Assumptions")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Solar cost\t$%.2f/W\n", a.PriceBook.CostPerWattSolar)
	fmt.Fprintf(w, "  Battery cost\t%s/kWh\n", utils.FormatUSD(a.PriceBook.CostPerKwhBattery))
	fmt.Fprintf(w, "  Inverter cost\t%s/kW\n", utils.FormatUSD(a.PriceBook.CostPerKwInverter))
	fmt.Fprintf(w, "  Fixed installation\t%s\n", utils.FormatUSD(a.PriceBook.FixedInstallationCost))
	fmt.Fprintf(w, "  Panel wattage\t%.0f W\n", a.PriceBook.PanelWattage)
	fmt.Fprintf(w, "  Tax credit\t%.0f%%\n", a.Terms.TaxCreditFraction*100)
	fmt.Fprintf(w, "  Discount rate\t%.2f%%\n", a.Terms.DiscountRate*100)
	fmt.Fprintf(w, "  Rate escalation\t%.2f%%/yr\n", a.Terms.UtilityRateEscalation*100)
	fmt.Fprintf(w, "  Degradation\t%.2f%%/yr\n", a.DegradationRate*100)
	fmt.Fprintf(w, "  Horizon\t%d years\n", a.Terms.AnalysisYears)
	fmt.Fprintf(w, "  Loan\t%.2f%% over %v years\n", a.Terms.LoanRate*100, a.Terms.LoanTermsYears)
	fmt.Fprintf(w, "  Lease\t%.0f%% of savings, +%.1f%%/yr, %d years\n",
		a.Terms.LeaseSavingsFraction*100, a.Terms.LeaseEscalator*100, a.Terms.LeaseTermYears)
	fmt.Fprintf(w, "  PPA\t%.0f%% of utility rate, +%.1f%%/yr, %d years\n",
		a.Terms.PPARateFraction*100, a.Terms.PPAEscalator*100, a.Terms.PPATermYears)
	fmt.Fprintf(w, "  Production source\t%s\n", source)
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  API Keys:")
	for _, k := range keys {
		status := "❌ not set"
		if k.IsSet {
			status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
		} else if !k.Required {
			status = "– not set (not required)"
		}
		fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
	}
	fmt.Fprintln(out, rule)
}

func printSelection(out io.Writer, s *models.Selection) {
	if s == nil {
		return
	}
	fmt.Fprintf(out, "  Recommended: %s (score %.3f", s.Winner, s.Score)
	if s.RunnerUp != "" {
		fmt.Fprintf(out, ", ahead of %s by %.3f", s.RunnerUp, s.Margin)
	}
	fmt.Fprintln(out, ")")
}

func printIssues(out io.Writer, issues []models.Issue) {
	for _, is := range issues {
		prefix := "⚠️ "
		if is.Severity == models.SeverityError {
			prefix = "❌"
		}
		if is.Option != "" {
			fmt.Fprintf(out, "  %s [%s] %s: %s\n", prefix, is.Option, is.Code, is.Message)
		} else {
			fmt.Fprintf(out, "  %s %s: %s\n", prefix, is.Code, is.Message)
		}
	}
}
