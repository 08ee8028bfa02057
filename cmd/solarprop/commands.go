package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/solarprop/api"
	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/proposal"
	"github.com/seenimoa/solarprop/internal/sizing"
	"github.com/seenimoa/solarprop/pkg/models"
)

// --- Site flags (shared by size and proposal) ---

func addSiteFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("usage", 0, "annual usage in kWh (required)")
	cmd.Flags().Float64("bill", 0, "annual utility bill in USD (required)")
	cmd.Flags().Float64("lat", 0, "site latitude")
	cmd.Flags().Float64("lon", 0, "site longitude")
	cmd.Flags().Float64("peak-sun-hours", 0, "override configured peak sun hours")
	cmd.Flags().Float64Slice("monthly", nil, "12 comma-separated monthly usage values in kWh")
	_ = cmd.MarkFlagRequired("usage")
	_ = cmd.MarkFlagRequired("bill")
}

func siteRequest(cmd *cobra.Command) (sizing.Request, error) {
	var req sizing.Request
	req.Usage.AnnualUsageKwh, _ = cmd.Flags().GetFloat64("usage")
	req.Usage.AnnualBillCostUsd, _ = cmd.Flags().GetFloat64("bill")
	req.Location.Latitude, _ = cmd.Flags().GetFloat64("lat")
	req.Location.Longitude, _ = cmd.Flags().GetFloat64("lon")
	req.PeakSunHours, _ = cmd.Flags().GetFloat64("peak-sun-hours")

	monthly, _ := cmd.Flags().GetFloat64Slice("monthly")
	if len(monthly) > 0 {
		if len(monthly) != models.MonthsPerYear {
			return req, fmt.Errorf("--monthly needs %d values, got %d", models.MonthsPerYear, len(monthly))
		}
		copy(req.Usage.MonthlyUsageKwh[:], monthly)
	}
	return req, nil
}

// --- Analysis flags (shared by sensitivity and proposal) ---

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("monte-carlo", false, "run the Monte Carlo simulation")
	cmd.Flags().Int64("seed", 0, "Monte Carlo seed (default from config)")
	cmd.Flags().Int("iterations", 0, "Monte Carlo iterations (default from config)")
}

func analysisFlags(cmd *cobra.Command) (monteCarlo bool, seed *int64, iterations int) {
	monteCarlo, _ = cmd.Flags().GetBool("monte-carlo")
	iterations, _ = cmd.Flags().GetInt("iterations")
	if cmd.Flags().Changed("seed") {
		v, _ := cmd.Flags().GetInt64("seed")
		seed = &v
	}
	return monteCarlo, seed, iterations
}

// --- Size Command ---

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Compare small, medium and large system sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := siteRequest(cmd)
		if err != nil {
			return err
		}
		svc, err := newService()
		if err != nil {
			return err
		}
		cmp, err := svc.CompareSizes(cmd.Context(), req)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmp)
		}
		printSizing(os.Stdout, cmp)
		return nil
	},
}

// --- Finance Command ---

var financeCmd = &cobra.Command{
	Use:   "finance",
	Short: "Compare cash, loan, lease and PPA financing for a system",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req proposal.FinancingRequest
		req.SystemCostUsd, _ = cmd.Flags().GetFloat64("cost")
		req.AnnualSavingsUsd, _ = cmd.Flags().GetFloat64("savings")
		req.AnnualProductionKwh, _ = cmd.Flags().GetFloat64("production")
		req.AverageRate, _ = cmd.Flags().GetFloat64("rate")
		if cmd.Flags().Changed("degradation") {
			d, _ := cmd.Flags().GetFloat64("degradation")
			req.DegradationRate = &d
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		cmp, err := svc.CompareFinancing(cmd.Context(), req)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmp)
		}
		printFinancing(os.Stdout, cmp)
		return nil
	},
}

// --- Sensitivity Command ---

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Run scenario, tornado and Monte Carlo analysis for a system",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req proposal.SensitivityRequest
		req.SystemCostUsd, _ = cmd.Flags().GetFloat64("cost")
		req.AnnualSavingsUsd, _ = cmd.Flags().GetFloat64("savings")
		req.SolarKw, _ = cmd.Flags().GetFloat64("kw")
		req.SiteRate, _ = cmd.Flags().GetFloat64("rate")
		req.MonteCarlo, req.Seed, req.Iterations = analysisFlags(cmd)

		svc, err := newService()
		if err != nil {
			return err
		}
		a, err := svc.Analyze(cmd.Context(), req)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(a)
		}
		printSensitivity(os.Stdout, a)
		return nil
	},
}

// --- Proposal Command ---

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Size a site, then finance and stress-test the recommended system",
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := siteRequest(cmd)
		if err != nil {
			return err
		}
		req := proposal.ProposalRequest{Request: site}
		req.MonteCarlo, req.Seed, req.Iterations = analysisFlags(cmd)

		svc, err := newService()
		if err != nil {
			return err
		}
		p, err := svc.BuildProposal(cmd.Context(), req)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(p)
		}
		printSizing(os.Stdout, p.Sizing)
		if p.Financing != nil {
			fmt.Println()
			printFinancing(os.Stdout, p.Financing)
		}
		if p.Sensitivity != nil {
			fmt.Println()
			printSensitivity(os.Stdout, p.Sensitivity)
		}
		return nil
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		if missing := config.MissingKeys(cfg); len(missing) > 0 {
			return fmt.Errorf("missing required API keys: %v", missing)
		}

		svc, err := newService()
		if err != nil {
			return err
		}
		api.Version = version

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(cfg, svc, logger).ListenAndServe(ctx, cfg.API.Addr())
	},
}

// --- Assumptions Command ---

var assumptionsCmd = &cobra.Command{
	Use:   "assumptions",
	Short: "Show the active financial assumptions and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := proposal.AssumptionsFrom(cfg)
		if wantJSON(cmd) {
			return printJSON(a)
		}
		printAssumptions(os.Stdout, a, config.CheckAPIKeys(cfg), cfg.Production.Source)
		return nil
	},
}

func init() {
	addSiteFlags(sizeCmd)

	financeCmd.Flags().Float64("cost", 0, "installed system cost in USD (required)")
	financeCmd.Flags().Float64("savings", 0, "first-year savings in USD (required)")
	financeCmd.Flags().Float64("production", 0, "first-year production in kWh")
	financeCmd.Flags().Float64("rate", 0, "average utility rate in USD/kWh")
	financeCmd.Flags().Float64("degradation", 0, "annual degradation rate (default from config)")
	_ = financeCmd.MarkFlagRequired("cost")
	_ = financeCmd.MarkFlagRequired("savings")

	sensitivityCmd.Flags().Float64("cost", 0, "installed system cost in USD (required)")
	sensitivityCmd.Flags().Float64("savings", 0, "first-year savings in USD (required)")
	sensitivityCmd.Flags().Float64("kw", 0, "system size in kW (required)")
	sensitivityCmd.Flags().Float64("rate", 0, "site utility rate in USD/kWh (required)")
	addAnalysisFlags(sensitivityCmd)
	for _, f := range []string{"cost", "savings", "kw", "rate"} {
		_ = sensitivityCmd.MarkFlagRequired(f)
	}

	addSiteFlags(proposalCmd)
	addAnalysisFlags(proposalCmd)

	serveCmd.Flags().Int("port", 0, "override configured API port")
}
