// Command solarprop is a solar + battery proposal engine.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/logging"
	"github.com/seenimoa/solarprop/internal/production"
	"github.com/seenimoa/solarprop/internal/proposal"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global state, populated by PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "solarprop",
	Short: "solarprop: solar + battery proposal engine",
	Long: `solarprop sizes residential solar + battery systems, compares cash,
loan, lease and PPA financing, and stress-tests the economics under
alternative futures.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger, err = logging.New(cfg.Logging, os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(financeCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(proposalCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assumptionsCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("solarprop %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// newService builds the proposal service from the loaded config.
func newService() (*proposal.Service, error) {
	est, err := production.New(cfg.Production, cfg.Finance.DegradationRate, logger)
	if err != nil {
		return nil, fmt.Errorf("production estimator: %w", err)
	}
	return proposal.NewService(proposal.AssumptionsFrom(cfg), est, logger)
}

// wantJSON reports whether --json was passed.
func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
