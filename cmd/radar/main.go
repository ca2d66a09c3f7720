// Package main is the radar CLI: it polls DEX pair feeds and alerts on
// early momentum.
//
//	radar run               # poll forever, serve /health /metrics /status /alerts
//	radar once --dry-run    # single cycle, alerts only logged
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	dryRun     bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Solana new-pair momentum radar",
	Long: `radar polls Dexscreener (with Birdeye as fallback) for newly listed
Solana pairs, filters them through hard gates, scores short-term momentum and
sends one alert per pair to Telegram.

Settings come from the environment, optionally overlaid by a YAML file.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll continuously until interrupted",
	RunE:  runLoop,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single polling cycle and exit",
	Long: `Run a single polling cycle and print its summary.

Example usage:
  radar once               # deliver alerts to every configured sink
  radar once --dry-run     # log alerts only`,
	RunE: runOnce,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $RADAR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	onceCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log alerts instead of delivering them")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLoop(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, appOptions{ConfigPath: configPath, LogLevel: logLevel, Out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, appOptions{ConfigPath: configPath, LogLevel: logLevel, DryRun: dryRun, Out: os.Stdout})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.orchestrator.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cycle %s: mode=%s examined=%d alerts=%d rate_limited=%t\n",
		res.CycleID, res.Mode, res.Examined, res.Alerts, res.RateLimited)
	return nil
}
