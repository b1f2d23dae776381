package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-cohort/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "cohortsim",
		Short: "High-school cohort progression simulator",
		Long: `cohortsim enrolls yearly cohorts of students into a course catalog,
advances them year by year and reports who graduates, who drops out and
how the remaining schedules group together.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return setupLogging(cfg.Log)
		},
	}

	root.PersistentFlags().StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format (text, json)")
	root.PersistentFlags().StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "catalog YAML file or directory (default: bundled catalog)")
	root.PersistentFlags().StringVar(&cfg.ParamsPath, "params", cfg.ParamsPath, "parameter YAML file (default: built-in parameters)")

	root.AddCommand(runCmd(cfg))
	root.AddCommand(catalogCmd(cfg))
	root.AddCommand(groupsCmd(cfg))
	root.AddCommand(paramsCmd(cfg))
	return root
}

func setupLogging(lc config.LogConfig) error {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch lc.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
