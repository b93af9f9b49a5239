package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"irrigation-engine/internal/config"
	"irrigation-engine/internal/costregistry"
	"irrigation-engine/internal/engine"
	"irrigation-engine/internal/logging"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "irrigation-engine",
		Short:         "Hydraulic, validation, economic and optimisation analysis of irrigation designs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (default ./config.yaml)")
	root.AddCommand(newServeCmd(), newAnalyzeCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// newEngine wires the cost registry and observer into an engine configured from cfg.
func newEngine(ctx context.Context, cfg config.Config, log *zap.Logger, observer engine.Observer) *engine.Engine {
	costs := costregistry.New(costregistry.Options{
		URL:     cfg.CostRegistry.URL,
		Timeout: cfg.CostRegistry.Timeout,
		TTL:     cfg.CostRegistry.TTL,
	})
	if costs.Enabled() && len(cfg.CostRegistry.Preload) > 0 {
		costs.Prefetch(logging.WithLogger(ctx, log), cfg.CostRegistry.Preload)
		log.Info("cost models preloaded", zap.Strings("regions", cfg.CostRegistry.Preload))
	}
	return engine.New(engine.Options{
		Costs:               costs,
		Observer:            observer,
		MaxIterations:       cfg.Optimization.MaxIterations,
		Method:              cfg.Optimization.Method,
		OptimizationTimeout: cfg.Optimization.Timeout,
	})
}
