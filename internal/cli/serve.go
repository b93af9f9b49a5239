package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"irrigation-engine/internal/config"
	"irrigation-engine/internal/handler"
	"irrigation-engine/internal/logging"
	"irrigation-engine/internal/metrics"
	"irrigation-engine/internal/resultcache"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	cache, closeCache, err := newResultCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	h := handler.New(handler.Options{
		Engine:  newEngine(ctx, cfg, log, collector),
		Cache:   cache,
		Metrics: collector,
		Logger:  log,
	})
	server := &fasthttp.Server{
		Handler:            h.Handle,
		Name:               "irrigation-engine",
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		MaxRequestBodySize: cfg.Server.MaxRequestBodySize,
		Logger:             zap.NewStdLog(log),
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("irrigation engine starting",
			zap.String("addr", addr),
			zap.String("cache", cfg.Cache.Backend),
			zap.String("method", cfg.Optimization.Method))
		errCh <- server.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.ShutdownWithContext(shutdownCtx)
}

func newResultCache(ctx context.Context, cfg config.Config) (resultcache.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		r := resultcache.NewRedis(resultcache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Cache.TTL,
		})
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.CacheMemory:
		return resultcache.NewMemory(cfg.Cache.TTL), func() {}, nil
	default:
		return resultcache.Nop{}, func() {}, nil
	}
}
