// Command ideaforge runs the idea-analysis and news services in one process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ideaforge/app"
	"ideaforge/config"
	"ideaforge/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("config error: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("logger init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Log.Errorf("server error: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	analysis, err := app.BuildAnalysis(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start analysis service: %w", err)
	}
	defer analysis.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Serve(gctx, "analysis", app.Addr(cfg.Server.AnalysisPort), analysis.Handler)
	})
	g.Go(func() error {
		return app.Serve(gctx, "news", app.Addr(cfg.Server.NewsPort), app.BuildNews(cfg))
	})

	return g.Wait()
}
