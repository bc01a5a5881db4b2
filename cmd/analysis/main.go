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

	logger.Log.Info("API endpoints available:")
	logger.Log.Info("  GET  /")
	logger.Log.Info("  POST /validate-idea/")
	logger.Log.Info("  POST /analyze-market/")
	logger.Log.Info("  POST /strategy/")
	logger.Log.Info("  POST /fund-distribution/")
	logger.Log.Info("  POST /pipeline/")
	logger.Log.Info("  GET  /artifacts/:name")

	return app.Serve(ctx, "analysis", app.Addr(cfg.Server.AnalysisPort), analysis.Handler)
}
