package main

import (
	"context"
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

	logger.Log.Infof("news CORS origins: %v", cfg.Server.NewsOrigins)
	if err := app.Serve(ctx, "news", app.Addr(cfg.Server.NewsPort), app.BuildNews(cfg)); err != nil {
		logger.Log.Errorf("server error: %v", err)
		os.Exit(1)
	}
}
