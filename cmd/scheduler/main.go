package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/app"
	"github.com/qs3c/bill_reminder_server/internal/pkg/log"
)

// 仅运行定时提醒，不提供 HTTP 接口
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config", err)
	}
	log.Init(log.Config{Level: log.Level(cfg.Log.Level), JSONOutput: cfg.Log.JSON})

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize", err)
	}
	defer a.Close()

	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, running without a lease; do not start more than one scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	if err := a.Cron.Start(); err != nil {
		log.Fatal("Failed to start scheduler", err)
	}
	log.Logger.Info().Int("channels", len(a.Cron.Channels())).Msg("Scheduler started")

	<-ctx.Done()
	<-a.Cron.Stop().Done()
	log.Info("Scheduler shutdown complete")
}
