package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/api"
	"github.com/qs3c/bill_reminder_server/internal/api/handler"
	"github.com/qs3c/bill_reminder_server/internal/app"
	"github.com/qs3c/bill_reminder_server/internal/pkg/log"
	"github.com/qs3c/bill_reminder_server/internal/repository"
	"github.com/qs3c/bill_reminder_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config", err)
	}
	log.Init(log.Config{Level: log.Level(cfg.Log.Level), JSONOutput: cfg.Log.JSON})

	// 初始化数据库、Redis 和提醒任务
	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Reminder.SchedulerEnabled {
		if err := a.Cron.Start(); err != nil {
			log.Fatal("Failed to start scheduler", err)
		}
	} else {
		log.Info("Scheduler disabled, reminders only run on manual trigger")
	}
	go a.WatchRuns(ctx, log.WithComponent("pubsub"))

	// 初始化 Repository
	userRepo := repository.NewUserRepository(a.DB)
	subRepo := repository.NewSubscriptionRepository(a.DB)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg, a.Mailer, log.WithComponent("auth"))
	userService := service.NewUserService(userRepo)
	subService := service.NewSubscriptionService(subRepo, userRepo, cfg)
	dashboardService := service.NewDashboardService(subRepo)

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewSubscriptionHandler(subService),
		handler.NewDashboardHandler(dashboardService),
		handler.NewReminderHandler(a.Cron, a.Board),
		handler.NewHealthHandler(a.Pingers()),
		cfg,
		log.WithComponent("http"),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Logger.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", err)
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown", err)
	}

	// 等待正在执行的提醒任务结束
	if cfg.Reminder.SchedulerEnabled {
		select {
		case <-a.Cron.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn("Reminder run still in progress at shutdown")
		}
	}
	log.Info("Server shutdown complete")
}
