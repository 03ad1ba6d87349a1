package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/api/handler"
	"github.com/qs3c/bill_reminder_server/internal/database"
	"github.com/qs3c/bill_reminder_server/internal/pkg/cron"
	"github.com/qs3c/bill_reminder_server/internal/pkg/email"
	"github.com/qs3c/bill_reminder_server/internal/pkg/lock"
	applog "github.com/qs3c/bill_reminder_server/internal/pkg/log"
	"github.com/qs3c/bill_reminder_server/internal/pkg/pubsub"
	"github.com/qs3c/bill_reminder_server/internal/pkg/whatsapp"
	"github.com/qs3c/bill_reminder_server/internal/reminder"
	"github.com/qs3c/bill_reminder_server/internal/repository"
)

// App 进程共享的基础组件
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client // 未启用时为 nil
	Mailer  *email.Service
	Board   *reminder.RunBoard
	Runners []*reminder.Runner
	Cron    *cron.Service
}

// New 初始化数据库、可选的 Redis 以及各渠道的提醒任务
func New(cfg *config.Config) (*App, error) {
	logger := applog.WithComponent("app")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Database connected")

	if cfg.Seed.DemoUsers {
		if err := database.SeedDemoUsers(db); err != nil {
			return nil, fmt.Errorf("seed demo users: %w", err)
		}
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Mailer: email.NewService(email.NewTransport(&cfg.Email)),
		Board:  reminder.NewRunBoard(),
	}

	if cfg.Redis.Enabled {
		a.Redis, err = database.NewRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info().Msg("Redis connected")
	}

	a.Runners = a.buildRunners()
	a.Cron = cron.NewService(cfg.Reminder, applog.WithComponent("cron"), a.Runners...)
	return a, nil
}

func (a *App) buildRunners() []*reminder.Runner {
	subRepo := repository.NewSubscriptionRepository(a.DB)

	opts := []reminder.Option{}
	reporters := []reminder.Reporter{a.Board}
	if a.Redis != nil {
		opts = append(opts, reminder.WithLocker(lock.NewRedisLocker(a.Redis), a.Config.Reminder.LeaseTTL))
		reporters = append(reporters, reminder.NewPubSubReporter(pubsub.NewPublisher(a.Redis)))
	}
	opts = append(opts, reminder.WithReporter(reminder.Reporters(reporters...)))

	runners := []*reminder.Runner{
		reminder.NewRunner(reminder.NewEmailChannel(a.Mailer), subRepo,
			append(opts, reminder.WithLogger(applog.WithComponent("reminder.email")))...),
	}

	sender := whatsapp.NewSender(&a.Config.WhatsApp)
	if sender.Configured() {
		runners = append(runners, reminder.NewRunner(reminder.NewWhatsAppChannel(sender), subRepo,
			append(opts, reminder.WithLogger(applog.WithComponent("reminder.whatsapp")))...))
	} else {
		applog.Warn("WhatsApp credentials missing, whatsapp reminders disabled")
	}
	return runners
}

// Pingers 健康检查项
func (a *App) Pingers() map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error { return database.Ping(ctx, a.DB) },
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return checks
}

// WatchRuns 记录其他实例发布的运行汇总，阻塞直到 ctx 取消
func (a *App) WatchRuns(ctx context.Context, logger zerolog.Logger) {
	if a.Redis == nil {
		return
	}
	err := pubsub.NewSubscriber(a.Redis).Subscribe(ctx, func(msg *pubsub.RunSummaryMessage) {
		logger.Info().
			Str("channel", msg.Channel).
			Str("run_id", msg.RunID).
			Str("status", msg.Status).
			Int("sent", msg.Sent).
			Int("errors", msg.Errors).
			Msg("reminder run finished")
	})
	if err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("run summary subscription ended")
	}
}

// Close 释放连接
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if err := database.Close(a.DB); err != nil {
		applog.Error("close database", err)
	}
}
