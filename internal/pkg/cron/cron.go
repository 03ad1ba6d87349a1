package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"

	robfig "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/reminder"
)

var ErrUnknownChannel = errors.New("cron: unknown reminder channel")

type Service struct {
	cron      *robfig.Cron
	runners   map[model.Channel]*reminder.Runner
	schedules map[model.Channel]string
	logger    zerolog.Logger
}

func NewService(cfg config.ReminderConfig, logger zerolog.Logger, runners ...*reminder.Runner) *Service {
	c := robfig.New(
		robfig.WithLocation(cfg.Location()),
		robfig.WithChain(robfig.Recover(cronLogger{logger})),
	)

	s := &Service{
		cron:    c,
		runners: make(map[model.Channel]*reminder.Runner, len(runners)),
		schedules: map[model.Channel]string{
			model.ChannelEmail:    cfg.EmailSchedule,
			model.ChannelWhatsApp: cfg.WhatsAppSchedule,
		},
		logger: logger,
	}
	for _, r := range runners {
		s.runners[r.Channel()] = r
	}
	return s
}

// Start 注册每个渠道的每日任务并启动调度
func (s *Service) Start() error {
	for _, ch := range s.Channels() {
		runner := s.runners[ch]
		spec := s.schedules[ch]
		if _, err := s.cron.AddFunc(spec, func() { s.runScheduled(runner) }); err != nil {
			return fmt.Errorf("schedule %s reminders (%q): %w", ch, spec, err)
		}
		s.logger.Info().Str("channel", string(ch)).Str("schedule", spec).Msg("reminder job scheduled")
	}

	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Cron service started")
	return nil
}

// Stop 停止调度，返回的 ctx 在正在执行的任务结束后关闭
func (s *Service) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info().Msg("Cron service stopped")
	return ctx
}

// RunNow 立即执行某个渠道的提醒任务（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context, channel model.Channel, dryRun bool) (reminder.Result, error) {
	runner, ok := s.runners[channel]
	if !ok {
		return reminder.Result{}, ErrUnknownChannel
	}
	if dryRun {
		runner = runner.DryRun()
	}
	s.logger.Info().Str("channel", string(channel)).Bool("dry_run", dryRun).Msg("Manual reminder run triggered")
	return runner.Run(ctx)
}

// RunOne 对单条订阅执行提醒
func (s *Service) RunOne(ctx context.Context, channel model.Channel, subscriptionID int64, dryRun bool) (reminder.Outcome, error) {
	runner, ok := s.runners[channel]
	if !ok {
		return reminder.Outcome{}, ErrUnknownChannel
	}
	if dryRun {
		runner = runner.DryRun()
	}
	return runner.RunOne(ctx, subscriptionID)
}

// Channels 已注册的渠道，按名称排序
func (s *Service) Channels() []model.Channel {
	channels := make([]model.Channel, 0, len(s.runners))
	for ch := range s.runners {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
	return channels
}

func (s *Service) runScheduled(runner *reminder.Runner) {
	_, err := runner.Run(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, reminder.ErrRunInProgress):
		s.logger.Info().Str("channel", string(runner.Channel())).Msg("scheduled run skipped, another instance holds the lease")
	default:
		s.logger.Error().Err(err).Str("channel", string(runner.Channel())).Msg("scheduled reminder run failed")
	}
}

// cronLogger 适配 robfig/cron 的日志接口
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
