package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/pkg/metrics"
)

var (
	ErrRunInProgress = errors.New("reminder: run already in progress for this channel")
	ErrNotEligible   = errors.New("reminder: subscription not eligible")
)

// 运行状态
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusLocked    = "locked"
	StatusCancelled = "cancelled" // ctx 取消，批次未处理完
)

// Store 提醒任务依赖的存储能力
type Store interface {
	LedgerSaver
	// FindActiveEligible 返回启用且设置了渠道目标字段的订阅，可能包含没有到期日的记录
	FindActiveEligible(ctx context.Context, channel model.Channel) ([]*model.Subscription, error)
	LoadByID(ctx context.Context, id int64) (*model.Subscription, error)
}

// Locker 渠道+日期维度的租约，ok 为 false 表示已有实例在执行
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// Reporter 运行结束后上报汇总
type Reporter interface {
	ReportRun(ctx context.Context, result Result) error
}

// Result 一次运行的汇总
type Result struct {
	Channel   model.Channel `json:"channel"`
	RunID     string        `json:"run_id"`
	Status    string        `json:"status"`
	Processed int           `json:"processed"`
	Sent      int           `json:"sent"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	DryRun    bool          `json:"dry_run"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

type Runner struct {
	channel  *Channel
	store    Store
	logger   zerolog.Logger
	now      func() time.Time
	dryRun   bool
	locker   Locker
	leaseTTL time.Duration
	reporter Reporter
}

type Option func(*Runner)

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = locker
		r.leaseTTL = ttl
	}
}

func WithReporter(reporter Reporter) Option {
	return func(r *Runner) { r.reporter = reporter }
}

func NewRunner(channel *Channel, store Store, opts ...Option) *Runner {
	r := &Runner{
		channel:  channel,
		store:    store,
		logger:   zerolog.Nop(),
		now:      time.Now,
		leaseTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DryRun 返回只渲染不发送的副本
func (r *Runner) DryRun() *Runner {
	c := *r
	c.dryRun = true
	return &c
}

// Channel 返回运行器对应的渠道
func (r *Runner) Channel() model.Channel {
	return r.channel.Name
}

// LeaseKey 同一渠道同一 UTC 日期只允许一个实例执行
func LeaseKey(channel model.Channel, now time.Time) string {
	return fmt.Sprintf("reminder:lease:%s:%s", channel, now.UTC().Format("2006-01-02"))
}

// Run 扫描渠道下所有符合条件的订阅并逐条发送，单条失败不影响其余订阅
func (r *Runner) Run(ctx context.Context) (Result, error) {
	begin := time.Now()
	now := r.now()
	result := Result{
		Channel:   r.channel.Name,
		RunID:     uuid.NewString(),
		DryRun:    r.dryRun,
		StartedAt: now,
	}
	logger := r.logger.With().
		Str("channel", string(r.channel.Name)).
		Str("run_id", result.RunID).
		Bool("dry_run", r.dryRun).
		Logger()

	if r.locker != nil && !r.dryRun {
		unlock, ok, err := r.locker.TryLock(ctx, LeaseKey(r.channel.Name, now), r.leaseTTL)
		if err != nil {
			r.finish(ctx, begin, &result, StatusError)
			return result, fmt.Errorf("acquire lease: %w", err)
		}
		if !ok {
			logger.Info().Msg("reminder run skipped, lease held by another instance")
			r.finish(ctx, begin, &result, StatusLocked)
			return result, ErrRunInProgress
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("release lease failed")
			}
		}()
	}

	logger.Info().Msg("reminder run started")

	subs, err := r.store.FindActiveEligible(ctx, r.channel.Name)
	if err != nil {
		logger.Error().Err(err).Msg("reminder run aborted, fetch subscriptions failed")
		r.finish(ctx, begin, &result, StatusError)
		return result, fmt.Errorf("fetch subscriptions: %w", err)
	}

	dispatcher := NewDispatcher(r.channel, r.store, r.now, r.dryRun)
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).
				Int("processed", result.Processed).
				Int("remaining", len(subs)-result.Processed).
				Msg("reminder run cancelled")
			r.finish(ctx, begin, &result, StatusCancelled)
			return result, err
		}
		result.Processed++
		r.tally(&result, r.processOne(ctx, dispatcher, sub, now, logger))
	}

	r.finish(ctx, begin, &result, StatusOK)
	logger.Info().
		Int("processed", result.Processed).
		Int("sent", result.Sent).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Dur("elapsed", result.Duration).
		Msg("reminder run finished")

	return result, nil
}

// RunOne 只处理一条订阅，用于运维排查
func (r *Runner) RunOne(ctx context.Context, id int64) (Outcome, error) {
	sub, err := r.store.LoadByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !sub.IsActive {
		return Outcome{}, ErrNotEligible
	}

	logger := r.logger.With().Str("channel", string(r.channel.Name)).Int64("subscription_id", id).Logger()
	now := r.now()
	if sub.EndDate == nil {
		return Outcome{Skip: SkipNoEndDate}, nil
	}
	m, ok := MilestoneFor(DaysRemaining(*sub.EndDate, now))
	if !ok {
		return Outcome{Skip: SkipNoMilestone}, nil
	}

	out, err := NewDispatcher(r.channel, r.store, r.now, r.dryRun).Dispatch(ctx, sub, m)
	if err != nil {
		logger.Error().Err(err).Str("milestone", m.String()).Msg("reminder send failed")
	}
	return out, err
}

type itemResult struct {
	outcome Outcome
	err     error
}

func (r *Runner) processOne(ctx context.Context, d *Dispatcher, sub *model.Subscription, now time.Time, logger zerolog.Logger) (res itemResult) {
	logger = logger.With().Int64("subscription_id", sub.ID).Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("reminder processing panicked")
			res = itemResult{err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if sub.EndDate == nil {
		logger.Info().Str("reason", string(SkipNoEndDate)).Msg("reminder skipped")
		return itemResult{outcome: Outcome{Skip: SkipNoEndDate}}
	}

	days := DaysRemaining(*sub.EndDate, now)
	m, ok := MilestoneFor(days)
	if !ok {
		logger.Debug().Int("days_remaining", days).Msg("no milestone today")
		return itemResult{outcome: Outcome{Skip: SkipNoMilestone}}
	}

	logger = logger.With().Str("milestone", m.String()).Logger()
	out, err := d.Dispatch(ctx, sub, m)
	if out.Template != "" {
		logger = logger.With().Str("template", string(out.Template)).Logger()
	}
	switch {
	case err != nil:
		logger.Error().Err(err).Str("service", sub.ServiceName).Msg("reminder failed")
	case out.Skip != "":
		logger.Info().Str("reason", string(out.Skip)).Msg("reminder skipped")
	case out.DryRun:
		logger.Info().Msg("reminder would be sent")
	default:
		logger.Info().Str("message_id", out.MessageID).Msg("reminder sent and recorded")
	}
	return itemResult{outcome: out, err: err}
}

func (r *Runner) tally(result *Result, item itemResult) {
	var outcome string
	switch {
	case item.err != nil:
		result.Errors++
		outcome = "error"
	case item.outcome.Skip != "":
		result.Skipped++
		outcome = "skipped"
	default:
		result.Sent++
		outcome = "sent"
		if item.outcome.DryRun {
			outcome = "dry_run"
		}
	}
	metrics.NotificationsTotal.WithLabelValues(string(r.channel.Name), outcome).Inc()
}

func (r *Runner) finish(ctx context.Context, begin time.Time, result *Result, status string) {
	result.Duration = time.Since(begin)
	result.Status = status
	metrics.RunsTotal.WithLabelValues(string(r.channel.Name), status).Inc()
	metrics.RunDuration.WithLabelValues(string(r.channel.Name)).Observe(result.Duration.Seconds())

	if r.reporter == nil || status == StatusLocked {
		return
	}
	if err := r.reporter.ReportRun(context.WithoutCancel(ctx), *result); err != nil {
		r.logger.Warn().Err(err).Str("run_id", result.RunID).Msg("report run summary failed")
	}
}
