package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/pkg/pubsub"
)

// PubSubReporter 将运行汇总发布到 Redis
type PubSubReporter struct {
	publisher *pubsub.Publisher
}

func NewPubSubReporter(publisher *pubsub.Publisher) *PubSubReporter {
	return &PubSubReporter{publisher: publisher}
}

func (r *PubSubReporter) ReportRun(ctx context.Context, result Result) error {
	return r.publisher.PublishRunSummary(ctx, &pubsub.RunSummaryMessage{
		Channel:    string(result.Channel),
		RunID:      result.RunID,
		Status:     result.Status,
		Processed:  result.Processed,
		Sent:       result.Sent,
		Skipped:    result.Skipped,
		Errors:     result.Errors,
		DryRun:     result.DryRun,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// RunBoard 保存每个渠道最近一次运行结果，供状态接口查询
type RunBoard struct {
	mu   sync.RWMutex
	last map[model.Channel]Result
}

func NewRunBoard() *RunBoard {
	return &RunBoard{last: map[model.Channel]Result{}}
}

func (b *RunBoard) ReportRun(_ context.Context, result Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[result.Channel] = result
	return nil
}

// Last 渠道最近一次运行，没有记录时 ok 为 false
func (b *RunBoard) Last(channel model.Channel) (Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.last[channel]
	return r, ok
}

// Snapshot 按渠道名排序返回所有记录
func (b *RunBoard) Snapshot() []Result {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Result, 0, len(b.last))
	for _, r := range b.last {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

type multiReporter []Reporter

// Reporters 依次上报给多个 Reporter，nil 会被忽略
func Reporters(reporters ...Reporter) Reporter {
	var m multiReporter
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multiReporter) ReportRun(ctx context.Context, result Result) error {
	var errs []error
	for _, r := range m {
		if err := r.ReportRun(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
