package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

var (
	ErrSendFailed = errors.New("reminder: send failed")
	ErrSaveFailed = errors.New("reminder: sent but ledger not saved")
)

// SkipReason 跳过原因，跳过不算错误
type SkipReason string

const (
	SkipNoDestination SkipReason = "no_destination"
	SkipNoEndDate     SkipReason = "no_end_date"
	SkipNoMilestone   SkipReason = "no_milestone"
	SkipAlreadySent   SkipReason = "already_sent"
)

// Outcome 单条订阅的发送结果
type Outcome struct {
	Sent      bool             `json:"sent"`
	DryRun    bool             `json:"dry_run"`
	Skip      SkipReason       `json:"skip,omitempty"`
	MessageID string           `json:"message_id,omitempty"`
	Template  TemplateCategory `json:"template,omitempty"`
}

// LedgerSaver 只写入提醒记录字段
type LedgerSaver interface {
	SaveLedger(ctx context.Context, sub *model.Subscription) error
}

// Dispatcher 检查前置条件、渲染、发送，成功后记录节点
type Dispatcher struct {
	channel *Channel
	store   LedgerSaver
	now     func() time.Time
	dryRun  bool
}

func NewDispatcher(channel *Channel, store LedgerSaver, now func() time.Time, dryRun bool) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{channel: channel, store: store, now: now, dryRun: dryRun}
}

// Dispatch 按顺序检查收件人、到期日、是否已发送，任一不满足则跳过。
// 发送失败时不修改记录，下次运行会重试同一节点；成功时只写一次库。
func (d *Dispatcher) Dispatch(ctx context.Context, sub *model.Subscription, m Milestone) (Outcome, error) {
	to, ok := d.channel.Destination(sub)
	if !ok {
		return Outcome{Skip: SkipNoDestination}, nil
	}
	if sub.EndDate == nil {
		return Outcome{Skip: SkipNoEndDate}, nil
	}
	if d.channel.Ledger.AlreadySent(sub, m) {
		return Outcome{Skip: SkipAlreadySent}, nil
	}

	msg := d.channel.Render(sub, m)
	msg.To = to
	msg.Template = TemplateFor(m)

	if d.dryRun {
		return Outcome{Sent: true, DryRun: true, Template: msg.Template}, nil
	}

	id, err := d.channel.Sender.Send(ctx, msg)
	if err != nil {
		return Outcome{Template: msg.Template}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	out := Outcome{Sent: true, MessageID: id, Template: msg.Template}
	d.channel.Ledger.Record(sub, m, d.now())
	if err := d.store.SaveLedger(ctx, sub); err != nil {
		return out, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return out, nil
}
