package reminder

import (
	"slices"
	"time"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

// Ledger 记录某个渠道已经发送过的节点
type Ledger interface {
	AlreadySent(sub *model.Subscription, m Milestone) bool
	// Record 只修改内存中的记录，持久化由调用方完成
	Record(sub *model.Subscription, m Milestone, at time.Time)
}

// ScalarLedger 邮件渠道：只记住最近一次发送的节点。
// 按调用顺序单调，不按节点大小，同一周期内再次算出相同节点不会重发。
type ScalarLedger struct{}

func (ScalarLedger) AlreadySent(sub *model.Subscription, m Milestone) bool {
	return sub.LastNotified != nil && *sub.LastNotified == int(m)
}

func (ScalarLedger) Record(sub *model.Subscription, m Milestone, at time.Time) {
	v := int(m)
	sub.LastNotified = &v
	sub.LastReminderSent = &at
}

// SetLedger WhatsApp 渠道：记住本周期内发送过的所有节点
type SetLedger struct{}

func (SetLedger) AlreadySent(sub *model.Subscription, m Milestone) bool {
	return slices.Contains(sub.RemindersSent, int(m))
}

func (SetLedger) Record(sub *model.Subscription, m Milestone, at time.Time) {
	if !slices.Contains(sub.RemindersSent, int(m)) {
		sub.RemindersSent = append(sub.RemindersSent, int(m))
	}
	sub.LastReminderSent = &at
}
