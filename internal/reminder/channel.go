package reminder

import (
	"context"
	"strings"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

// Message 渲染后的提醒内容，WhatsApp 不使用 Subject
type Message struct {
	To       string
	Subject  string
	Body     string
	Template TemplateCategory
}

// Sender 外部发送方，成功时返回消息 ID
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SenderFunc 便于测试和组合
type SenderFunc func(ctx context.Context, msg Message) (string, error)

func (f SenderFunc) Send(ctx context.Context, msg Message) (string, error) {
	return f(ctx, msg)
}

// Channel 一个提醒渠道：去重记录、发送方、收件人解析和渲染
type Channel struct {
	Name        model.Channel
	Ledger      Ledger
	Sender      Sender
	Destination func(sub *model.Subscription) (string, bool)
	Render      func(sub *model.Subscription, m Milestone) Message
}

// NewEmailChannel 邮件渠道，收件人优先使用订阅上的邮箱，否则使用所属用户邮箱
func NewEmailChannel(sender Sender) *Channel {
	return &Channel{
		Name:        model.ChannelEmail,
		Ledger:      ScalarLedger{},
		Sender:      sender,
		Destination: emailDestination,
		Render:      RenderEmail,
	}
}

// NewWhatsAppChannel WhatsApp 渠道，手机号必须是 + 开头的 E.164 格式
func NewWhatsAppChannel(sender Sender) *Channel {
	return &Channel{
		Name:        model.ChannelWhatsApp,
		Ledger:      SetLedger{},
		Sender:      sender,
		Destination: whatsAppDestination,
		Render:      RenderWhatsApp,
	}
}

func emailDestination(sub *model.Subscription) (string, bool) {
	if to := strings.TrimSpace(sub.Email); to != "" {
		return to, true
	}
	if sub.User != nil && strings.TrimSpace(sub.User.Email) != "" {
		return strings.TrimSpace(sub.User.Email), true
	}
	return "", false
}

func whatsAppDestination(sub *model.Subscription) (string, bool) {
	phone := strings.TrimSpace(sub.PhoneNumber())
	if phone == "" || !strings.HasPrefix(phone, "+") {
		return "", false
	}
	return phone, true
}
