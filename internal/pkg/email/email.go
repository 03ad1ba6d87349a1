package email

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/reminder"
)

var ErrNotConfigured = errors.New("email: sender not configured")

// Transport 实际的发送通道，返回消息 ID
type Transport interface {
	SendHTML(ctx context.Context, to, subject, body string) (string, error)
}

// NewTransport 根据 provider 选择 SMTP 或 Brevo
func NewTransport(cfg *config.EmailConfig) Transport {
	if cfg.Provider == "brevo" {
		return NewBrevoTransport(cfg.BrevoAPIKey, cfg.From, cfg.FromName)
	}
	return NewSMTPTransport(cfg)
}

type Service struct {
	transport Transport
}

func NewService(transport Transport) *Service {
	return &Service{transport: transport}
}

// Send 发送提醒邮件，实现 reminder.Sender
func (s *Service) Send(ctx context.Context, msg reminder.Message) (string, error) {
	if msg.To == "" {
		return "", errors.New("email: empty recipient")
	}
	return s.transport.SendHTML(ctx, msg.To, msg.Subject, msg.Body)
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(ctx context.Context, to, name string) error {
	subject := "Welcome to Bill Reminder"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #1976d2;">Welcome, %s!</h2>
        <p>Thanks for signing up for Bill Reminder.</p>
        <p>You can now:</p>
        <ul>
            <li>Track every subscription and bill in one place</li>
            <li>Get email and WhatsApp reminders before they expire</li>
            <li>See your monthly spending by category</li>
        </ul>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This is an automated message, please do not reply.</p>
    </div>
</body>
</html>
`, html.EscapeString(name))

	_, err := s.transport.SendHTML(ctx, to, subject, body)
	return err
}
