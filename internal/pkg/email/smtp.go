package email

import (
	"context"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/qs3c/bill_reminder_server/config"
)

// SMTPTransport 通过 SMTP 发送 HTML 邮件
type SMTPTransport struct {
	cfg      *config.EmailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(cfg *config.EmailConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, sendMail: smtp.SendMail}
}

// SendHTML 发送 HTML 邮件，消息 ID 由本地生成
func (t *SMTPTransport) SendHTML(_ context.Context, to, subject, body string) (string, error) {
	if t.cfg.SMTPHost == "" || t.cfg.Username == "" || t.cfg.Password == "" {
		return "", ErrNotConfigured
	}

	from := t.cfg.From
	if from == "" {
		from = t.cfg.Username
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.cfg.SMTPHost)

	headers := [][2]string{
		{"From", formatFrom(t.cfg.FromName, from)},
		{"To", headerValue(to)},
		{"Subject", mime.QEncoding.Encode("utf-8", headerValue(subject))},
		{"Message-ID", messageID},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", t.cfg.SMTPHost, t.cfg.SMTPPort)

	if err := t.sendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return messageID, nil
}

func formatFrom(name, addr string) string {
	if name == "" {
		return headerValue(addr)
	}
	return (&mail.Address{Name: headerValue(name), Address: headerValue(addr)}).String()
}

// headerValue 头部取值不允许换行，换行会被当成新的头部
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}
