package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/reminder"
)

var (
	ErrNotConfigured = errors.New("whatsapp: twilio credentials not configured")
	ErrInvalidPhone  = errors.New("whatsapp: phone must be E.164 (+91...)")
)

// MessageCreator twilio Api 服务的子集
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Sender 通过 Twilio WhatsApp 发送提醒，实现 reminder.Sender
type Sender struct {
	api  MessageCreator
	from string
}

// NewSender 凭证不完整时返回 nil api，发送时报 ErrNotConfigured
func NewSender(cfg *config.WhatsAppConfig) *Sender {
	s := &Sender{from: cfg.From}
	if cfg.AccountSID != "" && cfg.AuthToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		s.api = client.Api
	}
	return s
}

func NewSenderWithAPI(api MessageCreator, from string) *Sender {
	return &Sender{api: api, from: from}
}

// Configured 是否可以发送
func (s *Sender) Configured() bool {
	return s.api != nil && s.from != ""
}

func (s *Sender) Send(_ context.Context, msg reminder.Message) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	if !strings.HasPrefix(msg.To, "+") {
		return "", ErrInvalidPhone
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + s.from)
	params.SetTo("whatsapp:" + msg.To)
	params.SetBody(msg.Body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
