package email

import (
	"context"
	"fmt"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// BrevoTransport 通过 Brevo 事务邮件 API 发送
type BrevoTransport struct {
	client   *brevo.APIClient
	apiKey   string
	from     string
	fromName string
}

func NewBrevoTransport(apiKey, from, fromName string) *BrevoTransport {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	return &BrevoTransport{
		client:   brevo.NewAPIClient(cfg),
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

// WithBasePath 覆盖 API 地址
func (t *BrevoTransport) WithBasePath(basePath string) *BrevoTransport {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", t.apiKey)
	cfg.BasePath = basePath
	t.client = brevo.NewAPIClient(cfg)
	return t
}

func (t *BrevoTransport) SendHTML(ctx context.Context, to, subject, body string) (string, error) {
	if t.apiKey == "" || t.from == "" {
		return "", ErrNotConfigured
	}

	result, _, err := t.client.TransactionalEmailsApi.SendTransacEmail(ctx, brevo.SendSmtpEmail{
		Sender:      &brevo.SendSmtpEmailSender{Name: t.fromName, Email: t.from},
		To:          []brevo.SendSmtpEmailTo{{Email: to}},
		Subject:     subject,
		HtmlContent: body,
	})
	if err != nil {
		return "", fmt.Errorf("brevo send: %w", err)
	}
	return result.MessageId, nil
}
