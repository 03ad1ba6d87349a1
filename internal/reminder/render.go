package reminder

import (
	"fmt"
	"html"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

type emailTemplate struct {
	subject string
	icon    string
	title   string
	message string
}

// 同一模板分类使用同一主题色
var templateColors = map[TemplateCategory]string{
	TemplateSevenDays: "#1976d2",
	TemplateThreeDays: "#ff9800",
	TemplateOneDay:    "#d32f2f",
	TemplateExpiring:  "#b71c1c",
}

func emailTemplateFor(m Milestone, service string) emailTemplate {
	switch m {
	case 7:
		return emailTemplate{fmt.Sprintf("⏰ %s expires in 7 days", service), "⏰",
			"Subscription Renewal Reminder", "Your subscription expires in <strong>7 days</strong>"}
	case 3:
		return emailTemplate{fmt.Sprintf("⏰ %s expires in 3 days", service), "⚠️",
			"Urgent: 3 Days Until Expiry", "Your subscription expires in <strong>3 days</strong>"}
	case 2:
		return emailTemplate{fmt.Sprintf("⚠️ %s expires in 2 days", service), "⚠️",
			"Critical: 2 Days Until Expiry", "Your subscription expires in <strong>2 days</strong>"}
	case 1:
		return emailTemplate{fmt.Sprintf("🚨 %s expires TOMORROW", service), "🚨",
			"URGENT: Expires Tomorrow!", "Your subscription expires <strong>TOMORROW</strong>"}
	case 0:
		return emailTemplate{fmt.Sprintf("❌ %s expired today", service), "❌",
			"Subscription Expired", "Your subscription <strong>expired today</strong>"}
	default:
		return emailTemplate{fmt.Sprintf("❌ %s is overdue", service), "❌",
			"Subscription Overdue", "Your subscription <strong>expired yesterday</strong>"}
	}
}

// formatAmount INR 显示为 ₹，其它币种带币种代码
func formatAmount(sub *model.Subscription) string {
	if sub.Currency == "" || sub.Currency == "INR" {
		return "₹" + sub.Amount.StringFixed(2)
	}
	return sub.Currency + " " + sub.Amount.StringFixed(2)
}

// RenderEmail 渲染邮件提醒，Destination 由调用方填充
func RenderEmail(sub *model.Subscription, m Milestone) Message {
	service := html.EscapeString(sub.ServiceName)
	category := TemplateFor(m)
	tpl := emailTemplateFor(m, sub.ServiceName)

	expiry := ""
	if sub.EndDate != nil {
		expiry = sub.EndDate.UTC().Format("2 Jan 2006")
	}

	footer := "Renew now to restore service."
	if m > 0 {
		footer = "Please renew your subscription before it expires."
	}

	body := fmt.Sprintf(`
<div style="font-family: 'Segoe UI', sans-serif; max-width: 600px; margin: 0 auto; color: #333;">
    <div style="background-color: %[1]s; color: white; padding: 20px; border-radius: 8px 8px 0 0; text-align: center;">
        <h1 style="margin: 0; font-size: 24px;">%[2]s %[3]s</h1>
    </div>
    <div style="background-color: #f9f9f9; padding: 25px; border-radius: 0 0 8px 8px;">
        <p style="font-size: 16px; margin: 0 0 20px 0;">%[4]s</p>
        <div style="background-color: white; border-left: 4px solid %[1]s; padding: 15px; margin: 20px 0; border-radius: 4px;">
            <p style="margin: 8px 0;"><strong>Service:</strong> %[5]s</p>
            <p style="margin: 8px 0;"><strong>Amount:</strong> %[6]s</p>
            <p style="margin: 8px 0;"><strong>Expiry Date:</strong> %[7]s</p>
            <p style="margin: 8px 0;"><strong>Category:</strong> %[8]s</p>
        </div>
        <p style="font-size: 14px; color: #666; margin-top: 20px;">%[9]s</p>
        <hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
        <p style="font-size: 11px; color: #999; text-align: center; margin: 0;">Bill Reminder • Automated Subscription Management</p>
    </div>
</div>
`, templateColors[category], tpl.icon, tpl.title, tpl.message, service, formatAmount(sub), expiry,
		html.EscapeString(sub.Category), footer)

	return Message{Subject: tpl.subject, Body: body, Template: category}
}

// RenderWhatsApp 渲染 WhatsApp 文本提醒
func RenderWhatsApp(sub *model.Subscription, m Milestone) Message {
	expiry := ""
	if sub.EndDate != nil {
		expiry = sub.EndDate.UTC().Format("02/01/2006")
	}

	var body string
	switch {
	case m < 0:
		body = fmt.Sprintf("❌ %s subscription expired.\n\n📅 Expiry Date: %s", sub.ServiceName, expiry)
	case m == 0:
		body = fmt.Sprintf("⏰ %s expires *TODAY*!\n\n📅 Expiry: %s", sub.ServiceName, expiry)
	default:
		unit := "day"
		if m > 1 {
			unit = "days"
		}
		body = fmt.Sprintf("⏰ %s expires in %d %s.\n\n📅 Expiry: %s", sub.ServiceName, int(m), unit, expiry)
	}
	return Message{Body: body, Template: TemplateFor(m)}
}
