package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Channel 提醒渠道
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// 计费周期
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
	BillingCustom  = "custom"
)

var Categories = []string{
	"entertainment", "utilities", "software", "fitness",
	"education", "insurance", "food", "transport", "other",
}

type Subscription struct {
	ID                 int64           `gorm:"primaryKey" json:"id"`
	UserID             int64           `gorm:"not null;index" json:"user_id"`
	ServiceName        string          `gorm:"size:100;not null" json:"service_name"`
	Description        string          `gorm:"size:500" json:"description"`
	Category           string          `gorm:"size:30;default:other;index" json:"category"`
	Amount             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency           string          `gorm:"size:10;default:INR" json:"currency"`
	BillingCycle       string          `gorm:"size:20;default:monthly" json:"billing_cycle"`
	BillingCycleDays   int             `gorm:"default:30" json:"billing_cycle_days"`
	StartDate          time.Time       `gorm:"not null" json:"start_date"`
	EndDate            *time.Time      `gorm:"index" json:"end_date"`
	NextDueDate        time.Time       `gorm:"not null;index" json:"next_due_date"`
	ReminderDaysBefore int             `gorm:"default:3" json:"reminder_days_before"`
	PaymentMethod      string          `gorm:"size:50" json:"payment_method"`
	Notes              string          `gorm:"type:text" json:"notes"`
	IsActive           bool            `gorm:"default:true;index" json:"is_active"`
	LastPaidDate       *time.Time      `json:"last_paid_date"`
	Email              string          `gorm:"size:100" json:"email"`
	Phone              *string         `gorm:"size:20" json:"phone"`

	// 提醒记录，只由提醒任务写入
	LastNotified     *int                     `json:"last_notified"`
	RemindersSent    datatypes.JSONSlice[int] `json:"reminders_sent"`
	LastReminderSent *time.Time               `json:"last_reminder_sent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// ResetReminderLedgers 清空两个渠道的提醒记录，用于新计费周期
func (s *Subscription) ResetReminderLedgers() {
	s.LastNotified = nil
	s.RemindersSent = datatypes.JSONSlice[int]{}
}

// PhoneNumber 返回手机号，未设置时为空串
func (s *Subscription) PhoneNumber() string {
	if s.Phone == nil {
		return ""
	}
	return *s.Phone
}

// AdvanceDueDate 按计费周期推算下一个到期日
func (s *Subscription) AdvanceDueDate(from time.Time) time.Time {
	switch s.BillingCycle {
	case BillingYearly:
		return from.AddDate(1, 0, 0)
	case BillingCustom:
		days := s.BillingCycleDays
		if days <= 0 {
			days = 30
		}
		return from.AddDate(0, 0, days)
	default:
		return from.AddDate(0, 1, 0)
	}
}
