package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

var seq atomic.Int64

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := seq.Add(1)
	user := &model.User{
		Username:                  fmt.Sprintf("testuser_%d", n),
		Email:                     fmt.Sprintf("test_%d@example.com", n),
		PasswordHash:              "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		EmailNotificationsEnabled: true,
		DefaultReminderDays:       3,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = hash
	}
}

// TestSubscription 创建测试订阅，默认 30 天后到期的月付订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	end := today.AddDate(0, 0, 30)
	sub := &model.Subscription{
		UserID:             userID,
		ServiceName:        fmt.Sprintf("Service %d", seq.Add(1)),
		Category:           "software",
		Amount:             decimal.NewFromInt(499),
		Currency:           "INR",
		BillingCycle:       model.BillingMonthly,
		BillingCycleDays:   30,
		StartDate:          today,
		EndDate:            &end,
		NextDueDate:        today,
		ReminderDaysBefore: 3,
		IsActive:           true,
		RemindersSent:      datatypes.JSONSlice[int]{},
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	// is_active 带默认值，false 需要单独更新
	if !sub.IsActive {
		db.Model(sub).Update("is_active", false)
	}

	return sub
}

// WithServiceName 设置服务名
func WithServiceName(name string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.ServiceName = name
	}
}

// WithEndDate 设置到期日，nil 表示没有到期日
func WithEndDate(end *time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.EndDate = end
	}
}

// WithNextDueDate 设置下次扣费日
func WithNextDueDate(d time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.NextDueDate = d
	}
}

// WithPhone 设置 WhatsApp 手机号
func WithPhone(phone string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Phone = &phone
	}
}

// WithSubscriptionEmail 设置订阅提醒邮箱
func WithSubscriptionEmail(email string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Email = email
	}
}

// WithAmount 设置金额
func WithAmount(amount string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Amount = decimal.RequireFromString(amount)
	}
}

// WithCategory 设置分类
func WithCategory(category string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Category = category
	}
}

// WithBillingCycle 设置计费周期
func WithBillingCycle(cycle string, days int) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.BillingCycle = cycle
		s.BillingCycleDays = days
	}
}

// WithActive 设置是否启用
func WithActive(active bool) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.IsActive = active
	}
}

// WithLastNotified 设置邮件提醒记录
func WithLastNotified(m int) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.LastNotified = &m
	}
}

// WithRemindersSent 设置 WhatsApp 提醒记录
func WithRemindersSent(ms ...int) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.RemindersSent = datatypes.JSONSlice[int](ms)
	}
}
