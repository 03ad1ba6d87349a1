package dto

import "github.com/shopspring/decimal"

// CreateSubscriptionRequest 创建订阅请求，日期格式 YYYY-MM-DD
type CreateSubscriptionRequest struct {
	ServiceName        string           `json:"service_name" binding:"required,max=100"`
	Description        string           `json:"description" binding:"omitempty,max=500"`
	Category           string           `json:"category"`
	Amount             *decimal.Decimal `json:"amount" binding:"required"`
	Currency           string           `json:"currency" binding:"omitempty,max=10"`
	BillingCycle       string           `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly custom"`
	BillingCycleDays   int              `json:"billing_cycle_days" binding:"omitempty,min=1"`
	StartDate          string           `json:"start_date" binding:"required"`
	EndDate            string           `json:"end_date" binding:"required"`
	ReminderDaysBefore *int             `json:"reminder_days_before" binding:"omitempty,min=0,max=30"`
	PaymentMethod      string           `json:"payment_method" binding:"omitempty,max=50"`
	Notes              string           `json:"notes"`
	Email              string           `json:"email" binding:"omitempty,email"`
	Phone              string           `json:"phone" binding:"omitempty,max=20"`
}

// UpdateSubscriptionRequest 更新订阅请求，只允许修改以下字段
type UpdateSubscriptionRequest struct {
	ServiceName        *string          `json:"service_name,omitempty" binding:"omitempty,max=100"`
	Description        *string          `json:"description,omitempty" binding:"omitempty,max=500"`
	Category           *string          `json:"category,omitempty"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Currency           *string          `json:"currency,omitempty" binding:"omitempty,max=10"`
	BillingCycle       *string          `json:"billing_cycle,omitempty" binding:"omitempty,oneof=monthly yearly custom"`
	BillingCycleDays   *int             `json:"billing_cycle_days,omitempty" binding:"omitempty,min=1"`
	StartDate          *string          `json:"start_date,omitempty"`
	EndDate            *string          `json:"end_date,omitempty"`
	NextDueDate        *string          `json:"next_due_date,omitempty"`
	ReminderDaysBefore *int             `json:"reminder_days_before,omitempty" binding:"omitempty,min=0,max=30"`
	PaymentMethod      *string          `json:"payment_method,omitempty" binding:"omitempty,max=50"`
	Notes              *string          `json:"notes,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	Email              *string          `json:"email,omitempty" binding:"omitempty,email"`
	Phone              *string          `json:"phone,omitempty" binding:"omitempty,max=20"`
}

// RenewSubscriptionRequest 续费请求，开始新的计费周期
type RenewSubscriptionRequest struct {
	EndDate string `json:"end_date" binding:"required"`
}

// ListSubscriptionsQuery 订阅列表查询
type ListSubscriptionsQuery struct {
	IsActive *bool `form:"is_active"`
}

// UpcomingQuery 即将到期查询
type UpcomingQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}
