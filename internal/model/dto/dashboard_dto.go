package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalSubscriptions    int64           `json:"total_subscriptions"`
	MonthlyTotal          decimal.Decimal `json:"monthly_total"`
	UpcomingCount         int             `json:"upcoming_count"`
	OverdueCount          int             `json:"overdue_count"`
	AverageMonthlyExpense decimal.Decimal `json:"average_monthly_expense"`
	UpcomingBills         []BillSummary   `json:"upcoming_bills"`
	OverdueBills          []BillSummary   `json:"overdue_bills"`
}

// BillSummary 仪表盘中的账单条目
type BillSummary struct {
	ID          int64           `json:"id"`
	ServiceName string          `json:"service_name"`
	Amount      decimal.Decimal `json:"amount"`
	NextDueDate time.Time       `json:"next_due_date"`
}

// CategoryBreakdown 分类汇总
type CategoryBreakdown struct {
	Category string          `json:"category"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}
