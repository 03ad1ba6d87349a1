package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/repository"
)

type DashboardService struct {
	subRepo *repository.SubscriptionRepository
	now     func() time.Time
}

func NewDashboardService(subRepo *repository.SubscriptionRepository) *DashboardService {
	return &DashboardService{subRepo: subRepo, now: time.Now}
}

// Stats 仪表盘统计
func (s *DashboardService) Stats(userID int64) (*dto.DashboardStats, error) {
	today := startOfDay(s.now())
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	active, err := s.subRepo.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.subRepo.ListDueBetween(userID, today, today.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	overdue, err := s.subRepo.ListOverdue(userID, today)
	if err != nil {
		return nil, err
	}

	monthlyTotal := decimal.Zero
	average := decimal.Zero
	for _, sub := range active {
		due := startOfDay(sub.NextDueDate)
		if !due.Before(firstOfMonth) && !due.After(lastOfMonth) {
			monthlyTotal = monthlyTotal.Add(sub.Amount)
		}
		average = average.Add(monthlyEquivalent(sub))
	}

	return &dto.DashboardStats{
		TotalSubscriptions:    int64(len(active)),
		MonthlyTotal:          monthlyTotal.Round(2),
		UpcomingCount:         len(upcoming),
		OverdueCount:          len(overdue),
		AverageMonthlyExpense: average.Round(2),
		UpcomingBills:         toBillSummaries(upcoming),
		OverdueBills:          toBillSummaries(overdue),
	}, nil
}

// CategoryBreakdown 按分类汇总启用中的订阅，按金额降序
func (s *DashboardService) CategoryBreakdown(userID int64) ([]dto.CategoryBreakdown, error) {
	active, err := s.subRepo.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	result := []dto.CategoryBreakdown{}
	for _, sub := range active {
		category := sub.Category
		if category == "" {
			category = "other"
		}
		i, ok := index[category]
		if !ok {
			i = len(result)
			index[category] = i
			result = append(result, dto.CategoryBreakdown{Category: category, Total: decimal.Zero})
		}
		result[i].Count++
		result[i].Total = result[i].Total.Add(sub.Amount)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	return result, nil
}

func toBillSummaries(subs []*model.Subscription) []dto.BillSummary {
	bills := make([]dto.BillSummary, 0, len(subs))
	for _, sub := range subs {
		bills = append(bills, dto.BillSummary{
			ID:          sub.ID,
			ServiceName: sub.ServiceName,
			Amount:      sub.Amount,
			NextDueDate: sub.NextDueDate,
		})
	}
	return bills
}
