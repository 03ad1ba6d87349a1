package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/repository"
	"github.com/qs3c/bill_reminder_server/internal/testutil"
)

func TestDashboardService_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := NewDashboardService(repository.NewSubscriptionRepository(db))
	service.now = func() time.Time { return serviceNow }

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	// 本月、7 天内到期
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithServiceName("Netflix"),
		testutil.WithAmount("649"),
		testutil.WithNextDueDate(day(2026, 4, 12)),
	)
	// 本月、已逾期
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithServiceName("Gym"),
		testutil.WithAmount("1200"),
		testutil.WithBillingCycle(model.BillingYearly, 365),
		testutil.WithNextDueDate(day(2026, 4, 2)),
	)
	// 下个月
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithServiceName("Cloud"),
		testutil.WithAmount("100"),
		testutil.WithBillingCycle(model.BillingCustom, 15),
		testutil.WithNextDueDate(day(2026, 5, 3)),
	)
	// 不计入
	testutil.TestSubscription(t, db, user.ID,
		testutil.WithAmount("999"),
		testutil.WithActive(false),
		testutil.WithNextDueDate(day(2026, 4, 11)),
	)
	testutil.TestSubscription(t, db, other.ID,
		testutil.WithAmount("50"),
		testutil.WithNextDueDate(day(2026, 4, 11)),
	)

	stats, err := service.Stats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalSubscriptions)
	assert.True(t, decimal.NewFromInt(1849).Equal(stats.MonthlyTotal), stats.MonthlyTotal.String())
	assert.Equal(t, 1, stats.UpcomingCount)
	assert.Equal(t, 1, stats.OverdueCount)
	// 649 + 1200/12 + 100*30/15
	assert.True(t, decimal.NewFromInt(949).Equal(stats.AverageMonthlyExpense), stats.AverageMonthlyExpense.String())

	require.Len(t, stats.UpcomingBills, 1)
	assert.Equal(t, "Netflix", stats.UpcomingBills[0].ServiceName)
	require.Len(t, stats.OverdueBills, 1)
	assert.Equal(t, "Gym", stats.OverdueBills[0].ServiceName)
}

func TestDashboardService_Stats_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := NewDashboardService(repository.NewSubscriptionRepository(db))
	user := testutil.TestUser(t, db)

	stats, err := service.Stats(user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSubscriptions)
	assert.True(t, stats.MonthlyTotal.IsZero())
	assert.NotNil(t, stats.UpcomingBills)
	assert.NotNil(t, stats.OverdueBills)
}

func TestDashboardService_CategoryBreakdown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := NewDashboardService(repository.NewSubscriptionRepository(db))
	user := testutil.TestUser(t, db)

	testutil.TestSubscription(t, db, user.ID, testutil.WithCategory("entertainment"), testutil.WithAmount("199"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithCategory("entertainment"), testutil.WithAmount("649"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithCategory("utilities"), testutil.WithAmount("1500.50"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithCategory("fitness"), testutil.WithAmount("300"), testutil.WithActive(false))

	breakdown, err := service.CategoryBreakdown(user.ID)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)

	assert.Equal(t, "utilities", breakdown[0].Category)
	assert.Equal(t, int64(1), breakdown[0].Count)
	assert.True(t, decimal.RequireFromString("1500.50").Equal(breakdown[0].Total))

	assert.Equal(t, "entertainment", breakdown[1].Category)
	assert.Equal(t, int64(2), breakdown[1].Count)
	assert.True(t, decimal.RequireFromString("848").Equal(breakdown[1].Total))
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		cycle  string
		days   int
		amount string
		want   string
	}{
		{model.BillingMonthly, 30, "499", "499"},
		{model.BillingYearly, 365, "1200", "100"},
		{model.BillingCustom, 90, "900", "300"},
		{model.BillingCustom, 0, "900", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.cycle, func(t *testing.T) {
			sub := &model.Subscription{BillingCycle: tt.cycle, BillingCycleDays: tt.days, Amount: decimal.RequireFromString(tt.amount)}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(monthlyEquivalent(sub)))
		})
	}
}
