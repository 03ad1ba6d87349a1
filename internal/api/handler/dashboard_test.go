package handler

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/pkg/response"
	"github.com/qs3c/bill_reminder_server/internal/repository"
	"github.com/qs3c/bill_reminder_server/internal/service"
	"github.com/qs3c/bill_reminder_server/internal/testutil"
)

func TestDashboardHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	testutil.TestSubscription(t, db, user.ID, testutil.WithCategory("software"), testutil.WithAmount("100"), testutil.WithNextDueDate(today.AddDate(0, 0, 2)))
	testutil.TestSubscription(t, db, user.ID, testutil.WithCategory("fitness"), testutil.WithAmount("300"), testutil.WithNextDueDate(today.AddDate(0, 0, -1)))

	h := NewDashboardHandler(service.NewDashboardService(repository.NewSubscriptionRepository(db)))
	router := gin.New()
	router.GET("/stats", withUser(user.ID), h.Stats)
	router.GET("/categories", withUser(user.ID), h.Categories)
	router.GET("/anonymous", h.Stats)

	resp := parseResponse(t, performRequest(router, "GET", "/stats", nil))
	require.Equal(t, response.CodeSuccess, resp.Code)
	var stats dto.DashboardStats
	decodeData(t, resp, &stats)
	assert.Equal(t, int64(2), stats.TotalSubscriptions)
	assert.Equal(t, 1, stats.UpcomingCount)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, "400", stats.AverageMonthlyExpense.String())

	resp = parseResponse(t, performRequest(router, "GET", "/categories", nil))
	require.Equal(t, response.CodeSuccess, resp.Code)
	var list struct {
		Count int                     `json:"count"`
		Items []dto.CategoryBreakdown `json:"items"`
	}
	decodeData(t, resp, &list)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "fitness", list.Items[0].Category)

	resp = parseResponse(t, performRequest(router, "GET", "/anonymous", nil))
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}
