package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/bill_reminder_server/internal/api/middleware"
	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/pkg/response"
	"github.com/qs3c/bill_reminder_server/internal/service"
)

type SubscriptionHandler struct {
	subService *service.SubscriptionService
}

func NewSubscriptionHandler(subService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService: subService,
	}
}

// List 订阅列表
// GET /api/v1/subscriptions?is_active=true
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var query dto.ListSubscriptionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	subs, err := h.subService.List(userID, query.IsActive)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessList(c, len(subs), subs)
}

// Upcoming 即将到期的订阅
// GET /api/v1/subscriptions/upcoming?days=7
func (h *SubscriptionHandler) Upcoming(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var query dto.UpcomingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	subs, err := h.subService.Upcoming(userID, query.Days)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessList(c, len(subs), subs)
}

// Overdue 已逾期的订阅
// GET /api/v1/subscriptions/overdue
func (h *SubscriptionHandler) Overdue(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	subs, err := h.subService.Overdue(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessList(c, len(subs), subs)
}

// Get 订阅详情
// GET /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	sub, err := h.subService.Get(userID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, sub)
}

// Create 创建订阅
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subService.Create(userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", sub)
}

// Update 更新订阅
// PUT /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Update(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subService.Update(userID, id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", sub)
}

// MarkPaid 标记已付款
// PUT /api/v1/subscriptions/:id/mark-paid
func (h *SubscriptionHandler) MarkPaid(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	sub, err := h.subService.MarkPaid(userID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已标记为付款", sub)
}

// Renew 续费并开始新的提醒周期
// POST /api/v1/subscriptions/:id/renew
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	var req dto.RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.subService.Renew(userID, id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "续费成功", sub)
}

// Delete 删除订阅
// DELETE /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	userID, id, ok := h.ids(c)
	if !ok {
		return
	}

	if err := h.subService.Delete(userID, id); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

func (h *SubscriptionHandler) ids(c *gin.Context) (int64, int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return 0, 0, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的订阅ID")
		return 0, 0, false
	}
	return userID, id, true
}

func (h *SubscriptionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubscriptionNotFound), errors.Is(err, service.ErrUserNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrEndBeforeStart),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidServiceName):
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
