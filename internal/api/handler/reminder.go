package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/pkg/cron"
	"github.com/qs3c/bill_reminder_server/internal/pkg/response"
	"github.com/qs3c/bill_reminder_server/internal/reminder"
)

// ReminderTrigger 手动触发提醒任务，由 cron.Service 实现
type ReminderTrigger interface {
	RunNow(ctx context.Context, channel model.Channel, dryRun bool) (reminder.Result, error)
	RunOne(ctx context.Context, channel model.Channel, subscriptionID int64, dryRun bool) (reminder.Outcome, error)
	Channels() []model.Channel
}

type ReminderHandler struct {
	trigger ReminderTrigger
	board   *reminder.RunBoard
}

func NewReminderHandler(trigger ReminderTrigger, board *reminder.RunBoard) *ReminderHandler {
	return &ReminderHandler{trigger: trigger, board: board}
}

// Run 立即执行某个渠道的提醒任务
// POST /api/v1/reminders/:channel/run?dry_run=true&subscription_id=1
func (h *ReminderHandler) Run(c *gin.Context) {
	channel := model.Channel(c.Param("channel"))
	if !channel.Valid() {
		response.ParamError(c, "未知的提醒渠道")
		return
	}

	var query dto.RunReminderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	// 客户端断开不影响已开始的批次
	ctx := context.WithoutCancel(c.Request.Context())

	if query.SubscriptionID > 0 {
		h.runOne(ctx, c, channel, query)
		return
	}

	result, err := h.trigger.RunNow(ctx, channel, query.DryRun)
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrRunInProgress):
			response.ConflictError(c, "该渠道今日的提醒任务正在其他实例执行")
		case errors.Is(err, cron.ErrUnknownChannel):
			response.NotFoundError(c, "该渠道未启用")
		default:
			response.ServerError(c, "提醒任务执行失败")
		}
		return
	}

	response.Success(c, result)
}

func (h *ReminderHandler) runOne(ctx context.Context, c *gin.Context, channel model.Channel, query dto.RunReminderQuery) {
	out, err := h.trigger.RunOne(ctx, channel, query.SubscriptionID, query.DryRun)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFoundError(c, "订阅不存在")
		return
	case errors.Is(err, cron.ErrUnknownChannel):
		response.NotFoundError(c, "该渠道未启用")
		return
	case errors.Is(err, reminder.ErrNotEligible):
		response.ParamError(c, "订阅未启用")
		return
	case errors.Is(err, reminder.ErrSendFailed):
		response.ServerError(c, "提醒发送失败")
		return
	case errors.Is(err, reminder.ErrSaveFailed):
		// 已发送但记录失败，返回结果方便排查
		response.SuccessWithMessage(c, "提醒已发送，记录保存失败", out)
		return
	default:
		response.ServerError(c, "")
		return
	}

	response.Success(c, out)
}

// Status 各渠道最近一次运行结果
// GET /api/v1/reminders/status
func (h *ReminderHandler) Status(c *gin.Context) {
	response.Success(c, gin.H{
		"channels": h.trigger.Channels(),
		"runs":     h.board.Snapshot(),
	})
}
