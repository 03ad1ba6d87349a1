package dto

// RunReminderQuery 手动触发提醒任务
type RunReminderQuery struct {
	DryRun         bool  `form:"dry_run"`
	SubscriptionID int64 `form:"subscription_id"`
}
