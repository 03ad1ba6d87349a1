package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByIDForUser 查询用户自己的订阅
func (r *SubscriptionRepository) GetByIDForUser(id, userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByUser(userID int64, isActive *bool) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	query := r.db.Where("user_id = ?", userID)
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	err := query.Order("next_due_date ASC").Find(&subs).Error
	return subs, err
}

// ListDueBetween 启用且 next_due_date 在 [from, to] 内
func (r *SubscriptionRepository) ListDueBetween(userID int64, from, to time.Time) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Where("user_id = ? AND is_active = ? AND next_due_date >= ? AND next_due_date <= ?", userID, true, from, to).
		Order("next_due_date ASC").
		Find(&subs).Error
	return subs, err
}

// ListOverdue 启用且 next_due_date 早于 before
func (r *SubscriptionRepository) ListOverdue(userID int64, before time.Time) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Where("user_id = ? AND is_active = ? AND next_due_date < ?", userID, true, before).
		Order("next_due_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) ListActiveByUser(userID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) CountActiveByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&count).Error
	return count, err
}

func (r *SubscriptionRepository) Update(sub *model.Subscription) error {
	return r.db.Omit("User").Save(sub).Error
}

func (r *SubscriptionRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteForUser 删除用户自己的订阅，不存在时返回 gorm.ErrRecordNotFound
func (r *SubscriptionRepository) DeleteForUser(id, userID int64) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindActiveEligible 提醒任务扫描：启用且设置了渠道目标字段的订阅。
// 邮件渠道在订阅没有邮箱时回退到用户邮箱，因此预加载 User。
func (r *SubscriptionRepository) FindActiveEligible(ctx context.Context, channel model.Channel) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	switch channel {
	case model.ChannelWhatsApp:
		query = query.Where("phone IS NOT NULL AND phone <> ''")
	default:
		hasUserEmail := r.db.Model(&model.User{}).Select("id").Where("email IS NOT NULL AND email <> ''")
		query = query.Where(
			r.db.Where("email IS NOT NULL AND email <> ''").Or("user_id IN (?)", hasUserEmail),
		).Preload("User")
	}

	err := query.Order("id ASC").Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) LoadByID(ctx context.Context, id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SaveLedger 只写提醒记录三个字段，不覆盖用户同时做的修改。
// 订阅在运行期间被删除时返回 gorm.ErrRecordNotFound
func (r *SubscriptionRepository) SaveLedger(ctx context.Context, sub *model.Subscription) error {
	result := r.db.WithContext(ctx).Model(&model.Subscription{ID: sub.ID}).
		Select("last_notified", "reminders_sent", "last_reminder_sent").
		Updates(map[string]interface{}{
			"last_notified":      sub.LastNotified,
			"reminders_sent":     sub.RemindersSent,
			"last_reminder_sent": sub.LastReminderSent,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
