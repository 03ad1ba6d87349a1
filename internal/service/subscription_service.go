package service

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/repository"
)

const dateLayout = "2006-01-02"

var (
	ErrSubscriptionNotFound = errors.New("订阅不存在")
	ErrInvalidDate          = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrEndBeforeStart       = errors.New("结束日期不能早于开始日期")
	ErrInvalidAmount        = errors.New("金额不能为负数")
	ErrInvalidCategory      = errors.New("无效的分类")
	ErrInvalidPhone         = errors.New("手机号需为带国家码的 E.164 格式，例如 +919876543210")
	ErrInvalidServiceName   = errors.New("服务名称不能为空且不能包含换行")
)

type SubscriptionService struct {
	subRepo  *repository.SubscriptionRepository
	userRepo UserStore
	cfg      *config.Config
	now      func() time.Time
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository, userRepo UserStore, cfg *config.Config) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

// List 获取用户的订阅列表，按下次扣费日期排序
func (s *SubscriptionService) List(userID int64, isActive *bool) ([]*model.Subscription, error) {
	return s.subRepo.ListByUser(userID, isActive)
}

// Upcoming 未来 days 天内到期的订阅
func (s *SubscriptionService) Upcoming(userID int64, days int) ([]*model.Subscription, error) {
	if days <= 0 {
		days = 7
	}
	today := startOfDay(s.now())
	return s.subRepo.ListDueBetween(userID, today, today.AddDate(0, 0, days))
}

// Overdue 已逾期未付的订阅
func (s *SubscriptionService) Overdue(userID int64) ([]*model.Subscription, error) {
	return s.subRepo.ListOverdue(userID, startOfDay(s.now()))
}

// Get 获取单个订阅
func (s *SubscriptionService) Get(userID, id int64) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByIDForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// Create 创建订阅
func (s *SubscriptionService) Create(userID int64, req *dto.CreateSubscriptionRequest) (*model.Subscription, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	name, err := serviceName(req.ServiceName)
	if err != nil {
		return nil, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}
	if req.Amount == nil || req.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	category := defaultString(req.Category, "other")
	if !slices.Contains(model.Categories, category) {
		return nil, ErrInvalidCategory
	}

	sub := &model.Subscription{
		UserID:             userID,
		ServiceName:        name,
		Description:        req.Description,
		Category:           category,
		Amount:             req.Amount.Round(2),
		Currency:           strings.ToUpper(defaultString(req.Currency, "INR")),
		BillingCycle:       defaultString(req.BillingCycle, model.BillingMonthly),
		BillingCycleDays:   req.BillingCycleDays,
		StartDate:          start,
		EndDate:            &end,
		NextDueDate:        start,
		ReminderDaysBefore: user.DefaultReminderDays,
		PaymentMethod:      req.PaymentMethod,
		Notes:              req.Notes,
		IsActive:           true,
		Email:              defaultString(strings.TrimSpace(req.Email), user.Email),
		RemindersSent:      datatypes.JSONSlice[int]{},
	}
	if sub.BillingCycleDays <= 0 {
		sub.BillingCycleDays = 30
	}
	if req.ReminderDaysBefore != nil {
		sub.ReminderDaysBefore = *req.ReminderDaysBefore
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		if !validPhone(phone) {
			return nil, ErrInvalidPhone
		}
		sub.Phone = &phone
	}

	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Update 更新订阅，只写入请求中出现的白名单字段，提醒记录不可由客户端修改
func (s *SubscriptionService) Update(userID, id int64, req *dto.UpdateSubscriptionRequest) (*model.Subscription, error) {
	sub, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.ServiceName != nil {
		name, err := serviceName(*req.ServiceName)
		if err != nil {
			return nil, err
		}
		fields["service_name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		if !slices.Contains(model.Categories, *req.Category) {
			return nil, ErrInvalidCategory
		}
		fields["category"] = *req.Category
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, ErrInvalidAmount
		}
		fields["amount"] = req.Amount.Round(2)
	}
	if req.Currency != nil {
		fields["currency"] = strings.ToUpper(*req.Currency)
	}
	if req.BillingCycle != nil {
		fields["billing_cycle"] = *req.BillingCycle
	}
	if req.BillingCycleDays != nil {
		fields["billing_cycle_days"] = *req.BillingCycleDays
	}
	if req.ReminderDaysBefore != nil {
		fields["reminder_days_before"] = *req.ReminderDaysBefore
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Email != nil {
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		switch {
		case phone == "":
			fields["phone"] = nil
		case !validPhone(phone):
			return nil, ErrInvalidPhone
		default:
			fields["phone"] = phone
		}
	}

	for column, value := range map[string]*string{
		"start_date":    req.StartDate,
		"end_date":      req.EndDate,
		"next_due_date": req.NextDueDate,
	} {
		if value == nil {
			continue
		}
		d, err := parseDate(*value)
		if err != nil {
			return nil, err
		}
		fields[column] = d
	}

	start := sub.StartDate
	if d, ok := fields["start_date"].(time.Time); ok {
		start = d
	}
	if end, ok := fields["end_date"].(time.Time); ok {
		if end.Before(start) {
			return nil, ErrEndBeforeStart
		}
		changed := sub.EndDate == nil || !sub.EndDate.Equal(end)
		if changed && s.cfg.Reminder.ResetLedgerOnEndDateChange {
			fields["last_notified"] = nil
			fields["reminders_sent"] = datatypes.JSONSlice[int]{}
		}
	}

	if len(fields) > 0 {
		if err := s.subRepo.UpdateFields(sub.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(userID, id)
}

// MarkPaid 标记已付款，下次扣费日期按计费周期顺延
func (s *SubscriptionService) MarkPaid(userID, id int64) (*model.Subscription, error) {
	sub, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
		"last_paid_date": now,
		"next_due_date":  sub.AdvanceDueDate(sub.NextDueDate),
	}); err != nil {
		return nil, err
	}
	return s.Get(userID, id)
}

// Renew 续费：设置新的结束日期并清空两个渠道的提醒记录，开始新周期
func (s *SubscriptionService) Renew(userID, id int64, req *dto.RenewSubscriptionRequest) (*model.Subscription, error) {
	sub, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(sub.StartDate) {
		return nil, ErrEndBeforeStart
	}

	if err := s.subRepo.UpdateFields(sub.ID, map[string]interface{}{
		"end_date":       end,
		"is_active":      true,
		"last_notified":  nil,
		"reminders_sent": datatypes.JSONSlice[int]{},
	}); err != nil {
		return nil, err
	}
	return s.Get(userID, id)
}

// Delete 删除订阅
func (s *SubscriptionService) Delete(userID, id int64) error {
	if err := s.subRepo.DeleteForUser(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func validPhone(phone string) bool {
	if len(phone) < 8 || !strings.HasPrefix(phone, "+") {
		return false
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// monthlyEquivalent 折算为月均费用
func monthlyEquivalent(sub *model.Subscription) decimal.Decimal {
	switch sub.BillingCycle {
	case model.BillingMonthly:
		return sub.Amount
	case model.BillingYearly:
		return sub.Amount.Div(decimal.NewFromInt(12))
	case model.BillingCustom:
		if sub.BillingCycleDays <= 0 {
			return decimal.Zero
		}
		return sub.Amount.Mul(decimal.NewFromInt(30)).Div(decimal.NewFromInt(int64(sub.BillingCycleDays)))
	default:
		return decimal.Zero
	}
}

// serviceName 服务名称会出现在邮件主题里，不允许换行
func serviceName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || strings.ContainsAny(name, "\r\n") {
		return "", ErrInvalidServiceName
	}
	return name, nil
}
