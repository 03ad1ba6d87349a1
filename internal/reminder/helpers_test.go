package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

// fixedNow 2026-04-01 22:50 UTC
var fixedNow = time.Date(2026, 4, 1, 22, 50, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func daysFromNow(n int) *time.Time {
	d := StartOfDayUTC(fixedNow).AddDate(0, 0, n)
	return &d
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

type subOpt func(*model.Subscription)

func newSub(id int64, opts ...subOpt) *model.Subscription {
	sub := &model.Subscription{
		ID:            id,
		UserID:        1,
		ServiceName:   "Service",
		Category:      "software",
		Amount:        decimal.NewFromInt(199),
		Currency:      "INR",
		IsActive:      true,
		RemindersSent: datatypes.JSONSlice[int]{},
	}
	for _, opt := range opts {
		opt(sub)
	}
	return sub
}

func withEnd(days int) subOpt {
	return func(s *model.Subscription) { s.EndDate = daysFromNow(days) }
}

func withPhone(p string) subOpt {
	return func(s *model.Subscription) { s.Phone = strPtr(p) }
}

func withEmail(e string) subOpt {
	return func(s *model.Subscription) { s.Email = e }
}

// memStore 内存实现，模拟数据库读写时的拷贝
type memStore struct {
	mu       sync.Mutex
	subs     map[int64]*model.Subscription
	saves    int
	findErr  error
	saveErrs map[int64]error
}

func newMemStore(subs ...*model.Subscription) *memStore {
	s := &memStore{subs: map[int64]*model.Subscription{}, saveErrs: map[int64]error{}}
	for _, sub := range subs {
		s.subs[sub.ID] = sub
	}
	return s
}

func cloneSub(s *model.Subscription) *model.Subscription {
	c := *s
	c.RemindersSent = append(datatypes.JSONSlice[int]{}, s.RemindersSent...)
	if s.LastNotified != nil {
		c.LastNotified = intPtr(*s.LastNotified)
	}
	return &c
}

func (m *memStore) FindActiveEligible(_ context.Context, channel model.Channel) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []*model.Subscription
	for _, s := range m.subs {
		if !s.IsActive {
			continue
		}
		switch channel {
		case model.ChannelWhatsApp:
			if s.PhoneNumber() == "" {
				continue
			}
		case model.ChannelEmail:
			if s.Email == "" && (s.User == nil || s.User.Email == "") {
				continue
			}
		}
		out = append(out, cloneSub(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) LoadByID(_ context.Context, id int64) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return cloneSub(s), nil
}

func (m *memStore) SaveLedger(_ context.Context, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErrs[sub.ID]; err != nil {
		return err
	}
	stored := m.subs[sub.ID]
	stored.LastNotified = sub.LastNotified
	stored.RemindersSent = append(datatypes.JSONSlice[int]{}, sub.RemindersSent...)
	stored.LastReminderSent = sub.LastReminderSent
	m.saves++
	return nil
}

func (m *memStore) get(id int64) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[id]
}

// mockSender 记录每次发送
type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// recordingSender 记录成功发送的消息，可按收件人注入失败
type recordingSender struct {
	mu      sync.Mutex
	sent    []Message
	failTo  map[string]error
	panicTo string
}

func (r *recordingSender) Send(_ context.Context, msg Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.To == r.panicTo && r.panicTo != "" {
		panic("transport exploded")
	}
	if err := r.failTo[msg.To]; err != nil {
		return "", err
	}
	r.sent = append(r.sent, msg)
	return "msg-" + msg.To, nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
