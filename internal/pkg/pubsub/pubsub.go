package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelReminderRuns = "reminder_runs"
)

// 运行状态
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunSummaryMessage 提醒任务运行汇总
type RunSummaryMessage struct {
	Type       string    `json:"type"`
	Channel    string    `json:"channel"`
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	Processed  int       `json:"processed"`
	Sent       int       `json:"sent"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
	DryRun     bool      `json:"dry_run"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishRunSummary 发布运行汇总
func (p *Publisher) PublishRunSummary(ctx context.Context, msg *RunSummaryMessage) error {
	msg.Type = "reminder_run"
	if msg.Status == "" {
		msg.Status = StatusOK
	}
	if msg.FinishedAt.IsZero() {
		msg.FinishedAt = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	return p.client.Publish(ctx, ChannelReminderRuns, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅运行汇总，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*RunSummaryMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelReminderRuns)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var summary RunSummaryMessage
			if err := json.Unmarshal([]byte(msg.Payload), &summary); err != nil {
				continue // 忽略解析错误
			}

			handler(&summary)
		}
	}
}
