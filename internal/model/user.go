package model

import (
	"strings"
	"time"
)

type User struct {
	ID                        int64     `gorm:"primaryKey" json:"id"`
	Username                  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email                     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash              string    `gorm:"size:255;not null" json:"-"`
	FirstName                 string    `gorm:"size:50" json:"first_name"`
	LastName                  string    `gorm:"size:50" json:"last_name"`
	Phone                     string    `gorm:"size:20" json:"phone"`
	EmailNotificationsEnabled bool      `gorm:"default:true" json:"email_notifications_enabled"`
	DefaultReminderDays       int       `gorm:"default:3" json:"default_reminder_days"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName 优先使用姓名，否则回退到用户名
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
