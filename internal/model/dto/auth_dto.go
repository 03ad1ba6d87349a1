package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=64"`
	FirstName string `json:"first_name" binding:"omitempty,max=50"`
	LastName  string `json:"last_name" binding:"omitempty,max=50"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID                        int64  `json:"id"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	FirstName                 string `json:"first_name"`
	LastName                  string `json:"last_name"`
	Phone                     string `json:"phone"`
	EmailNotificationsEnabled bool   `json:"email_notifications_enabled"`
	DefaultReminderDays       int    `json:"default_reminder_days"`
	CreatedAt                 string `json:"created_at,omitempty"`
}

// UpdateProfileRequest 更新用户信息请求
type UpdateProfileRequest struct {
	FirstName                 *string `json:"first_name,omitempty" binding:"omitempty,max=50"`
	LastName                  *string `json:"last_name,omitempty" binding:"omitempty,max=50"`
	Phone                     *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	EmailNotificationsEnabled *bool   `json:"email_notifications_enabled,omitempty"`
	DefaultReminderDays       *int    `json:"default_reminder_days,omitempty" binding:"omitempty,min=0,max=30"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=64"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}
