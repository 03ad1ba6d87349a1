package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/pkg/jwt"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// WelcomeMailer 注册成功后发送欢迎邮件
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

type AuthService struct {
	userRepo UserStore
	cfg      *config.Config
	mailer   WelcomeMailer
	logger   zerolog.Logger
}

// UserStore 用户持久化
type UserStore interface {
	Create(user *model.User) error
	GetByID(id int64) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	UpdateFields(id int64, fields map[string]interface{}) error
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
}

// NewAuthService mailer 可以为 nil，此时不发送欢迎邮件
func NewAuthService(userRepo UserStore, cfg *config.Config, mailer WelcomeMailer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		mailer:   mailer,
		logger:   logger,
	}
}

// Register 用户注册
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:                  req.Username,
		Email:                     email,
		PasswordHash:              string(hashedPassword),
		FirstName:                 req.FirstName,
		LastName:                  req.LastName,
		EmailNotificationsEnabled: true,
		DefaultReminderDays:       3,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// 欢迎邮件失败不影响注册
	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.DisplayName()); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to send welcome email")
		}
	}

	return s.issueToken(user)
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (*dto.AuthResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:                        user.ID,
		Username:                  user.Username,
		Email:                     user.Email,
		FirstName:                 user.FirstName,
		LastName:                  user.LastName,
		Phone:                     user.Phone,
		EmailNotificationsEnabled: user.EmailNotificationsEnabled,
		DefaultReminderDays:       user.DefaultReminderDays,
		CreatedAt:                 user.CreatedAt.Format(time.RFC3339),
	}
}
