package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/pkg/jwt"
	"github.com/qs3c/bill_reminder_server/internal/repository"
	"github.com/qs3c/bill_reminder_server/internal/testutil"
)

const testSecret = "test-secret-key-for-testing"

type fakeMailer struct {
	to, name string
	err      error
}

func (f *fakeMailer) SendWelcome(_ context.Context, to, name string) error {
	f.to, f.name = to, name
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      testSecret,
			ExpireHours: 24,
		},
	}
}

func setupAuthService(t *testing.T, mailer WelcomeMailer) (*AuthService, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	service := NewAuthService(userRepo, testConfig(), mailer, zerolog.Nop())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, cleanup
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:  "newuser",
		Email:     "NewUser@Example.com",
		Password:  "password123",
		FirstName: "Asha",
		LastName:  "Rao",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	mailer := &fakeMailer{}
	service, cleanup := setupAuthService(t, mailer)
	defer cleanup()

	resp, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, "newuser@example.com", resp.User.Email)
	assert.True(t, resp.User.EmailNotificationsEnabled)
	assert.Equal(t, 3, resp.User.DefaultReminderDays)

	claims, err := jwt.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	assert.Equal(t, "newuser@example.com", mailer.to)
	assert.Equal(t, "Asha Rao", mailer.name)
}

func TestAuthService_Register_WelcomeFailureIgnored(t *testing.T) {
	service, cleanup := setupAuthService(t, &fakeMailer{err: errors.New("smtp down")})
	defer cleanup()

	resp, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_Register_NoMailer(t *testing.T) {
	service, cleanup := setupAuthService(t, nil)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest())
	assert.NoError(t, err)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, cleanup := setupAuthService(t, nil)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.Username = "another"
	_, err = service.Register(context.Background(), req)
	assert.Equal(t, ErrEmailExists, err)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	service, cleanup := setupAuthService(t, nil)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.Email = "other@example.com"
	_, err = service.Register(context.Background(), req)
	assert.Equal(t, ErrUsernameExists, err)
}

func TestAuthService_Login(t *testing.T) {
	service, cleanup := setupAuthService(t, nil)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	resp, err := service.Login(&dto.LoginRequest{Email: "newuser@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "newuser", resp.User.Username)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	service, cleanup := setupAuthService(t, nil)
	defer cleanup()

	_, err := service.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = service.Login(&dto.LoginRequest{Email: "newuser@example.com", Password: "wrong-password"})
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = service.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthService_GetUserByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	service := NewAuthService(repository.NewUserRepository(db), testConfig(), nil, zerolog.Nop())
	user := testutil.TestUser(t, db)

	found, err := service.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = service.GetUserByID(99999)
	assert.Equal(t, ErrUserNotFound, err)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
