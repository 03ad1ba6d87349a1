package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/internal/model/dto"
	"github.com/qs3c/bill_reminder_server/internal/pkg/response"
	"github.com/qs3c/bill_reminder_server/internal/repository"
	"github.com/qs3c/bill_reminder_server/internal/service"
	"github.com/qs3c/bill_reminder_server/internal/testutil"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	authService := service.NewAuthService(repository.NewUserRepository(db), testConfig(), nil, zerolog.Nop())
	return NewAuthHandler(authService), db
}

func authRoutes(h *AuthHandler) *gin.Engine {
	router := gin.New()
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	return router
}

var validRegister = dto.RegisterRequest{
	Username: "newuser",
	Email:    "newuser@example.com",
	Password: "password123",
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	w := performRequest(authRoutes(handler), "POST", "/register", validRegister)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var auth dto.AuthResponse
	decodeData(t, resp, &auth)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "newuser@example.com", auth.User.Email)
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	handler, _ := setupAuthHandler(t)
	router := authRoutes(handler)

	performRequest(router, "POST", "/register", validRegister)
	w := performRequest(router, "POST", "/register", validRegister)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
	assert.Equal(t, service.ErrEmailExists.Error(), resp.Message)
}

func TestAuthHandler_Register_InvalidRequest(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	tests := []struct {
		name string
		body dto.RegisterRequest
	}{
		{"short password", dto.RegisterRequest{Username: "abc", Email: "a@b.com", Password: "123"}},
		{"bad email", dto.RegisterRequest{Username: "abc", Email: "not-an-email", Password: "password"}},
		{"missing username", dto.RegisterRequest{Email: "a@b.com", Password: "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(authRoutes(handler), "POST", "/register", tt.body)
			assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	handler, _ := setupAuthHandler(t)
	router := authRoutes(handler)
	performRequest(router, "POST", "/register", validRegister)

	w := performRequest(router, "POST", "/login", dto.LoginRequest{Email: "newuser@example.com", Password: "password123"})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var auth dto.AuthResponse
	decodeData(t, resp, &auth)
	assert.NotEmpty(t, auth.Token)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{Email: "newuser@example.com", Password: "wrong"})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/login", gin.H{"email": "newuser@example.com"})
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}

func TestAuthHandler_Me(t *testing.T) {
	handler, db := setupAuthHandler(t)
	user := testutil.TestUser(t, db)

	router := gin.New()
	router.GET("/me", withUser(user.ID), handler.Me)
	router.GET("/ghost", withUser(99999), handler.Me)
	router.GET("/anonymous", handler.Me)

	resp := parseResponse(t, performRequest(router, "GET", "/me", nil))
	require.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, user.Email, data["email"])
	assert.NotContains(t, data, "password_hash")

	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, performRequest(router, "GET", "/ghost", nil)).Code)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, performRequest(router, "GET", "/anonymous", nil)).Code)
}
