package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
)

func authRouter(tc *testContext) *gin.Engine {
	router := gin.New()
	router.POST("/register", tc.Auth.Register)
	router.POST("/login", tc.Auth.Login)
	router.POST("/verify-email", tc.Auth.VerifyEmail)
	return router
}

func TestAuthHandler_RegisterThenLogin(t *testing.T) {
	tc := setupHandlers(t)
	router := authRouter(tc)

	w := performRequest(router, http.MethodPost, "/register", dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser",
		FullName: "Test User",
		Password: "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, http.MethodPost, "/login", dto.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var login dto.LoginResponse
	decodeData(t, resp, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "free", login.User.SubscriptionTier)
	assert.Equal(t, "user", login.User.Role)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	tc := setupHandlers(t)
	router := authRouter(tc)

	req := dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser1",
		Password: "password123",
	}
	w := performRequest(router, http.MethodPost, "/register", req)
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	req.Username = "testuser2"
	w = performRequest(router, http.MethodPost, "/register", req)
	assert.Equal(t, response.CodeDuplicateAction, parseResponse(t, w).Code)
}

func TestAuthHandler_Register_InvalidRequest(t *testing.T) {
	tc := setupHandlers(t)
	router := authRouter(tc)

	tests := []struct {
		name string
		body dto.RegisterRequest
	}{
		{"bad email", dto.RegisterRequest{Email: "nope", Username: "someone", Password: "password123"}},
		{"short password", dto.RegisterRequest{Email: "a@example.com", Username: "someone", Password: "short"}},
		{"short username", dto.RegisterRequest{Email: "a@example.com", Username: "ab", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/register", tt.body)
			assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
		})
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	tc := setupHandlers(t)
	router := authRouter(tc)

	performRequest(router, http.MethodPost, "/register", dto.RegisterRequest{
		Email:    "login@example.com",
		Username: "loginuser",
		Password: "password123",
	})

	w := performRequest(router, http.MethodPost, "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestAuthHandler_VerifyEmail_InvalidCode(t *testing.T) {
	tc := setupHandlers(t)
	router := authRouter(tc)

	w := performRequest(router, http.MethodPost, "/verify-email", dto.VerifyEmailRequest{Code: "nope"})
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)

	w = performRequest(router, http.MethodPost, "/verify-email", nil)
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}
