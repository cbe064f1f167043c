package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/api/handler"
	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/pkg/jwt"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/pkg/storage"
	"github.com/qs3c/hatch_server/internal/pkg/validate"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/service"
	"github.com/qs3c/hatch_server/internal/testutil"
	"github.com/qs3c/hatch_server/internal/tier"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	if err := validate.Register(); err != nil {
		panic(err)
	}
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, func(role model.Role) (*model.User, string)) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: testSecret, ExpireHours: 1},
	}
	cfg.ApplyDefaults()
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	pastRepo := repository.NewPastEventRepository(db)
	tx := repository.NewTransactor(db)

	subs := service.NewSubscriptionService(userRepo, tx, log)
	attendance := service.NewAttendanceService(eventRepo, regRepo, pastRepo, userRepo, tx, log)
	payments := service.NewPaymentService(paymentRepo, userRepo, tx, subs, storage.NewMemory(), nil, cfg, log)
	admin := service.NewAdminService(userRepo, paymentRepo, eventRepo, subs, log)

	router := NewRouter(
		handler.NewAuthHandler(service.NewAuthService(userRepo, nil, cfg, log)),
		handler.NewUserHandler(service.NewUserService(userRepo), subs, attendance),
		handler.NewTierHandler(),
		handler.NewEventHandler(service.NewEventService(eventRepo, userRepo, tx, nil, log)),
		handler.NewAttendanceHandler(attendance),
		handler.NewPaymentHandler(payments),
		handler.NewAdminHandler(admin, subs, attendance),
		userRepo,
		cfg,
	)

	tokenFor := func(role model.Role) (*model.User, string) {
		user := testutil.TestUser(t, db, testutil.WithRole(role))
		token, err := jwt.GenerateToken(user.ID, testSecret, 1)
		require.NoError(t, err)
		return user, token
	}
	return router.Setup(), db, tokenFor
}

func call(t *testing.T, engine *gin.Engine, method, path, token string) (int, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRouter_Healthz(t *testing.T) {
	engine, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PublicTiers(t *testing.T) {
	engine, _, _ := setupRouter(t)

	status, resp := call(t, engine, http.MethodGet, "/api/v1/tiers", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestRouter_AuthGates(t *testing.T) {
	engine, _, tokenFor := setupRouter(t)
	_, userToken := tokenFor(model.RoleUser)
	_, adminToken := tokenFor(model.RoleAdmin)

	tests := []struct {
		name  string
		path  string
		token string
		code  int
	}{
		{"profile without token", "/api/v1/user/profile", "", response.CodeAuthFailed},
		{"profile with token", "/api/v1/user/profile", userToken, response.CodeSuccess},
		{"profile with forged token", "/api/v1/user/profile", "not-a-jwt", response.CodeAuthFailed},
		{"admin stats as user", "/api/v1/admin/stats", userToken, response.CodePermissionDenied},
		{"admin stats as admin", "/api/v1/admin/stats", adminToken, response.CodeSuccess},
		{"admin stats without token", "/api/v1/admin/stats", "", response.CodeAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp := call(t, engine, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestRouter_AutoDowngradeIsAdminOnly(t *testing.T) {
	engine, db, tokenFor := setupRouter(t)
	user, userToken := tokenFor(model.RoleUser)
	_, adminToken := tokenFor(model.RoleAdmin)
	lapsed := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"subscription_tier":       tier.Professional,
		"subscription_expires_at": lapsed,
	}).Error)

	put := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(`{"enabled":false}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}
	adminPath := fmt.Sprintf("/api/v1/admin/users/%d/auto-downgrade", user.ID)

	w := put("/api/v1/user/subscription/auto-downgrade", userToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = put(adminPath, userToken)
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.CodePermissionDenied, resp.Code)

	var stored model.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.AutoDowngradeEnabled)

	w = put(adminPath, adminToken)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.CodeSuccess, resp.Code)
}
