package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/api/middleware"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/pkg/storage"
	"github.com/qs3c/hatch_server/internal/pkg/validate"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/service"
	"github.com/qs3c/hatch_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validate.Register(); err != nil {
		panic(err)
	}
}

// testContext holds every handler wired against one in-memory database.
type testContext struct {
	DB    *gorm.DB
	Store *storage.MemoryStore

	Auth       *AuthHandler
	User       *UserHandler
	Event      *EventHandler
	Attendance *AttendanceHandler
	Payment    *PaymentHandler
	Admin      *AdminHandler
}

func setupHandlers(t *testing.T) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret-key", ExpireHours: 24},
		Subscription: config.SubscriptionConfig{
			PaymentRetentionDays: 90,
		},
		UPI: config.UPIConfig{PayeeVPA: "hatch@upi", PayeeName: "Hatch"},
		Upload: config.UploadConfig{
			MaxScreenshotSize: 1 << 20,
			AllowedTypes:      []string{"image/png", "image/jpeg"},
		},
	}
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	regRepo := repository.NewRegistrationRepository(db)
	pastRepo := repository.NewPastEventRepository(db)
	tx := repository.NewTransactor(db)
	store := storage.NewMemory()

	subs := service.NewSubscriptionService(userRepo, tx, log)
	attendance := service.NewAttendanceService(eventRepo, regRepo, pastRepo, userRepo, tx, log)
	payments := service.NewPaymentService(paymentRepo, userRepo, tx, subs, store, nil, cfg, log)
	events := service.NewEventService(eventRepo, userRepo, tx, nil, log)
	admin := service.NewAdminService(userRepo, paymentRepo, eventRepo, subs, log)

	return &testContext{
		DB:         db,
		Store:      store,
		Auth:       NewAuthHandler(service.NewAuthService(userRepo, nil, cfg, log)),
		User:       NewUserHandler(service.NewUserService(userRepo), subs, attendance),
		Event:      NewEventHandler(events),
		Attendance: NewAttendanceHandler(attendance),
		Payment:    NewPaymentHandler(payments),
		Admin:      NewAdminHandler(admin, subs, attendance),
	}
}

func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// decodeData re-decodes the envelope's data field into dst.
func decodeData(t *testing.T, resp response.Response, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}
