package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/jwt"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/testutil"
	"github.com/qs3c/hatch_server/internal/tier"
)

const testSecret = "test-secret-key-for-testing"

func setupAuthService(t *testing.T, mode string) (*AuthService, *gorm.DB, *recordingMailer, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	mailer := &recordingMailer{}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: mode},
		JWT: config.JWTConfig{
			Secret:      testSecret,
			ExpireHours: 24,
		},
	}

	service := NewAuthService(userRepo, mailer, cfg, zap.NewNop())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, mailer, cleanup
}

func TestAuthService_Register_Success(t *testing.T) {
	service, db, mailer, cleanup := setupAuthService(t, "release")
	defer cleanup()

	resp, err := service.Register(&dto.RegisterRequest{
		Email:    "NewUser@Example.com",
		Username: "newuser",
		FullName: "New User",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
	assert.False(t, resp.EmailVerified)

	user, err := repository.NewUserRepository(db).GetByID(resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "newuser@example.com", *user.Email)
	assert.Equal(t, "New User", user.FullName)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, tier.Free, user.SubscriptionTier)
	assert.Nil(t, user.SubscriptionExpiresAt)
	assert.True(t, user.AutoDowngradeEnabled)
	require.NotNil(t, user.VerificationCode)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "verify", sent[0].Kind)
	assert.Equal(t, *user.VerificationCode, sent[0].Body)
}

func TestAuthService_Register_DebugAutoVerifies(t *testing.T) {
	service, db, mailer, cleanup := setupAuthService(t, "debug")
	defer cleanup()

	resp, err := service.Register(&dto.RegisterRequest{
		Email:    "debug@example.com",
		Username: "debuguser",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.True(t, resp.EmailVerified)

	user, err := repository.NewUserRepository(db).GetByID(resp.UserID)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, mailer.Sent())
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	req := &dto.RegisterRequest{
		Email:    "dup@example.com",
		Username: "user1",
		Password: "password123",
	}
	_, err := service.Register(req)
	require.NoError(t, err)

	req.Username = "user2"
	_, err = service.Register(req)
	assert.Equal(t, ErrEmailExists, err)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	_, err := service.Register(&dto.RegisterRequest{
		Email:    "a@example.com",
		Username: "sameuser",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = service.Register(&dto.RegisterRequest{
		Email:    "b@example.com",
		Username: "sameuser",
		Password: "password123",
	})
	assert.Equal(t, ErrUsernameExists, err)
}

func TestAuthService_Register_MailFailureIsNotFatal(t *testing.T) {
	service, _, mailer, cleanup := setupAuthService(t, "release")
	defer cleanup()
	mailer.err = errors.New("smtp down")

	resp, err := service.Register(&dto.RegisterRequest{
		Email:    "mailfail@example.com",
		Username: "mailfail",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
}

func TestAuthService_Login_Success(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := testutil.TestUser(t, db, testutil.WithEmail("login@example.com"), testutil.WithPassword(string(hash)))

	resp, err := service.Login(&dto.LoginRequest{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)

	claims, err := jwt.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_Login_EmailNotVerified(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	testutil.TestUser(t, db,
		testutil.WithEmail("unverified@example.com"),
		testutil.WithPassword(string(hash)),
		testutil.WithUnverified("code123", time.Now().Add(time.Hour)),
	)

	_, err = service.Login(&dto.LoginRequest{Email: "unverified@example.com", Password: "password123"})
	assert.Equal(t, ErrEmailNotVerified, err)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	testutil.TestUser(t, db, testutil.WithEmail("wrongpw@example.com"), testutil.WithPassword(string(hash)))

	_, err = service.Login(&dto.LoginRequest{Email: "wrongpw@example.com", Password: "nope-nope"})
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = service.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthService_VerifyEmail_Success(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithUnverified("verify-me", time.Now().Add(time.Hour)))

	resp, err := service.VerifyEmail("verify-me")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.User.EmailVerified)

	stored, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationCode)

	_, err = service.VerifyEmail("verify-me")
	assert.Equal(t, ErrInvalidVerifyCode, err)
}

func TestAuthService_VerifyEmail_Expired(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	testutil.TestUser(t, db, testutil.WithUnverified("stale", time.Now().Add(-time.Minute)))

	_, err := service.VerifyEmail("stale")
	assert.Equal(t, ErrInvalidVerifyCode, err)
}

func TestAuthService_VerifyEmail_InvalidCode(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t, "release")
	defer cleanup()

	_, err := service.VerifyEmail("does-not-exist")
	assert.Equal(t, ErrInvalidVerifyCode, err)
}
