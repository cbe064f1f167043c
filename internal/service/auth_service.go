package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/email"
	"github.com/qs3c/hatch_server/internal/pkg/jwt"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/tier"
)

const verificationTTL = 24 * time.Hour

type AuthService struct {
	userRepo *repository.UserRepository
	mailer   email.Sender
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, mailer email.Sender, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
		log:      log.Named("auth"),
	}
}

// Register creates the account and its profile in one row: free tier,
// user role, email pending confirmation.
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByEmail(emailAddr)
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

	verifyCode, err := generateRandomCode(32)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	expiresAt := time.Now().Add(verificationTTL)
	// email verification is skipped in debug mode
	autoVerify := s.cfg.Server.Mode == "debug"

	user := &model.User{
		Username:             req.Username,
		FullName:             req.FullName,
		Email:                &emailAddr,
		PasswordHash:         &passwordStr,
		Role:                 model.RoleUser,
		SubscriptionTier:     tier.Free,
		AutoDowngradeEnabled: true,
		EmailVerified:        autoVerify,
	}
	if !autoVerify {
		user.VerificationCode = &verifyCode
		user.VerificationExpiresAt = &expiresAt
	}

	if err := s.userRepo.Create(user); err != nil {
		// unique index caught a concurrent signup
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	if !autoVerify && s.mailer != nil {
		if err := s.mailer.SendVerificationCode(emailAddr, verifyCode); err != nil {
			s.log.Warn("verification email failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	return &dto.RegisterResponse{
		UserID:        user.ID,
		EmailVerified: autoVerify,
	}, nil
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	return s.issueToken(user)
}

func (s *AuthService) VerifyEmail(code string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerifyCode
		}
		return nil, err
	}

	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return nil, ErrInvalidVerifyCode
	}

	err = s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"email_verified":          true,
		"verification_code":       nil,
		"verification_expires_at": nil,
	})
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  toUserInfo(user, time.Now()),
	}, nil
}

func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
