package service

import (
	"strings"
	"time"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return toUserInfo(user, time.Now()), nil
}

// UpdateProfile changes the user-editable fields. Tier and role are not among them.
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	fields := make(map[string]interface{})
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		fields["username"] = *req.Username
	}
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if req.Skills != nil {
		fields["skills"] = model.StringArray(normalizeSkills(*req.Skills))
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(userID)
}

// normalizeSkills trims entries and drops empties and case-insensitive duplicates.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		sk = strings.TrimSpace(sk)
		key := strings.ToLower(sk)
		if sk == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sk)
	}
	return out
}

func toUserInfo(user *model.User, now time.Time) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:                   user.ID,
		Username:             user.Username,
		FullName:             user.FullName,
		Role:                 string(user.Role),
		AvatarURL:            user.AvatarURL,
		Bio:                  user.Bio,
		Skills:               []string(user.Skills),
		SubscriptionTier:     string(user.EffectiveTier(now)),
		AutoDowngradeEnabled: user.AutoDowngradeEnabled,
		EmailVerified:        user.EmailVerified,
		CreatedAt:            user.CreatedAt.Format(time.RFC3339),
	}
	if info.Skills == nil {
		info.Skills = []string{}
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	if user.SubscriptionExpiresAt != nil && !user.SubscriptionExpired(now) {
		info.SubscriptionExpiresAt = user.SubscriptionExpiresAt.UTC().Format(time.RFC3339)
	}
	return info
}
