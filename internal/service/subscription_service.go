package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/tier"
)

const reconcileBatchSize = 200

type ReconcileResult struct {
	Scanned    int `json:"scanned"`
	Downgraded int `json:"downgraded"`
	Failed     int `json:"failed"`
}

type SubscriptionService struct {
	userRepo *repository.UserRepository
	tx       *repository.Transactor
	log      *zap.Logger
	now      func() time.Time
}

func NewSubscriptionService(userRepo *repository.UserRepository, tx *repository.Transactor, log *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		userRepo: userRepo,
		tx:       tx,
		log:      log.Named("subscription"),
		now:      time.Now,
	}
}

// Upgrade sets a user's tier. Paid tiers with a positive duration expire
// durationDays from now; free and zero-duration grants never expire.
// Expiry is always computed from now, so repeating a call converges.
func (s *SubscriptionService) Upgrade(userID int64, rawTier string, durationDays int, actingAdminID *int64) (*model.User, error) {
	t, err := parseTier("tier", rawTier)
	if err != nil {
		return nil, err
	}
	if durationDays < 0 {
		return nil, invalid("duration_days", "must not be negative")
	}

	var user *model.User
	err = s.tx.WithinTx(func(repos *repository.Repos) error {
		if err := s.upgradeTx(repos, userID, t, durationDays, actingAdminID); err != nil {
			return err
		}
		user, err = repos.Users.GetByID(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// upgradeTx is Upgrade for callers that already hold a transaction.
func (s *SubscriptionService) upgradeTx(repos *repository.Repos, userID int64, t tier.Tier, durationDays int, actingAdminID *int64) error {
	if _, err := repos.Users.GetByID(userID); err != nil {
		return notFoundOr(err, "user", userID)
	}

	now := s.now()
	var expiresAt *time.Time
	if t.IsPaid() && durationDays > 0 {
		e := now.AddDate(0, 0, durationDays)
		expiresAt = &e
	}

	return repos.Users.UpdateSubscription(userID, t, expiresAt, actingAdminID, now)
}

// ComputeDuration maps a paid amount to the number of days it buys.
func (s *SubscriptionService) ComputeDuration(t tier.Tier, amountPaid float64) int {
	return tier.BillingDays(t, amountPaid)
}

func (s *SubscriptionService) CheckExpiration(user *model.User) bool {
	return user.SubscriptionExpired(s.now())
}

// ReconcileExpired downgrades every lapsed subscription to free. Each row is
// updated with a conditional write, so overlapping runs and retries are
// harmless. A failing row is logged and skipped.
func (s *SubscriptionService) ReconcileExpired(ctx context.Context) (*ReconcileResult, error) {
	now := s.now()
	result := &ReconcileResult{}
	var afterID int64

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		users, err := s.userRepo.ListExpired(now, afterID, reconcileBatchSize)
		if err != nil {
			return result, err
		}
		if len(users) == 0 {
			break
		}

		for _, u := range users {
			afterID = u.ID
			result.Scanned++

			changed, err := s.userRepo.DowngradeIfExpired(u.ID, now)
			if err != nil {
				result.Failed++
				s.log.Error("downgrade failed", zap.Int64("user_id", u.ID), zap.Error(err))
				continue
			}
			if changed {
				result.Downgraded++
			}
		}

		if len(users) < reconcileBatchSize {
			break
		}
	}

	if result.Scanned > 0 {
		s.log.Info("reconcile finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("downgraded", result.Downgraded),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// GetSubscription describes the user's current plan as the entitlement
// checks see it.
func (s *SubscriptionService) GetSubscription(userID int64) (*dto.SubscriptionInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	now := s.now()
	info := tier.MustLookup(user.EffectiveTier(now))
	out := &dto.SubscriptionInfo{
		Tier:                 string(info.Tier),
		DisplayName:          info.DisplayName,
		Rank:                 info.Rank,
		WeeklyQuota:          info.WeeklyQuota,
		ManualPastEventQuota: info.ManualPastEventQuota,
		Expired:              user.SubscriptionExpired(now),
		AutoDowngradeEnabled: user.AutoDowngradeEnabled,
	}

	if user.SubscriptionExpiresAt != nil && !out.Expired {
		exp := user.SubscriptionExpiresAt.UTC().Format(time.RFC3339)
		days := int(math.Ceil(user.SubscriptionExpiresAt.Sub(now).Hours() / 24))
		out.ExpiresAt = &exp
		out.DaysRemaining = &days
	}
	return out, nil
}

// SetAutoDowngrade toggles whether reconciliation may downgrade the user.
func (s *SubscriptionService) SetAutoDowngrade(userID int64, enabled bool) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return notFoundOr(err, "user", userID)
	}
	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"auto_downgrade_enabled": enabled,
	})
}
