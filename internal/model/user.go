package model

import (
	"time"

	"github.com/qs3c/hatch_server/internal/tier"
)

// User is the profile row behind every account.
// Invariant: SubscriptionTier == free implies SubscriptionExpiresAt == nil.
type User struct {
	ID                    int64       `gorm:"primaryKey" json:"id"`
	Username              string      `gorm:"size:50;uniqueIndex;not null" json:"username"`
	FullName              string      `gorm:"size:100" json:"full_name"`
	Email                 *string     `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash          *string     `gorm:"size:255" json:"-"`
	Role                  Role        `gorm:"size:20;default:user;index" json:"role"`
	AvatarURL             string      `gorm:"size:500" json:"avatar_url"`
	Bio                   string      `gorm:"type:text" json:"bio"`
	Skills                StringArray `gorm:"type:json" json:"skills"`
	SubscriptionTier      tier.Tier   `gorm:"size:20;default:free;index" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time  `gorm:"index" json:"subscription_expires_at,omitempty"`
	TierUpgradedBy        *int64      `json:"tier_upgraded_by,omitempty"`
	TierUpgradedAt        *time.Time  `json:"tier_upgraded_at,omitempty"`
	AutoDowngradeEnabled  bool        `gorm:"default:true" json:"auto_downgrade_enabled"`
	EmailVerified         bool        `gorm:"default:false" json:"email_verified"`
	VerificationCode      *string     `gorm:"size:100" json:"-"`
	VerificationExpiresAt *time.Time  `json:"-"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

func (User) TableName() string {
	return "user_profiles"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SubscriptionExpired reports whether a non-null expiry lies before now.
func (u *User) SubscriptionExpired(now time.Time) bool {
	return u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.Before(now)
}

// EffectiveTier is the tier used for entitlement checks. An expired paid
// subscription already counts as free even before reconciliation runs.
func (u *User) EffectiveTier(now time.Time) tier.Tier {
	if u.SubscriptionExpired(now) {
		return tier.Free
	}
	t, err := tier.Parse(string(u.SubscriptionTier))
	if err != nil {
		return tier.Free
	}
	return t
}
