package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/tier"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByVerificationCode(code string) (*model.User, error) {
	var user model.User
	err := r.db.Where("verification_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// UpdateSubscription writes tier, expiry and the audit columns in one statement.
// A nil expiresAt clears the expiry.
func (r *UserRepository) UpdateSubscription(id int64, t tier.Tier, expiresAt *time.Time, upgradedBy *int64, at time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subscription_tier":       t,
		"subscription_expires_at": expiresAt,
		"tier_upgraded_by":        upgradedBy,
		"tier_upgraded_at":        at,
	}).Error
}

// ListExpired returns paid users whose subscription lapsed before now and
// who have automatic downgrade enabled, in id order after afterID.
func (r *UserRepository) ListExpired(now time.Time, afterID int64, limit int) ([]*model.User, error) {
	var users []*model.User
	err := expiredScope(r.db.Model(&model.User{}).Where("id > ?", afterID), now).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// DowngradeIfExpired resets one user to free only if the expiry precondition
// still holds. It reports whether the row changed.
func (r *UserRepository) DowngradeIfExpired(id int64, now time.Time) (bool, error) {
	result := expiredScope(r.db.Model(&model.User{}).Where("id = ?", id), now).
		Updates(map[string]interface{}{
			"subscription_tier":       tier.Free,
			"subscription_expires_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func expiredScope(query *gorm.DB, now time.Time) *gorm.DB {
	return query.
		Where("subscription_tier <> ?", tier.Free).
		Where("subscription_expires_at IS NOT NULL").
		Where("subscription_expires_at < ?", now).
		Where("auto_downgrade_enabled = ?", true)
}

// List pages through users, newest first. search matches username, full name or email.
func (r *UserRepository) List(page, pageSize int, search, tierFilter string) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.Model(&model.User{})

	if search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR full_name LIKE ? OR email LIKE ?", like, like, like)
	}
	if tierFilter != "" {
		query = query.Where("subscription_tier = ?", tierFilter)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CountByTier groups users by the tier they are entitled to at now. A lapsed
// subscription counts as free even when it has not been reconciled.
func (r *UserRepository) CountByTier(now time.Time) (map[tier.Tier]int64, error) {
	var rows []struct {
		EffectiveTier tier.Tier
		Total         int64
	}
	err := r.db.Model(&model.User{}).
		Select("CASE WHEN subscription_expires_at IS NOT NULL AND subscription_expires_at < ? THEN ? ELSE subscription_tier END AS effective_tier, COUNT(*) AS total", now, tier.Free).
		Group("effective_tier").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[tier.Tier]int64, len(rows))
	for _, row := range rows {
		counts[row.EffectiveTier] += row.Total
	}
	return counts, nil
}

// PromoteByEmails grants the admin role to existing accounts with the given emails.
func (r *UserRepository) PromoteByEmails(emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.User{}).
		Where("email IN ?", emails).
		Where("role <> ?", model.RoleAdmin).
		Update("role", model.RoleAdmin)
	return result.RowsAffected, result.Error
}
