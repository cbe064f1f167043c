package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/hatch_server/internal/model"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// InsertIgnore creates the (user, event) row unless it already exists.
// It reports whether a new row was inserted.
func (r *RegistrationRepository) InsertIgnore(reg *model.Registration) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(reg)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *RegistrationRepository) Get(userID, eventID int64) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// SetStatus updates the single (user, event) row in place.
func (r *RegistrationRepository) SetStatus(userID, eventID int64, status model.AttendanceStatus, source model.RegistrationSource, confirmedAt time.Time) error {
	return r.db.Model(&model.Registration{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Updates(map[string]interface{}{
			"status":       status,
			"source":       source,
			"confirmed_at": confirmedAt,
		}).Error
}

// MarkRegisteredAttended flips every still-registered row of an event to
// attended. Rows the user already confirmed either way are left alone.
func (r *RegistrationRepository) MarkRegisteredAttended(eventID int64, at time.Time) (int64, error) {
	result := r.db.Model(&model.Registration{}).
		Where("event_id = ? AND status = ?", eventID, model.AttendanceRegistered).
		Updates(map[string]interface{}{
			"status":       model.AttendanceAttended,
			"source":       model.SourceAuto,
			"confirmed_at": at,
		})
	return result.RowsAffected, result.Error
}

// CountByStatus groups one user's registrations by status.
func (r *RegistrationRepository) CountByStatus(userID int64) (map[model.AttendanceStatus]int64, error) {
	var rows []struct {
		Status model.AttendanceStatus
		Total  int64
	}
	err := r.db.Model(&model.Registration{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.AttendanceStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// CountSince counts the registrations a user created at or after since.
func (r *RegistrationRepository) CountSince(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Registration{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *RegistrationRepository) ListByUserID(userID int64) ([]*model.Registration, error) {
	var regs []*model.Registration
	err := r.db.Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&regs).Error
	return regs, err
}

// DeleteByEvent removes every registration of an event that is being deleted.
func (r *RegistrationRepository) DeleteByEvent(eventID int64) error {
	return r.db.Where("event_id = ?", eventID).Delete(&model.Registration{}).Error
}
