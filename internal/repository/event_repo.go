package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/internal/model"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(event *model.Event) error {
	return r.db.Create(event).Error
}

func (r *EventRepository) GetByID(id int64) (*model.Event, error) {
	var event model.Event
	err := r.db.Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Event{}).Where("id = ?", id).Updates(fields).Error
}

func (r *EventRepository) Delete(id int64) error {
	return r.db.Delete(&model.Event{}, id).Error
}

// ListPublished returns every published event ordered by event date.
func (r *EventRepository) ListPublished() ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.Where("status = ?", model.EventPublished).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

// ListAll is the admin listing: any status, newest first.
func (r *EventRepository) ListAll(page, pageSize int, status, search string) ([]*model.Event, int64, error) {
	var events []*model.Event
	var total int64

	query := r.db.Model(&model.Event{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR organizer LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(pageSize).Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// ListDueForAttendance returns published events that took place before now
// and have not been claimed by the auto-attendance job, in id order after afterID.
func (r *EventRepository) ListDueForAttendance(now time.Time, afterID int64, limit int) ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.Where("status = ?", model.EventPublished).
		Where("id > ?", afterID).
		Where("event_date < ?", now).
		Where("attendance_marked_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// ClaimForAttendance stamps attendance_marked_at if nobody has yet.
// Only one caller can win the claim for a given event.
func (r *EventRepository) ClaimForAttendance(id int64, now time.Time) (bool, error) {
	result := r.db.Model(&model.Event{}).
		Where("id = ? AND attendance_marked_at IS NULL", id).
		Update("attendance_marked_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *EventRepository) CountByStatus(status model.EventStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Event{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
