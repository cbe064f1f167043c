package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/internal/model"
)

type PastEventRepository struct {
	db *gorm.DB
}

func NewPastEventRepository(db *gorm.DB) *PastEventRepository {
	return &PastEventRepository{db: db}
}

func (r *PastEventRepository) Create(pe *model.PastEvent) error {
	return r.db.Create(pe).Error
}

func (r *PastEventRepository) CountByUserID(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.PastEvent{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PastEventRepository) ListByUserID(userID int64) ([]*model.PastEvent, error) {
	var items []*model.PastEvent
	err := r.db.Where("user_id = ?", userID).Order("event_date DESC").Find(&items).Error
	return items, err
}
