package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.PaymentSubmission) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id int64) (*model.PaymentSubmission, error) {
	var payment model.PaymentSubmission
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByIDWithUser(id int64) (*model.PaymentSubmission, error) {
	var payment model.PaymentSubmission
	err := r.db.Preload("User").Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ExistsByTransactionID(txnID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.PaymentSubmission{}).Where("transaction_id = ?", txnID).Count(&count).Error
	return count > 0, err
}

// Transition moves a submission from one status to another. The WHERE clause
// carries the expected current status, so a concurrent review loses cleanly.
// fields are written alongside the new status.
func (r *PaymentRepository) Transition(id int64, from, to model.PaymentStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := r.db.Model(&model.PaymentSubmission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepository) Delete(id int64) error {
	return r.db.Delete(&model.PaymentSubmission{}, id).Error
}

// PurgeReviewed hard-deletes approved and rejected submissions reviewed
// before cutoff and returns the screenshot references of the deleted rows.
// Rows without a review time fall back to their creation time. Pending
// submissions are never touched.
func (r *PaymentRepository) PurgeReviewed(cutoff time.Time) ([]string, int64, error) {
	var doomed []model.PaymentSubmission
	err := r.db.Select("id", "screenshot_ref").
		Where("status IN ?", []model.PaymentStatus{model.PaymentApproved, model.PaymentRejected}).
		Where("COALESCE(reviewed_at, created_at) < ?", cutoff).
		Find(&doomed).Error
	if err != nil || len(doomed) == 0 {
		return nil, 0, err
	}

	ids := make([]int64, len(doomed))
	refs := make([]string, 0, len(doomed))
	for i, p := range doomed {
		ids[i] = p.ID
		if p.ScreenshotRef != "" {
			refs = append(refs, p.ScreenshotRef)
		}
	}

	// status is repeated so a row cannot be purged while pending
	result := r.db.
		Where("id IN ?", ids).
		Where("status IN ?", []model.PaymentStatus{model.PaymentApproved, model.PaymentRejected}).
		Delete(&model.PaymentSubmission{})
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return refs, result.RowsAffected, nil
}

// List is the admin queue, newest first, optionally filtered by status.
func (r *PaymentRepository) List(status string, page, pageSize int) ([]*model.PaymentSubmission, int64, error) {
	var payments []*model.PaymentSubmission
	var total int64

	query := r.db.Model(&model.PaymentSubmission{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("User").Order("created_at DESC").Order("id DESC").Offset(offset).Limit(pageSize).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *PaymentRepository) ListByUserID(userID int64) ([]*model.PaymentSubmission, error) {
	var payments []*model.PaymentSubmission
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) CountByStatus(status model.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.PaymentSubmission{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
