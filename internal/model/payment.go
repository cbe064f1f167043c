package model

import (
	"time"

	"github.com/qs3c/hatch_server/internal/tier"
)

// PaymentSubmission is a user-reported UPI payment awaiting admin review.
type PaymentSubmission struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	RequestedTier tier.Tier     `gorm:"size:20;not null" json:"requested_tier"`
	AmountPaid    float64       `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	PaymentMethod string        `gorm:"size:30;not null" json:"payment_method"` // upi, bank_transfer
	TransactionID string        `gorm:"size:20;not null;uniqueIndex" json:"transaction_id"`
	ScreenshotRef string        `gorm:"size:500;not null" json:"screenshot_ref"`
	Status        PaymentStatus `gorm:"size:20;default:pending;index" json:"status"`
	AdminNotes    string        `gorm:"type:text" json:"admin_notes,omitempty"`
	ReviewedBy    *int64        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `gorm:"index" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PaymentSubmission) TableName() string {
	return "payment_submissions"
}
