package dto

import "github.com/qs3c/hatch_server/internal/model"

type SubmitPaymentRequest struct {
	RequestedTier string  `json:"requested_tier" binding:"required"`
	AmountPaid    float64 `json:"amount_paid" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=upi bank_transfer"`
	TransactionID string  `json:"transaction_id" binding:"required,txnid"`
	ScreenshotRef string  `json:"screenshot_ref" binding:"required"`
}

type UploadScreenshotResponse struct {
	ScreenshotRef string `json:"screenshot_ref"`
}

type ReviewPaymentRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type PaymentListQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// PaymentItem is a submission plus a short-lived link to its screenshot.
type PaymentItem struct {
	*model.PaymentSubmission
	ScreenshotURL string `json:"screenshot_url,omitempty"`
}

type PaymentQRQuery struct {
	Tier   string `form:"tier" binding:"required"`
	Period string `form:"period" binding:"omitempty,oneof=monthly annual"`
}

type PaymentQRResponse struct {
	Tier   string  `json:"tier"`
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
	Link   string  `json:"link"`
	// QRCode is a base64 PNG.
	QRCode string `json:"qr_code"`
}

type PurgePaymentsRequest struct {
	RetentionDays int `json:"retention_days" binding:"omitempty,min=0"`
}

type PurgePaymentsResponse struct {
	Deleted int64 `json:"deleted"`
}
