package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// UploadScreenshot stores the proof image ahead of the submission.
// POST /api/v1/payments/screenshot
func (h *PaymentHandler) UploadScreenshot(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "cannot read upload")
		return
	}
	defer f.Close()

	ref, err := h.paymentService.UploadScreenshot(
		c.Request.Context(), userID, f, file.Filename, file.Size, file.Header.Get("Content-Type"),
	)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.UploadScreenshotResponse{ScreenshotRef: ref})
}

// Submit files a payment for admin review.
// POST /api/v1/payments
func (h *PaymentHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	payment, err := h.paymentService.Submit(userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "payment submitted for review", payment)
}

// ListMine returns the caller's submissions, newest first.
// GET /api/v1/payments
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListMine(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"payments": payments})
}

// QR returns the UPI link and QR code for a tier's price.
// GET /api/v1/payments/qr?tier=explorer&period=annual
func (h *PaymentHandler) QR(c *gin.Context) {
	var q dto.PaymentQRQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	qr, err := h.paymentService.PaymentQR(q.Tier, q.Period)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, qr)
}

// AdminList is the review queue.
// GET /api/v1/admin/payments
func (h *PaymentHandler) AdminList(c *gin.Context) {
	var q dto.PaymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.paymentService.List(c.Request.Context(), &q)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, items)
}

// AdminGet returns one submission with its screenshot link.
// GET /api/v1/admin/payments/:id
func (h *PaymentHandler) AdminGet(c *gin.Context) {
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := h.paymentService.Get(c.Request.Context(), paymentID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, item)
}

// Approve approves a pending payment and grants its tier.
// POST /api/v1/admin/payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	h.review(c, h.paymentService.Approve, "payment approved")
}

// Reject declines a pending payment.
// POST /api/v1/admin/payments/:id/reject
func (h *PaymentHandler) Reject(c *gin.Context) {
	h.review(c, h.paymentService.Reject, "payment rejected")
}

func (h *PaymentHandler) review(c *gin.Context, fn func(adminID, paymentID int64, notes string) (*model.PaymentSubmission, error), message string) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	payment, err := fn(adminID, paymentID, req.Notes)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, message, payment)
}

// Delete removes a submission. Deleting an approved one revokes the tier.
// DELETE /api/v1/admin/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(adminID, paymentID); err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "payment deleted", nil)
}

// Purge deletes reviewed submissions past the retention window.
// POST /api/v1/admin/payments/purge
func (h *PaymentHandler) Purge(c *gin.Context) {
	var req dto.PurgePaymentsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ParamError(c, err.Error())
			return
		}
	}

	retention := time.Duration(req.RetentionDays) * 24 * time.Hour
	n, err := h.paymentService.PurgeReviewed(c.Request.Context(), retention)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.PurgePaymentsResponse{Deleted: n})
}
