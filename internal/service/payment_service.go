package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/config"
	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/model/dto"
	"github.com/qs3c/hatch_server/internal/pkg/email"
	"github.com/qs3c/hatch_server/internal/pkg/storage"
	"github.com/qs3c/hatch_server/internal/pkg/upi"
	"github.com/qs3c/hatch_server/internal/pkg/validate"
	"github.com/qs3c/hatch_server/internal/repository"
	"github.com/qs3c/hatch_server/internal/tier"
)

const screenshotURLTTL = 15 * time.Minute

var errDuplicateTxn = &ConflictError{Resource: "payment", Reason: "this transaction ID was already used"}

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	tx          *repository.Transactor
	subs        *SubscriptionService
	store       storage.Store
	mailer      email.Sender
	cfg         *config.Config
	log         *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	tx *repository.Transactor,
	subs *SubscriptionService,
	store storage.Store,
	mailer email.Sender,
	cfg *config.Config,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		tx:          tx,
		subs:        subs,
		store:       store,
		mailer:      mailer,
		cfg:         cfg,
		log:         log.Named("payment"),
		now:         time.Now,
	}
}

// Submit records a user's claim of an out-of-band UPI payment.
func (s *PaymentService) Submit(userID int64, req *dto.SubmitPaymentRequest) (*model.PaymentSubmission, error) {
	t, err := parseTier("requested_tier", req.RequestedTier)
	if err != nil {
		return nil, err
	}
	if !t.IsPaid() {
		return nil, invalid("requested_tier", "must be a paid tier")
	}
	if req.AmountPaid <= 0 {
		return nil, invalid("amount_paid", "must be greater than zero")
	}
	switch req.PaymentMethod {
	case "upi", "bank_transfer":
	default:
		return nil, invalid("payment_method", "must be upi or bank_transfer")
	}
	if !validate.TransactionID(req.TransactionID) {
		return nil, invalid("transaction_id", "must be 10-20 letters, digits or hyphens and start and end with a letter or digit")
	}
	if req.ScreenshotRef == "" {
		return nil, invalid("screenshot_ref", "is required")
	}

	exists, err := s.paymentRepo.ExistsByTransactionID(req.TransactionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateTxn
	}

	payment := &model.PaymentSubmission{
		UserID:        userID,
		RequestedTier: t,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		ScreenshotRef: req.ScreenshotRef,
		Status:        model.PaymentPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		// lost the race against a concurrent submission with the same id
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateTxn
		}
		return nil, err
	}
	return payment, nil
}

// UploadScreenshot stores the payment proof and returns its reference.
func (s *PaymentService) UploadScreenshot(ctx context.Context, userID int64, file io.Reader, filename string, size int64, contentType string) (string, error) {
	if size <= 0 {
		return "", invalid("file", "is empty")
	}
	if size > s.cfg.Upload.MaxScreenshotSize {
		return "", invalid("file", fmt.Sprintf("must be at most %d bytes", s.cfg.Upload.MaxScreenshotSize))
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentType(filepath.Ext(filename))
	}
	if !s.allowedType(contentType) {
		return "", invalid("file", "unsupported image type "+contentType)
	}

	key := storage.ScreenshotKey(userID, filename)
	if err := s.store.Put(ctx, key, file, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *PaymentService) allowedType(contentType string) bool {
	for _, t := range s.cfg.Upload.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Approve accepts a pending payment and grants the requested tier in one
// transaction. If any step fails nothing is applied.
func (s *PaymentService) Approve(adminID, paymentID int64, notes string) (*model.PaymentSubmission, error) {
	var payment *model.PaymentSubmission
	var days int
	transitioned := false

	err := s.tx.WithinTx(func(repos *repository.Repos) error {
		p, err := repos.Payments.GetByID(paymentID)
		if err != nil {
			return notFoundOr(err, "payment", paymentID)
		}
		if p.Status != model.PaymentPending {
			return &ConflictError{Resource: "payment", Reason: "payment is already " + string(p.Status)}
		}

		now := s.now()
		ok, err := repos.Payments.Transition(paymentID, model.PaymentPending, model.PaymentApproved, map[string]interface{}{
			"reviewed_by": adminID,
			"reviewed_at": now,
			"admin_notes": notes,
		})
		if err != nil {
			return err
		}
		if !ok {
			return &ConflictError{Resource: "payment", Reason: "payment was reviewed concurrently"}
		}
		transitioned = true

		days = s.subs.ComputeDuration(p.RequestedTier, p.AmountPaid)
		if err := s.subs.upgradeTx(repos, p.UserID, p.RequestedTier, days, &adminID); err != nil {
			return err
		}

		payment, err = repos.Payments.GetByID(paymentID)
		return err
	})
	if err != nil {
		if transitioned {
			return nil, &PartialFailureError{Op: "approve payment", Err: err}
		}
		return nil, err
	}

	s.notifyApproved(payment, days)
	return payment, nil
}

// Reject declines a pending payment. The user's tier is not touched.
func (s *PaymentService) Reject(adminID, paymentID int64, notes string) (*model.PaymentSubmission, error) {
	p, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, notFoundOr(err, "payment", paymentID)
	}
	if p.Status != model.PaymentPending {
		return nil, &ConflictError{Resource: "payment", Reason: "payment is already " + string(p.Status)}
	}

	ok, err := s.paymentRepo.Transition(paymentID, model.PaymentPending, model.PaymentRejected, map[string]interface{}{
		"reviewed_by": adminID,
		"reviewed_at": s.now(),
		"admin_notes": notes,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ConflictError{Resource: "payment", Reason: "payment was reviewed concurrently"}
	}

	p, err = s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	s.notifyRejected(p)
	return p, nil
}

// Delete removes a submission. An approved submission is kept for audit:
// it becomes rejected and the user falls back to free, atomically.
func (s *PaymentService) Delete(adminID, paymentID int64) error {
	p, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return notFoundOr(err, "payment", paymentID)
	}

	switch p.Status {
	case model.PaymentApproved:
		return s.revokeApproved(adminID, p)
	case model.PaymentPending, model.PaymentRejected:
		return s.paymentRepo.Delete(paymentID)
	default:
		return fmt.Errorf("payment %d has unknown status %q", paymentID, p.Status)
	}
}

func (s *PaymentService) revokeApproved(adminID int64, p *model.PaymentSubmission) error {
	transitioned := false
	err := s.tx.WithinTx(func(repos *repository.Repos) error {
		ok, err := repos.Payments.Transition(p.ID, model.PaymentApproved, model.PaymentRejected, map[string]interface{}{
			"reviewed_by": adminID,
			"reviewed_at": s.now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return &ConflictError{Resource: "payment", Reason: "payment changed concurrently"}
		}
		transitioned = true
		return s.subs.upgradeTx(repos, p.UserID, tier.Free, 0, &adminID)
	})
	if err != nil && transitioned {
		return &PartialFailureError{Op: "revoke approved payment", Err: err}
	}
	return err
}

// PurgeReviewed deletes reviewed submissions older than retention. A zero
// retention uses the configured default.
func (s *PaymentService) PurgeReviewed(ctx context.Context, retention time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if retention <= 0 {
		retention = time.Duration(s.cfg.Subscription.PaymentRetentionDays) * 24 * time.Hour
	}

	refs, n, err := s.paymentRepo.PurgeReviewed(s.now().Add(-retention))
	if err != nil {
		return 0, err
	}

	// best effort: the rows are already gone
	if s.store != nil {
		for _, ref := range refs {
			if err := s.store.Delete(ctx, ref); err != nil {
				s.log.Warn("cannot delete purged screenshot", zap.String("ref", ref), zap.Error(err))
			}
		}
	}
	s.log.Info("purged reviewed payments", zap.Int64("deleted", n), zap.Duration("retention", retention))
	return n, nil
}

func (s *PaymentService) ListMine(userID int64) ([]*model.PaymentSubmission, error) {
	return s.paymentRepo.ListByUserID(userID)
}

// List is the admin review queue.
func (s *PaymentService) List(ctx context.Context, query *dto.PaymentListQuery) ([]*dto.PaymentItem, int64, error) {
	payments, total, err := s.paymentRepo.List(query.Status, query.Page, query.PageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.PaymentItem, len(payments))
	for i, p := range payments {
		items[i] = s.withScreenshotURL(ctx, p)
	}
	return items, total, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID int64) (*dto.PaymentItem, error) {
	p, err := s.paymentRepo.GetByIDWithUser(paymentID)
	if err != nil {
		return nil, notFoundOr(err, "payment", paymentID)
	}
	return s.withScreenshotURL(ctx, p), nil
}

func (s *PaymentService) withScreenshotURL(ctx context.Context, p *model.PaymentSubmission) *dto.PaymentItem {
	item := &dto.PaymentItem{PaymentSubmission: p}
	if s.store == nil || p.ScreenshotRef == "" {
		return item
	}
	url, err := s.store.SignedURL(ctx, p.ScreenshotRef, screenshotURLTTL)
	if err != nil {
		s.log.Warn("cannot sign screenshot url", zap.Int64("payment_id", p.ID), zap.Error(err))
		return item
	}
	item.ScreenshotURL = url
	return item
}

// PaymentQR returns the UPI link and QR code for paying exactly the price of
// a tier for a billing period.
func (s *PaymentService) PaymentQR(rawTier, period string) (*dto.PaymentQRResponse, error) {
	t, err := parseTier("tier", rawTier)
	if err != nil {
		return nil, err
	}
	if !t.IsPaid() {
		return nil, invalid("tier", "must be a paid tier")
	}
	if period == "" {
		period = "monthly"
	}
	amount, err := tier.PriceFor(t, period)
	if err != nil {
		return nil, invalid("period", err.Error())
	}

	info := tier.MustLookup(t)
	payee := upi.Payee{VPA: s.cfg.UPI.PayeeVPA, Name: s.cfg.UPI.PayeeName}
	link, err := payee.Link(amount, fmt.Sprintf("Hatch %s %s", info.DisplayName, period))
	if err != nil {
		return nil, err
	}
	png, err := upi.QR(link, upi.DefaultQRSize)
	if err != nil {
		return nil, err
	}

	return &dto.PaymentQRResponse{
		Tier:   string(t),
		Period: period,
		Amount: amount,
		Link:   link,
		QRCode: base64.StdEncoding.EncodeToString(png),
	}, nil
}

func (s *PaymentService) notifyApproved(p *model.PaymentSubmission, days int) {
	to := s.userEmail(p.UserID)
	if to == "" {
		return
	}
	name := tier.MustLookup(p.RequestedTier).DisplayName
	if err := s.mailer.SendPaymentApproved(to, name, days); err != nil {
		s.log.Warn("approval email failed", zap.Int64("payment_id", p.ID), zap.Error(err))
	}
}

func (s *PaymentService) notifyRejected(p *model.PaymentSubmission) {
	to := s.userEmail(p.UserID)
	if to == "" {
		return
	}
	if err := s.mailer.SendPaymentRejected(to, p.AdminNotes); err != nil {
		s.log.Warn("rejection email failed", zap.Int64("payment_id", p.ID), zap.Error(err))
	}
}

func (s *PaymentService) userEmail(userID int64) string {
	if s.mailer == nil {
		return ""
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u.Email == nil {
		return ""
	}
	return *u.Email
}
