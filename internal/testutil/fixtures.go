package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/internal/model"
	"github.com/qs3c/hatch_server/internal/tier"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser creates a verified free-tier user.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	email := fmt.Sprintf("test_%d@example.com", n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:             fmt.Sprintf("testuser_%d", n),
		FullName:             fmt.Sprintf("Test User %d", n),
		Email:                &email,
		PasswordHash:         &passwordHash,
		Role:                 model.RoleUser,
		SubscriptionTier:     tier.Free,
		AutoDowngradeEnabled: true,
		EmailVerified:        true,
	}

	for _, opt := range opts {
		opt(user)
	}

	// gorm skips zero values that have a column default and copies the
	// default back into the struct, so remember the requested flag
	autoDowngrade := user.AutoDowngradeEnabled

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	if !autoDowngrade {
		if err := db.Model(user).Update("auto_downgrade_enabled", false).Error; err != nil {
			t.Fatalf("Failed to disable auto downgrade: %v", err)
		}
		user.AutoDowngradeEnabled = false
	}

	return user
}

func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPassword stores a real hash so login tests can authenticate.
func WithPassword(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// WithTier sets the subscription tier. A nil expiry means no expiry.
func WithTier(t tier.Tier, expiresAt *time.Time) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = t
		u.SubscriptionExpiresAt = expiresAt
	}
}

func WithRole(role model.Role) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

func WithAutoDowngrade(enabled bool) func(*model.User) {
	return func(u *model.User) {
		u.AutoDowngradeEnabled = enabled
	}
}

func WithUnverified(code string, expiresAt time.Time) func(*model.User) {
	return func(u *model.User) {
		u.EmailVerified = false
		u.VerificationCode = &code
		u.VerificationExpiresAt = &expiresAt
	}
}

// TestEvent creates a published free event a week from now.
func TestEvent(t *testing.T, db *gorm.DB, opts ...func(*model.Event)) *model.Event {
	t.Helper()

	event := &model.Event{
		Title:        fmt.Sprintf("Test Event %d", next()),
		Description:  "An event for tests",
		Organizer:    "Hatch",
		Category:     "workshop",
		Mode:         model.ModeOnline,
		RequiredTier: tier.Free,
		Status:       model.EventPublished,
		EventDate:    time.Now().Add(7 * 24 * time.Hour),
	}

	for _, opt := range opts {
		opt(event)
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return event
}

func WithTitle(title string) func(*model.Event) {
	return func(e *model.Event) {
		e.Title = title
	}
}

func WithRequiredTier(t tier.Tier) func(*model.Event) {
	return func(e *model.Event) {
		e.RequiredTier = t
	}
}

func WithEventStatus(status model.EventStatus) func(*model.Event) {
	return func(e *model.Event) {
		e.Status = status
	}
}

func WithEventDate(date time.Time) func(*model.Event) {
	return func(e *model.Event) {
		e.EventDate = date
	}
}

func WithDeadline(deadline time.Time) func(*model.Event) {
	return func(e *model.Event) {
		e.RegistrationDeadline = &deadline
	}
}

func WithCreatedAt(at time.Time) func(*model.Event) {
	return func(e *model.Event) {
		e.CreatedAt = at
	}
}

// TestPayment creates a pending UPI submission for userID.
func TestPayment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.PaymentSubmission)) *model.PaymentSubmission {
	t.Helper()

	payment := &model.PaymentSubmission{
		UserID:        userID,
		RequestedTier: tier.Explorer,
		AmountPaid:    99,
		PaymentMethod: "upi",
		TransactionID: fmt.Sprintf("TXN%010d", next()),
		ScreenshotRef: "payments/test.png",
		Status:        model.PaymentPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}

func WithPaymentTier(t tier.Tier, amount float64) func(*model.PaymentSubmission) {
	return func(p *model.PaymentSubmission) {
		p.RequestedTier = t
		p.AmountPaid = amount
	}
}

// WithReviewed marks the submission as reviewed at the given time.
func WithReviewed(status model.PaymentStatus, at time.Time) func(*model.PaymentSubmission) {
	return func(p *model.PaymentSubmission) {
		p.Status = status
		p.ReviewedAt = &at
	}
}

func WithTransactionID(id string) func(*model.PaymentSubmission) {
	return func(p *model.PaymentSubmission) {
		p.TransactionID = id
	}
}

func WithScreenshot(ref string) func(*model.PaymentSubmission) {
	return func(p *model.PaymentSubmission) {
		p.ScreenshotRef = ref
	}
}

// TestRegistration registers userID for eventID with the given status.
func TestRegistration(t *testing.T, db *gorm.DB, userID, eventID int64, status model.AttendanceStatus) *model.Registration {
	t.Helper()

	reg := &model.Registration{
		UserID:  userID,
		EventID: eventID,
		Status:  status,
		Source:  model.SourceSelf,
	}

	if err := db.Create(reg).Error; err != nil {
		t.Fatalf("Failed to create test registration: %v", err)
	}

	return reg
}

// TestPastEvent records a manual past event for userID.
func TestPastEvent(t *testing.T, db *gorm.DB, userID int64) *model.PastEvent {
	t.Helper()

	pe := &model.PastEvent{
		UserID:    userID,
		Title:     fmt.Sprintf("Past Event %d", next()),
		Organizer: "Elsewhere",
		EventDate: time.Now().Add(-30 * 24 * time.Hour),
	}

	if err := db.Create(pe).Error; err != nil {
		t.Fatalf("Failed to create test past event: %v", err)
	}

	return pe
}
