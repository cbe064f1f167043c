package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/qs3c/hatch_server/internal/tier"
)

var (
	ErrEmailExists        = errors.New("email is already registered")
	ErrUsernameExists     = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrInvalidVerifyCode  = errors.New("verification code is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPermission         = errors.New("permission denied")
	ErrQuotaExceeded      = errors.New("quota exceeded")
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness or state conflict.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// PartialFailureError wraps a multi-step operation that failed and was
// rolled back as a whole.
type PartialFailureError struct {
	Op  string
	Err error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s failed, no changes were applied: %v", e.Op, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// notFoundOr maps gorm's missing-row error to a NotFoundError.
func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}

// parseTier turns an unknown tier into a ValidationError on field.
func parseTier(field, raw string) (tier.Tier, error) {
	t, err := tier.Parse(raw)
	if err != nil {
		var unknown *tier.UnknownTierError
		if errors.As(err, &unknown) {
			return "", invalid(field, unknown.Error())
		}
		return "", err
	}
	return t, nil
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
