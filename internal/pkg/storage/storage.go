// Package storage keeps payment screenshots in object storage. The stored
// object key is the opaque reference saved on a payment submission.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qs3c/hatch_server/config"
)

// Store is implemented by every blob backend.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// SignedURL returns a temporary read URL for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New builds the backend selected by cfg.Driver.
func New(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "oss", "":
		return NewOSS(&cfg.OSS)
	case "s3":
		return NewS3(&cfg.S3)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// ScreenshotKey returns a fresh object key for a user's payment screenshot.
func ScreenshotKey(userID int64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("payments/%d/%s%s", userID, uuid.NewString(), ext)
}

// ContentType maps an image extension to its MIME type.
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
