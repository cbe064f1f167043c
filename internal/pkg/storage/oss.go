package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/hatch_server/config"
)

type OSSStore struct {
	bucket *oss.Bucket
}

func NewOSS(cfg *config.OSSConfig) (*OSSStore, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSStore{bucket: bucket}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	err := s.bucket.PutObject(key, body,
		oss.ContentType(contentType),
		oss.ContentLength(size),
		oss.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Screenshots are private; admins read them through short-lived signed URLs.
func (s *OSSStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	signedURL, err := s.bucket.SignURL(key, oss.HTTPGet, int64(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return signedURL, nil
}
