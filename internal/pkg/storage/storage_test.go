package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/hatch_server/config"
)

func TestScreenshotKey(t *testing.T) {
	k1 := ScreenshotKey(42, "Receipt.JPG")
	k2 := ScreenshotKey(42, "Receipt.JPG")

	assert.True(t, strings.HasPrefix(k1, "payments/42/"))
	assert.True(t, strings.HasSuffix(k1, ".jpg"))
	assert.NotEqual(t, k1, k2)

	assert.True(t, strings.HasSuffix(ScreenshotKey(1, "noext"), ".png"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType(".JPEG"))
	assert.Equal(t, "image/png", ContentType(".png"))
	assert.Equal(t, "application/octet-stream", ContentType(".exe"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Put(ctx, "a/b.png", strings.NewReader("png"), 3, "image/png"))

	data, ok := s.Get("a/b.png")
	require.True(t, ok)
	assert.Equal(t, "png", string(data))

	url, err := s.SignedURL(ctx, "a/b.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://a/b.png", url)

	require.NoError(t, s.Delete(ctx, "a/b.png"))
	_, err = s.SignedURL(ctx, "a/b.png", time.Minute)
	assert.Error(t, err)
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(&config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(&config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
