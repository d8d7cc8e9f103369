package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vistudio/studio-cms/internal/config"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
		BucketName:      "studio-media",
	}
}

// Presigning is pure signature math; none of these tests touch the network.

func TestGeneratePresignedUploadURL(t *testing.T) {
	store, err := NewS3Storage(testS3Config())
	require.NoError(t, err)

	url, err := store.GeneratePresignedUploadURL(context.Background(), "portfolio/abc.mp4", "video/mp4", 10*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, url, "/studio-media/portfolio/abc.mp4", "path-style bucket addressing")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=600")
}

func TestGeneratePresignedDownloadURL(t *testing.T) {
	store, err := NewS3Storage(testS3Config())
	require.NoError(t, err)

	url, err := store.GeneratePresignedDownloadURL(context.Background(), "reels/x.mp4", 0)
	require.NoError(t, err)

	assert.Contains(t, url, "/studio-media/reels/x.mp4")
	// Zero expiry falls back to the default.
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestPublicURL(t *testing.T) {
	cfg := testS3Config()
	store, err := NewS3Storage(cfg)
	require.NoError(t, err)

	assert.Equal(t,
		"http://localhost:9000/studio-media/team/p.jpg",
		store.PublicURL("team/p.jpg"))

	cfg.PublicBaseURL = "https://media.vistudio.example/"
	cdnStore, err := NewS3Storage(cfg)
	require.NoError(t, err)

	assert.Equal(t,
		"https://media.vistudio.example/team/p.jpg",
		cdnStore.PublicURL("team/p.jpg"))
}
