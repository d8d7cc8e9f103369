package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "studio_cms", cfg.Database.Name)
	assert.Equal(t, 15*time.Minute, cfg.Upload.PresignExpiry)
	assert.Contains(t, cfg.Upload.Folders, "portfolio")
	assert.Contains(t, cfg.Upload.Folders, "team")
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
s3:
  endpoint: "http://minio:9000"
  bucket_name: "media"
  public_base_url: "https://cdn.example"
upload:
  presign_expiry: "5m"
  folders: ["reels"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "http://minio:9000", cfg.S3.Endpoint)
	assert.Equal(t, "media", cfg.S3.BucketName)
	assert.Equal(t, "https://cdn.example", cfg.S3.PublicBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Upload.PresignExpiry)
	assert.Equal(t, []string{"reels"}, cfg.Upload.Folders)
}
