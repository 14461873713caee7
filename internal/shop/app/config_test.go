package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 5001, cfg.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "local", cfg.Blob.Driver)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, 30*time.Second, cfg.Upload.Timeout)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, 5, cfg.RateLimit.Strict.RequestsPerWindow)
	require.False(t, cfg.Production())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("SECRET_TOKEN", "s3cret")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://shop@db/shop")
	t.Setenv("BLOB_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "images")
	t.Setenv("S3_REGION", "ap-southeast-2")
	t.Setenv("UPLOAD_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "1000")
	t.Setenv("RATELIMIT_STRICT_BURST", "1000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.Production())
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "s3cret", cfg.SecretToken)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Equal(t, "postgres://shop@db/shop", cfg.Database.URL)
	require.Equal(t, "images", cfg.Blob.S3.Bucket)
	require.Equal(t, 5*time.Second, cfg.Upload.Timeout)
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, 1000, cfg.RateLimit.Strict.RequestsPerWindow)
	require.Equal(t, time.Minute, cfg.RateLimit.Strict.Window)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7000
static_dir: ./dist
cors_origins:
  - https://a.example.com
blob:
  public_base_url: https://cdn.example.com/media
`), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "7001")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 7001, cfg.Port, "environment wins over file")
	require.Equal(t, "./dist", cfg.StaticDir)
	require.Equal(t, []string{"https://a.example.com"}, cfg.CORSOrigins)
	require.Equal(t, "https://cdn.example.com/media", cfg.Blob.PublicBaseURL)
	require.Equal(t, "media", cfg.Blob.LocalDir)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Database.Driver = "mysql"
	require.ErrorContains(t, bad.Validate(), "mysql")

	bad = cfg
	bad.Database.Driver = "postgres"
	require.ErrorContains(t, bad.Validate(), "database.url")

	bad = cfg
	bad.Blob.Driver = "s3"
	require.ErrorContains(t, bad.Validate(), "bucket")

	bad = cfg
	bad.Port = 0
	bad.Upload.Timeout = 0
	err := bad.Validate()
	require.ErrorContains(t, err, "port")
	require.ErrorContains(t, err, "upload.timeout")
}
