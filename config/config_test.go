package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/tcaws/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, "", cfg.Loader.Bucket)
	assert.Empty(t, cfg.Loader.AllowedBuckets)
	assert.Equal(t, "", cfg.Loader.RootPath)
	assert.False(t, cfg.Loader.EnableHTTP)
	assert.Equal(t, "aws", cfg.Store.Backend)
	assert.Equal(t, "eu-west-1", cfg.Store.Region)
	assert.Equal(t, "./data", cfg.Store.Path)
	assert.False(t, cfg.Storage.ReducedRedundancy)
	assert.False(t, cfg.Storage.Encrypt)
	assert.Equal(t, 3600, cfg.Presign.Expiry)
	assert.Equal(t, 20, cfg.HTTP.Timeout)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.CORS.Enabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "tcaws.yaml", `
server:
  port: 8080
loader:
  bucket: images
  allowed_buckets:
    - photos
    - avatars
  root_path: assets
  enable_http: true
storage:
  bucket: thumbs
  root_path: cache
  rrs: true
  sse: true
store:
  backend: minio
  region: us-east-1
  endpoint: http://localhost:9000
presign:
  expiry: 600
http:
  timeout: 5
workers: 4
log:
  level: debug
cors:
  enabled: true
  allowed_origins:
    - https://example.com
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "images", cfg.Loader.Bucket)
	assert.Equal(t, []string{"photos", "avatars"}, cfg.Loader.AllowedBuckets)
	assert.Equal(t, "assets", cfg.Loader.RootPath)
	assert.True(t, cfg.Loader.EnableHTTP)
	assert.Equal(t, "thumbs", cfg.Storage.Bucket)
	assert.Equal(t, "cache", cfg.Storage.RootPath)
	assert.True(t, cfg.Storage.ReducedRedundancy)
	assert.True(t, cfg.Storage.Encrypt)
	assert.Equal(t, "minio", cfg.Store.Backend)
	assert.Equal(t, "http://localhost:9000", cfg.Store.Endpoint)
	assert.Equal(t, 600, cfg.Presign.Expiry)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
loader:
  bucket: images
  root_path: assets
store:
  region: us-east-1
`)
	overridePath := writeConfig(t, "override.yaml", `
loader:
  bucket: override
`)

	// Load with merge (later files override earlier)
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "override", cfg.Loader.Bucket)

	// Preserved values from base
	assert.Equal(t, "assets", cfg.Loader.RootPath)
	assert.Equal(t, "us-east-1", cfg.Store.Region)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("TC_AWS_LOADER_BUCKET", "env-bucket")
	t.Setenv("TC_AWS_ALLOWED_BUCKETS", "photos, avatars,")
	t.Setenv("TC_AWS_LOADER_ROOT_PATH", "assets")
	t.Setenv("TC_AWS_ENABLE_HTTP_LOADER", "true")
	t.Setenv("TC_AWS_REGION", "ap-south-1")
	t.Setenv("TC_AWS_STORAGE_BUCKET", "thumbs")
	t.Setenv("TC_AWS_STORAGE_RRS", "true")
	t.Setenv("TC_AWS_STORAGE_SSE", "true")
	t.Setenv("TC_AWS_PRESIGN_EXPIRY", "120")
	t.Setenv("TC_AWS_PORT", "9090")
	t.Setenv("TC_AWS_WORKERS", "3")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "env-bucket", cfg.Loader.Bucket)
	assert.Equal(t, []string{"photos", "avatars"}, cfg.Loader.AllowedBuckets)
	assert.Equal(t, "assets", cfg.Loader.RootPath)
	assert.True(t, cfg.Loader.EnableHTTP)
	assert.Equal(t, "ap-south-1", cfg.Store.Region)
	assert.Equal(t, "thumbs", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.ReducedRedundancy)
	assert.True(t, cfg.Storage.Encrypt)
	assert.Equal(t, 120, cfg.Presign.Expiry)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("TC_AWS_LOADER_BUCKET", "env-bucket")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("bucket", "", "")
	flags.Int("port", 0, "")
	flags.String("backend", "", "")
	flags.String("data", "", "")
	require.NoError(t, flags.Parse([]string{"--bucket", "flag-bucket", "--backend", "filesystem", "--data", "/srv/data"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, "flag-bucket", cfg.Loader.Bucket)
	assert.Equal(t, "filesystem", cfg.Store.Backend)
	assert.Equal(t, "/srv/data", cfg.Store.Path)
	// unchanged flags do not override defaults
	assert.Equal(t, 8888, cfg.Server.Port)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid port", content: "server:\n  port: 99999\n"},
		{name: "invalid backend", content: "store:\n  backend: gcs\n"},
		{name: "minio without endpoint", content: "store:\n  backend: minio\n"},
		{name: "expiry too long", content: "presign:\n  expiry: 700000\n"},
		{name: "zero workers", content: "workers: 0\n"},
		{name: "invalid log level", content: "log:\n  level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "tcaws.yaml", tt.content)

			_, err := config.Load([]string{configPath}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	cfg := &config.Config{
		Loader: config.LoaderConfig{
			Bucket:         "images",
			AllowedBuckets: []string{"photos"},
			RootPath:       "assets",
			EnableHTTP:     true,
		},
		Storage: config.StorageConfig{
			Bucket:            "thumbs",
			RootPath:          "cache",
			ReducedRedundancy: true,
			Encrypt:           true,
		},
		Presign: config.PresignConfig{Expiry: 90},
	}

	lc := cfg.LoaderConfig()
	assert.Equal(t, "images", lc.DefaultBucket)
	assert.Equal(t, []string{"photos"}, lc.AllowedBuckets)
	assert.Equal(t, "assets", lc.RootPath)
	assert.True(t, lc.EnableHTTPLoader)

	sc := cfg.StorageConfig()
	assert.Equal(t, "thumbs", sc.Bucket)
	assert.Equal(t, "cache", sc.RootPath)
	assert.True(t, sc.ReducedRedundancy)
	assert.True(t, sc.Encrypt)
	assert.Equal(t, 90*time.Second, sc.PresignExpiry)
}

func TestFromContext_Missing(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)
}
