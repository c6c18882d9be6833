package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "uploads", cfg.Storage.Local.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadServerConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	yaml := `
server:
  addr: ":9090"
upload:
  max_size: 2048
storage:
  backend: minio
  minio:
    endpoint: localhost:9000
    bucket_name: drops
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))
	t.Setenv("FILEDROP_STORAGE_MINIO_ACCESS_KEY_ID", "minioadmin")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, int64(2048), cfg.Upload.MaxSize)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, "drops", cfg.Storage.MinIO.BucketName)
	assert.Equal(t, "minioadmin", cfg.Storage.MinIO.AccessKeyID)
}

func TestLoadServerConfig_MissingFile(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestServerConfigValidate(t *testing.T) {
	base := func() ServerConfig {
		return ServerConfig{
			Upload:  UploadConfig{MaxSize: 1},
			Storage: StorageConfig{Backend: "local", Local: LocalStorageConfig{Dir: "x"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr error
	}{
		{"valid local", func(c *ServerConfig) {}, nil},
		{"zero max size", func(c *ServerConfig) { c.Upload.MaxSize = 0 }, ErrInvalidMaxUploadSize},
		{"unknown backend", func(c *ServerConfig) { c.Storage.Backend = "ftp" }, ErrUnknownStorageBackend},
		{"minio without bucket", func(c *ServerConfig) {
			c.Storage.Backend = "minio"
			c.Storage.MinIO.Endpoint = "localhost:9000"
		}, ErrMissingStorageSetting},
		{"s3 without bucket", func(c *ServerConfig) { c.Storage.Backend = "S3" }, ErrMissingStorageSetting},
		{"azure without url", func(c *ServerConfig) { c.Storage.Backend = "azure" }, ErrMissingStorageSetting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}
