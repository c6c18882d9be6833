package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/filedrop/filedrop/internal/constants"
)

// EnvPrefix is the prefix for server settings read from the environment,
// e.g. FILEDROP_STORAGE_BACKEND for storage.backend.
const EnvPrefix = "FILEDROP"

// ServerConfig is the configuration of `filedrop serve`, loaded from YAML.
//
//	server:
//	  addr: ":8000"
//	  mode: release
//	upload:
//	  max_size: 10485760
//	storage:
//	  backend: local
//	  local:
//	    dir: uploads
//	log:
//	  level: info
type ServerConfig struct {
	Server  HTTPServerConfig `mapstructure:"server"`
	Upload  UploadConfig     `mapstructure:"upload"`
	Storage StorageConfig    `mapstructure:"storage"`
	Log     LogConfig        `mapstructure:"log"`
}

// HTTPServerConfig holds the listener settings.
type HTTPServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
}

// LogConfig holds the server log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	Backend string             `mapstructure:"backend"` // local, minio, s3, azure
	Local   LocalStorageConfig `mapstructure:"local"`
	MinIO   MinIOConfig        `mapstructure:"minio"`
	S3      S3Config           `mapstructure:"s3"`
	Azure   AzureConfig        `mapstructure:"azure"`
}

// LocalStorageConfig stores files in a directory.
type LocalStorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// MinIOConfig configures a MinIO bucket.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// S3Config configures an S3 (or S3-compatible) bucket.
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// AzureConfig configures an Azure Blob container addressed by a SAS URL.
type AzureConfig struct {
	ContainerURL string `mapstructure:"container_url"`
	Prefix       string `mapstructure:"prefix"`
}

// Server config validation errors
var (
	ErrUnknownStorageBackend = errors.New("storage.backend must be one of local, minio, s3, azure")
	ErrInvalidMaxUploadSize  = errors.New("upload.max_size must be positive")
	ErrMissingStorageSetting = errors.New("storage backend is missing a required setting")
)

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", constants.DefaultServerAddr)
	v.SetDefault("server.mode", "release")
	v.SetDefault("upload.max_size", constants.DefaultMaxUploadSize)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.dir", constants.DefaultUploadDir)
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key_id", "")
	v.SetDefault("storage.minio.secret_access_key", "")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.bucket_name", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("storage.azure.container_url", "")
	v.SetDefault("storage.azure.prefix", "")
	v.SetDefault("log.level", "info")
}

// LoadServerConfig reads path (YAML) when non-empty, then applies FILEDROP_*
// environment overrides. An empty path yields defaults plus environment.
func LoadServerConfig(path string) (*ServerConfig, error) {
	v := viper.New()
	setServerDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the selected backend has what it needs.
func (c *ServerConfig) Validate() error {
	if c.Upload.MaxSize <= 0 {
		return ErrInvalidMaxUploadSize
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Local.Dir == "" {
			return fmt.Errorf("%w: storage.local.dir", ErrMissingStorageSetting)
		}
	case "minio":
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("%w: storage.minio.endpoint", ErrMissingStorageSetting)
		}
		if c.Storage.MinIO.BucketName == "" {
			return fmt.Errorf("%w: storage.minio.bucket_name", ErrMissingStorageSetting)
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("%w: storage.s3.bucket", ErrMissingStorageSetting)
		}
	case "azure":
		if c.Storage.Azure.ContainerURL == "" {
			return fmt.Errorf("%w: storage.azure.container_url", ErrMissingStorageSetting)
		}
	default:
		return ErrUnknownStorageBackend
	}
	return nil
}
