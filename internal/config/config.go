// Package config provides configuration management for filedrop.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/filedrop/filedrop/internal/constants"
)

// EnvServerURL overrides [server] url when set.
const EnvServerURL = "FILEDROP_SERVER_URL"

// Config is the client configuration.
//
// Config file location: ~/.config/filedrop/config
//
// INI format:
//
//	[server]
//	url = http://localhost:8000
//
//	[transfer]
//	settle_delay = 2s
//	max_retries = 0
//	download_dir = .
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	password =
//	no_proxy =
//	warmup = false
type Config struct {
	ServerURL string

	// SettleDelay is how long terminal item statuses stay visible after a batch
	// resolves before the registry refresh.
	SettleDelay time.Duration

	// MaxRetries applies to list and delete calls only. Uploads are never retried.
	MaxRetries int

	DownloadDir string

	// Proxy settings
	ProxyMode     string // no-proxy, system, basic, ntlm
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string
	ProxyWarmup   bool
}

// Validation errors
var (
	ErrMissingServerURL   = errors.New("server url is required")
	ErrInvalidServerURL   = errors.New("server url must be an absolute http(s) URL")
	ErrInvalidSettleDelay = errors.New("settle_delay must not be negative")
	ErrInvalidMaxRetries  = fmt.Errorf("max_retries must be between 0 and %d", constants.MaxMaxRetries)
	ErrInvalidProxyMode   = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:   constants.DefaultServerURL,
		SettleDelay: constants.DefaultSettleDelay,
		MaxRetries:  constants.DefaultMaxRetries,
		DownloadDir: ".",
		ProxyMode:   "no-proxy",
		ProxyPort:   8080,
	}
}

// DefaultConfigPath returns ~/.config/filedrop/config
// (%USERPROFILE%\.config\filedrop\config on Windows).
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config"), nil
}

// LoadConfig loads configuration from an INI file.
// A missing file yields defaults and no error. The FILEDROP_SERVER_URL
// environment variable is applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	server := iniFile.Section("server")
	cfg.ServerURL = server.Key("url").MustString(cfg.ServerURL)

	transfer := iniFile.Section("transfer")
	cfg.SettleDelay = transfer.Key("settle_delay").MustDuration(cfg.SettleDelay)
	cfg.MaxRetries = transfer.Key("max_retries").MustInt(cfg.MaxRetries)
	cfg.DownloadDir = transfer.Key("download_dir").MustString(cfg.DownloadDir)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(cfg.ProxyPort)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.ProxyPassword = proxy.Key("password").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		cfg.ServerURL = v
	}
}

// SaveConfig writes cfg to an INI file, creating parent directories.
// The proxy password is stored in the file, so it is written with 0600.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	server, err := iniFile.NewSection("server")
	if err != nil {
		return fmt.Errorf("failed to create server section: %w", err)
	}
	server.Key("url").SetValue(cfg.ServerURL)

	transfer, err := iniFile.NewSection("transfer")
	if err != nil {
		return fmt.Errorf("failed to create transfer section: %w", err)
	}
	transfer.Key("settle_delay").SetValue(cfg.SettleDelay.String())
	transfer.Key("max_retries").SetValue(fmt.Sprintf("%d", cfg.MaxRetries))
	transfer.Key("download_dir").SetValue(cfg.DownloadDir)

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(fmt.Sprintf("%d", cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("password").SetValue(cfg.ProxyPassword)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(fmt.Sprintf("%t", cfg.ProxyWarmup))

	// temp file + rename so a crash never leaves a half-written config
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the configuration before any network call is made.
func (cfg *Config) Validate() error {
	raw := strings.TrimSpace(cfg.ServerURL)
	if raw == "" {
		return ErrMissingServerURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}
	if cfg.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > constants.MaxMaxRetries {
		return ErrInvalidMaxRetries
	}
	switch strings.ToLower(cfg.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return ErrInvalidProxyMode
	}
	return nil
}
