// ABOUTME: Layered configuration for HireOS and the GoHighLevel integration
// ABOUTME: Merges struct defaults, an optional .env file, and environment variables via koanf
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName names the XDG data directory.
	AppName = "hireos"

	DefaultLegacyBaseURL = "https://rest.gohighlevel.com/v1"
	DefaultAPIBaseURL    = "https://services.leadconnectorhq.com"
	DefaultTokenURL      = "https://services.leadconnectorhq.com/oauth/token"
	DefaultAPIVersion    = "2021-07-28"
)

var (
	ErrMissingAPIKey      = errors.New("GHL API key not configured: set GHL_API_KEY")
	ErrMissingOAuthClient = errors.New("GHL OAuth client not configured: set GHL_CLIENT_ID and GHL_CLIENT_SECRET")
)

type Config struct {
	DBPath string       `koanf:"db_path"`
	GHL    GHLConfig    `koanf:"ghl"`
	Log    LogConfig    `koanf:"log"`
	Server ServerConfig `koanf:"server"`
	Sync   SyncConfig   `koanf:"sync"`
}

type GHLConfig struct {
	// APIKey authenticates the legacy v1 contacts API.
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`

	// OAuth-backed v2 API used for workflow automation.
	APIBaseURL   string `koanf:"api_base_url"`
	TokenURL     string `koanf:"token_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	APIVersion   string `koanf:"api_version"`

	RequestTimeout time.Duration `koanf:"request_timeout"`
}

type SyncConfig struct {
	PageSize   int           `koanf:"page_size"`
	MaxRecords int           `koanf:"max_records"`
	PageDelay  time.Duration `koanf:"page_delay"`
	Verbose    bool          `koanf:"verbose"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: filepath.Join(xdg.DataHome, AppName, "hireos.db"),
		GHL: GHLConfig{
			BaseURL:        DefaultLegacyBaseURL,
			APIBaseURL:     DefaultAPIBaseURL,
			TokenURL:       DefaultTokenURL,
			APIVersion:     DefaultAPIVersion,
			RequestTimeout: 30 * time.Second,
		},
		Sync: SyncConfig{
			PageSize:   100,
			MaxRecords: 300,
			PageDelay:  150 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// envMappings maps environment variable names to koanf paths.
var envMappings = map[string]string{
	"hireos_db_path":      "db_path",
	"ghl_api_key":         "ghl.api_key",
	"ghl_base_url":        "ghl.base_url",
	"ghl_api_base_url":    "ghl.api_base_url",
	"ghl_token_url":       "ghl.token_url",
	"ghl_client_id":       "ghl.client_id",
	"ghl_client_secret":   "ghl.client_secret",
	"ghl_api_version":     "ghl.api_version",
	"ghl_request_timeout": "ghl.request_timeout",
	"ghl_page_size":       "sync.page_size",
	"ghl_max_records":     "sync.max_records",
	"ghl_page_delay":      "sync.page_delay",
	"ghl_sync_verbose":    "sync.verbose",
	"log_level":           "log.level",
	"log_format":          "log.format",
	"port":                "server.port",
}

// envTransform maps a known environment variable to its koanf path and drops
// everything else.
func envTransform(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

// Load builds the configuration. Precedence: environment > .env file > defaults.
// A missing .env file is not an error.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path.
func LoadFrom(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would break every operation. Credentials are
// checked lazily by RequireLegacyAPI and RequireOAuth.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be positive, got %d", c.Sync.PageSize)
	}
	if c.Sync.MaxRecords <= 0 {
		return fmt.Errorf("sync.max_records must be positive, got %d", c.Sync.MaxRecords)
	}
	if c.Sync.PageDelay < 0 {
		return fmt.Errorf("sync.page_delay must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// RequireLegacyAPI reports a configuration error when the v1 API key is missing.
func (c *Config) RequireLegacyAPI() error {
	if strings.TrimSpace(c.GHL.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// RequireOAuth reports a configuration error when OAuth client credentials are missing.
func (c *Config) RequireOAuth() error {
	if c.GHL.ClientID == "" || c.GHL.ClientSecret == "" {
		return ErrMissingOAuthClient
	}
	return nil
}
