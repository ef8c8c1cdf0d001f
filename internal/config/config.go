// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tarunkumar2005/fomi/internal/cache"
)

type DatabaseConfig struct {
	Driver    string `yaml:"driver"`
	Filename  string `yaml:"filename"`
	URL       string `yaml:"url,omitempty"`
	AuthToken string `yaml:"-"` // Loaded from environment
}

type AuthConfig struct {
	ClerkSecretKey string `yaml:"-"` // Loaded from environment
	// AllowDevHeaders trusts X-Fomi-User / X-Fomi-Workspace. Never enable in production.
	AllowDevHeaders bool `yaml:"allow_dev_headers"`
}

type ThemingConfig struct {
	AutosaveDelayMS    int    `yaml:"autosave_delay_ms"`
	SaveTimeoutSeconds int    `yaml:"save_timeout_seconds"`
	MaxThemesPerOwner  int    `yaml:"max_themes_per_owner"`
	SessionIdleMinutes int    `yaml:"session_idle_minutes"`
	SweepCron          string `yaml:"sweep_cron"`
	SeedOnStart        bool   `yaml:"seed_on_start"`
}

func (t ThemingConfig) AutosaveDelay() time.Duration {
	return time.Duration(t.AutosaveDelayMS) * time.Millisecond
}

func (t ThemingConfig) SaveTimeout() time.Duration {
	return time.Duration(t.SaveTimeoutSeconds) * time.Second
}

func (t ThemingConfig) SessionIdle() time.Duration {
	return time.Duration(t.SessionIdleMinutes) * time.Minute
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // Empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	WindowSeconds int  `yaml:"window_seconds"`
	MaxPerUser    int  `yaml:"max_per_user"`
	MaxPerIP      int  `yaml:"max_per_ip"`
	TrustProxy    bool `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name                   string `yaml:"name"`
		Environment            string `yaml:"environment"`
		Port                   int    `yaml:"port"`
		BaseURL                string `yaml:"base_url"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
		SecretKey              string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`

	Auth      AuthConfig      `yaml:"auth"`
	Theming   ThemingConfig   `yaml:"theming"`
	Cache     cache.Config    `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Database.AuthToken = os.Getenv("DATABASE_AUTH_TOKEN")
	cfg.Auth.ClerkSecretKey = os.Getenv("CLERK_SECRET_KEY")
	cfg.Cache.Password = os.Getenv("REDIS_PASSWORD")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults. It does not read the environment or validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Default returns the settings used for anything the YAML file leaves out.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "fomi"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.ShutdownTimeoutSeconds = 30
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = "data/fomi.db"
	cfg.Theming = ThemingConfig{
		AutosaveDelayMS:    800,
		SaveTimeoutSeconds: 10,
		MaxThemesPerOwner:  1000,
		SessionIdleMinutes: 30,
		SweepCron:          "*/5 * * * *",
		SeedOnStart:        true,
	}
	cfg.Cache = cache.DefaultConfig()
	cfg.Logging = LoggingConfig{
		Level:      "info",
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled:       true,
		WindowSeconds: 60,
		MaxPerUser:    120,
		MaxPerIP:      600,
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	// Validate based on database driver
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "turso":
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required for turso")
		}
		if c.Database.AuthToken == "" {
			return fmt.Errorf("database auth token is required for turso")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Auth.AllowDevHeaders && !c.IsDevelopment() {
		return fmt.Errorf("auth.allow_dev_headers is only allowed in development")
	}
	if c.Auth.ClerkSecretKey == "" && !c.Auth.AllowDevHeaders {
		return fmt.Errorf("CLERK_SECRET_KEY is required unless auth.allow_dev_headers is set")
	}

	if c.Theming.AutosaveDelayMS <= 0 {
		return fmt.Errorf("theming autosave_delay_ms must be greater than 0")
	}
	if c.Theming.SaveTimeoutSeconds <= 0 {
		return fmt.Errorf("theming save_timeout_seconds must be greater than 0")
	}
	if c.Theming.MaxThemesPerOwner <= 0 {
		return fmt.Errorf("theming max_themes_per_owner must be greater than 0")
	}
	if c.Theming.SessionIdleMinutes <= 0 {
		return fmt.Errorf("theming session_idle_minutes must be greater than 0")
	}
	if len(strings.Fields(c.Theming.SweepCron)) != 5 {
		return fmt.Errorf("theming sweep_cron must have five fields")
	}

	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.URL == "" && c.Cache.Address == "" {
			return fmt.Errorf("cache address or url is required for redis")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}

	if c.RateLimit.Enabled && (c.RateLimit.WindowSeconds <= 0 || c.RateLimit.MaxPerUser <= 0 || c.RateLimit.MaxPerIP <= 0) {
		return fmt.Errorf("ratelimit window_seconds, max_per_user and max_per_ip must be greater than 0")
	}

	return nil
}
