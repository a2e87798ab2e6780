package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port          int    `envconfig:"PORT" default:"10000"`
	Environment   string `envconfig:"ENV" default:"development"`
	MaxImageBytes int    `envconfig:"MAX_IMAGE_BYTES" default:"10485760"`

	// Security
	APIKey       string `envconfig:"API_KEY"`
	RateLimitMax int    `envconfig:"RATE_LIMIT_MAX" default:"60"`
	// AnalyzeRateLimitMax caps image analyses separately; zero shares RATE_LIMIT_MAX
	AnalyzeRateLimitMax int `envconfig:"ANALYZE_RATE_LIMIT_MAX" default:"20"`

	// Provider
	ProviderType     string        `envconfig:"PROVIDER_TYPE" default:"deepface"`
	ProviderTimeout  time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"30s"`
	DeepFaceURL      string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceDetector string        `envconfig:"DEEPFACE_DETECTOR" default:"opencv"`
	AWSRegion        string        `envconfig:"AWS_REGION" default:"us-east-1"`
	ONNXBundleDir    string        `envconfig:"ONNX_BUNDLE_DIR" default:"./models/fer"`

	// Database (optional, enables analysis history)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// HistoryRetention prunes older analyses; zero keeps everything
	HistoryRetention time.Duration `envconfig:"HISTORY_RETENTION" default:"0"`

	// Webhook (optional)
	WebhookURL     string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string        `envconfig:"WEBHOOK_SECRET"`
	WebhookEvents  []string      `envconfig:"WEBHOOK_EVENTS" default:"analysis.completed"`
	WebhookTimeout time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"10s"`

	// Cache
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges envconfig cannot express
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("invalid MAX_IMAGE_BYTES: %d", c.MaxImageBytes)
	}
	if c.RateLimitMax < 0 {
		return fmt.Errorf("invalid RATE_LIMIT_MAX: %d", c.RateLimitMax)
	}
	if c.AnalyzeRateLimitMax < 0 {
		return fmt.Errorf("invalid ANALYZE_RATE_LIMIT_MAX: %d", c.AnalyzeRateLimitMax)
	}
	if c.HistoryRetention < 0 {
		return fmt.Errorf("invalid HISTORY_RETENTION: %s", c.HistoryRetention)
	}
	if c.WebhookURL != "" && c.WebhookSecret == "" {
		return errors.New("WEBHOOK_SECRET is required when WEBHOOK_URL is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuthEnabled reports whether requests must carry the configured API key
func (c *Config) AuthEnabled() bool {
	return c.APIKey != ""
}

// HistoryEnabled reports whether analyses are persisted
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// WebhookEnabled reports whether analysis events are delivered to WebhookURL
func (c *Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}
