package config

import (
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/onetool/internal/database"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "ONETOOL"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL          string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns     int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabasePingAttempts int    `envconfig:"DATABASE_PING_ATTEMPTS" default:"5"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"onetool-catalog"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// RustFS and MinIO need path-style addressing; AWS works either way.
	S3PathStyle bool `envconfig:"S3_PATH_STYLE" default:"true"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	PreferenceQuotaBytes int64         `envconfig:"PREFERENCE_QUOTA_BYTES" default:"5242880"`
	CatalogCacheTTL      time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`

	RateLimitRPS   float64  `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int      `envconfig:"RATE_LIMIT_BURST" default:"20"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	MaxBodyBytes   int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	SnapshotInterval   time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"10m"`
	SearchLogRetention time.Duration `envconfig:"SEARCH_LOG_RETENTION" default:"720h"`
	PruneInterval      time.Duration `envconfig:"PRUNE_INTERVAL" default:"1h"`

	// Bootstrap: create initial account and API key on startup
	InitAccountName string `envconfig:"INIT_ACCOUNT_NAME"`
	InitAPIKey      string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects settings that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.PreferenceQuotaBytes <= 0 {
		return fmt.Errorf("%s_PREFERENCE_QUOTA_BYTES must be positive", envPrefix)
	}
	if c.DatabaseMaxConns < 0 {
		return fmt.Errorf("%s_DATABASE_MAX_CONNS must not be negative", envPrefix)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("%s_RATE_LIMIT_RPS must not be negative", envPrefix)
	}
	if c.SnapshotInterval < 0 || c.PruneInterval < 0 {
		return fmt.Errorf("job intervals must not be negative")
	}
	return nil
}

// Database returns the pool settings for NewPool.
func (c *Config) Database() database.Config {
	return database.Config{
		URL:          c.DatabaseURL,
		MaxConns:     c.DatabaseMaxConns,
		PingAttempts: c.DatabasePingAttempts,
	}
}

// S3 returns the object storage settings for storage.NewS3Client.
func (c *Config) S3() storage.S3ClientConfig {
	return storage.S3ClientConfig{
		Endpoint:        c.S3Endpoint,
		Region:          c.S3Region,
		AccessKeyID:     c.S3AccessKey,
		SecretAccessKey: c.S3SecretKey,
		Bucket:          c.S3Bucket,
		UsePathStyle:    c.S3PathStyle,
	}
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
