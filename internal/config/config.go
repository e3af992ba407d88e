// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/security"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the REST API listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address the gRPC session service listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTAccessSecret signs access tokens. Inline value or "file:<path>".
	JWTAccessSecret string `mapstructure:"JWT_ACCESS_SECRET"`
	// JWTRefreshSecret signs refresh tokens. Must differ from JWTAccessSecret.
	JWTRefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`
	// JWTAccessTTL is the access token lifetime, e.g. "15m".
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime, e.g. "7d".
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31).
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment: development, production or test.
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// CORSOrigins is a comma-separated list of allowed browser origins.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty trusts none.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// RedisURL enables auth rate limiting when set (e.g. redis://localhost:6379/0).
	RedisURL string `mapstructure:"REDIS_URL"`
	// AuthRateLimit is the number of auth requests allowed per client IP per AuthRateWindow.
	AuthRateLimit int `mapstructure:"AUTH_RATE_LIMIT"`
	// AuthRateWindow is the refill window for AuthRateLimit.
	AuthRateWindow time.Duration `mapstructure:"AUTH_RATE_WINDOW"`

	// KafkaBrokers is a comma-separated broker list. Empty disables Kafka publishing.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// NotificationTopic is the Kafka topic for notification events.
	NotificationTopic string `mapstructure:"NOTIFICATION_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group of the notification worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the worker pushes notifications. Empty logs them instead.
	LokiURL string `mapstructure:"LOKI_URL"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint. Empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure disables TLS to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// UploadDir receives gzip-compressed uploads.
	UploadDir string `mapstructure:"UPLOAD_DIR"`
	// UploadMaxBytes caps the uncompressed size of one upload.
	UploadMaxBytes int64 `mapstructure:"UPLOAD_MAX_BYTES"`

	// PolicyFile optionally replaces the built-in Rego role policy.
	PolicyFile string `mapstructure:"POLICY_FILE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env. Returns an error if signing secrets are
// short or equal, or if any other field is invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ACCESS_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "7d")
	v.SetDefault("BCRYPT_COST", security.DefaultBcryptCost)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5000,http://127.0.0.1:5500")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("AUTH_RATE_WINDOW", "15m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("NOTIFICATION_KAFKA_TOPIC", "promanage-notifications")
	v.SetDefault("KAFKA_GROUP_ID", "promanage-notification-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", int64(1<<30))
	v.SetDefault("POLICY_FILE", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" || cfg.GRPCAddr == "" {
		return nil, errors.New("config: HTTP_ADDR and GRPC_ADDR must be set")
	}
	switch cfg.Env {
	case "development", "production", "test":
	default:
		return nil, errors.New("config: APP_ENV must be development, production or test")
	}

	var err error
	if cfg.JWTAccessSecret, err = security.LoadSecret(cfg.JWTAccessSecret); err != nil {
		return nil, errors.New("config: JWT_ACCESS_SECRET could not be read: " + err.Error())
	}
	if cfg.JWTRefreshSecret, err = security.LoadSecret(cfg.JWTRefreshSecret); err != nil {
		return nil, errors.New("config: JWT_REFRESH_SECRET could not be read: " + err.Error())
	}
	if len(cfg.JWTAccessSecret) < security.MinSecretLength {
		return nil, errors.New("config: JWT_ACCESS_SECRET must be at least 10 characters")
	}
	if len(cfg.JWTRefreshSecret) < security.MinSecretLength {
		return nil, errors.New("config: JWT_REFRESH_SECRET must be at least 10 characters")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = security.DefaultBcryptCost
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateWindow <= 0 {
		return nil, errors.New("config: AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive")
	}
	if _, err := cfg.TrustedProxyList(); err != nil {
		return nil, errors.New("config: TRUSTED_PROXIES: " + err.Error())
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, errors.New("config: UPLOAD_MAX_BYTES must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL. ok is false when the value was unparseable
// and the 900s fallback applies; callers log a warning rather than fail.
func (c *Config) AccessTTL() (ttl time.Duration, ok bool) {
	return security.ParseDuration(c.JWTAccessTTL)
}

// RefreshTTL parses JWTRefreshTTL with the same fallback as AccessTTL.
func (c *Config) RefreshTTL() (ttl time.Duration, ok bool) {
	return security.ParseDuration(c.JWTRefreshTTL)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables publishing.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

// CORSOriginsList returns the allowed browser origins.
func (c *Config) CORSOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSOrigins)
}

// TrustedProxyList parses TrustedProxies.
func (c *Config) TrustedProxyList() (httpx.TrustedProxies, error) {
	if c == nil {
		return nil, nil
	}
	return httpx.ParseTrustedProxies(splitList(c.TrustedProxies))
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
