package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set, wins over the discrete fields.
type DatabaseConfig struct {
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for media uploads.
// An empty Endpoint disables the media endpoints instead of failing startup.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage has been configured at all.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// MercadoPagoConfig holds payment gateway credentials and callback URLs.
// The *URL fields are derived from AppBaseURL + the corresponding path unless
// overridden explicitly through the environment.
type MercadoPagoConfig struct {
	Env           string // test | production
	AccessToken   string
	PublicKey     string
	WebhookSecret string

	WebhookPath string
	SuccessPath string
	FailurePath string
	PendingPath string

	WebhookURL string
	SuccessURL string
	FailureURL string
	PendingURL string
}

// Configured reports whether the gateway can be used at all.
func (c MercadoPagoConfig) Configured() bool {
	return c.AccessToken != ""
}

// GuardianConfig tunes the background link guardian.
type GuardianConfig struct {
	Interval       time.Duration
	RequestTimeout time.Duration
}

// RateLimitConfig tunes the per-client limiter on login and checkout.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env        string // dev | prod
	Port       string
	AppBaseURL string
	Timezone   string

	// ForwardedAllowIPs mirrors the proxy trust setting of the deployment:
	// "*" trusts X-Forwarded-For from any forwarder, otherwise a
	// comma-separated list of proxy addresses to trust.
	ForwardedAllowIPs string

	Database    DatabaseConfig
	MinIO       MinIOConfig
	MercadoPago MercadoPagoConfig
	Guardian    GuardianConfig
	RateLimit   RateLimitConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	cfg := &AppConfig{
		Env:               getEnv("ENV", "dev"),
		Port:              getEnv("PORT", "8000"),
		AppBaseURL:        getEnv("APP_BASE_URL", "http://localhost"),
		Timezone:          getEnv("APP_TIMEZONE", "UTC"),
		ForwardedAllowIPs: getEnv("FORWARDED_ALLOW_IPS", "*"),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "blacklink-media"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		MercadoPago: MercadoPagoConfig{
			Env:           getEnv("MP_ENV", "test"),
			AccessToken:   getEnv("MP_ACCESS_TOKEN", ""),
			PublicKey:     getEnv("MP_PUBLIC_KEY", ""),
			WebhookSecret: getEnv("MP_WEBHOOK_SECRET", ""),
			WebhookPath:   getEnv("MP_WEBHOOK_PATH", "/webhook/mercadopago"),
			SuccessPath:   getEnv("MP_SUCCESS_PATH", "/payment/success"),
			FailurePath:   getEnv("MP_FAILURE_PATH", "/payment/failure"),
			PendingPath:   getEnv("MP_PENDING_PATH", "/payment/pending"),
			WebhookURL:    getEnv("MP_WEBHOOK_URL", ""),
			SuccessURL:    getEnv("MP_SUCCESS_URL", ""),
			FailureURL:    getEnv("MP_FAILURE_URL", ""),
			PendingURL:    getEnv("MP_PENDING_URL", ""),
		},
		Guardian: GuardianConfig{
			Interval:       time.Duration(getEnvInt("GUARDIAN_INTERVAL_SEC", 1800)) * time.Second,
			RequestTimeout: time.Duration(getEnvInt("GUARDIAN_REQUEST_TIMEOUT_SEC", 5)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}

	mp := &cfg.MercadoPago
	if mp.WebhookURL == "" {
		mp.WebhookURL = joinURL(cfg.AppBaseURL, mp.WebhookPath)
	}
	if mp.SuccessURL == "" {
		mp.SuccessURL = joinURL(cfg.AppBaseURL, mp.SuccessPath)
	}
	if mp.FailureURL == "" {
		mp.FailureURL = joinURL(cfg.AppBaseURL, mp.FailurePath)
	}
	if mp.PendingURL == "" {
		mp.PendingURL = joinURL(cfg.AppBaseURL, mp.PendingPath)
	}

	return cfg
}

// Validate enforces the settings that must not be missing in production.
// A prod deployment without live payment credentials aborts startup.
func (c *AppConfig) Validate() error {
	if c.Env != "prod" {
		return nil
	}
	if c.MercadoPago.AccessToken == "" {
		return fmt.Errorf("MP_ACCESS_TOKEN is required when ENV=prod")
	}
	if c.MercadoPago.Env != "production" {
		return fmt.Errorf("MP_ENV must be 'production' when ENV=prod, got %q", c.MercadoPago.Env)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC on error.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TrustAllProxies reports whether forwarded headers are trusted from any
// source address.
func (c *AppConfig) TrustAllProxies() bool {
	return strings.TrimSpace(c.ForwardedAllowIPs) == "*"
}

// TrustedProxies returns the explicit proxy allow-list when not trusting all.
func (c *AppConfig) TrustedProxies() []string {
	if c.TrustAllProxies() {
		return nil
	}
	parts := strings.Split(c.ForwardedAllowIPs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// joinURL glues a base URL and a path together, defaulting the scheme to
// http and collapsing duplicate slashes between the two parts.
func joinURL(base, path string) string {
	base = strings.TrimSpace(base)
	path = strings.TrimSpace(path)

	if base == "" {
		base = "http://localhost"
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
