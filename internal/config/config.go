package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Stock and payment backends.
const (
	StockBackendRedis        = "redis"
	StockBackendHTTP         = "http"
	PaymentBackendSimulated  = "simulated"
	PaymentBackendHTTP       = "http"
	defaultSimulatedLimitStr = "5000.00"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	StockBackend          string
	StockServiceURL       string
	StockKeyPrefix        string
	PaymentBackend        string
	PaymentServiceURL     string
	PaymentSimulatedLimit decimal.Decimal

	CheckoutLockTTL  time.Duration
	LockRetryBackoff time.Duration
	OutboundTimeout  time.Duration

	RetryBase          time.Duration
	RetryMaxAttempts   int
	RetryJitterPercent int

	CircuitMinRequests  int
	CircuitFailureRatio float64
	CircuitOpenFor      time.Duration

	RateLimitCheckoutMax    int
	RateLimitCheckoutWindow time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		StockBackend:      strings.ToLower(valueOrDefault(k.String("STOCK_BACKEND"), StockBackendRedis)),
		StockServiceURL:   strings.TrimRight(strings.TrimSpace(k.String("STOCK_SERVICE_URL")), "/"),
		StockKeyPrefix:    valueOrDefault(k.String("STOCK_KEY_PREFIX"), "toko:"),
		PaymentBackend:    strings.ToLower(valueOrDefault(k.String("PAYMENT_BACKEND"), PaymentBackendSimulated)),
		PaymentServiceURL: strings.TrimRight(strings.TrimSpace(k.String("PAYMENT_SERVICE_URL")), "/"),

		CheckoutLockTTL:  parseDuration(k.String("CHECKOUT_LOCK_TTL"), "30s"),
		LockRetryBackoff: parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		OutboundTimeout:  parseDuration(k.String("OUTBOUND_TIMEOUT"), "2s"),

		RetryBase:          parseDuration(k.String("RETRY_BASE"), "100ms"),
		RetryMaxAttempts:   parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent: parseInt(k.String("RETRY_JITTER_PERCENT"), 20),

		CircuitMinRequests:  parseInt(k.String("CIRCUIT_MIN_REQUESTS"), 10),
		CircuitFailureRatio: parseFloat(k.String("CIRCUIT_FAILURE_RATIO"), 0.5),
		CircuitOpenFor:      parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),

		RateLimitCheckoutMax:    parseInt(k.String("RATE_LIMIT_CHECKOUT_MAX"), 10),
		RateLimitCheckoutWindow: parseDuration(k.String("RATE_LIMIT_CHECKOUT_WINDOW"), "1m"),
	}

	limit, err := decimal.NewFromString(valueOrDefault(k.String("PAYMENT_SIMULATED_LIMIT"), defaultSimulatedLimitStr))
	if err != nil || limit.IsNegative() {
		return nil, errors.New("PAYMENT_SIMULATED_LIMIT must be a non-negative amount")
	}
	cfg.PaymentSimulatedLimit = limit

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	switch cfg.StockBackend {
	case StockBackendRedis:
	case StockBackendHTTP:
		if cfg.StockServiceURL == "" {
			return nil, errors.New("STOCK_SERVICE_URL is required when STOCK_BACKEND=http")
		}
	default:
		return nil, fmt.Errorf("unknown STOCK_BACKEND %q", cfg.StockBackend)
	}
	switch cfg.PaymentBackend {
	case PaymentBackendSimulated:
	case PaymentBackendHTTP:
		if cfg.PaymentServiceURL == "" {
			return nil, errors.New("PAYMENT_SERVICE_URL is required when PAYMENT_BACKEND=http")
		}
	default:
		return nil, fmt.Errorf("unknown PAYMENT_BACKEND %q", cfg.PaymentBackend)
	}
	if cfg.CircuitFailureRatio <= 0 || cfg.CircuitFailureRatio > 1 {
		return nil, errors.New("CIRCUIT_FAILURE_RATIO must be in (0, 1]")
	}

	return cfg, nil
}

// RetryJitter returns the retry jitter as a fraction.
func (c *Config) RetryJitter() float64 {
	return float64(c.RetryJitterPercent) / 100
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
