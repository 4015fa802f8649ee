package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName       = "OffgridPay"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultTokenTTL      = 24 * time.Hour
	defaultOTPTTL        = 10 * time.Minute
	defaultRateLimitMax  = 10
	defaultRateWindow    = 15 * time.Minute
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration

	SMSAccountSID string
	SMSAuthToken  string
	SMSFromNumber string
	// SMSCipherKey is the shared AES-256 key for the SMS envelope, hex encoded
	// in the environment. Empty disables envelope encryption.
	SMSCipherKey []byte

	GatewayKeyID     string
	GatewayKeySecret string

	CORSOrigin string

	RateLimitMax int
	RateWindow   time.Duration

	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         defaultTokenTTL,
		OTPTTL:           defaultOTPTTL,
		SMSAccountSID:    os.Getenv("SMS_ACCOUNT_SID"),
		SMSAuthToken:     os.Getenv("SMS_AUTH_TOKEN"),
		SMSFromNumber:    os.Getenv("SMS_FROM_NUMBER"),
		GatewayKeyID:     os.Getenv("GATEWAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("GATEWAY_KEY_SECRET"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
		RateLimitMax:     defaultRateLimitMax,
		RateWindow:       defaultRateWindow,
		ShutdownPeriod:   defaultShutdownDelay,
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = durationEnv("OTP_TTL", cfg.OTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.RateWindow, err = durationEnv("SMS_RATE_WINDOW", cfg.RateWindow); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SMS_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid SMS_RATE_LIMIT: %q", v)
		}
		cfg.RateLimitMax = n
	}

	if v := os.Getenv("SMS_CIPHER_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SMS_CIPHER_KEY: %w", err)
		}
		if len(key) != 32 {
			return Config{}, fmt.Errorf("SMS_CIPHER_KEY must be 32 bytes, got %d", len(key))
		}
		cfg.SMSCipherKey = key
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development-like environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
