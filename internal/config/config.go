package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName           = "Zaps"
	defaultAppEnv            = "development"
	defaultPort              = "3978"
	defaultLogLevel          = "info"
	defaultShutdownDelay     = 10 * time.Second
	defaultIdempotencyTTL    = 24 * time.Hour
	defaultLNbitsTimeout     = 30 * time.Second
	defaultDirectoryCacheTTL = time.Minute
	defaultZapRateLimit      = 10
	defaultDevTreasurySats   = 1_000_000
	idemTTLSecondsEnvVar     = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar         = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar    = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar   = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	LNbitsURL         string
	LNbitsAdminKey    string
	LNbitsAdminUserID string
	LNbitsTimeout     time.Duration

	DatabaseURL string
	RedisURL    string

	JWTSecret string
	JWTIssuer string

	// AdminIdentities may call the treasury top-up endpoint.
	AdminIdentities  []string
	TreasuryWalletID string
	DevTreasurySats  int64

	DirectoryCacheTTL time.Duration
	IdempotencyTTL    time.Duration
	ZapRateLimit      int
	ShutdownPeriod    time.Duration
}

// Load reads a .env file when present, then populates a Config from the
// environment. Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LNbitsURL:         strings.TrimRight(os.Getenv("LNBITS_URL"), "/"),
		LNbitsAdminKey:    os.Getenv("LNBITS_ADMIN_KEY"),
		LNbitsAdminUserID: os.Getenv("LNBITS_ADMIN_USER_ID"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTIssuer:         os.Getenv("JWT_ISSUER"),
		AdminIdentities:   splitList(os.Getenv("ADMIN_IDENTITIES")),
		TreasuryWalletID:  os.Getenv("TREASURY_WALLET_ID"),
		DevTreasurySats:   defaultDevTreasurySats,
		ZapRateLimit:      defaultZapRateLimit,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.LNbitsTimeout, err = durationEnv("", "LNBITS_TIMEOUT", defaultLNbitsTimeout); err != nil {
		return Config{}, err
	}
	if cfg.DirectoryCacheTTL, err = durationEnv("", "DIRECTORY_CACHE_TTL", defaultDirectoryCacheTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("ZAP_RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ZAP_RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.ZapRateLimit = n
	}

	if v := os.Getenv("DEV_TREASURY_SATS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEV_TREASURY_SATS: %w", err)
		}
		cfg.DevTreasurySats = n
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate enforces that every backing service is configured outside
// development. Development may fall back to in-memory implementations.
func (c Config) validate() error {
	if c.IsDevelopment() {
		return nil
	}
	required := []struct{ key, value string }{
		{"LNBITS_URL", c.LNbitsURL},
		{"LNBITS_ADMIN_KEY", c.LNbitsAdminKey},
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"JWT_SECRET", c.JWTSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must be set when APP_ENV=%s", r.key, c.AppEnv)
		}
	}
	return nil
}

// IsDevelopment reports whether the app runs in a local environment.
func (c Config) IsDevelopment() bool {
	switch c.AppEnv {
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

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads either an integer seconds variable or a Go duration
// variable, seconds taking precedence. secondsKey may be empty.
func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if secondsKey != "" {
		if v := os.Getenv(secondsKey); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
			}
			return time.Duration(seconds) * time.Second, nil
		}
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}
