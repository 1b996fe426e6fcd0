package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL",
	"LNBITS_URL", "LNBITS_ADMIN_KEY", "LNBITS_ADMIN_USER_ID", "LNBITS_TIMEOUT",
	"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "JWT_ISSUER",
	"DIRECTORY_CACHE_TTL", "ZAP_RATE_LIMIT_PER_MINUTE",
	"ADMIN_IDENTITIES", "TREASURY_WALLET_ID", "DEV_TREASURY_SATS",
	idemTTLSecondsEnvVar, idemTTLDurEnvVar, shutdownSecondsEnvVar, shutdownDurationEnvVar,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":3978", cfg.Address())
	assert.Equal(t, defaultLNbitsTimeout, cfg.LNbitsTimeout)
	assert.Equal(t, defaultIdempotencyTTL, cfg.IdempotencyTTL)
	assert.Equal(t, defaultZapRateLimit, cfg.ZapRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LNBITS_URL", "https://lnbits.example.com/")
	t.Setenv("LNBITS_TIMEOUT", "5s")
	t.Setenv("DIRECTORY_CACHE_TTL", "2m")
	t.Setenv(idemTTLSecondsEnvVar, "60")
	t.Setenv(idemTTLDurEnvVar, "1h")
	t.Setenv("ZAP_RATE_LIMIT_PER_MINUTE", "3")
	t.Setenv("PORT", ":9000")
	t.Setenv("ADMIN_IDENTITIES", " aad-1, ,aad-2 ")
	t.Setenv("DEV_TREASURY_SATS", "5000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://lnbits.example.com", cfg.LNbitsURL)
	assert.Equal(t, 5*time.Second, cfg.LNbitsTimeout)
	assert.Equal(t, 2*time.Minute, cfg.DirectoryCacheTTL)
	assert.Equal(t, time.Minute, cfg.IdempotencyTTL, "seconds variable wins")
	assert.Equal(t, 3, cfg.ZapRateLimit)
	assert.Equal(t, ":9000", cfg.Address())
	assert.Equal(t, []string{"aad-1", "aad-2"}, cfg.AdminIdentities)
	assert.Equal(t, int64(5000), cfg.DevTreasurySats)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"LNBITS_TIMEOUT":            "soon",
		shutdownSecondsEnvVar:       "ten",
		"ZAP_RATE_LIMIT_PER_MINUTE": "many",
		"DEV_TREASURY_SATS":         "lots",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadRequiresBackendsOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LNBITS_URL", "https://lnbits.example.com")
	t.Setenv("LNBITS_ADMIN_KEY", "admin")
	t.Setenv("DATABASE_URL", "postgres://localhost/zaps")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
}
