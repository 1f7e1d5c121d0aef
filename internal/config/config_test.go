package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DEFAULT_RENT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.DefaultRent.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEFAULT_RENT", "7500.50")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("RESET_DB", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "7500.5", cfg.DefaultRent.String())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.ResetDB)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("DEFAULT_RENT", "-5")
	t.Setenv("REFRESH_TOKEN_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.True(t, cfg.DefaultRent.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenTTL)
}
