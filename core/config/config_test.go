package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, DefaultCatalogBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, DefaultSearchLimit, cfg.Catalog.SearchLimit)
	assert.Equal(t, "exhigh", cfg.Catalog.DefaultQuality)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, DefaultSessionTTLSeconds, cfg.Session.TTLSeconds)
}

func TestNormalizeRequiresToken(t *testing.T) {
	assert.Error(t, Normalize(&Config{}))
}

func TestNormalizeTrimsCatalogURL(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.BaseURL = " http://music.local:5100/ "
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "http://music.local:5100", cfg.Catalog.BaseURL)
}

func TestNormalizeRedisBackendNeedsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Backend = "redis"
	assert.Error(t, Normalize(cfg))

	cfg.Session.RedisAddr = "localhost:6379"
	assert.NoError(t, Normalize(cfg))
}

func TestNormalizeWebhookModeValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	assert.Error(t, Normalize(cfg))

	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	assert.NoError(t, Normalize(cfg))
}

func TestNormalizeDatabaseDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = "db"
	assert.Error(t, Normalize(cfg), "name is required once a host is set")

	cfg.Database.Name = "tunebot"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 4, cfg.Database.MaxConnections)
}
