package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DEFAULT_BALANCE", "2500")
	t.Setenv("FEED_MAX", "10")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg := Load()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, int64(2500), cfg.DefaultBalance)
	assert.Equal(t, 10, cfg.FeedMax)
	assert.Equal(t, "123:abc", cfg.BotToken)
}

func TestLoadInvalidNumberFallsBack(t *testing.T) {
	t.Setenv("DEFAULT_BALANCE", "not-a-number")

	cfg := Load()
	assert.Equal(t, int64(1000), cfg.DefaultBalance)
}
