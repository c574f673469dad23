package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("CHAT_CONTEXT_WINDOW_SIZE", "")
	t.Setenv("AI_TEMPERATURE", "")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Contains(t, cfg.DBDSN, "@tcp(127.0.0.1:3306)/beely")
	assert.Equal(t, 10, cfg.ChatContextWindowSize)
	assert.Equal(t, 300, cfg.AIMaxTokens)
	assert.InDelta(t, 0.7, cfg.AITemperature, 1e-9)
	assert.Equal(t, 50, cfg.FeedVideoLimit)
}

func TestLoad_SQLiteDefaultDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "")

	cfg := Load()
	assert.Equal(t, "beely.db", cfg.DBDSN)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("AI_TEMPERATURE", "warm")
	t.Setenv("WORKER_CONCURRENCY", "500")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.InDelta(t, 0.7, cfg.AITemperature, 1e-9)
	assert.Equal(t, 50, cfg.WorkerConcurrency)
}

func TestLoad_SMTPFromFallsBackToUser(t *testing.T) {
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_USER", "bot@beely.app")

	cfg := Load()
	assert.Equal(t, "bot@beely.app", cfg.SMTPFrom)
}
