package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "peer-session-service", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 10, cfg.Relay.JoinTimeoutSeconds)
	assert.Equal(t, 32, cfg.Relay.RoomBuffer)
	assert.Equal(t, 100, cfg.Reward.DefaultAmount)
	assert.Equal(t, 3, cfg.Reward.RequesterDivisor)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RELAY_JOIN_TIMEOUT_SECONDS", "5")
	t.Setenv("REWARD_DEFAULT_AMOUNT", "200")
	t.Setenv("REWARD_REQUESTER_DIVISOR", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5, cfg.Relay.JoinTimeoutSeconds)
	assert.Equal(t, 200, cfg.Reward.DefaultAmount)
	assert.Equal(t, 4, cfg.Reward.RequesterDivisor)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestDerivedDurations(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, cfg.App.Host+":"+cfg.App.Port, cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.Relay.JoinTimeout())
}

func TestInvalidNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("RELAY_ROOM_BUFFER", "banana")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Relay.RoomBuffer)
}
