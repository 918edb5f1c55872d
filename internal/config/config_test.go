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

	assert.Equal(t, BackendSQLite, cfg.Database.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Engine.SnipingWindow)
	assert.Equal(t, 10*time.Minute, cfg.Engine.ExtensionDuration)
	assert.Equal(t, 2*time.Second, cfg.Engine.LockTimeout)
	assert.Equal(t, 3, cfg.Engine.MaxCommitAttempts)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.TickInterval)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Nats.URL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://auctions@localhost/auctions?sslmode=disable")
	t.Setenv("ENGINE_LOCK_TIMEOUT", "750ms")
	t.Setenv("SCHEDULER_TICK_INTERVAL", "1m")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Database.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.LockTimeout)
	assert.Equal(t, time.Minute, cfg.Scheduler.TickInterval)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadErrors(t *testing.T) {
	t.Run("Bad duration", func(t *testing.T) {
		t.Setenv("ENGINE_SNIPING_WINDOW", "ten minutes")
		_, err := Load()
		assert.ErrorContains(t, err, "ENGINE_SNIPING_WINDOW")
	})

	t.Run("Postgres without url", func(t *testing.T) {
		t.Setenv("DB_BACKEND", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("Unknown backend", func(t *testing.T) {
		t.Setenv("DB_BACKEND", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})
}
