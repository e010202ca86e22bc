package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, 100000, cfg.Room.MinCode)
	assert.Equal(t, 999999, cfg.Room.MaxCode)
	assert.Equal(t, 10, cfg.Room.MaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.Room.GracePeriod)
	assert.False(t, cfg.Room.LazyCreate)
	assert.Equal(t, StorageNone, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Storage.DeleteTimeout)
	assert.Equal(t, "kick", cfg.Backpressure)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("DROP_PORT", "8080")
	t.Setenv("DROP_ROOM_GRACE_PERIOD", "5s")
	t.Setenv("DROP_ROOM_LAZY_CREATE", "true")
	t.Setenv("DROP_STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Room.GracePeriod)
	assert.True(t, cfg.Room.LazyCreate)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("DROP_STORAGE_DRIVER", "floppy")

	_, err := Load()
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Port:    3001,
		Room:    RoomConfig{MinCode: 100000, MaxCode: 999999, MaxAttempts: 10},
		Storage: StorageConfig{Driver: StorageNone},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"empty range", func(c *Config) { c.Room.MinCode, c.Room.MaxCode = 10, 5 }},
		{"zero attempts", func(c *Config) { c.Room.MaxAttempts = 0 }},
		{"negative grace", func(c *Config) { c.Room.GracePeriod = -time.Second }},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = StorageS3; c.Storage.Endpoint = "r2.example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
