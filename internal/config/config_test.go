package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "STORE_DRIVER", "JWT_TTL", "NOTIFY_WORKERS", "SERVER_PORT", "BROADCAST_POLICY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 2, cfg.NotifyWorkers)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "replace", cfg.BroadcastPolicy)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("NOTIFY_QUEUE_SIZE", "32")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BROADCAST_POLICY", "accumulate")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://ops.example.com, ,https://admin.example.com ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, 32, cfg.NotifyQueueSize)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "accumulate", cfg.BroadcastPolicy)
	assert.Equal(t, []string{"https://ops.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"STORE_DRIVER", "mongo"},
		"duration": {"JWT_TTL", "forever"},
		"negative": {"NOTIFY_TIMEOUT", "-1s"},
		"int":      {"NOTIFY_WORKERS", "zero"},
		"zero int": {"NOTIFY_QUEUE_SIZE", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.ErrorContains(t, err, kv[0])
		})
	}
}

func TestProductionNeedsSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cr3t")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
