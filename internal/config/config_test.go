package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, DriverREST, cfg.Backend.Driver)
	assert.Equal(t, DefaultBaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Provisioning.InitialInterval)
	assert.Equal(t, uint64(6), cfg.Provisioning.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Provisioning.MaxElapsed)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Contains(t, cfg.DB.URL, "sslmode=disable")

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "BACKEND_BASE_URL")
	assert.Contains(t, warnings[1], "JWT_SECRET")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "MOCK")
	t.Setenv("BACKEND_PROVISION_DELAY", "750ms")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_SSL_MODE", "require")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PROVISIONING_MAX_ATTEMPTS", "3")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, DriverMock, cfg.Backend.Driver)
	assert.Equal(t, 750*time.Millisecond, cfg.Backend.ProvisionDelay)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "require", cfg.DB.SSLMode)
	assert.Equal(t, uint64(3), cfg.Provisioning.MaxAttempts)
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BACKEND_BASE_URL=http://api.test/api/\nJWT_SECRET=x\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("BACKEND_BASE_URL")
		_ = os.Unsetenv("JWT_SECRET")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.test/api", cfg.Backend.BaseURL)
}

func TestLoad_BaaSEnablesDatabase(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "baas")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("JWT_SECRET", "x")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.True(t, cfg.DB.Enabled)
	assert.Len(t, cfg.Warnings(), 1)
}

func TestLoad_BaaSWithoutRedisWarns(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "baas")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("JWT_SECRET", "x")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	require.Len(t, cfg.Warnings(), 1)
	assert.Contains(t, cfg.Warnings()[0], "REDIS_ENABLED")
	assert.Equal(t, 720*time.Hour, cfg.Storage.MaxAge)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "graphql")

	_, err := Load(missingEnvFile(t))
	assert.Error(t, err)
}
