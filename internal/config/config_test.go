package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("GIN_MODE", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TODO_TIMEOUT", "")
	t.Setenv("DB_HOST", "db")
	for _, key := range []string{"DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"} {
		t.Setenv(key, "")
	}
	t.Setenv("TODO_BASE_URL", "http://todo.local/api/")
	t.Setenv("OVERDUE_CHECK_INTERVAL", "1h")

	cfg, err := Load([]string{"--env-file", "does-not-exist.env"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://postgres:postgres@db:5432/postgres?sslmode=disable", cfg.DatabaseDSN)
	assert.Equal(t, "http://todo.local/api", cfg.TodoBaseURL)
	assert.Equal(t, time.Hour, cfg.OverdueCheckInterval)
	assert.Equal(t, 5*time.Second, cfg.TodoTimeout)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ACTION_CONFIG_FILE", "env.yaml")

	cfg, err := Load([]string{"--env-file", "does-not-exist.env", "--port", "9100", "--action-config", "flag.yaml"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "flag.yaml", cfg.ActionConfigFile)
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load([]string{"--env-file", "does-not-exist.env"})
	assert.Error(t, err)
}
