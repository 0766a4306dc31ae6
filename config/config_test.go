package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := load(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "http://localhost:8081/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2, cfg.Backend.RetryCount)
	assert.False(t, cfg.Backend.IdempotencyKeys)
	assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, 900*time.Millisecond, cfg.Wizard.NavigationDelay)
	assert.Equal(t, "reports", cfg.Print.Dir)
	assert.False(t, cfg.DB.Enabled())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9000\nBACKEND_BASE_URL=http://clinic:8081/api/v1\nWIZARD_NAVIGATION_DELAY=0s\nDB_HOST=db\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv("BACKEND_IDEMPOTENCY_KEYS", "true")
	t.Setenv("WIZARD_SESSION_TTL", "not-a-duration")

	cfg, err := load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "http://clinic:8081/api/v1", cfg.Backend.BaseURL)
	assert.True(t, cfg.Backend.IdempotencyKeys)
	assert.Equal(t, time.Duration(0), cfg.Wizard.NavigationDelay)
	assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, cfg.Wizard.SessionTTL, cfg.JWT.SessionExpiry)
	assert.True(t, cfg.DB.Enabled())
}
