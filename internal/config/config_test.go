package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.Equal(t, 256, cfg.Cache.StructureEntries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, m.Validate())
}

func TestNewManagerEnvironmentOverrides(t *testing.T) {
	t.Setenv("PSYCH_SERVER_PORT", "9090")
	t.Setenv("PSYCH_LOGGING_LEVEL", "debug")
	t.Setenv("PSYCH_RATE_LIMIT_ENABLED", "false")

	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	m.GetConfig().Server.Port = 0
	assert.ErrorContains(t, m.Validate(), "invalid server port")

	require.NoError(t, m.Reload())
	m.GetConfig().Logging.Level = "verbose"
	assert.ErrorContains(t, m.Validate(), "invalid log level")

	require.NoError(t, m.Reload())
	m.GetConfig().Logging.Format = "xml"
	assert.ErrorContains(t, m.Validate(), "invalid log format")

	require.NoError(t, m.Reload())
	m.GetConfig().Cache.StructureEntries = 0
	assert.ErrorContains(t, m.Validate(), "structure cache")
}

func TestGetServerConfig(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	server := m.GetServerConfig()
	require.NotNil(t, server)
	assert.Equal(t, m.GetConfig().Server, *server)
}
