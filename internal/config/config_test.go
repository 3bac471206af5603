package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "alloptic-spectra", cfg.AWS.S3Bucket)
	assert.False(t, cfg.Color.Enabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ILLUMINANT_FILE", "/data/D65_illuminant_1nm.dat")
	t.Setenv("CMF_FILE", "/data/cmf_1nm.dat")
	t.Setenv("HISTORY_DB", "/tmp/history.db")
	t.Setenv("S3_ENDPOINT", "localhost:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Color.Enabled())
	assert.Equal(t, "/data/cmf_1nm.dat", cfg.Color.CMFFile)
	assert.Equal(t, "/tmp/history.db", cfg.History.Path)
	assert.Equal(t, "localhost:9000", cfg.AWS.S3Endpoint)
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogging("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogging("WARN")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetupLogging("loud")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
