package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("request-service")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.Equal(t, "watheeq_requests", cfg.Database.Database)
	assert.Contains(t, cfg.Database.DSN(), "dbname=watheeq_requests")
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")

	assert.Equal(t, 5.0, cfg.Verification.MaxDistanceKM)
	assert.Equal(t, 1, cfg.Verification.DateToleranceDays)
	assert.Equal(t, 2, cfg.Verification.TimeToleranceHours)
	assert.Len(t, cfg.Verification.Cities, 10)
	assert.Contains(t, cfg.Verification.Cities, "الرياض")

	assert.Equal(t, "https://us1.locationiq.com/v1", cfg.Geocoding.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Geocoding.Timeout)

	assert.Equal(t, 24*time.Hour, cfg.JWT.DownloadExpiry)
	assert.Equal(t, "watheeq", cfg.JWT.Issuer)

	assert.Equal(t, "./data/reports", cfg.Storage.ReportsDir)
	assert.Equal(t, "./data/videos", cfg.Storage.VideosDir)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WATHEEQ_SERVER_PORT", "9001")
	t.Setenv("WATHEEQ_VERIFICATION_MAX_DISTANCE_KM", "7.5")

	cfg, err := Load("request-service")
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 7.5, cfg.Verification.MaxDistanceKM)
}
