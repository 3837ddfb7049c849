package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PUBLIC_URL", "https://shorewatch.example.com")
	t.Setenv("VISION_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Polling.DemoInterval)
	assert.Equal(t, time.Minute, cfg.Polling.ConservativeInterval)
	assert.Equal(t, 5*time.Minute, cfg.Polling.EnvironmentalInterval)
	assert.Equal(t, 500, cfg.Budget.DailyCheckBudget)
	assert.Equal(t, 50, cfg.Budget.CheckSafetyMargin)
	assert.Equal(t, 10, cfg.Budget.LiveMinuteCharge)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "https://shorewatch.example.com/v1/webhooks/vision", cfg.WebhookURL())
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://shorewatch.example.com")
	t.Setenv("VISION_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMarginAboveBudget(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BUDGET_DAILY_CHECKS", "10")
	t.Setenv("BUDGET_CHECK_SAFETY_MARGIN", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSecretRedaction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VISION_API_KEY", "super-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "***REDACTED***", cfg.Vision.APIKey.String())
	assert.Equal(t, "super-secret", cfg.Vision.APIKey.Unmask())
}

func TestZonesTable(t *testing.T) {
	zones := Zones()
	require.Len(t, zones, 6)

	enabled := 0
	for _, z := range zones {
		if z.Enabled {
			enabled++
			assert.NotEmpty(t, z.StreamURL, "enabled zone %s needs a stream", z.ID)
		}
		assert.NotEmpty(t, z.BuoyStationID)
		assert.NotEmpty(t, z.TideStationID)
	}
	assert.Equal(t, 3, enabled)

	// Returned slice is a copy; mutating it does not affect the table.
	zones[0].ID = "tampered"
	assert.Equal(t, "santa-monica", Zones()[0].ID)
}
