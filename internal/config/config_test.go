package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/config"
)

func TestLoadRequiresRedisURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"REDIS_URL": ""})
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"REDIS_URL": "redis://localhost:6379/0",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 10*time.Minute, cfg.QuoteCacheTTL)
	require.InDelta(t, 0.01, cfg.ConsistencyTolerance, 1e-9)
	require.InDelta(t, 10, cfg.HotelCostMin, 1e-9)
	require.InDelta(t, 1000, cfg.HotelCostMax, 1e-9)
	require.Equal(t, "300-M", cfg.RateLimit)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"REDIS_URL":               "redis://localhost:6379/0",
		"PORT":                    "9090",
		"QUOTE_CACHE_TTL":         "30s",
		"ADVISORY_HOTEL_COST_MAX": "2500",
		"QUEUE_MAX_ATTEMPTS":      "7",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	require.InDelta(t, 2500, cfg.HotelCostMax, 1e-9)
	require.Equal(t, 7, cfg.QueueMaxAttempts)
}
