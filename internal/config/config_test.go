package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peachstatelabs/gabills/internal/config"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATASET_PATH", "")
	t.Setenv("DATASET_URL", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, "ga_legislation.json", cfg.DatasetPath)
	require.Equal(t, 20, cfg.PageSize)
	require.Equal(t, 100, cfg.MaxPageSize)
	require.Equal(t, 5, cfg.RelatedLimit)
	require.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("DATASET_URL", "https://example.com/bills.json")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("API_RELATED_LIMIT", "7")
	t.Setenv("API_CACHE_CAPACITY", "50")
	t.Setenv("API_CACHE_TTL", "30m")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	require.Equal(t, "https://example.com/bills.json", cfg.DatasetURL)
	require.Equal(t, 15, cfg.PageSize)
	require.Equal(t, 200, cfg.MaxPageSize)
	require.Equal(t, 7, cfg.RelatedLimit)
	require.Equal(t, 50, cfg.CacheCapacity)
	require.Equal(t, 30*time.Minute, cfg.CacheTTL)
}

func TestLoadAPIRejectsPageSizeOverMax(t *testing.T) {
	t.Setenv("API_PAGE_SIZE", "300")
	t.Setenv("API_MAX_PAGE_SIZE", "100")

	_, err := config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "API_PAGE_SIZE cannot exceed")
}

func TestLoadAPIBadDurationFallsBack(t *testing.T) {
	t.Setenv("API_CACHE_TTL", "not-a-duration")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoadFetcher(t *testing.T) {
	t.Setenv("DATASET_URL", "https://example.com/bills.json")
	t.Setenv("DATASET_PATH", "/data/bills.json")
	t.Setenv("FETCH_INTERVAL", "12h")
	t.Setenv("FETCH_MAX_RETRIES", "3")
	t.Setenv("FETCH_RETRY_BASE", "1s")
	t.Setenv("FETCH_ONCE", "true")

	cfg, err := config.LoadFetcher()
	require.NoError(t, err)

	require.Equal(t, "https://example.com/bills.json", cfg.DatasetURL)
	require.Equal(t, "/data/bills.json", cfg.DatasetPath)
	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, time.Second, cfg.RetryBase)
	require.True(t, cfg.Once)
}

func TestLoadFetcherRequiresURL(t *testing.T) {
	t.Setenv("DATASET_URL", "")

	_, err := config.LoadFetcher()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATASET_URL must be set")
}

func TestLoadValidatorDefaults(t *testing.T) {
	t.Setenv("DATASET_PATH", "")

	cfg := config.LoadValidator()
	require.Equal(t, "ga_legislation.json", cfg.DatasetPath)
}
