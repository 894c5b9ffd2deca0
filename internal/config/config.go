package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Common contains dataset parameters shared by every service.
type Common struct {
	DatasetPath string
	DatasetURL  string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr      string
	RedisURL      string
	PageSize      int
	MaxPageSize   int
	RelatedLimit  int
	CacheCapacity int
	CacheTTL      time.Duration
}

// Fetcher configures the dataset refresh job.
type Fetcher struct {
	Common
	Interval   time.Duration
	MaxRetries int
	RetryBase  time.Duration
	Once       bool
}

// Validator configures the schema check CLI.
type Validator struct {
	Common
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:        loadCommon(),
		BindAddr:      getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PageSize:      getInt("API_PAGE_SIZE", 20),
		MaxPageSize:   getInt("API_MAX_PAGE_SIZE", 100),
		RelatedLimit:  getInt("API_RELATED_LIMIT", 5),
		CacheCapacity: getInt("API_CACHE_CAPACITY", 2000),
		CacheTTL:      getDuration("API_CACHE_TTL", "1h"),
	}

	if c.PageSize <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPageSize <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.PageSize > c.MaxPageSize {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if c.RelatedLimit <= 0 {
		return nil, fmt.Errorf("API_RELATED_LIMIT must be positive")
	}
	if c.CacheCapacity <= 0 {
		return nil, fmt.Errorf("API_CACHE_CAPACITY must be positive")
	}
	if c.DatasetPath == "" && c.DatasetURL == "" {
		return nil, fmt.Errorf("one of DATASET_PATH or DATASET_URL must be set")
	}

	return c, nil
}

// LoadFetcher builds a Fetcher config from environment variables.
func LoadFetcher() (*Fetcher, error) {
	c := &Fetcher{
		Common:     loadCommon(),
		Interval:   getDuration("FETCH_INTERVAL", "6h"),
		MaxRetries: getInt("FETCH_MAX_RETRIES", 5),
		RetryBase:  getDuration("FETCH_RETRY_BASE", "2s"),
		Once:       getBool("FETCH_ONCE", false),
	}

	if c.DatasetURL == "" {
		return nil, fmt.Errorf("DATASET_URL must be set")
	}
	if c.DatasetPath == "" {
		return nil, fmt.Errorf("DATASET_PATH must be set")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("FETCH_INTERVAL must be positive")
	}
	if c.MaxRetries <= 0 {
		return nil, fmt.Errorf("FETCH_MAX_RETRIES must be positive")
	}
	if c.RetryBase <= 0 {
		return nil, fmt.Errorf("FETCH_RETRY_BASE must be positive")
	}

	return c, nil
}

// LoadValidator builds a Validator config from environment variables.
func LoadValidator() *Validator {
	return &Validator{Common: loadCommon()}
}

func loadCommon() Common {
	return Common{
		DatasetPath: getEnv("DATASET_PATH", "ga_legislation.json"),
		DatasetURL:  getEnv("DATASET_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
