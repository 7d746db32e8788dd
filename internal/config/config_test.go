package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://www.alibaba.com", cfg.Search.BaseURL)
	assert.Equal(t, "/search/page?", cfg.Search.ResultsURLFragment)
	assert.Equal(t, "data/suppliers_data.json", cfg.Search.ArtifactPath)
	assert.Equal(t, 3, cfg.Search.NavigationRetries)
	assert.Equal(t, 1*time.Second, cfg.Search.PaceMin)
	assert.Equal(t, 3*time.Second, cfg.Search.PaceMax)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "supplier_scout", cfg.Database.Name)
	assert.Equal(t, "supplier-scout:runs", cfg.Redis.Stream)
	assert.Equal(t, 15*time.Minute, cfg.Redis.LockTTL)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SEARCH_BASE_URL", "https://staging.alibaba.com")
	t.Setenv("SEARCH_ARTIFACT_PATH", "/tmp/out.json")
	t.Setenv("SEARCH_NAVIGATION_RETRIES", "5")
	t.Setenv("SEARCH_PACE_MIN", "500ms")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("REDIS_LOCK_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://staging.alibaba.com", cfg.Search.BaseURL)
	assert.Equal(t, "/tmp/out.json", cfg.Search.ArtifactPath)
	assert.Equal(t, 5, cfg.Search.NavigationRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.PaceMin)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, time.Minute, cfg.Redis.LockTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty base URL",
			mutate:  func(c *Config) { c.Search.BaseURL = "" },
			wantErr: "SEARCH_BASE_URL",
		},
		{
			name:    "empty artifact path",
			mutate:  func(c *Config) { c.Search.ArtifactPath = "" },
			wantErr: "SEARCH_ARTIFACT_PATH",
		},
		{
			name: "pace bounds inverted",
			mutate: func(c *Config) {
				c.Search.PaceMin = 5 * time.Second
				c.Search.PaceMax = 1 * time.Second
			},
			wantErr: "SEARCH_PACE_MIN",
		},
		{
			name:    "zero navigation retries",
			mutate:  func(c *Config) { c.Search.NavigationRetries = 0 },
			wantErr: "SEARCH_NAVIGATION_RETRIES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
