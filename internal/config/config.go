package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Search   SearchConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type SearchConfig struct {
	BaseURL            string
	ResultsURLFragment string
	ArtifactPath       string
	NavigationRetries  int
	ElementTimeout     time.Duration
	ResultsTimeout     time.Duration
	SettleDelay        time.Duration
	PaceMin            time.Duration
	PaceMax            time.Duration
	RunTimeout         time.Duration
	WorkerPollInterval time.Duration
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ProxyServer    string
	SessionPath    string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	LockTTL  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Search: SearchConfig{
			BaseURL:            getEnvOrDefault("SEARCH_BASE_URL", "https://www.alibaba.com"),
			ResultsURLFragment: getEnvOrDefault("SEARCH_RESULTS_URL_FRAGMENT", "/search/page?"),
			ArtifactPath:       getEnvOrDefault("SEARCH_ARTIFACT_PATH", "data/suppliers_data.json"),
			NavigationRetries:  getIntOrDefault("SEARCH_NAVIGATION_RETRIES", 3),
			ElementTimeout:     getDurationOrDefault("SEARCH_ELEMENT_TIMEOUT", 10*time.Second),
			ResultsTimeout:     getDurationOrDefault("SEARCH_RESULTS_TIMEOUT", 30*time.Second),
			SettleDelay:        getDurationOrDefault("SEARCH_SETTLE_DELAY", 5*time.Second),
			PaceMin:            getDurationOrDefault("SEARCH_PACE_MIN", 1*time.Second),
			PaceMax:            getDurationOrDefault("SEARCH_PACE_MAX", 3*time.Second),
			RunTimeout:         getDurationOrDefault("SEARCH_RUN_TIMEOUT", 10*time.Minute),
			WorkerPollInterval: getDurationOrDefault("SEARCH_WORKER_POLL_INTERVAL", 5*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
			SessionPath:    getEnvOrDefault("BROWSER_SESSION_PATH", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			Name:     getEnvOrDefault("DB_NAME", "supplier_scout"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_EVENT_STREAM", "supplier-scout:runs"),
			LockTTL:  getDurationOrDefault("REDIS_LOCK_TTL", 15*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Search.BaseURL == "" {
		return fmt.Errorf("SEARCH_BASE_URL must not be empty")
	}

	if c.Search.ArtifactPath == "" {
		return fmt.Errorf("SEARCH_ARTIFACT_PATH must not be empty")
	}

	if c.Search.PaceMin > c.Search.PaceMax {
		return fmt.Errorf("SEARCH_PACE_MIN cannot be greater than SEARCH_PACE_MAX")
	}

	if c.Search.NavigationRetries < 1 {
		return fmt.Errorf("SEARCH_NAVIGATION_RETRIES must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
