// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Trends    TrendsConfig    `mapstructure:"trends"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AnthropicConfig holds settings for the language-model backend.
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"`     // seconds
	MaxRetries  int     `mapstructure:"max_retries"` // overload retry budget
	BaseDelayMS int     `mapstructure:"base_delay_ms"`
}

// RetryBaseDelay returns the initial backoff delay for overload retries.
func (a AnthropicConfig) RetryBaseDelay() time.Duration {
	return time.Duration(a.BaseDelayMS) * time.Millisecond
}

// TrendsConfig holds settings for the Google Trends API server.
type TrendsConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Country      string `mapstructure:"country"`
	DefaultLimit int    `mapstructure:"default_limit"`
	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // seconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the required configuration. Callers must invoke it
// explicitly before constructing the agent or the HTTP server.
func (c *Config) Validate() error {
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("anthropic.api_key is required (set ANTHROPIC_API_KEY)")
	}
	if c.Trends.BaseURL == "" {
		return fmt.Errorf("trends.base_url is required (set GOOGLE_TRENDS_API_URL)")
	}
	if c.Anthropic.MaxRetries < 1 {
		return fmt.Errorf("anthropic.max_retries must be at least 1, got %d", c.Anthropic.MaxRetries)
	}
	if c.Trends.CacheEnabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when trends.cache_enabled is true")
	}
	return nil
}
