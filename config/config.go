package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/platewise/backend/internal/pkg/logger"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	SerpAPI SerpAPIConfig
	Cache   CacheConfig
	Gemini  GeminiConfig
	Local   LocalConfig
	Log     logger.Config
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SerpAPIConfig holds web search provider configuration. MinInterval is the
// minimum spacing in seconds between outbound requests, shared by the whole
// process.
type SerpAPIConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	MinInterval   float64       `mapstructure:"min_interval"` // seconds
	MaxRetries    int           `mapstructure:"max_retries"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// MinIntervalDuration converts the configured seconds value
func (c SerpAPIConfig) MinIntervalDuration() time.Duration {
	return time.Duration(c.MinInterval * float64(time.Second))
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// GeminiConfig holds cloud model configuration. Models are tried in order by
// the fallback chain.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Models      []string      `mapstructure:"models"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LocalConfig holds the on-device failsafe configuration
type LocalConfig struct {
	ServerURL    string          `mapstructure:"server_url"`
	ModelsDir    string          `mapstructure:"models_dir"`
	AutoDownload bool            `mapstructure:"auto_download"`
	Light        LocalModelEntry `mapstructure:"light"`
	Heavy        LocalModelEntry `mapstructure:"heavy"`
	Timeout      time.Duration   `mapstructure:"timeout"`
}

// LocalModelEntry describes one local weight file
type LocalModelEntry struct {
	Name        string `mapstructure:"name"`
	File        string `mapstructure:"file"`
	DownloadURL string `mapstructure:"download_url"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/platewise/")

	v.SetEnvPrefix("PLATEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Recognized bare environment names, kept for compatibility with the
	// original deployment scripts
	v.BindEnv("serpapi.api_key", "PLATEWISE_SERPAPI_API_KEY", "SERPAPI_API_KEY")
	v.BindEnv("serpapi.min_interval", "PLATEWISE_SERPAPI_MIN_INTERVAL", "SERPAPI_MIN_INTERVAL")
	v.BindEnv("serpapi.max_retries", "PLATEWISE_SERPAPI_MAX_RETRIES", "SERPAPI_MAX_RETRIES")
	v.BindEnv("serpapi.backoff_factor", "PLATEWISE_SERPAPI_BACKOFF_FACTOR", "SERPAPI_BACKOFF_FACTOR")
	v.BindEnv("gemini.api_key", "PLATEWISE_GEMINI_API_KEY", "GOOGLE_API_KEY")

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// SerpAPI defaults
	v.SetDefault("serpapi.base_url", "https://serpapi.com/search")
	v.SetDefault("serpapi.min_interval", 1.0)
	v.SetDefault("serpapi.max_retries", 2)
	v.SetDefault("serpapi.backoff_factor", 1.5)
	v.SetDefault("serpapi.timeout", "10s")

	// Cache defaults
	v.SetDefault("cache.capacity", 128)

	// Cloud model defaults
	v.SetDefault("gemini.models", []string{"gemini-2.0-flash-exp"})
	v.SetDefault("gemini.temperature", 0.4)
	v.SetDefault("gemini.timeout", "60s")

	// Local failsafe defaults
	v.SetDefault("local.server_url", "http://127.0.0.1:8081/v1")
	v.SetDefault("local.models_dir", "models")
	v.SetDefault("local.auto_download", true)
	v.SetDefault("local.light.name", "moondream2")
	v.SetDefault("local.light.file", "moondream2-text-model-f16.gguf")
	v.SetDefault("local.heavy.name", "llava-phi-3-mini")
	v.SetDefault("local.heavy.file", "llava-phi-3-mini-int4.gguf")
	v.SetDefault("local.timeout", "120s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file.filename", "logs/server.log")
	v.SetDefault("log.file.maxsize", 100)
	v.SetDefault("log.file.maxage", 30)
	v.SetDefault("log.file.maxbackups", 10)
	v.SetDefault("log.file.compress", true)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.SerpAPI.MinInterval <= 0 {
		return fmt.Errorf("serpapi.min_interval must be positive, got: %v", config.SerpAPI.MinInterval)
	}
	if config.SerpAPI.MaxRetries < 0 {
		return fmt.Errorf("serpapi.max_retries must not be negative, got: %d", config.SerpAPI.MaxRetries)
	}
	if config.SerpAPI.BackoffFactor < 1 {
		return fmt.Errorf("serpapi.backoff_factor must be >= 1, got: %v", config.SerpAPI.BackoffFactor)
	}
	if config.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be >= 1, got: %d", config.Cache.Capacity)
	}
	if len(config.Gemini.Models) == 0 {
		return fmt.Errorf("gemini.models must list at least one model")
	}
	return nil
}
