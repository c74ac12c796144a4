// Package config handles configuration loading for tickerlens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Channel  ChannelConfig  `mapstructure:"channel"  yaml:"channel"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	NLP      NLPConfig      `mapstructure:"nlp"      yaml:"nlp"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// ChannelConfig identifies the channel to ingest and how to list it.
type ChannelConfig struct {
	URL    string `mapstructure:"url"    yaml:"url"`
	Limit  int    `mapstructure:"limit"  yaml:"limit"`
	Source string `mapstructure:"source" yaml:"source"` // "ytdlp" or "rss"
}

// DownloadConfig holds transcript acquisition settings.
type DownloadConfig struct {
	Dir        string `mapstructure:"dir"          yaml:"dir"`
	Workers    int    `mapstructure:"workers"      yaml:"workers"`
	YtdlpPath  string `mapstructure:"ytdlp_path"   yaml:"ytdlp_path"`
	TimeoutSec int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
	RatePerMin int    `mapstructure:"rate_per_min" yaml:"rate_per_min"`
}

// DatabaseConfig holds the SQLite store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// NLPConfig holds the inference API settings for summarization and
// sentiment classification.
type NLPConfig struct {
	APIKey         string `mapstructure:"api_key"         yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url"        yaml:"base_url"`
	SummaryModel   string `mapstructure:"summary_model"   yaml:"summary_model"`
	SentimentModel string `mapstructure:"sentiment_model" yaml:"sentiment_model"`
	TimeoutSec     int    `mapstructure:"timeout_sec"     yaml:"timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerlens/config.yaml (home directory)
//  3. /etc/tickerlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: TICKERLENS_<SECTION>_<KEY>, e.g., TICKERLENS_NLP_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerlens"))
	v.AddConfigPath("/etc/tickerlens")

	v.SetEnvPrefix("TICKERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TICKERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Validate checks that the configuration is usable for a pipeline run.
func (c *Config) Validate() error {
	if c.Channel.URL == "" {
		return fmt.Errorf("channel.url is required (set TICKERLENS_CHANNEL_URL or the config file)")
	}
	if c.Channel.Limit < 1 {
		return fmt.Errorf("channel.limit must be at least 1, got %d", c.Channel.Limit)
	}
	if c.Channel.Source != "ytdlp" && c.Channel.Source != "rss" {
		return fmt.Errorf("channel.source must be %q or %q, got %q", "ytdlp", "rss", c.Channel.Source)
	}
	if c.Download.Workers < 1 {
		return fmt.Errorf("download.workers must be at least 1, got %d", c.Download.Workers)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Channel defaults
	v.SetDefault("channel.limit", 30)
	v.SetDefault("channel.source", "ytdlp")

	// Download defaults
	v.SetDefault("download.dir", "downloads")
	v.SetDefault("download.workers", 5)
	v.SetDefault("download.ytdlp_path", "yt-dlp")
	v.SetDefault("download.timeout_sec", 60)
	v.SetDefault("download.rate_per_min", 30)

	// Database defaults
	v.SetDefault("database.path", "finance_data.db")

	// NLP defaults
	v.SetDefault("nlp.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("nlp.summary_model", "facebook/bart-large-cnn")
	v.SetDefault("nlp.sentiment_model", "yiyanghkust/finbert-tone")
	v.SetDefault("nlp.timeout_sec", 120)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("TICKERLENS_NLP_API_KEY"); key != "" {
		cfg.NLP.APIKey = key
	}
	if url := os.Getenv("TICKERLENS_CHANNEL_URL"); url != "" {
		cfg.Channel.URL = url
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
