package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/wheelvend/wheelvend/pkg/logger"
)

// Config holds all application configuration.
type Config struct {
	Index   IndexConfig   `mapstructure:"index"`
	Target  TargetConfig  `mapstructure:"target"`
	Vendor  VendorConfig  `mapstructure:"vendor"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// IndexConfig holds package index configuration.
type IndexConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// TargetConfig fixes the runtime/platform pair artifacts are resolved for.
// The resolver never derives these; they always arrive from configuration.
type TargetConfig struct {
	RuntimeVersion string `mapstructure:"runtime_version"`
	Platform       string `mapstructure:"platform"`
}

// VendorConfig holds the vendor directory root.
type VendorConfig struct {
	Root string `mapstructure:"root"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// RequestTimeout parses the configured index timeout, falling back to 30s on
// an empty or malformed value.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Index.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// LoadConfig loads configuration from file, environment, and defaults, then
// initializes the global logger.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.wheelvend")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("WHEELVEND")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := initLogger(&config.Logging); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the built-in configuration used when no config file
// is present.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults are static; unmarshal cannot fail on them.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("index.base_url", "https://pypi.org")
	v.SetDefault("index.timeout", "30s")

	v.SetDefault("target.runtime_version", "3.10")
	v.SetDefault("target.platform", "win_amd64")

	v.SetDefault("vendor.root", defaultVendorRoot())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.compress", false)
}

func defaultVendorRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wheelvend"
	}
	return filepath.Join(home, ".wheelvend", "plugins")
}

// initLogger initializes the logger with the provided configuration.
func initLogger(cfg *LoggingConfig) error {
	return logger.Init(logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Module:     "main",
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
}
