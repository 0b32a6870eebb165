// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys,
// e.g. XADOSE_RULES_TABLE for rules.table.
const EnvPrefix = "XADOSE"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level      string `mapstructure:"level" yaml:"level"`
		Format     string `mapstructure:"format" yaml:"format"`
		File       string `mapstructure:"file" yaml:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Rules struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
		Table     string `mapstructure:"table" yaml:"table"`
		Version   string `mapstructure:"version" yaml:"version"`
		Strict    bool   `mapstructure:"strict" yaml:"strict"`
	} `mapstructure:"rules" yaml:"rules"`

	Classify struct {
		Workers             int  `mapstructure:"workers" yaml:"workers"`
		SequentialThreshold int  `mapstructure:"sequential_threshold" yaml:"sequential_threshold"`
		CacheEnabled        bool `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	} `mapstructure:"classify" yaml:"classify"`

	Report struct {
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then the config file, then XADOSE_* environment variables.
// An empty configFile searches $HOME/.xa-dose, ./.xa-dose and . for config.yaml.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.xa-dose")
		v.AddConfigPath(".xa-dose")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")

	// Rule table defaults
	v.SetDefault("rules.directory", "")
	v.SetDefault("rules.table", "dsa")
	v.SetDefault("rules.version", "")
	v.SetDefault("rules.strict", true)

	// Classification defaults
	v.SetDefault("classify.workers", 0)
	v.SetDefault("classify.sequential_threshold", 100)
	v.SetDefault("classify.cache_enabled", true)

	// Report defaults
	v.SetDefault("report.format", "json")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if strings.TrimSpace(config.Rules.Table) == "" {
		return fmt.Errorf("rules.table must name a rule table")
	}

	if config.Classify.Workers < 0 {
		return fmt.Errorf("classify.workers must be zero (one per CPU) or positive, got: %d", config.Classify.Workers)
	}

	if config.Classify.SequentialThreshold < 0 {
		return fmt.Errorf("classify.sequential_threshold must not be negative, got: %d", config.Classify.SequentialThreshold)
	}

	if config.Report.Format != "json" && config.Report.Format != "yaml" {
		return fmt.Errorf("invalid report format: %s (must be 'json' or 'yaml')", config.Report.Format)
	}

	return nil
}
