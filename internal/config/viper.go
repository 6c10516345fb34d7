// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
		IncludeHeaders bool   `mapstructure:"include_headers" yaml:"include_headers"`
	} `mapstructure:"csv" yaml:"csv"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		BatchSize         int    `mapstructure:"batch_size" yaml:"batch_size"`
		MaxAttempts       int    `mapstructure:"max_attempts" yaml:"max_attempts"`
		RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Matching struct {
		Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	} `mapstructure:"matching" yaml:"matching"`

	Reconcile struct {
		// Tolerance is the relative slack applied to the internal sum when
		// comparing against the external report.
		Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
	} `mapstructure:"reconcile" yaml:"reconcile"`

	DB struct {
		DSN         string `mapstructure:"dsn" yaml:"-"` // May carry credentials
		TablePrefix string `mapstructure:"table_prefix" yaml:"table_prefix"`
		ChunkSize   int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	} `mapstructure:"db" yaml:"db"`

	Taxonomy struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"taxonomy" yaml:"taxonomy"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.cfe-etl")
	v.AddConfigPath(".cfe-etl")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("CFE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. Handle special cases (always from env, not prefixed)
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}
	if err := v.BindEnv("db.dsn", "DATABASE_URL"); err != nil {
		fmt.Printf("Warning: failed to bind DATABASE_URL environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_headers", true)

	// AI defaults
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.batch_size", 100)
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.retry_delay_seconds", 2)

	// Matching defaults
	v.SetDefault("matching.threshold", 0.70)

	// Reconciliation defaults
	v.SetDefault("reconcile.tolerance", 0.01)

	// DB defaults
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table_prefix", "datalogic")
	v.SetDefault("db.chunk_size", 100)

	// Taxonomy defaults
	v.SetDefault("taxonomy.file", "config/categories.yaml")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate CSV delimiter
	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	// Validate AI configuration
	if config.AI.Enabled {
		if config.AI.BatchSize < 1 {
			return fmt.Errorf("ai.batch_size must be positive, got: %d", config.AI.BatchSize)
		}
		if config.AI.MaxAttempts < 1 {
			return fmt.Errorf("ai.max_attempts must be positive, got: %d", config.AI.MaxAttempts)
		}
		if config.AI.RetryDelaySeconds < 0 {
			return fmt.Errorf("ai.retry_delay_seconds must not be negative, got: %d", config.AI.RetryDelaySeconds)
		}
	}

	// Validate matching threshold
	if config.Matching.Threshold < 0.0 || config.Matching.Threshold > 1.0 {
		return fmt.Errorf("matching.threshold must be between 0.0 and 1.0, got: %f", config.Matching.Threshold)
	}

	// Validate reconciliation tolerance
	if config.Reconcile.Tolerance < 0.0 {
		return fmt.Errorf("reconcile.tolerance must not be negative, got: %f", config.Reconcile.Tolerance)
	}

	// Validate chunked upload size
	if config.DB.ChunkSize < 1 {
		return fmt.Errorf("db.chunk_size must be positive, got: %d", config.DB.ChunkSize)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
