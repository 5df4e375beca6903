// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/mpr-recon/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "MPRRECON"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Input struct {
		Encoding string `mapstructure:"encoding" yaml:"encoding"`
	} `mapstructure:"input" yaml:"input"`

	Recon struct {
		Tolerance string `mapstructure:"tolerance" yaml:"tolerance"`
		OneToOne  bool   `mapstructure:"one_to_one" yaml:"one_to_one"`
	} `mapstructure:"recon" yaml:"recon"`

	Output struct {
		Format      string `mapstructure:"format" yaml:"format"`
		PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	} `mapstructure:"output" yaml:"output"`

	Profiles struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"profiles" yaml:"profiles"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return load("")
}

// InitializeConfigFromFile loads configuration from an explicit file in
// place of the standard search path.
func InitializeConfigFromFile(path string) (*Config, error) {
	return load(path)
}

func load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.mpr-recon")
		v.AddConfigPath(".mpr-recon")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless given explicitly)
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("input.encoding", "utf-8")

	v.SetDefault("recon.tolerance", "0.01")
	v.SetDefault("recon.one_to_one", false)

	v.SetDefault("output.format", "json")
	v.SetDefault("output.preview_rows", 5)

	v.SetDefault("profiles.file", "mapping_profiles.yaml")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if err := validation.IsValidDelimiter(config.CSV.Delimiter); err != nil {
		return fmt.Errorf("csv.delimiter: %w", err)
	}

	if err := validation.IsValidEncoding(config.Input.Encoding); err != nil {
		return fmt.Errorf("input.encoding: %w", err)
	}

	tolerance, err := decimal.NewFromString(config.Recon.Tolerance)
	if err != nil {
		return fmt.Errorf("recon.tolerance must be a decimal number, got: %s", config.Recon.Tolerance)
	}
	if !tolerance.IsPositive() {
		return fmt.Errorf("recon.tolerance must be positive, got: %s", config.Recon.Tolerance)
	}

	if err := validation.IsValidOutputFormat(config.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	if config.Output.PreviewRows < 1 || config.Output.PreviewRows > 1000 {
		return fmt.Errorf("output.preview_rows must be between 1 and 1000, got: %d", config.Output.PreviewRows)
	}

	if strings.TrimSpace(config.Profiles.File) == "" {
		return fmt.Errorf("profiles.file must not be empty")
	}

	return nil
}

// Tolerance returns the amount tolerance as a decimal. The value has already
// been validated, so a parse failure falls back to 0.01.
func (c *Config) Tolerance() decimal.Decimal {
	d, err := decimal.NewFromString(c.Recon.Tolerance)
	if err != nil {
		return decimal.New(1, -2)
	}
	return d
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// Validate re-checks the configuration, for callers that changed fields
// after loading it.
func (c *Config) Validate() error {
	return validateConfig(c)
}
