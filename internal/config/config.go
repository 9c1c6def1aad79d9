// Package config provides configuration management for the portfolio alerter.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Alerter     AlerterConfig  `mapstructure:"alerter"`
	Endpoint    EndpointConfig `mapstructure:"endpoint"`
	Credentials Credentials    `mapstructure:"-"` // Loaded separately
}

// AlerterConfig holds the reconciliation run parameters. Threshold and
// percent arrive as strings (flag or file input) and are parsed exactly
// once by Validate; business logic only ever sees the typed Thresholds.
type AlerterConfig struct {
	ThresholdValue     string `mapstructure:"threshold_value"`
	PercentChange      string `mapstructure:"percent_change"`
	WipeExistingAlerts bool   `mapstructure:"wipe_existing_alerts"`
}

// EndpointConfig holds the remote web-services endpoint details.
type EndpointConfig struct {
	WSDLBase   string `mapstructure:"wsdl_base"`
	ServerName string `mapstructure:"server_name"`
}

// Credentials holds the remote platform credentials.
type Credentials struct {
	Username    string `mapstructure:"username"`
	CompanyName string `mapstructure:"company_name"`
	Password    string `mapstructure:"password"`
}

// Thresholds is the validated, typed form of the run parameters.
type Thresholds struct {
	ThresholdValue decimal.Decimal
	PercentChange  decimal.Decimal
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/portfolio-alerter"
	}
	return filepath.Join(home, ".config", "portfolio-alerter")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// A missing config file is not an error: every setting can be supplied
// via flags or environment variables.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRESS_USERNAME"); v != "" {
		cfg.Credentials.Username = v
	}
	if v := os.Getenv("IRESS_COMPANY"); v != "" {
		cfg.Credentials.CompanyName = v
	}
	if v := os.Getenv("IRESS_PASSWORD"); v != "" {
		cfg.Credentials.Password = v
	}
	if v := os.Getenv("IRESS_ENDPOINT"); v != "" {
		cfg.Endpoint.WSDLBase = v
	}
	if v := os.Getenv("IRESS_IOS_SERVER"); v != "" {
		cfg.Endpoint.ServerName = v
	}
}

// Validate checks the run parameters and parses the threshold and percent
// inputs into decimals. It must be called, and must succeed, before any
// remote call is made.
func (c *Config) Validate() (Thresholds, error) {
	threshold, err := decimal.NewFromString(c.Alerter.ThresholdValue)
	if err != nil {
		return Thresholds{}, fmt.Errorf("threshold value must be a number, got %q", c.Alerter.ThresholdValue)
	}
	if !threshold.IsPositive() {
		return Thresholds{}, fmt.Errorf("threshold value must be greater than 0, got %s", threshold)
	}

	percent, err := decimal.NewFromString(c.Alerter.PercentChange)
	if err != nil {
		return Thresholds{}, fmt.Errorf("percent change must be a number, got %q", c.Alerter.PercentChange)
	}
	if !percent.IsPositive() {
		return Thresholds{}, fmt.Errorf("percent change must be greater than 0, got %s", percent)
	}

	if c.Endpoint.WSDLBase == "" {
		return Thresholds{}, fmt.Errorf("web services endpoint is required")
	}
	if c.Credentials.Username == "" || c.Credentials.CompanyName == "" {
		return Thresholds{}, fmt.Errorf("username and company name are required")
	}

	return Thresholds{ThresholdValue: threshold, PercentChange: percent}, nil
}
