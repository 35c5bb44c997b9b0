// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"recipe-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog contains catalog source configuration
	Catalog CatalogConfig `json:"catalog"`

	// Reports contains saved-report storage configuration
	Reports ReportsConfig `json:"reports"`

	// Pricing contains pricing defaults
	Pricing PricingConfig `json:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains catalog-related settings
type CatalogConfig struct {
	// Path is the ingredient/recipe catalog file
	Path string `json:"path"`
}

// ReportsConfig contains saved-report storage settings
type ReportsConfig struct {
	// DatabasePath is the path to the saved-report database
	DatabasePath string `json:"database_path"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the currency code used for all costs
	Currency string `json:"currency"`

	// DefaultTargetFoodCostPercent is used when a request omits a target
	DefaultTargetFoodCostPercent float64 `json:"default_target_food_cost_percent"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format"`

	// ShowBreakdown shows the per-line cost breakdown
	ShowBreakdown bool `json:"show_breakdown"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".recipe-cost", "reports.db")

	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Path: "catalog.json",
		},
		Reports: ReportsConfig{
			DatabasePath: dbPath,
		},
		Pricing: PricingConfig{
			Currency:                     "USD",
			DefaultTargetFoodCostPercent: 30,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowBreakdown: true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
