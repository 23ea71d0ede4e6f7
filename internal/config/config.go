package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/dotcommander/topical/internal/project"
)

// Config represents the topical configuration
type Config struct {
	Root      string   `mapstructure:"root"`
	Exclude   []string `mapstructure:"exclude"`
	Format    string   `mapstructure:"format"`
	Output    string   `mapstructure:"output"`
	FailBelow string   `mapstructure:"failBelow"`
	Quiet     bool     `mapstructure:"quiet"`
	Verbose   bool     `mapstructure:"verbose"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Hierarchy HierarchyConfig `mapstructure:"hierarchy"`
	Store     StoreConfig     `mapstructure:"store"`
}

// AuditConfig contains audit engine configuration
type AuditConfig struct {
	Catalog      string   `mapstructure:"catalog"`
	ExtraCatalogs []string `mapstructure:"extraCatalogs"`
}

// HierarchyConfig contains topic hierarchy configuration
type HierarchyConfig struct {
	MinSpokes int `mapstructure:"minSpokes"`
}

// StoreConfig contains persistence configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoadConfig loads configuration from various sources
func LoadConfig(rootPath string) (*Config, error) {
	// Set default values
	viper.SetDefault("root", ".")
	viper.SetDefault("format", "console")
	viper.SetDefault("failBelow", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("audit.catalog", "page")
	viper.SetDefault("hierarchy.minSpokes", 7)
	viper.SetDefault("store.path", "topical.db")

	// Config file locations
	configPaths := []string{".topicalrc.json", ".topicalrc.yaml", ".topicalrc.yml"}
	for _, path := range configPaths {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err == nil {
			break
		}
	}

	// Environment variables
	viper.SetEnvPrefix("TOPICAL")
	viper.AutomaticEnv()

	// Create config instance
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override root if provided, otherwise climb for the workspace root
	if rootPath != "" {
		config.Root = rootPath
	} else if config.Root == "" || config.Root == "." {
		if detected, err := project.FindWorkspaceRoot("."); err == nil {
			config.Root = detected
		}
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Validate format
	if config.Format != "console" && config.Format != "json" && config.Format != "markdown" {
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	// Validate fail-below grade
	switch config.FailBelow {
	case "", "A", "B", "C", "D":
	default:
		return fmt.Errorf("invalid fail-below grade: %s. Must be 'A', 'B', 'C', or 'D'", config.FailBelow)
	}

	// Validate spoke minimum
	if config.Hierarchy.MinSpokes < 1 {
		return fmt.Errorf("hierarchy.minSpokes must be at least 1")
	}

	// Validate output file if format is not console
	if config.Format != "console" && config.Output == "" {
		return fmt.Errorf("output file is required when format is not 'console'")
	}

	return nil
}
