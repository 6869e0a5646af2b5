package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// DatabaseURL is the postgres connection string holding plannings,
	// the roster, and interval requirements
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// PlanningSheetID and PublishTab identify the Google Sheet the
	// optimized weekend roster is published to
	PlanningSheetID string `yaml:"planningSheetID,omitempty"`
	PublishTab      string `yaml:"publishTab,omitempty"`

	// BridgeRules are rrule strings marking extra bridge days beyond the
	// built-in holiday-sandwich rule
	BridgeRules []string `yaml:"bridgeRules,omitempty"`

	// Seed fixes the optimizer's random source; 0 means time-seeded
	Seed int64 `yaml:"seed,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from garde_planner_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule syntax for each bridge rule
	for i, rule := range cfg.BridgeRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in bridgeRules[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for garde_planner_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "garde_planner_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
