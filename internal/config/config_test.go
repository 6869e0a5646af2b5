package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL:     "postgres://localhost:5432/garde",
		PlanningSheetID: "sheet123",
		PublishTab:      "Gardes",
		BridgeRules:     []string{"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=26"},
		Seed:            42,
	}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{
		PlanningSheetID: "sheet123",
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestValidate_InvalidBridgeRule(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/garde",
		BridgeRules: []string{"INVALID_RRULE_SYNTAX"},
	}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	validConfig := `
databaseURL: "postgres://localhost:5432/garde"
planningSheetID: "sheet123"
publishTab: "Gardes"
bridgeRules:
  - "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=26"
seed: 42
`

	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/garde", cfg.DatabaseURL)
	assert.Equal(t, "sheet123", cfg.PlanningSheetID)
	assert.Equal(t, "Gardes", cfg.PublishTab)
	require.Len(t, cfg.BridgeRules, 1)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoadFromPath_MinimalConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal_config.yaml")

	minimalConfig := `
databaseURL: "postgres://localhost:5432/garde"
`

	err := os.WriteFile(configPath, []byte(minimalConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.BridgeRules)
	assert.Zero(t, cfg.Seed)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromPath_MalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "broken.yaml")

	err := os.WriteFile(configPath, []byte("databaseURL: [unterminated"), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
}
