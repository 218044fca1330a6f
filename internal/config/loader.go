package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadApples loads the falling apples configuration.
// Search order: customPath -> ~/.arcade/configs/apples.yaml -> ./configs/apples.yaml -> embedded default.
// Keys missing from a file keep their default values.
func LoadApples(customPath string) (ApplesConfig, error) {
	// Try custom path first; errors here are the user's to see
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return ApplesConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseApples(data)
		if err != nil {
			return ApplesConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("apples.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseApples(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "apples.yaml")); err == nil {
		if cfg, err := parseApples(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseApples(defaultApplesYAML)
	if err != nil {
		return DefaultApplesConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseApples decodes YAML over the defaults and validates the result.
func parseApples(data []byte) (ApplesConfig, error) {
	cfg := DefaultApplesConfig()
	// Tiers replace rather than merge element-wise.
	cfg.Difficulty.Tiers = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ApplesConfig{}, err
	}
	if len(cfg.Difficulty.Tiers) == 0 {
		cfg.Difficulty.Tiers = DefaultApplesConfig().Difficulty.Tiers
	}
	if err := cfg.Validate(); err != nil {
		return ApplesConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// ApplyApplesPreset modifies the config based on a difficulty preset.
func ApplyApplesPreset(cfg *ApplesConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		cfg.Difficulty.Enabled = false
		return
	}
	cfg.Difficulty.Enabled = true
	cfg.Difficulty.InitialTier = InitialTierForPreset(preset)
}
