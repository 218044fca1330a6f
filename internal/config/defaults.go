package config

import (
	_ "embed"
)

//go:embed defaults/apples.yaml
var defaultApplesYAML []byte

// DefaultApplesConfig returns the hardcoded apples configuration.
// It mirrors defaults/apples.yaml and is used when no YAML can be parsed.
func DefaultApplesConfig() ApplesConfig {
	return ApplesConfig{
		Field: FieldConfig{
			Width:           420,
			Height:          500,
			BasketWidth:     90,
			CatchLineOffset: 60,
		},
		Rules: RulesConfig{
			Lives:             4,
			PhysicsIntervalMS: 50,
			ElapsedIntervalMS: 1000,
			StepSmall:         15,
			StepLarge:         20,
			NarrowFieldWidth:  400,
		},
		Difficulty: DifficultyConfig{
			Enabled:     true,
			InitialTier: 1,
			Tiers: []TierConfig{
				{FromSeconds: 0, FallSpeed: 3, SpawnIntervalMS: 1500},
				{FromSeconds: 60, FallSpeed: 5, SpawnIntervalMS: 1000},
				{FromSeconds: 120, FallSpeed: 7, SpawnIntervalMS: 700},
			},
		},
		Ledger: LedgerConfig{
			RegistrationFee:   "0.1",
			RefreshIntervalMS: 10000,
			TopN:              10,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "apples":
		return defaultApplesYAML
	default:
		return nil
	}
}
