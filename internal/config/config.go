// Package config provides YAML-based game configuration loading and
// difficulty management for the arcade platform.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ApplesConfig contains all configuration for the falling apples game.
type ApplesConfig struct {
	Field      FieldConfig      `yaml:"field"`
	Rules      RulesConfig      `yaml:"rules"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Ledger     LedgerConfig     `yaml:"ledger"`
}

// FieldConfig defines the playfield geometry in logical units.
type FieldConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	BasketWidth     float64 `yaml:"basket_width"`
	CatchLineOffset float64 `yaml:"catch_line_offset"` // catch line sits this far above the bottom
}

// RulesConfig defines session rules and tick periods.
type RulesConfig struct {
	Lives             int     `yaml:"lives"`
	PhysicsIntervalMS int     `yaml:"physics_interval_ms"`
	ElapsedIntervalMS int     `yaml:"elapsed_interval_ms"`
	StepSmall         float64 `yaml:"step_small"`         // basket step on narrow fields
	StepLarge         float64 `yaml:"step_large"`         // basket step otherwise
	NarrowFieldWidth  float64 `yaml:"narrow_field_width"` // fields narrower than this are narrow
}

// PhysicsInterval returns the physics tick period.
func (r RulesConfig) PhysicsInterval() time.Duration {
	return time.Duration(r.PhysicsIntervalMS) * time.Millisecond
}

// ElapsedInterval returns the elapsed-time tick period.
func (r RulesConfig) ElapsedInterval() time.Duration {
	return time.Duration(r.ElapsedIntervalMS) * time.Millisecond
}

// Step returns the basket step for a field of the given width.
func (r RulesConfig) Step(fieldWidth float64) float64 {
	if fieldWidth < r.NarrowFieldWidth {
		return r.StepSmall
	}
	return r.StepLarge
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled     bool         `yaml:"enabled"`      // false pins the game to InitialTier
	InitialTier int          `yaml:"initial_tier"` // 1-based, floor for progression
	Tiers       []TierConfig `yaml:"tiers"`
}

// TierConfig is one step of the elapsed-time schedule.
type TierConfig struct {
	FromSeconds     int     `yaml:"from_seconds"`
	FallSpeed       float64 `yaml:"fall_speed"` // units per physics tick
	SpawnIntervalMS int     `yaml:"spawn_interval_ms"`
}

// SpawnInterval returns the spawn period of the tier.
func (t TierConfig) SpawnInterval() time.Duration {
	return time.Duration(t.SpawnIntervalMS) * time.Millisecond
}

// LedgerConfig defines how finished games reach the leaderboard.
type LedgerConfig struct {
	Address           string `yaml:"address"`          // empty means the most recently deployed ledger
	RegistrationFee   string `yaml:"registration_fee"` // decimal token amount, e.g. "0.1"
	RefreshIntervalMS int    `yaml:"refresh_interval_ms"`
	TopN              int    `yaml:"top_n"`
}

// RefreshInterval returns how often leaderboard views refetch.
func (l LedgerConfig) RefreshInterval() time.Duration {
	return time.Duration(l.RefreshIntervalMS) * time.Millisecond
}

// Validate reports the first setting that would make the game unplayable.
func (c ApplesConfig) Validate() error {
	switch {
	case c.Field.Width <= 0 || c.Field.Height <= 0:
		return fmt.Errorf("config: field must have positive size, got %vx%v", c.Field.Width, c.Field.Height)
	case c.Field.BasketWidth <= 0 || c.Field.BasketWidth > c.Field.Width:
		return fmt.Errorf("config: basket_width %v must be in (0, %v]", c.Field.BasketWidth, c.Field.Width)
	case c.Field.CatchLineOffset < 0 || c.Field.CatchLineOffset >= c.Field.Height:
		return fmt.Errorf("config: catch_line_offset %v must be in [0, %v)", c.Field.CatchLineOffset, c.Field.Height)
	case c.Rules.Lives <= 0:
		return errors.New("config: lives must be positive")
	case c.Rules.PhysicsIntervalMS <= 0 || c.Rules.ElapsedIntervalMS <= 0:
		return errors.New("config: tick intervals must be positive")
	case c.Rules.StepSmall <= 0 || c.Rules.StepLarge <= 0:
		return errors.New("config: basket steps must be positive")
	case len(c.Difficulty.Tiers) == 0:
		return errors.New("config: at least one difficulty tier is required")
	}

	for i, t := range c.Difficulty.Tiers {
		if t.FallSpeed <= 0 || t.SpawnIntervalMS <= 0 {
			return fmt.Errorf("config: tier %d needs positive fall_speed and spawn_interval_ms", i+1)
		}
		if i > 0 && t.FromSeconds <= c.Difficulty.Tiers[i-1].FromSeconds {
			return fmt.Errorf("config: tier %d from_seconds must increase", i+1)
		}
	}
	if c.Difficulty.Tiers[0].FromSeconds != 0 {
		return errors.New("config: first tier must start at 0 seconds")
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParseDifficultyPreset validates a preset name from the command line.
func ParseDifficultyPreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// InitialTierForPreset returns the starting tier for a difficulty preset.
func InitialTierForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyHard:
		return 2
	default:
		return 1
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
