package config

// Tier is the resolved difficulty at some elapsed time.
type Tier struct {
	Level int // 1-based
	TierConfig
}

// TierSchedule maps elapsed seconds to a difficulty tier.
type TierSchedule struct {
	tiers   []TierConfig
	enabled bool
	initial int // 0-based index
}

// NewTierSchedule creates a schedule from config.
// An empty tier list falls back to the default schedule.
func NewTierSchedule(cfg DifficultyConfig) *TierSchedule {
	tiers := cfg.Tiers
	if len(tiers) == 0 {
		tiers = DefaultApplesConfig().Difficulty.Tiers
	}
	s := &TierSchedule{
		tiers:   append([]TierConfig(nil), tiers...),
		enabled: cfg.Enabled,
	}
	s.SetInitialTier(cfg.InitialTier)
	return s
}

// SetInitialTier overrides the starting tier (1-based, clamped).
func (s *TierSchedule) SetInitialTier(level int) {
	s.initial = clampIndex(level-1, len(s.tiers))
}

// SetEnabled enables or disables progression.
func (s *TierSchedule) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// IsEnabled returns whether the tier follows elapsed time.
func (s *TierSchedule) IsEnabled() bool {
	return s.enabled && len(s.tiers) > 1
}

// Len returns the number of tiers.
func (s *TierSchedule) Len() int {
	return len(s.tiers)
}

// At returns the tier for the given elapsed seconds.
// The result never drops below the initial tier.
func (s *TierSchedule) At(elapsed int) Tier {
	idx := s.initial
	if s.enabled {
		for i, t := range s.tiers {
			if elapsed >= t.FromSeconds && i > idx {
				idx = i
			}
		}
	}
	return Tier{Level: idx + 1, TierConfig: s.tiers[idx]}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
