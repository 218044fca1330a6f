package apples

import "math"

// Snapshot is a read-only copy of everything a host needs to draw a frame.
type Snapshot struct {
	Phase       Phase
	Score       int
	Lives       int
	MaxLives    int
	Elapsed     int // seconds
	Tier        int // 1-based
	FallSpeed   float64
	SpawnMS     int
	BasketX     float64
	Field       Field
	CatchLine   float64
	Apples      []Apple
	VirtualTime int64 // ticker clock in milliseconds
}

// Running reports whether a session is in progress, paused or not.
func (s Snapshot) Running() bool {
	return s.Phase == PhaseRunning || s.Phase == PhasePaused
}

// Snapshot returns the current state. The apple slice is a copy.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Phase:       e.phase,
		Score:       e.score,
		Lives:       e.lives,
		MaxLives:    e.cfg.Rules.Lives,
		Elapsed:     e.elapsed,
		Tier:        e.tier.Level,
		FallSpeed:   e.tier.FallSpeed,
		SpawnMS:     e.tier.SpawnIntervalMS,
		BasketX:     e.basketX,
		Field:       e.field,
		CatchLine:   e.CatchLine(),
		Apples:      append([]Apple(nil), e.apples...),
		VirtualTime: e.ticks.Now().Milliseconds(),
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (s *Snapshot) Hash() uint64 {
	h := uint64(s.Phase)             //#nosec G115 -- hash computation
	h = h*31 + uint64(s.Score)       //#nosec G115 -- hash computation
	h = h*31 + uint64(s.Lives)       //#nosec G115 -- hash computation
	h = h*31 + uint64(s.Elapsed)     //#nosec G115 -- hash computation
	h = h*31 + uint64(s.Tier)        //#nosec G115 -- hash computation
	h = h*31 + uint64(s.VirtualTime) //#nosec G115 -- hash computation
	h = h*31 + math.Float64bits(s.BasketX)

	for _, a := range s.Apples {
		h = h*31 + math.Float64bits(a.X)
		h = h*31 + math.Float64bits(a.Y)
		if a.Caught {
			h = h*31 + 1
		}
	}
	return h
}
