// Package apples implements the falling apples arcade game: a basket at the
// bottom of the field catches apples that fall faster as the session goes on.
//
// Engine owns the simulation and its three periodic ticks. Game adapts it to
// the platform's registry.Game interface for terminal hosts.
package apples

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/apple-arcade/internal/config"
	"github.com/vovakirdan/apple-arcade/internal/core"
)

// Phase is the lifecycle state of an engine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseGameOver
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Tick task names, in registration order.
const (
	taskSpawn   = "spawn"
	taskPhysics = "physics"
	taskElapsed = "elapsed"
)

// Apple is one falling object in field units.
type Apple struct {
	X, Y   float64
	Caught bool // resolved as a catch; dropped on the next physics tick
}

// EventKind identifies a notable moment in a session.
type EventKind int

const (
	EventCatch EventKind = iota + 1
	EventMiss
	EventTierUp
)

// Event is reported to the OnEvent listener as it happens.
type Event struct {
	Kind  EventKind
	Score int
	Lives int
	Tier  int
}

// Field is the playfield geometry in logical units.
type Field struct {
	Width       float64
	Height      float64
	BasketWidth float64
}

// Engine is one player's game session and the ticks that drive it.
// It is not safe for concurrent use; the host serializes all calls.
type Engine struct {
	cfg      config.ApplesConfig
	schedule *config.TierSchedule
	field    Field

	phase   Phase
	score   int
	lives   int
	elapsed int // seconds
	basketX float64
	apples  []Apple
	tier    config.Tier

	rng   *rand.Rand
	ticks *Ticker

	onGameOver func(finalScore int)
	onEvent    func(Event)
	reported   bool
}

// NewEngine creates an idle engine. All ticks are registered but not armed.
func NewEngine(cfg config.ApplesConfig, seed int64) *Engine {
	e := &Engine{
		cfg:      cfg,
		schedule: config.NewTierSchedule(cfg.Difficulty),
		field: Field{
			Width:       cfg.Field.Width,
			Height:      cfg.Field.Height,
			BasketWidth: cfg.Field.BasketWidth,
		},
		phase: PhaseIdle,
		lives: cfg.Rules.Lives,
		rng:   rand.New(rand.NewSource(seed)), //#nosec G404 -- gameplay randomness
		ticks: NewTicker(),
	}
	e.tier = e.schedule.At(0)
	e.basketX = e.centeredBasket()

	e.ticks.Every(taskSpawn, e.tier.SpawnInterval(), e.spawn)
	e.ticks.Every(taskPhysics, cfg.Rules.PhysicsInterval(), e.physics)
	e.ticks.Every(taskElapsed, cfg.Rules.ElapsedInterval(), e.tickElapsed)
	return e
}

// OnGameOver sets the completion callback. It fires once per session with
// the final score at the moment the last life is lost.
func (e *Engine) OnGameOver(fn func(finalScore int)) {
	e.onGameOver = fn
}

// OnEvent sets a listener for catches, misses and tier changes.
// Misses are reported before the game-over callback. The listener runs
// inside a tick and must not call back into the engine.
func (e *Engine) OnEvent(fn func(Event)) {
	e.onEvent = fn
}

// Start begins a fresh session from any phase.
// Previously armed ticks are cancelled before the new ones are armed.
func (e *Engine) Start() {
	e.ticks.Stop()

	e.phase = PhaseRunning
	e.score = 0
	e.lives = e.cfg.Rules.Lives
	e.elapsed = 0
	e.apples = nil
	e.reported = false
	e.tier = e.schedule.At(0)
	e.basketX = e.centeredBasket()

	e.ticks.Reset(taskSpawn, e.tier.SpawnInterval())
	e.ticks.Start()
}

// TogglePause freezes or resumes every tick. No-op unless running or paused.
// Each tick keeps the part of its period already served, so pausing never
// delays the elapsed clock.
func (e *Engine) TogglePause() {
	switch e.phase {
	case PhaseRunning:
		e.phase = PhasePaused
		e.ticks.Pause()
	case PhasePaused:
		e.phase = PhaseRunning
		e.ticks.Resume()
	}
}

// MoveBasketBy steps the basket left (dir < 0) or right (dir > 0).
// The step size depends only on the field width.
func (e *Engine) MoveBasketBy(dir int) {
	if e.phase != PhaseRunning || dir == 0 {
		return
	}
	step := e.cfg.Rules.Step(e.field.Width)
	if dir < 0 {
		step = -step
	}
	e.basketX = e.clampBasket(e.basketX + step)
}

// MoveBasketTo centers the basket on x, clamped to the field.
func (e *Engine) MoveBasketTo(x float64) {
	if e.phase != PhaseRunning {
		return
	}
	e.basketX = e.clampBasket(x - e.field.BasketWidth/2)
}

// SetField updates the playfield geometry. The basket is re-clamped now and
// on every physics tick; spawn bounds follow the latest width.
func (e *Engine) SetField(width, height, basketWidth float64) {
	e.field = Field{Width: width, Height: height, BasketWidth: basketWidth}
	e.basketX = e.clampBasket(e.basketX)
}

// Advance drives the ticks by dt of host time.
func (e *Engine) Advance(dt time.Duration) {
	e.ticks.Advance(dt)
}

// Shutdown cancels all ticks. The engine stays readable but inert.
func (e *Engine) Shutdown() {
	e.ticks.Stop()
}

// Phase returns the lifecycle state.
func (e *Engine) Phase() Phase { return e.phase }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// Lives returns the remaining lives.
func (e *Engine) Lives() int { return e.lives }

// MaxLives returns the lives a session starts with.
func (e *Engine) MaxLives() int { return e.cfg.Rules.Lives }

// Field returns the current playfield geometry.
func (e *Engine) Field() Field { return e.field }

// CatchLine returns the y coordinate at which apples are resolved.
func (e *Engine) CatchLine() float64 {
	return e.field.Height - e.cfg.Field.CatchLineOffset
}

// spawn drops a new apple at the top, away from the side edges.
func (e *Engine) spawn() {
	if e.phase != PhaseRunning {
		return
	}
	lo, hi := e.field.BasketWidth, e.field.Width-e.field.BasketWidth
	x := e.field.Width / 2
	if hi > lo {
		x = lo + e.rng.Float64()*(hi-lo)
	}
	e.apples = append(e.apples, Apple{X: x, Y: 0})
}

// physics moves apples down and resolves the ones reaching the catch line.
func (e *Engine) physics() {
	if e.phase != PhaseRunning {
		return
	}
	e.basketX = e.clampBasket(e.basketX)

	catchY := e.CatchLine()
	half := e.field.BasketWidth / 2
	kept := e.apples[:0]

	for i, a := range e.apples {
		if a.Caught {
			continue
		}
		a.Y += e.tier.FallSpeed
		if a.Y >= catchY {
			if a.X >= e.basketX-half && a.X <= e.basketX+half {
				e.score++
				a.Caught = true
				e.emit(EventCatch)
			} else {
				e.lives = max(0, e.lives-1)
				e.emit(EventMiss)
				if e.lives == 0 {
					e.apples = append(kept, e.apples[i+1:]...)
					e.finish()
					return
				}
				continue
			}
		}
		kept = append(kept, a)
	}
	e.apples = kept
}

// tickElapsed counts one second and moves to the matching tier.
func (e *Engine) tickElapsed() {
	if e.phase != PhaseRunning {
		return
	}
	e.elapsed++

	next := e.schedule.At(e.elapsed)
	if next.SpawnInterval() != e.tier.SpawnInterval() {
		e.ticks.Reset(taskSpawn, next.SpawnInterval())
	}
	changed := next.Level != e.tier.Level
	e.tier = next
	if changed {
		e.emit(EventTierUp)
	}
}

func (e *Engine) emit(kind EventKind) {
	if e.onEvent != nil {
		e.onEvent(Event{Kind: kind, Score: e.score, Lives: e.lives, Tier: e.tier.Level})
	}
}

// finish ends the session and reports the score once.
func (e *Engine) finish() {
	e.phase = PhaseGameOver
	e.ticks.Stop()
	if e.reported {
		return
	}
	e.reported = true
	if e.onGameOver != nil {
		e.onGameOver(e.score)
	}
}

func (e *Engine) centeredBasket() float64 {
	return e.clampBasket((e.field.Width - e.field.BasketWidth) / 2)
}

func (e *Engine) clampBasket(x float64) float64 {
	return core.ClampF(x, 0, e.field.Width-e.field.BasketWidth)
}
