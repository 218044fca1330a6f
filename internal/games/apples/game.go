package apples

import (
	"time"

	"github.com/vovakirdan/apple-arcade/internal/config"
	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/registry"
)

// GameID is the registry and score-table identifier.
const GameID = "apples"

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. An empty name clears it;
// an unknown name is rejected and leaves the current preset in place.
func SetDifficultyPreset(preset string) error {
	if preset == "" {
		difficultyPreset = ""
		return nil
	}
	p, err := config.ParseDifficultyPreset(preset)
	if err != nil {
		return err
	}
	difficultyPreset = p
	return nil
}

func init() {
	registry.Register(GameID, func() registry.Game { return New() })
}

// Game adapts Engine to registry.Game: each Step applies one frame of input
// and advances the engine by one host tick.
type Game struct {
	engine     *Engine
	cfg        config.ApplesConfig
	runtime    core.RuntimeConfig
	tick       time.Duration
	layout     layout
	onGameOver func(finalScore int)
	onEvent    func(Event)
}

// New creates a new falling apples game. Call Reset before use.
func New() *Game {
	return &Game{}
}

// NewWithConfig creates a game bound to an explicit config instead of the
// search path. Used by tests and embedders.
func NewWithConfig(cfg config.ApplesConfig) *Game {
	return &Game{cfg: cfg}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return GameID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Falling Apples"
}

// OnGameOver registers the completion callback. It survives Reset.
func (g *Game) OnGameOver(fn func(finalScore int)) {
	g.onGameOver = fn
}

// OnEvent registers a listener for engine events. It survives Reset.
func (g *Game) OnEvent(fn func(Event)) {
	g.onEvent = fn
}

// Reset loads config and builds an idle engine sized for the screen.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg := g.cfg
	if cfg.Field.Width == 0 {
		loaded, err := config.LoadApples(configPath)
		if err != nil {
			loaded = config.DefaultApplesConfig()
		}
		if difficultyPreset != "" {
			config.ApplyApplesPreset(&loaded, difficultyPreset)
		}
		cfg = loaded
	}

	if g.engine != nil {
		g.engine.Shutdown()
	}
	g.engine = NewEngine(cfg, runtime.Seed)
	g.engine.OnGameOver(g.reportGameOver)
	g.engine.OnEvent(g.reportEvent)

	rate := runtime.TickRate
	if rate <= 0 {
		rate = core.DefaultConfig().TickRate
	}
	g.tick = time.Second / time.Duration(rate)
	g.layout = newLayout(runtime.ScreenW, runtime.ScreenH, g.engine.Field())
}

// Step applies one frame of input and advances the simulation by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	e := g.engine

	if in.Has(core.ActionRestart) {
		e.Start()
	}

	switch e.Phase() {
	case PhaseIdle, PhaseGameOver:
		if in.Has(core.ActionStart) {
			e.Start()
		}
	case PhaseRunning, PhasePaused:
		if in.Has(core.ActionPause) {
			e.TogglePause()
		}
	}

	for range in.Count(core.ActionLeft) {
		e.MoveBasketBy(-1)
	}
	for range in.Count(core.ActionRight) {
		e.MoveBasketBy(1)
	}
	if in.HasPointer {
		e.MoveBasketTo(g.layout.fieldX(in.PointerX))
	}

	e.Advance(g.tick)
	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	s := g.engine.Snapshot()
	return core.GameState{
		Score:    s.Score,
		Lives:    s.Lives,
		Running:  s.Running(),
		GameOver: s.Phase == PhaseGameOver,
		Paused:   s.Phase == PhasePaused,
	}
}

// Pause freezes a running session. Hosts call it when the game loses focus.
func (g *Game) Pause() {
	if g.engine.Phase() == PhaseRunning {
		g.engine.TogglePause()
	}
}

// Engine exposes the underlying engine.
func (g *Game) Engine() *Engine {
	return g.engine
}

// Close stops all ticks. The game must be Reset before reuse.
func (g *Game) Close() {
	if g.engine != nil {
		g.engine.Shutdown()
	}
}

func (g *Game) reportGameOver(finalScore int) {
	if g.onGameOver != nil {
		g.onGameOver(finalScore)
	}
}

func (g *Game) reportEvent(ev Event) {
	if g.onEvent != nil {
		g.onEvent(ev)
	}
}
