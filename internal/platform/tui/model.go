package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/registry"
)

// GameOverMsg reports a finished session to the parent model.
type GameOverMsg struct {
	GameID string
	Score  int
}

// finished collects game-over callbacks fired inside Step.
// It is shared by copies of the model, so it lives behind a pointer.
type finished struct {
	scores []int
}

// GameModel hosts one registry.Game: it turns key and mouse messages into
// input frames, steps the game on every tick and renders it.
type GameModel struct {
	game      registry.Game
	screen    *core.Screen
	config    core.RuntimeConfig
	input     core.InputFrame
	gameState core.GameState
	keys      GameKeyMap
	done      *finished
}

// NewGameModel creates a model for game sized to cfg.
func NewGameModel(game registry.Game, cfg core.RuntimeConfig) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	m := GameModel{
		game:   game,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config: cfg,
		input:  core.NewInputFrame(),
		keys:   DefaultGameKeyMap(),
		done:   &finished{},
	}

	if n, ok := game.(registry.GameOverNotifier); ok {
		done := m.done
		n.OnGameOver(func(score int) {
			done.scores = append(done.scores, score)
		})
	}

	game.Reset(cfg)
	m.gameState = game.State()
	return m
}

// Init starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (GameModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+s" {
			m.saveScreenshot()
			return m, nil
		}
		m.keys.MapKeyToFrame(msg, &m.input)
		return m, nil

	case tea.MouseMsg:
		MapMouseToFrame(msg, &m.input)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// Resize changes the screen size. The session keeps running; only the
// on-screen layout changes.
func (m *GameModel) Resize(width, height int) {
	m.config.ScreenW = width
	m.config.ScreenH = height
	m.screen.Resize(width, height)
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (GameModel, tea.Cmd) {
	result := m.game.Step(m.input)
	m.gameState = result.State
	m.input.Clear()

	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}
	for _, score := range m.done.scores {
		msg := GameOverMsg{GameID: m.game.ID(), Score: score}
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	m.done.scores = m.done.scores[:0]

	return m, tea.Batch(cmds...)
}

// Pause freezes the game if it supports pausing.
func (m GameModel) Pause() {
	if p, ok := m.game.(registry.Pauser); ok {
		p.Pause()
	}
}

// State returns the game state seen on the last tick.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// Game returns the hosted game.
func (m GameModel) Game() registry.Game {
	return m.game
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.screen.Clear()
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".arcade", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the game.
func (m GameModel) View() string {
	m.screen.Clear()
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}
