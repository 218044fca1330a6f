// Package term hosts a game directly on a tcell screen, without Bubble Tea.
// It is the lightweight host used by "arcade play --host tcell".
package term

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/ledger"
	"github.com/vovakirdan/apple-arcade/internal/registry"
)

const submitTimeout = 5 * time.Second

// colors maps core.Color to the same palette indexes the Bubble Tea host uses.
var colors = map[core.Color]tcell.Color{
	core.ColorDefault:      tcell.ColorDefault,
	core.ColorRed:          tcell.PaletteColor(1),
	core.ColorGreen:        tcell.PaletteColor(2),
	core.ColorYellow:       tcell.PaletteColor(3),
	core.ColorBlue:         tcell.PaletteColor(4),
	core.ColorMagenta:      tcell.PaletteColor(5),
	core.ColorCyan:         tcell.PaletteColor(6),
	core.ColorWhite:        tcell.PaletteColor(7),
	core.ColorBrightRed:    tcell.PaletteColor(9),
	core.ColorBrightGreen:  tcell.PaletteColor(10),
	core.ColorBrightYellow: tcell.PaletteColor(11),
	core.ColorBrightWhite:  tcell.PaletteColor(15),
	core.ColorOrange:       tcell.PaletteColor(208),
	core.ColorBrown:        tcell.PaletteColor(130),
	core.ColorGray:         tcell.PaletteColor(245),
}

// Options configures a tcell session.
type Options struct {
	Runtime core.RuntimeConfig

	// Submitter records finished games. Nil skips recording.
	Submitter *ledger.Submitter
	Player    ledger.Address

	Logger *log.Logger
}

// Host drives one game on a tcell screen. Events go through HandleEvent and
// the simulation advances on Tick; Run wires both to a real terminal.
type Host struct {
	ctx    context.Context
	screen tcell.Screen
	game   registry.Game
	buf    *core.Screen
	input  core.InputFrame
	opts   Options
	log    *log.Logger

	// finished collects game-over callbacks fired inside Step.
	finished []int

	mu     sync.Mutex
	status string
	wg     sync.WaitGroup
}

// NewHost resets game to fit screen and returns an idle host.
// The bottom row of the screen is kept for status messages.
func NewHost(ctx context.Context, screen tcell.Screen, game registry.Game, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w, h := screen.Size()
	opts.Runtime.ScreenW, opts.Runtime.ScreenH = w, max(0, h-1)
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = time.Now().UnixNano()
	}

	host := &Host{
		ctx:    ctx,
		screen: screen,
		game:   game,
		buf:    core.NewScreen(opts.Runtime.ScreenW, opts.Runtime.ScreenH),
		input:  core.NewInputFrame(),
		opts:   opts,
		log:    logger,
	}

	if n, ok := game.(registry.GameOverNotifier); ok {
		n.OnGameOver(func(score int) {
			host.finished = append(host.finished, score)
		})
	}
	game.Reset(opts.Runtime)
	return host
}

// HandleEvent applies a terminal event. It returns false when the player
// asked to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev)

	case *tcell.EventMouse:
		x, y := ev.Position()
		if ev.Buttons()&tcell.Button1 != 0 && y < h.buf.Height() {
			h.input.Point(x)
		}

	case *tcell.EventResize:
		w, ht := ev.Size()
		h.Resize(w, ht)
		h.screen.Sync()
	}
	return true
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		h.input.Set(core.ActionLeft)
	case tcell.KeyRight:
		h.input.Set(core.ActionRight)
	case tcell.KeyEnter:
		h.input.Set(core.ActionStart)
	case tcell.KeyEscape:
		h.input.Set(core.ActionBack)
		h.pause()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'a', 'A', 'j', 'J':
			h.input.Set(core.ActionLeft)
		case 'd', 'D', 'l', 'L':
			h.input.Set(core.ActionRight)
		case ' ':
			h.input.Set(core.ActionStart)
		case 'p', 'P':
			h.input.Set(core.ActionPause)
		case 'r', 'R':
			h.input.Set(core.ActionRestart)
		}
	}
	return true
}

// Resize fits the game area to a new terminal size.
func (h *Host) Resize(width, height int) {
	h.opts.Runtime.ScreenW = width
	h.opts.Runtime.ScreenH = max(0, height-1)
	h.buf.Resize(h.opts.Runtime.ScreenW, h.opts.Runtime.ScreenH)
}

func (h *Host) pause() {
	if p, ok := h.game.(registry.Pauser); ok {
		p.Pause()
	}
}

// Tick steps the game with the input gathered since the last tick, hands
// finished sessions to the submitter and redraws.
func (h *Host) Tick() core.GameState {
	res := h.game.Step(h.input)
	h.input.Clear()

	for _, score := range h.finished {
		h.submit(score)
	}
	h.finished = h.finished[:0]

	h.Draw()
	return res.State
}

func (h *Host) submit(score int) {
	if h.opts.Submitter == nil {
		h.setStatus(fmt.Sprintf("Final score %d", score))
		return
	}

	h.setStatus("Submitting score...")
	sub, player := h.opts.Submitter, h.opts.Player
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(h.ctx, submitTimeout)
		defer cancel()

		res, err := sub.Submit(ctx, player, score)
		if err != nil {
			h.log.Error("submit score", "score", score, "err", err)
			h.setStatus("Could not save score: " + err.Error())
			return
		}
		h.setStatus(res.Message())
	}()
}

// Wait blocks until every pending submission has finished.
func (h *Host) Wait() {
	h.wg.Wait()
}

// Status returns the message shown on the bottom row.
func (h *Host) Status() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Host) setStatus(s string) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

// Draw renders the game and the status row and shows the result.
func (h *Host) Draw() {
	h.screen.Clear()
	h.buf.Clear()
	h.game.Render(h.buf)

	for y := range h.buf.Height() {
		for x := range h.buf.Width() {
			c := h.buf.GetCell(x, y)
			h.screen.SetContent(x, y, c.Rune, nil, styleFor(c.Color))
		}
	}

	status := h.Status()
	if status == "" {
		status = "q quit · p pause · r restart"
	}
	style := styleFor(core.ColorGray)
	x := 0
	for _, r := range status {
		h.screen.SetContent(x, h.buf.Height(), r, nil, style)
		x++
	}
	h.screen.Show()
}

func styleFor(c core.Color) tcell.Style {
	fg, ok := colors[c]
	if !ok {
		fg = tcell.ColorDefault
	}
	return tcell.StyleDefault.Foreground(fg)
}

// Run plays game full-screen until the player quits or ctx is done.
// Pending score submissions finish before it returns.
func Run(ctx context.Context, game registry.Game, opts Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("term: create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseButtonEvents, tcell.MouseDragEvents)
	screen.HideCursor()

	return Loop(ctx, screen, game, opts)
}

// Loop runs the event and tick loop on an initialized screen.
func Loop(ctx context.Context, screen tcell.Screen, game registry.Game, opts Options) error {
	h := NewHost(ctx, screen, game, opts)
	defer h.Wait()

	rate := opts.Runtime.TickRate
	if rate <= 0 {
		rate = core.DefaultConfig().TickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	h.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !h.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			h.Tick()
		}
	}
}
