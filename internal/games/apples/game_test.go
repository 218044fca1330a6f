package apples

import (
	"strings"
	"testing"

	"github.com/vovakirdan/apple-arcade/internal/config"
	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/registry"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g := NewWithConfig(config.DefaultApplesConfig())
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 99})
	return g
}

func frame(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestGameRegistered(t *testing.T) {
	if !registry.Exists(GameID) {
		t.Fatal("apples should register itself")
	}
	g, err := registry.Create(GameID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := g.(registry.GameOverNotifier); !ok {
		t.Error("Game should implement GameOverNotifier")
	}
	if _, ok := g.(registry.Pauser); !ok {
		t.Error("Game should implement Pauser")
	}
}

func TestGameStartAndPause(t *testing.T) {
	g := newTestGame(t)

	res := g.Step(frame())
	if res.State.Running {
		t.Fatal("game should wait for start")
	}

	res = g.Step(frame(core.ActionStart))
	if !res.State.Running || res.State.Lives != 4 {
		t.Fatalf("after start: %+v", res.State)
	}

	res = g.Step(frame(core.ActionPause))
	if !res.State.Paused {
		t.Error("Pause action should pause")
	}
	res = g.Step(frame(core.ActionPause))
	if res.State.Paused {
		t.Error("second Pause action should resume")
	}

	g.Pause()
	if !g.State().Paused {
		t.Error("Pause() should freeze a running game")
	}
	g.Pause()
	if !g.State().Paused {
		t.Error("Pause() must not toggle an already paused game")
	}
}

func TestGameMovesBasketPerActionCount(t *testing.T) {
	g := newTestGame(t)
	g.Step(frame(core.ActionStart))
	start := g.Engine().Snapshot().BasketX

	g.Step(frame(core.ActionRight, core.ActionRight, core.ActionRight))
	if x := g.Engine().Snapshot().BasketX; x != start+60 {
		t.Errorf("BasketX = %v, expected %v", x, start+60)
	}

	g.Step(frame(core.ActionLeft))
	if x := g.Engine().Snapshot().BasketX; x != start+40 {
		t.Errorf("BasketX = %v, expected %v", x, start+40)
	}
}

func TestGamePointerMovesBasket(t *testing.T) {
	g := newTestGame(t)
	g.Render(core.NewScreen(80, 24))
	g.Step(frame(core.ActionStart))

	in := core.NewInputFrame()
	in.Point(g.layout.inner.X)
	g.Step(in)
	if x := g.Engine().Snapshot().BasketX; x != 0 {
		t.Errorf("click at the left edge: BasketX = %v, expected 0", x)
	}

	in = core.NewInputFrame()
	in.Point(g.layout.inner.Right() - 1)
	g.Step(in)
	if x := g.Engine().Snapshot().BasketX; x != 330 {
		t.Errorf("click at the right edge: BasketX = %v, expected 330", x)
	}
}

func TestGameForwardsGameOver(t *testing.T) {
	g := newTestGame(t)
	calls := 0
	g.OnGameOver(func(int) { calls++ })

	// Re-resetting keeps the callback
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3})
	g.Step(frame(core.ActionStart))

	for i := 0; i < 60*60*10 && !g.State().GameOver; i++ {
		g.Step(frame())
	}
	if !g.State().GameOver {
		t.Fatal("an idle basket should eventually lose every life")
	}
	if calls != 1 {
		t.Errorf("callback fired %d times, expected 1", calls)
	}

	g.Step(frame(core.ActionRestart))
	if s := g.State(); !s.Running || s.Score != 0 || s.Lives != 4 {
		t.Errorf("restart after game over: %+v", s)
	}
}

func TestGameRender(t *testing.T) {
	g := newTestGame(t)
	scr := core.NewScreen(80, 24)

	g.Render(scr)
	if !strings.Contains(scr.String(), "Press Enter to start") {
		t.Error("idle screen should show the start prompt")
	}
	if !strings.Contains(scr.Row(0), "Score: 0") || !strings.Contains(scr.Row(0), "♥ ♥ ♥ ♥") {
		t.Errorf("HUD row = %q", scr.Row(0))
	}

	g.Step(frame(core.ActionStart))
	g.Engine().apples = []Apple{{X: 210, Y: 100}}
	scr.Clear()
	g.Render(scr)

	out := scr.String()
	if !strings.ContainsRune(out, AppleChar) {
		t.Error("apple not drawn")
	}
	if !strings.ContainsRune(out, BasketLeft) || !strings.ContainsRune(out, BasketRight) {
		t.Error("basket not drawn")
	}
	if strings.Contains(out, "Press Enter") {
		t.Error("start prompt should disappear once running")
	}

	g.Step(frame(core.ActionPause))
	scr.Clear()
	g.Render(scr)
	if !strings.Contains(scr.String(), "PAUSED") {
		t.Error("paused overlay missing")
	}
}

func TestGameRenderTooSmall(t *testing.T) {
	g := newTestGame(t)
	scr := core.NewScreen(30, 8)
	g.Render(scr)

	if !strings.Contains(scr.String(), "too small") {
		t.Errorf("expected a too-small notice, got:\n%s", scr.String())
	}
}

func TestLayoutKeepsAspect(t *testing.T) {
	f := Field{Width: 420, Height: 500, BasketWidth: 90}
	l := newLayout(200, 40, f)

	if l.tooSmall {
		t.Fatal("200x40 should fit")
	}
	if l.inner.H != 37 {
		t.Errorf("inner height = %d, expected 37", l.inner.H)
	}
	// 37 rows * 420/500 * 2 ≈ 62 columns
	if l.inner.W != 62 {
		t.Errorf("inner width = %d, expected 62", l.inner.W)
	}
	if l.box.X+l.box.W/2 < 95 || l.box.X+l.box.W/2 > 105 {
		t.Errorf("box should be centered, got %+v", l.box)
	}
}

func TestSetDifficultyPreset(t *testing.T) {
	t.Cleanup(func() { difficultyPreset = "" })

	tests := []struct {
		in       string
		wantErr  bool
		expected config.DifficultyPreset
	}{
		{"hard", false, config.DifficultyHard},
		{"extreme", true, config.DifficultyHard},
		{"", false, ""},
		{"fixed", false, config.DifficultyFixed},
		{"EASY", true, config.DifficultyFixed},
	}
	for _, tt := range tests {
		err := SetDifficultyPreset(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetDifficultyPreset(%q): got err %v, expected error %v", tt.in, err, tt.wantErr)
		}
		if difficultyPreset != tt.expected {
			t.Errorf("SetDifficultyPreset(%q): preset %q, expected %q", tt.in, difficultyPreset, tt.expected)
		}
	}
}
