package term

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/apple-arcade/internal/config"
	"github.com/vovakirdan/apple-arcade/internal/core"
	"github.com/vovakirdan/apple-arcade/internal/games/apples"
	"github.com/vovakirdan/apple-arcade/internal/ledger"
	"github.com/vovakirdan/apple-arcade/internal/storage"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func newHost(t *testing.T, s tcell.Screen, opts Options) (*Host, *apples.Game) {
	t.Helper()
	game := apples.NewWithConfig(config.DefaultApplesConfig())
	opts.Runtime = core.RuntimeConfig{TickRate: 60, Seed: 1}
	return NewHost(context.Background(), s, game, opts), game
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := range w {
		r, _, _, _ := s.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func screenText(s tcell.Screen) string {
	_, h := s.Size()
	rows := make([]string, h)
	for y := range h {
		rows[y] = row(s, y)
	}
	return strings.Join(rows, "\n")
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHostDrawsIdleScreen(t *testing.T) {
	s := newScreen(t, 60, 20)
	h, _ := newHost(t, s, Options{})

	h.Draw()
	text := screenText(s)
	if !strings.Contains(text, "FALLING APPLES") {
		t.Errorf("idle screen missing title:\n%s", text)
	}
	if !strings.Contains(row(s, 19), "q quit") {
		t.Errorf("status row = %q, expected key hints", row(s, 19))
	}
}

func TestHostKeys(t *testing.T) {
	s := newScreen(t, 60, 20)
	h, game := newHost(t, s, Options{})

	if !h.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)) {
		t.Fatal("enter should not quit")
	}
	if st := h.Tick(); !st.Running {
		t.Fatalf("state after enter = %+v, expected running", st)
	}

	start := game.Engine().Snapshot().BasketX
	h.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	h.HandleEvent(key('a'))
	h.Tick()
	if got := game.Engine().Snapshot().BasketX; got >= start {
		t.Errorf("basket at %v after moving left, expected less than %v", got, start)
	}

	mid := game.Engine().Snapshot().BasketX
	h.HandleEvent(key('L'))
	h.Tick()
	moved := game.Engine().Snapshot().BasketX
	if moved <= mid {
		t.Errorf("basket at %v after L, expected more than %v", moved, mid)
	}
	h.HandleEvent(key('J'))
	h.Tick()
	if got := game.Engine().Snapshot().BasketX; got != mid {
		t.Errorf("basket at %v after J, expected %v", got, mid)
	}

	h.HandleEvent(key('p'))
	if st := h.Tick(); !st.Paused {
		t.Errorf("state after p = %+v, expected paused", st)
	}

	tests := []struct {
		name string
		ev   *tcell.EventKey
	}{
		{"q", key('q')},
		{"Q", key('Q')},
		{"ctrl+c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)},
	}
	for _, tt := range tests {
		if h.HandleEvent(tt.ev) {
			t.Errorf("%s: got continue, expected quit", tt.name)
		}
	}
}

func TestHostEscapePauses(t *testing.T) {
	s := newScreen(t, 60, 20)
	h, _ := newHost(t, s, Options{})

	h.HandleEvent(key(' '))
	h.Tick()
	h.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if st := h.Tick(); !st.Paused {
		t.Errorf("state after esc = %+v, expected paused", st)
	}
}

func TestHostMouseMovesBasket(t *testing.T) {
	s := newScreen(t, 60, 20)
	h, game := newHost(t, s, Options{})

	h.HandleEvent(key(' '))
	h.Tick()

	h.HandleEvent(tcell.NewEventMouse(1, 5, tcell.Button1, tcell.ModNone))
	h.Tick()
	left := game.Engine().Snapshot().BasketX

	h.HandleEvent(tcell.NewEventMouse(58, 5, tcell.Button1, tcell.ModNone))
	h.Tick()
	right := game.Engine().Snapshot().BasketX
	if right <= left {
		t.Errorf("basket at %v after right click, expected more than %v", right, left)
	}

	// Motion without a button held is ignored.
	h.HandleEvent(tcell.NewEventMouse(1, 5, tcell.ButtonNone, tcell.ModNone))
	h.Tick()
	if got := game.Engine().Snapshot().BasketX; got != right {
		t.Errorf("basket moved to %v on hover, expected %v", got, right)
	}
}

func TestHostResize(t *testing.T) {
	s := newScreen(t, 60, 20)
	h, _ := newHost(t, s, Options{})

	s.SetSize(80, 30)
	h.HandleEvent(tcell.NewEventResize(80, 30))
	if h.buf.Width() != 80 || h.buf.Height() != 29 {
		t.Errorf("buffer is %dx%d, expected 80x29", h.buf.Width(), h.buf.Height())
	}

	h.Draw()
	if !strings.Contains(row(s, 29), "q quit") {
		t.Errorf("status row after resize = %q", row(s, 29))
	}
}

func TestHostTooSmall(t *testing.T) {
	s := newScreen(t, 20, 6)
	h, _ := newHost(t, s, Options{})

	h.Draw()
	if text := screenText(s); !strings.Contains(text, "too small") {
		t.Errorf("expected a too-small notice:\n%s", text)
	}
}

func TestHostSubmitsFinishedGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "term.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	player := ledger.AddressFromName("tester")
	s := newScreen(t, 30, 12)
	h, game := newHost(t, s, Options{
		Submitter: ledger.NewSubmitter(store, nil, apples.GameID, nil),
		Player:    player,
	})

	h.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	for i := 0; i < 200_000 && !game.State().GameOver; i++ {
		h.Tick()
	}
	if !game.State().GameOver {
		t.Fatal("game never ended")
	}
	h.Wait()

	score := game.State().Score
	expected := fmt.Sprintf("Score %d saved locally", score)
	if h.Status() != expected {
		t.Errorf("status = %q, expected %q", h.Status(), expected)
	}

	history, err := store.PlayerHistory(apples.GameID, player.String(), 10)
	if err != nil {
		t.Fatalf("PlayerHistory() failed: %v", err)
	}
	if len(history) != 1 || history[0].Score != score {
		t.Errorf("history = %+v, expected one row with score %d", history, score)
	}
}

func TestHostWithoutSubmitter(t *testing.T) {
	s := newScreen(t, 60, 20)
	h, _ := newHost(t, s, Options{})

	h.finished = append(h.finished, 12)
	h.Tick()
	if h.Status() != "Final score 12" {
		t.Errorf("status = %q, expected %q", h.Status(), "Final score 12")
	}
	if !strings.HasPrefix(row(s, 19), "Final score 12") {
		t.Errorf("status row = %q", row(s, 19))
	}
}

func TestLoopQuits(t *testing.T) {
	s := newScreen(t, 60, 20)
	game := apples.NewWithConfig(config.DefaultApplesConfig())

	if err := s.PostEvent(key('q')); err != nil {
		t.Fatalf("PostEvent() failed: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- Loop(context.Background(), s, game, Options{Runtime: core.RuntimeConfig{TickRate: 60, Seed: 1}})
	}()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Loop() = %v, expected nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Loop() did not return after q")
	}
}

func TestLoopStopsOnContext(t *testing.T) {
	s := newScreen(t, 60, 20)
	game := apples.NewWithConfig(config.DefaultApplesConfig())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Loop(ctx, s, game, Options{Runtime: core.RuntimeConfig{TickRate: 60, Seed: 1}})
	}()
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Loop() = %v, expected nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Loop() did not return after cancel")
	}
}
