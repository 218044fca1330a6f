package apples

import (
	"fmt"
	"math"

	"github.com/vovakirdan/apple-arcade/internal/core"
)

// Visual characters for rendering
const (
	AppleChar   = '●'
	CaughtChar  = '✦'
	BasketLeft  = '\\'
	BasketMid   = '▄'
	BasketRight = '/'
	GrassChar   = '▔'
	CatchChar   = '┈'
)

// Minimum playfield size in cells.
const (
	minFieldCols = 20
	minFieldRows = 10
)

// layout maps logical field units onto screen cells.
// Terminal cells are roughly twice as tall as wide, which the column
// scale compensates for.
type layout struct {
	box      core.Rect // border, inclusive
	inner    core.Rect // drawable field area
	scaleX   float64   // cells per unit
	scaleY   float64
	tooSmall bool
}

func newLayout(screenW, screenH int, f Field) layout {
	// Row 0 is the HUD; the box takes the rest.
	maxCols := screenW - 2
	maxRows := screenH - 3

	rows := maxRows
	cols := int(math.Round(float64(rows) * f.Width / f.Height * 2))
	if cols > maxCols {
		cols = maxCols
		rows = int(math.Round(float64(cols) * f.Height / f.Width / 2))
	}

	l := layout{tooSmall: cols < minFieldCols || rows < minFieldRows}
	if l.tooSmall || f.Width <= 0 || f.Height <= 0 {
		l.tooSmall = true
		return l
	}

	l.box = core.NewRect((screenW-cols-2)/2, 1, cols+2, rows+2)
	l.inner = l.box.Inset(1)
	l.scaleX = float64(cols) / f.Width
	l.scaleY = float64(rows) / f.Height
	return l
}

func (l layout) col(x float64) int {
	return l.inner.X + core.Clamp(int(x*l.scaleX), 0, l.inner.W-1)
}

func (l layout) row(y float64) int {
	return l.inner.Y + core.Clamp(int(y*l.scaleY), 0, l.inner.H-1)
}

// fieldX converts a screen column to the field unit at its center.
func (l layout) fieldX(col int) float64 {
	if l.scaleX == 0 {
		return 0
	}
	return (float64(col-l.inner.X) + 0.5) / l.scaleX
}

// Render draws the current game state into the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	s := g.engine.Snapshot()
	g.layout = newLayout(dst.Width(), dst.Height(), s.Field)
	l := g.layout

	if l.tooSmall {
		dst.DrawTextCentered(dst.Height()/2-1, "Terminal too small", core.ColorBrightRed)
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("need %dx%d", minFieldCols+2, minFieldRows+3), core.ColorGray)
		return
	}

	g.renderHUD(dst, s)
	dst.DrawBox(l.box, core.ColorGray)

	// Catch line and grass
	catchRow := l.row(s.CatchLine)
	for x := l.inner.X; x < l.inner.Right(); x++ {
		dst.SetColor(x, catchRow, CatchChar, core.ColorGray)
	}
	dst.DrawHLine(l.inner.X, l.inner.Bottom()-1, l.inner.W, GrassChar, core.ColorGreen)

	for _, a := range s.Apples {
		if a.Caught {
			dst.SetColor(l.col(a.X), catchRow-1, CaughtChar, core.ColorBrightYellow)
			continue
		}
		dst.SetColor(l.col(a.X), l.row(a.Y), AppleChar, core.ColorRed)
	}

	// The basket covers the columns of its catch window.
	half := s.Field.BasketWidth / 2
	left, right := l.col(s.BasketX-half), l.col(s.BasketX+half)
	for x := left; x <= right; x++ {
		r := BasketMid
		switch x {
		case left:
			r = BasketLeft
		case right:
			r = BasketRight
		}
		dst.SetColor(x, catchRow, r, core.ColorBrown)
	}

	g.renderOverlay(dst, s)
}

func (g *Game) renderHUD(dst *core.Screen, s Snapshot) {
	x := g.layout.box.X
	score := fmt.Sprintf("Score: %d", s.Score)
	dst.DrawTextColor(x, 0, score, core.ColorBrightWhite)

	hearts := Hearts(s.Lives, s.MaxLives)
	dst.DrawTextColor(x+len(score)+2, 0, hearts, core.ColorBrightRed)

	right := fmt.Sprintf("Tier %d  %02d:%02d", s.Tier, s.Elapsed/60, s.Elapsed%60)
	dst.DrawTextColor(g.layout.box.Right()-len(right), 0, right, core.ColorYellow)
}

func (g *Game) renderOverlay(dst *core.Screen, s Snapshot) {
	mid := g.layout.inner.Y + g.layout.inner.H/3

	switch s.Phase {
	case PhaseIdle:
		dst.DrawTextCentered(mid, "FALLING APPLES", core.ColorBrightGreen)
		dst.DrawTextCentered(mid+2, "Press Enter to start", core.ColorWhite)
		dst.DrawTextCentered(mid+3, "arrows or click to move, P pause", core.ColorGray)
	case PhasePaused:
		dst.DrawTextCentered(mid, "PAUSED", core.ColorBrightYellow)
		dst.DrawTextCentered(mid+2, "Press P to resume", core.ColorWhite)
	case PhaseGameOver:
		dst.DrawTextCentered(mid, "GAME OVER", core.ColorBrightRed)
		dst.DrawTextCentered(mid+2, fmt.Sprintf("Final score: %d", s.Score), core.ColorBrightWhite)
		dst.DrawTextCentered(mid+3, "Press R to play again", core.ColorGray)
	}
}
