// Package termbackend draws message boxes on a terminal through tcell.
//
// The terminal has a single font: every font id measures in cells, scaled
// by CellWidth and CellHeight so box layouts authored in pixels keep their
// proportions. Rotation and scale cannot be shown in a cell grid and are
// ignored.
package termbackend

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/phanxgames/msgbox"
)

// Renderer implements msgbox.TextDrawer over a tcell screen.
type Renderer struct {
	Screen tcell.Screen

	// Pixels per terminal cell.
	CellWidth  float64
	CellHeight float64

	// MinAlpha drops runs fainter than this, such as glow halos. Runs at
	// or above it are blended over the cell background.
	MinAlpha float64
}

var _ msgbox.TextDrawer = (*Renderer)(nil)

// NewRenderer returns a renderer with 6x12 pixel cells.
func NewRenderer(s tcell.Screen) *Renderer {
	return &Renderer{Screen: s, CellWidth: 6, CellHeight: 12, MinAlpha: 0.75}
}

// MeasureText implements msgbox.FontMeasurer.
func (r *Renderer) MeasureText(fontID, s string) (width, height float64, err error) {
	return float64(runewidth.StringWidth(s)) * r.CellWidth, r.CellHeight, nil
}

// LineHeight implements msgbox.FontMeasurer.
func (r *Renderer) LineHeight(fontID string) (float64, error) {
	return r.CellHeight, nil
}

func (r *Renderer) cell(x, y float64) (int, int) {
	return int(math.Round(x / r.CellWidth)), int(math.Round(y / r.CellHeight))
}

// DrawText implements msgbox.TextDrawer.
func (r *Renderer) DrawText(fontID, s string, op *msgbox.DrawTextOptions) error {
	if op.Color.A < r.MinAlpha {
		return nil
	}
	cx, cy := r.cell(op.X, op.Y)
	w, h := r.Screen.Size()
	if cy < 0 || cy >= h {
		return nil
	}
	for _, ch := range s {
		rw := runewidth.RuneWidth(ch)
		if rw == 0 {
			continue
		}
		if cx >= 0 && cx < w {
			_, _, st, _ := r.Screen.GetContent(cx, cy)
			_, bg, _ := st.Decompose()
			fg := blend(op.Color, bg)
			r.Screen.SetContent(cx, cy, ch, nil, st.Foreground(fg))
		}
		cx += rw
	}
	return nil
}

// DrawPanel fills the cells covered by area with bg.
func (r *Renderer) DrawPanel(area msgbox.Rect, bg msgbox.Color) {
	x0, y0 := r.cell(area.X, area.Y)
	x1, y1 := r.cell(area.X+area.Width, area.Y+area.Height)
	style := tcell.StyleDefault.Background(rgb(bg)).Foreground(rgb(bg))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.Screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func rgb(c msgbox.Color) tcell.Color {
	r, g, b := c.RGB8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// blend mixes c over the cell background by its alpha. An unset
// background counts as black.
func blend(c msgbox.Color, bg tcell.Color) tcell.Color {
	if c.A >= 1 {
		return rgb(c)
	}
	var under msgbox.Color
	under.A = 1
	if bg.Valid() {
		br, bgc, bb := bg.RGB()
		under = msgbox.RGB8(uint8(br), uint8(bgc), uint8(bb))
	}
	mixed := under.Lerp(c, c.A)
	mixed.A = 1
	return rgb(mixed)
}

// KeyInput maps a key event to message-box input: Enter, Space and z
// advance, x and Backspace speed up.
func KeyInput(ev *tcell.EventKey) msgbox.Input {
	return keyInput(ev.Key(), ev.Rune())
}

func keyInput(k tcell.Key, ch rune) msgbox.Input {
	var in msgbox.Input
	switch k {
	case tcell.KeyEnter:
		in.Advance = true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		in.SpeedUp = true
	case tcell.KeyRune:
		switch ch {
		case ' ', 'z', 'Z':
			in.Advance = true
		case 'x', 'X':
			in.SpeedUp = true
		}
	}
	return in
}
