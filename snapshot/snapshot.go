// Package snapshot renders message boxes offscreen with gg and writes PNG
// frames. It needs no window or GPU, which makes it suitable for tools and
// golden-image tests.
package snapshot

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/phanxgames/msgbox"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the point size of the built-in Go Regular face.
const DefaultFontSize = 12

type face struct {
	face   font.Face
	ascent float64
	height float64
}

// FontSet maps font ids to TrueType faces. It implements
// msgbox.FontMeasurer.
type FontSet struct {
	faces map[string]*face
}

var _ msgbox.FontMeasurer = (*FontSet)(nil)

// NewFontSet returns an empty font set.
func NewFontSet() *FontSet {
	return &FontSet{faces: make(map[string]*face)}
}

// DefaultFontSet returns a set whose "default" font is Go Regular.
func DefaultFontSet() (*FontSet, error) {
	fs := NewFontSet()
	if err := fs.LoadTTF("default", goregular.TTF, DefaultFontSize); err != nil {
		return nil, err
	}
	return fs, nil
}

// LoadTTF parses TrueType data and registers it under id at size points.
func (fs *FontSet) LoadTTF(id string, ttf []byte, size float64) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("msgbox: snapshot: parse font %q: %w", id, err)
	}
	fs.Add(id, truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	return nil
}

// Add registers a face under id.
func (fs *FontSet) Add(id string, ff font.Face) {
	m := ff.Metrics()
	fs.faces[id] = &face{
		face:   ff,
		ascent: float64(m.Ascent) / 64,
		height: float64(m.Height) / 64,
	}
}

func (fs *FontSet) lookup(id string) (*face, error) {
	f, ok := fs.faces[id]
	if !ok {
		return nil, fmt.Errorf("msgbox: font %q: %w", id, msgbox.ErrFontNotFound)
	}
	return f, nil
}

// MeasureText implements msgbox.FontMeasurer.
func (fs *FontSet) MeasureText(fontID, s string) (width, height float64, err error) {
	f, err := fs.lookup(fontID)
	if err != nil {
		return 0, 0, err
	}
	return float64(font.MeasureString(f.face, s)) / 64, f.height, nil
}

// LineHeight implements msgbox.FontMeasurer.
func (fs *FontSet) LineHeight(fontID string) (float64, error) {
	f, err := fs.lookup(fontID)
	if err != nil {
		return 0, err
	}
	return f.height, nil
}

// Renderer draws message boxes into an in-memory image.
type Renderer struct {
	*FontSet
	dc *gg.Context
}

var _ msgbox.TextDrawer = (*Renderer)(nil)

// NewRenderer returns a w x h renderer drawing with fonts.
func NewRenderer(fonts *FontSet, w, h int) *Renderer {
	return &Renderer{FontSet: fonts, dc: gg.NewContext(w, h)}
}

// DrawText implements msgbox.TextDrawer. (X, Y) is the top-left corner of
// the run.
func (r *Renderer) DrawText(fontID, s string, op *msgbox.DrawTextOptions) error {
	f, err := r.lookup(fontID)
	if err != nil {
		return err
	}
	dc := r.dc
	dc.Push()
	defer dc.Pop()
	if op.Transformed() {
		px, py := op.X+op.OriginX, op.Y+op.OriginY
		dc.RotateAbout(op.Rotation, px, py)
		sc := op.EffectiveScale()
		dc.ScaleAbout(sc, sc, px, py)
	}
	dc.SetFontFace(f.face)
	dc.SetColor(op.Color)
	dc.DrawString(s, op.X, op.Y+f.ascent)
	return nil
}

// DrawPanel fills area with bg.
func (r *Renderer) DrawPanel(area msgbox.Rect, bg msgbox.Color) {
	r.dc.SetColor(bg)
	r.dc.DrawRectangle(area.X, area.Y, area.Width, area.Height)
	r.dc.Fill()
}

// Clear fills the whole image with c.
func (r *Renderer) Clear(c color.Color) {
	r.dc.SetColor(c)
	r.dc.Clear()
}

// DrawFrame clears the image, then draws the panel and text of b with its
// text in area.
func (r *Renderer) DrawFrame(e *msgbox.Engine, b *msgbox.Box, area msgbox.Rect) error {
	r.Clear(color.Transparent)
	if !b.Visible() {
		return nil
	}
	r.DrawPanel(e.Config.PanelArea(area), b.BackgroundColor())
	return e.Draw(b, r, area)
}

// Image returns the rendered image.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// SavePNG writes the rendered image to path.
func (r *Renderer) SavePNG(path string) error {
	if err := r.dc.SavePNG(path); err != nil {
		return fmt.Errorf("msgbox: snapshot: %w", err)
	}
	return nil
}
