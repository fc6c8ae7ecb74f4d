package ebitenbackend

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/msgbox"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the pixel size of the built-in Go Regular face.
const DefaultFontSize = 12

// FontSet maps font ids to fonts. It implements msgbox.FontMeasurer and is
// read-only once populated.
type FontSet struct {
	fonts map[string]Font
}

var _ msgbox.FontMeasurer = (*FontSet)(nil)

// NewFontSet returns an empty font set.
func NewFontSet() *FontSet {
	return &FontSet{fonts: make(map[string]Font)}
}

// DefaultFontSet returns a set whose "default" font is Go Regular at
// DefaultFontSize.
func DefaultFontSet() (*FontSet, error) {
	f, err := LoadTTFFont(goregular.TTF, DefaultFontSize)
	if err != nil {
		return nil, err
	}
	fs := NewFontSet()
	fs.Add("default", f)
	return fs, nil
}

// Add registers f under id, replacing any previous font.
func (fs *FontSet) Add(id string, f Font) {
	fs.fonts[id] = f
}

// Font returns the font registered under id.
func (fs *FontSet) Font(id string) (Font, bool) {
	f, ok := fs.fonts[id]
	return f, ok
}

func (fs *FontSet) lookup(id string) (Font, error) {
	f, ok := fs.fonts[id]
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
	width, height = f.MeasureString(s)
	return width, height, nil
}

// LineHeight implements msgbox.FontMeasurer.
func (fs *FontSet) LineHeight(fontID string) (float64, error) {
	f, err := fs.lookup(fontID)
	if err != nil {
		return 0, err
	}
	return f.LineHeight(), nil
}

// Canvas draws message boxes onto an Ebitengine image. Set Target each
// frame to the screen passed to Draw.
type Canvas struct {
	*FontSet
	Target *ebiten.Image

	// ScreenshotDir receives FlushScreenshots output; "screenshots" if empty.
	ScreenshotDir string
	shots         []string
}

var _ msgbox.TextDrawer = (*Canvas)(nil)

// NewCanvas returns a canvas drawing with fonts.
func NewCanvas(fonts *FontSet) *Canvas {
	return &Canvas{FontSet: fonts}
}

// DrawText implements msgbox.TextDrawer.
func (c *Canvas) DrawText(fontID, s string, op *msgbox.DrawTextOptions) error {
	f, err := c.lookup(fontID)
	if err != nil {
		return err
	}
	if c.Target == nil {
		return fmt.Errorf("msgbox: canvas has no target image")
	}
	var cs ebiten.ColorScale
	cs.ScaleWithColor(op.Color)
	return f.draw(c.Target, s, textGeoM(op), cs)
}

// textGeoM builds the transform of a run: scale and rotate around the
// origin point, then move to (X, Y).
func textGeoM(op *msgbox.DrawTextOptions) ebiten.GeoM {
	var g ebiten.GeoM
	if op.Transformed() {
		g.Translate(-op.OriginX, -op.OriginY)
		s := op.EffectiveScale()
		g.Scale(s, s)
		g.Rotate(op.Rotation)
		g.Translate(op.OriginX, op.OriginY)
	}
	g.Translate(op.X, op.Y)
	return g
}

// DrawPanel fills the box background. Call it before msgbox.Engine.Draw.
func (c *Canvas) DrawPanel(area msgbox.Rect, bg msgbox.Color) {
	if c.Target == nil {
		return
	}
	r := image.Rect(int(area.X), int(area.Y), int(area.X+area.Width), int(area.Y+area.Height))
	c.Target.SubImage(r).(*ebiten.Image).Fill(bg)
}
