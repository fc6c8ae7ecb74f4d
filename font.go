package msgbox

import "errors"

// ErrFontNotFound is returned by font backends for an unknown font id.
var ErrFontNotFound = errors.New("font not found")

// FontMeasurer measures text for a font id. It is all a box needs at
// creation time.
type FontMeasurer interface {
	MeasureText(fontID, text string) (width, height float64, err error)
	LineHeight(fontID string) (float64, error)
}

// TextDrawer is a FontMeasurer that can also draw. Backends implement it
// over a concrete render target (an Ebitengine image, a gg context, a
// terminal screen).
type TextDrawer interface {
	FontMeasurer
	DrawText(fontID, text string, op *DrawTextOptions) error
}

// DrawTextOptions positions one text run. X and Y are the top-left of the
// run. Rotation and Scale pivot around (X+OriginX, Y+OriginY).
type DrawTextOptions struct {
	X, Y     float64
	Color    Color
	Rotation float64 // radians
	OriginX  float64
	OriginY  float64
	Scale    float64 // 0 is treated as 1
}

// Transformed reports whether the run needs a rotated or scaled draw.
func (op *DrawTextOptions) Transformed() bool {
	return op.Rotation != 0 || (op.Scale != 0 && op.Scale != 1)
}

// EffectiveScale returns Scale with the zero value mapped to 1.
func (op *DrawTextOptions) EffectiveScale() float64 {
	if op.Scale == 0 {
		return 1
	}
	return op.Scale
}

// fontMeasure binds a measurer to a font id for Wrap. Measurement errors
// count as zero width; the caller has already checked the font exists.
func fontMeasure(fm FontMeasurer, fontID string) Measurer {
	return MeasureFunc(func(text string) float64 {
		w, _, err := fm.MeasureText(fontID, text)
		if err != nil {
			return 0
		}
		return w
	})
}
