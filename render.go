package msgbox

import (
	"log"
)

// defaultGlowRadius is used when an effect enables glow without a radius.
const defaultGlowRadius = 1.0

// glowDirections are the eight unit offsets of the glow passes.
var glowDirections = [8][2]float64{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// Draw renders the revealed part of a box into area. Lines are drawn from
// the current page start; a partially revealed line ends the pass. While
// scrolling, one extra line is drawn and everything is shifted up by the
// scroll offset. Lines entirely outside area are clipped.
//
// A missing font logs a warning and skips the frame. An empty color
// palette behind an active color cycle is returned as an error.
func (e *Engine) Draw(b *Box, dst TextDrawer, area Rect) error {
	if b.state == StateHidden {
		return nil
	}
	if _, err := dst.LineHeight(b.fontID); err != nil {
		log.Printf("msgbox: font %q unavailable, skipping draw: %v", b.fontID, err)
		return nil
	}

	visible := b.maxVisible
	if b.state == StateScrolling {
		visible++
	}
	step := b.lineStep
	cur := b.charIndex

	for i := 0; i < visible; i++ {
		li := b.pageStartLine + i
		if li >= len(b.lines) {
			break
		}
		line := &b.lines[li]

		var n int
		switch {
		case line.End <= cur:
			n = line.Len()
		case line.Start < cur:
			n = cur - line.Start
		default:
			return nil
		}

		y := area.Y + float64(i)*step - b.scrollOffset
		if n > 0 && y+step > area.Y && y < area.Y+area.Height {
			var err error
			if line.HasEffects {
				err = e.drawEffectLine(b, dst, line, n, area.X, y)
			} else {
				err = b.drawPlainLine(dst, line, n, area.X, y)
			}
			if err != nil {
				return err
			}
		}
		if n < line.Len() {
			return nil
		}
	}
	return nil
}

// drawPlainLine draws the first n characters of a line with one shadow
// pass and one foreground pass.
func (b *Box) drawPlainLine(dst TextDrawer, line *WrappedLine, n int, x, y float64) error {
	text := line.Text
	if n < line.Len() {
		text = string([]rune(text)[:n])
	}
	if err := dst.DrawText(b.fontID, text, &DrawTextOptions{
		X:     x + b.shadowOffset.X,
		Y:     y + b.shadowOffset.Y,
		Color: b.defaultShadow,
	}); err != nil {
		return err
	}
	return dst.DrawText(b.fontID, text, &DrawTextOptions{X: x, Y: y, Color: b.defaultText})
}

// drawEffectLine draws the first n characters of a line one by one,
// applying effect transforms, glow and color cycling.
func (e *Engine) drawEffectLine(b *Box, dst TextDrawer, line *WrappedLine, n int, x, y float64) error {
	var (
		lastID  string
		def     *TextEffectDefinition
		palette *ColorPaletteDefinition
	)
	for k := 0; k < n; k++ {
		cd := line.CharacterData[k]
		if k == 0 || cd.EffectID != lastID {
			lastID = cd.EffectID
			def, palette = e.resolveEffect(cd.EffectID)
		}

		text, shadow := cd.TextColor, cd.ShadowColor
		res := EffectResult{Scale: 1, Opacity: 1}
		if def != nil {
			res = ComputeEffect(def, cd.CharIndex, b.effectTime, b.ShakeOffset(cd.EffectID, line.Start+k))
			if def.Has(EffectColorCycle) && palette != nil {
				c, err := CycleColor(def, palette, cd.CharIndex, b.effectTime)
				if err != nil {
					return err
				}
				text, shadow = ApplyCycleColor(def, c, cd)
			}
		}
		text = text.ScaleAlpha(res.Opacity)
		shadow = shadow.ScaleAlpha(res.Opacity)

		s := string(cd.Char)
		op := DrawTextOptions{
			X:        x + cd.BaseX + res.Offset.X,
			Y:        y + res.Offset.Y,
			Rotation: res.Rotation,
			Scale:    res.Scale,
		}
		if op.Transformed() {
			w, h, err := dst.MeasureText(b.fontID, s)
			if err != nil {
				return err
			}
			op.OriginX, op.OriginY = w/2, h/2
		}

		if res.Glow > 0 {
			r := def.GlowRadius
			if r <= 0 {
				r = defaultGlowRadius
			}
			glow := op
			glow.Color = def.GlowColor.ScaleAlpha(res.Glow * res.Opacity)
			for _, d := range glowDirections {
				glow.X = op.X + d[0]*r
				glow.Y = op.Y + d[1]*r
				if err := dst.DrawText(b.fontID, s, &glow); err != nil {
					return err
				}
			}
		}

		sh := op
		sh.X += b.shadowOffset.X
		sh.Y += b.shadowOffset.Y
		sh.Color = shadow
		if err := dst.DrawText(b.fontID, s, &sh); err != nil {
			return err
		}
		op.Color = text
		if err := dst.DrawText(b.fontID, s, &op); err != nil {
			return err
		}
	}
	return nil
}
