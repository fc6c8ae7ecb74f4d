package msgbox

import (
	"github.com/go-text/typesetting/segmenter"
)

// Measurer reports the pixel width of a run of text in one font.
type Measurer interface {
	Measure(text string) float64
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(text string) float64

// Measure calls f.
func (f MeasureFunc) Measure(text string) float64 { return f(text) }

// CharacterRenderData is the precomputed render input of one character in
// a line that carries effects or color overrides.
type CharacterRenderData struct {
	Char            rune
	BaseX           float64 // unscaled offset from the line start
	CharIndex       int     // position within the line
	TextColor       Color
	ShadowColor     Color
	EffectID        string // empty when no effect applies
	HasManualColor  bool
	HasManualShadow bool
}

// WrappedLine is a run of characters that fits one visual line.
type WrappedLine struct {
	Text       string
	Start      int // first char index (inclusive)
	End        int // last char index (exclusive)
	PixelWidth float64
	// CharacterData is nil unless HasEffects is set.
	CharacterData []CharacterRenderData
	HasEffects    bool
	// StartToken is the index of the first token that belongs to the line.
	StartToken int
}

// Len returns the number of characters on the line.
func (l *WrappedLine) Len() int { return l.End - l.Start }

// WrapOptions configures Wrap.
type WrapOptions struct {
	MaxWidth    float64 // 0 disables width wrapping
	TextColor   Color   // default text color, baked into character data
	ShadowColor Color   // default shadow color
	WordWrap    bool    // prefer UAX#14 break opportunities over hard cuts
}

// pendingChar is a character waiting on the line being built.
type pendingChar struct {
	r            rune
	token        int
	effectID     string
	text, shadow Color
	manualText   bool
	manualShadow bool
}

func (c *pendingChar) special() bool {
	return c.effectID != "" || c.manualText || c.manualShadow
}

// Wrap lays tokens out into lines no wider than opts.MaxWidth. Newline,
// page-break, scroll and clear tokens always end the current line. A
// character that would overflow starts a new line, or with WordWrap the
// line is split at the last break opportunity before it. At least one
// line is always returned.
func Wrap(tokens []Token, m Measurer, opts WrapOptions) []WrappedLine {
	var breakAt map[int]bool
	if opts.WordWrap {
		breakAt = lineBreakOpportunities(tokens)
	}

	var (
		lines      []WrappedLine
		cur        []pendingChar
		lineStart  int // char index of cur[0]
		startToken int
		charIndex  int

		effectID     string
		textColor    = opts.TextColor
		shadowColor  = opts.ShadowColor
		manualText   bool
		manualShadow bool
	)

	flush := func(next int) {
		lines = append(lines, buildLine(cur, lineStart, startToken, m))
		cur = cur[:0:0]
		lineStart = charIndex
		startToken = next
	}

	for ti, tok := range tokens {
		switch tok.Kind {
		case TokenChar:
			pc := pendingChar{
				r:            tok.Rune(),
				token:        ti,
				effectID:     effectID,
				text:         textColor,
				shadow:       shadowColor,
				manualText:   manualText,
				manualShadow: manualShadow,
			}
			if opts.MaxWidth > 0 && len(cur) > 0 && m.Measure(runesOf(cur)+string(pc.r)) > opts.MaxWidth {
				split := len(cur)
				if breakAt != nil {
					for k := len(cur); k > 0; k-- {
						if breakAt[lineStart+k] {
							split = k
							break
						}
					}
				}
				tail := append([]pendingChar(nil), cur[split:]...)
				cur = cur[:split]
				lines = append(lines, buildLine(cur, lineStart, startToken, m))
				lineStart += split
				if len(tail) > 0 {
					startToken = tail[0].token
				} else {
					startToken = ti
				}
				cur = tail
			}
			cur = append(cur, pc)
			charIndex++

		case TokenColor:
			if v, ok := tok.RGB(); ok {
				textColor = v.Color()
				manualText = true
			}
		case TokenShadow:
			if v, ok := tok.RGB(); ok {
				shadowColor = v.Color()
				manualShadow = true
			}
		case TokenReset:
			textColor, shadowColor = opts.TextColor, opts.ShadowColor
			manualText, manualShadow = false, false
		case TokenEffectStart:
			effectID = tok.EffectID()
		case TokenEffectEnd:
			effectID = ""

		default:
			if tok.forcesBreak() {
				flush(ti + 1)
			}
		}
	}
	lines = append(lines, buildLine(cur, lineStart, startToken, m))
	return lines
}

func runesOf(chars []pendingChar) string {
	rs := make([]rune, len(chars))
	for i := range chars {
		rs[i] = chars[i].r
	}
	return string(rs)
}

func buildLine(chars []pendingChar, start, startToken int, m Measurer) WrappedLine {
	text := runesOf(chars)
	line := WrappedLine{
		Text:       text,
		Start:      start,
		End:        start + len(chars),
		StartToken: startToken,
	}
	if len(chars) > 0 {
		line.PixelWidth = m.Measure(text)
	}
	for i := range chars {
		if chars[i].special() {
			line.HasEffects = true
			break
		}
	}
	if !line.HasEffects {
		return line
	}

	rs := []rune(text)
	line.CharacterData = make([]CharacterRenderData, len(chars))
	for i, c := range chars {
		var baseX float64
		if i > 0 {
			baseX = m.Measure(string(rs[:i]))
		}
		line.CharacterData[i] = CharacterRenderData{
			Char:            c.r,
			BaseX:           baseX,
			CharIndex:       i,
			TextColor:       c.text,
			ShadowColor:     c.shadow,
			EffectID:        c.effectID,
			HasManualColor:  c.manualText,
			HasManualShadow: c.manualShadow,
		}
	}
	return line
}

// lineBreakOpportunities returns the char indices at which a new line may
// start according to UAX#14.
func lineBreakOpportunities(tokens []Token) map[int]bool {
	var text []rune
	for _, tok := range tokens {
		if tok.Kind == TokenChar {
			text = append(text, tok.Rune())
		}
	}
	breaks := make(map[int]bool)
	if len(text) == 0 {
		return breaks
	}
	var seg segmenter.Segmenter
	seg.Init(text)
	it := seg.LineIterator()
	for it.Next() {
		l := it.Line()
		if l.Offset > 0 {
			breaks[l.Offset] = true
		}
	}
	return breaks
}
