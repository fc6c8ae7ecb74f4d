package msgbox

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
)

// ErrEmptyPalette is returned when a color-cycle effect references a palette
// with no colors. It indicates broken mod data.
var ErrEmptyPalette = errors.New("color palette has no colors")

// EffectFlags is a bitmask of the animation types a text effect enables.
type EffectFlags uint16

const (
	EffectWave       EffectFlags = 1 << iota // vertical sine bob
	EffectShake                              // random per-character jitter
	EffectHang                               // vertical |sine| bounce
	EffectSideStep                           // horizontal sine sway
	EffectColorCycle                         // palette cycling
	EffectWobble                             // rotation sway
	EffectScale                              // pulsing size
	EffectFade                               // pulsing opacity
	EffectGlow                               // halo behind the glyph
)

var effectFlagNames = []struct {
	flag EffectFlags
	name string
}{
	{EffectWave, "wave"},
	{EffectShake, "shake"},
	{EffectHang, "hang"},
	{EffectSideStep, "sidestep"},
	{EffectColorCycle, "colorcycle"},
	{EffectWobble, "wobble"},
	{EffectScale, "scale"},
	{EffectFade, "fade"},
	{EffectGlow, "glow"},
}

// ParseEffectFlag maps an effect name such as "wave" or "colorCycle" to its
// flag. Matching ignores case, '_' and '-'.
func ParseEffectFlag(name string) (EffectFlags, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(name))
	for _, f := range effectFlagNames {
		if f.name == key {
			return f.flag, nil
		}
	}
	return 0, fmt.Errorf("msgbox: unknown effect type %q", name)
}

func (f EffectFlags) String() string {
	var names []string
	for _, n := range effectFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ColorMode controls how a color cycle combines with a character's color.
type ColorMode uint8

const (
	ColorOverride ColorMode = iota // cycle color replaces the text color
	ColorTint                      // cycle color multiplies the text color
	ColorPreserve                  // manual {COLOR} overrides win over the cycle
)

// ShadowMode controls the shadow of a color-cycled character.
type ShadowMode uint8

const (
	ShadowDerive   ShadowMode = iota // darken the final text color
	ShadowPreserve                   // keep the shadow color as is
)

// shadowDeriveFactor darkens a derived shadow relative to its text color.
const shadowDeriveFactor = 0.4

// TextEffectDefinition is immutable mod configuration describing one named
// text effect. Phase-offset pointers left nil fall back to WavePhaseOffset.
type TextEffectDefinition struct {
	ID      string
	Effects EffectFlags

	WaveFrequency   float64
	WaveAmplitude   float64
	WavePhaseOffset float64

	HangFrequency float64
	HangAmplitude float64

	SideStepFrequency float64
	SideStepAmplitude float64

	ShakeStrength      float64
	ShakeInterval      float64 // seconds between regenerations
	DeterministicShake bool

	WobbleFrequency   float64
	WobbleAmplitude   float64 // degrees
	WobblePhaseOffset *float64

	ScaleMin         float64
	ScaleMax         float64
	ScaleFrequency   float64
	ScalePhaseOffset *float64

	FadeMin         float64
	FadeMax         float64
	FadeFrequency   float64
	FadePhaseOffset *float64

	GlowColor   Color
	GlowOpacity float64
	GlowRadius  float64
	GlowPulses  bool

	ColorPaletteID   string
	CycleSpeed       float64
	ColorPhaseOffset *float64
	ColorMode        ColorMode
	ShadowMode       ShadowMode
}

// Has reports whether every flag in f is enabled.
func (d *TextEffectDefinition) Has(f EffectFlags) bool {
	return d != nil && d.Effects&f == f
}

func (d *TextEffectDefinition) phase(override *float64) float64 {
	if override != nil {
		return *override
	}
	return d.WavePhaseOffset
}

// ColorPaletteDefinition is an ordered list of colors used by color cycling.
type ColorPaletteDefinition struct {
	ID          string
	Colors      []Color
	Interpolate bool
}

// DefinitionRegistry resolves mod definitions by id. A missing id reports
// false; callers treat it as "no effect".
type DefinitionRegistry interface {
	TextEffect(id string) (*TextEffectDefinition, bool)
	ColorPalette(id string) (*ColorPaletteDefinition, bool)
}

// EffectResult is the combined transform of one character at one instant.
type EffectResult struct {
	Offset   Vec2
	Rotation float64 // radians
	Scale    float64
	Opacity  float64
	Glow     float64 // glow opacity, 0 when disabled
}

// wave returns (sin(t*freq + charIndex*phase) + 1) / 2.
func wave01(t, freq float64, charIndex int, phase float64) float64 {
	return (math.Sin(t*freq+float64(charIndex)*phase) + 1) / 2
}

// EffectOffset sums the positional contributions of wave, hang, sidestep
// and shake. shake is the character's cached jitter.
func EffectOffset(d *TextEffectDefinition, charIndex int, t float64, shake Vec2) Vec2 {
	var off Vec2
	if d == nil {
		return off
	}
	ph := float64(charIndex) * d.WavePhaseOffset
	if d.Has(EffectWave) {
		off.Y += math.Sin(t*d.WaveFrequency+ph) * d.WaveAmplitude
	}
	if d.Has(EffectHang) {
		off.Y += math.Abs(math.Sin(t*d.HangFrequency+ph)) * d.HangAmplitude
	}
	if d.Has(EffectSideStep) {
		off.X += math.Sin(t*d.SideStepFrequency+ph) * d.SideStepAmplitude
	}
	if d.Has(EffectShake) {
		off.X += shake.X
		off.Y += shake.Y
	}
	return off
}

// EffectRotation returns the wobble angle in radians.
func EffectRotation(d *TextEffectDefinition, charIndex int, t float64) float64 {
	if !d.Has(EffectWobble) {
		return 0
	}
	deg := math.Sin(t*d.WobbleFrequency+float64(charIndex)*d.phase(d.WobblePhaseOffset)) * d.WobbleAmplitude
	return deg * math.Pi / 180
}

// EffectScaleFactor returns the glyph scale factor.
func EffectScaleFactor(d *TextEffectDefinition, charIndex int, t float64) float64 {
	if !d.Has(EffectScale) {
		return 1
	}
	w := wave01(t, d.ScaleFrequency, charIndex, d.phase(d.ScalePhaseOffset))
	return d.ScaleMin + (d.ScaleMax-d.ScaleMin)*w
}

func fadeWave(d *TextEffectDefinition, charIndex int, t float64) float64 {
	return wave01(t, d.FadeFrequency, charIndex, d.phase(d.FadePhaseOffset))
}

// EffectOpacity returns the glyph opacity multiplier.
func EffectOpacity(d *TextEffectDefinition, charIndex int, t float64) float64 {
	if !d.Has(EffectFade) {
		return 1
	}
	return d.FadeMin + (d.FadeMax-d.FadeMin)*fadeWave(d, charIndex, t)
}

// EffectGlowOpacity returns the glow opacity, pulsing with the fade waveform
// when GlowPulses is set.
func EffectGlowOpacity(d *TextEffectDefinition, charIndex int, t float64) float64 {
	if !d.Has(EffectGlow) {
		return 0
	}
	if d.GlowPulses {
		return d.GlowOpacity * fadeWave(d, charIndex, t)
	}
	return d.GlowOpacity
}

// ComputeEffect evaluates every transform of d for one character.
func ComputeEffect(d *TextEffectDefinition, charIndex int, t float64, shake Vec2) EffectResult {
	return EffectResult{
		Offset:   EffectOffset(d, charIndex, t, shake),
		Rotation: EffectRotation(d, charIndex, t),
		Scale:    EffectScaleFactor(d, charIndex, t),
		Opacity:  EffectOpacity(d, charIndex, t),
		Glow:     EffectGlowOpacity(d, charIndex, t),
	}
}

// CycleColor returns the palette color for a character at time t. A
// single-color palette always yields that color.
func CycleColor(d *TextEffectDefinition, p *ColorPaletteDefinition, charIndex int, t float64) (Color, error) {
	if p == nil || len(p.Colors) == 0 {
		id := ""
		if p != nil {
			id = p.ID
		}
		return Color{}, fmt.Errorf("msgbox: palette %q: %w", id, ErrEmptyPalette)
	}
	n := len(p.Colors)
	if n == 1 {
		return p.Colors[0], nil
	}
	phase := t*d.CycleSpeed + float64(charIndex)*d.phase(d.ColorPhaseOffset)
	phase -= math.Floor(phase)

	pos := phase * float64(n)
	if !p.Interpolate {
		return p.Colors[int(math.Round(pos))%n], nil
	}
	i := int(math.Floor(pos))
	if i >= n {
		i = n - 1
	}
	j := (i + 1) % n
	return p.Colors[i].Lerp(p.Colors[j], pos-float64(i)), nil
}

// ApplyCycleColor combines a cycle color with a character's text and shadow
// colors according to the effect's color and shadow modes.
func ApplyCycleColor(d *TextEffectDefinition, cycle Color, cd CharacterRenderData) (text, shadow Color) {
	text, shadow = cd.TextColor, cd.ShadowColor
	switch d.ColorMode {
	case ColorOverride:
		text = cycle
	case ColorTint:
		text = cd.TextColor.Mul(cycle)
	case ColorPreserve:
		if !cd.HasManualColor {
			text = cycle
		}
	}
	if d.ShadowMode == ShadowDerive && !cd.HasManualShadow {
		shadow = Color{
			R: text.R * shadowDeriveFactor,
			G: text.G * shadowDeriveFactor,
			B: text.B * shadowDeriveFactor,
			A: text.A,
		}
	}
	return text, shadow
}

// GenerateShakeOffsets returns one uniformly random offset per character in
// [-ShakeStrength, ShakeStrength] on both axes. The same seed always
// produces the same offsets.
func GenerateShakeOffsets(d *TextEffectDefinition, charCount int, seed uint64) []Vec2 {
	if charCount <= 0 {
		return nil
	}
	var strength float64
	if d != nil {
		strength = d.ShakeStrength
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	offsets := make([]Vec2, charCount)
	for i := range offsets {
		offsets[i] = Vec2{
			X: (rng.Float64()*2 - 1) * strength,
			Y: (rng.Float64()*2 - 1) * strength,
		}
	}
	return offsets
}

// shakeSeed mixes a base seed, an effect id and a regeneration count.
func shakeSeed(base uint64, effectID string, generation uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(effectID))
	return base ^ h.Sum64() ^ (generation * 0xbf58476d1ce4e5b9)
}
