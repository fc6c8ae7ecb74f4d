package msgbox

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is handed to a backend via RGBA.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGB8 builds an opaque Color from 0-255 channel values.
func RGB8(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// RGBA implements color.Color. Values are premultiplied 16-bit.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(clamp01(c.A)*0xffff + 0.5)
	r = uint32(clamp01(c.R)*clamp01(c.A)*0xffff + 0.5)
	g = uint32(clamp01(c.G)*clamp01(c.A)*0xffff + 0.5)
	b = uint32(clamp01(c.B)*clamp01(c.A)*0xffff + 0.5)
	return r, g, b, a
}

// RGB8 returns the 0-255 channel values, ignoring alpha.
func (c Color) RGB8() (r, g, b uint8) {
	return to8(c.R), to8(c.G), to8(c.B)
}

// ScaleAlpha returns c with its alpha multiplied by f.
func (c Color) ScaleAlpha(f float64) Color {
	c.A *= f
	return c
}

// Mul multiplies c component-wise by o. Alpha is multiplied as well.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Lerp blends from c to o by t in [0, 1].
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

var _ color.Color = Color{}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

// Vec2 is a 2D vector used for offsets and positions.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Input carries the two edge-triggered signals a box reacts to each tick.
type Input struct {
	Advance bool // confirm / next page
	SpeedUp bool // hurry the remaining text
}

// Text-speed tiers in seconds per character. GBA frames run at 60 Hz.
const (
	TextSpeedSlow    = 8.0 / 60
	TextSpeedMedium  = 4.0 / 60
	TextSpeedFast    = 1.0 / 60
	TextSpeedInstant = 0.0
)

// Scroll-speed tiers in pixels per second.
const (
	ScrollSpeedSlow    = 120.0
	ScrollSpeedMedium  = 240.0
	ScrollSpeedFast    = 480.0
	ScrollSpeedInstant = 1920.0
)

// framesPerSecond converts {SPEED:n} frame counts to seconds.
const framesPerSecond = 60.0

// ScrollSpeedFor returns the scroll tier matching a text speed.
func ScrollSpeedFor(textSpeed float64) float64 {
	switch {
	case textSpeed >= TextSpeedSlow:
		return ScrollSpeedSlow
	case textSpeed >= TextSpeedMedium:
		return ScrollSpeedMedium
	case textSpeed > TextSpeedInstant:
		return ScrollSpeedFast
	default:
		return ScrollSpeedInstant
	}
}

// State identifies where a message box is in its reveal cycle.
type State uint8

const (
	StateHandleChar    State = iota // revealing characters
	StateWait                       // blocked on input; may clear the page on resume
	StateWaitForScroll              // blocked on input; scrolls one line on resume
	StateScrolling                  // animating the scroll offset
	StatePaused                     // timed pause from {PAUSE:n}
	StateFinished                   // every token consumed
	StateHidden                     // closed; no further updates
)

var stateNames = [...]string{
	StateHandleChar:    "handle_char",
	StateWait:          "wait",
	StateWaitForScroll: "wait_for_scroll",
	StateScrolling:     "scrolling",
	StatePaused:        "paused",
	StateFinished:      "finished",
	StateHidden:        "hidden",
}

// String returns the state's name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func parseState(name string) State {
	for i, n := range stateNames {
		if n == name {
			return State(i)
		}
	}
	return StateHidden
}
