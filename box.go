package msgbox

import (
	"context"
	"log"
	"math"

	"github.com/looplab/fsm"
)

// State-machine event names.
const (
	evPause      = "pause"
	evWait       = "wait"
	evWaitScroll = "wait_scroll"
	evScroll     = "scroll"
	evResume     = "resume"
	evFinish     = "finish"
	evHide       = "hide"
)

func newMachine() *fsm.FSM {
	var visible []string
	for s := StateHandleChar; s < StateHidden; s++ {
		visible = append(visible, s.String())
	}
	return fsm.NewFSM(
		StateHandleChar.String(),
		fsm.Events{
			{Name: evPause, Src: []string{StateHandleChar.String()}, Dst: StatePaused.String()},
			{Name: evWait, Src: []string{StateHandleChar.String()}, Dst: StateWait.String()},
			{Name: evWaitScroll, Src: []string{StateHandleChar.String()}, Dst: StateWaitForScroll.String()},
			{Name: evScroll, Src: []string{StateHandleChar.String(), StateWaitForScroll.String()}, Dst: StateScrolling.String()},
			{Name: evResume, Src: []string{StateWait.String(), StateScrolling.String(), StatePaused.String()}, Dst: StateHandleChar.String()},
			{Name: evFinish, Src: []string{StateHandleChar.String()}, Dst: StateFinished.String()},
			{Name: evHide, Src: visible, Dst: StateHidden.String()},
		},
		fsm.Callbacks{},
	)
}

// shakeCache holds the jitter of one shake effect between regenerations.
type shakeCache struct {
	def           *TextEffectDefinition
	offsets       []Vec2 // indexed by char index
	lastShakeTime float64
	generation    uint64
}

// Box is the mutable state of one message box. A Box is created by
// Engine.Show, advanced once per tick with Update and drawn with
// Engine.Draw. It is owned by a single caller and is not safe for
// concurrent use.
type Box struct {
	text     string
	tokens   []Token
	lines    []WrappedLine
	charLine []int // char index -> line index

	tokenIndex int
	charIndex  int
	delay      float64

	textSpeed     float64
	defaultSpeed  float64
	canSpeedUp    bool
	hasBeenSpedUp bool
	autoScroll    bool

	machine *fsm.FSM
	state   State

	textColor, shadowColor       Color
	defaultText, defaultShadow   Color
	backgroundColor              Color
	fontID                       string
	lineStep                     float64 // font line height plus spacing
	maxVisible                   int
	width                        float64
	shadowOffset                 Vec2
	waitClearsPage               bool
	pauseRemaining               float64
	pageStartLine                int
	scroll                       *scrollTween
	scrollOffset                 float64
	scrollDistanceRemaining      float64
	scrollSpeed                  float64
	effectTime                   float64
	shakes                       map[string]*shakeCache
	seed                         uint64
	currentEffectID              string
	lastSoundTime, soundInterval float64
	dismissed                    bool
	debug                        bool

	// OnCharSound, when set, is called as characters are revealed, at most
	// once per sound interval. Spaces are silent.
	OnCharSound func(r rune)
}

// fire performs a state-machine transition, refusing illegal ones.
func (b *Box) fire(event string) {
	from := b.state
	if err := b.machine.Event(context.Background(), event); err != nil {
		log.Printf("msgbox: refused %s from %s: %v", event, from, err)
		return
	}
	b.state = parseState(b.machine.Current())
	b.debugTransition(from, event)
}

// Update advances the box by dt seconds. It is a no-op once hidden.
func (b *Box) Update(dt float64, in Input) {
	if b.state == StateHidden {
		return
	}

	b.effectTime += dt
	b.refreshShake()

	if in.SpeedUp && b.canSpeedUp && !b.hasBeenSpedUp {
		b.hasBeenSpedUp = true
		b.textSpeed = TextSpeedInstant
		b.delay = math.Min(b.delay, 0)
	}

	switch b.state {
	case StateHandleChar:
		b.handleChars(dt)

	case StateWait:
		if in.Advance {
			if b.waitClearsPage {
				b.pageStartLine = b.lineAfterToken(b.tokenIndex - 1)
				b.waitClearsPage = false
			}
			b.fire(evResume)
			b.handleChars(0)
		}

	case StateWaitForScroll:
		if in.Advance {
			b.startScroll()
		}

	case StateScrolling:
		b.updateScroll(dt)

	case StatePaused:
		b.pauseRemaining -= dt
		if b.pauseRemaining <= 0 {
			b.pauseRemaining = 0
			b.fire(evResume)
			b.handleChars(0)
		}

	case StateFinished:
		if in.Advance {
			b.dismissed = true
		}
	}
}

// handleChars consumes tokens while the reveal delay has elapsed.
func (b *Box) handleChars(dt float64) {
	b.delay -= dt
	for b.delay <= 0 && b.state == StateHandleChar && b.tokenIndex < len(b.tokens) {
		tok := b.tokens[b.tokenIndex]
		switch tok.Kind {
		case TokenChar:
			if b.charLine[b.charIndex] >= b.pageStartLine+b.maxVisible {
				if b.autoScroll {
					b.startScroll()
				} else {
					b.fire(evWaitScroll)
				}
				return
			}
			b.tokenIndex++
			b.charIndex++
			b.delay = b.textSpeed
			b.playSound(tok.Rune())

		case TokenPause:
			b.tokenIndex++
			if s := tok.Seconds(); s > 0 {
				b.pauseRemaining = s
				b.fire(evPause)
			}

		case TokenPauseUntilPress:
			b.tokenIndex++
			b.waitClearsPage = false
			b.fire(evWait)

		case TokenPageBreak:
			b.tokenIndex++
			b.waitClearsPage = true
			b.fire(evWait)

		case TokenScroll:
			b.tokenIndex++
			b.fire(evWaitScroll)

		case TokenClear:
			b.tokenIndex++
			b.pageStartLine = b.lineAfterToken(b.tokenIndex - 1)

		case TokenColor:
			b.tokenIndex++
			if v, ok := tok.RGB(); ok {
				b.textColor = v.Color()
			}

		case TokenShadow:
			b.tokenIndex++
			if v, ok := tok.RGB(); ok {
				b.shadowColor = v.Color()
			}

		case TokenSpeed:
			b.tokenIndex++
			if !b.hasBeenSpedUp {
				b.textSpeed = float64(tok.Int()) / framesPerSecond
			}

		case TokenReset:
			b.tokenIndex++
			b.textColor, b.shadowColor = b.defaultText, b.defaultShadow
			if !b.hasBeenSpedUp {
				b.textSpeed = b.defaultSpeed
			}

		case TokenEffectStart:
			b.tokenIndex++
			b.currentEffectID = tok.EffectID()

		case TokenEffectEnd:
			b.tokenIndex++
			b.currentEffectID = ""

		default:
			b.tokenIndex++
		}
	}
	if b.state == StateHandleChar && b.tokenIndex >= len(b.tokens) {
		b.fire(evFinish)
	}
}

// lineAfterToken returns the first line that starts after token ti.
func (b *Box) lineAfterToken(ti int) int {
	for i := range b.lines {
		if b.lines[i].StartToken > ti {
			return i
		}
	}
	return len(b.lines) - 1
}

func (b *Box) startScroll() {
	b.scrollSpeed = ScrollSpeedFor(b.textSpeed)
	b.scroll = newScrollTween(b.lineStep, b.scrollSpeed)
	b.scrollOffset = 0
	b.scrollDistanceRemaining = b.lineStep
	b.fire(evScroll)
}

func (b *Box) updateScroll(dt float64) {
	offset, done := b.scroll.Update(dt)
	b.scrollOffset = offset
	b.scrollDistanceRemaining = b.scroll.Remaining()
	if !done {
		return
	}
	b.pageStartLine++
	b.scrollOffset = 0
	b.scrollDistanceRemaining = 0
	b.scroll = nil
	b.fire(evResume)
	b.handleChars(0)
}

// refreshShake regenerates every shake cache whose interval has elapsed.
func (b *Box) refreshShake() {
	for id, sc := range b.shakes {
		if sc.offsets != nil && b.effectTime-sc.lastShakeTime < sc.def.ShakeInterval {
			continue
		}
		base := b.seed
		if sc.def.DeterministicShake {
			base = 0
		}
		sc.generation++
		sc.offsets = GenerateShakeOffsets(sc.def, len(b.charLine), shakeSeed(base, id, sc.generation))
		sc.lastShakeTime = b.effectTime
	}
}

func (b *Box) playSound(r rune) {
	if b.OnCharSound == nil || r == ' ' {
		return
	}
	if b.effectTime-b.lastSoundTime < b.soundInterval {
		return
	}
	b.lastSoundTime = b.effectTime
	b.OnCharSound(r)
}

// Hide closes the box. Further updates are ignored and cached effect state
// is released.
func (b *Box) Hide() {
	if b.state == StateHidden {
		return
	}
	b.fire(evHide)
	b.shakes = nil
	b.scroll = nil
}

// ShakeOffset returns the cached jitter of a character under a shake effect.
func (b *Box) ShakeOffset(effectID string, charIndex int) Vec2 {
	sc, ok := b.shakes[effectID]
	if !ok || charIndex < 0 || charIndex >= len(sc.offsets) {
		return Vec2{}
	}
	return sc.offsets[charIndex]
}

// LineOfChar returns the wrapped line holding char index i. An index past
// the last character maps to the last line.
func (b *Box) LineOfChar(i int) int {
	if i < len(b.charLine) {
		return b.charLine[i]
	}
	return len(b.lines) - 1
}

// Text returns the original message text.
func (b *Box) Text() string { return b.text }

// Tokens returns the parsed tokens. The slice must not be modified.
func (b *Box) Tokens() []Token { return b.tokens }

// Lines returns the wrapped lines. The slice must not be modified.
func (b *Box) Lines() []WrappedLine { return b.lines }

// State returns the current state.
func (b *Box) State() State { return b.state }

// CurrentCharIndex returns how many characters have been revealed.
func (b *Box) CurrentCharIndex() int { return b.charIndex }

// CurrentTokenIndex returns the index of the next token to consume.
func (b *Box) CurrentTokenIndex() int { return b.tokenIndex }

// CharCount returns the total number of visible characters.
func (b *Box) CharCount() int { return len(b.charLine) }

// PageStartLine returns the first wrapped line of the current page.
func (b *Box) PageStartLine() int { return b.pageStartLine }

// TextSpeed returns the current reveal speed in seconds per character.
func (b *Box) TextSpeed() float64 { return b.textSpeed }

// HasBeenSpedUp reports whether the speed-up button already fired.
func (b *Box) HasBeenSpedUp() bool { return b.hasBeenSpedUp }

// ScrollOffset returns the current upward scroll shift in pixels.
func (b *Box) ScrollOffset() float64 { return b.scrollOffset }

// ScrollDistanceRemaining returns how far the active scroll has to go.
func (b *Box) ScrollDistanceRemaining() float64 { return b.scrollDistanceRemaining }

// ScrollSpeed returns the pixel rate of the active scroll.
func (b *Box) ScrollSpeed() float64 { return b.scrollSpeed }

// EffectTime returns the accumulated animation time in seconds.
func (b *Box) EffectTime() float64 { return b.effectTime }

// CurrentEffectID returns the effect span the reveal cursor is inside.
func (b *Box) CurrentEffectID() string { return b.currentEffectID }

// Colors returns the current text and shadow colors.
func (b *Box) Colors() (text, shadow Color) { return b.textColor, b.shadowColor }

// DefaultColors returns the colors {RESET} restores.
func (b *Box) DefaultColors() (text, shadow Color) { return b.defaultText, b.defaultShadow }

// BackgroundColor returns the box background color.
func (b *Box) BackgroundColor() Color { return b.backgroundColor }

// FontID returns the font the box was laid out with.
func (b *Box) FontID() string { return b.fontID }

// LineStep returns the vertical distance between wrapped lines.
func (b *Box) LineStep() float64 { return b.lineStep }

// MaxVisibleLines returns how many lines a page shows.
func (b *Box) MaxVisibleLines() int { return b.maxVisible }

// Width returns the wrap width.
func (b *Box) Width() float64 { return b.width }

// Visible reports whether the box is still shown.
func (b *Box) Visible() bool { return b.state != StateHidden }

// Waiting reports whether the box is blocked on the advance button.
func (b *Box) Waiting() bool {
	return b.state == StateWait || b.state == StateWaitForScroll
}

// Dismissed reports whether the advance button was pressed after the
// message finished.
func (b *Box) Dismissed() bool { return b.dismissed }
