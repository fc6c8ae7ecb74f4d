package msgbox

import (
	"fmt"
	"log"
	"math"
	"time"
)

// Engine holds what every message box shares: configuration, the parser
// and its directive registry, the font measurer and the definition
// registry. None of it is mutated after construction, so one Engine can
// serve any number of boxes.
type Engine struct {
	Config Config
	Parser *Parser
	Fonts  FontMeasurer
	Defs   DefinitionRegistry // may be nil
	Debug  bool
}

// NewEngine creates an engine with a parser built from DefaultDirectives
// and the configured directive policy.
func NewEngine(cfg Config, fonts FontMeasurer, defs DefinitionRegistry) *Engine {
	return &Engine{
		Config: cfg,
		Parser: NewParser(DefaultRegistry(), cfg.DirectivePolicy),
		Fonts:  fonts,
		Defs:   defs,
	}
}

// ShowRequest asks for a new message box. Nil pointer fields and zero
// values fall back to the engine's Config.
type ShowRequest struct {
	Text            string
	TextSpeed       *float64 // seconds per character; nil uses the player preference
	CanSpeedUp      *bool
	AutoScroll      *bool
	FontID          string
	TextColor       *Color
	BackgroundColor *Color
	ShadowColor     *Color
	Width           float64 // wrap width
	Seed            uint64  // shake seed base; 0 derives one from the clock
}

// Show parses and wraps the request text once and returns a box ready for
// Update. A missing font is logged and the box is laid out without width
// wrapping so it can still advance.
func (e *Engine) Show(req ShowRequest) (*Box, error) {
	cfg := e.Config

	tokens, err := e.Parser.Parse(req.Text)
	if err != nil {
		return nil, fmt.Errorf("msgbox: show: %w", err)
	}

	b := &Box{
		text:            req.Text,
		tokens:          tokens,
		machine:         newMachine(),
		state:           StateHandleChar,
		textSpeed:       cfg.TextSpeed,
		canSpeedUp:      cfg.CanSpeedUp,
		autoScroll:      cfg.AutoScroll,
		fontID:          cfg.FontID,
		defaultText:     cfg.TextColor,
		defaultShadow:   cfg.ShadowColor,
		backgroundColor: cfg.BackgroundColor,
		maxVisible:      max(cfg.MaxVisibleLines, 1),
		width:           cfg.Width,
		shadowOffset:    cfg.ShadowOffset,
		seed:            req.Seed,
		lastSoundTime:   math.Inf(-1),
		soundInterval:   cfg.BlipInterval,
		debug:           e.Debug,
	}
	if req.TextSpeed != nil {
		b.textSpeed = math.Max(*req.TextSpeed, 0)
	}
	if req.CanSpeedUp != nil {
		b.canSpeedUp = *req.CanSpeedUp
	}
	if req.AutoScroll != nil {
		b.autoScroll = *req.AutoScroll
	}
	if req.FontID != "" {
		b.fontID = req.FontID
	}
	if req.TextColor != nil {
		b.defaultText = *req.TextColor
	}
	if req.ShadowColor != nil {
		b.defaultShadow = *req.ShadowColor
	}
	if req.BackgroundColor != nil {
		b.backgroundColor = *req.BackgroundColor
	}
	if req.Width > 0 {
		b.width = req.Width
	}
	if b.seed == 0 {
		b.seed = uint64(time.Now().UnixNano())
	}
	b.defaultSpeed = b.textSpeed
	b.textColor, b.shadowColor = b.defaultText, b.defaultShadow

	var measure Measurer = MeasureFunc(func(string) float64 { return 0 })
	wrapWidth := b.width
	if lh, ok := e.lineHeight(b.fontID); ok {
		measure = fontMeasure(e.Fonts, b.fontID)
		b.lineStep = lh + cfg.LineSpacing
	} else {
		wrapWidth = 0
	}

	b.lines = Wrap(tokens, measure, WrapOptions{
		MaxWidth:    wrapWidth,
		TextColor:   b.defaultText,
		ShadowColor: b.defaultShadow,
		WordWrap:    cfg.WordWrap,
	})
	for li := range b.lines {
		for i := b.lines[li].Start; i < b.lines[li].End; i++ {
			b.charLine = append(b.charLine, li)
		}
	}
	b.shakes = e.shakeEffects(b.lines)
	b.refreshShake()

	return b, nil
}

func (e *Engine) lineHeight(fontID string) (float64, bool) {
	if e.Fonts == nil {
		log.Printf("msgbox: no font backend, laying out %q unwrapped", fontID)
		return 0, false
	}
	lh, err := e.Fonts.LineHeight(fontID)
	if err != nil {
		log.Printf("msgbox: font %q: %v, laying out unwrapped", fontID, err)
		return 0, false
	}
	return lh, true
}

// shakeEffects resolves every shake effect used by the lines.
func (e *Engine) shakeEffects(lines []WrappedLine) map[string]*shakeCache {
	shakes := make(map[string]*shakeCache)
	if e.Defs == nil {
		return shakes
	}
	for li := range lines {
		for _, cd := range lines[li].CharacterData {
			if cd.EffectID == "" {
				continue
			}
			if _, done := shakes[cd.EffectID]; done {
				continue
			}
			if def, ok := e.Defs.TextEffect(cd.EffectID); ok && def.Has(EffectShake) {
				shakes[cd.EffectID] = &shakeCache{def: def}
			}
		}
	}
	return shakes
}

// resolveEffect looks up an effect and, for color cycling, its palette.
// Unknown ids resolve to nil so the text renders plain.
func (e *Engine) resolveEffect(id string) (*TextEffectDefinition, *ColorPaletteDefinition) {
	if id == "" || e.Defs == nil {
		return nil, nil
	}
	def, ok := e.Defs.TextEffect(id)
	if !ok {
		return nil, nil
	}
	if !def.Has(EffectColorCycle) {
		return def, nil
	}
	p, ok := e.Defs.ColorPalette(def.ColorPaletteID)
	if !ok {
		return def, nil
	}
	return def, p
}
