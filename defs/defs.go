// Package defs loads text effect and color palette definitions from JSON mod
// data and serves them to a msgbox.Engine.
//
// The expected document shape is:
//
//	{
//	  "textEffects": [
//	    {"id": "base:texteffect:wave", "effects": ["wave"],
//	     "waveFrequency": 2, "waveAmplitude": 4}
//	  ],
//	  "colorPalettes": [
//	    {"id": "rainbow", "colors": ["#ff0000", "#00ff00"], "interpolate": true}
//	  ]
//	}
package defs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/phanxgames/msgbox"
	"github.com/tidwall/gjson"
)

// Registry holds loaded definitions keyed by id. Load calls must finish
// before the registry is shared; lookups never mutate it.
type Registry struct {
	effects  map[string]*msgbox.TextEffectDefinition
	palettes map[string]*msgbox.ColorPaletteDefinition
}

var _ msgbox.DefinitionRegistry = (*Registry)(nil)

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		effects:  make(map[string]*msgbox.TextEffectDefinition),
		palettes: make(map[string]*msgbox.ColorPaletteDefinition),
	}
}

// TextEffect returns the effect with the given id.
func (r *Registry) TextEffect(id string) (*msgbox.TextEffectDefinition, bool) {
	d, ok := r.effects[id]
	return d, ok
}

// ColorPalette returns the palette with the given id.
func (r *Registry) ColorPalette(id string) (*msgbox.ColorPaletteDefinition, bool) {
	p, ok := r.palettes[id]
	return p, ok
}

// EffectIDs returns every loaded effect id, sorted.
func (r *Registry) EffectIDs() []string {
	ids := make([]string, 0, len(r.effects))
	for id := range r.effects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadFile reads and loads a definition file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("defs: %w", err)
	}
	if err := r.Load(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Load parses a definition document. Definitions replace earlier ones with
// the same id. Nothing is added when the document has an error.
func (r *Registry) Load(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("defs: invalid JSON")
	}

	effects := make(map[string]*msgbox.TextEffectDefinition)
	palettes := make(map[string]*msgbox.ColorPaletteDefinition)
	var err error

	gjson.GetBytes(data, "colorPalettes").ForEach(func(_, v gjson.Result) bool {
		var p *msgbox.ColorPaletteDefinition
		if p, err = parsePalette(v); err != nil {
			return false
		}
		palettes[p.ID] = p
		return true
	})
	if err != nil {
		return err
	}

	gjson.GetBytes(data, "textEffects").ForEach(func(_, v gjson.Result) bool {
		var d *msgbox.TextEffectDefinition
		if d, err = parseEffect(v); err != nil {
			return false
		}
		effects[d.ID] = d
		return true
	})
	if err != nil {
		return err
	}

	for id, p := range palettes {
		r.palettes[id] = p
	}
	for id, d := range effects {
		r.effects[id] = d
	}
	return nil
}

// Validate checks that every color-cycle effect names a loaded palette.
func (r *Registry) Validate() error {
	for _, id := range r.EffectIDs() {
		d := r.effects[id]
		if !d.Has(msgbox.EffectColorCycle) {
			continue
		}
		if _, ok := r.palettes[d.ColorPaletteID]; !ok {
			return fmt.Errorf("defs: effect %q: unknown palette %q", id, d.ColorPaletteID)
		}
	}
	return nil
}

func parsePalette(v gjson.Result) (*msgbox.ColorPaletteDefinition, error) {
	id := v.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("defs: color palette without id")
	}
	p := &msgbox.ColorPaletteDefinition{
		ID:          id,
		Interpolate: v.Get("interpolate").Bool(),
	}
	var err error
	v.Get("colors").ForEach(func(_, c gjson.Result) bool {
		var col msgbox.Color
		if col, err = parseHex(c.String()); err != nil {
			return false
		}
		p.Colors = append(p.Colors, col)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("defs: palette %q: %w", id, err)
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("defs: palette %q: %w", id, msgbox.ErrEmptyPalette)
	}
	return p, nil
}

func parseEffect(v gjson.Result) (*msgbox.TextEffectDefinition, error) {
	id := v.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("defs: text effect without id")
	}
	d := &msgbox.TextEffectDefinition{ID: id}

	var err error
	v.Get("effects").ForEach(func(_, e gjson.Result) bool {
		var f msgbox.EffectFlags
		if f, err = msgbox.ParseEffectFlag(e.String()); err != nil {
			return false
		}
		d.Effects |= f
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("defs: effect %q: %w", id, err)
	}

	num(v, "waveFrequency", &d.WaveFrequency)
	num(v, "waveAmplitude", &d.WaveAmplitude)
	num(v, "wavePhaseOffset", &d.WavePhaseOffset)
	num(v, "hangFrequency", &d.HangFrequency)
	num(v, "hangAmplitude", &d.HangAmplitude)
	num(v, "sideStepFrequency", &d.SideStepFrequency)
	num(v, "sideStepAmplitude", &d.SideStepAmplitude)
	num(v, "shakeStrength", &d.ShakeStrength)
	num(v, "shakeIntervalSeconds", &d.ShakeInterval)
	d.DeterministicShake = v.Get("deterministicShake").Bool()

	num(v, "wobbleFrequency", &d.WobbleFrequency)
	num(v, "wobbleAmplitude", &d.WobbleAmplitude)
	d.WobblePhaseOffset = optNum(v, "wobblePhaseOffset")

	d.ScaleMin, d.ScaleMax = 1, 1
	num(v, "scaleMin", &d.ScaleMin)
	num(v, "scaleMax", &d.ScaleMax)
	num(v, "scaleFrequency", &d.ScaleFrequency)
	d.ScalePhaseOffset = optNum(v, "scalePhaseOffset")

	d.FadeMin, d.FadeMax = 1, 1
	num(v, "fadeMin", &d.FadeMin)
	num(v, "fadeMax", &d.FadeMax)
	num(v, "fadeFrequency", &d.FadeFrequency)
	d.FadePhaseOffset = optNum(v, "fadePhaseOffset")

	d.GlowColor = msgbox.ColorWhite
	if g := v.Get("glowColor"); g.Exists() {
		if d.GlowColor, err = parseHex(g.String()); err != nil {
			return nil, fmt.Errorf("defs: effect %q: glowColor: %w", id, err)
		}
	}
	num(v, "glowOpacity", &d.GlowOpacity)
	num(v, "glowRadius", &d.GlowRadius)
	d.GlowPulses = v.Get("glowPulses").Bool()

	d.ColorPaletteID = v.Get("colorPaletteId").String()
	num(v, "cycleSpeed", &d.CycleSpeed)
	d.ColorPhaseOffset = optNum(v, "colorPhaseOffset")

	switch m := strings.ToLower(v.Get("colorMode").String()); m {
	case "", "override":
		d.ColorMode = msgbox.ColorOverride
	case "tint":
		d.ColorMode = msgbox.ColorTint
	case "preserve":
		d.ColorMode = msgbox.ColorPreserve
	default:
		return nil, fmt.Errorf("defs: effect %q: unknown colorMode %q", id, m)
	}
	switch m := strings.ToLower(v.Get("shadowMode").String()); m {
	case "", "derive":
		d.ShadowMode = msgbox.ShadowDerive
	case "preserve":
		d.ShadowMode = msgbox.ShadowPreserve
	default:
		return nil, fmt.Errorf("defs: effect %q: unknown shadowMode %q", id, m)
	}

	if d.Has(msgbox.EffectShake) && d.ShakeInterval <= 0 {
		return nil, fmt.Errorf("defs: effect %q: shake needs a positive shakeIntervalSeconds", id)
	}
	if d.Has(msgbox.EffectColorCycle) && d.ColorPaletteID == "" {
		return nil, fmt.Errorf("defs: effect %q: colorCycle needs a colorPaletteId", id)
	}
	return d, nil
}

func num(v gjson.Result, key string, dst *float64) {
	if r := v.Get(key); r.Exists() {
		*dst = r.Float()
	}
}

func optNum(v gjson.Result, key string) *float64 {
	r := v.Get(key)
	if !r.Exists() {
		return nil
	}
	f := r.Float()
	return &f
}

// parseHex parses "#rrggbb" into an opaque color.
func parseHex(s string) (msgbox.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return msgbox.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return msgbox.RGB8(r, g, b), nil
}
