package msgbox

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the defaults every message box starts from. Player
// preferences (text speed) live here too.
type Config struct {
	TextSpeed       float64 // seconds per character
	MaxVisibleLines int
	CanSpeedUp      bool
	AutoScroll      bool
	FontID          string
	LineSpacing     float64
	Width           float64 // text area width, also the wrap width
	Height          float64 // text area height
	PaddingX        float64
	PaddingY        float64
	ShadowOffset    Vec2

	TextColor       Color
	ShadowColor     Color
	BackgroundColor Color

	DirectivePolicy DirectivePolicy
	WordWrap        bool

	BlipInterval  float64 // minimum seconds between typing sounds
	BlipFrequency float64 // Hz
}

// DefaultConfig returns the built-in configuration: medium speed, two
// visible lines and the Emerald dark-gray-on-white palette.
func DefaultConfig() Config {
	return Config{
		TextSpeed:       TextSpeedMedium,
		MaxVisibleLines: 2,
		CanSpeedUp:      true,
		FontID:          "default",
		LineSpacing:     2,
		Width:           208,
		Height:          32,
		PaddingX:        8,
		PaddingY:        4,
		ShadowOffset:    Vec2{X: 1, Y: 1},
		TextColor:       RGB8(96, 96, 96),
		ShadowColor:     RGB8(208, 208, 200),
		BackgroundColor: RGB8(255, 255, 255),
		DirectivePolicy: DirectiveLiteral,
		BlipInterval:    0.05,
		BlipFrequency:   880,
	}
}

// TextArea returns the text area of a panel whose top-left corner is (x, y).
func (c Config) TextArea(x, y float64) Rect {
	return Rect{X: x + c.PaddingX, Y: y + c.PaddingY, Width: c.Width, Height: c.Height}
}

// PanelArea returns the panel around a text area, grown by the padding.
func (c Config) PanelArea(text Rect) Rect {
	return Rect{
		X:      text.X - c.PaddingX,
		Y:      text.Y - c.PaddingY,
		Width:  text.Width + 2*c.PaddingX,
		Height: text.Height + 2*c.PaddingY,
	}
}

// ParseTextSpeed maps a tier name (slow, medium, fast, instant) to seconds
// per character.
func ParseTextSpeed(name string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "slow":
		return TextSpeedSlow, nil
	case "medium", "mid", "":
		return TextSpeedMedium, nil
	case "fast":
		return TextSpeedFast, nil
	case "instant":
		return TextSpeedInstant, nil
	}
	return 0, fmt.Errorf("msgbox: unknown text speed %q", name)
}

// ParseRGB parses "r,g,b" with 0-255 channels.
func ParseRGB(s string) (Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("msgbox: color %q: want r,g,b", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("msgbox: color %q: channel %q out of range", s, p)
		}
		ch[i] = uint8(v)
	}
	return RGB8(ch[0], ch[1], ch[2]), nil
}

// LoadConfig reads INI sources (file paths or []byte) over DefaultConfig.
// Later sources override earlier ones. Numeric keys that fail to parse keep
// their defaults; unknown tier, policy or color values are errors.
func LoadConfig(source any, others ...any) (Config, error) {
	cfg := DefaultConfig()

	f, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: true,
	}, source, others...)
	if err != nil {
		return cfg, fmt.Errorf("msgbox: load config: %w", err)
	}

	box := f.Section("textbox")
	if k := box.Key("text_speed"); k.String() != "" {
		if cfg.TextSpeed, err = ParseTextSpeed(k.String()); err != nil {
			return cfg, err
		}
	}
	cfg.MaxVisibleLines = box.Key("max_visible_lines").MustInt(cfg.MaxVisibleLines)
	if cfg.MaxVisibleLines < 1 {
		cfg.MaxVisibleLines = 1
	}
	cfg.CanSpeedUp = box.Key("can_speed_up").MustBool(cfg.CanSpeedUp)
	cfg.AutoScroll = box.Key("auto_scroll").MustBool(cfg.AutoScroll)
	cfg.FontID = box.Key("font").MustString(cfg.FontID)
	cfg.LineSpacing = box.Key("line_spacing").MustFloat64(cfg.LineSpacing)
	cfg.Width = box.Key("width").MustFloat64(cfg.Width)
	cfg.Height = box.Key("height").MustFloat64(cfg.Height)
	cfg.PaddingX = box.Key("padding_x").MustFloat64(cfg.PaddingX)
	cfg.PaddingY = box.Key("padding_y").MustFloat64(cfg.PaddingY)
	cfg.ShadowOffset.X = box.Key("shadow_offset_x").MustFloat64(cfg.ShadowOffset.X)
	cfg.ShadowOffset.Y = box.Key("shadow_offset_y").MustFloat64(cfg.ShadowOffset.Y)

	colors := f.Section("colors")
	for key, dst := range map[string]*Color{
		"text":       &cfg.TextColor,
		"shadow":     &cfg.ShadowColor,
		"background": &cfg.BackgroundColor,
	} {
		v := colors.Key(key).String()
		if v == "" {
			continue
		}
		c, err := ParseRGB(v)
		if err != nil {
			return cfg, err
		}
		*dst = c
	}

	parser := f.Section("parser")
	if k := parser.Key("unknown_directive"); k.String() != "" {
		if cfg.DirectivePolicy, err = ParseDirectivePolicy(k.String()); err != nil {
			return cfg, err
		}
	}
	cfg.WordWrap = parser.Key("word_wrap").MustBool(cfg.WordWrap)

	sound := f.Section("sound")
	cfg.BlipInterval = sound.Key("blip_interval").MustFloat64(cfg.BlipInterval)
	cfg.BlipFrequency = sound.Key("blip_frequency").MustFloat64(cfg.BlipFrequency)

	return cfg, nil
}
