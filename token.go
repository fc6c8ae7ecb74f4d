package msgbox

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind uint8

const (
	TokenChar            TokenKind = iota // a visible character
	TokenNewline                          // forced line break
	TokenPause                            // timed pause, value is Seconds
	TokenPauseUntilPress                  // wait for advance without clearing
	TokenColor                            // text color change, value is RGB
	TokenShadow                           // shadow color change, value is RGB
	TokenSpeed                            // text speed change, value is Int frames
	TokenClear                            // clear visible text immediately
	TokenPageBreak                        // wait, then clear the page
	TokenScroll                           // wait, then scroll one line
	TokenReset                            // restore default color, shadow and speed
	TokenEffectStart                      // open an effect span, value is EffectID
	TokenEffectEnd                        // close the effect span
)

var tokenKindNames = [...]string{
	TokenChar:            "Char",
	TokenNewline:         "Newline",
	TokenPause:           "Pause",
	TokenPauseUntilPress: "PauseUntilPress",
	TokenColor:           "Color",
	TokenShadow:          "Shadow",
	TokenSpeed:           "Speed",
	TokenClear:           "Clear",
	TokenPageBreak:       "PageBreak",
	TokenScroll:          "Scroll",
	TokenReset:           "Reset",
	TokenEffectStart:     "EffectStart",
	TokenEffectEnd:       "EffectEnd",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// TokenValue is the payload of a Token. The concrete type is fixed by the
// token's kind: CharValue, SecondsValue, RGBValue, IntValue or EffectIDValue.
// Kinds without a payload carry a nil value.
type TokenValue interface {
	tokenValue()
}

// CharValue is the payload of TokenChar.
type CharValue rune

// SecondsValue is the payload of TokenPause.
type SecondsValue float64

// RGBValue is the payload of TokenColor and TokenShadow.
type RGBValue struct {
	R, G, B uint8
}

// IntValue is the payload of TokenSpeed.
type IntValue int

// EffectIDValue is the payload of TokenEffectStart.
type EffectIDValue string

func (CharValue) tokenValue()     {}
func (SecondsValue) tokenValue()  {}
func (RGBValue) tokenValue()      {}
func (IntValue) tokenValue()      {}
func (EffectIDValue) tokenValue() {}

// Color converts the payload to an opaque Color.
func (v RGBValue) Color() Color {
	return RGB8(v.R, v.G, v.B)
}

// Token is one lexical unit of a message. Tokens are immutable once produced.
type Token struct {
	Kind  TokenKind
	Value TokenValue
	Pos   int // rune offset of the token in the normalized source text
}

// Rune returns the character of a TokenChar, or 0.
func (t Token) Rune() rune {
	if v, ok := t.Value.(CharValue); ok {
		return rune(v)
	}
	return 0
}

// Seconds returns the duration of a TokenPause, or 0.
func (t Token) Seconds() float64 {
	if v, ok := t.Value.(SecondsValue); ok {
		return float64(v)
	}
	return 0
}

// RGB returns the color of a TokenColor or TokenShadow.
func (t Token) RGB() (RGBValue, bool) {
	v, ok := t.Value.(RGBValue)
	return v, ok
}

// Int returns the integer of a TokenSpeed, or 0.
func (t Token) Int() int {
	if v, ok := t.Value.(IntValue); ok {
		return int(v)
	}
	return 0
}

// EffectID returns the effect id of a TokenEffectStart, or "".
func (t Token) EffectID() string {
	if v, ok := t.Value.(EffectIDValue); ok {
		return string(v)
	}
	return ""
}

// forcesBreak reports whether the token ends the current wrapped line.
func (t Token) forcesBreak() bool {
	switch t.Kind {
	case TokenNewline, TokenPageBreak, TokenScroll, TokenClear:
		return true
	}
	return false
}

func (t Token) String() string {
	if t.Value == nil {
		return fmt.Sprintf("%s@%d", t.Kind, t.Pos)
	}
	switch v := t.Value.(type) {
	case CharValue:
		return fmt.Sprintf("%s(%q)@%d", t.Kind, rune(v), t.Pos)
	default:
		return fmt.Sprintf("%s(%v)@%d", t.Kind, v, t.Pos)
	}
}
