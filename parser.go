package msgbox

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnknownDirective is returned when no registered directive matches
	// the contents of a {...} block.
	ErrUnknownDirective = errors.New("unknown directive")
	// ErrMalformedDirective is returned when a directive matched by name but
	// its arguments are invalid.
	ErrMalformedDirective = errors.New("malformed directive")
)

// DirectiveError describes a {...} block that could not be turned into a
// token. It wraps ErrUnknownDirective or ErrMalformedDirective.
type DirectiveError struct {
	Directive string // contents between the braces
	Pos       int    // rune offset of the opening brace
	Err       error
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("msgbox: directive {%s} at %d: %v", e.Directive, e.Pos, e.Err)
}

func (e *DirectiveError) Unwrap() error { return e.Err }

// DirectiveFunc parses the argument part of a directive (the text after
// "NAME:", or "" for argument-less directives) into a token. The parser
// fills in the token position.
type DirectiveFunc func(args string) (Token, error)

// Directive registers a DirectiveFunc under a name. Parameterized
// directives are matched by the prefix "NAME:"; plain directives must match
// exactly.
type Directive struct {
	Name          string
	Parameterized bool
	Parse         DirectiveFunc
}

type prefixDirective struct {
	prefix string
	parse  DirectiveFunc
}

// DirectiveRegistry maps directive names to parse functions. It is built
// once and never mutated, so a single registry can be shared by every
// message box and goroutine.
type DirectiveRegistry struct {
	exact    map[string]DirectiveFunc
	prefixed []prefixDirective // longest prefix first
}

// NewDirectiveRegistry builds a registry from the given directives. Later
// entries replace earlier ones with the same name.
func NewDirectiveRegistry(directives ...Directive) *DirectiveRegistry {
	r := &DirectiveRegistry{exact: make(map[string]DirectiveFunc)}
	seen := make(map[string]int)
	for _, d := range directives {
		if !d.Parameterized {
			r.exact[d.Name] = d.Parse
			continue
		}
		p := d.Name + ":"
		if i, ok := seen[p]; ok {
			r.prefixed[i].parse = d.Parse
			continue
		}
		seen[p] = len(r.prefixed)
		r.prefixed = append(r.prefixed, prefixDirective{prefix: p, parse: d.Parse})
	}
	sort.SliceStable(r.prefixed, func(i, j int) bool {
		return len(r.prefixed[i].prefix) > len(r.prefixed[j].prefix)
	})
	return r
}

// Lookup parses the contents of a {...} block. It returns an error wrapping
// ErrUnknownDirective when nothing matches.
func (r *DirectiveRegistry) Lookup(content string) (Token, error) {
	if fn, ok := r.exact[content]; ok {
		return fn("")
	}
	for _, p := range r.prefixed {
		if strings.HasPrefix(content, p.prefix) {
			return p.parse(content[len(p.prefix):])
		}
	}
	return Token{}, ErrUnknownDirective
}

// DefaultDirectives returns the standard control-code vocabulary.
func DefaultDirectives() []Directive {
	return []Directive{
		{Name: "PAUSE", Parameterized: true, Parse: parsePause},
		{Name: "PAUSE_UNTIL_PRESS", Parse: simpleDirective(TokenPauseUntilPress)},
		{Name: "COLOR", Parameterized: true, Parse: rgbDirective(TokenColor)},
		{Name: "SHADOW", Parameterized: true, Parse: rgbDirective(TokenShadow)},
		{Name: "SPEED", Parameterized: true, Parse: parseSpeed},
		{Name: "CLEAR", Parse: simpleDirective(TokenClear)},
		{Name: "RESET", Parse: simpleDirective(TokenReset)},
		{Name: "FX", Parameterized: true, Parse: parseEffectStart},
		{Name: "/FX", Parse: simpleDirective(TokenEffectEnd)},
	}
}

// DefaultRegistry returns a registry holding DefaultDirectives.
func DefaultRegistry() *DirectiveRegistry {
	return NewDirectiveRegistry(DefaultDirectives()...)
}

func simpleDirective(kind TokenKind) DirectiveFunc {
	return func(string) (Token, error) {
		return Token{Kind: kind}, nil
	}
}

func parsePause(args string) (Token, error) {
	s := strings.TrimSpace(args)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Token{}, fmt.Errorf("%w: pause %q is not a non-negative number", ErrMalformedDirective, args)
	}
	return Token{Kind: TokenPause, Value: SecondsValue(v)}, nil
}

func parseSpeed(args string) (Token, error) {
	v, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || v < 0 {
		return Token{}, fmt.Errorf("%w: speed %q is not a non-negative integer", ErrMalformedDirective, args)
	}
	return Token{Kind: TokenSpeed, Value: IntValue(v)}, nil
}

func rgbDirective(kind TokenKind) DirectiveFunc {
	return func(args string) (Token, error) {
		parts := strings.Split(args, ",")
		if len(parts) != 3 {
			return Token{}, fmt.Errorf("%w: want r,g,b, got %q", ErrMalformedDirective, args)
		}
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return Token{}, fmt.Errorf("%w: channel %q out of range 0-255", ErrMalformedDirective, p)
			}
			ch[i] = uint8(v)
		}
		return Token{Kind: kind, Value: RGBValue{R: ch[0], G: ch[1], B: ch[2]}}, nil
	}
}

func parseEffectStart(args string) (Token, error) {
	id := strings.TrimSpace(args)
	if id == "" {
		return Token{}, fmt.Errorf("%w: empty effect id", ErrMalformedDirective)
	}
	return Token{Kind: TokenEffectStart, Value: EffectIDValue(id)}, nil
}

// DirectivePolicy decides what the parser does with a {...} block the
// registry rejects.
type DirectivePolicy uint8

const (
	DirectiveLiteral DirectivePolicy = iota // emit the block as plain characters
	DirectiveSkip                           // drop the block
	DirectiveAbort                          // fail the whole message
)

// ParseDirectivePolicy maps "literal", "skip" or "abort" to a policy.
func ParseDirectivePolicy(name string) (DirectivePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "literal", "":
		return DirectiveLiteral, nil
	case "skip":
		return DirectiveSkip, nil
	case "abort":
		return DirectiveAbort, nil
	}
	return DirectiveLiteral, fmt.Errorf("msgbox: unknown directive policy %q", name)
}

// Parser turns message text into tokens. A Parser holds no mutable state
// and may be used concurrently.
type Parser struct {
	registry *DirectiveRegistry
	policy   DirectivePolicy
}

// NewParser creates a parser. A nil registry means DefaultRegistry.
func NewParser(registry *DirectiveRegistry, policy DirectivePolicy) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{registry: registry, policy: policy}
}

// Policy returns the parser's handling of rejected directives.
func (p *Parser) Policy() DirectivePolicy {
	return p.policy
}

// Parse tokenizes text. The text is normalized to NFC first so composed
// characters become a single Char token. Token positions are rune offsets
// into the normalized text.
func (p *Parser) Parse(text string) ([]Token, error) {
	runes := []rune(norm.NFC.String(text))
	tokens := make([]Token, 0, len(runes))

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\n':
			tokens = append(tokens, Token{Kind: TokenNewline, Pos: i})
			i++

		case r == '\\' && i+1 < len(runes):
			kind, ok := escapeKind(runes[i+1])
			if !ok {
				tokens = append(tokens, charToken(r, i))
				i++
				continue
			}
			tokens = append(tokens, Token{Kind: kind, Pos: i})
			i += 2

		case r == '{':
			end := closingBrace(runes, i+1)
			if end < 0 {
				tokens = append(tokens, charToken(r, i))
				i++
				continue
			}
			content := string(runes[i+1 : end])
			tok, err := p.registry.Lookup(content)
			if err != nil {
				derr := &DirectiveError{Directive: content, Pos: i, Err: err}
				switch p.policy {
				case DirectiveAbort:
					return nil, derr
				case DirectiveSkip:
					log.Printf("%v (skipped)", derr)
				default:
					for j := i; j <= end; j++ {
						tokens = append(tokens, charToken(runes[j], j))
					}
				}
				i = end + 1
				continue
			}
			tok.Pos = i
			tokens = append(tokens, tok)
			i = end + 1

		default:
			tokens = append(tokens, charToken(r, i))
			i++
		}
	}
	return tokens, nil
}

func charToken(r rune, pos int) Token {
	return Token{Kind: TokenChar, Value: CharValue(r), Pos: pos}
}

// escapeKind maps the letter after a backslash to a token kind.
func escapeKind(r rune) (TokenKind, bool) {
	switch r {
	case 'n':
		return TokenNewline, true
	case 'p':
		return TokenPageBreak, true
	case 'l':
		return TokenScroll, true
	}
	return 0, false
}

// closingBrace returns the index of the '}' closing a block opened just
// before from, or -1 if another '{' or the end of text comes first.
func closingBrace(runes []rune, from int) int {
	for j := from; j < len(runes); j++ {
		switch runes[j] {
		case '}':
			return j
		case '{', '\n':
			return -1
		}
	}
	return -1
}
