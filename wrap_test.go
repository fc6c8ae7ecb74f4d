package msgbox

import (
	"strings"
	"testing"
	"unicode/utf8"
)

var runeWidth = MeasureFunc(func(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * testAdvance
})

func wrapText(t *testing.T, text string, opts WrapOptions) []WrappedLine {
	t.Helper()
	tokens := mustParse(t, NewParser(nil, DirectiveLiteral), text)
	return Wrap(tokens, runeWidth, opts)
}

func lineTexts(lines []WrappedLine) []string {
	out := make([]string, len(lines))
	for i := range lines {
		out[i] = lines[i].Text
	}
	return out
}

func TestWrap_Lines(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "Hello", 60, []string{"Hello"}},
		{"hard cut", "ABCDEFGHIJ", 30, []string{"ABCDE", "FGHIJ"}},
		{"newline", "A\nB", 60, []string{"A", "B"}},
		{"page break", "Line1\\pLine2", 60, []string{"Line1", "Line2"}},
		{"scroll", "A\\lB", 60, []string{"A", "B"}},
		{"clear", "AB{CLEAR}CD", 60, []string{"AB", "CD"}},
		{"no width", "ABCDEFGHIJ", 0, []string{"ABCDEFGHIJ"}},
		{"empty", "", 60, []string{""}},
		{"trailing break", "A\n", 60, []string{"A", ""}},
		{"directives take no width", "{COLOR:1,1,1}ABC{RESET}DE", 30, []string{"ABCDE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := wrapText(t, tt.text, WrapOptions{MaxWidth: tt.width})
			got := lineTexts(lines)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_ConcatenationPreservesChars(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog.",
		"{FX:wave}wavy{/FX} {COLOR:1,2,3}colored{RESET}\nnext\\pthird",
		"",
	}
	for _, text := range texts {
		tokens := mustParse(t, NewParser(nil, DirectiveLiteral), text)
		lines := Wrap(tokens, runeWidth, WrapOptions{MaxWidth: 48})
		var sb strings.Builder
		next := 0
		for _, l := range lines {
			if l.Start != next {
				t.Errorf("%q: line starts at %d, want %d", text, l.Start, next)
			}
			if l.Len() != utf8.RuneCountInString(l.Text) {
				t.Errorf("%q: line %q len %d", text, l.Text, l.Len())
			}
			next = l.End
			sb.WriteString(l.Text)
		}
		if sb.String() != chars(tokens) {
			t.Errorf("concatenated %q, want %q", sb.String(), chars(tokens))
		}
	}
}

func TestWrap_WidthBound(t *testing.T) {
	lines := wrapText(t, strings.Repeat("abc ", 20), WrapOptions{MaxWidth: 50})
	for _, l := range lines {
		if l.Len() > 1 && l.PixelWidth > 50 {
			t.Errorf("line %q width %v exceeds 50", l.Text, l.PixelWidth)
		}
	}
}

func TestWrap_StartToken(t *testing.T) {
	tokens := mustParse(t, NewParser(nil, DirectiveLiteral), "Line1\\pLine2")
	lines := Wrap(tokens, runeWidth, WrapOptions{MaxWidth: 100})
	if lines[0].StartToken != 0 || lines[1].StartToken != 6 {
		t.Errorf("start tokens = %d, %d", lines[0].StartToken, lines[1].StartToken)
	}

	tokens = mustParse(t, NewParser(nil, DirectiveLiteral), "ABC{COLOR:1,1,1}DE")
	lines = Wrap(tokens, runeWidth, WrapOptions{MaxWidth: 18})
	if len(lines) != 2 || lines[1].StartToken != 4 {
		t.Errorf("cut line start token = %d (%q)", lines[1].StartToken, lineTexts(lines))
	}
}

func TestWrap_ManualColorThenReset(t *testing.T) {
	def := RGB8(96, 96, 96)
	lines := wrapText(t, "{COLOR:50,205,50}Green{RESET}Normal", WrapOptions{
		MaxWidth:    200,
		TextColor:   def,
		ShadowColor: RGB8(208, 208, 200),
	})
	if len(lines) != 1 || !lines[0].HasEffects {
		t.Fatalf("lines = %+v", lines)
	}
	cds := lines[0].CharacterData
	if len(cds) != 11 {
		t.Fatalf("character data = %d, want 11", len(cds))
	}
	green := RGB8(50, 205, 50)
	for i, cd := range cds {
		if i < 5 {
			if !cd.HasManualColor || cd.TextColor != green {
				t.Errorf("char %d %q: manual=%v color=%v", i, cd.Char, cd.HasManualColor, cd.TextColor)
			}
		} else if cd.HasManualColor || cd.TextColor != def {
			t.Errorf("char %d %q: manual=%v color=%v", i, cd.Char, cd.HasManualColor, cd.TextColor)
		}
		if cd.CharIndex != i || cd.BaseX != float64(i)*testAdvance {
			t.Errorf("char %d: index=%d baseX=%v", i, cd.CharIndex, cd.BaseX)
		}
	}
}

func TestWrap_EffectsFlagOnlyWhenNeeded(t *testing.T) {
	lines := wrapText(t, "plain\n{FX:wave}fx{/FX}\n{SHADOW:1,1,1}s", WrapOptions{MaxWidth: 200})
	want := []bool{false, true, true}
	for i, l := range lines {
		if l.HasEffects != want[i] {
			t.Errorf("line %d %q: HasEffects = %v", i, l.Text, l.HasEffects)
		}
		if !l.HasEffects && l.CharacterData != nil {
			t.Errorf("line %d: plain line has character data", i)
		}
	}
	if lines[1].CharacterData[0].EffectID != "wave" {
		t.Errorf("effect id = %q", lines[1].CharacterData[0].EffectID)
	}
	if !lines[2].CharacterData[0].HasManualShadow {
		t.Error("manual shadow not flagged")
	}
}

func TestWrap_EffectSpanAcrossLines(t *testing.T) {
	lines := wrapText(t, "ab{FX:wave}cd\nef{/FX}gh", WrapOptions{MaxWidth: 200})
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lineTexts(lines))
	}
	ids := []string{"", "", "wave", "wave", "wave", "wave", "", ""}
	var got []string
	for _, l := range lines {
		for _, cd := range l.CharacterData {
			got = append(got, cd.EffectID)
		}
	}
	if strings.Join(got, ",") != strings.Join(ids, ",") {
		t.Errorf("effect ids = %q, want %q", got, ids)
	}
}

func TestWrap_WordWrap(t *testing.T) {
	lines := wrapText(t, "hello big world", WrapOptions{MaxWidth: 60, WordWrap: true})
	want := []string{"hello big ", "world"}
	if strings.Join(lineTexts(lines), "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lineTexts(lines), want)
	}

	// A single word longer than the width still hard-cuts.
	lines = wrapText(t, "abcdefghijkl", WrapOptions{MaxWidth: 30, WordWrap: true})
	if len(lines) != 3 {
		t.Errorf("lines = %q", lineTexts(lines))
	}
}
