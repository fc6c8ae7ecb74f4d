package msgbox

import (
	"testing"
)

// tickUntil updates b with no input until cond holds or limit ticks pass.
// It returns the number of ticks taken.
func tickUntil(t *testing.T, b *Box, limit int, cond func() bool) int {
	t.Helper()
	for n := 1; n <= limit; n++ {
		b.Update(testDT, Input{})
		if cond() {
			return n
		}
	}
	t.Fatalf("condition not met after %d ticks (%s)", limit, b.DebugString())
	return 0
}

// --- Timed reveal and pause ---

func TestBox_PauseThenFinish(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "Hi{PAUSE:0.5}!", TextSpeedFast)

	b.Update(testDT, Input{})
	if b.CurrentCharIndex() != 1 {
		t.Fatalf("after tick 1: char = %d, want 1", b.CurrentCharIndex())
	}
	b.Update(testDT, Input{})
	if b.CurrentCharIndex() != 2 {
		t.Fatalf("after tick 2: char = %d, want 2", b.CurrentCharIndex())
	}
	b.Update(testDT, Input{})
	if b.State() != StatePaused {
		t.Fatalf("after tick 3: state = %v, want paused", b.State())
	}

	n := tickUntil(t, b, 60, func() bool { return b.State() != StatePaused })
	if n < 30 || n > 31 {
		t.Errorf("pause lasted %d ticks, want ~30", n)
	}
	if b.State() != StateFinished {
		t.Errorf("state = %v, want finished", b.State())
	}
	if b.CurrentCharIndex() != 3 {
		t.Errorf("char = %d, want 3", b.CurrentCharIndex())
	}
}

func TestBox_ZeroPauseIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	with := showText(t, e, "AB{PAUSE:0}CD", TextSpeedFast)
	without := showText(t, e, "ABCD", TextSpeedFast)

	for tick := 0; tick < 6; tick++ {
		with.Update(testDT, Input{})
		without.Update(testDT, Input{})
		if with.CurrentCharIndex() != without.CurrentCharIndex() || with.State() != without.State() {
			t.Fatalf("tick %d: with pause (%d, %v) != without (%d, %v)", tick,
				with.CurrentCharIndex(), with.State(), without.CurrentCharIndex(), without.State())
		}
	}
}

func TestBox_SpeedZeroRevealsInOneTick(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "{SPEED:0}Hello there", TextSpeedSlow)
	b.Update(testDT, Input{})
	if b.CurrentCharIndex() != b.CharCount() {
		t.Errorf("char = %d, want %d", b.CurrentCharIndex(), b.CharCount())
	}
	if b.State() != StateFinished {
		t.Errorf("state = %v", b.State())
	}
}

func TestBox_SlowSpeedRevealsEveryEightFrames(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "abc", TextSpeedSlow)
	b.Update(testDT, Input{})
	if b.CurrentCharIndex() != 1 {
		t.Fatalf("char = %d, want 1", b.CurrentCharIndex())
	}
	n := tickUntil(t, b, 20, func() bool { return b.CurrentCharIndex() == 2 })
	if n < 7 || n > 9 {
		t.Errorf("second char after %d ticks, want ~8", n)
	}
}

// --- Pages ---

func TestBox_PageBreak(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "Line1\\pLine2", TextSpeedInstant)

	b.Update(testDT, Input{})
	if b.State() != StateWait {
		t.Fatalf("state = %v, want wait", b.State())
	}
	if b.CurrentCharIndex() != 5 || b.PageStartLine() != 0 {
		t.Fatalf("char = %d page = %d", b.CurrentCharIndex(), b.PageStartLine())
	}

	// Without a press nothing moves.
	b.Update(testDT, Input{})
	if b.State() != StateWait {
		t.Fatalf("state changed without press: %v", b.State())
	}

	b.Update(testDT, Input{Advance: true})
	if b.PageStartLine() != 1 {
		t.Errorf("page = %d, want 1", b.PageStartLine())
	}
	if b.State() != StateFinished || b.CurrentCharIndex() != 10 {
		t.Errorf("state = %v char = %d", b.State(), b.CurrentCharIndex())
	}
}

func TestBox_PauseUntilPressKeepsPage(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "Hey{PAUSE_UNTIL_PRESS} you", TextSpeedInstant)
	b.Update(testDT, Input{})
	if b.State() != StateWait {
		t.Fatalf("state = %v", b.State())
	}
	if !b.Waiting() {
		t.Error("Waiting() = false")
	}
	b.Update(testDT, Input{Advance: true})
	if b.PageStartLine() != 0 {
		t.Errorf("page = %d, want 0", b.PageStartLine())
	}
	if b.State() != StateFinished {
		t.Errorf("state = %v", b.State())
	}
}

func TestBox_ClearStartsNewPage(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "AB{CLEAR}CD", TextSpeedInstant)
	b.Update(testDT, Input{})
	if b.PageStartLine() != 1 {
		t.Errorf("page = %d, want 1", b.PageStartLine())
	}
	if b.State() != StateFinished || b.CurrentCharIndex() != 4 {
		t.Errorf("state = %v char = %d", b.State(), b.CurrentCharIndex())
	}
}

// --- Scrolling ---

func TestBox_ScrollCode(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "A\nB\\lC", TextSpeedSlow)

	tickUntil(t, b, 100, func() bool { return b.State() == StateWaitForScroll })
	if b.CurrentCharIndex() != 2 {
		t.Fatalf("char = %d, want 2", b.CurrentCharIndex())
	}

	b.Update(testDT, Input{Advance: true})
	if b.State() != StateScrolling {
		t.Fatalf("state = %v, want scrolling", b.State())
	}
	if b.ScrollSpeed() != ScrollSpeedSlow {
		t.Errorf("scroll speed = %v, want %v", b.ScrollSpeed(), ScrollSpeedSlow)
	}
	if !approx(b.ScrollDistanceRemaining(), b.LineStep()) {
		t.Errorf("remaining = %v, want %v", b.ScrollDistanceRemaining(), b.LineStep())
	}

	b.Update(testDT, Input{})
	step := ScrollSpeedSlow * testDT
	if d := b.ScrollOffset() - step; d < -1e-3 || d > 1e-3 {
		t.Errorf("offset = %v, want %v", b.ScrollOffset(), step)
	}

	tickUntil(t, b, 100, func() bool { return b.State() != StateScrolling })
	if b.PageStartLine() != 1 {
		t.Errorf("page = %d, want 1", b.PageStartLine())
	}
	if b.ScrollOffset() != 0 {
		t.Errorf("offset = %v after scroll", b.ScrollOffset())
	}
}

func TestBox_OverflowWaitsForScroll(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "A\nB\nC", TextSpeedInstant)
	b.Update(testDT, Input{})
	if b.State() != StateWaitForScroll {
		t.Fatalf("state = %v, want wait_for_scroll", b.State())
	}
	if b.CurrentCharIndex() != 2 {
		t.Errorf("char = %d, want 2", b.CurrentCharIndex())
	}
	b.Update(testDT, Input{Advance: true})
	tickUntil(t, b, 10, func() bool { return b.State() == StateFinished })
	if b.PageStartLine() != 1 {
		t.Errorf("page = %d", b.PageStartLine())
	}
}

func TestBox_AutoScroll(t *testing.T) {
	e := newTestEngine(t)
	b, err := e.Show(ShowRequest{Text: "A\nB\nC", TextSpeed: speed(0), AutoScroll: boolPtr(true)})
	if err != nil {
		t.Fatal(err)
	}
	b.Update(testDT, Input{})
	if b.State() != StateScrolling {
		t.Fatalf("state = %v, want scrolling", b.State())
	}
	if b.ScrollSpeed() != ScrollSpeedInstant {
		t.Errorf("scroll speed = %v", b.ScrollSpeed())
	}
	tickUntil(t, b, 10, func() bool { return b.State() == StateFinished })
}

// --- Speed-up, colors, reset ---

func TestBox_SpeedUp(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "Hello{SPEED:8} world", TextSpeedSlow)
	b.Update(testDT, Input{})
	if b.CurrentCharIndex() != 1 {
		t.Fatalf("char = %d", b.CurrentCharIndex())
	}
	b.Update(testDT, Input{SpeedUp: true})
	if !b.HasBeenSpedUp() {
		t.Error("HasBeenSpedUp = false")
	}
	if b.CurrentCharIndex() != b.CharCount() {
		t.Errorf("char = %d, want all %d", b.CurrentCharIndex(), b.CharCount())
	}
	if b.TextSpeed() != TextSpeedInstant {
		t.Errorf("SPEED after speed-up changed speed to %v", b.TextSpeed())
	}
}

func TestBox_SpeedUpDisabled(t *testing.T) {
	e := newTestEngine(t)
	b, err := e.Show(ShowRequest{Text: "Hello", TextSpeed: speed(TextSpeedSlow), CanSpeedUp: boolPtr(false)})
	if err != nil {
		t.Fatal(err)
	}
	b.Update(testDT, Input{SpeedUp: true})
	if b.HasBeenSpedUp() || b.CurrentCharIndex() != 1 {
		t.Errorf("sped up = %v char = %d", b.HasBeenSpedUp(), b.CurrentCharIndex())
	}
}

func TestBox_ColorAndReset(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "{COLOR:1,2,3}{SHADOW:4,5,6}{SPEED:2}A{PAUSE_UNTIL_PRESS}{RESET}B", TextSpeedFast)

	tickUntil(t, b, 20, func() bool { return b.State() == StateWait })
	txt, sh := b.Colors()
	if txt != RGB8(1, 2, 3) || sh != RGB8(4, 5, 6) {
		t.Errorf("colors = %v %v", txt, sh)
	}
	if !approx(b.TextSpeed(), 2.0/60) {
		t.Errorf("speed = %v", b.TextSpeed())
	}

	b.Update(testDT, Input{Advance: true})
	dt, ds := b.DefaultColors()
	txt, sh = b.Colors()
	if txt != dt || sh != ds {
		t.Errorf("after reset colors = %v %v, want defaults", txt, sh)
	}
	if b.TextSpeed() != TextSpeedFast {
		t.Errorf("after reset speed = %v", b.TextSpeed())
	}
}

func TestBox_CurrentEffectID(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "{FX:shake}ab{PAUSE_UNTIL_PRESS}{/FX}c", TextSpeedInstant)
	b.Update(testDT, Input{})
	if b.CurrentEffectID() != "shake" {
		t.Errorf("effect = %q", b.CurrentEffectID())
	}
	b.Update(testDT, Input{Advance: true})
	if b.CurrentEffectID() != "" {
		t.Errorf("effect after /FX = %q", b.CurrentEffectID())
	}
}

// --- Invariants ---

func TestBox_CursorInvariants(t *testing.T) {
	texts := []string{
		"Hi{PAUSE:0.5}!",
		"Line1\\pLine2\\pLine3",
		"A\nB\nC\nD\\lE",
		"{FX:base:texteffect:wave}wavy{/FX} and {COLOR:1,1,1}red{RESET} text that is long enough to wrap twice over",
		"{CLEAR}{CLEAR}x",
		"",
	}
	e := newTestEngine(t)
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			b := showText(t, e, text, TextSpeedFast)
			prev := 0
			for tick := 0; tick < 2000 && b.State() != StateFinished; tick++ {
				in := Input{Advance: tick%17 == 0}
				b.Update(testDT, in)

				cur := b.CurrentCharIndex()
				if cur < prev {
					t.Fatalf("cursor moved back %d -> %d", prev, cur)
				}
				if cur < 0 || cur > b.CharCount() {
					t.Fatalf("cursor %d out of [0,%d]", cur, b.CharCount())
				}
				if b.CharCount() > 0 && b.LineOfChar(cur) < b.PageStartLine() {
					t.Fatalf("cursor line %d before page %d", b.LineOfChar(cur), b.PageStartLine())
				}
				prev = cur
			}
			if b.State() != StateFinished {
				t.Fatalf("never finished: %s", b.DebugString())
			}
			if b.CurrentCharIndex() != b.CharCount() {
				t.Errorf("finished with %d/%d chars", b.CurrentCharIndex(), b.CharCount())
			}
		})
	}
}

// --- Lifecycle ---

func TestBox_DismissAndHide(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "ok", TextSpeedInstant)
	b.Update(testDT, Input{})
	if b.Dismissed() {
		t.Fatal("dismissed before press")
	}
	b.Update(testDT, Input{Advance: true})
	if !b.Dismissed() {
		t.Fatal("not dismissed after press")
	}

	b.Hide()
	if b.Visible() || b.State() != StateHidden {
		t.Fatalf("state = %v", b.State())
	}
	et := b.EffectTime()
	b.Update(testDT, Input{Advance: true})
	if b.EffectTime() != et {
		t.Error("hidden box kept updating")
	}
	b.Hide() // idempotent
}

func TestBox_HideMidReveal(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "{FX:shake}long text{/FX}", TextSpeedSlow)
	b.Update(testDT, Input{})
	b.Hide()
	if b.State() != StateHidden {
		t.Errorf("state = %v", b.State())
	}
	if (b.ShakeOffset("shake", 0) != Vec2{}) {
		t.Error("shake cache not released")
	}
}

// --- Sound ---

func TestBox_CharSoundThrottled(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "abc def", TextSpeedInstant)
	var played []rune
	b.OnCharSound = func(r rune) { played = append(played, r) }
	b.Update(testDT, Input{})
	if len(played) != 1 || played[0] != 'a' {
		t.Errorf("played = %q, want one blip for 'a'", string(played))
	}
}

func TestBox_CharSoundSkipsSpaces(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlipInterval = 0
	e := NewEngine(cfg, fixedFonts{}, nil)
	b, err := e.Show(ShowRequest{Text: "a b", TextSpeed: speed(TextSpeedFast)})
	if err != nil {
		t.Fatal(err)
	}
	var played []rune
	b.OnCharSound = func(r rune) { played = append(played, r) }
	tickUntil(t, b, 10, func() bool { return b.State() == StateFinished })
	if string(played) != "ab" {
		t.Errorf("played = %q, want \"ab\"", string(played))
	}
}

// --- Shake cache ---

func TestBox_ShakeRegeneratesOnInterval(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "{FX:shake}abcdef{/FX}", TextSpeedInstant)
	first := b.ShakeOffset("shake", 0)
	if first == (Vec2{}) {
		t.Fatal("no initial shake offset")
	}

	b.Update(0.05, Input{})
	if b.ShakeOffset("shake", 0) != first {
		t.Error("offsets regenerated before interval")
	}
	b.Update(0.06, Input{})
	if b.ShakeOffset("shake", 0) == first {
		t.Error("offsets not regenerated after interval")
	}
}

func TestBox_DeterministicShake(t *testing.T) {
	defs := newTestDefs()
	defs.effects["shake"].DeterministicShake = true
	e := NewEngine(DefaultConfig(), fixedFonts{}, defs)

	a, _ := e.Show(ShowRequest{Text: "{FX:shake}abc{/FX}", Seed: 1})
	b, _ := e.Show(ShowRequest{Text: "{FX:shake}abc{/FX}", Seed: 2})
	for i := 0; i < 3; i++ {
		if a.ShakeOffset("shake", i) != b.ShakeOffset("shake", i) {
			t.Errorf("char %d differs across seeds", i)
		}
	}
}

// --- State machine ---

func TestBox_RefusedTransitionKeepsState(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "x", TextSpeedInstant)
	b.fire(evResume) // not legal from handle_char
	if b.State() != StateHandleChar {
		t.Errorf("state = %v", b.State())
	}
}

func TestStateString(t *testing.T) {
	for s := StateHandleChar; s <= StateHidden; s++ {
		if got := parseState(s.String()); got != s {
			t.Errorf("parseState(%q) = %v", s.String(), got)
		}
	}
}
