package ebitenbackend

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/msgbox"
)

// InputMap binds keys and pointer presses to the two message-box buttons.
type InputMap struct {
	Advance []ebiten.Key
	SpeedUp []ebiten.Key
	// PointerAdvance makes a left click or a new touch count as advance.
	PointerAdvance bool

	touchBuf []ebiten.TouchID
}

// DefaultInputMap maps Z, Enter and Space to advance and X or Backspace to
// speed-up, like the A and B buttons.
func DefaultInputMap() *InputMap {
	return &InputMap{
		Advance:        []ebiten.Key{ebiten.KeyZ, ebiten.KeyEnter, ebiten.KeySpace},
		SpeedUp:        []ebiten.Key{ebiten.KeyX, ebiten.KeyBackspace},
		PointerAdvance: true,
	}
}

// Poll returns this tick's edge-triggered input. Call it once per Update.
func (m *InputMap) Poll() msgbox.Input {
	in := msgbox.Input{
		Advance: anyJustPressed(m.Advance),
		SpeedUp: anyJustPressed(m.SpeedUp),
	}
	if m.PointerAdvance && !in.Advance {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			in.Advance = true
		} else {
			m.touchBuf = inpututil.AppendJustPressedTouchIDs(m.touchBuf[:0])
			in.Advance = len(m.touchBuf) > 0
		}
	}
	return in
}

func anyJustPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}
