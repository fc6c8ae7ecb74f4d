package msgbox

import (
	"fmt"
	"os"
)

// debugTransition prints a state change to stderr when the box was created
// by an Engine with Debug set.
func (b *Box) debugTransition(from State, event string) {
	if !b.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[msgbox] %s --%s--> %s | token %d/%d | char %d/%d | page line %d\n",
		from, event, b.state, b.tokenIndex, len(b.tokens), b.charIndex, len(b.charLine), b.pageStartLine)
}

// DebugString summarizes the box state on one line.
func (b *Box) DebugString() string {
	return fmt.Sprintf("state=%s token=%d/%d char=%d/%d page=%d scroll=%.1f speed=%.4f t=%.2f",
		b.state, b.tokenIndex, len(b.tokens), b.charIndex, len(b.charLine),
		b.pageStartLine, b.scrollOffset, b.textSpeed, b.effectTime)
}
