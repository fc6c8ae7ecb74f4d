package msgbox

import (
	"encoding/json"
	"fmt"
	"strings"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
	Frames int    `json:"frames,omitempty"`
}

// inputScript is the top-level JSON structure of an input script.
type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

// InputScript sequences button presses and snapshots across ticks so a box
// can be driven deterministically. Actions: "press" (advance), "speedup",
// "wait" (frames), "snapshot" (label).
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadInputScript parses a JSON input script.
func LoadInputScript(jsonData []byte) (*InputScript, error) {
	var script inputScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "press", "speedup", "wait", "snapshot":
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &InputScript{steps: script.Steps}, nil
}

// Done reports whether every step has been executed.
func (r *InputScript) Done() bool {
	return r.done
}

// Step returns the input for one tick and the snapshot label requested on
// that tick, if any.
func (r *InputScript) Step() (in Input, snapshot string) {
	if r.done {
		return in, ""
	}
	if r.waitCount > 0 {
		r.waitCount--
		r.checkDone()
		return in, ""
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return in, ""
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		in.Advance = true
	case "speedup":
		in.SpeedUp = true
	case "snapshot":
		snapshot = st.Label
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
	r.checkDone()
	return in, snapshot
}

func (r *InputScript) checkDone() {
	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}

// RunScript drives b with script until the script ends, ticking dt seconds
// per step. snap is called for every snapshot step after that tick's
// update; a non-nil error stops the run.
func RunScript(b *Box, script *InputScript, dt float64, snap func(label string) error) error {
	for !script.Done() {
		in, label := script.Step()
		b.Update(dt, in)
		if label != "" && snap != nil {
			if err := snap(label); err != nil {
				return fmt.Errorf("snapshot %q: %w", label, err)
			}
		}
	}
	return nil
}

// LabelFileName turns a snapshot label into a safe file name stem.
// Characters other than letters, digits, '-' and '.' become '_'; an empty
// label becomes "unlabeled".
func LabelFileName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
