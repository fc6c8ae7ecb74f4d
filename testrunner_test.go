package msgbox

import (
	"errors"
	"reflect"
	"testing"
)

func TestLoadInputScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "snapshot", "label": "initial"},
			{"action": "press"},
			{"action": "wait", "frames": 3},
			{"action": "speedup"}
		]
	}`)

	script, err := LoadInputScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(script.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(script.steps))
	}
	if script.steps[0].Action != "snapshot" || script.steps[0].Label != "initial" {
		t.Error("step 0 mismatch")
	}
	if script.steps[2].Action != "wait" || script.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
}

func TestLoadInputScript_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"empty", `{"steps": []}`},
		{"unknown action", `{"steps": [{"action": "click"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadInputScript([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInputScript_StepSequence(t *testing.T) {
	script, err := LoadInputScript([]byte(`{"steps": [
		{"action": "press"},
		{"action": "wait", "frames": 2},
		{"action": "snapshot", "label": "end"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	type tick struct {
		in    Input
		label string
	}
	var got []tick
	for !script.Done() {
		in, label := script.Step()
		got = append(got, tick{in, label})
	}
	want := []tick{
		{Input{Advance: true}, ""},
		{Input{}, ""},
		{Input{}, ""},
		{Input{}, "end"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ticks = %+v, want %+v", got, want)
	}

	// Stepping a finished script is a no-op.
	if in, label := script.Step(); in != (Input{}) || label != "" {
		t.Errorf("step after done = %+v %q", in, label)
	}
}

func TestRunScript_DrivesBox(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "Line1\\pLine2", TextSpeedInstant)
	script, err := LoadInputScript([]byte(`{"steps": [
		{"action": "wait", "frames": 2},
		{"action": "snapshot", "label": "page1"},
		{"action": "press"},
		{"action": "snapshot", "label": "page2"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	var states []State
	err = RunScript(b, script, testDT, func(label string) error {
		states = append(states, b.State())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(states, []State{StateWait, StateFinished}) {
		t.Errorf("states at snapshots = %v", states)
	}
	if b.PageStartLine() != 1 {
		t.Errorf("page = %d", b.PageStartLine())
	}
}

func TestRunScript_SnapshotError(t *testing.T) {
	e := newTestEngine(t)
	b := showText(t, e, "x", TextSpeedInstant)
	script, _ := LoadInputScript([]byte(`{"steps": [{"action": "snapshot", "label": "boom"}]}`))
	sentinel := errors.New("disk full")
	err := RunScript(b, script, testDT, func(string) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v", err)
	}
}

func TestLabelFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"paused", "paused"},
		{"page-2", "page-2"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"../escape", ".._escape"},
		{"POKéMON", "POK_MON"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := LabelFileName(tt.in); got != tt.want {
			t.Errorf("LabelFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
