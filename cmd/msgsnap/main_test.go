package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun_WritesFrames(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "steps.json")
	steps := `{"steps": [
		{"action": "wait", "frames": 10},
		{"action": "snapshot", "label": "early"},
		{"action": "speedup"},
		{"action": "snapshot", "label": "done"}
	]}`
	if err := os.WriteFile(input, []byte(steps), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "frames")
	n, err := run(options{inputPath: input, outDir: out, fontSize: 12, margin: 4, seed: 1}, "Hello there!")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("frames = %d, want 2", n)
	}
	for _, name := range []string{"early.png", "done.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	os.WriteFile(good, []byte(`{"steps":[{"action":"press"}]}`), 0o644)
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"steps":[{"action":"jump"}]}`), 0o644)

	tests := []struct {
		name string
		opts options
	}{
		{"missing input", options{inputPath: filepath.Join(dir, "nope.json"), outDir: dir, fontSize: 12}},
		{"bad input", options{inputPath: bad, outDir: dir, fontSize: 12}},
		{"missing defs", options{inputPath: good, outDir: dir, fontSize: 12, defFiles: []string{filepath.Join(dir, "nope.json")}}},
		{"missing font", options{inputPath: good, outDir: dir, fontSize: 12, fontPath: filepath.Join(dir, "nope.ttf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(tt.opts, "hi"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
