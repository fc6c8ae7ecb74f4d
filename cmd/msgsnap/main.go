// Command msgsnap drives a message box with a JSON input script and writes
// a PNG for every snapshot step.
//
//	msgsnap -input steps.json -out frames "{COLOR:224,8,8}Hot!{PAUSE:0.3} Done."
//
// The input script has the form
//
//	{"steps": [{"action": "wait", "frames": 30}, {"action": "snapshot", "label": "paused"},
//	           {"action": "press"}, {"action": "snapshot", "label": "next"}]}
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/msgbox"
	"github.com/phanxgames/msgbox/defs"
	"github.com/phanxgames/msgbox/snapshot"
	"golang.org/x/image/font/gofont/goregular"
)

type options struct {
	configPath string
	defFiles   []string
	inputPath  string
	outDir     string
	fontPath   string
	fontSize   float64
	margin     int
	seed       uint64
	debug      bool
}

func main() {
	var opts options
	var defList string
	flag.StringVar(&opts.configPath, "config", "", "INI config file")
	flag.StringVar(&defList, "defs", "", "comma-separated definition JSON files")
	flag.StringVar(&opts.inputPath, "input", "", "JSON input script (required)")
	flag.StringVar(&opts.outDir, "out", ".", "output directory for PNG frames")
	flag.StringVar(&opts.fontPath, "font", "", "TTF file for the default font (Go Regular if empty)")
	flag.Float64Var(&opts.fontSize, "size", snapshot.DefaultFontSize, "font size in points")
	flag.IntVar(&opts.margin, "margin", 8, "pixels around the panel")
	flag.Uint64Var(&opts.seed, "seed", 1, "shake seed")
	flag.BoolVar(&opts.debug, "debug", false, "trace state transitions to stderr")
	flag.Parse()

	if defList != "" {
		opts.defFiles = strings.Split(defList, ",")
	}
	if opts.inputPath == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: msgsnap -input steps.json [flags] <message>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	n, err := run(opts, flag.Arg(0))
	if err != nil {
		log.Fatalf("msgsnap: %v", err)
	}
	log.Printf("msgsnap: wrote %d frames to %s", n, opts.outDir)
}

func run(opts options, text string) (int, error) {
	cfg := msgbox.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = msgbox.LoadConfig(opts.configPath); err != nil {
			return 0, err
		}
	}

	registry := defs.New()
	for _, path := range opts.defFiles {
		if err := registry.LoadFile(path); err != nil {
			return 0, err
		}
	}
	if err := registry.Validate(); err != nil {
		return 0, err
	}

	fonts, err := loadFonts(cfg.FontID, opts.fontPath, opts.fontSize)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(opts.inputPath)
	if err != nil {
		return 0, err
	}
	steps, err := msgbox.LoadInputScript(data)
	if err != nil {
		return 0, err
	}

	engine := msgbox.NewEngine(cfg, fonts, registry)
	engine.Debug = opts.debug
	box, err := engine.Show(msgbox.ShowRequest{Text: text, Seed: opts.seed})
	if err != nil {
		return 0, err
	}

	m := float64(opts.margin)
	area := cfg.TextArea(m, m)
	panel := cfg.PanelArea(area)
	r := snapshot.NewRenderer(fonts, int(panel.Width+2*m), int(panel.Height+2*m))

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return 0, err
	}
	frames := 0
	err = msgbox.RunScript(box, steps, 1.0/60, func(label string) error {
		if err := r.DrawFrame(engine, box, area); err != nil {
			return err
		}
		frames++
		return r.SavePNG(filepath.Join(opts.outDir, msgbox.LabelFileName(label)+".png"))
	})
	return frames, err
}

// loadFonts registers the TTF at path, or Go Regular, under the configured
// font id.
func loadFonts(id, path string, size float64) (*snapshot.FontSet, error) {
	ttf := goregular.TTF
	if path != "" {
		var err error
		if ttf, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	fonts := snapshot.NewFontSet()
	if err := fonts.LoadTTF(id, ttf, size); err != nil {
		return nil, err
	}
	return fonts, nil
}
