// Command msgpreview plays messages in the terminal the way the in-game box
// shows them, control codes and effects included.
//
//	msgpreview -config box.ini -defs effects.json "Hello{PAUSE:0.5}\pBye!"
//	msgpreview -lua intro.lua
//
// Enter, Space or z advance; x or Backspace speed up; Esc quits. Messages
// given as arguments are shown one after another.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/msgbox"
	"github.com/phanxgames/msgbox/defs"
	"github.com/phanxgames/msgbox/ecs"
	"github.com/phanxgames/msgbox/script"
	"github.com/phanxgames/msgbox/sound"
	"github.com/phanxgames/msgbox/termbackend"
	"github.com/yohamta/donburi"
)

const tick = time.Second / 60

type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	var (
		configPath = flag.String("config", "", "INI config file")
		luaPath    = flag.String("lua", "", "Lua script calling message.show")
		blips      = flag.Bool("sound", false, "play typing blips")
		status     = flag.Bool("status", true, "show box state on the last row")
		defFiles   listFlag
	)
	flag.Var(&defFiles, "defs", "effect/palette definition JSON (repeatable)")
	flag.Parse()

	if err := run(*configPath, defFiles, *luaPath, *blips, *status, flag.Args()); err != nil {
		log.Fatalf("msgpreview: %v", err)
	}
}

func run(configPath string, defFiles []string, luaPath string, blips, status bool, texts []string) error {
	cfg := msgbox.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = msgbox.LoadConfig(configPath); err != nil {
			return err
		}
	}
	// Cells are coarse: a pixel shadow or line gap would only misalign rows.
	cfg.ShadowOffset = msgbox.Vec2{}
	cfg.LineSpacing = 0

	registry := defs.New()
	for _, path := range defFiles {
		if err := registry.LoadFile(path); err != nil {
			return err
		}
	}
	if err := registry.Validate(); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	renderer := termbackend.NewRenderer(screen)
	engine := msgbox.NewEngine(cfg, renderer, registry)

	world := donburi.NewWorld()
	sys := ecs.NewSystem(world, engine)
	area := cfg.TextArea(renderer.CellWidth, renderer.CellHeight)

	if blips {
		player := sound.NewPlayer(cfg.BlipFrequency, 0.3)
		if err := player.Init(); err != nil {
			log.Printf("msgpreview: audio disabled: %v", err)
		} else {
			defer player.Close()
			sys.CharSound = player.CharSound
		}
	}

	queue := append([]string(nil), texts...)
	showNext := func() error {
		if len(queue) == 0 {
			return nil
		}
		text := queue[0]
		queue = queue[1:]
		_, err := sys.Show(msgbox.ShowRequest{Text: text}, area)
		return err
	}
	ecs.MessageClosedEvent.Subscribe(world, func(w donburi.World, e ecs.MessageClosed) {
		if err := showNext(); err != nil {
			log.Printf("msgpreview: %v", err)
		}
	})

	if luaPath != "" {
		rt := script.New(sys, area)
		defer rt.Close()
		if err := rt.DoFile(luaPath); err != nil {
			return err
		}
	}
	if len(sys.Open()) == 0 {
		if err := showNext(); err != nil {
			return err
		}
	}
	if len(sys.Open()) == 0 {
		return fmt.Errorf("nothing to show: pass message text or -lua")
	}

	done := make(chan struct{})
	defer close(done)
	events := pumpEvents(screen.PollEvent, done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var in msgbox.Input
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				k := termbackend.KeyInput(ev)
				in.Advance = in.Advance || k.Advance
				in.SpeedUp = in.SpeedUp || k.SpeedUp
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			sys.Update(tick.Seconds(), in)
			in = msgbox.Input{}
			if len(sys.Open()) == 0 {
				return nil
			}

			screen.Clear()
			if err := sys.Draw(renderer); err != nil {
				return err
			}
			if status {
				drawStatus(screen, sys)
			}
			screen.Show()
		}
	}
}

func drawStatus(screen tcell.Screen, sys *ecs.System) {
	ids := sys.Open()
	line := sys.Box(ids[len(ids)-1]).DebugString()
	_, h := screen.Size()
	style := tcell.StyleDefault.Dim(true)
	for x, r := range []rune(line) {
		screen.SetContent(x, h-1, r, nil, style)
	}
}

// pumpEvents forwards poll results until poll returns nil or done closes.
// The returned channel is closed when the pump stops.
func pumpEvents(poll func() tcell.Event, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := poll()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}
