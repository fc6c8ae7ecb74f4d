// Package script exposes message boxes to Lua mods.
//
// A Runtime installs a global "message" table:
//
//	local id = message.show("Hello!")
//	local id = message.show{text = "{COLOR:224,8,8}Hot!", speed = "slow", can_speed_up = false}
//	if message.is_open(id) then message.close(id) end
//
// show accepts a string or a table with the fields text, speed (a tier name
// or seconds per character), can_speed_up, auto_scroll, font, width,
// text_color, shadow_color and background_color ("r,g,b"), and x, y, w, h
// for the text area. It returns the box id.
package script

import (
	"fmt"

	"github.com/phanxgames/msgbox"
	lua "github.com/yuin/gopher-lua"
)

// Messenger opens and closes boxes. *ecs.System implements it.
type Messenger interface {
	Show(req msgbox.ShowRequest, area msgbox.Rect) (int, error)
	Close(id int) error
	IsOpen(id int) bool
}

// Runtime is a Lua state with the message bindings installed. It is not
// safe for concurrent use.
type Runtime struct {
	L    *lua.LState
	Area msgbox.Rect // text area used when show omits x, y, w, h

	msg Messenger
}

// New creates a Lua state bound to m.
func New(m Messenger, area msgbox.Rect) *Runtime {
	r := &Runtime{L: lua.NewState(), Area: area, msg: m}
	r.register()
	return r
}

// Close releases the Lua state.
func (r *Runtime) Close() {
	r.L.Close()
}

// DoString runs a chunk of Lua source.
func (r *Runtime) DoString(src string) error {
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("msgbox: script: %w", err)
	}
	return nil
}

// DoFile runs a Lua file.
func (r *Runtime) DoFile(path string) error {
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("msgbox: script %s: %w", path, err)
	}
	return nil
}

func (r *Runtime) register() {
	l := r.L
	tbl := l.NewTable()
	l.SetFuncs(tbl, map[string]lua.LGFunction{
		"show":    r.luaShow,
		"close":   r.luaClose,
		"is_open": r.luaIsOpen,
	})
	// Tier names usable as speed values.
	for name, v := range map[string]float64{
		"SLOW":    msgbox.TextSpeedSlow,
		"MEDIUM":  msgbox.TextSpeedMedium,
		"FAST":    msgbox.TextSpeedFast,
		"INSTANT": msgbox.TextSpeedInstant,
	} {
		l.SetField(tbl, name, lua.LNumber(v))
	}
	l.SetGlobal("message", tbl)
}

func (r *Runtime) luaShow(l *lua.LState) int {
	req := msgbox.ShowRequest{}
	area := r.Area
	switch v := l.Get(1).(type) {
	case lua.LString:
		req.Text = string(v)
	case *lua.LTable:
		if err := readRequest(v, &req, &area); err != nil {
			l.ArgError(1, err.Error())
		}
	default:
		l.ArgError(1, "string or table expected")
	}

	id, err := r.msg.Show(req, area)
	if err != nil {
		l.RaiseError("message.show: %v", err)
	}
	l.Push(lua.LNumber(id))
	return 1
}

func (r *Runtime) luaClose(l *lua.LState) int {
	id := l.CheckInt(1)
	l.Push(lua.LBool(r.msg.Close(id) == nil))
	return 1
}

func (r *Runtime) luaIsOpen(l *lua.LState) int {
	id := l.CheckInt(1)
	l.Push(lua.LBool(r.msg.IsOpen(id)))
	return 1
}

// readRequest fills req and area from a show{...} table.
func readRequest(t *lua.LTable, req *msgbox.ShowRequest, area *msgbox.Rect) error {
	text, ok := t.RawGetString("text").(lua.LString)
	if !ok {
		return fmt.Errorf("text must be a string")
	}
	req.Text = string(text)

	switch v := t.RawGetString("speed").(type) {
	case lua.LNumber:
		s := float64(v)
		req.TextSpeed = &s
	case lua.LString:
		s, err := msgbox.ParseTextSpeed(string(v))
		if err != nil {
			return err
		}
		req.TextSpeed = &s
	}
	if v, ok := t.RawGetString("can_speed_up").(lua.LBool); ok {
		b := bool(v)
		req.CanSpeedUp = &b
	}
	if v, ok := t.RawGetString("auto_scroll").(lua.LBool); ok {
		b := bool(v)
		req.AutoScroll = &b
	}
	if v, ok := t.RawGetString("font").(lua.LString); ok {
		req.FontID = string(v)
	}
	if v, ok := t.RawGetString("width").(lua.LNumber); ok {
		req.Width = float64(v)
	}

	colors := []struct {
		key string
		dst **msgbox.Color
	}{
		{"text_color", &req.TextColor},
		{"shadow_color", &req.ShadowColor},
		{"background_color", &req.BackgroundColor},
	}
	for _, c := range colors {
		v, ok := t.RawGetString(c.key).(lua.LString)
		if !ok {
			continue
		}
		col, err := msgbox.ParseRGB(string(v))
		if err != nil {
			return fmt.Errorf("%s: %w", c.key, err)
		}
		*c.dst = &col
	}

	for key, dst := range map[string]*float64{
		"x": &area.X, "y": &area.Y, "w": &area.Width, "h": &area.Height,
	} {
		if v, ok := t.RawGetString(key).(lua.LNumber); ok {
			*dst = float64(v)
		}
	}
	return nil
}
