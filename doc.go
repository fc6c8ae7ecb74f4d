// Package msgbox is a GBA-style message-box text engine for 2D games.
//
// Message text embeds control codes that the engine turns into timed
// reveals, pauses, color changes, page breaks, scrolling and animated text
// effects. The pipeline runs once when a box is shown and is then driven by
// per-tick updates:
//
//	raw text -> Parser -> tokens -> Wrap -> lines -> Box.Update -> Engine.Draw
//
// # Quick start
//
//	engine := msgbox.NewEngine(msgbox.DefaultConfig(), fonts, defs)
//	box, err := engine.Show(msgbox.ShowRequest{Text: "Hello!\\pBye."})
//	// each tick:
//	box.Update(dt, msgbox.Input{Advance: pressedA})
//	engine.Draw(box, drawer, msgbox.Rect{X: 16, Y: 120, Width: 208, Height: 32})
//
// Font backends live in subpackages: ebitenbackend (Ebitengine),
// snapshot (offscreen PNG via gg) and termbackend (tcell terminals).
//
// # Control codes
//
//	{PAUSE:0.5}          timed pause in seconds
//	{PAUSE_UNTIL_PRESS}  wait for the advance button
//	{COLOR:r,g,b}        text color, channels 0-255
//	{SHADOW:r,g,b}       shadow color
//	{SPEED:n}            n frames (1/60 s) per character, 0 is instant
//	{CLEAR}              clear the box immediately
//	{RESET}              restore default color, shadow and speed
//	{FX:id} ... {/FX}    apply a named text effect
//	\p                   wait, then start a new page
//	\l                   wait, then scroll up one line
//	\n                   line break
//
// Unrecognized {...} blocks are handled by the parser's DirectivePolicy:
// echoed literally (default), skipped, or rejected.
//
// # Text effects
//
// Effects are looked up by id in a DefinitionRegistry (see package defs)
// and combine wave, hang, sidestep and shake offsets with wobble rotation,
// pulsing scale and fade, glow and palette color cycling. Lines without any
// effect or color override take a fast path of two draw calls.
package msgbox
