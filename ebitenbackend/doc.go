// Package ebitenbackend renders message boxes with Ebitengine.
//
// A FontSet holds BMFont atlases and TrueType faces by id and measures text
// for msgbox.Engine. A Canvas wraps a FontSet and a target image and
// implements msgbox.TextDrawer. InputMap turns key and pointer presses into
// msgbox.Input.
//
//	fonts, _ := ebitenbackend.DefaultFontSet()
//	engine := msgbox.NewEngine(msgbox.DefaultConfig(), fonts, defs)
//	canvas := ebitenbackend.NewCanvas(fonts)
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		canvas.Target = screen
//		canvas.DrawPanel(engine.Config.PanelArea(area), box.BackgroundColor())
//		engine.Draw(box, canvas, area)
//	}
package ebitenbackend
