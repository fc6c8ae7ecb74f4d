// Package ecs runs message boxes inside a [Donburi] world.
//
// Each open box is an entity carrying the [Message] component. A [System]
// opens boxes, ticks them with player input, draws them and closes them once
// the player dismisses the finished text. Other systems can open a box by
// publishing [ShowMessageEvent] and learn about lifecycle changes through
// [MessageOpenedEvent] and [MessageClosedEvent].
//
// Usage:
//
//	sys := ecs.NewSystem(world, engine)
//	id, _ := sys.Show(msgbox.ShowRequest{Text: "Hello!"}, area)
//
//	// Update
//	sys.Update(1.0/60, input.Poll())
//
//	// Draw
//	sys.Draw(canvas)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
