package ecs

import (
	"fmt"
	"log"
	"sort"

	"github.com/phanxgames/msgbox"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// MessageData is the component state of one open message box.
type MessageData struct {
	ID   int
	Box  *msgbox.Box
	Area msgbox.Rect // text area in screen space
}

// Message is the component type attached to every open message box entity.
var Message = donburi.NewComponentType[MessageData]()

// ShowMessage asks the system to open a box. It is handled on the next
// Update.
type ShowMessage struct {
	Request msgbox.ShowRequest
	Area    msgbox.Rect
}

// MessageOpened reports a box opened through ShowMessageEvent or Show.
type MessageOpened struct {
	ID int
}

// MessageClosed reports a box that was dismissed or closed.
type MessageClosed struct {
	ID int
}

var (
	ShowMessageEvent   = events.NewEventType[ShowMessage]()
	MessageOpenedEvent = events.NewEventType[MessageOpened]()
	MessageClosedEvent = events.NewEventType[MessageClosed]()
)

// PanelDrawer is implemented by drawers that can fill a box background.
// Draw calls it with the padded text area before the text of each box.
type PanelDrawer interface {
	DrawPanel(area msgbox.Rect, bg msgbox.Color)
}

// System owns the message box entities of one world.
type System struct {
	Engine *msgbox.Engine

	// CharSound is installed as the OnCharSound hook of every new box.
	CharSound func(r rune)

	world    donburi.World
	query    *donburi.Query
	entities map[int]donburi.Entity
	nextID   int
}

// NewSystem creates a system for world and subscribes it to
// ShowMessageEvent.
func NewSystem(world donburi.World, engine *msgbox.Engine) *System {
	s := &System{
		Engine:   engine,
		world:    world,
		query:    donburi.NewQuery(filter.Contains(Message)),
		entities: make(map[int]donburi.Entity),
	}
	ShowMessageEvent.Subscribe(world, s.onShowMessage)
	return s
}

func (s *System) onShowMessage(w donburi.World, ev ShowMessage) {
	if _, err := s.Show(ev.Request, ev.Area); err != nil {
		log.Printf("msgbox: ecs: show message: %v", err)
	}
}

// Show opens a box and returns its id. Ids start at 1 and are never reused.
func (s *System) Show(req msgbox.ShowRequest, area msgbox.Rect) (int, error) {
	b, err := s.Engine.Show(req)
	if err != nil {
		return 0, err
	}
	if s.CharSound != nil {
		b.OnCharSound = s.CharSound
	}
	s.nextID++
	id := s.nextID

	entity := s.world.Create(Message)
	Message.SetValue(s.world.Entry(entity), MessageData{ID: id, Box: b, Area: area})
	s.entities[id] = entity

	MessageOpenedEvent.Publish(s.world, MessageOpened{ID: id})
	return id, nil
}

// Box returns the box behind id, or nil when it is not open.
func (s *System) Box(id int) *msgbox.Box {
	entity, ok := s.entities[id]
	if !ok || !s.world.Valid(entity) {
		return nil
	}
	return Message.Get(s.world.Entry(entity)).Box
}

// IsOpen reports whether the box with id is still shown.
func (s *System) IsOpen(id int) bool {
	return s.Box(id) != nil
}

// Open returns the ids of all open boxes in opening order.
func (s *System) Open() []int {
	ids := make([]int, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Close hides the box with id, removes its entity and publishes
// MessageClosed. Closing an unknown id returns an error.
func (s *System) Close(id int) error {
	entity, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("msgbox: ecs: no open message %d", id)
	}
	delete(s.entities, id)
	if s.world.Valid(entity) {
		Message.Get(s.world.Entry(entity)).Box.Hide()
		s.world.Remove(entity)
	}
	MessageClosedEvent.Publish(s.world, MessageClosed{ID: id})
	return nil
}

// Update handles queued ShowMessage events, then ticks every open box.
// Only the newest box receives in; older boxes keep animating. Boxes the
// player dismissed are closed, and the lifecycle events of this tick are
// delivered before Update returns.
func (s *System) Update(dt float64, in msgbox.Input) {
	ShowMessageEvent.ProcessEvents(s.world)

	top := 0
	for id := range s.entities {
		top = max(top, id)
	}

	var done []int
	s.query.Each(s.world, func(entry *donburi.Entry) {
		m := Message.Get(entry)
		var boxIn msgbox.Input
		if m.ID == top {
			boxIn = in
		}
		m.Box.Update(dt, boxIn)
		if m.Box.Dismissed() || !m.Box.Visible() {
			done = append(done, m.ID)
		}
	})
	// Entities are removed outside Each.
	sort.Ints(done)
	for _, id := range done {
		_ = s.Close(id)
	}

	MessageOpenedEvent.ProcessEvents(s.world)
	MessageClosedEvent.ProcessEvents(s.world)
}

// Draw renders every open box, oldest first, so the newest ends on top.
// The first error stops drawing.
func (s *System) Draw(dst msgbox.TextDrawer) error {
	panels, _ := dst.(PanelDrawer)
	for _, id := range s.Open() {
		m := Message.Get(s.world.Entry(s.entities[id]))
		if !m.Box.Visible() {
			continue
		}
		if panels != nil {
			panels.DrawPanel(s.Engine.Config.PanelArea(m.Area), m.Box.BackgroundColor())
		}
		if err := s.Engine.Draw(m.Box, dst, m.Area); err != nil {
			return fmt.Errorf("msgbox: ecs: draw message %d: %w", id, err)
		}
	}
	return nil
}
