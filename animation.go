package msgbox

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollTween moves the scroll offset from 0 to one line height at a fixed
// pixel rate. The tween is linear, so after each Update the remaining
// distance equals the line height minus speed times elapsed time.
type scrollTween struct {
	tween    *gween.Tween
	distance float64
	offset   float64
	done     bool
}

func newScrollTween(distance, speed float64) *scrollTween {
	var duration float32
	if speed > 0 {
		duration = float32(distance / speed)
	}
	return &scrollTween{
		tween:    gween.New(0, float32(distance), duration, ease.Linear),
		distance: distance,
	}
}

// Update advances the tween by dt seconds and returns the current offset
// and whether the full distance has been covered. A finished tween reports
// exactly distance.
func (s *scrollTween) Update(dt float64) (offset float64, done bool) {
	if s.done {
		return s.distance, true
	}
	cur, finished := s.tween.Update(float32(dt))
	s.offset = float64(cur)
	if finished {
		s.offset = s.distance
		s.done = true
	}
	return s.offset, s.done
}

// Remaining returns the distance still to scroll.
func (s *scrollTween) Remaining() float64 {
	return s.distance - s.offset
}
