package viewer

import "github.com/phanxgames/raidplan"

// InjectPress queues a left-button press at screen coordinates. Each
// injected event is consumed on its own frame in place of real input.
func (v *Viewer) InjectPress(x, y float64) {
	v.inject = append(v.inject, pointerEvent{screen: raidplan.Vec2{X: x, Y: y}, pressed: true})
}

// InjectMove queues a move with the button held.
func (v *Viewer) InjectMove(x, y float64) {
	v.inject = append(v.inject, pointerEvent{screen: raidplan.Vec2{X: x, Y: y}, pressed: true})
}

// InjectRelease queues a button release.
func (v *Viewer) InjectRelease(x, y float64) {
	v.inject = append(v.inject, pointerEvent{screen: raidplan.Vec2{X: x, Y: y}})
}

// InjectClick queues a press and a release at the same point. Consumes two
// frames.
func (v *Viewer) InjectClick(x, y float64) {
	v.InjectPress(x, y)
	v.InjectRelease(x, y)
}

// InjectDrag queues a press at from, frames-2 interpolated moves and a
// release at to. Minimum frames is 2.
func (v *Viewer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		v.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	v.InjectRelease(toX, toY)
}

func (v *Viewer) popInjected() (pointerEvent, bool) {
	if len(v.inject) == 0 {
		return pointerEvent{}, false
	}
	ev := v.inject[0]
	v.inject = v.inject[1:]
	return ev, true
}
