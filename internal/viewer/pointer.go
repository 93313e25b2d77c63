package viewer

import (
	"math"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/raidplan"
)

// pointerEvent is one frame's pointer sample in screen coordinates.
type pointerEvent struct {
	screen  raidplan.Vec2
	pressed bool
	shift   bool
}

type pointerMode uint8

const (
	modeIdle pointerMode = iota
	modeMove
	modeRotate
	modePan
)

// pointerState tracks a press from down to release.
type pointerState struct {
	down      bool
	dragging  bool
	cancelled bool
	mode      pointerMode

	startScreen raidplan.Vec2
	lastScreen  raidplan.Vec2
	start       raidplan.Vec2
	pivot       raidplan.Vec2
	targets     []string
	// orbit is set when several shapes turn about the selection's center.
	orbit       bool

	drag raidplan.Drag
}

func readPointer() pointerEvent {
	mx, my := ebiten.CursorPosition()
	return pointerEvent{
		screen:  raidplan.Vec2{X: float64(mx), Y: float64(my)},
		pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		shift:   ebiten.IsKeyPressed(ebiten.KeyShift),
	}
}

// processPointer runs the press, drag and release state machine. Drags are
// shown live through the view's Drag and committed as one action on release.
// Leaving the window while the button is down drops the drag uncommitted, and
// input is ignored until the button comes up.
func (v *Viewer) processPointer(ev pointerEvent) {
	if !v.hasView {
		return
	}
	ps := &v.pointer
	if ps.down && !v.inWindow(ev.screen) {
		v.log.Debug("pointer left the window, drag cancelled")
		*ps = pointerState{cancelled: ev.pressed}
		return
	}
	if ps.cancelled {
		if !ev.pressed {
			*ps = pointerState{}
		}
		return
	}
	p := v.view.ScreenToScene(ev.screen)

	switch {
	case ev.pressed && !ps.down:
		*ps = pointerState{down: true, startScreen: ev.screen, lastScreen: ev.screen, start: p}
		v.press(p, ev.shift)

	case ev.pressed && ps.down:
		if !ps.dragging && ev.screen.Sub(ps.startScreen).Len() > v.cfg.DragDeadZone {
			ps.dragging = true
		}
		if ps.dragging {
			v.dragTo(p, ev.screen)
		}
		ps.lastScreen = ev.screen

	case !ev.pressed && ps.down:
		if ps.dragging {
			v.dragTo(p, ev.screen)
			v.release()
		}
		*ps = pointerState{}
	}
}

func (v *Viewer) inWindow(screen raidplan.Vec2) bool {
	return screen.X >= 0 && screen.Y >= 0 && screen.X < float64(v.width) && screen.Y < float64(v.height)
}

func (v *Viewer) press(p raidplan.Vec2, shift bool) {
	ps := &v.pointer
	hit, ok := v.renderer.HitTest(p, v.view.PixelScale())
	switch {
	case ok && hit.Kind == raidplan.HitRotationHandle:
		ps.mode = modeRotate
		ps.pivot = hit.Pivot
		ps.targets = slices.Clone(v.view.Selection)
		if len(raidplan.ShapeDescendants(v.ed.State(), ps.targets)) > 1 {
			if b, ok := v.renderer.SelectionBounds(); ok {
				ps.pivot = b.Center()
				ps.orbit = true
			}
		}
	case ok:
		target := v.ed.PickTarget(v.view.SceneID, hit.EntityID)
		if !v.selectionCovers(target) {
			sel := []string{target}
			if shift {
				sel = append(slices.Clone(v.view.Selection), target)
			}
			v.ed.Select(v.raidID, sel...)
		}
		ps.mode = modeMove
		ps.targets = slices.Clone(v.ed.Workspaces().Raid(v.raidID).Selection)
	default:
		if !shift {
			v.ed.Select(v.raidID)
		}
		ps.mode = modePan
	}
}

func (v *Viewer) dragTo(p, screen raidplan.Vec2) {
	ps := &v.pointer
	switch ps.mode {
	case modeMove:
		ps.drag.Offset = p.Sub(ps.start)
	case modeRotate:
		a0 := ps.start.Sub(ps.pivot)
		a1 := p.Sub(ps.pivot)
		ps.drag.Rotation = math.Atan2(a1.Y, a1.X) - math.Atan2(a0.Y, a0.X)
		if ps.orbit {
			pivot := ps.pivot
			ps.drag.Pivot = &pivot
		}
	case modePan:
		sws := v.ed.Workspaces().Scene(v.view.SceneID)
		d := screen.Sub(ps.lastScreen).Scale(v.view.PixelScale())
		sws.Center = sws.Center.Sub(d)
	}
}

func (v *Viewer) release() {
	ps := &v.pointer
	switch ps.mode {
	case modeMove:
		if ps.drag.Offset != (raidplan.Vec2{}) {
			v.ed.MoveEntities(v.view.StepID, ps.targets, ps.drag.Offset)
		}
	case modeRotate:
		if ps.drag.Rotation != 0 {
			v.ed.RotateEntities(v.view.StepID, ps.targets, ps.drag.Rotation, ps.drag.Pivot)
		}
	}
}

// selectionCovers reports whether id is selected directly or through a
// selected ancestor group.
func (v *Viewer) selectionCovers(id string) bool {
	s := v.ed.State()
	for _, sel := range v.view.Selection {
		for _, e := range raidplan.EntityAndDescendants(s, sel) {
			if e.ID == id {
				return true
			}
		}
	}
	return false
}

// zoomAt scales the open scene's zoom by factor, keeping the scene point
// under screen fixed.
func (v *Viewer) zoomAt(screen raidplan.Vec2, factor float64) {
	if !v.hasView || factor <= 0 {
		return
	}
	anchor := v.view.ScreenToScene(screen)
	sws := v.ed.Workspaces().Scene(v.view.SceneID)
	z := sws.Zoom
	if z <= 0 {
		z = 1
	}
	z = math.Max(0.05, math.Min(z*factor, 50))
	sws.Zoom = z
	mid := raidplan.Vec2{X: v.view.Viewport.X + v.view.Viewport.Width/2, Y: v.view.Viewport.Y + v.view.Viewport.Height/2}
	sws.Center = anchor.Sub(screen.Sub(mid).Scale(1 / z))
}

// fit zooms the open scene so its stage fills the window.
func (v *Viewer) fit() {
	ws := v.ed.Workspaces().Raid(v.raidID)
	sc, ok := v.ed.State().Scene(ws.OpenSceneID)
	if !ok {
		return
	}
	sws := v.ed.Workspaces().Scene(sc.ID)
	viewport := raidplan.Rect{Width: float64(v.width), Height: float64(v.height)}
	sws.Zoom = raidplan.FitZoom(sc.Shape, viewport, v.cfg.FitMargin)
	sws.Center = raidplan.Vec2{}
}

func (v *Viewer) handleWheel() {
	_, wy := ebiten.Wheel()
	if wy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	v.zoomAt(raidplan.Vec2{X: float64(mx), Y: float64(my)}, math.Pow(1.1, wy))
}
