package raidplan

import (
	"math"
	"slices"
	"testing"
	"time"
)

var frame0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func viewOf(f editorFixture, step string, selection ...string) SceneView {
	return SceneView{
		SceneID:   f.scene,
		StepID:    step,
		Selection: selection,
		Zoom:      1,
		Viewport:  Rect{Width: 200, Height: 200},
	}
}

func TestRendererRecordsFollowScene(t *testing.T) {
	f := newEditorFixture(t)
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if r.StepID() != f.step {
		t.Errorf("StepID = %q", r.StepID())
	}

	f.ed.DeleteEntities(f.shapeB)
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	if r.Len() != 1 {
		t.Errorf("Len after delete = %d, want 1", r.Len())
	}

	r.Update(f.ed.State(), SceneView{SceneID: "nope"}, frame0)
	if r.Len() != 0 || r.Draw(frame0) != nil {
		t.Error("missing scene kept records or drew")
	}
}

func TestRendererUnknownStepFallsBackToFirst(t *testing.T) {
	f := newEditorFixture(t)
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, "nope"), frame0)
	if r.StepID() != f.step {
		t.Errorf("StepID = %q, want first step", r.StepID())
	}
}

func TestRendererStepTransition(t *testing.T) {
	f := newEditorFixture(t)
	second := f.ed.CreateStep(f.scene, "", "")
	f.ed.SetEntityKeyed(second, []string{f.shapeA}, KeyPosition, true)
	f.ed.MoveEntities(second, []string{f.shapeA}, Vec2{100, 0})

	r := NewRenderer(RendererConfig{TransitionDuration: 300 * time.Millisecond})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	if r.Animating() {
		t.Fatal("first frame animating")
	}

	r.Update(f.ed.State(), viewOf(f, second), frame0)
	if !r.Animating() {
		t.Fatal("step change did not start a transition")
	}
	p, _ := r.Pose(f.shapeA)
	assertNear(t, "x at start", p.Position.X, 0)

	r.Update(f.ed.State(), viewOf(f, second), frame0.Add(150*time.Millisecond))
	p, _ = r.Pose(f.shapeA)
	if !approxEqual(p.Position.X, 50, 1e-3) {
		t.Errorf("x at midpoint = %v, want 50", p.Position.X)
	}

	r.Update(f.ed.State(), viewOf(f, second), frame0.Add(300*time.Millisecond))
	p, _ = r.Pose(f.shapeA)
	assertNear(t, "x at end", p.Position.X, 100)
	if r.Animating() {
		t.Error("still animating after the duration")
	}
}

func TestRendererTransitionRestartsFromShownPose(t *testing.T) {
	f := newEditorFixture(t)
	second := f.ed.CreateStep(f.scene, "", "")
	f.ed.SetEntityKeyed(second, []string{f.shapeA}, KeyPosition, true)
	f.ed.MoveEntities(second, []string{f.shapeA}, Vec2{100, 0})

	r := NewRenderer(RendererConfig{TransitionDuration: 300 * time.Millisecond})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	r.Update(f.ed.State(), viewOf(f, second), frame0)
	mid := frame0.Add(150 * time.Millisecond)
	r.Update(f.ed.State(), viewOf(f, f.step), mid)

	p, _ := r.Pose(f.shapeA)
	if !approxEqual(p.Position.X, 50, 1e-3) {
		t.Errorf("reversed transition starts at %v, want 50", p.Position.X)
	}
}

func TestRendererSmoothstep(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    float64
		done    bool
	}{
		{0, 0, false},
		{75 * time.Millisecond, 0.15625, false},
		{150 * time.Millisecond, 0.5, false},
		{300 * time.Millisecond, 1, true},
		{time.Second, 1, true},
	}
	for _, tt := range tests {
		got, done := transitionProgress(frame0, frame0.Add(tt.elapsed), 300*time.Millisecond)
		if !approxEqual(got, tt.want, 1e-4) || done != tt.done {
			t.Errorf("progress(%v) = %v, %v, want %v, %v", tt.elapsed, got, done, tt.want, tt.done)
		}
	}
	if got, done := transitionProgress(frame0, frame0, 0); got != 1 || !done {
		t.Errorf("zero duration = %v, %v", got, done)
	}
}

func TestRendererInvisibleShapes(t *testing.T) {
	f := newEditorFixture(t)
	gid, _ := f.ed.GroupEntities([]string{f.shapeB}, "")
	f.ed.SetVisible(f.step, []string{f.shapeA, gid}, false)

	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	if _, ok := r.Pose(f.shapeA); ok {
		t.Error("hidden shape has a pose")
	}
	if _, ok := r.Pose(f.shapeB); ok {
		t.Error("child of hidden group has a pose")
	}
	for _, cmd := range r.Draw(frame0) {
		if cmd.Layer == LayerShapes {
			t.Errorf("hidden shape drawn: %+v", cmd)
		}
	}
	if _, ok := r.HitTest(Vec2{}, 1); ok {
		t.Error("hidden shape was hit")
	}
}

func TestRendererDrawOrder(t *testing.T) {
	f := newEditorFixture(t)
	reg := NewEffectRegistry(BuiltinEffects()...)
	ring, _ := reg.NewEffectInstance("target-ring")
	if err := f.ed.UpdateEntities([]string{f.shapeA}, func(e *RaidEntity) {
		e.Properties.Effects = []EffectInstance{ring}
	}); err != nil {
		t.Fatal(err)
	}
	f.ed.DeleteEntities(f.shapeB)

	r := NewRenderer(RendererConfig{Effects: reg})
	view := viewOf(f, f.step, f.shapeA)
	view.Drop = &DropIndicator{Position: Vec2{20, 20}, Shape: Circle(2)}
	r.Update(f.ed.State(), view, frame0)

	var layers []Layer
	for _, cmd := range r.Draw(frame0) {
		layers = append(layers, cmd.Layer)
	}
	want := []Layer{
		LayerBackground,
		LayerGround,
		LayerShapes,
		LayerSelection, LayerSelection, LayerSelection,
		LayerDrop, LayerDrop,
	}
	if !slices.Equal(layers, want) {
		t.Errorf("layers = %v, want %v", layers, want)
	}
}

func TestRendererSelectionBlendsDifference(t *testing.T) {
	f := newEditorFixture(t)
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step, f.shapeB), frame0)
	n := 0
	for _, cmd := range r.Draw(frame0) {
		if cmd.Layer != LayerSelection {
			continue
		}
		n++
		if cmd.BlendMode != BlendDifference || cmd.EntityID != f.shapeB {
			t.Errorf("selection command = %+v", cmd)
		}
	}
	if n != 3 {
		t.Errorf("selection commands = %d, want outline, line and handle", n)
	}
}

func TestRendererGroupSelectionHasNoHandles(t *testing.T) {
	f := newEditorFixture(t)
	gid, _ := f.ed.GroupEntities([]string{f.shapeA, f.shapeB}, "")
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step, gid), frame0)
	n := 0
	for _, cmd := range r.Draw(frame0) {
		if cmd.Layer == LayerSelection {
			n++
			if cmd.Type != CommandStroke {
				t.Errorf("unexpected %v in selection layer", cmd.Type)
			}
		}
	}
	if n != 2 {
		t.Errorf("selection commands = %d, want one outline per shape", n)
	}
}

func TestRendererDragOffsetsSelection(t *testing.T) {
	f := newEditorFixture(t)
	r := NewRenderer(RendererConfig{})
	view := viewOf(f, f.step, f.shapeA)
	view.Drag = Drag{Offset: Vec2{5, 5}, Rotation: math.Pi / 4}
	r.Update(f.ed.State(), view, frame0)

	p, _ := r.Pose(f.shapeA)
	assertVecNear(t, "dragged", p.Position, Vec2{5, 5})
	assertNear(t, "rotation", p.Rotation, math.Pi/4)
	p, _ = r.Pose(f.shapeB)
	assertVecNear(t, "unselected", p.Position, Vec2{10, 0})
}

func TestRendererCullsOffscreenShapes(t *testing.T) {
	f := newEditorFixture(t)
	far, err := f.ed.CreateEntity(f.scene, "", "far", ShapeProperties(Circle(5), Vec2{500, 0}))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step, far, f.shapeA), frame0)

	drawn := map[string]bool{}
	for _, cmd := range r.Draw(frame0) {
		if cmd.Layer == LayerShapes || cmd.Layer == LayerSelection {
			drawn[cmd.EntityID] = true
		}
	}
	if drawn[far] {
		t.Error("offscreen shape was drawn")
	}
	if !drawn[f.shapeA] || !drawn[f.shapeB] {
		t.Errorf("drawn = %v, want both visible shapes", drawn)
	}
	if hit, ok := r.HitTest(Vec2{500, 0}, 1); !ok || hit.EntityID != far {
		t.Errorf("HitTest = %+v, %v, want culled shape still hit", hit, ok)
	}

	view := viewOf(f, f.step, far)
	view.Viewport = Rect{}
	r.Update(f.ed.State(), view, frame0)
	n := 0
	for _, cmd := range r.Draw(frame0) {
		if cmd.Layer == LayerShapes {
			n++
		}
	}
	if n != 3 {
		t.Errorf("shape commands without viewport = %d, want 3", n)
	}
}

func TestRendererSelectionBounds(t *testing.T) {
	f := newEditorFixture(t)
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	if _, ok := r.SelectionBounds(); ok {
		t.Error("empty selection has bounds")
	}

	view := viewOf(f, f.step, f.shapeA, f.shapeB)
	r.Update(f.ed.State(), view, frame0)
	b, ok := r.SelectionBounds()
	if !ok {
		t.Fatal("no bounds for selection")
	}
	assertNear(t, "x", b.X, -5)
	assertNear(t, "y", b.Y, -5)
	assertNear(t, "width", b.Width, 17)
	assertNear(t, "height", b.Height, 10)

	view.Drag = Drag{Offset: Vec2{0, 20}}
	r.Update(f.ed.State(), view, frame0)
	b, _ = r.SelectionBounds()
	assertNear(t, "dragged y", b.Y, 15)
}

func TestRendererRotatedBounds(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.RotateEntities(f.step, []string{f.shapeB}, math.Pi/4, nil)
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	p, _ := r.Pose(f.shapeB)
	half := 2 * math.Sqrt2
	assertNear(t, "x", p.Bounds.X, 10-half)
	assertNear(t, "width", p.Bounds.Width, 2*half)
}

func TestRendererDragOrbitsPivot(t *testing.T) {
	f := newEditorFixture(t)
	r := NewRenderer(RendererConfig{})
	view := viewOf(f, f.step, f.shapeB)
	view.Drag = Drag{Rotation: math.Pi / 2, Pivot: &Vec2{}}
	r.Update(f.ed.State(), view, frame0)

	p, _ := r.Pose(f.shapeB)
	assertVecNear(t, "orbited", p.Position, Vec2{0, 10})
	assertNear(t, "rotation", p.Rotation, math.Pi/2)
}

func TestRendererStageFill(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.UpdateScene(f.scene, func(sc *RaidScene) {
		sc.Fill = ImageMaterial("arena.png", 0.5)
	})
	r := NewRenderer(RendererConfig{})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	cmds := r.Draw(frame0)
	if len(cmds) == 0 || cmds[0].Type != CommandImage || cmds[0].Image != "arena.png" || cmds[0].Opacity != 0.5 {
		t.Errorf("first command = %+v, want stage image", cmds[0])
	}
}

func TestTetherEffectFindsTargetByName(t *testing.T) {
	f := newEditorFixture(t)
	reg := NewEffectRegistry(BuiltinEffects()...)
	tether, _ := reg.NewEffectInstance("tether")
	tether.Properties["target"] = Unkeyed[any]("b")
	f.ed.UpdateEntities([]string{f.shapeA}, func(e *RaidEntity) {
		e.Properties.Effects = []EffectInstance{tether}
	})

	r := NewRenderer(RendererConfig{Effects: reg})
	r.Update(f.ed.State(), viewOf(f, f.step), frame0)
	var lines []RenderCommand
	for _, cmd := range r.Draw(frame0) {
		if cmd.Type == CommandLine && cmd.Layer == LayerOverlay {
			lines = append(lines, cmd)
		}
	}
	if len(lines) != 1 {
		t.Fatalf("overlay lines = %d, want 1", len(lines))
	}
	assertVecNear(t, "From", lines[0].From, Vec2{})
	assertVecNear(t, "To", lines[0].To, Vec2{10, 0})
}
