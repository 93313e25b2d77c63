package raidplan

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"
)

// newTestEditor returns an editor with sequential ids and a fixed clock.
func newTestEditor() *Editor {
	n := 0
	return NewEditor(NewRaidsState(), EditorConfig{
		NewID: func() string {
			n++
			return fmt.Sprintf("id%d", n)
		},
		Now: func() time.Time { return batchTime },
	})
}

// editorFixture holds one raid with one 100x100 scene and two shapes.
type editorFixture struct {
	ed     *Editor
	raid   string
	scene  string
	step   string
	shapeA string
	shapeB string
}

func newEditorFixture(t *testing.T) editorFixture {
	t.Helper()
	ed := newTestEditor()
	f := editorFixture{ed: ed}
	f.raid = ed.CreateRaid("raid")
	f.scene = ed.CreateScene(f.raid, "arena", Rectangle(100, 100))
	f.step = ed.State().Scenes[f.scene].StepIDs[0]
	var err error
	if f.shapeA, err = ed.CreateEntity(f.scene, "", "a", ShapeProperties(Circle(5), Vec2{})); err != nil {
		t.Fatal(err)
	}
	if f.shapeB, err = ed.CreateEntity(f.scene, "", "b", ShapeProperties(Rectangle(4, 4), Vec2{10, 0})); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f editorFixture) entity(t *testing.T, id string) RaidEntity {
	t.Helper()
	e, ok := f.ed.State().Entity(id)
	if !ok {
		t.Fatalf("entity %s missing", id)
	}
	return e
}

func (f editorFixture) sceneEntityIDs() []string {
	return f.ed.State().Scenes[f.scene].EntityIDs
}

// assertExclusive checks that every entity sits in exactly one container of
// its own scene: a scene's top-level list or one group's children.
func assertExclusive(t *testing.T, s RaidsState) {
	t.Helper()
	holders := map[string][]string{}
	hold := func(container, sceneID string, ids []string) {
		for _, id := range ids {
			holders[id] = append(holders[id], container)
			if e, ok := s.Entities[id]; ok && e.SceneID != sceneID {
				t.Errorf("entity %s of scene %s held by %s in scene %s", id, e.SceneID, container, sceneID)
			}
		}
	}
	for id, sc := range s.Scenes {
		hold("scene "+id, id, sc.EntityIDs)
	}
	for id, e := range s.Entities {
		if e.IsGroup() {
			hold("group "+id, e.SceneID, e.Properties.Children)
		}
	}
	for id := range s.Entities {
		if len(holders[id]) != 1 {
			t.Errorf("entity %s held by %v, want exactly one container", id, holders[id])
		}
	}
}

func TestCreateRaidNotUndoable(t *testing.T) {
	ed := newTestEditor()
	id := ed.CreateRaid("raid")
	if m := ed.State().Metadata[id]; m.Name != "raid" || m.CreatedAt != batchTime {
		t.Errorf("raid = %+v", m)
	}
	if _, ok := ed.Undo(id); ok {
		t.Error("raid creation was undoable")
	}
}

func TestCreateSceneAddsFirstStep(t *testing.T) {
	f := newEditorFixture(t)
	sc := f.ed.State().Scenes[f.scene]
	if len(sc.StepIDs) != 1 {
		t.Fatalf("StepIDs = %v, want one step", sc.StepIDs)
	}
	st := f.ed.State().Steps[sc.StepIDs[0]]
	if st.Name != "Step 1" || st.SceneID != f.scene {
		t.Errorf("first step = %+v", st)
	}
	if got := f.ed.State().Metadata[f.raid].SceneIDs; !slices.Equal(got, []string{f.scene}) {
		t.Errorf("SceneIDs = %v", got)
	}
	if got := f.ed.CreateScene("missing", "x", Circle(1)); got != "" {
		t.Errorf("CreateScene on missing raid = %q, want empty", got)
	}
}

func TestMoveEntitiesUndo(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.MoveEntities(f.step, []string{f.shapeA, f.shapeB}, Vec2{3, 4})

	if got := f.entity(t, f.shapeA).PositionAt(nil, f.step); got != (Vec2{3, 4}) {
		t.Errorf("a position = %v, want {3 4}", got)
	}
	if got := f.entity(t, f.shapeB).PositionAt(nil, f.step); got != (Vec2{13, 4}) {
		t.Errorf("b position = %v, want {13 4}", got)
	}

	name, ok := f.ed.Undo(f.raid)
	if !ok || name != "Move entities" {
		t.Fatalf("Undo = %q, %v", name, ok)
	}
	if got := f.entity(t, f.shapeA).PositionAt(nil, f.step); got != (Vec2{}) {
		t.Errorf("a position after undo = %v, want origin", got)
	}
	f.ed.Redo(f.raid)
	if got := f.entity(t, f.shapeB).PositionAt(nil, f.step); got != (Vec2{13, 4}) {
		t.Errorf("b position after redo = %v, want {13 4}", got)
	}
}

func TestMoveKeyedEntityOnlyChangesStep(t *testing.T) {
	f := newEditorFixture(t)
	second := f.ed.CreateStep(f.scene, "", "")
	f.ed.SetEntityKeyed(second, []string{f.shapeA}, KeyPosition, true)
	f.ed.MoveEntities(second, []string{f.shapeA}, Vec2{5, 0})

	e := f.entity(t, f.shapeA)
	order := f.ed.State().Scenes[f.scene].StepIDs
	if got := e.PositionAt(order, f.step); got != (Vec2{}) {
		t.Errorf("step 1 position = %v, want origin", got)
	}
	if got := e.PositionAt(order, second); got != (Vec2{5, 0}) {
		t.Errorf("step 2 position = %v, want {5 0}", got)
	}
}

func TestSetEntityKeyedSkipsUnchanged(t *testing.T) {
	for _, key := range []EntityKey{KeyPosition, KeyRotation, KeyVisible} {
		f := newEditorFixture(t)
		base := len(f.ed.Workspaces().Raid(f.raid).UndoStack())
		depth := func() int { return len(f.ed.Workspaces().Raid(f.raid).UndoStack()) - base }
		before := f.ed.State()

		f.ed.SetEntityKeyed(f.step, []string{f.shapeA}, key, false)
		if depth() != 0 || !reflect.DeepEqual(f.ed.State(), before) {
			t.Errorf("key %v: unkeying an unkeyed value changed state or undo depth %d", key, depth())
		}

		f.ed.SetEntityKeyed(f.step, []string{f.shapeA}, key, true)
		if depth() != 1 {
			t.Fatalf("key %v: undo depth after keying = %d, want 1", key, depth())
		}
		f.ed.SetEntityKeyed(f.step, []string{f.shapeA, f.shapeB}, key, true)
		if depth() != 2 {
			t.Errorf("key %v: undo depth = %d, want 2", key, depth())
		}
		f.ed.Undo(f.raid)
		if !entityKeyedAt(f.entity(t, f.shapeA), key, f.step) || entityKeyedAt(f.entity(t, f.shapeB), key, f.step) {
			t.Errorf("key %v: undo of the mixed call touched the already keyed entity", key)
		}
		f.ed.SetEntityKeyed(f.step, []string{f.shapeA}, key, true)
		if depth() != 1 {
			t.Errorf("key %v: keying a keyed value pushed undo, depth %d", key, depth())
		}
	}
}

func TestRotateEntitiesAroundPivot(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.RotateEntities(f.step, []string{f.shapeB}, math.Pi/2, &Vec2{})
	e := f.entity(t, f.shapeB)
	assertNear(t, "rotation", e.RotationAt(nil, f.step), math.Pi/2)
	pos := e.PositionAt(nil, f.step)
	assertNear(t, "x", pos.X, 0)
	assertNear(t, "y", pos.Y, 10)
}

func TestDeleteSceneUndoRestoresEverything(t *testing.T) {
	f := newEditorFixture(t)
	before := f.ed.State()
	f.ed.OpenScene(f.raid, f.scene)

	f.ed.DeleteScenes(f.scene)
	s := f.ed.State()
	if len(s.Scenes) != 0 || len(s.Steps) != 0 || len(s.Entities) != 0 {
		t.Errorf("after delete: %d scenes, %d steps, %d entities", len(s.Scenes), len(s.Steps), len(s.Entities))
	}
	if ws := f.ed.Workspaces().Raid(f.raid); ws.OpenSceneID != "" {
		t.Errorf("OpenSceneID = %q, want cleared", ws.OpenSceneID)
	}

	f.ed.Undo(f.raid)
	if !reflect.DeepEqual(f.ed.State(), before) {
		t.Error("undo did not restore the deleted scene")
	}
}

func TestDeleteStepsUnkeysEntities(t *testing.T) {
	f := newEditorFixture(t)
	second := f.ed.CreateStep(f.scene, "", "")
	f.ed.SetEntityKeyed(second, []string{f.shapeA}, KeyPosition, true)
	f.ed.MoveEntities(second, []string{f.shapeA}, Vec2{5, 0})

	if err := f.ed.DeleteSteps(second); err != nil {
		t.Fatalf("DeleteSteps: %v", err)
	}
	e := f.entity(t, f.shapeA)
	if e.Properties.Position.IsKeyed() {
		t.Errorf("position still keyed: %+v", e.Properties.Position)
	}
	if got := f.ed.State().Scenes[f.scene].StepIDs; !slices.Equal(got, []string{f.step}) {
		t.Errorf("StepIDs = %v", got)
	}

	f.ed.Undo(f.raid)
	if !f.entity(t, f.shapeA).Properties.Position.IsKeyedAt(second) {
		t.Error("undo did not restore the keyed entry")
	}
}

func TestDeleteStepsKeepsLastStep(t *testing.T) {
	f := newEditorFixture(t)
	depth := len(f.ed.Workspaces().Raid(f.raid).UndoStack())

	err := f.ed.DeleteSteps(f.step)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("DeleteSteps(only step) err = %v, want ErrInvariant", err)
	}
	if got := f.ed.State().Scenes[f.scene].StepIDs; !slices.Equal(got, []string{f.step}) {
		t.Errorf("StepIDs = %v, want [%s]", got, f.step)
	}
	if got := len(f.ed.Workspaces().Raid(f.raid).UndoStack()); got != depth {
		t.Errorf("undo depth = %d, want %d", got, depth)
	}

	second := f.ed.CreateStep(f.scene, "", "")
	if err := f.ed.DeleteSteps(f.step, second); !errors.Is(err, ErrInvariant) {
		t.Errorf("DeleteSteps(all steps) err = %v, want ErrInvariant", err)
	}
	if err := f.ed.DeleteSteps(f.step); err != nil {
		t.Fatalf("DeleteSteps(one of two) err = %v", err)
	}
	if got := f.ed.State().Scenes[f.scene].StepIDs; !slices.Equal(got, []string{second}) {
		t.Errorf("StepIDs = %v, want [%s]", got, second)
	}
}

func TestCreateStepAfter(t *testing.T) {
	f := newEditorFixture(t)
	last := f.ed.CreateStep(f.scene, "", "")
	mid := f.ed.CreateStep(f.scene, "mid", f.step)
	want := []string{f.step, mid, last}
	if got := f.ed.State().Scenes[f.scene].StepIDs; !slices.Equal(got, want) {
		t.Errorf("StepIDs = %v, want %v", got, want)
	}
	if got := f.ed.State().Steps[last].Name; got != "Step 2" {
		t.Errorf("default name = %q, want Step 2", got)
	}
}

func TestDuplicateStepsCopiesKeys(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.SetEntityKeyed(f.step, []string{f.shapeA}, KeyPosition, true)
	copies := f.ed.DuplicateSteps(f.step)
	if len(copies) != 1 {
		t.Fatalf("DuplicateSteps = %v", copies)
	}
	if !f.entity(t, f.shapeA).Properties.Position.IsKeyedAt(copies[0]) {
		t.Error("copy step not keyed")
	}
	if got := f.ed.State().Scenes[f.scene].StepIDs; !slices.Equal(got, []string{f.step, copies[0]}) {
		t.Errorf("StepIDs = %v", got)
	}
}

func TestGroupAndUngroup(t *testing.T) {
	f := newEditorFixture(t)
	gid, err := f.ed.GroupEntities([]string{f.shapeB, f.shapeA}, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, []string{gid}) {
		t.Errorf("scene entities = %v, want only the group", got)
	}
	g := f.entity(t, gid)
	if !slices.Equal(g.Properties.Children, []string{f.shapeA, f.shapeB}) {
		t.Errorf("children = %v, want scene order", g.Properties.Children)
	}
	assertExclusive(t, f.ed.State())
	if sel := f.ed.Workspaces().Raid(f.raid).Selection; !slices.Equal(sel, []string{gid}) {
		t.Errorf("selection = %v, want group", sel)
	}

	if err := f.ed.UngroupEntities(gid); err != nil {
		t.Fatal(err)
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, []string{f.shapeA, f.shapeB}) {
		t.Errorf("after ungroup = %v", got)
	}
	assertExclusive(t, f.ed.State())
	if sel := f.ed.Workspaces().Raid(f.raid).Selection; !slices.Equal(sel, []string{f.shapeA, f.shapeB}) {
		t.Errorf("selection after ungroup = %v, want released children", sel)
	}
}

func TestGroupEntitiesNeedsSharedParent(t *testing.T) {
	f := newEditorFixture(t)
	gid, err := f.ed.GroupEntities([]string{f.shapeA}, "inner")
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.ed.GroupEntities([]string{f.shapeA, f.shapeB}, "")
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("err = %v, want ErrInvariant", err)
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, []string{gid, f.shapeB}) {
		t.Errorf("scene changed after failed group: %v", got)
	}
}

func TestDuplicateGroup(t *testing.T) {
	f := newEditorFixture(t)
	gid, _ := f.ed.GroupEntities([]string{f.shapeA, f.shapeB}, "pair")
	copies := f.ed.DuplicateEntities(gid)
	if len(copies) != 1 {
		t.Fatalf("DuplicateEntities = %v", copies)
	}
	c := f.entity(t, copies[0])
	if c.Name != "pair copy" || len(c.Properties.Children) != 2 {
		t.Errorf("copy = %+v", c)
	}
	for _, child := range c.Properties.Children {
		if child == f.shapeA || child == f.shapeB {
			t.Errorf("copy shares child %s with original", child)
		}
		if _, ok := f.ed.State().Entity(child); !ok {
			t.Errorf("copied child %s missing", child)
		}
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, []string{gid, copies[0]}) {
		t.Errorf("scene entities = %v", got)
	}
	assertExclusive(t, f.ed.State())
	if sel := f.ed.Workspaces().Raid(f.raid).Selection; !slices.Equal(sel, copies) {
		t.Errorf("selection = %v, want copies", sel)
	}

	f.ed.Undo(f.raid)
	if n := len(f.ed.State().Entities); n != 3 {
		t.Errorf("entities after undo = %d, want 3", n)
	}
	assertExclusive(t, f.ed.State())
}

func TestDeleteGroupRemovesDescendants(t *testing.T) {
	f := newEditorFixture(t)
	gid, _ := f.ed.GroupEntities([]string{f.shapeA}, "")
	f.ed.Select(f.raid, gid, f.shapeB)
	f.ed.DeleteEntities(gid)

	if _, ok := f.ed.State().Entity(f.shapeA); ok {
		t.Error("child of deleted group survived")
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, []string{f.shapeB}) {
		t.Errorf("scene entities = %v", got)
	}
	assertExclusive(t, f.ed.State())
	if sel := f.ed.Workspaces().Raid(f.raid).Selection; !slices.Equal(sel, []string{f.shapeB}) {
		t.Errorf("selection = %v, want pruned", sel)
	}
}

func TestReorderEntitiesIdempotent(t *testing.T) {
	f := newEditorFixture(t)
	c, _ := f.ed.CreateEntity(f.scene, "", "c", ShapeProperties(Circle(1), Vec2{}))

	if err := f.ed.ReorderEntities([]string{f.shapeA}, c, PlaceAfter); err != nil {
		t.Fatal(err)
	}
	want := []string{f.shapeB, c, f.shapeA}
	if got := f.sceneEntityIDs(); !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	depth := len(f.ed.Workspaces().Raid(f.raid).UndoStack())
	if err := f.ed.ReorderEntities([]string{f.shapeA}, c, PlaceAfter); err != nil {
		t.Fatal(err)
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, want) {
		t.Errorf("second reorder = %v", got)
	}
	assertExclusive(t, f.ed.State())
	if n := len(f.ed.Workspaces().Raid(f.raid).UndoStack()); n != depth {
		t.Errorf("no-op reorder pushed undo: %d → %d", depth, n)
	}
}

func TestReorderEntitiesIntoGroup(t *testing.T) {
	f := newEditorFixture(t)
	gid, _ := f.ed.GroupEntities([]string{f.shapeA}, "")
	if err := f.ed.ReorderEntities([]string{f.shapeB}, f.shapeA, PlaceBefore); err != nil {
		t.Fatal(err)
	}
	if got := f.entity(t, gid).Properties.Children; !slices.Equal(got, []string{f.shapeB, f.shapeA}) {
		t.Errorf("group children = %v", got)
	}
	if got := f.sceneEntityIDs(); !slices.Equal(got, []string{gid}) {
		t.Errorf("scene entities = %v", got)
	}
	assertExclusive(t, f.ed.State())

	err := f.ed.ReorderEntities([]string{gid}, f.shapeA, PlaceAfter)
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("moving group into itself: err = %v, want ErrInvariant", err)
	}
}

func TestReorderGroupWithOwnChild(t *testing.T) {
	f := newEditorFixture(t)
	c, _ := f.ed.CreateEntity(f.scene, "", "c", ShapeProperties(Circle(1), Vec2{}))
	gid, err := f.ed.GroupEntities([]string{f.shapeA}, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.ed.ReorderEntities([]string{gid, f.shapeA}, c, PlaceAfter); err != nil {
		t.Fatal(err)
	}
	if got, want := f.sceneEntityIDs(), []string{f.shapeB, c, gid}; !slices.Equal(got, want) {
		t.Errorf("scene entities = %v, want %v", got, want)
	}
	if got := f.entity(t, gid).Properties.Children; !slices.Equal(got, []string{f.shapeA}) {
		t.Errorf("group children = %v, want child kept inside", got)
	}
	assertExclusive(t, f.ed.State())
}

func TestUpdateEntitiesRejectsTypeChange(t *testing.T) {
	f := newEditorFixture(t)
	err := f.ed.UpdateEntities([]string{f.shapeA}, func(e *RaidEntity) {
		e.Properties.Type = EntityGroup
	})
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("err = %v, want ErrInvariant", err)
	}
	if !f.entity(t, f.shapeA).IsShape() {
		t.Error("type changed despite error")
	}

	if err := f.ed.UpdateEntities([]string{f.shapeA}, func(e *RaidEntity) { e.Name = "renamed" }); err != nil {
		t.Fatal(err)
	}
	if got := f.entity(t, f.shapeA).Name; got != "renamed" {
		t.Errorf("Name = %q, want renamed", got)
	}
}

func TestMissingIDsAreNoops(t *testing.T) {
	f := newEditorFixture(t)
	depth := len(f.ed.Workspaces().Raid(f.raid).UndoStack())

	f.ed.MoveEntities("nope", []string{f.shapeA}, Vec2{1, 1})
	f.ed.DeleteEntities("nope")
	f.ed.DeleteSteps("nope")
	f.ed.DeleteScenes("nope")
	if err := f.ed.ReorderEntities([]string{"nope"}, f.shapeA, PlaceAfter); err != nil {
		t.Errorf("ReorderEntities err = %v", err)
	}
	if id, err := f.ed.CreateEntity("nope", "", "x", ShapeProperties(Circle(1), Vec2{})); id != "" || err != nil {
		t.Errorf("CreateEntity = %q, %v", id, err)
	}

	if n := len(f.ed.Workspaces().Raid(f.raid).UndoStack()); n != depth {
		t.Errorf("undo depth = %d, want %d", n, depth)
	}
}

func TestRenameRaidUndo(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.RenameRaid(f.raid, "renamed")
	if got := f.ed.State().Metadata[f.raid].Name; got != "renamed" {
		t.Errorf("Name = %q, want renamed", got)
	}
	f.ed.Undo(f.raid)
	if got := f.ed.State().Metadata[f.raid].Name; got != "raid" {
		t.Errorf("Name after undo = %q, want raid", got)
	}
}

func TestSetVisibleAndSelect(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.SetVisible(f.step, []string{f.shapeA}, false)
	if f.entity(t, f.shapeA).VisibleAt(nil, f.step) {
		t.Error("entity still visible")
	}

	f.ed.Select(f.raid, f.shapeA, "nope", f.shapeA)
	if sel := f.ed.Workspaces().Raid(f.raid).Selection; !slices.Equal(sel, []string{f.shapeA}) {
		t.Errorf("selection = %v", sel)
	}
}

func TestViewAndCurrentStep(t *testing.T) {
	f := newEditorFixture(t)
	if _, ok := f.ed.View(f.raid); ok {
		t.Error("View ok with no open scene")
	}
	f.ed.OpenScene(f.raid, f.scene)
	v, ok := f.ed.View(f.raid)
	if !ok || v.SceneID != f.scene || v.StepID != f.step || v.Zoom != 1 {
		t.Errorf("View = %+v, %v", v, ok)
	}
	second := f.ed.CreateStep(f.scene, "", "")
	f.ed.OpenStep(second)
	if got := f.ed.CurrentStep(f.scene); got != second {
		t.Errorf("CurrentStep = %q, want %q", got, second)
	}
	f.ed.DeleteSteps(second)
	if got := f.ed.CurrentStep(f.scene); got != f.step {
		t.Errorf("CurrentStep after delete = %q, want first step", got)
	}
}

func TestPickTargetFollowsExpandedGroups(t *testing.T) {
	f := newEditorFixture(t)
	inner, err := f.ed.GroupEntities([]string{f.shapeA}, "inner")
	if err != nil {
		t.Fatal(err)
	}
	outer, err := f.ed.GroupEntities([]string{inner}, "outer")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		expanded []string
		want     string
	}{
		{"all collapsed", nil, outer},
		{"outer expanded", []string{outer}, inner},
		{"inner expanded only", []string{inner}, outer},
		{"all expanded", []string{outer, inner}, f.shapeA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.ed.SetGroupsExpanded(f.scene, false, outer, inner)
			f.ed.SetGroupsExpanded(f.scene, true, tt.expanded...)
			if got := f.ed.PickTarget(f.scene, f.shapeA); got != tt.want {
				t.Errorf("PickTarget = %q, want %q", got, tt.want)
			}
		})
	}

	if got := f.ed.PickTarget(f.scene, f.shapeB); got != f.shapeB {
		t.Errorf("PickTarget(top-level) = %q, want %q", got, f.shapeB)
	}
	f.ed.SetGroupsExpanded(f.scene, true, f.shapeB, "nope")
	if f.ed.IsGroupExpanded(f.scene, f.shapeB) {
		t.Error("shape marked as an expanded group")
	}
}

func TestDeleteRaidRestore(t *testing.T) {
	f := newEditorFixture(t)
	before := f.ed.State()
	restore, ok := f.ed.DeleteRaid(f.raid)
	if !ok {
		t.Fatal("DeleteRaid not ok")
	}
	if len(f.ed.State().Metadata) != 0 || len(f.ed.State().Entities) != 0 {
		t.Error("raid data left behind")
	}
	f.ed.Engine().Apply(restore)
	if !reflect.DeepEqual(f.ed.State(), before) {
		t.Error("restore did not bring the raid back")
	}
}

func TestDuplicateScenesRemapsKeys(t *testing.T) {
	f := newEditorFixture(t)
	f.ed.SetEntityKeyed(f.step, []string{f.shapeA}, KeyPosition, true)
	copies := f.ed.DuplicateScenes(f.scene)
	if len(copies) != 1 {
		t.Fatalf("DuplicateScenes = %v", copies)
	}
	s := f.ed.State()
	sc := s.Scenes[copies[0]]
	if len(sc.StepIDs) != 1 || len(sc.EntityIDs) != 2 {
		t.Fatalf("copied scene = %+v", sc)
	}
	a := s.Entities[sc.EntityIDs[0]]
	if !a.Properties.Position.IsKeyedAt(sc.StepIDs[0]) {
		t.Errorf("copied position not keyed at copied step: %+v", a.Properties.Position)
	}
	if got := s.Metadata[f.raid].SceneIDs; !slices.Equal(got, []string{f.scene, copies[0]}) {
		t.Errorf("SceneIDs = %v", got)
	}
}
