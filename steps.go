package raidplan

import (
	"fmt"
	"slices"
)

// CreateStep adds a step to sceneID right after the step after, or at the end
// when after is "" or not in the scene. It returns the new step id, or "" when
// the scene does not exist.
func (ed *Editor) CreateStep(sceneID, name, after string) string {
	sc, ok := ed.State().Scene(sceneID)
	if !ok {
		ed.skip("create step", "missing scene", "scene", sceneID)
		return ""
	}
	st := RaidStep{
		ID:        ed.newID(),
		RaidID:    sc.RaidID,
		SceneID:   sceneID,
		Name:      name,
		CreatedAt: ed.now(),
	}
	if st.Name == "" {
		st.Name = fmt.Sprintf("Step %d", len(sc.StepIDs)+1)
	}
	sc.StepIDs = insertAfter(sc.StepIDs, after, st.ID)
	ed.commit(sc.RaidID, "Create step", BatchOperation{
		PutScenes: []RaidScene{sc},
		PutSteps:  []RaidStep{st},
	})
	return st.ID
}

// UpdateStep applies fn to a copy of the step and stores the result. The
// identity fields are kept.
func (ed *Editor) UpdateStep(stepID string, fn func(*RaidStep)) {
	st, ok := ed.State().Step(stepID)
	if !ok {
		ed.skip("update step", "missing step", "step", stepID)
		return
	}
	next := st
	if st.RenderDuration != nil {
		d := *st.RenderDuration
		next.RenderDuration = &d
	}
	fn(&next)
	next.ID, next.RaidID, next.SceneID, next.CreatedAt = st.ID, st.RaidID, st.SceneID, st.CreatedAt
	ed.commit(st.RaidID, "Update step", BatchOperation{PutSteps: []RaidStep{next}})
}

// DeleteSteps removes steps of one scene and strips their keyed entries from
// every entity in the scene. Entities with nothing keyed at those steps are
// left untouched. A scene keeps at least one step: deleting all of them
// returns an error wrapping ErrInvariant.
func (ed *Editor) DeleteSteps(stepIDs ...string) error {
	s := ed.State()
	sc, ok := SharedSceneByStepIDs(s, stepIDs)
	if !ok {
		ed.skip("delete steps", "steps missing or not in one scene", "steps", stepIDs)
		return nil
	}
	drop := make(map[string]bool, len(stepIDs))
	for _, id := range stepIDs {
		drop[id] = true
	}
	remaining, _ := withoutIDs(sc.StepIDs, drop)
	if len(remaining) == 0 {
		return invariantf("delete steps: scene %s would have no steps", sc.ID)
	}
	op := BatchOperation{RemoveSteps: slices.Clone(stepIDs)}
	sc.StepIDs = remaining
	op.PutScenes = []RaidScene{sc}
	for _, id := range sortedKeys(s.Entities) {
		e := s.Entities[id]
		if e.SceneID != sc.ID {
			continue
		}
		if next, changed := unkeySteps(e, stepIDs); changed {
			op.PutEntities = append(op.PutEntities, next)
		}
	}
	ed.commit(sc.RaidID, "Delete steps", op)

	if sws := ed.workspaces.Scene(sc.ID); drop[sws.OpenStepID] {
		sws.OpenStepID = ""
	}
	return nil
}

// unkeySteps removes the entries for stepIDs from every keyable of e.
func unkeySteps(e RaidEntity, stepIDs []string) (RaidEntity, bool) {
	next := e.clone()
	changed := false
	if pos, ok := e.Properties.Position.WithUnkeyedSteps(stepIDs); ok {
		next.Properties.Position = pos
		changed = true
	}
	if r := e.Properties.Rotation; r != nil {
		if rot, ok := r.WithUnkeyedSteps(stepIDs); ok {
			next.Properties.Rotation = &rot
			changed = true
		}
	}
	if v := e.Visible; v != nil {
		if vis, ok := v.WithUnkeyedSteps(stepIDs); ok {
			next.Visible = &vis
			changed = true
		}
	}
	for _, fx := range next.Properties.Effects {
		for key, val := range fx.Properties {
			if stripped, ok := val.WithUnkeyedSteps(stepIDs); ok {
				fx.Properties[key] = stripped
				changed = true
			}
		}
	}
	return next, changed
}

// ReorderSteps moves stepIDs as a block before or after target in the scene's
// timeline. Keyed values are not rewritten.
func (ed *Editor) ReorderSteps(stepIDs []string, target string, place Placement) error {
	s := ed.State()
	all := append([]string{target}, stepIDs...)
	for _, id := range all {
		if _, ok := s.Steps[id]; !ok {
			ed.skip("reorder steps", "missing step", "step", id)
			return nil
		}
	}
	sc, ok := SharedSceneByStepIDs(s, all)
	if !ok {
		return invariantf("reorder steps: steps span more than one scene")
	}
	order := reorderIDs(sc.StepIDs, stepIDs, target, place)
	if slices.Equal(order, sc.StepIDs) {
		return nil
	}
	sc.StepIDs = order
	ed.commit(sc.RaidID, "Reorder steps", BatchOperation{PutScenes: []RaidScene{sc}})
	return nil
}

// DuplicateSteps inserts a copy right after each step. Values keyed at a
// source step are keyed at its copy as well. It returns the new step ids.
func (ed *Editor) DuplicateSteps(stepIDs ...string) []string {
	s := ed.State()
	sc, ok := SharedSceneByStepIDs(s, stepIDs)
	if !ok {
		ed.skip("duplicate steps", "steps missing or not in one scene", "steps", stepIDs)
		return nil
	}
	var op BatchOperation
	copies := map[string]string{}
	var created []string
	order := sc.StepIDs
	for _, id := range sc.StepIDs {
		if !slices.Contains(stepIDs, id) {
			continue
		}
		st := s.Steps[id]
		if st.RenderDuration != nil {
			d := *st.RenderDuration
			st.RenderDuration = &d
		}
		st.ID = ed.newID()
		st.Name += " copy"
		st.CreatedAt = ed.now()
		op.PutSteps = append(op.PutSteps, st)
		order = insertAfter(order, id, st.ID)
		copies[id] = st.ID
		created = append(created, st.ID)
	}
	sc.StepIDs = order
	op.PutScenes = []RaidScene{sc}

	for _, id := range sortedKeys(s.Entities) {
		e := s.Entities[id]
		if e.SceneID != sc.ID {
			continue
		}
		if next, changed := copyStepKeys(e, order, copies); changed {
			op.PutEntities = append(op.PutEntities, next)
		}
	}
	ed.commit(sc.RaidID, "Duplicate steps", op)
	return created
}

// copyStepKeys keys every value of e that is keyed at a source step of copies
// at the corresponding copy too.
func copyStepKeys(e RaidEntity, order []string, copies map[string]string) (RaidEntity, bool) {
	next := e.clone()
	changed := false
	for src, dst := range copies {
		if k, ok := copyKey(next.Properties.Position, order, src, dst); ok {
			next.Properties.Position = k
			changed = true
		}
		if r := next.Properties.Rotation; r != nil {
			if k, ok := copyKey(*r, order, src, dst); ok {
				next.Properties.Rotation = &k
				changed = true
			}
		}
		if v := next.Visible; v != nil {
			if k, ok := copyKey(*v, order, src, dst); ok {
				next.Visible = &k
				changed = true
			}
		}
		for _, fx := range next.Properties.Effects {
			for key, val := range fx.Properties {
				if k, ok := copyKey(val, order, src, dst); ok {
					fx.Properties[key] = k
					changed = true
				}
			}
		}
	}
	return next, changed
}

func copyKey[T any](k Keyable[T], order []string, src, dst string) (Keyable[T], bool) {
	if !k.IsKeyedAt(src) {
		return k, false
	}
	return k.WithValueAt(k.Steps[src], order, dst), true
}
