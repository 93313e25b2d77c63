package raidplan

// EntityKey names an entity value that can be keyframed per step.
type EntityKey uint8

const (
	KeyPosition EntityKey = iota // shape position
	KeyRotation                  // shape rotation
	KeyVisible                   // visibility, shapes and groups
)

// stepScene resolves stepID to its scene.
func (ed *Editor) stepScene(action, stepID string) (RaidScene, bool) {
	s := ed.State()
	st, ok := s.Step(stepID)
	if !ok {
		ed.skip(action, "missing step", "step", stepID)
		return RaidScene{}, false
	}
	sc, ok := s.Scene(st.SceneID)
	if !ok {
		ed.skip(action, "missing scene", "scene", st.SceneID)
		return RaidScene{}, false
	}
	return sc, true
}

// sceneShapes expands ids to the shape descendants that live in sceneID.
func sceneShapes(s RaidsState, sceneID string, ids []string) []RaidEntity {
	var out []RaidEntity
	for _, e := range ShapeDescendants(s, ids) {
		if e.SceneID == sceneID {
			out = append(out, e)
		}
	}
	return out
}

// MoveEntities offsets the position of every shape in ids, groups expanded,
// at stepID.
func (ed *Editor) MoveEntities(stepID string, ids []string, offset Vec2) {
	sc, ok := ed.stepScene("move entities", stepID)
	if !ok {
		return
	}
	var op BatchOperation
	for _, e := range sceneShapes(ed.State(), sc.ID, ids) {
		pos := e.PositionAt(sc.StepIDs, stepID)
		next := e.clone()
		next.Properties.Position = e.Properties.Position.WithValueAt(pos.Add(offset), sc.StepIDs, stepID)
		op.PutEntities = append(op.PutEntities, next)
	}
	ed.commit(sc.RaidID, "Move entities", op)
}

// RotateEntities adds delta radians to the rotation of every shape in ids,
// groups expanded, at stepID. Rotations are normalized into (-π, π]. When
// pivot is non-nil each position also orbits the pivot by delta.
func (ed *Editor) RotateEntities(stepID string, ids []string, delta float64, pivot *Vec2) {
	sc, ok := ed.stepScene("rotate entities", stepID)
	if !ok {
		return
	}
	var op BatchOperation
	for _, e := range sceneShapes(ed.State(), sc.ID, ids) {
		next := e.clone()
		rot := normalizeAngle(e.RotationAt(sc.StepIDs, stepID) + delta)
		k := derefOr(e.Properties.Rotation, 0.0).WithValueAt(rot, sc.StepIDs, stepID)
		next.Properties.Rotation = &k
		if pivot != nil {
			pos := e.PositionAt(sc.StepIDs, stepID)
			orbit := pos.Sub(*pivot).Rotate(delta).Add(*pivot)
			next.Properties.Position = e.Properties.Position.WithValueAt(orbit, sc.StepIDs, stepID)
		}
		op.PutEntities = append(op.PutEntities, next)
	}
	ed.commit(sc.RaidID, "Rotate entities", op)
}

// SetEntityKeyed keys or unkeys one value of every entity in ids at stepID.
// Position and rotation apply to shapes, groups expanded; visibility applies
// to the entities themselves. Keying captures the value currently resolved at
// the step.
func (ed *Editor) SetEntityKeyed(stepID string, ids []string, key EntityKey, keyed bool) {
	sc, ok := ed.stepScene("set entity keyed", stepID)
	if !ok {
		return
	}
	s := ed.State()
	var targets []RaidEntity
	if key == KeyVisible {
		for _, id := range existingEntityIDs(s, ids) {
			if e := s.Entities[id]; e.SceneID == sc.ID {
				targets = append(targets, e)
			}
		}
	} else {
		targets = sceneShapes(s, sc.ID, ids)
	}

	var op BatchOperation
	for _, e := range targets {
		if entityKeyedAt(e, key, stepID) == keyed {
			continue
		}
		next := e.clone()
		switch key {
		case KeyPosition:
			next.Properties.Position = toggleKey(e.Properties.Position, sc.StepIDs, stepID, keyed)
		case KeyRotation:
			k := toggleKey(derefOr(e.Properties.Rotation, 0.0), sc.StepIDs, stepID, keyed)
			next.Properties.Rotation = &k
		case KeyVisible:
			k := toggleKey(derefOr(e.Visible, true), sc.StepIDs, stepID, keyed)
			next.Visible = &k
		}
		op.PutEntities = append(op.PutEntities, next)
	}
	ed.commit(sc.RaidID, "Set keyed", op)
}

// entityKeyedAt reports whether key of e is keyed at stepID. Unset optional
// values are never keyed.
func entityKeyedAt(e RaidEntity, key EntityKey, stepID string) bool {
	switch key {
	case KeyPosition:
		return e.Properties.Position.IsKeyedAt(stepID)
	case KeyRotation:
		return e.Properties.Rotation != nil && e.Properties.Rotation.IsKeyedAt(stepID)
	case KeyVisible:
		return e.Visible != nil && e.Visible.IsKeyedAt(stepID)
	}
	return false
}

func toggleKey[T any](k Keyable[T], sceneStepIDs []string, stepID string, keyed bool) Keyable[T] {
	if keyed {
		return k.WithKeyedStep(sceneStepIDs, stepID)
	}
	return k.WithUnkeyedStep(stepID)
}

// derefOr returns *k, or an unkeyed def when k is nil.
func derefOr[T any](k *Keyable[T], def T) Keyable[T] {
	if k == nil {
		return Unkeyed(def)
	}
	return *k
}

// SetVisible sets the visibility of every entity in ids at stepID.
func (ed *Editor) SetVisible(stepID string, ids []string, visible bool) {
	sc, ok := ed.stepScene("set visible", stepID)
	if !ok {
		return
	}
	s := ed.State()
	var op BatchOperation
	for _, id := range existingEntityIDs(s, ids) {
		e := s.Entities[id]
		if e.SceneID != sc.ID || e.VisibleAt(sc.StepIDs, stepID) == visible {
			continue
		}
		k := derefOr(e.Visible, true).WithValueAt(visible, sc.StepIDs, stepID)
		next := e.clone()
		next.Visible = &k
		op.PutEntities = append(op.PutEntities, next)
	}
	ed.commit(sc.RaidID, "Set visibility", op)
}
