package raidplan

import (
	"fmt"
	"slices"
)

// CreateScene appends a scene to raidID together with its first step and
// returns the scene id. It returns "" when the raid does not exist.
func (ed *Editor) CreateScene(raidID, name string, shape Shape) string {
	m, ok := ed.State().Raid(raidID)
	if !ok {
		ed.skip("create scene", "missing raid", "raid", raidID)
		return ""
	}
	now := ed.now()
	st := RaidStep{
		ID:        ed.newID(),
		RaidID:    raidID,
		Name:      "Step 1",
		CreatedAt: now,
	}
	sc := RaidScene{
		ID:        ed.newID(),
		RaidID:    raidID,
		Name:      name,
		CreatedAt: now,
		Shape:     shape,
		StepIDs:   []string{st.ID},
		EntityIDs: []string{},
	}
	st.SceneID = sc.ID
	if sc.Name == "" {
		sc.Name = fmt.Sprintf("Scene %d", len(m.SceneIDs)+1)
	}
	m.SceneIDs = append(slices.Clone(m.SceneIDs), sc.ID)
	ed.commit(raidID, "Create scene", BatchOperation{
		PutMetadata: []RaidMetadata{m},
		PutScenes:   []RaidScene{sc},
		PutSteps:    []RaidStep{st},
	})
	return sc.ID
}

// UpdateScene applies fn to a copy of the scene and stores the result. The
// identity fields and the step and entity order lists are kept; those change
// only through their dedicated actions.
func (ed *Editor) UpdateScene(sceneID string, fn func(*RaidScene)) {
	sc, ok := ed.State().Scene(sceneID)
	if !ok {
		ed.skip("update scene", "missing scene", "scene", sceneID)
		return
	}
	next := sc
	if sc.Fill != nil {
		fill := *sc.Fill
		next.Fill = &fill
	}
	fn(&next)
	next.ID, next.RaidID, next.CreatedAt = sc.ID, sc.RaidID, sc.CreatedAt
	next.StepIDs, next.EntityIDs = sc.StepIDs, sc.EntityIDs
	ed.commit(sc.RaidID, "Update scene", BatchOperation{PutScenes: []RaidScene{next}})
}

// DeleteScenes removes scenes of one raid along with their steps and
// entities.
func (ed *Editor) DeleteScenes(sceneIDs ...string) {
	s := ed.State()
	m, ok := SharedRaidBySceneIDs(s, sceneIDs)
	if !ok {
		ed.skip("delete scenes", "scenes missing or not in one raid", "scenes", sceneIDs)
		return
	}
	drop := make(map[string]bool, len(sceneIDs))
	for _, id := range sceneIDs {
		drop[id] = true
	}
	op := BatchOperation{RemoveScenes: slices.Clone(sceneIDs)}
	for _, id := range sortedKeys(s.Steps) {
		if drop[s.Steps[id].SceneID] {
			op.RemoveSteps = append(op.RemoveSteps, id)
		}
	}
	removed := map[string]bool{}
	for _, id := range sortedKeys(s.Entities) {
		if drop[s.Entities[id].SceneID] {
			op.RemoveEntities = append(op.RemoveEntities, id)
			removed[id] = true
		}
	}
	m.SceneIDs, _ = withoutIDs(m.SceneIDs, drop)
	op.PutMetadata = []RaidMetadata{m}
	ed.commit(m.ID, "Delete scenes", op)

	ws := ed.workspaces.Raid(m.ID)
	if drop[ws.OpenSceneID] {
		ws.OpenSceneID = ""
		if len(m.SceneIDs) > 0 {
			ws.OpenSceneID = m.SceneIDs[0]
		}
	}
	ed.pruneSelection(m.ID, removed)
	for id := range drop {
		ed.workspaces.ForgetScene(id)
	}
}

// ReorderScenes moves sceneIDs as a block before or after target in the
// raid's scene order.
func (ed *Editor) ReorderScenes(sceneIDs []string, target string, place Placement) error {
	s := ed.State()
	for _, id := range append([]string{target}, sceneIDs...) {
		if _, ok := s.Scenes[id]; !ok {
			ed.skip("reorder scenes", "missing scene", "scene", id)
			return nil
		}
	}
	m, ok := SharedRaidBySceneIDs(s, append([]string{target}, sceneIDs...))
	if !ok {
		return invariantf("reorder scenes: scenes span more than one raid")
	}
	order := reorderIDs(m.SceneIDs, sceneIDs, target, place)
	if slices.Equal(order, m.SceneIDs) {
		return nil
	}
	m.SceneIDs = order
	ed.commit(m.ID, "Reorder scenes", BatchOperation{PutMetadata: []RaidMetadata{m}})
	return nil
}

// DuplicateScenes copies each scene, with its steps and entities, and places
// every copy right after its original. Keyed values follow the copied steps.
// It returns the new scene ids in raid order.
func (ed *Editor) DuplicateScenes(sceneIDs ...string) []string {
	s := ed.State()
	m, ok := SharedRaidBySceneIDs(s, sceneIDs)
	if !ok {
		ed.skip("duplicate scenes", "scenes missing or not in one raid", "scenes", sceneIDs)
		return nil
	}
	var op BatchOperation
	var created []string
	order := m.SceneIDs
	for _, id := range m.SceneIDs {
		if !slices.Contains(sceneIDs, id) {
			continue
		}
		sc, steps, entities := ed.duplicateScene(s, s.Scenes[id])
		op.PutScenes = append(op.PutScenes, sc)
		op.PutSteps = append(op.PutSteps, steps...)
		op.PutEntities = append(op.PutEntities, entities...)
		order = insertAfter(order, id, sc.ID)
		created = append(created, sc.ID)
	}
	m.SceneIDs = order
	op.PutMetadata = []RaidMetadata{m}
	ed.commit(m.ID, "Duplicate scenes", op)
	return created
}

func (ed *Editor) duplicateScene(s RaidsState, sc RaidScene) (RaidScene, []RaidStep, []RaidEntity) {
	now := ed.now()
	next := sc
	next.ID = ed.newID()
	next.Name = sc.Name + " copy"
	next.CreatedAt = now

	stepIDs := make(map[string]string, len(sc.StepIDs))
	steps := make([]RaidStep, 0, len(sc.StepIDs))
	next.StepIDs = make([]string, 0, len(sc.StepIDs))
	for _, id := range sc.StepIDs {
		st, ok := s.Steps[id]
		if !ok {
			continue
		}
		st.ID = ed.newID()
		st.SceneID = next.ID
		st.CreatedAt = now
		stepIDs[id] = st.ID
		next.StepIDs = append(next.StepIDs, st.ID)
		steps = append(steps, st)
	}

	var originals []RaidEntity
	walkEntities(s, sc.EntityIDs, func(e RaidEntity) { originals = append(originals, e) })
	entityIDs := make(map[string]string, len(originals))
	for _, e := range originals {
		entityIDs[e.ID] = ed.newID()
	}
	entities := make([]RaidEntity, 0, len(originals))
	for _, e := range originals {
		entities = append(entities, ed.cloneEntity(e, next.ID, entityIDs, stepIDs))
	}
	next.EntityIDs = remapIDs(sc.EntityIDs, entityIDs)
	return next, steps, entities
}

// cloneEntity returns a copy of e with the id from ids, placed in sceneID.
// Children are remapped through ids and effect instances get fresh ids. When
// stepIDs is non-nil every keyed value is moved onto the mapped steps.
func (ed *Editor) cloneEntity(e RaidEntity, sceneID string, ids, stepIDs map[string]string) RaidEntity {
	c := e.clone()
	c.ID = ids[e.ID]
	c.SceneID = sceneID
	c.CreatedAt = ed.now()
	c.Properties.Children = remapIDs(e.Properties.Children, ids)
	for i := range c.Properties.Effects {
		c.Properties.Effects[i].ID = ed.newID()
	}
	if stepIDs == nil {
		return c
	}
	c.Properties.Position = c.Properties.Position.remapSteps(stepIDs)
	if r := c.Properties.Rotation; r != nil {
		rot := r.remapSteps(stepIDs)
		c.Properties.Rotation = &rot
	}
	if v := c.Visible; v != nil {
		vis := v.remapSteps(stepIDs)
		c.Visible = &vis
	}
	for _, fx := range c.Properties.Effects {
		for key, val := range fx.Properties {
			fx.Properties[key] = val.remapSteps(stepIDs)
		}
	}
	return c
}

// remapIDs maps each id through ids, dropping ids with no mapping.
func remapIDs(order []string, ids map[string]string) []string {
	if order == nil {
		return nil
	}
	out := make([]string, 0, len(order))
	for _, id := range order {
		if to, ok := ids[id]; ok {
			out = append(out, to)
		}
	}
	return out
}
