package raidplan

import "slices"

// Selectors are pure derivations over a RaidsState. When ids are missing or
// span more than one parent they report ok == false instead of failing;
// callers treat that as a no-op.

// SharedSceneByEntityIDs returns the scene every id belongs to.
func SharedSceneByEntityIDs(s RaidsState, ids []string) (RaidScene, bool) {
	if len(ids) == 0 {
		return RaidScene{}, false
	}
	sceneID := ""
	for _, id := range ids {
		e, ok := s.Entities[id]
		if !ok {
			return RaidScene{}, false
		}
		if sceneID == "" {
			sceneID = e.SceneID
		} else if sceneID != e.SceneID {
			return RaidScene{}, false
		}
	}
	return s.Scene(sceneID)
}

// SharedSceneByStepIDs returns the scene every step id belongs to.
func SharedSceneByStepIDs(s RaidsState, ids []string) (RaidScene, bool) {
	if len(ids) == 0 {
		return RaidScene{}, false
	}
	sceneID := ""
	for _, id := range ids {
		st, ok := s.Steps[id]
		if !ok {
			return RaidScene{}, false
		}
		if sceneID == "" {
			sceneID = st.SceneID
		} else if sceneID != st.SceneID {
			return RaidScene{}, false
		}
	}
	return s.Scene(sceneID)
}

// SharedRaidBySceneIDs returns the raid every scene id belongs to.
func SharedRaidBySceneIDs(s RaidsState, ids []string) (RaidMetadata, bool) {
	if len(ids) == 0 {
		return RaidMetadata{}, false
	}
	raidID := ""
	for _, id := range ids {
		sc, ok := s.Scenes[id]
		if !ok {
			return RaidMetadata{}, false
		}
		if raidID == "" {
			raidID = sc.RaidID
		} else if raidID != sc.RaidID {
			return RaidMetadata{}, false
		}
	}
	return s.Raid(raidID)
}

// ParentKind identifies the container type of a Parent.
type ParentKind uint8

const (
	ParentScene ParentKind = iota + 1 // ids are top-level scene entities
	ParentGroup                       // ids are children of a group entity
)

// Parent is the container holding a set of entity ids: either a scene's
// top-level list or a group entity's children.
type Parent struct {
	Kind   ParentKind
	Scene  RaidScene
	Entity RaidEntity
}

// ChildIDs returns the ordered child list of the container.
func (p Parent) ChildIDs() []string {
	if p.Kind == ParentGroup {
		return p.Entity.Properties.Children
	}
	return p.Scene.EntityIDs
}

// ParentByChildIDs returns the single container holding every id: the scene
// when all are top-level, or a group when all are children of that group.
func ParentByChildIDs(s RaidsState, ids []string) (Parent, bool) {
	scene, ok := SharedSceneByEntityIDs(s, ids)
	if !ok {
		return Parent{}, false
	}
	allTop := true
	for _, id := range ids {
		if !slices.Contains(scene.EntityIDs, id) {
			allTop = false
			break
		}
	}
	if allTop {
		return Parent{Kind: ParentScene, Scene: scene}, true
	}
	group, ok := GroupByChildID(s, ids[0])
	if !ok {
		return Parent{}, false
	}
	for _, id := range ids[1:] {
		if !slices.Contains(group.Properties.Children, id) {
			return Parent{}, false
		}
	}
	return Parent{Kind: ParentGroup, Scene: scene, Entity: group}, true
}

// GroupByChildID returns the group entity whose children contain id, found by
// a depth-first scan of the scene's entity tree.
func GroupByChildID(s RaidsState, id string) (RaidEntity, bool) {
	e, ok := s.Entities[id]
	if !ok {
		return RaidEntity{}, false
	}
	scene, ok := s.Scenes[e.SceneID]
	if !ok {
		return RaidEntity{}, false
	}
	var found RaidEntity
	var search func(ids []string) bool
	search = func(ids []string) bool {
		for _, cid := range ids {
			c, ok := s.Entities[cid]
			if !ok || !c.IsGroup() {
				continue
			}
			if slices.Contains(c.Properties.Children, id) {
				found = c
				return true
			}
			if search(c.Properties.Children) {
				return true
			}
		}
		return false
	}
	if search(scene.EntityIDs) {
		return found, true
	}
	return RaidEntity{}, false
}

// ParentOf returns the container holding id.
func ParentOf(s RaidsState, id string) (Parent, bool) {
	return ParentByChildIDs(s, []string{id})
}

// RelativeOrderOfEntityIDs orders ids as a depth-first, in-order walk of the
// scene's entity tree visits them. Ids that are not reachable are dropped.
func RelativeOrderOfEntityIDs(s RaidsState, sceneID string, ids []string) []string {
	scene, ok := s.Scenes[sceneID]
	if !ok {
		return nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]string, 0, len(ids))
	walkEntities(s, scene.EntityIDs, func(e RaidEntity) {
		if want[e.ID] {
			out = append(out, e.ID)
		}
	})
	return out
}

// EntityAndDescendants returns the entity followed by every descendant in
// pre-order when it is a group.
func EntityAndDescendants(s RaidsState, id string) []RaidEntity {
	e, ok := s.Entities[id]
	if !ok {
		return nil
	}
	out := []RaidEntity{e}
	if e.IsGroup() {
		walkEntities(s, e.Properties.Children, func(c RaidEntity) {
			out = append(out, c)
		})
	}
	return out
}

// ShapeDescendants expands groups in ids to their shape-typed descendants,
// de-duplicated, in the order first seen.
func ShapeDescendants(s RaidsState, ids []string) []RaidEntity {
	seen := map[string]bool{}
	var out []RaidEntity
	for _, id := range ids {
		for _, e := range EntityAndDescendants(s, id) {
			if e.IsShape() && !seen[e.ID] {
				seen[e.ID] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// walkEntities visits ids and their group descendants in pre-order. Missing
// ids are skipped.
func walkEntities(s RaidsState, ids []string, visit func(RaidEntity)) {
	for _, id := range ids {
		e, ok := s.Entities[id]
		if !ok {
			continue
		}
		visit(e)
		if e.IsGroup() {
			walkEntities(s, e.Properties.Children, visit)
		}
	}
}

// PersistedRaid is a serializable snapshot of one raid and everything in it.
type PersistedRaid struct {
	Metadata RaidMetadata `json:"metadata"`
	Scenes   []RaidScene  `json:"scenes"`
	Steps    []RaidStep   `json:"steps"`
	Entities []RaidEntity `json:"entities"`
}

// PersistedRaidOf flattens raidID into a snapshot. Scenes and steps follow
// their declared order; entities follow scene tree order.
func PersistedRaidOf(s RaidsState, raidID string) (PersistedRaid, bool) {
	m, ok := s.Metadata[raidID]
	if !ok {
		return PersistedRaid{}, false
	}
	p := PersistedRaid{
		Metadata: m,
		Scenes:   []RaidScene{},
		Steps:    []RaidStep{},
		Entities: []RaidEntity{},
	}
	for _, sceneID := range m.SceneIDs {
		sc, ok := s.Scenes[sceneID]
		if !ok {
			continue
		}
		p.Scenes = append(p.Scenes, sc)
		for _, stepID := range sc.StepIDs {
			if st, ok := s.Steps[stepID]; ok {
				p.Steps = append(p.Steps, st)
			}
		}
		walkEntities(s, sc.EntityIDs, func(e RaidEntity) {
			p.Entities = append(p.Entities, e)
		})
	}
	return p, true
}

// RestoreOperation returns the batch that inserts p verbatim, ids included.
func (p PersistedRaid) RestoreOperation() BatchOperation {
	m := p.Metadata
	return BatchOperation{
		PutMetadata: []RaidMetadata{m},
		PutScenes:   slices.Clone(p.Scenes),
		PutSteps:    slices.Clone(p.Steps),
		PutEntities: slices.Clone(p.Entities),
	}
}

// RestorePersistedRaid inserts p through the engine's put path.
func RestorePersistedRaid(e *Engine, p PersistedRaid) {
	e.Apply(p.RestoreOperation())
}

// SortedRaidIDs returns every raid id ordered by creation time, oldest first.
// Ties fall back to id order.
func SortedRaidIDs(s RaidsState) []string {
	ids := sortedKeys(s.Metadata)
	slices.SortStableFunc(ids, func(a, b string) int {
		return s.Metadata[a].CreatedAt.Compare(s.Metadata[b].CreatedAt)
	})
	return ids
}
