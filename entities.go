package raidplan

import "slices"

// CreateEntity adds an entity to sceneID, at the top of the scene or, when
// parentID is set, at the end of that group's children. It returns the new
// entity id. Groups are created empty; use GroupEntities to fill one.
func (ed *Editor) CreateEntity(sceneID, parentID, name string, props EntityProperties) (string, error) {
	s := ed.State()
	sc, ok := s.Scene(sceneID)
	if !ok {
		ed.skip("create entity", "missing scene", "scene", sceneID)
		return "", nil
	}
	switch props.Type {
	case EntityShape:
	case EntityGroup:
		if len(props.Children) > 0 {
			return "", invariantf("create entity: new groups must be empty")
		}
	default:
		return "", invariantf("create entity: unknown type %q", props.Type)
	}
	if parentID != "" {
		parent, ok := s.Entity(parentID)
		if !ok {
			ed.skip("create entity", "missing parent", "parent", parentID)
			return "", nil
		}
		if !parent.IsGroup() || parent.SceneID != sceneID {
			return "", invariantf("create entity: parent %s is not a group in scene %s", parentID, sceneID)
		}
	}

	e := RaidEntity{
		ID:         ed.newID(),
		RaidID:     sc.RaidID,
		SceneID:    sceneID,
		Name:       name,
		CreatedAt:  ed.now(),
		Properties: props,
	}
	e = e.clone()
	if e.Name == "" {
		e.Name = string(props.Type)
	}
	for i := range e.Properties.Effects {
		if e.Properties.Effects[i].ID == "" {
			e.Properties.Effects[i].ID = ed.newID()
		}
	}

	edits := newContainerEdits(s, sc)
	edits.set(parentID, append(slices.Clone(edits.children(parentID)), e.ID))
	op := BatchOperation{PutEntities: []RaidEntity{e}}
	edits.apply(&op)
	ed.commit(sc.RaidID, "Create entity", op)
	return e.ID, nil
}

// UpdateEntities applies fn to a copy of each entity and stores the results.
// Identity fields and group children are kept. Changing an entity's type is
// an invariant violation and aborts the whole update.
func (ed *Editor) UpdateEntities(ids []string, fn func(*RaidEntity)) error {
	s := ed.State()
	present := existingEntityIDs(s, ids)
	sc, ok := SharedSceneByEntityIDs(s, present)
	if !ok {
		ed.skip("update entities", "entities missing or not in one scene", "entities", ids)
		return nil
	}
	var op BatchOperation
	for _, id := range present {
		e := s.Entities[id]
		next := e.clone()
		fn(&next)
		if next.Properties.Type != e.Properties.Type {
			return invariantf("update entity %s: type change from %s to %s", id, e.Properties.Type, next.Properties.Type)
		}
		next.ID, next.RaidID, next.SceneID, next.CreatedAt = e.ID, e.RaidID, e.SceneID, e.CreatedAt
		next.Properties.Children = e.Properties.Children
		op.PutEntities = append(op.PutEntities, next)
	}
	ed.commit(sc.RaidID, "Update entities", op)
	return nil
}

// DeleteEntities removes entities of one scene together with all their
// descendants and detaches them from their containers.
func (ed *Editor) DeleteEntities(ids ...string) {
	s := ed.State()
	present := existingEntityIDs(s, ids)
	sc, ok := SharedSceneByEntityIDs(s, present)
	if !ok {
		ed.skip("delete entities", "entities missing or not in one scene", "entities", ids)
		return
	}
	removed := map[string]bool{}
	for _, id := range present {
		for _, e := range EntityAndDescendants(s, id) {
			removed[e.ID] = true
		}
	}
	edits := newContainerEdits(s, sc)
	for id := range removed {
		edits.remove(id)
	}
	edits.detach(removed)
	var op BatchOperation
	edits.apply(&op)
	op.RemoveEntities = sortedKeys(removed)
	ed.commit(sc.RaidID, "Delete entities", op)
	ed.pruneSelection(sc.RaidID, removed)
}

// ReorderEntities moves ids as one contiguous block before or after target.
// The block keeps the ids' relative scene order and may cross containers, but
// never scenes, and never into one of the moved groups. Ids nested inside
// another moved group travel with that group.
func (ed *Editor) ReorderEntities(ids []string, target string, place Placement) error {
	s := ed.State()
	all := append([]string{target}, ids...)
	for _, id := range all {
		if _, ok := s.Entities[id]; !ok {
			ed.skip("reorder entities", "missing entity", "entity", id)
			return nil
		}
	}
	sc, ok := SharedSceneByEntityIDs(s, all)
	if !ok {
		return invariantf("reorder entities: entities span more than one scene")
	}
	moving := topmostEntityIDs(s, RelativeOrderOfEntityIDs(s, sc.ID, ids))
	movingSet := make(map[string]bool, len(moving))
	for _, id := range moving {
		movingSet[id] = true
	}
	for _, id := range moving {
		for _, d := range EntityAndDescendants(s, id)[1:] {
			if d.ID == target {
				return invariantf("reorder entities: target %s is inside moved group %s", target, id)
			}
		}
	}

	edits := newContainerEdits(s, sc)
	dest, ok := edits.parentOf(target)
	if !ok {
		ed.skip("reorder entities", "target not attached", "entity", target)
		return nil
	}
	destOrder := edits.children(dest)
	at := insertionIndex(destOrder, movingSet, target, place)
	edits.detach(movingSet)
	edits.set(dest, slices.Insert(slices.Clone(edits.children(dest)), at, moving...))

	var op BatchOperation
	edits.apply(&op)
	ed.commit(sc.RaidID, "Reorder entities", op)
	return nil
}

// DuplicateEntities deep-copies entities of one scene, groups with their
// descendants, and places every copy right after its original. Ids nested
// inside another duplicated group are copied with that group only. The
// copies become the selection. It returns the new top-level ids.
func (ed *Editor) DuplicateEntities(ids ...string) []string {
	s := ed.State()
	present := existingEntityIDs(s, ids)
	sc, ok := SharedSceneByEntityIDs(s, present)
	if !ok {
		ed.skip("duplicate entities", "entities missing or not in one scene", "entities", ids)
		return nil
	}
	roots := topmostEntityIDs(s, RelativeOrderOfEntityIDs(s, sc.ID, present))

	edits := newContainerEdits(s, sc)
	var op BatchOperation
	var created []string
	for _, root := range roots {
		subtree := EntityAndDescendants(s, root)
		idMap := make(map[string]string, len(subtree))
		for _, e := range subtree {
			idMap[e.ID] = ed.newID()
		}
		for _, e := range subtree {
			c := ed.cloneEntity(e, sc.ID, idMap, nil)
			if e.ID == root {
				c.Name = e.Name + " copy"
			}
			op.PutEntities = append(op.PutEntities, c)
		}
		parent, ok := edits.parentOf(root)
		if !ok {
			continue
		}
		edits.set(parent, insertAfter(edits.children(parent), root, idMap[root]))
		created = append(created, idMap[root])
	}
	edits.apply(&op)
	ed.commit(sc.RaidID, "Duplicate entities", op)
	ed.workspaces.Raid(sc.RaidID).Selection = slices.Clone(created)
	return created
}

// GroupEntities wraps ids, which must share one parent, in a new group placed
// where the earliest of them was. Children keep their relative order. The
// group becomes the selection. It returns the group id.
func (ed *Editor) GroupEntities(ids []string, name string) (string, error) {
	s := ed.State()
	if len(ids) == 0 {
		return "", nil
	}
	for _, id := range ids {
		if _, ok := s.Entities[id]; !ok {
			ed.skip("group entities", "missing entity", "entity", id)
			return "", nil
		}
	}
	parent, ok := ParentByChildIDs(s, ids)
	if !ok {
		return "", invariantf("group entities: entities do not share a parent")
	}
	sc := parent.Scene
	ordered := RelativeOrderOfEntityIDs(s, sc.ID, ids)
	if name == "" {
		name = "Group"
	}
	group := RaidEntity{
		ID:         ed.newID(),
		RaidID:     sc.RaidID,
		SceneID:    sc.ID,
		Name:       name,
		CreatedAt:  ed.now(),
		Properties: GroupProperties(ordered...),
	}

	parentID := ""
	if parent.Kind == ParentGroup {
		parentID = parent.Entity.ID
	}
	edits := newContainerEdits(s, sc)
	order := edits.children(parentID)
	at := len(order)
	for _, id := range ordered {
		at = min(at, indexOf(order, id))
	}
	drop := make(map[string]bool, len(ordered))
	for _, id := range ordered {
		drop[id] = true
	}
	rest, _ := withoutIDs(order, drop)
	edits.set(parentID, slices.Insert(rest, at, group.ID))

	op := BatchOperation{PutEntities: []RaidEntity{group}}
	edits.apply(&op)
	ed.commit(sc.RaidID, "Group entities", op)
	ed.workspaces.Raid(sc.RaidID).Selection = []string{group.ID}
	return group.ID, nil
}

// UngroupEntities dissolves groups of one scene: each group's children take
// its place in its container and the group is removed.
func (ed *Editor) UngroupEntities(groupIDs ...string) error {
	s := ed.State()
	present := existingEntityIDs(s, groupIDs)
	sc, ok := SharedSceneByEntityIDs(s, present)
	if !ok {
		ed.skip("ungroup entities", "groups missing or not in one scene", "groups", groupIDs)
		return nil
	}
	for _, id := range present {
		if !s.Entities[id].IsGroup() {
			return invariantf("ungroup entities: %s is not a group", id)
		}
	}
	edits := newContainerEdits(s, sc)
	removed := map[string]bool{}
	var released []string
	for _, id := range present {
		parent, ok := edits.parentOf(id)
		if !ok {
			continue
		}
		children := edits.children(id)
		order := edits.children(parent)
		at := indexOf(order, id)
		next := slices.Clone(order)
		next = slices.Replace(next, at, at+1, children...)
		edits.set(parent, next)
		edits.remove(id)
		removed[id] = true
		released = append(released, children...)
	}
	var op BatchOperation
	edits.apply(&op)
	op.RemoveEntities = sortedKeys(removed)
	ed.commit(sc.RaidID, "Ungroup entities", op)
	ws := ed.workspaces.Raid(sc.RaidID)
	if slices.ContainsFunc(ws.Selection, func(id string) bool { return removed[id] }) {
		ws.Selection = released
		ed.pruneSelection(sc.RaidID, removed)
	}
	return nil
}

// existingEntityIDs returns ids that exist in s, de-duplicated.
func existingEntityIDs(s RaidsState, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.Entities[id]; ok && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// topmostEntityIDs drops ids that are descendants of another id in ids.
func topmostEntityIDs(s RaidsState, ids []string) []string {
	nested := map[string]bool{}
	for _, id := range ids {
		for _, d := range EntityAndDescendants(s, id)[1:] {
			nested[d.ID] = true
		}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !nested[id] {
			out = append(out, id)
		}
	}
	return out
}
