package raidplan

import "slices"

// containerEdits tracks pending changes to the child lists of one scene: the
// scene's top-level list (parent id "") and every group's children. Lists are
// read from the snapshot until first written.
type containerEdits struct {
	s       RaidsState
	scene   RaidScene
	lists   map[string][]string
	removed map[string]bool
	added   map[string]RaidEntity
}

func newContainerEdits(s RaidsState, scene RaidScene) *containerEdits {
	return &containerEdits{
		s:       s,
		scene:   scene,
		lists:   map[string][]string{},
		removed: map[string]bool{},
		added:   map[string]RaidEntity{},
	}
}

// children returns the current child list of parentID.
func (c *containerEdits) children(parentID string) []string {
	if l, ok := c.lists[parentID]; ok {
		return l
	}
	if parentID == "" {
		return c.scene.EntityIDs
	}
	if e, ok := c.added[parentID]; ok {
		return e.Properties.Children
	}
	return c.s.Entities[parentID].Properties.Children
}

func (c *containerEdits) set(parentID string, ids []string) {
	c.lists[parentID] = ids
}

// remove marks id as deleted so its list is neither searched nor written.
func (c *containerEdits) remove(id string) {
	c.removed[id] = true
}

// add registers a new entity so later lookups see it.
func (c *containerEdits) add(e RaidEntity) {
	c.added[e.ID] = e
}

// groupIDs returns the ids of every live group in the scene, sorted.
func (c *containerEdits) groupIDs() []string {
	var out []string
	for _, id := range sortedKeys(c.s.Entities) {
		e := c.s.Entities[id]
		if e.SceneID == c.scene.ID && e.IsGroup() && !c.removed[id] {
			out = append(out, id)
		}
	}
	for _, id := range sortedKeys(c.added) {
		if c.added[id].IsGroup() && !c.removed[id] {
			out = append(out, id)
		}
	}
	return out
}

// parentOf returns the parent id of id under the pending edits: "" for the
// scene, a group id, or ok == false when id is in no list.
func (c *containerEdits) parentOf(id string) (string, bool) {
	if slices.Contains(c.children(""), id) {
		return "", true
	}
	for _, gid := range c.groupIDs() {
		if slices.Contains(c.children(gid), id) {
			return gid, true
		}
	}
	return "", false
}

// detach strips every id in drop from every list.
func (c *containerEdits) detach(drop map[string]bool) {
	parents := append([]string{""}, c.groupIDs()...)
	for _, pid := range parents {
		if next, changed := withoutIDs(c.children(pid), drop); changed {
			c.set(pid, next)
		}
	}
}

// apply appends the changed containers to op: the scene when its list
// differs, and each surviving group whose children differ.
func (c *containerEdits) apply(op *BatchOperation) {
	if l, ok := c.lists[""]; ok && !slices.Equal(l, c.scene.EntityIDs) {
		sc := c.scene
		sc.EntityIDs = l
		op.PutScenes = append(op.PutScenes, sc)
	}
	for _, id := range sortedKeys(c.lists) {
		if id == "" || c.removed[id] {
			continue
		}
		if e, ok := c.added[id]; ok {
			e.Properties.Children = c.lists[id]
			c.added[id] = e
			continue
		}
		e, ok := c.s.Entities[id]
		if !ok || slices.Equal(e.Properties.Children, c.lists[id]) {
			continue
		}
		e = e.clone()
		e.Properties.Children = c.lists[id]
		op.PutEntities = append(op.PutEntities, e)
	}
	for _, id := range sortedKeys(c.added) {
		if !c.removed[id] {
			op.PutEntities = append(op.PutEntities, c.added[id])
		}
	}
}
