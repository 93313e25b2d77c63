package raidplan

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// EditorConfig configures an Editor. Zero values select defaults.
type EditorConfig struct {
	// NewID generates ids for created records. Defaults to uuid.NewString.
	NewID func() string
	// Now stamps CreatedAt and workspace activity. Defaults to time.Now.
	Now func() time.Time
	// Logger receives debug traces for skipped actions. Defaults to a
	// discarding logger.
	Logger *slog.Logger
	// MaxUndoDepth caps each raid's undo stack. Zero means unbounded.
	MaxUndoDepth int
}

// Editor turns editing intents into batch operations, applies them through
// its Engine and records their inverses on the raid's undo stack.
//
// Actions that reference missing ids do nothing and return a nil error.
// Actions that would break a structural rule return an error wrapping
// ErrInvariant and change nothing.
//
// An Editor is not safe for concurrent use.
type Editor struct {
	engine     *Engine
	workspaces *Workspaces
	newID      func() string
	now        func() time.Time
	log        *slog.Logger
}

// NewEditor returns an editor over state.
func NewEditor(state RaidsState, cfg EditorConfig) *Editor {
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	ws := NewWorkspaces()
	ws.MaxUndoDepth = cfg.MaxUndoDepth
	return &Editor{
		engine:     NewEngine(state),
		workspaces: ws,
		newID:      cfg.NewID,
		now:        cfg.Now,
		log:        cfg.Logger,
	}
}

// State returns the current snapshot.
func (ed *Editor) State() RaidsState { return ed.engine.State() }

// Engine returns the engine the editor writes through.
func (ed *Editor) Engine() *Engine { return ed.engine }

// Workspaces returns the editor's workspace set.
func (ed *Editor) Workspaces() *Workspaces { return ed.workspaces }

// Undo reverts the newest action recorded for raidID.
func (ed *Editor) Undo(raidID string) (string, bool) {
	name, ok := ed.workspaces.Undo(ed.engine, raidID)
	if ok {
		ed.log.Debug("undo", "raid", raidID, "action", name)
		ed.touch(raidID)
	}
	return name, ok
}

// Redo re-applies the newest undone action for raidID.
func (ed *Editor) Redo(raidID string) (string, bool) {
	name, ok := ed.workspaces.Redo(ed.engine, raidID)
	if ok {
		ed.log.Debug("redo", "raid", raidID, "action", name)
		ed.touch(raidID)
	}
	return name, ok
}

// commit applies op and records its inverse under name. Empty operations are
// dropped so they never reach the undo stack.
func (ed *Editor) commit(raidID, name string, op BatchOperation) {
	if op.IsEmpty() {
		ed.log.Debug("action changed nothing", "raid", raidID, "action", name)
		return
	}
	inv := ed.engine.Apply(op)
	ed.workspaces.PushUndo(raidID, name, inv)
	ed.touch(raidID)
}

func (ed *Editor) touch(raidID string) {
	ed.workspaces.Raid(raidID).LastActivity = ed.now()
}

func (ed *Editor) skip(action, reason string, args ...any) {
	ed.log.Debug("skipping "+action, append([]any{"reason", reason}, args...)...)
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvariant)
}

// CreateRaid adds an empty raid and returns its id. Raid creation is not
// recorded on any undo stack.
func (ed *Editor) CreateRaid(name string) string {
	m := RaidMetadata{
		ID:        ed.newID(),
		Name:      name,
		CreatedAt: ed.now(),
		SceneIDs:  []string{},
	}
	ed.engine.Apply(BatchOperation{PutMetadata: []RaidMetadata{m}})
	ed.touch(m.ID)
	return m.ID
}

// RenameRaid renames raidID.
func (ed *Editor) RenameRaid(raidID, name string) {
	m, ok := ed.State().Raid(raidID)
	if !ok {
		ed.skip("rename raid", "missing raid", "raid", raidID)
		return
	}
	if m.Name == name {
		return
	}
	m.Name = name
	m.SceneIDs = slices.Clone(m.SceneIDs)
	ed.commit(raidID, "Rename raid", BatchOperation{PutMetadata: []RaidMetadata{m}})
}

// DeleteRaid removes raidID with every scene, step and entity it owns and
// drops its workspaces, undo history included. It returns the operation that
// restores the raid, or ok == false when the raid does not exist.
func (ed *Editor) DeleteRaid(raidID string) (restore BatchOperation, ok bool) {
	s := ed.State()
	m, ok := s.Raid(raidID)
	if !ok {
		ed.skip("delete raid", "missing raid", "raid", raidID)
		return BatchOperation{}, false
	}
	op := BatchOperation{RemoveMetadata: []string{raidID}}
	for _, id := range sortedKeys(s.Scenes) {
		if s.Scenes[id].RaidID == raidID {
			op.RemoveScenes = append(op.RemoveScenes, id)
			ed.workspaces.ForgetScene(id)
		}
	}
	for _, id := range sortedKeys(s.Steps) {
		if s.Steps[id].RaidID == raidID {
			op.RemoveSteps = append(op.RemoveSteps, id)
		}
	}
	for _, id := range sortedKeys(s.Entities) {
		if s.Entities[id].RaidID == raidID {
			op.RemoveEntities = append(op.RemoveEntities, id)
		}
	}
	inv := ed.engine.Apply(op)
	ed.workspaces.ForgetRaid(m.ID)
	return inv, true
}

// Select replaces the raid's entity selection. Unknown ids are dropped.
func (ed *Editor) Select(raidID string, ids ...string) {
	s := ed.State()
	sel := make([]string, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.Entities[id]; ok && e.RaidID == raidID && !slices.Contains(sel, id) {
			sel = append(sel, id)
		}
	}
	ed.workspaces.Raid(raidID).Selection = sel
}

// OpenScene makes sceneID the raid's open scene and clears the selection.
func (ed *Editor) OpenScene(raidID, sceneID string) {
	sc, ok := ed.State().Scene(sceneID)
	if !ok || sc.RaidID != raidID {
		ed.skip("open scene", "missing scene", "raid", raidID, "scene", sceneID)
		return
	}
	ws := ed.workspaces.Raid(raidID)
	if ws.OpenSceneID != sceneID {
		ws.OpenSceneID = sceneID
		ws.Selection = nil
	}
}

// OpenStep makes stepID the open step of its scene.
func (ed *Editor) OpenStep(stepID string) {
	st, ok := ed.State().Step(stepID)
	if !ok {
		ed.skip("open step", "missing step", "step", stepID)
		return
	}
	ed.workspaces.Scene(st.SceneID).OpenStepID = stepID
}

// SetGroupsExpanded expands or collapses groups in sceneID's workspace.
// Groups outside the scene are skipped.
func (ed *Editor) SetGroupsExpanded(sceneID string, expanded bool, groupIDs ...string) {
	s := ed.State()
	if _, ok := s.Scene(sceneID); !ok {
		ed.skip("set groups expanded", "missing scene", "scene", sceneID)
		return
	}
	sws := ed.workspaces.Scene(sceneID)
	for _, id := range groupIDs {
		e, ok := s.Entities[id]
		if !ok || !e.IsGroup() || e.SceneID != sceneID {
			ed.skip("set groups expanded", "missing group", "scene", sceneID, "group", id)
			continue
		}
		if expanded {
			sws.ExpandedGroups[id] = true
		} else {
			delete(sws.ExpandedGroups, id)
		}
	}
}

// IsGroupExpanded reports whether groupID is expanded in sceneID's workspace.
func (ed *Editor) IsGroupExpanded(sceneID, groupID string) bool {
	return ed.workspaces.Scene(sceneID).ExpandedGroups[groupID]
}

// PickTarget returns the entity a click on entityID selects: the outermost
// collapsed group enclosing it, or entityID itself when every enclosing group
// is expanded.
func (ed *Editor) PickTarget(sceneID, entityID string) string {
	s := ed.State()
	expanded := ed.workspaces.Scene(sceneID).ExpandedGroups
	target := entityID
	for id := entityID; ; {
		g, ok := GroupByChildID(s, id)
		if !ok {
			return target
		}
		if !expanded[g.ID] {
			target = g.ID
		}
		id = g.ID
	}
}

// CurrentStep returns the open step of sceneID, falling back to the scene's
// first step when none is open or the open one no longer exists.
func (ed *Editor) CurrentStep(sceneID string) string {
	sc, ok := ed.State().Scene(sceneID)
	if !ok {
		return ""
	}
	if id := ed.workspaces.Scene(sceneID).OpenStepID; slices.Contains(sc.StepIDs, id) {
		return id
	}
	if len(sc.StepIDs) > 0 {
		return sc.StepIDs[0]
	}
	return ""
}

// View builds the renderer input for the raid's open scene from its
// workspaces. It reports ok == false when no scene is open.
func (ed *Editor) View(raidID string) (SceneView, bool) {
	ws := ed.workspaces.Raid(raidID)
	if _, ok := ed.State().Scene(ws.OpenSceneID); !ok {
		return SceneView{}, false
	}
	sws := ed.workspaces.Scene(ws.OpenSceneID)
	return SceneView{
		SceneID:   ws.OpenSceneID,
		StepID:    ed.CurrentStep(ws.OpenSceneID),
		Selection: slices.Clone(ws.Selection),
		Zoom:      sws.Zoom,
		Center:    sws.Center,
	}, true
}

// pruneSelection drops removed ids from the raid's selection.
func (ed *Editor) pruneSelection(raidID string, removed map[string]bool) {
	ws := ed.workspaces.Raid(raidID)
	if next, changed := withoutIDs(ws.Selection, removed); changed {
		ws.Selection = next
	}
}
