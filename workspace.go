package raidplan

import (
	"slices"
	"time"
)

// UndoEntry is a named batch operation on an undo or redo stack. Operation is
// the batch that reverts the named action when applied.
type UndoEntry struct {
	Name      string
	Operation BatchOperation
}

// RaidWorkspace is the ephemeral editing state of one raid. It is not
// business data and is never persisted.
type RaidWorkspace struct {
	OpenSceneID  string
	Selection    []string
	LastActivity time.Time

	undo []UndoEntry
	redo []UndoEntry
}

// UndoStack returns the undo entries, oldest first. The returned slice MUST
// NOT be mutated by the caller.
func (w *RaidWorkspace) UndoStack() []UndoEntry { return w.undo }

// RedoStack returns the redo entries, oldest first. The returned slice MUST
// NOT be mutated by the caller.
func (w *RaidWorkspace) RedoStack() []UndoEntry { return w.redo }

// IsSelected reports whether entity id is selected.
func (w *RaidWorkspace) IsSelected(id string) bool {
	return slices.Contains(w.Selection, id)
}

// SceneWorkspace is the ephemeral view state of one scene.
type SceneWorkspace struct {
	OpenStepID     string
	Zoom           float64
	Center         Vec2
	ExpandedGroups map[string]bool
}

// Workspaces holds per-raid and per-scene workspace state. Undo and redo
// stacks are per raid; there is no cross-raid undo.
type Workspaces struct {
	// MaxUndoDepth caps each undo stack; the oldest entries are evicted
	// first. Zero means unbounded.
	MaxUndoDepth int

	raids  map[string]*RaidWorkspace
	scenes map[string]*SceneWorkspace
}

// NewWorkspaces returns an empty workspace set.
func NewWorkspaces() *Workspaces {
	return &Workspaces{
		raids:  map[string]*RaidWorkspace{},
		scenes: map[string]*SceneWorkspace{},
	}
}

// Raid returns the workspace for raidID, creating it on first use.
func (w *Workspaces) Raid(raidID string) *RaidWorkspace {
	ws, ok := w.raids[raidID]
	if !ok {
		ws = &RaidWorkspace{}
		w.raids[raidID] = ws
	}
	return ws
}

// Scene returns the workspace for sceneID, creating it on first use with a
// zoom of 1.
func (w *Workspaces) Scene(sceneID string) *SceneWorkspace {
	ws, ok := w.scenes[sceneID]
	if !ok {
		ws = &SceneWorkspace{Zoom: 1, ExpandedGroups: map[string]bool{}}
		w.scenes[sceneID] = ws
	}
	return ws
}

// ForgetRaid drops the raid's workspace, including its undo history.
func (w *Workspaces) ForgetRaid(raidID string) {
	delete(w.raids, raidID)
}

// ForgetScene drops the scene's workspace.
func (w *Workspaces) ForgetScene(sceneID string) {
	delete(w.scenes, sceneID)
}

// PushUndo records an undoable entry for raidID and clears its redo stack.
func (w *Workspaces) PushUndo(raidID, name string, op BatchOperation) {
	w.pushUndo(raidID, UndoEntry{Name: name, Operation: op}, true)
}

func (w *Workspaces) pushUndo(raidID string, entry UndoEntry, clearRedo bool) {
	ws := w.Raid(raidID)
	ws.undo = append(ws.undo, entry)
	if w.MaxUndoDepth > 0 && len(ws.undo) > w.MaxUndoDepth {
		drop := len(ws.undo) - w.MaxUndoDepth
		ws.undo = slices.Delete(ws.undo, 0, drop)
	}
	if clearRedo {
		ws.redo = nil
	}
}

// Undo pops the newest undo entry for raidID, applies it through e, and
// pushes the resulting inverse onto the redo stack under the same name. It
// returns the undone action's name, or ok == false when there is nothing to
// undo.
func (w *Workspaces) Undo(e *Engine, raidID string) (name string, ok bool) {
	ws := w.Raid(raidID)
	if len(ws.undo) == 0 {
		return "", false
	}
	entry := ws.undo[len(ws.undo)-1]
	ws.undo = ws.undo[:len(ws.undo)-1]
	inv := e.Apply(entry.Operation)
	ws.redo = append(ws.redo, UndoEntry{Name: entry.Name, Operation: inv})
	return entry.Name, true
}

// Redo pops the newest redo entry for raidID, applies it through e, and
// pushes the inverse back onto the undo stack. The rest of the redo stack is
// preserved.
func (w *Workspaces) Redo(e *Engine, raidID string) (name string, ok bool) {
	ws := w.Raid(raidID)
	if len(ws.redo) == 0 {
		return "", false
	}
	entry := ws.redo[len(ws.redo)-1]
	ws.redo = ws.redo[:len(ws.redo)-1]
	inv := e.Apply(entry.Operation)
	w.pushUndo(raidID, UndoEntry{Name: entry.Name, Operation: inv}, false)
	return entry.Name, true
}
