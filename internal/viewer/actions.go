package viewer

import (
	"fmt"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/raidplan"
)

// Action is a named editor command reachable from the keyboard and from
// scripts.
type Action string

const (
	ActionUndo          Action = "undo"
	ActionRedo          Action = "redo"
	ActionNextStep      Action = "next-step"
	ActionPrevStep      Action = "prev-step"
	ActionNewStep       Action = "new-step"
	ActionNextScene     Action = "next-scene"
	ActionPrevScene     Action = "prev-scene"
	ActionDelete        Action = "delete"
	ActionDuplicate     Action = "duplicate"
	ActionGroup         Action = "group"
	ActionUngroup       Action = "ungroup"
	ActionToggleKeyed   Action = "toggle-keyed"
	ActionToggleVisible Action = "toggle-visible"
	ActionToggleExpand  Action = "toggle-expanded"
	ActionZoomIn        Action = "zoom-in"
	ActionZoomOut       Action = "zoom-out"
	ActionFit           Action = "fit"
	ActionSave          Action = "save"
	ActionScreenshot    Action = "screenshot"
	ActionToggleDebug   Action = "toggle-debug"
)

type binding struct {
	key    ebiten.Key
	ctrl   bool
	shift  bool
	action Action
}

var bindings = []binding{
	{ebiten.KeyZ, true, false, ActionUndo},
	{ebiten.KeyZ, true, true, ActionRedo},
	{ebiten.KeyY, true, false, ActionRedo},
	{ebiten.KeyArrowRight, false, false, ActionNextStep},
	{ebiten.KeyArrowLeft, false, false, ActionPrevStep},
	{ebiten.KeyN, true, false, ActionNewStep},
	{ebiten.KeyPageDown, false, false, ActionNextScene},
	{ebiten.KeyPageUp, false, false, ActionPrevScene},
	{ebiten.KeyDelete, false, false, ActionDelete},
	{ebiten.KeyBackspace, false, false, ActionDelete},
	{ebiten.KeyD, true, false, ActionDuplicate},
	{ebiten.KeyG, true, false, ActionGroup},
	{ebiten.KeyG, true, true, ActionUngroup},
	{ebiten.KeyK, false, false, ActionToggleKeyed},
	{ebiten.KeyH, false, false, ActionToggleVisible},
	{ebiten.KeyE, false, false, ActionToggleExpand},
	{ebiten.KeyEqual, false, false, ActionZoomIn},
	{ebiten.KeyMinus, false, false, ActionZoomOut},
	{ebiten.Key0, false, false, ActionFit},
	{ebiten.KeyS, true, false, ActionSave},
	{ebiten.KeyF12, false, false, ActionScreenshot},
	{ebiten.KeyF3, false, false, ActionToggleDebug},
}

func (v *Viewer) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for _, b := range bindings {
		if b.ctrl != ctrl || b.shift != shift || !inpututil.IsKeyJustPressed(b.key) {
			continue
		}
		if err := v.Do(b.action); err != nil {
			v.status = err.Error()
			v.log.Warn("action failed", "action", b.action, "err", err)
		}
	}
}

// Do runs action against the open scene and selection.
func (v *Viewer) Do(action Action) error {
	v.status = ""
	ws := v.ed.Workspaces().Raid(v.raidID)
	sel := slices.Clone(ws.Selection)
	sc, hasScene := v.ed.State().Scene(ws.OpenSceneID)
	stepID := ""
	if hasScene {
		stepID = v.ed.CurrentStep(sc.ID)
	}

	switch action {
	case ActionUndo:
		if name, ok := v.ed.Undo(v.raidID); ok {
			v.status = "undo " + name
		}
	case ActionRedo:
		if name, ok := v.ed.Redo(v.raidID); ok {
			v.status = "redo " + name
		}
	case ActionNextStep, ActionPrevStep:
		if !hasScene {
			return nil
		}
		if id, ok := neighbor(sc.StepIDs, stepID, action == ActionNextStep); ok {
			v.ed.OpenStep(id)
		}
	case ActionNewStep:
		if !hasScene {
			return nil
		}
		v.ed.OpenStep(v.ed.CreateStep(sc.ID, "", stepID))
	case ActionNextScene, ActionPrevScene:
		meta, _ := v.ed.State().Raid(v.raidID)
		if id, ok := neighbor(meta.SceneIDs, ws.OpenSceneID, action == ActionNextScene); ok {
			v.ed.OpenScene(v.raidID, id)
			if v.ed.Workspaces().Scene(id).Center == (raidplan.Vec2{}) {
				v.fit()
			}
		}
	case ActionDelete:
		v.ed.DeleteEntities(sel...)
	case ActionDuplicate:
		v.ed.DuplicateEntities(sel...)
	case ActionGroup:
		if len(sel) == 0 {
			return nil
		}
		if _, err := v.ed.GroupEntities(sel, ""); err != nil {
			return fmt.Errorf("group: %w", err)
		}
	case ActionUngroup:
		var groups []string
		for _, id := range sel {
			if e, ok := v.ed.State().Entity(id); ok && e.IsGroup() {
				groups = append(groups, id)
			}
		}
		if err := v.ed.UngroupEntities(groups...); err != nil {
			return fmt.Errorf("ungroup: %w", err)
		}
	case ActionToggleKeyed:
		shapes := raidplan.ShapeDescendants(v.ed.State(), sel)
		if len(shapes) == 0 {
			return nil
		}
		keyed := shapes[0].Properties.Position.IsKeyed()
		v.ed.SetEntityKeyed(stepID, sel, raidplan.KeyPosition, !keyed)
	case ActionToggleVisible:
		shapes := raidplan.ShapeDescendants(v.ed.State(), sel)
		if len(shapes) == 0 {
			return nil
		}
		visible := shapes[0].VisibleAt(sc.StepIDs, stepID)
		v.ed.SetVisible(stepID, sel, !visible)
	case ActionToggleExpand:
		var groups []string
		for _, id := range sel {
			if e, ok := v.ed.State().Entity(id); ok && e.IsGroup() {
				groups = append(groups, id)
			}
		}
		if len(groups) == 0 || !hasScene {
			return nil
		}
		v.ed.SetGroupsExpanded(sc.ID, !v.ed.IsGroupExpanded(sc.ID, groups[0]), groups...)
	case ActionZoomIn, ActionZoomOut:
		factor := 1.25
		if action == ActionZoomOut {
			factor = 1 / factor
		}
		mid := raidplan.Vec2{X: float64(v.width) / 2, Y: float64(v.height) / 2}
		v.zoomAt(mid, factor)
	case ActionFit:
		v.fit()
	case ActionSave:
		return v.save()
	case ActionScreenshot:
		v.Screenshot("manual")
	case ActionToggleDebug:
		v.debug = !v.debug
		v.raster.Debug = v.debug
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func (v *Viewer) save() error {
	if v.cfg.Save == nil {
		return fmt.Errorf("saving is not configured")
	}
	raid, ok := raidplan.PersistedRaidOf(v.ed.State(), v.raidID)
	if !ok {
		return fmt.Errorf("raid %s no longer exists", v.raidID)
	}
	if err := v.cfg.Save(raid); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	v.status = "saved"
	v.log.Info("raid saved", "raid", v.raidID)
	return nil
}

// neighbor returns the id after (or before) cur in order.
func neighbor(order []string, cur string, next bool) (string, bool) {
	i := slices.Index(order, cur)
	if i < 0 {
		return "", false
	}
	if next {
		i++
	} else {
		i--
	}
	if i < 0 || i >= len(order) {
		return "", false
	}
	return order[i], true
}
