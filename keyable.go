package raidplan

import (
	"bytes"
	"encoding/json"
)

// Keyable is a value that is either constant across a scene's timeline
// (unkeyed) or keyframed per step (keyed).
//
// A keyed value is resolved at a step by walking backward through the scene's
// step order to the nearest step with an explicit entry, falling back to
// Initial. Step order lives on the scene, so reordering steps never rewrites
// a Keyable.
//
// Keyable values are immutable: every With* method returns a new value and
// leaves the receiver untouched.
type Keyable[T any] struct {
	// Initial is the bare value when unkeyed, or the fallback when keyed.
	Initial T
	// Steps holds explicit per-step entries. A nil map means unkeyed.
	Steps map[string]T
}

// Unkeyed returns a constant Keyable holding v.
func Unkeyed[T any](v T) Keyable[T] {
	return Keyable[T]{Initial: v}
}

// Keyed returns a keyed Keyable with the given initial value and entries.
// A nil steps map yields a keyed value with no entries.
func Keyed[T any](initial T, steps map[string]T) Keyable[T] {
	cp := make(map[string]T, len(steps))
	for id, v := range steps {
		cp[id] = v
	}
	return Keyable[T]{Initial: initial, Steps: cp}
}

// IsKeyed reports whether k is keyframed.
func (k Keyable[T]) IsKeyed() bool {
	return k.Steps != nil
}

// IsKeyedAt reports whether k is keyed and has an explicit entry for stepID.
func (k Keyable[T]) IsKeyedAt(stepID string) bool {
	if k.Steps == nil {
		return false
	}
	_, ok := k.Steps[stepID]
	return ok
}

// ValueAt resolves k at currentStepID. Keyed values scan sceneStepIDs from
// currentStepID back to the first step; the first explicit entry wins,
// otherwise Initial. The scan never looks at later steps. A step id that is
// not part of sceneStepIDs resolves to Initial.
func (k Keyable[T]) ValueAt(sceneStepIDs []string, currentStepID string) T {
	if k.Steps == nil || len(k.Steps) == 0 {
		return k.Initial
	}
	for i := indexOf(sceneStepIDs, currentStepID); i >= 0; i-- {
		if v, ok := k.Steps[sceneStepIDs[i]]; ok {
			return v
		}
	}
	return k.Initial
}

// WithValueAt returns k with value set at stepID. Unkeyed values simply
// become value. Keyed values get an explicit entry; when stepID is the
// scene's first step, Initial is updated too so the two stay in sync.
func (k Keyable[T]) WithValueAt(value T, sceneStepIDs []string, stepID string) Keyable[T] {
	if k.Steps == nil {
		return Keyable[T]{Initial: value}
	}
	next := Keyable[T]{Initial: k.Initial, Steps: k.copySteps(1)}
	next.Steps[stepID] = value
	if len(sceneStepIDs) > 0 && sceneStepIDs[0] == stepID {
		next.Initial = value
	}
	return next
}

// WithKeyedStep returns k with an explicit entry at stepID holding the value
// currently resolved there. Unkeyed values become keyed with that value as
// both Initial and the entry.
func (k Keyable[T]) WithKeyedStep(sceneStepIDs []string, stepID string) Keyable[T] {
	if k.Steps == nil {
		return Keyable[T]{Initial: k.Initial, Steps: map[string]T{stepID: k.Initial}}
	}
	if k.IsKeyedAt(stepID) {
		return k
	}
	next := Keyable[T]{Initial: k.Initial, Steps: k.copySteps(1)}
	next.Steps[stepID] = k.ValueAt(sceneStepIDs, stepID)
	return next
}

// WithUnkeyedStep removes the entry at stepID. When no entries remain the
// value collapses back to the bare Initial.
func (k Keyable[T]) WithUnkeyedStep(stepID string) Keyable[T] {
	next, _ := k.WithUnkeyedSteps([]string{stepID})
	return next
}

// WithUnkeyedSteps removes the entries for all stepIDs. It reports whether
// anything was removed; when nothing was, k itself is returned.
func (k Keyable[T]) WithUnkeyedSteps(stepIDs []string) (Keyable[T], bool) {
	if k.Steps == nil {
		return k, false
	}
	found := false
	for _, id := range stepIDs {
		if _, ok := k.Steps[id]; ok {
			found = true
			break
		}
	}
	if !found {
		return k, false
	}
	next := Keyable[T]{Initial: k.Initial, Steps: k.copySteps(0)}
	for _, id := range stepIDs {
		delete(next.Steps, id)
	}
	if len(next.Steps) == 0 {
		return Keyable[T]{Initial: k.Initial}, true
	}
	return next, true
}

// remapSteps returns k with every step entry moved to ids[old]. Entries for
// step ids missing from ids are dropped.
func (k Keyable[T]) remapSteps(ids map[string]string) Keyable[T] {
	if k.Steps == nil {
		return k
	}
	next := Keyable[T]{Initial: k.Initial, Steps: make(map[string]T, len(k.Steps))}
	for id, v := range k.Steps {
		if to, ok := ids[id]; ok {
			next.Steps[to] = v
		}
	}
	return next
}

func (k Keyable[T]) copySteps(extra int) map[string]T {
	cp := make(map[string]T, len(k.Steps)+extra)
	for id, v := range k.Steps {
		cp[id] = v
	}
	return cp
}

type keyedJSON[T any] struct {
	Initial T            `json:"initial"`
	Steps   map[string]T `json:"steps"`
}

// MarshalJSON encodes unkeyed values bare and keyed values as
// {"initial": ..., "steps": {...}}.
func (k Keyable[T]) MarshalJSON() ([]byte, error) {
	if k.Steps == nil {
		return json.Marshal(k.Initial)
	}
	return json.Marshal(keyedJSON[T]{Initial: k.Initial, Steps: k.Steps})
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (k *Keyable[T]) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			_, hasInitial := fields["initial"]
			_, hasSteps := fields["steps"]
			if hasInitial && hasSteps && len(fields) == 2 {
				var keyed keyedJSON[T]
				if err := json.Unmarshal(trimmed, &keyed); err != nil {
					return err
				}
				if keyed.Steps == nil {
					keyed.Steps = map[string]T{}
				}
				k.Initial, k.Steps = keyed.Initial, keyed.Steps
				return nil
			}
		}
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	k.Initial, k.Steps = v, nil
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
