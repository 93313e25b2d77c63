package raidplan

import (
	"maps"
	"slices"
)

// BatchOperation is a sparse set of put and remove changes across the raid
// graph. Applying one through the Engine yields its exact inverse.
type BatchOperation struct {
	PutMetadata    []RaidMetadata `json:"putMetadata,omitempty"`
	RemoveMetadata []string       `json:"removeMetadata,omitempty"`
	PutScenes      []RaidScene    `json:"putScenes,omitempty"`
	RemoveScenes   []string       `json:"removeScenes,omitempty"`
	PutSteps       []RaidStep     `json:"putSteps,omitempty"`
	RemoveSteps    []string       `json:"removeSteps,omitempty"`
	PutEntities    []RaidEntity   `json:"putEntities,omitempty"`
	RemoveEntities []string       `json:"removeEntities,omitempty"`
}

// IsEmpty reports whether op changes nothing.
func (op BatchOperation) IsEmpty() bool {
	return len(op.PutMetadata) == 0 && len(op.RemoveMetadata) == 0 &&
		len(op.PutScenes) == 0 && len(op.RemoveScenes) == 0 &&
		len(op.PutSteps) == 0 && len(op.RemoveSteps) == 0 &&
		len(op.PutEntities) == 0 && len(op.RemoveEntities) == 0
}

// ApplyBatch applies op to s and returns the resulting snapshot together with
// the operation that restores s when applied to the result. s is not
// modified; only the maps op touches are copied.
//
// Application order is fixed: metadata put, metadata remove, scenes put,
// scenes remove, steps put, steps remove, entities put, entities remove.
// Removing a scene also removes every step whose SceneID matches it; those
// steps are recorded in the inverse so the round trip stays exact. Removing
// an entity never cascades.
//
// Within one category, only the first change to an id is recorded in the
// inverse, so an id that is put twice, or put and then removed, still
// restores to its original value.
func ApplyBatch(s RaidsState, op BatchOperation) (RaidsState, BatchOperation) {
	var inv BatchOperation
	next := s

	if len(op.PutMetadata) > 0 || len(op.RemoveMetadata) > 0 {
		next.Metadata = cloneMap(s.Metadata)
		seen := map[string]bool{}
		for _, m := range op.PutMetadata {
			if !seen[m.ID] {
				if old, ok := next.Metadata[m.ID]; ok {
					inv.PutMetadata = append(inv.PutMetadata, old)
				} else {
					inv.RemoveMetadata = append(inv.RemoveMetadata, m.ID)
				}
				seen[m.ID] = true
			}
			next.Metadata[m.ID] = m
		}
		for _, id := range op.RemoveMetadata {
			old, ok := next.Metadata[id]
			if !ok {
				continue
			}
			if !seen[id] {
				inv.PutMetadata = append(inv.PutMetadata, old)
				seen[id] = true
			}
			delete(next.Metadata, id)
		}
	}

	stepsCloned := false
	cloneSteps := func() {
		if !stepsCloned {
			next.Steps = cloneMap(s.Steps)
			stepsCloned = true
		}
	}
	seenSteps := map[string]bool{}

	if len(op.PutScenes) > 0 || len(op.RemoveScenes) > 0 {
		next.Scenes = cloneMap(s.Scenes)
		seen := map[string]bool{}
		for _, sc := range op.PutScenes {
			if !seen[sc.ID] {
				if old, ok := next.Scenes[sc.ID]; ok {
					inv.PutScenes = append(inv.PutScenes, old)
				} else {
					inv.RemoveScenes = append(inv.RemoveScenes, sc.ID)
				}
				seen[sc.ID] = true
			}
			next.Scenes[sc.ID] = sc
		}
		for _, id := range op.RemoveScenes {
			old, ok := next.Scenes[id]
			if !ok {
				continue
			}
			if !seen[id] {
				inv.PutScenes = append(inv.PutScenes, old)
				seen[id] = true
			}
			delete(next.Scenes, id)

			cloneSteps()
			for _, stepID := range sortedKeys(next.Steps) {
				st := next.Steps[stepID]
				if st.SceneID != id {
					continue
				}
				inv.PutSteps = append(inv.PutSteps, st)
				seenSteps[stepID] = true
				delete(next.Steps, stepID)
			}
		}
	}

	if len(op.PutSteps) > 0 || len(op.RemoveSteps) > 0 {
		cloneSteps()
		for _, st := range op.PutSteps {
			if !seenSteps[st.ID] {
				if old, ok := next.Steps[st.ID]; ok {
					inv.PutSteps = append(inv.PutSteps, old)
				} else {
					inv.RemoveSteps = append(inv.RemoveSteps, st.ID)
				}
				seenSteps[st.ID] = true
			}
			next.Steps[st.ID] = st
		}
		for _, id := range op.RemoveSteps {
			old, ok := next.Steps[id]
			if !ok {
				continue
			}
			if !seenSteps[id] {
				inv.PutSteps = append(inv.PutSteps, old)
				seenSteps[id] = true
			}
			delete(next.Steps, id)
		}
	}

	if len(op.PutEntities) > 0 || len(op.RemoveEntities) > 0 {
		next.Entities = cloneMap(s.Entities)
		seen := map[string]bool{}
		for _, e := range op.PutEntities {
			if !seen[e.ID] {
				if old, ok := next.Entities[e.ID]; ok {
					inv.PutEntities = append(inv.PutEntities, old)
				} else {
					inv.RemoveEntities = append(inv.RemoveEntities, e.ID)
				}
				seen[e.ID] = true
			}
			next.Entities[e.ID] = e
		}
		for _, id := range op.RemoveEntities {
			old, ok := next.Entities[id]
			if !ok {
				continue
			}
			if !seen[id] {
				inv.PutEntities = append(inv.PutEntities, old)
				seen[id] = true
			}
			delete(next.Entities, id)
		}
	}

	return next, inv
}

// Engine owns the current RaidsState and is the only code path that replaces
// it. It is not safe for concurrent use; callers serialize on one goroutine.
type Engine struct {
	state RaidsState
}

// NewEngine returns an engine starting from state.
func NewEngine(state RaidsState) *Engine {
	if state.Metadata == nil {
		state = NewRaidsState()
	}
	return &Engine{state: state}
}

// State returns the current snapshot. Snapshots are never mutated, so the
// returned value stays valid after later Apply calls.
func (e *Engine) State() RaidsState {
	return e.state
}

// Apply applies op and returns its inverse.
func (e *Engine) Apply(op BatchOperation) BatchOperation {
	next, inv := ApplyBatch(e.state, op)
	e.state = next
	return inv
}

// cloneMap copies m, returning an empty map for nil so writes are safe.
func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return maps.Clone(m)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
