package raidplan

import (
	"fmt"
	"slices"
)

// Placement says on which side of the destination id a moved block lands.
type Placement uint8

const (
	PlaceBefore Placement = iota // insert the block before the destination
	PlaceAfter                   // insert the block after the destination
)

func (p Placement) String() string {
	switch p {
	case PlaceBefore:
		return "before"
	case PlaceAfter:
		return "after"
	default:
		return fmt.Sprintf("Placement(%d)", p)
	}
}

// reorderIDs moves the ids in moving (kept in their order within order) to a
// contiguous block beside target. The insertion point is measured among the
// ids that do not move, so placing a block right after itself is a no-op.
// When target is not in order the block is appended.
func reorderIDs(order, moving []string, target string, place Placement) []string {
	movingSet := make(map[string]bool, len(moving))
	for _, id := range moving {
		movingSet[id] = true
	}
	block := make([]string, 0, len(moving))
	rest := make([]string, 0, len(order))
	for _, id := range order {
		if movingSet[id] {
			block = append(block, id)
		} else {
			rest = append(rest, id)
		}
	}
	at := insertionIndex(order, movingSet, target, place)
	return slices.Insert(rest, at, block...)
}

// insertionIndex converts a position beside target in order into an index in
// order with the moving ids removed.
func insertionIndex(order []string, movingSet map[string]bool, target string, place Placement) int {
	idx := indexOf(order, target)
	if idx < 0 {
		n := 0
		for _, id := range order {
			if !movingSet[id] {
				n++
			}
		}
		return n
	}
	if place == PlaceAfter {
		idx++
	}
	n := 0
	for _, id := range order[:idx] {
		if !movingSet[id] {
			n++
		}
	}
	return n
}

// withoutIDs returns order minus every id in drop. The second result reports
// whether anything was removed.
func withoutIDs(order []string, drop map[string]bool) ([]string, bool) {
	out := make([]string, 0, len(order))
	for _, id := range order {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out, len(out) != len(order)
}

// insertAfter returns order with ids inserted right after anchor, or appended
// when anchor is absent.
func insertAfter(order []string, anchor string, ids ...string) []string {
	idx := indexOf(order, anchor)
	if idx < 0 {
		return append(slices.Clone(order), ids...)
	}
	return slices.Insert(slices.Clone(order), idx+1, ids...)
}
