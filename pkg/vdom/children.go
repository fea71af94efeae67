package vdom

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/reactor/internal/errors"
)

// updateChildren reconciles two child lists with four cursors: both ends
// of the old and the new list are compared first, which handles appends,
// removals, reversals and rotations with the fewest moves. Anything left
// is looked up by key (or by SameVNode scan for unkeyed nodes) in the
// remaining old range.
func (r *patchRun) updateChildren(parentElm Node, oldCh, newCh []*VNode, removeOnly bool) {
	oldStart, newStart := 0, 0
	oldEnd, newEnd := len(oldCh)-1, len(newCh)-1
	oldStartV, oldEndV := oldCh[0], oldCh[oldEnd]
	newStartV, newEndV := newCh[0], newCh[newEnd]
	canMove := !removeOnly

	var oldKeyToIdx map[any]int

	checkDuplicateKeys(newCh)

	for oldStart <= oldEnd && newStart <= newEnd {
		switch {
		case oldStartV == nil:
			oldStart++
			oldStartV = at(oldCh, oldStart)

		case oldEndV == nil:
			oldEnd--
			oldEndV = at(oldCh, oldEnd)

		case SameVNode(oldStartV, newStartV):
			r.patchVnode(oldStartV, newStartV, newCh, newStart, removeOnly)
			oldStart++
			newStart++
			oldStartV = at(oldCh, oldStart)
			newStartV = at(newCh, newStart)

		case SameVNode(oldEndV, newEndV):
			r.patchVnode(oldEndV, newEndV, newCh, newEnd, removeOnly)
			oldEnd--
			newEnd--
			oldEndV = at(oldCh, oldEnd)
			newEndV = at(newCh, newEnd)

		case SameVNode(oldStartV, newEndV):
			// Moved right.
			r.patchVnode(oldStartV, newEndV, newCh, newEnd, removeOnly)
			if canMove {
				r.move(parentElm, oldStartV.Elm, r.ops.NextSibling(oldEndV.Elm))
			}
			oldStart++
			newEnd--
			oldStartV = at(oldCh, oldStart)
			newEndV = at(newCh, newEnd)

		case SameVNode(oldEndV, newStartV):
			// Moved left.
			r.patchVnode(oldEndV, newStartV, newCh, newStart, removeOnly)
			if canMove {
				r.move(parentElm, oldEndV.Elm, oldStartV.Elm)
			}
			oldEnd--
			newStart++
			oldEndV = at(oldCh, oldEnd)
			newStartV = at(newCh, newStart)

		default:
			if oldKeyToIdx == nil {
				oldKeyToIdx = createKeyToOldIdx(oldCh, oldStart, oldEnd)
			}
			idx, found := -1, false
			if hashableKey(newStartV.Key) {
				idx, found = oldKeyToIdx[newStartV.Key]
			} else {
				idx = findIdxInOld(newStartV, oldCh, oldStart, oldEnd)
				found = idx >= 0
			}

			if !found {
				r.createElm(newStartV, parentElm, oldStartV.Elm, false, newCh, newStart)
			} else {
				toMove := oldCh[idx]
				if toMove != nil && SameVNode(toMove, newStartV) {
					r.patchVnode(toMove, newStartV, newCh, newStart, removeOnly)
					oldCh[idx] = nil
					if canMove {
						r.move(parentElm, toMove.Elm, oldStartV.Elm)
					}
				} else {
					// Same key, different element: treat as new.
					r.createElm(newStartV, parentElm, oldStartV.Elm, false, newCh, newStart)
				}
			}
			newStart++
			newStartV = at(newCh, newStart)
		}
	}

	if oldStart > oldEnd {
		var refElm Node
		if next := at(newCh, newEnd+1); next != nil {
			refElm = next.Elm
		}
		r.addVnodes(parentElm, refElm, newCh, newStart, newEnd)
	} else if newStart > newEnd {
		r.removeVnodes(oldCh, oldStart, oldEnd)
	}
}

func (r *patchRun) move(parent, node, ref Node) {
	r.ops.InsertBefore(parent, node, ref)
	r.stats.Moved++
}

func at(list []*VNode, i int) *VNode {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

func createKeyToOldIdx(children []*VNode, begin, end int) map[any]int {
	m := make(map[any]int)
	for i := begin; i <= end; i++ {
		if c := children[i]; c != nil && hashableKey(c.Key) {
			m[c.Key] = i
		}
	}
	return m
}

func findIdxInOld(node *VNode, oldCh []*VNode, start, end int) int {
	for i := start; i <= end; i++ {
		if c := oldCh[i]; c != nil && SameVNode(node, c) {
			return i
		}
	}
	return -1
}

// hashableKey reports whether k can index a map. Keys that cannot
// (slices, maps, funcs) never match an old node and are always created.
func hashableKey(k any) bool {
	return k != nil && reflect.ValueOf(k).Comparable()
}

// checkDuplicateKeys warns about sibling keys that occur more than once.
func checkDuplicateKeys(children []*VNode) {
	var seen map[any]bool
	for _, c := range children {
		if c == nil || !hashableKey(c.Key) {
			continue
		}
		if seen == nil {
			seen = make(map[any]bool, len(children))
		}
		if seen[c.Key] {
			errors.WarnError(errors.New("V001").WithDetail(fmt.Sprintf("Duplicate key %v", c.Key)), "key", c.Key)
			continue
		}
		seen[c.Key] = true
	}
}
