package reach

import "hikefly/pkg/gridmath"

// Explored is the read-only view of already-finalized nodes that the
// collapsing and relaxation logic needs: a dense arena indexed by flat
// cell offset, per spec §9 ("keep the explored store as a dense array
// indexed by cell offset, with reference an optional index").
type Explored interface {
	Get(ix gridmath.Index) *Node
	Cols() int
}

// CollapseStraightLine implements spec §4.3.3: given a reference r chosen
// for some new node (the caller has already checked that r lies on a
// straight row or column with the new node), walk r's own reference chain
// and replace r with the farthest ancestor for which straightness holds.
//
// Per the spec §9 open question, straightness here is checked purely
// against r's own chain -- each link compares a node to its immediate
// reference -- never against the new node the caller is proposing a
// reference for. If the new node is offset from that chain, this can pick
// an ancestor that is no longer actually straight from the new node; the
// subsequent LineIntersects call is what catches it.
func CollapseStraightLine(explored Explored, r *Node) *Node {
	cur := r
	for cur.Reference != nil {
		ancestor := explored.Get(*cur.Reference)
		if ancestor == nil || !gridmath.SameRowOrCol(cur.Index, ancestor.Index) {
			break
		}
		cur = ancestor
	}
	return cur
}
