package reach

import (
	"testing"

	"hikefly/pkg/gridmath"
)

func TestCollapseStraightLineWalksChainOfCollinearAncestors(t *testing.T) {
	arena := newArena(1, 10)

	start := &Node{Index: gridmath.Index{Row: 0, Col: 0}, Distance: 0}
	arena.set(start.Index, start)

	mid := &Node{Index: gridmath.Index{Row: 0, Col: 3}, Reference: &start.Index, Distance: 90}
	arena.set(mid.Index, mid)

	near := &Node{Index: gridmath.Index{Row: 0, Col: 5}, Reference: &mid.Index, Distance: 150}
	arena.set(near.Index, near)

	got := CollapseStraightLine(arena, near)
	if got != start {
		t.Errorf("CollapseStraightLine() = %+v, want start node %+v", got, start)
	}
}

func TestCollapseStraightLineStopsAtBend(t *testing.T) {
	arena := newArena(10, 10)

	start := &Node{Index: gridmath.Index{Row: 0, Col: 0}, Distance: 0}
	arena.set(start.Index, start)

	// Bend: bend references start diagonally, sharing neither its row nor
	// its column, so the chain stops being straight at bend.
	bend := &Node{Index: gridmath.Index{Row: 4, Col: 3}, Reference: &start.Index, Distance: 150}
	arena.set(bend.Index, bend)

	tail := &Node{Index: gridmath.Index{Row: 4, Col: 6}, Reference: &bend.Index, Distance: 240}
	arena.set(tail.Index, tail)

	got := CollapseStraightLine(arena, tail)
	if got != bend {
		t.Errorf("CollapseStraightLine() = %+v, want bend node %+v (straightness breaks at the row/col change)", got, bend)
	}
}

// TestCollapseStraightLineBentChainWalksPastLastAlignedAncestor pins the
// behavior chosen for the spec §9 open question on a chain that is
// internally straight in two different directions: S(0,0) -> A(5,0) ->
// B(5,8). Collapsing from B walks to A (same row as B) and then, since A
// and S share column 0, continues on to S -- even though S is not aligned
// with a hypothetical target past B, e.g. T(5,12). The original
// get_straight_line_ref checks each ancestor's straightness against the
// target itself and would stop at A; CollapseStraightLine checks straightness
// link-by-link along the chain and has no target to stop at, so it returns S.
func TestCollapseStraightLineBentChainWalksPastLastAlignedAncestor(t *testing.T) {
	arena := newArena(10, 20)

	start := &Node{Index: gridmath.Index{Row: 0, Col: 0}, Distance: 0}
	arena.set(start.Index, start)

	a := &Node{Index: gridmath.Index{Row: 5, Col: 0}, Reference: &start.Index, Distance: 50}
	arena.set(a.Index, a)

	b := &Node{Index: gridmath.Index{Row: 5, Col: 8}, Reference: &a.Index, Distance: 130}
	arena.set(b.Index, b)

	got := CollapseStraightLine(arena, b)
	if got != start {
		t.Errorf("CollapseStraightLine() = %+v, want start node %+v (walks past A via the shared column with S)", got, start)
	}
}

func TestCollapseStraightLineSingleNodeNoReference(t *testing.T) {
	arena := newArena(1, 1)
	n := &Node{Index: gridmath.Index{Row: 0, Col: 0}}
	arena.set(n.Index, n)

	if got := CollapseStraightLine(arena, n); got != n {
		t.Errorf("CollapseStraightLine() on a rootless node should return itself")
	}
}
