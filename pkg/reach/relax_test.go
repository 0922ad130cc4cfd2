package reach

import (
	"testing"

	"hikefly/pkg/gridmath"
)

type flatGround struct {
	height     int16
	rows, cols int
}

func (g flatGround) Height(row, col int) int16 { return g.height }
func (g flatGround) Rows() int                 { return g.rows }
func (g flatGround) Cols() int                 { return g.cols }

func baseQuery() *SearchQuery {
	return &SearchQuery{
		GlideRatio:    0.05,
		TrimSpeed:     10,
		WindSpeed:     0,
		SafetyMargin:  50,
		StartDistance: 1e9, // effectively disable margin for these unit tests
	}
}

func TestRelaxK1ProposesViaSoleNeighbour(t *testing.T) {
	arena := newArena(5, 5)
	ground := flatGround{height: 0, rows: 5, cols: 5}
	q := baseQuery()

	n := &Node{Index: gridmath.Index{Row: 2, Col: 2}, Height: 2000, Distance: 0, Reachable: true, Explored: true}
	arena.set(n.Index, n)

	target := gridmath.Index{Row: 2, Col: 3}
	props := Relax(arena, target, []*Node{n}, 30, ground, q)
	if len(props) != 1 {
		t.Fatalf("Relax() returned %d proposals, want 1", len(props))
	}
	if !props[0].reachable {
		t.Error("expected target reachable from a high starting altitude over flat ground")
	}
	if props[0].reference == nil || !gridmath.Equal(*props[0].reference, n.Index) {
		t.Errorf("reference = %v, want %v", props[0].reference, n.Index)
	}
}

func TestRelaxZeroReachableNeighboursYieldsNoProposals(t *testing.T) {
	arena := newArena(5, 5)
	ground := flatGround{height: 0, rows: 5, cols: 5}
	q := baseQuery()

	n := &Node{Index: gridmath.Index{Row: 2, Col: 2}, Height: 2000, Reachable: false, Explored: true}
	arena.set(n.Index, n)

	props := Relax(arena, gridmath.Index{Row: 2, Col: 3}, []*Node{n}, 30, ground, q)
	if len(props) != 0 {
		t.Errorf("Relax() with no reachable neighbours returned %d proposals, want 0", len(props))
	}
}

func TestRelaxK4FallsThroughToK3WhenNotAllReferencesDistinct(t *testing.T) {
	arena := newArena(10, 10)
	ground := flatGround{height: 0, rows: 10, cols: 10}
	q := baseQuery()

	root := &Node{Index: gridmath.Index{Row: 5, Col: 5}, Height: 3000, Distance: 0, Reachable: true, Explored: true}
	arena.set(root.Index, root)

	// Two of the four surrounding neighbours share root as their reference;
	// this must force the fallthrough to relaxK3 instead of the
	// single-closest-neighbour shortcut.
	n1 := &Node{Index: gridmath.Index{Row: 4, Col: 4}, Reference: &root.Index, Height: 2950, Distance: 50, Reachable: true, Explored: true}
	n2 := &Node{Index: gridmath.Index{Row: 4, Col: 6}, Reference: &root.Index, Height: 2950, Distance: 50, Reachable: true, Explored: true}
	n3 := &Node{Index: gridmath.Index{Row: 6, Col: 4}, Height: 2950, Distance: 50, Reachable: true, Explored: true}
	n4 := &Node{Index: gridmath.Index{Row: 6, Col: 6}, Height: 2950, Distance: 50, Reachable: true, Explored: true}
	for _, n := range []*Node{n1, n2, n3, n4} {
		arena.set(n.Index, n)
	}

	target := gridmath.Index{Row: 5, Col: 6}
	props := relaxK4(arena, target, []*Node{n1, n2, n3, n4}, 30, ground, q)
	if len(props) == 0 {
		t.Fatal("expected at least one proposal from the K=3 fallthrough")
	}
}

func TestRelaxK4AllDistinctUsesClosestNeighbourOnly(t *testing.T) {
	arena := newArena(10, 10)
	ground := flatGround{height: 0, rows: 10, cols: 10}
	q := baseQuery()

	mkRef := func(row, col uint16) *gridmath.Index {
		ix := gridmath.Index{Row: row, Col: col}
		return &ix
	}

	n1 := &Node{Index: gridmath.Index{Row: 4, Col: 4}, Reference: mkRef(0, 0), Height: 2950, Distance: 50, Reachable: true, Explored: true}
	n2 := &Node{Index: gridmath.Index{Row: 4, Col: 6}, Reference: mkRef(0, 1), Height: 2950, Distance: 50, Reachable: true, Explored: true}
	n3 := &Node{Index: gridmath.Index{Row: 6, Col: 4}, Reference: mkRef(0, 2), Height: 2950, Distance: 50, Reachable: true, Explored: true}
	n4 := &Node{Index: gridmath.Index{Row: 6, Col: 6}, Reference: mkRef(0, 3), Height: 2950, Distance: 50, Reachable: true, Explored: true}
	for _, n := range []*Node{n1, n2, n3, n4} {
		arena.set(n.Index, n)
	}

	target := gridmath.Index{Row: 5, Col: 5}
	props := relaxK4(arena, target, []*Node{n1, n2, n3, n4}, 30, ground, q)
	if len(props) != 1 {
		t.Fatalf("Relax() with four distinct references returned %d proposals, want exactly 1 (closest-neighbour-only)", len(props))
	}
}

// TestCollapseThenInterceptCatchesCrookedAncestor exercises the documented
// get_straight_line_ref asymmetry end-to-end: CollapseStraightLine is asked
// to collapse a reference that is straight against its own chain but not
// against the actual target cell being proposed for, and relies on
// proposeVia's LineIntersects call to reject the resulting crooked segment
// rather than rejecting it itself.
func TestCollapseThenInterceptCatchesCrookedAncestor(t *testing.T) {
	arena := newArena(10, 10)
	q := baseQuery()
	// A spike directly under the crooked line from start to an off-axis
	// target, tall enough that any straight glide through it is blocked.
	tallGround := newGridGround(10, 10, 0)
	tallGround.heights[3][2] = 6000

	start := &Node{Index: gridmath.Index{Row: 0, Col: 0}, Height: 5500, Distance: 0, Reachable: true, Explored: true}
	arena.set(start.Index, start)

	// ref is straight (same row) with start, so CollapseStraightLine will
	// walk it back to start -- but start-to-target is not actually a
	// straight segment with the real target below.
	ref := &Node{Index: gridmath.Index{Row: 0, Col: 4}, Reference: &start.Index, Height: 5480, Distance: 120, Reachable: true, Explored: true}
	arena.set(ref.Index, ref)

	target := gridmath.Index{Row: 6, Col: 4}
	_, ok := proposeVia(arena, ref, target, 30, tallGround, q)
	if ok {
		t.Fatal("expected LineIntersects to reject the crooked collapsed segment from start through the spike")
	}
}

func TestRelaxInfeasibleWindYieldsNoProposal(t *testing.T) {
	arena := newArena(5, 5)
	ground := flatGround{height: 0, rows: 5, cols: 5}
	q := baseQuery()
	q.WindSpeed = 50 // far exceeds trim speed, every bearing infeasible

	n := &Node{Index: gridmath.Index{Row: 2, Col: 2}, Height: 2000, Reachable: true, Explored: true}
	arena.set(n.Index, n)

	props := Relax(arena, gridmath.Index{Row: 2, Col: 3}, []*Node{n}, 30, ground, q)
	if len(props) != 0 {
		t.Errorf("Relax() under an overwhelming crosswind returned %d proposals, want 0", len(props))
	}
}
