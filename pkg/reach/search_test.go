package reach

import (
	"testing"

	"hikefly/pkg/gridmath"
)

// gridGround is a rectangular, per-cell Ground fixture for search tests.
type gridGround struct {
	heights    [][]int16
	rows, cols int
}

func newGridGround(rows, cols int, fill int16) *gridGround {
	h := make([][]int16, rows)
	for r := range h {
		h[r] = make([]int16, cols)
		for c := range h[r] {
			h[r][c] = fill
		}
	}
	return &gridGround{heights: h, rows: rows, cols: cols}
}

func (g *gridGround) Height(row, col int) int16 { return g.heights[row][col] }
func (g *gridGround) Rows() int                 { return g.rows }
func (g *gridGround) Cols() int                 { return g.cols }

func TestRunFlatGroundEverythingReachable(t *testing.T) {
	ground := newGridGround(10, 10, 0)
	q := &SearchQuery{
		GlideRatio:    0.05,
		TrimSpeed:     10,
		SafetyMargin:  10,
		StartDistance: 1e9,
	}
	startHeight := 5000.0
	q.StartHeight = &startHeight

	arena := Run(ground, 30, q, gridmath.Index{Row: 5, Col: 5}, "dense")
	surface := Finalize(arena)

	if surface.Rows == 0 || surface.Cols == 0 {
		t.Fatal("expected a non-empty reachability surface over flat, high-altitude-start terrain")
	}

	reachedAny := false
	for _, n := range surface.Nodes {
		if n != nil && n.Reachable {
			reachedAny = true
			break
		}
	}
	if !reachedAny {
		t.Error("expected at least one reachable cell")
	}
}

func TestRunStartCellIsAlwaysReachable(t *testing.T) {
	ground := newGridGround(6, 6, 0)
	q := &SearchQuery{GlideRatio: 0.05, TrimSpeed: 10, SafetyMargin: 10, StartDistance: 1e9}
	startHeight := 2000.0
	q.StartHeight = &startHeight

	startIx := gridmath.Index{Row: 3, Col: 3}
	arena := Run(ground, 30, q, startIx, "dense")
	surface := Finalize(arena)

	start := surface.At(int(surface.StartIx.Row), int(surface.StartIx.Col))
	if start == nil || !start.Reachable {
		t.Fatal("start cell must always be present and reachable")
	}
	if start.Reference != nil {
		t.Error("start cell must have no reference")
	}
}

func TestRunTallObstacleBlocksCellsBeyondIt(t *testing.T) {
	ground := newGridGround(3, 20, 0)
	// A wall just past the start that a low glide ratio cannot clear.
	for r := 0; r < 3; r++ {
		ground.heights[r][10] = 5000
	}
	q := &SearchQuery{GlideRatio: 0.2, TrimSpeed: 10, SafetyMargin: 0, StartDistance: 1e9}
	startHeight := 500.0
	q.StartHeight = &startHeight

	arena := Run(ground, 30, q, gridmath.Index{Row: 1, Col: 0}, "dense")
	beyond := arena.Get(gridmath.Index{Row: 1, Col: 19})
	if beyond != nil && beyond.Reachable {
		t.Error("expected the cell beyond the tall wall to be unreachable")
	}
}

func TestFinalizeCropsToReachedBoundingBox(t *testing.T) {
	ground := newGridGround(20, 20, 0)
	q := &SearchQuery{GlideRatio: 0.5, TrimSpeed: 10, SafetyMargin: 0, StartDistance: 1e9}
	startHeight := 20.0 // low start and steep glide ratio: reach stays small
	q.StartHeight = &startHeight

	arena := Run(ground, 30, q, gridmath.Index{Row: 10, Col: 10}, "dense")
	surface := Finalize(arena)

	if surface.Rows >= arena.rows || surface.Cols >= arena.cols {
		t.Fatal("finalized surface must be cropped smaller than the source grid")
	}
}
