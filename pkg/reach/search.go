package reach

import (
	"hikefly/pkg/gridmath"
	"hikefly/pkg/pqueue"
)

// Arena is the dense, offset-indexed node store the search writes into; it
// satisfies Explored so relaxation can look up already-finalized ancestors.
type Arena struct {
	nodes   []*Node
	rows    int
	cols    int
	startIx gridmath.Index
}

func newArena(rows, cols int) *Arena {
	return &Arena{nodes: make([]*Node, rows*cols), rows: rows, cols: cols}
}

// Get returns the node at ix, or nil if it has never been proposed.
func (a *Arena) Get(ix gridmath.Index) *Node {
	off := ix.Offset(a.cols)
	if off < 0 || off >= len(a.nodes) {
		return nil
	}
	return a.nodes[off]
}

func (a *Arena) set(ix gridmath.Index, n *Node) {
	a.nodes[ix.Offset(a.cols)] = n
}

// Cols implements Explored.
func (a *Arena) Cols() int { return a.cols }

// PrepareSearch builds the start node per spec §4.3.7: the starting
// altitude defaults to ground height at the start cell plus
// additional_height when query.StartHeight is nil.
func PrepareSearch(ground Ground, startIx gridmath.Index, q *SearchQuery) *Node {
	height := 0.0
	if q.StartHeight != nil {
		height = *q.StartHeight
	} else {
		height = float64(ground.Height(int(startIx.Row), int(startIx.Col))) + q.AdditionalHeight
	}
	return &Node{
		Height:         height,
		Index:          startIx,
		Reference:      nil,
		Distance:       0,
		Reachable:      true,
		InSafetyMargin: false,
		Explored:       false,
	}
}

// collectExploredNeighbours gathers the already-finalized rook neighbours
// of ix, which Relax then filters down to the reachable subset.
func collectExploredNeighbours(arena *Arena, ix gridmath.Index) []*Node {
	var out []*Node
	for _, nb := range gridmath.RookNeighbours(ix, arena.rows, arena.cols) {
		if n := arena.Get(nb); n != nil && n.Explored {
			out = append(out, n)
		}
	}
	return out
}

// commit implements spec §4.3.4's "proposal commit" step: insert a brand
// new node, or overwrite and decrease-priority an existing one, but only
// when the proposal strictly improves on the recorded distance.
func commit(arena *Arena, pq pqueue.Interface, target gridmath.Index, p proposal) {
	off := target.Offset(arena.cols)
	existing := arena.Get(target)
	if existing == nil {
		n := &Node{
			Height:         p.height,
			Index:          target,
			Reference:      p.reference,
			Distance:       p.distance,
			Reachable:      p.reachable,
			InSafetyMargin: p.inSafetyMargin,
		}
		arena.set(target, n)
		pq.Push(off, float32(p.distance))
		return
	}
	if p.distance >= existing.Distance {
		return
	}
	existing.Height = p.height
	existing.Reference = p.reference
	existing.Distance = p.distance
	existing.Reachable = p.reachable
	existing.InSafetyMargin = p.inSafetyMargin
	if pq.Contains(off) {
		pq.DecreasePriority(off, float32(p.distance))
	} else {
		pq.Push(off, float32(p.distance))
	}
}

// Run executes the reachability search described by spec §4.3.5 over the
// whole ground grid, starting from startIx. The returned arena is indexed
// by the same offsets as ground; Finalize crops it to the reached bounding
// box before it is handed back across the API boundary. queueKind selects
// the priority-queue backing ("dense" (default), "map", or "radix") per
// config.SearchConfig.QueueKind.
func Run(ground Ground, cellSize float64, q *SearchQuery, startIx gridmath.Index, queueKind string) *Arena {
	rows, cols := ground.Rows(), ground.Cols()
	arena := newArena(rows, cols)

	start := PrepareSearch(ground, startIx, q)
	arena.set(startIx, start)
	arena.startIx = startIx

	pq := pqueue.NewByKind(queueKind, rows*cols)
	pq.Push(startIx.Offset(cols), 0)

	for pq.Len() > 0 {
		key, _, ok := pq.Pop()
		if !ok {
			break
		}
		cellIx := gridmath.FromOffset(key, cols)
		cell := arena.Get(cellIx)
		if cell == nil {
			continue
		}
		cell.Explored = true

		for _, nb := range gridmath.RookNeighbours(cellIx, rows, cols) {
			if existing := arena.Get(nb); existing != nil && existing.Explored {
				continue
			}
			exploredNeighbours := collectExploredNeighbours(arena, nb)
			for _, p := range Relax(arena, nb, exploredNeighbours, cellSize, ground, q) {
				commit(arena, pq, nb, p)
			}
		}
	}

	return arena
}

// Finalize implements spec §4.3.6 re-indexing: it crops the arena to the
// tight bounding box of every reachable cell (unreachable nodes inside that
// box are kept, those outside it are dropped) and translates every
// surviving Index/Reference to the new,
// origin-shifted coordinate frame so the surface lines up with a
// correspondingly cropped elevation grid.
func Finalize(arena *Arena) *ReachabilitySurface {
	r0, r1 := arena.rows, -1
	c0, c1 := arena.cols, -1
	for row := 0; row < arena.rows; row++ {
		for col := 0; col < arena.cols; col++ {
			n := arena.nodes[row*arena.cols+col]
			if n == nil || !n.Reachable {
				continue
			}
			if row < r0 {
				r0 = row
			}
			if row > r1 {
				r1 = row
			}
			if col < c0 {
				c0 = col
			}
			if col > c1 {
				c1 = col
			}
		}
	}
	if r1 < r0 || c1 < c0 {
		return &ReachabilitySurface{Nodes: nil, Rows: 0, Cols: 0}
	}

	rows := r1 - r0 + 1
	cols := c1 - c0 + 1
	nodes := make([]*Node, rows*cols)

	shift := func(ix gridmath.Index) gridmath.Index {
		return gridmath.Index{Row: ix.Row - uint16(r0), Col: ix.Col - uint16(c0)}
	}

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			n := arena.nodes[row*arena.cols+col]
			if n == nil {
				continue
			}
			local := &Node{
				Height:         n.Height,
				Index:          shift(n.Index),
				Distance:       n.Distance,
				Reachable:      n.Reachable,
				InSafetyMargin: n.InSafetyMargin,
				Explored:       n.Explored,
			}
			if n.Reference != nil {
				ref := shift(*n.Reference)
				local.Reference = &ref
			}
			nodes[(row-r0)*cols+(col-c0)] = local
		}
	}

	return &ReachabilitySurface{
		Nodes:   nodes,
		Rows:    rows,
		Cols:    cols,
		StartIx: shift(arena.startIx),
		Origin:  gridmath.Index{Row: uint16(r0), Col: uint16(c0)},
	}
}
