package reach

import "hikefly/pkg/gridmath"

// proposal is a fully computed candidate arrival at a target cell, ready
// to be committed to the search arena per spec §4.3.4 "Proposal commit".
type proposal struct {
	height         float64
	distance       float64
	reference      *gridmath.Index
	reachable      bool
	inSafetyMargin bool
}

// selectReference implements the spec §4.3.4 reference-selection rule: the
// candidate reference is n itself, unless wind speed dominates trim speed
// (or an intersection check is forced by the caller) and n has its own
// reference, in which case that ancestor is tried first and only used if
// the line from it to target does not intersect terrain.
func selectReference(explored Explored, n *Node, target gridmath.Index, cellSize float64, ground Ground, q *SearchQuery, forceCheck bool) *Node {
	tryAncestor := (q.WindSpeed >= q.TrimSpeed || forceCheck) && n.Reference != nil
	if tryAncestor {
		ancestor := explored.Get(*n.Reference)
		if ancestor != nil && !LineIntersects(ancestor, target, cellSize, ground, q) {
			return ancestor
		}
	}
	return n
}

// proposeVia computes the full proposal of reaching target via candidate
// reference ref, applying straight-line collapsing (§4.3.3) first when ref
// lies on a straight row/column with target. ok is false if the move is
// infeasible (infinite effective glide) or the line intersects terrain.
func proposeVia(explored Explored, ref *Node, target gridmath.Index, cellSize float64, ground Ground, q *SearchQuery) (proposal, bool) {
	chosen := ref
	if gridmath.SameRowOrCol(ref.Index, target) {
		chosen = CollapseStraightLine(explored, ref)
	}

	bearing := Bearing(chosen.Index, target)
	effGlide, feasible := EffectiveGlide(q, bearing)
	if !feasible {
		return proposal{}, false
	}
	if LineIntersects(chosen, target, cellSize, ground, q) {
		return proposal{}, false
	}

	segCells := gridmath.L2(chosen.Index, target)
	distance := chosen.Distance + segCells*cellSize
	height := chosen.Height - HeightLoss(segCells, cellSize, effGlide)
	groundH := float64(ground.Height(int(target.Row), int(target.Col)))

	margin := 0.0
	if distance >= q.StartDistance {
		margin = q.SafetyMargin
	}
	reachable := height > groundH+margin
	// "Within safety margin" flags cells whose clearance, though enough to
	// satisfy the margin requirement, is itself less than one further
	// margin-width -- i.e. a pilot only just cleared the required buffer.
	inSafetyMargin := reachable && margin > 0 && height-groundH < 2*margin

	idx := chosen.Index
	return proposal{
		height:         height,
		distance:       distance,
		reference:      &idx,
		reachable:      reachable,
		inSafetyMargin: inSafetyMargin,
	}, true
}

// proposeFrom runs the full reference-selection + straight-line-collapse +
// propose pipeline starting from explored neighbour n.
func proposeFrom(explored Explored, n *Node, target gridmath.Index, cellSize float64, ground Ground, q *SearchQuery, forceCheck bool) (proposal, bool) {
	ref := selectReference(explored, n, target, cellSize, ground, q, forceCheck)
	return proposeVia(explored, ref, target, cellSize, ground, q)
}

// collinearCommonAncestor implements the K=2 "the two neighbours are
// collinear successors of a common ancestor A" test from spec §4.3.4: an
// ancestor A on n1 or n2's reference chain such that A-to-one-neighbour is
// a straight segment and the other neighbour also lies on that same
// axis-aligned line.
func collinearCommonAncestor(explored Explored, n1, n2 *Node) *Node {
	for _, a := range refChain(explored, n1) {
		if isCollinearThrough(a, n1, n2) || isCollinearThrough(a, n2, n1) {
			return a
		}
	}
	for _, a := range refChain(explored, n2) {
		if isCollinearThrough(a, n1, n2) || isCollinearThrough(a, n2, n1) {
			return a
		}
	}
	return nil
}

func isCollinearThrough(a, primary, other *Node) bool {
	if !gridmath.SameRowOrCol(a.Index, primary.Index) {
		return false
	}
	return sameAxisLine(a.Index, primary.Index, other.Index)
}

func sameAxisLine(a, b, c gridmath.Index) bool {
	if a.Row == b.Row && a.Row == c.Row {
		return true
	}
	if a.Col == b.Col && a.Col == c.Col {
		return true
	}
	return false
}

// refChain returns n followed by its ancestors, walking toward the start
// and terminating at the root (spec §3
// invariant: "a chain of reference pointers terminates at the start").
func refChain(explored Explored, n *Node) []*Node {
	var chain []*Node
	cur := n
	for {
		chain = append(chain, cur)
		if cur.Reference == nil {
			break
		}
		next := explored.Get(*cur.Reference)
		if next == nil {
			break
		}
		cur = next
	}
	return chain
}

// Relax computes the candidate proposals for reaching target given its
// explored rook neighbours, per the K=0..4 case analysis of spec §4.3.4.
// Each returned proposal should be committed independently (push-or-
// decrease-priority); the queue's decrease-priority rule is what ultimately
// selects the best one when more than one is returned.
func Relax(explored Explored, target gridmath.Index, exploredNeighbours []*Node, cellSize float64, ground Ground, q *SearchQuery) []proposal {
	var reachable []*Node
	for _, n := range exploredNeighbours {
		if n.Reachable {
			reachable = append(reachable, n)
		}
	}

	switch len(reachable) {
	case 0:
		return nil // T stays unreachable: distance 0, no reference
	case 1:
		return relaxK1(explored, target, reachable[0], cellSize, ground, q)
	case 2:
		return relaxK2(explored, target, reachable, cellSize, ground, q)
	case 3:
		return relaxK3(explored, target, reachable, cellSize, ground, q)
	case 4:
		return relaxK4(explored, target, reachable, cellSize, ground, q)
	default:
		return nil
	}
}

func relaxK1(explored Explored, target gridmath.Index, n *Node, cellSize float64, ground Ground, q *SearchQuery) []proposal {
	p, ok := proposeFrom(explored, n, target, cellSize, ground, q, false)
	if !ok {
		return nil
	}
	return []proposal{p}
}

func relaxK2(explored Explored, target gridmath.Index, ns []*Node, cellSize float64, ground Ground, q *SearchQuery) []proposal {
	n1, n2 := ns[0], ns[1]
	if a := collinearCommonAncestor(explored, n1, n2); a != nil {
		p, ok := proposeVia(explored, a, target, cellSize, ground, q)
		if !ok {
			return nil
		}
		return []proposal{p}
	}

	var out []proposal
	if p, ok := proposeFrom(explored, n1, target, cellSize, ground, q, true); ok {
		out = append(out, p)
	}
	if p, ok := proposeFrom(explored, n2, target, cellSize, ground, q, true); ok {
		out = append(out, p)
	}
	return out
}

func relaxK3(explored Explored, target gridmath.Index, ns []*Node, cellSize float64, ground Ground, q *SearchQuery) []proposal {
	n1, n2, n3 := ns[0], ns[1], ns[2]

	pairShares := func(a, b *Node) bool {
		return a.Reference != nil && b.Reference != nil && *a.Reference == *b.Reference
	}

	switch {
	case pairShares(n1, n2):
		out := relaxK2(explored, target, []*Node{n1, n2}, cellSize, ground, q)
		if p, ok := proposeFrom(explored, n3, target, cellSize, ground, q, false); ok {
			out = append(out, p)
		}
		return out
	case pairShares(n1, n3):
		out := relaxK2(explored, target, []*Node{n1, n3}, cellSize, ground, q)
		if p, ok := proposeFrom(explored, n2, target, cellSize, ground, q, false); ok {
			out = append(out, p)
		}
		return out
	case pairShares(n2, n3):
		out := relaxK2(explored, target, []*Node{n2, n3}, cellSize, ground, q)
		if p, ok := proposeFrom(explored, n1, target, cellSize, ground, q, false); ok {
			out = append(out, p)
		}
		return out
	default:
		var out []proposal
		for _, n := range ns {
			if p, ok := proposeFrom(explored, n, target, cellSize, ground, q, false); ok {
				out = append(out, p)
			}
		}
		return out
	}
}

// relaxK4 implements spec §4.3.4's K=4 case together with the behavior
// documented as an open question in spec §9: only when all four references
// are distinct does it propose via the single closest neighbour (the cell
// is surrounded, further propagation is dominated); otherwise it falls
// through to the K=3 logic over the same four-element neighbour list
// rather than first deduplicating by shared reference. That logic checks
// shared references only among the first three entries; when none of
// those pairs shares one, it proposes via all four entries. This is preserved exactly as
// described, not "fixed".
func relaxK4(explored Explored, target gridmath.Index, ns []*Node, cellSize float64, ground Ground, q *SearchQuery) []proposal {
	allDistinct := true
	for i := 0; i < len(ns) && allDistinct; i++ {
		for j := i + 1; j < len(ns); j++ {
			if ns[i].Reference != nil && ns[j].Reference != nil && *ns[i].Reference == *ns[j].Reference {
				allDistinct = false
				break
			}
		}
	}

	if allDistinct {
		closest := ns[0]
		for _, n := range ns[1:] {
			if n.Distance < closest.Distance {
				closest = n
			}
		}
		p, ok := proposeFrom(explored, closest, target, cellSize, ground, q, false)
		if !ok {
			return nil
		}
		return []proposal{p}
	}

	return relaxK3(explored, target, ns, cellSize, ground, q)
}
