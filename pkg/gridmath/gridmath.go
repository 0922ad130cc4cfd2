// Package gridmath provides the flat-offset grid-index arithmetic shared by
// the elevation store and the reachability search.
package gridmath

import "math"

// Index is a row/column coordinate into a rectangular grid. It is kept as a
// pair of uint16 so it fits the same 4-byte slot whether used as a map key,
// a priority-queue key, or a Node.Reference.
type Index struct {
	Row uint16
	Col uint16
}

// Offset returns the flat row-major offset of ix into a grid with the given
// number of columns.
func (ix Index) Offset(cols int) int {
	return int(ix.Row)*cols + int(ix.Col)
}

// FromOffset reconstructs an Index from a flat row-major offset.
func FromOffset(offset, cols int) Index {
	return Index{
		Row: uint16(offset / cols),
		Col: uint16(offset % cols),
	}
}

// InBounds reports whether ix lies within a rows x cols grid.
func InBounds(ix Index, rows, cols int) bool {
	return int(ix.Row) < rows && int(ix.Col) < cols
}

// RookNeighbours returns the up-to-four cells sharing an edge with ix,
// clipped to the rows x cols grid.
func RookNeighbours(ix Index, rows, cols int) []Index {
	out := make([]Index, 0, 4)
	r, c := int(ix.Row), int(ix.Col)
	if r > 0 {
		out = append(out, Index{uint16(r - 1), uint16(c)})
	}
	if r < rows-1 {
		out = append(out, Index{uint16(r + 1), uint16(c)})
	}
	if c > 0 {
		out = append(out, Index{uint16(r), uint16(c - 1)})
	}
	if c < cols-1 {
		out = append(out, Index{uint16(r), uint16(c + 1)})
	}
	return out
}

// SameRowOrCol reports whether a and b share a row or a column, i.e. they
// form a "straight segment" (spec glossary).
func SameRowOrCol(a, b Index) bool {
	return a.Row == b.Row || a.Col == b.Col
}

// L2 returns the Euclidean distance, in grid cells, between a and b.
func L2(a, b Index) float64 {
	dr := float64(int(a.Row) - int(b.Row))
	dc := float64(int(a.Col) - int(b.Col))
	return math.Hypot(dr, dc)
}

// Equal reports whether a and b are the same cell. Equality is by flat
// offset, which for valid (non-negative) Row/Col pairs coincides with
// field-wise equality; Equal exists so callers don't need to know that.
func Equal(a, b Index) bool {
	return a == b
}
