package elevation

import "math"

// Grid is the immutable-after-construction metric elevation grid described
// in spec §3 ("ElevationGrid"). Heights are laid out row-major, row 0 being
// the grid's southernmost row (increasing row index moves north), matching
// the orientation the reachability search expects when it treats the grid
// as a plain 2-D array addressed by gridmath.Index.
type Grid struct {
	heights     []int16 // row-major, len == rows*cols
	rows, cols  int
	cellSize    float64 // metres per cell side, isotropic
	minCellSize float64 // finest cell size the store can produce
	latLo, latHi float64
	lonLo, lonHi float64
}

// NewGrid validates and constructs a Grid. It enforces two invariants from
// spec §3: rows*cols == len(heights) and cellSize >= minCellSize. Heights
// are not checked here; void values are patched when tiles are loaded.
func NewGrid(heights []int16, rows, cols int, cellSize, minCellSize float64, latLo, latHi, lonLo, lonHi float64) *Grid {
	if rows*cols != len(heights) {
		panic("elevation: rows*cols must equal len(heights)")
	}
	if cellSize < minCellSize {
		panic("elevation: cellSize must be >= minCellSize")
	}
	return &Grid{
		heights: heights, rows: rows, cols: cols,
		cellSize: cellSize, minCellSize: minCellSize,
		latLo: latLo, latHi: latHi, lonLo: lonLo, lonHi: lonHi,
	}
}

func (g *Grid) Rows() int             { return g.rows }
func (g *Grid) Cols() int             { return g.cols }
func (g *Grid) CellSize() float64     { return g.cellSize }
func (g *Grid) MinCellSize() float64  { return g.minCellSize }
func (g *Grid) LatitudeRange() (lo, hi float64) { return g.latLo, g.latHi }
func (g *Grid) LongitudeRange() (lo, hi float64) { return g.lonLo, g.lonHi }

// Height returns the elevation in metres MSL at (row, col).
func (g *Grid) Height(row, col int) int16 {
	return g.heights[row*g.cols+col]
}

// HeightAt returns the elevation at a flat row-major offset.
func (g *Grid) HeightAt(offset int) int16 {
	return g.heights[offset]
}

// Centre returns the geometric centre cell of the grid.
func (g *Grid) Centre() (row, col int) {
	return g.rows / 2, g.cols / 2
}

// Scale returns a new Grid resampled to targetCellSize by nearest-neighbour
// subsampling, matching spec §4.1 step 6. Scaling to the grid's current
// cell size is a no-op that returns the grid itself, satisfying the
// idempotence property in spec §8 ("scale(g, cell_size_g) has no effect").
func (g *Grid) Scale(targetCellSize float64) *Grid {
	if targetCellSize <= g.cellSize {
		return g
	}
	factor := int(math.Ceil(targetCellSize / g.cellSize))
	if factor < 1 {
		factor = 1
	}
	newRows := (g.rows + factor - 1) / factor
	newCols := (g.cols + factor - 1) / factor
	heights := make([]int16, newRows*newCols)
	for r := 0; r < newRows; r++ {
		for c := 0; c < newCols; c++ {
			sr := r * factor
			sc := c * factor
			if sr >= g.rows {
				sr = g.rows - 1
			}
			if sc >= g.cols {
				sc = g.cols - 1
			}
			heights[r*newCols+c] = g.Height(sr, sc)
		}
	}
	return NewGrid(heights, newRows, newCols, g.cellSize*float64(factor), g.minCellSize,
		g.latLo, g.latHi, g.lonLo, g.lonHi)
}

// Crop returns the sub-grid spanning [r0,r1) x [c0,c1), translating the
// geographic extent proportionally. Used by the reachability search's
// re-indexing step (spec §4.3.6).
func (g *Grid) Crop(r0, r1, c0, c1 int) *Grid {
	rows := r1 - r0
	cols := c1 - c0
	heights := make([]int16, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			heights[r*cols+c] = g.Height(r0+r, c0+c)
		}
	}
	latSpan := g.latHi - g.latLo
	lonSpan := g.lonHi - g.lonLo
	latLo := g.latLo + latSpan*float64(r0)/float64(g.rows)
	latHi := g.latLo + latSpan*float64(r1)/float64(g.rows)
	lonLo := g.lonLo + lonSpan*float64(c0)/float64(g.cols)
	lonHi := g.lonLo + lonSpan*float64(c1)/float64(g.cols)
	return NewGrid(heights, rows, cols, g.cellSize, g.minCellSize, latLo, latHi, lonLo, lonHi)
}
