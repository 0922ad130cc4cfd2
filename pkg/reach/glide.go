package reach

import (
	"math"

	"hikefly/pkg/gridmath"
)

// Bearing returns the grid-frame bearing of the move from a to b, computed
// as atan2(deltaRow, deltaCol) per spec §4.3.1 step 1.
func Bearing(a, b gridmath.Index) float64 {
	dr := float64(int(b.Row) - int(a.Row))
	dc := float64(int(b.Col) - int(a.Col))
	return math.Atan2(dr, dc)
}

// EffectiveGlide computes the effective glide ratio of a move with the
// given grid-frame bearing under the wind described by query, per spec
// §4.3.1. feasible is false (and effGlide meaningless) when the glider
// cannot make any forward progress on this bearing -- an infinite
// effective glide ratio, silently skipped by relaxation per spec §7.
func EffectiveGlide(q *SearchQuery, bearing float64) (effGlide float64, feasible bool) {
	if q.WindSpeed == 0 {
		// No wind: forward component is exactly the trim speed, so the
		// effective glide ratio is just the raw glide ratio.
		return q.GlideRatio, true
	}

	windMathAngle := math.Pi/2 - q.WindDirection
	alpha := windMathAngle - bearing

	tailComponent := q.WindSpeed * math.Cos(alpha)
	crossComponent := q.WindSpeed * math.Sin(alpha)

	radicand := q.TrimSpeed*q.TrimSpeed - crossComponent*crossComponent
	if radicand <= 0 {
		return 0, false
	}
	forward := math.Sqrt(radicand) + tailComponent
	if forward <= 0 {
		return 0, false
	}
	return q.GlideRatio * q.TrimSpeed / forward, true
}

// HeightLoss returns the altitude lost gliding distCells grid cells (of the
// given cellSize, in metres) at the given effective glide ratio.
func HeightLoss(distCells, cellSize, effGlide float64) float64 {
	return distCells * cellSize * effGlide
}
