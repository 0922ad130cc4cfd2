// Package memo implements the query-memoization canonical form described
// in spec §9 DESIGN NOTES: real-valued query fields are quantized before
// being hashed into a cache key, so two floating-point-equal-enough
// queries collapse to the same key.
package memo

import (
	"fmt"
	"math"
)

// quantizeScale is 2^20, the fixed quantization factor from spec §9:
// "quantizes each real to an integer by round(x·2^20)".
const quantizeScale = 1 << 20

// Quantize rounds x to the nearest multiple of 1/2^20 and returns the
// integer numerator, the canonical form consumed by Key.
func Quantize(x float64) int64 {
	return int64(math.Round(x * quantizeScale))
}

// Key is the canonical memoization key for a reachability query: every
// real-valued field, quantized, plus any integer/boolean fields taken
// verbatim.
type Key struct {
	Lat, Lon          int64
	GlideRatio        int64
	TrimSpeed         int64
	WindDirection     int64
	WindSpeed         int64
	StartHeight       int64
	HasStartHeight    bool
	AdditionalHeight  int64
	SafetyMargin      int64
	StartDistance     int64
	TargetCellSize    int64
}

// QueryParams is the minimal set of real-valued fields a search_from_point
// call is memoized over; hosting services building a Key from their own
// richer request type should map into this shape.
type QueryParams struct {
	Lat, Lon         float64
	GlideRatio       float64
	TrimSpeed        float64
	WindDirection    float64
	WindSpeed        float64
	StartHeight      *float64
	AdditionalHeight float64
	SafetyMargin     float64
	StartDistance    float64
	TargetCellSize   float64
}

// NewKey builds the canonical Key for p.
func NewKey(p QueryParams) Key {
	k := Key{
		Lat:              Quantize(p.Lat),
		Lon:              Quantize(p.Lon),
		GlideRatio:       Quantize(p.GlideRatio),
		TrimSpeed:        Quantize(p.TrimSpeed),
		WindDirection:    Quantize(p.WindDirection),
		WindSpeed:        Quantize(p.WindSpeed),
		AdditionalHeight: Quantize(p.AdditionalHeight),
		SafetyMargin:     Quantize(p.SafetyMargin),
		StartDistance:    Quantize(p.StartDistance),
		TargetCellSize:   Quantize(p.TargetCellSize),
	}
	if p.StartHeight != nil {
		k.HasStartHeight = true
		k.StartHeight = Quantize(*p.StartHeight)
	}
	return k
}

// String renders the key as a stable cache-key string for pkg/tilecache.
func (k Key) String() string {
	return fmt.Sprintf("%d:%d:%d:%d:%d:%d:%d:%t:%d:%d:%d:%d",
		k.Lat, k.Lon, k.GlideRatio, k.TrimSpeed, k.WindDirection, k.WindSpeed,
		k.StartHeight, k.HasStartHeight, k.AdditionalHeight, k.SafetyMargin,
		k.StartDistance, k.TargetCellSize)
}
