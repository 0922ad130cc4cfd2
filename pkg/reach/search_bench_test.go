package reach

import (
	"testing"

	"hikefly/pkg/gridmath"
)

// BenchmarkRun mirrors original_source/backend-rust's
// benches/search_benchmark.rs shape: a full reachability search over a
// fixed-size grid.
func BenchmarkRun(b *testing.B) {
	ground := newGridGround(200, 200, 0)
	q := &SearchQuery{GlideRatio: 0.05, TrimSpeed: 10, SafetyMargin: 10, StartDistance: 1e9}
	startHeight := 3000.0
	q.StartHeight = &startHeight

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Run(ground, 30, q, gridmath.Index{Row: 100, Col: 100}, "dense")
	}
}

// BenchmarkRunRadix is the same search over the same grid with the
// monotone radix-heap queue backing instead of the binary heap, so the two
// SearchConfig.QueueKind options are directly comparable.
func BenchmarkRunRadix(b *testing.B) {
	ground := newGridGround(200, 200, 0)
	q := &SearchQuery{GlideRatio: 0.05, TrimSpeed: 10, SafetyMargin: 10, StartDistance: 1e9}
	startHeight := 3000.0
	q.StartHeight = &startHeight

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Run(ground, 30, q, gridmath.Index{Row: 100, Col: 100}, "radix")
	}
}
