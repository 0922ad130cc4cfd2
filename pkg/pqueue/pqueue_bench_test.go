package pqueue

import "testing"

// BenchmarkDensePositions and BenchmarkMapPositions mirror
// original_source/backend-rust's benches/search_benchmark.rs comparison of
// the map-like backing trait's production (dense) and test (hash map)
// implementations.
func BenchmarkDensePositions(b *testing.B) {
	const n = 10000
	for i := 0; i < b.N; i++ {
		q := New(n)
		for k := 0; k < n; k++ {
			q.Push(k, float32(n-k))
		}
		for q.Len() > 0 {
			q.Pop()
		}
	}
}

func BenchmarkMapPositions(b *testing.B) {
	const n = 10000
	for i := 0; i < b.N; i++ {
		q := NewWithPositions(NewMapPositions())
		for k := 0; k < n; k++ {
			q.Push(k, float32(n-k))
		}
		for q.Len() > 0 {
			q.Pop()
		}
	}
}

func BenchmarkRadixQueue(b *testing.B) {
	const n = 10000
	for i := 0; i < b.N; i++ {
		q := NewRadix(n)
		for k := 0; k < n; k++ {
			q.Push(k, float32(k))
		}
		for q.Len() > 0 {
			q.Pop()
		}
	}
}
