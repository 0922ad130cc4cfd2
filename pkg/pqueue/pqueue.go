// Package pqueue implements a minimum priority queue whose keys are drawn
// from a known finite universe [0, N), the flat cell offsets of a search
// grid. It supports decrease-key, which a stdlib container/heap wrapper
// does not give for free, so the heap is maintained by hand in the idiom
// of the teacher's own from-scratch priority queues.
package pqueue

import "math"

// unset marks a key with no heap slot. Keys never exceed N-1 and N is
// bounded by grid size (<=~10^6 cells), so uint32 has ample headroom while
// staying smaller than a pointer-sized int for the reverse map.
const unset = math.MaxUint32

// Positions is the reverse-index abstraction named in the spec's design
// notes: a dense []uint32 is the default (O(1), no hashing in the inner
// loop) and a map-backed implementation exists for tests that don't want
// to preallocate the full key universe up front.
type Positions interface {
	Get(key int) (slot int, ok bool)
	Set(key, slot int)
	Remove(key int)
	Contains(key int) bool
}

// DensePositions is the default Positions backing: one uint32 slot per
// possible key, sentinel unset when the key isn't in the heap.
type DensePositions struct {
	slots []uint32
}

// NewDensePositions preallocates a reverse map over [0, n).
func NewDensePositions(n int) *DensePositions {
	slots := make([]uint32, n)
	for i := range slots {
		slots[i] = unset
	}
	return &DensePositions{slots: slots}
}

func (p *DensePositions) Get(key int) (int, bool) {
	s := p.slots[key]
	if s == unset {
		return 0, false
	}
	return int(s), true
}

func (p *DensePositions) Set(key, slot int) { p.slots[key] = uint32(slot) }
func (p *DensePositions) Remove(key int)     { p.slots[key] = unset }
func (p *DensePositions) Contains(key int) bool {
	return p.slots[key] != unset
}

// MapPositions is a hash-map backed Positions, useful for tests or for
// sparse key universes where preallocating N slots would waste memory.
type MapPositions struct {
	m map[int]int
}

// NewMapPositions returns an empty map-backed reverse index.
func NewMapPositions() *MapPositions {
	return &MapPositions{m: make(map[int]int)}
}

func (p *MapPositions) Get(key int) (int, bool) {
	slot, ok := p.m[key]
	return slot, ok
}
func (p *MapPositions) Set(key, slot int)  { p.m[key] = slot }
func (p *MapPositions) Remove(key int)     { delete(p.m, key) }
func (p *MapPositions) Contains(key int) bool {
	_, ok := p.m[key]
	return ok
}

type entry struct {
	key      int
	priority float32
}

// Interface is the common contract of Queue and RadixQueue, letting
// callers (e.g. pkg/reach) pick a backing implementation via
// SearchConfig.QueueKind without depending on the concrete type.
type Interface interface {
	Len() int
	Contains(key int) bool
	Get(key int) (priority float32, ok bool)
	Push(key int, priority float32)
	Pop() (key int, priority float32, ok bool)
	DecreasePriority(key int, newPriority float32)
}

// NewByKind builds a queue over [0, n) of the named kind: "dense" (default),
// "map", or "radix". Matches config.SearchConfig.QueueKind.
func NewByKind(kind string, n int) Interface {
	switch kind {
	case "map":
		return NewWithPositions(NewMapPositions())
	case "radix":
		return NewRadix(n)
	default:
		return New(n)
	}
}

// Queue is a binary-heap minimum priority queue over a fixed key universe.
// All operations are O(log N) worst case except Contains/Get, which are
// O(1) via the Positions reverse map.
type Queue struct {
	heap []entry // heap[0] is unused; the heap proper starts at index 1
	pos  Positions
}

// New creates a queue whose keys range over [0, n) using the default dense
// reverse-index implementation.
func New(n int) *Queue {
	return NewWithPositions(NewDensePositions(n))
}

// NewWithPositions creates a queue backed by a caller-supplied Positions
// implementation (e.g. MapPositions for a sparse or unknown-size universe).
func NewWithPositions(pos Positions) *Queue {
	return &Queue{heap: make([]entry, 1), pos: pos}
}

// Len returns the number of keys currently in the queue.
func (q *Queue) Len() int { return len(q.heap) - 1 }

// Contains reports whether key currently has an entry in the queue.
func (q *Queue) Contains(key int) bool { return q.pos.Contains(key) }

// Get returns the current priority of key, if present.
func (q *Queue) Get(key int) (priority float32, ok bool) {
	slot, ok := q.pos.Get(key)
	if !ok {
		return 0, false
	}
	return q.heap[slot].priority, true
}

// Push inserts key with the given priority. Pushing a key already present
// is a precondition violation (callers must test Contains first) and
// panics, matching the spec's "Queue key reuse: programming error" policy.
func (q *Queue) Push(key int, priority float32) {
	if q.pos.Contains(key) {
		panic("pqueue: push of key already in queue")
	}
	q.heap = append(q.heap, entry{key: key, priority: priority})
	slot := len(q.heap) - 1
	q.pos.Set(key, slot)
	q.swim(slot)
}

// Pop removes and returns the minimum-priority key. ok is false if the
// queue is empty.
func (q *Queue) Pop() (key int, priority float32, ok bool) {
	n := q.Len()
	if n == 0 {
		return 0, 0, false
	}
	top := q.heap[1]
	q.swap(1, n)
	q.heap = q.heap[:n]
	q.pos.Remove(top.key)
	if n > 1 {
		q.sink(1)
	}
	return top.key, top.priority, true
}

// DecreasePriority lowers key's priority. It is a no-op if newPriority is
// not strictly less than the currently stored priority -- this is the
// primary mutation path during relaxation and must stay idempotent against
// "improving" proposals that aren't actually improvements.
func (q *Queue) DecreasePriority(key int, newPriority float32) {
	slot, ok := q.pos.Get(key)
	if !ok {
		return
	}
	if !(newPriority < q.heap[slot].priority) {
		return
	}
	q.heap[slot].priority = newPriority
	q.swim(slot)
}

func (q *Queue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.pos.Set(q.heap[i].key, i)
	q.pos.Set(q.heap[j].key, j)
}

func (q *Queue) swim(k int) {
	for k > 1 && q.heap[k/2].priority > q.heap[k].priority {
		q.swap(k/2, k)
		k = k / 2
	}
}

func (q *Queue) sink(k int) {
	n := q.Len()
	for 2*k <= n {
		j := 2 * k
		if j < n && q.heap[j+1].priority < q.heap[j].priority {
			j++
		}
		if !(q.heap[j].priority < q.heap[k].priority) {
			break
		}
		q.swap(k, j)
		k = j
	}
}
