package pqueue

import "math"

// bucketShift/bucketMask pack a (bucket, in-bucket index) pair into the int
// slot that Positions stores. bucketShift leaves 24 bits for the in-bucket
// index (up to ~16M entries in a single bucket) and the remaining high bits
// for the bucket number (at most 33), comfortably within DensePositions'
// uint32 slot storage.
const (
	bucketShift = 24
	bucketMask  = (1 << bucketShift) - 1
)

// RadixQueue is a monotone bucket-queue alternative to Queue, grounded on
// original_source/backend-rust/src/radix_heap.rs: it exploits the fact that
// a Dijkstra-style search only ever pops non-decreasing priorities, so
// entries can be bucketed by the number of leading bits they share with the
// last popped priority instead of maintained in a binary heap. Supports the
// same key/priority contract as Queue (decrease-key, O(1) Contains/Get) but
// trades Queue's O(log N) Pop for amortized O(1) at the cost of assuming
// monotonicity: calling Push or DecreasePriority with a priority below the
// last popped value is a precondition violation.
type RadixQueue struct {
	buckets  [33][]entry // bucket 32 holds anything sharing 0 leading bits with last
	pos      Positions
	last     uint32
	lastF    float32
	size     int
}

// NewRadix creates a radix queue whose keys range over [0, n).
func NewRadix(n int) *RadixQueue {
	return &RadixQueue{pos: NewDensePositions(n)}
}

func bucketOf(last, key uint32) int {
	return bits(last ^ key)
}

// bits returns the position of the highest set bit in v, or 0 if v==0.
func bits(v uint32) int {
	n := 0
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

func f32bits(f float32) uint32 {
	// float32 bit patterns for non-negative values sort the same as the
	// floats themselves, which holds here since all priorities are
	// cumulative ground distances (>= 0).
	return math.Float32bits(f)
}

func (q *RadixQueue) Len() int { return q.size }

func (q *RadixQueue) Contains(key int) bool { return q.pos.Contains(key) }

func (q *RadixQueue) Get(key int) (float32, bool) {
	slot, ok := q.pos.Get(key)
	if !ok {
		return 0, false
	}
	b := slot >> bucketShift
	i := slot & bucketMask
	return q.buckets[b][i].priority, true
}

// Push inserts key with the given priority, which must be >= the priority
// of the last popped key.
func (q *RadixQueue) Push(key int, priority float32) {
	if q.pos.Contains(key) {
		panic("pqueue: push of key already in queue")
	}
	if priority < q.lastF {
		panic("pqueue: RadixQueue requires non-decreasing priorities")
	}
	b := bucketOf(q.last, f32bits(priority))
	q.buckets[b] = append(q.buckets[b], entry{key: key, priority: priority})
	slot := (b << bucketShift) | (len(q.buckets[b]) - 1)
	q.pos.Set(key, slot)
	q.size++
}

// DecreasePriority lowers key's priority; a no-op if newPriority is not
// strictly smaller than the stored one.
func (q *RadixQueue) DecreasePriority(key int, newPriority float32) {
	slot, ok := q.pos.Get(key)
	if !ok {
		return
	}
	b := slot >> bucketShift
	i := slot & bucketMask
	cur := q.buckets[b][i]
	if !(newPriority < cur.priority) {
		return
	}
	// Remove from current bucket (swap-with-last) and re-bucket.
	last := len(q.buckets[b]) - 1
	q.buckets[b][i] = q.buckets[b][last]
	q.pos.Set(q.buckets[b][i].key, (b<<bucketShift)|i)
	q.buckets[b] = q.buckets[b][:last]

	nb := bucketOf(q.last, f32bits(newPriority))
	q.buckets[nb] = append(q.buckets[nb], entry{key: cur.key, priority: newPriority})
	q.pos.Set(cur.key, (nb<<bucketShift)|(len(q.buckets[nb])-1))
}

// Pop removes and returns the minimum-priority key.
func (q *RadixQueue) Pop() (key int, priority float32, ok bool) {
	if q.size == 0 {
		return 0, 0, false
	}
	// Find the lowest non-empty bucket.
	b := 0
	for b < 33 && len(q.buckets[b]) == 0 {
		b++
	}
	if b == 0 {
		// Bucket 0 holds exactly entries equal to q.last; pop any one.
		e := q.pop1(0)
		q.size--
		q.last = f32bits(e.priority)
		q.lastF = e.priority
		return e.key, e.priority, true
	}
	// Redistribute bucket b by the new minimum found within it, then retry
	// from bucket 0 / 1, since all of bucket b now shares a tighter prefix
	// with the new "last".
	items := q.buckets[b]
	q.buckets[b] = nil
	minF := items[0].priority
	for _, it := range items {
		if it.priority < minF {
			minF = it.priority
		}
	}
	q.last = f32bits(minF)
	q.lastF = minF
	for _, it := range items {
		nb := bucketOf(q.last, f32bits(it.priority))
		q.buckets[nb] = append(q.buckets[nb], it)
		q.pos.Set(it.key, (nb<<bucketShift)|(len(q.buckets[nb])-1))
	}
	e := q.pop1(0)
	q.size--
	return e.key, e.priority, true
}

func (q *RadixQueue) pop1(b int) entry {
	items := q.buckets[b]
	e := items[0]
	q.pos.Remove(e.key)
	last := len(items) - 1
	items[0] = items[last]
	if last > 0 {
		q.pos.Set(items[0].key, (b<<bucketShift)|0)
	}
	q.buckets[b] = items[:last]
	return e
}
