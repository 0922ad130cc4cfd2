// Package placeindex implements the offline-built, read-only place-name
// autocomplete index: an array-of-structures prefix trie supporting
// bounded edit-distance lookup (spec §4.4).
package placeindex

import (
	"sort"

	"github.com/uber/h3-go/v4"
)

// Record is a single named location carried by the index.
type Record struct {
	Key              string
	Lat              float64
	Lon              float64
	AdditionalInfoIx int32
	H3Cell           h3.Cell
}

type builderNode struct {
	char     rune
	children map[rune]*builderNode
	lengths  map[int]struct{}
	items    []int32
}

func newBuilderNode(char rune) *builderNode {
	return &builderNode{char: char, children: make(map[rune]*builderNode), lengths: make(map[int]struct{})}
}

func (n *builderNode) insert(word []rune, item int32) {
	cur := n
	for i, c := range word {
		remaining := len(word) - i
		cur.lengths[remaining] = struct{}{}
		child, ok := cur.children[c]
		if !ok {
			child = newBuilderNode(c)
			cur.children[c] = child
		}
		cur = child
	}
	cur.items = append(cur.items, item)
	cur.lengths[0] = struct{}{}
}

func (n *builderNode) totalNodes() int {
	total := 1
	for _, c := range n.children {
		total += c.totalNodes()
	}
	return total
}

// sortedChildren orders children by subtree size descending (largest
// first, matching the spec's "sorted by subtree size descending improves
// iteration"), with the edge character as a deterministic tie-break since
// Go map iteration order is randomized and the original's HashMap-derived
// order was never actually deterministic either.
func (n *builderNode) sortedChildren() []*builderNode {
	out := make([]*builderNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].totalNodes(), out[j].totalNodes()
		if si != sj {
			return si > sj
		}
		return out[i].char < out[j].char
	})
	return out
}

func (n *builderNode) hasZeroLength() bool {
	_, ok := n.lengths[0]
	return ok
}

func (n *builderNode) sortedLengths() []int {
	out := make([]int, 0, len(n.lengths))
	for l := range n.lengths {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Builder accumulates (key, record) pairs before Finalize flattens them
// into an immutable Index.
type Builder struct {
	root    *builderNode
	records []Record
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{root: newBuilderNode(0)}
}

// h3Resolution buckets records into H3 cells of roughly 250 km², much
// smaller than one 1x1 degree DEM tile, matching pkg/tilecache's choice.
const h3Resolution = 5

// Insert lowercases key and adds it to the trie, associating it with rec.
// rec's H3Cell is (re)computed from its Lat/Lon so callers don't need to
// know the index's resolution convention.
func (b *Builder) Insert(key string, rec Record) {
	rec.Key = key
	if cell, err := h3.LatLngToCell(h3.NewLatLng(rec.Lat, rec.Lon), h3Resolution); err == nil {
		rec.H3Cell = cell
	}
	ix := int32(len(b.records))
	b.records = append(b.records, rec)
	b.root.insert([]rune(lower(key)), ix)
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r - 'A' + 'a'
		}
	}
	return string(out)
}

// Index is the immutable, array-of-structures trie produced by Finalize.
// It is read-only and safe for unsynchronized concurrent reads (spec §5).
type Index struct {
	chars         []rune
	leaf          []bool
	childOffsets  []int32
	children      []int32
	itemOffsets   []int32
	items         []int32
	lengthOffsets []int32
	lengths       []uint16
	records       []Record
}

// Finalize flattens the builder trie into an Index, ready for querying or
// serialization.
func (b *Builder) Finalize() *Index {
	total := b.root.totalNodes()
	idx := &Index{
		chars:   make([]rune, total),
		leaf:    make([]bool, total),
		records: append([]Record(nil), b.records...),
	}

	childCounts := make([]int, total)
	itemCounts := make([]int, total)
	lengthCounts := make([]int, total)

	order := make([]*builderNode, 0, total)
	var count func(n *builderNode)
	count = func(n *builderNode) {
		ix := len(order)
		order = append(order, n)
		childCounts[ix] = len(n.children)
		itemCounts[ix] = len(n.items)
		lengthCounts[ix] = len(n.lengths)
		for _, c := range n.sortedChildren() {
			count(c)
		}
	}
	count(b.root)

	idx.childOffsets = cumsum32(childCounts)
	idx.itemOffsets = cumsum32(itemCounts)
	idx.lengthOffsets = cumsum32(lengthCounts)
	idx.children = make([]int32, idx.childOffsets[total])
	idx.items = make([]int32, idx.itemOffsets[total])
	idx.lengths = make([]uint16, idx.lengthOffsets[total])

	next := 0
	var fill func(n *builderNode) int
	fill = func(n *builderNode) int {
		myIx := next
		next++
		idx.chars[myIx] = n.char
		idx.leaf[myIx] = n.hasZeroLength()

		itemStart := idx.itemOffsets[myIx]
		for i, it := range n.items {
			idx.items[int(itemStart)+i] = it
		}

		lengthStart := idx.lengthOffsets[myIx]
		for i, l := range n.sortedLengths() {
			idx.lengths[int(lengthStart)+i] = uint16(l)
		}

		childStart := idx.childOffsets[myIx]
		for i, c := range n.sortedChildren() {
			childIx := fill(c)
			idx.children[int(childStart)+i] = int32(childIx)
		}
		return myIx
	}
	fill(b.root)

	return idx
}

func cumsum32(counts []int) []int32 {
	out := make([]int32, len(counts)+1)
	var sum int32
	for i, c := range counts {
		sum += int32(c)
		out[i+1] = sum
	}
	return out
}

func (idx *Index) childSlice(node int) []int32 {
	return idx.children[idx.childOffsets[node]:idx.childOffsets[node+1]]
}

func (idx *Index) itemSlice(node int) []int32 {
	return idx.items[idx.itemOffsets[node]:idx.itemOffsets[node+1]]
}

func (idx *Index) lengthSlice(node int) []uint16 {
	return idx.lengths[idx.lengthOffsets[node]:idx.lengthOffsets[node+1]]
}

// getChild returns the child of node reached by rune c, or -1.
func (idx *Index) getChild(node int, c rune) int {
	for _, child := range idx.childSlice(node) {
		if idx.chars[child] == c {
			return int(child)
		}
	}
	return -1
}

// Exact reports whether key is present in the trie exactly.
func (idx *Index) Exact(key string) bool {
	node := 0
	for _, c := range lower(key) {
		child := idx.getChild(node, c)
		if child < 0 {
			return false
		}
		node = child
	}
	return idx.leaf[node]
}

// Len returns the number of distinct records held by the index.
func (idx *Index) Len() int { return len(idx.records) }
