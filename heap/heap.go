// Package heap implements the VSIDS activity heap (§4.2, component C2): a
// binary max-heap over variables ordered by a caller-owned weight slice.
// Weights only ever grow between rescales, so DecreaseKey in the spec's
// vocabulary is actually a sift-toward-root; we keep that name because it
// matches the mental model (decreasing the "key" used for a min-heap-style
// pop) even though the backing heap is a max-heap.
package heap

import "github.com/c-cube/cdcl/atom"

// Heap is a max-heap over atom.Var, comparing entries by *weight[v].
// The weight slice is owned by the caller (the Store) so that variable
// activity bumps elsewhere in the solver are immediately visible to the
// heap without a copy.
type Heap struct {
	items   []atom.Var
	heapPos []int32 // heapPos[v] = index in items, or -1 if not present
	weight  *[]float64
}

const notInHeap = -1

// New returns an empty Heap reading activity from weight.
func New(weight *[]float64) *Heap {
	return &Heap{weight: weight}
}

// Grow extends the heap's bookkeeping to cover a freshly allocated
// variable v, inserting it immediately with its current weight.
func (h *Heap) Grow(v atom.Var) {
	for int(v) >= len(h.heapPos) {
		h.heapPos = append(h.heapPos, notInHeap)
	}
	h.Insert(v)
}

// Len returns the number of variables currently in the heap.
func (h *Heap) Len() int { return len(h.items) }

// Contains reports whether v is currently present in the heap.
func (h *Heap) Contains(v atom.Var) bool {
	return int(v) < len(h.heapPos) && h.heapPos[v] != notInHeap
}

func (h *Heap) less(i, j int32) bool {
	return (*h.weight)[h.items[i]] > (*h.weight)[h.items[j]]
}

func (h *Heap) swap(i, j int32) {
	vi, vj := h.items[i], h.items[j]
	h.items[i], h.items[j] = vj, vi
	h.heapPos[vi], h.heapPos[vj] = j, i
}

// Insert inserts v into the heap, or no-ops if it is already present.
func (h *Heap) Insert(v atom.Var) {
	if h.Contains(v) {
		return
	}
	for int(v) >= len(h.heapPos) {
		h.heapPos = append(h.heapPos, notInHeap)
	}
	h.heapPos[v] = int32(len(h.items))
	h.items = append(h.items, v)
	h.siftUp(h.heapPos[v])
}

// DecreaseKey re-establishes the heap invariant for v after its weight has
// increased (despite the name, inherited from the Store-of-arrays binary
// heap literature, this sifts v toward the root since larger weight sorts
// first in our max-heap).
func (h *Heap) DecreaseKey(v atom.Var) {
	if !h.Contains(v) {
		return
	}
	h.siftUp(h.heapPos[v])
}

// PopMax removes and returns the variable with the highest weight. It
// signals "all variables decided" by returning (atom.Undef, false).
func (h *Heap) PopMax() (atom.Var, bool) {
	if len(h.items) == 0 {
		return atom.Undef, false
	}
	top := h.items[0]
	last := int32(len(h.items) - 1)
	h.swap(0, last)
	h.heapPos[top] = notInHeap
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top, true
}

func (h *Heap) siftUp(j int32) {
	for j > 0 {
		parent := (j - 1) / 2
		if !h.less(j, parent) {
			break
		}
		h.swap(j, parent)
		j = parent
	}
}

func (h *Heap) siftDown(i int32) {
	n := int32(len(h.items))
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		child := left
		if right := left + 1; right < n && h.less(right, left) {
			child = right
		}
		if !h.less(child, i) {
			return
		}
		h.swap(i, child)
		i = child
	}
}
