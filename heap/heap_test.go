package heap

import "testing"

import "github.com/c-cube/cdcl/atom"

func TestPopMaxOrdering(t *testing.T) {
	weight := []float64{1, 5, 3}
	h := New(&weight)
	h.Grow(0)
	h.Grow(1)
	h.Grow(2)

	v, ok := h.PopMax()
	if !ok || v != 1 {
		t.Fatalf("PopMax() = (%v, %v), want (1, true)", v, ok)
	}
	v, ok = h.PopMax()
	if !ok || v != 2 {
		t.Fatalf("PopMax() = (%v, %v), want (2, true)", v, ok)
	}
	v, ok = h.PopMax()
	if !ok || v != 0 {
		t.Fatalf("PopMax() = (%v, %v), want (0, true)", v, ok)
	}
	if _, ok = h.PopMax(); ok {
		t.Fatalf("PopMax() on empty heap reported ok")
	}
}

func TestDecreaseKeyReordersAfterBump(t *testing.T) {
	weight := []float64{1, 2, 3}
	h := New(&weight)
	h.Grow(0)
	h.Grow(1)
	h.Grow(2)

	weight[0] = 10
	h.DecreaseKey(0)

	if v, _ := h.PopMax(); v != 0 {
		t.Fatalf("PopMax() = %v after bumping var 0, want 0", v)
	}
}

func TestContainsAfterPop(t *testing.T) {
	weight := []float64{1, 2}
	h := New(&weight)
	h.Grow(0)
	h.Grow(1)

	h.PopMax()
	if h.Contains(atom.Var(1)) {
		t.Fatalf("Contains(1) = true after popping var 1")
	}
	if !h.Contains(atom.Var(0)) {
		t.Fatalf("Contains(0) = false, want true")
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	weight := []float64{1}
	h := New(&weight)
	h.Grow(0)
	h.Insert(0)
	if h.Len() != 1 {
		t.Fatalf("Len() = %d after repeated Insert, want 1", h.Len())
	}
}
