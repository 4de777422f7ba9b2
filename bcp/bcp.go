// Package bcp implements two-watched-literal Boolean constraint
// propagation (§4.5, component C5).
package bcp

import (
	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/store"
)

// Conflict is returned by Propagate when a clause becomes fully falsified.
type Conflict struct {
	Clause *store.Clause
}

// Propagate drives BCP to a fixpoint (elt_head == len(trail)), returning
// the first conflicting clause encountered, or nil if propagation
// completed cleanly. It never looks past Trail.EltHead(), so theory
// propagations enqueued between calls are picked up automatically by the
// next call.
func Propagate(s *store.Store, trail store.Trail) *Conflict {
	for trail.EltHead() < trail.Len() {
		p := trail.At(trail.EltHead())
		trail.SetEltHead(trail.EltHead() + 1)

		if c := propagateOne(s, trail, p); c != nil {
			return c
		}
	}
	return nil
}

// propagateOne processes every clause watching neg(p), since p has just
// become true and those clauses may now be unit or falsified.
func propagateOne(s *store.Store, trail store.Trail, p atom.Atom) *Conflict {
	watchAtom := p.Not()
	ws := s.Watches(watchAtom)

	i := 0
	for i < len(ws) {
		c := ws[i]

		// Step 1: sweep dead-clause tombstones lazily.
		if c.Dead() {
			ws = swapRemove(ws, i)
			continue
		}

		// Step 2: arrange so the watch that just turned false sits at
		// index 1.
		if c.At(0) == watchAtom {
			c.SwapWatch()
		}

		// Step 3: already satisfied via the other watch.
		if s.IsTrue(c.At(0)) {
			i++
			continue
		}

		// Step 4: look for a replacement watch among the non-watched
		// literals.
		replaced := false
		for k := 2; k < c.Len(); k++ {
			if !s.IsFalse(c.At(k)) {
				c.SetAt(1, c.At(k))
				c.SetAt(k, watchAtom)
				s.AddWatch(c.At(1), c)
				ws = swapRemove(ws, i)
				replaced = true
				break
			}
		}
		if replaced {
			s.SetWatches(watchAtom, ws)
			continue
		}

		// Step 5: no replacement; either a conflict or a new unit fact.
		s.SetWatches(watchAtom, ws)
		if s.IsFalse(c.At(0)) {
			return &Conflict{Clause: c}
		}
		if !trail.EnqueueFrom(c.At(0), c) {
			return &Conflict{Clause: c}
		}
		ws = s.Watches(watchAtom)
		i++
	}
	s.SetWatches(watchAtom, ws)
	return nil
}

// swapRemove removes ws[i] in O(1), preserving the "exactly two watchers"
// invariant by moving the last element into its place.
func swapRemove(ws []*store.Clause, i int) []*store.Clause {
	n := len(ws)
	ws[i] = ws[n-1]
	return ws[:n-1]
}
