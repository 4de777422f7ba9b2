package store

import "github.com/c-cube/cdcl/atom"

// trailState is embedded in Store; it is split into its own file because
// conceptually it is component C4 (Trail) even though, like the teacher's
// Solver, it shares the Store's struct-of-arrays rather than living behind
// a separate allocation.
type trailState struct {
	trail       []atom.Atom
	levelStarts []int32

	// thHead/eltHead are the theory/Boolean propagation heads (§3 "Trail",
	// Invariant T2): thHead <= eltHead <= len(trail), and both equal
	// len(trail) between decisions.
	thHead  int
	eltHead int

	// OnPushLevel/OnPopLevels let the theory bridge observe the push/pop
	// level discipline without the Store importing the theory package.
	OnPushLevel func()
	OnPopLevels func(n int)
}

// Trail is a thin view over the Store's trail state, matching component
// C4's operation names from §4.4. It is a value type wrapping *Store so
// that NewTrail(s) and s's own internal bookkeeping stay in lock-step.
type Trail struct {
	S *Store
}

// NewTrail returns a Trail view over s.
func NewTrail(s *Store) Trail { return Trail{S: s} }

// Len returns the number of currently assigned atoms.
func (t Trail) Len() int { return len(t.S.trail) }

// At returns the i'th trail entry.
func (t Trail) At(i int) atom.Atom { return t.S.trail[i] }

// DecisionLevel returns the current decision level.
func (t Trail) DecisionLevel() int { return len(t.S.levelStarts) }

// LevelStart returns the trail index at which decision level level+1
// started (levelStarts[0] is where level 1 began).
func (t Trail) LevelStart(level int) int { return int(t.S.levelStarts[level]) }

// EltHead/ThHead are the Boolean/theory propagation cursors (§4.5 "Theory
// interleaving").
func (t Trail) EltHead() int    { return t.S.eltHead }
func (t Trail) ThHead() int     { return t.S.thHead }
func (t Trail) SetEltHead(i int) { t.S.eltHead = i }
func (t Trail) SetThHead(i int)  { t.S.thHead = i }

// Enqueue assigns atom a at level with the given reason. Precondition:
// !IsTrue(a) && !IsFalse(a) (§4.4 "enqueue"); violating it is an
// invariant break and panics, matching §7's "Invariant violations ...
// must never occur on well-formed input".
func (t Trail) Enqueue(a atom.Atom, level int, r Reason) {
	s := t.S
	s.setTrue(a)
	s.SetLevel(a.Var(), level)
	s.SetReason(a.Var(), r)
	s.trail = append(s.trail, a)
}

// enqueueFrom implements the same assignment as Enqueue, but following the
// conflict/consistency semantics used when a clause becomes unit (§4.5
// step 5, and §4.3 unit-clause construction): if the fact already holds it
// is a no-op; if it contradicts the current assignment it is a conflict.
func (s *Store) enqueueFrom(p atom.Atom, from *Clause) bool {
	if s.IsTrue(p) {
		return true
	}
	if s.IsFalse(p) {
		return false
	}
	level := len(s.levelStarts)
	s.setTrue(p)
	s.SetLevel(p.Var(), level)
	s.SetReason(p.Var(), BCPReason(from))
	s.trail = append(s.trail, p)
	return true
}

// EnqueueFrom is the exported form of enqueueFrom, used by BCP when a
// clause's last watched literal becomes unit.
func (t Trail) EnqueueFrom(p atom.Atom, from *Clause) bool { return t.S.enqueueFrom(p, from) }

// Decide pushes a new decision level and enqueues a as a branching
// literal, returning false if a is already false (an immediate conflict).
func (t Trail) Decide(a atom.Atom) bool {
	t.NewDecisionLevel()
	if t.S.IsFalse(a) {
		return false
	}
	if t.S.IsTrue(a) {
		return true
	}
	t.Enqueue(a, t.DecisionLevel(), DecisionReason)
	return true
}

// PopTrailTop pops and unassigns the single most recent trail entry,
// reinserting its variable into the activity heap. Unlike CancelUntil it
// does not touch level_starts.
func (t Trail) PopTrailTop() atom.Atom {
	s := t.S
	n := len(s.trail) - 1
	p := s.trail[n]
	s.trail = s.trail[:n]
	s.unassign(p.Var())
	if !s.Heap.Contains(p.Var()) {
		s.Heap.Insert(p.Var())
	}
	if s.eltHead > len(s.trail) {
		s.eltHead = len(s.trail)
	}
	if s.thHead > len(s.trail) {
		s.thHead = len(s.trail)
	}
	return p
}

// NewDecisionLevel records len(trail) as the start of the next decision
// level and asks the theory to push a level (§4.4).
func (t Trail) NewDecisionLevel() {
	t.S.levelStarts = append(t.S.levelStarts, int32(len(t.S.trail)))
	if t.S.OnPushLevel != nil {
		t.S.OnPushLevel()
	}
}

// CancelUntil truncates the trail back to the end of level, retaining
// atoms whose level is <= level (late propagations, packed toward the
// front of the surviving slice) and unassigning the rest (§4.4
// "cancel_until").
func (t Trail) CancelUntil(level int) {
	s := t.S
	if t.DecisionLevel() <= level {
		return
	}
	start := int(s.levelStarts[level])
	if start > len(s.trail) {
		start = len(s.trail)
	}
	write := start
	for i := start; i < len(s.trail); i++ {
		a := s.trail[i]
		if s.Level(a.Var()) <= level {
			s.trail[write] = a
			write++
			continue
		}
		s.unassign(a.Var())
		if s.Heap.Contains(a.Var()) {
			continue
		}
		s.Heap.Insert(a.Var())
	}
	s.trail = s.trail[:write]
	poppedLevels := len(s.levelStarts) - level
	s.levelStarts = s.levelStarts[:level]
	if s.eltHead > len(s.trail) {
		s.eltHead = len(s.trail)
	}
	if s.thHead > len(s.trail) {
		s.thHead = len(s.trail)
	}
	if s.OnPopLevels != nil && poppedLevels > 0 {
		s.OnPopLevels(poppedLevels)
	}
}
