// Package store implements the clause/atom/variable pool (§4.1, component
// C1), the clause type (§4.3, C3) and the trail (§4.4, C4). The three live
// together because every trail and clause operation reaches directly into
// the Store's struct-of-arrays state (design note "Store as
// struct-of-arrays"): per-variable and per-atom fields are dense slices
// indexed by Var or Atom, favoring cache locality in the propagation hot
// loop instead of per-variable heap objects.
package store

import (
	"github.com/go-logr/logr"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/formula"
	"github.com/c-cube/cdcl/heap"
)

// ReasonKind tags why a variable holds its current assignment.
type ReasonKind uint8

const (
	// ReasonNone marks a variable with no assignment, or one that
	// needs no justification (should not occur for an assigned var).
	ReasonNone ReasonKind = iota
	// ReasonDecision marks a branching decision.
	ReasonDecision
	// ReasonBCP marks a unit-propagated assignment justified by Clause.
	ReasonBCP
	// ReasonLazy marks a theory propagation whose explanation clause is
	// only materialized if conflict analysis reaches this variable.
	ReasonLazy
)

// Reason is the tagged variant described in design note "Lazy BCP
// reasons": Decision | Bcp(clause) | BcpLazy(suspended-computation). The
// suspension is force-memoized so repeated Materialize calls are cheap and
// referentially transparent.
type Reason struct {
	Kind   ReasonKind
	Clause *Clause       // valid when Kind == ReasonBCP
	Force  func() *Clause // valid when Kind == ReasonLazy
	forced *Clause
	didRun bool
}

// DecisionReason is the reason attached to a branching literal.
var DecisionReason = Reason{Kind: ReasonDecision}

// BCPReason builds a Reason pointing at the propagating clause.
func BCPReason(c *Clause) Reason { return Reason{Kind: ReasonBCP, Clause: c} }

// LazyReason builds a Reason whose explanation is computed on demand.
func LazyReason(force func() *Clause) Reason {
	return Reason{Kind: ReasonLazy, Force: force}
}

// Materialize forces a lazy reason into a concrete clause, memoizing the
// result. It returns nil for ReasonNone/ReasonDecision.
func (r *Reason) Materialize() *Clause {
	switch r.Kind {
	case ReasonBCP:
		return r.Clause
	case ReasonLazy:
		if !r.didRun {
			r.forced = r.Force()
			r.didRun = true
		}
		return r.forced
	default:
		return nil
	}
}

type internKey struct {
	hash uint64
}

type internEntry struct {
	f formula.Formula
	v atom.Var
}

// Store pools variables, atoms, and clauses, and owns every per-entity
// mutable field the rest of the solver reaches into.
type Store struct {
	Log logr.Logger

	trailState

	// Canonicalization / interning (§4.1).
	intern map[uint64][]internEntry
	varF   []formula.Formula // canonical formula backing each Var

	// Per-variable state, struct-of-arrays.
	level           []int32
	reason          []Reason
	weight          []float64
	seen            []bool
	defaultPolarity []bool

	// Per-atom state, 2*len(level) entries, indexed by atom.Index().
	isTrue  []bool
	watches [][]*Clause

	// VSIDS heap, sharing the weight slice above.
	Heap *heap.Heap

	// Activity increments and decay factors (§4.2, §4.7).
	VarIncr    float64
	ClaIncr    float64
	VarDecay   float64
	ClaDecay   float64

	// Clause lifecycle vectors (§3 "Lifecycle").
	Hyps    []*Clause
	Learnts []*Clause
	nextCid int64

	// StoreProof disables premise tracking when false (§4.9).
	StoreProof bool

	// Observers, attached at factory time (§5, §6).
	OnNewAtom func(a atom.Atom)
}

// New returns an empty Store. storeProof enables premise/History tracking
// for later proof reconstruction.
func New(log logr.Logger, storeProof bool) *Store {
	s := &Store{
		Log:        log,
		intern:     make(map[uint64][]internEntry),
		StoreProof: storeProof,
		VarDecay:   1 / 0.95,
		ClaDecay:   1 / 0.999,
	}
	s.Heap = heap.New(&s.weight)
	return s
}

// NVars returns the number of allocated variables.
func (s *Store) NVars() int { return len(s.level) }

// AllocAtom interns f's canonical formula (allocating a fresh Var on first
// sight) and returns the Atom representing f itself. Allocation never
// re-enters BCP; the new variable's weight starts at 0 and is inserted
// into the activity heap immediately (§4.1, §4.2).
func (s *Store) AllocAtom(f formula.Formula) atom.Atom {
	canon, negated := f.Norm()
	h := canon.Hash()

	for _, e := range s.intern[h] {
		if e.f.Equal(canon) {
			return atom.New(e.v, negated)
		}
	}

	v := atom.Var(s.NVars())
	s.varF = append(s.varF, canon)
	s.level = append(s.level, -1)
	s.reason = append(s.reason, Reason{})
	s.weight = append(s.weight, 0)
	s.seen = append(s.seen, false)
	s.defaultPolarity = append(s.defaultPolarity, false)
	s.isTrue = append(s.isTrue, false, false)
	s.watches = append(s.watches, nil, nil)
	s.intern[h] = append(s.intern[h], internEntry{f: canon, v: v})
	s.Heap.Grow(v)

	a := atom.New(v, negated)
	if s.OnNewAtom != nil {
		s.OnNewAtom(a)
	}
	return a
}

// FormulaOf returns the host formula corresponding to a, reconstructed
// from the interned canonical form and a's polarity.
func (s *Store) FormulaOf(a atom.Atom) formula.Formula {
	canon := s.varF[a.Var()]
	if a.Sign() {
		return canon.Neg()
	}
	return canon
}

// ClearMark unmarks both a and its negation's seen flag (§4.1); since seen
// is tracked per-variable, this is simply clearing the variable's flag.
func (s *Store) ClearMark(a atom.Atom) {
	s.seen[a.Var()] = false
}

// Seen reports whether v has been marked during the current analysis pass.
func (s *Store) Seen(v atom.Var) bool { return s.seen[v] }

// SetSeen marks/unmarks v.
func (s *Store) SetSeen(v atom.Var, b bool) { s.seen[v] = b }

// Level returns v's decision level, or -1 if unassigned.
func (s *Store) Level(v atom.Var) int { return int(s.level[v]) }

// SetLevel sets v's decision level.
func (s *Store) SetLevel(v atom.Var, level int) { s.level[v] = int32(level) }

// ReasonOf returns a pointer to v's reason so callers may Materialize it.
func (s *Store) ReasonOf(v atom.Var) *Reason { return &s.reason[v] }

// SetReason sets v's reason.
func (s *Store) SetReason(v atom.Var, r Reason) { s.reason[v] = r }

// DefaultPolarity returns v's preferred branching sign.
func (s *Store) DefaultPolarity(v atom.Var) bool { return s.defaultPolarity[v] }

// SetDefaultPolarity sets v's preferred branching sign.
func (s *Store) SetDefaultPolarity(v atom.Var, neg bool) { s.defaultPolarity[v] = neg }

// IsTrue reports whether a's literal is currently satisfied.
func (s *Store) IsTrue(a atom.Atom) bool { return s.isTrue[a.Index()] }

// IsFalse reports whether a's negation is currently satisfied.
func (s *Store) IsFalse(a atom.Atom) bool { return s.isTrue[a.Not().Index()] }

// IsUndef reports whether a is currently unassigned.
func (s *Store) IsUndef(a atom.Atom) bool { return !s.IsTrue(a) && !s.IsFalse(a) }

// setTrue marks a as satisfied. Callers must ensure a is not already
// assigned (Invariant A1); violating this is a programming error.
func (s *Store) setTrue(a atom.Atom) {
	if s.IsTrue(a) || s.IsFalse(a) {
		panic("store: enqueue of an already-assigned atom")
	}
	s.isTrue[a.Index()] = true
}

// unassign clears both polarities of v's atom and resets its bookkeeping.
func (s *Store) unassign(v atom.Var) {
	s.isTrue[atom.Pos(v).Index()] = false
	s.isTrue[atom.Neg(v).Index()] = false
	s.level[v] = -1
	s.reason[v] = Reason{}
}

// Watches returns the (mutable) watch list for atom a.
func (s *Store) Watches(a atom.Atom) []*Clause { return s.watches[a.Index()] }

// AddWatch appends c to a's watch list.
func (s *Store) AddWatch(a atom.Atom, c *Clause) {
	s.watches[a.Index()] = append(s.watches[a.Index()], c)
}

// SetWatches replaces a's watch list wholesale (used by BCP's swap-remove
// sweep, which rebuilds the list it is iterating).
func (s *Store) SetWatches(a atom.Atom, cs []*Clause) { s.watches[a.Index()] = cs }

// BumpVarActivity increases v's activity by the current increment,
// rescaling every variable's weight if the increment threshold is
// crossed, and fixes the heap (§4.2).
func (s *Store) BumpVarActivity(v atom.Var) {
	s.weight[v] += s.VarIncr
	if s.weight[v] > 1e100 {
		for i := range s.weight {
			s.weight[i] *= 1e-100
		}
		s.VarIncr *= 1e-100
	}
	if s.Heap.Contains(v) {
		s.Heap.DecreaseKey(v)
	}
}

// DecayVarActivity grows the variable activity increment (§4.7).
func (s *Store) DecayVarActivity() { s.VarIncr *= s.VarDecay }

// BumpClauseActivity increases a removable clause's activity, rescaling
// every learnt clause's activity if the increment threshold is crossed.
func (s *Store) BumpClauseActivity(c *Clause) {
	if !c.Removable() {
		return
	}
	c.activity += s.ClaIncr
	if c.activity > 1e20 {
		for _, l := range s.Learnts {
			l.activity *= 1e-20
		}
		s.ClaIncr *= 1e-20
	}
}

// DecayClauseActivity grows the clause activity increment (§4.7).
func (s *Store) DecayClauseActivity() { s.ClaIncr *= s.ClaDecay }

func (s *Store) allocCid() int64 {
	s.nextCid++
	return s.nextCid
}
