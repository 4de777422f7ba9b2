package theory

import (
	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/formula"
	"github.com/c-cube/cdcl/store"
)

type pendingClause struct {
	atoms []atom.Atom
	lemma store.Lemma
	keep  bool
}

type pendingDecision struct {
	f    formula.Formula
	sign bool
}

// Bridge forwards trail activity to a Theory and translates the
// Theory's actions back into Store/Trail mutations (component C8).
type Bridge struct {
	s      *store.Store
	trail  store.Trail
	theory Theory

	clausesToAdd  []pendingClause
	nextDecisions []pendingDecision
	conflict      *store.Clause

	sliceFrom int // trail index marking the start of the "new since last call" slice
}

// New returns a Bridge wiring th into s/trail. It registers the trail's
// push/pop-level callbacks so Trail.CancelUntil/NewDecisionLevel
// transparently keep the theory's state in sync (§5).
func New(s *store.Store, trail store.Trail, th Theory) *Bridge {
	b := &Bridge{s: s, trail: trail, theory: th}
	if th.HasTheory() {
		s.OnPushLevel = th.PushLevel
		s.OnPopLevels = th.PopLevels
	}
	return b
}

// HasTheory reports whether a real theory is wired in.
func (b *Bridge) HasTheory() bool { return b.theory.HasTheory() }

// PendingDecisions returns and clears the decision hints accumulated
// since the last call, for pick_branch's priority (i) (§4.7).
func (b *Bridge) PendingDecisions() []atom.Atom {
	if len(b.nextDecisions) == 0 {
		return nil
	}
	out := make([]atom.Atom, 0, len(b.nextDecisions))
	for _, d := range b.nextDecisions {
		a := b.s.AllocAtom(d.f)
		if d.sign {
			a = a.Not()
		}
		if b.s.IsUndef(a) {
			out = append(out, a)
		}
	}
	b.nextDecisions = b.nextDecisions[:0]
	return out
}

// PartialCheck runs the theory's partial_check over every atom assigned
// since the last call, then flushes the clauses it buffered. It returns a
// conflict clause if the theory raised one or a buffered clause had all of
// its literals already false.
func (b *Bridge) PartialCheck() *store.Clause {
	if !b.theory.HasTheory() {
		b.trail.SetThHead(b.trail.EltHead())
		return nil
	}
	b.sliceFrom = b.trail.ThHead()
	b.trail.SetThHead(b.trail.EltHead())
	b.conflict = nil

	b.theory.PartialCheck(b)
	return b.flush()
}

// FinalCheck runs the theory's final_check over the whole trail, used
// once BCP reaches a total Boolean assignment (§4.8).
func (b *Bridge) FinalCheck() *store.Clause {
	if !b.theory.HasTheory() {
		return nil
	}
	b.sliceFrom = 0
	b.conflict = nil

	b.theory.FinalCheck(b)
	return b.flush()
}

// flush adds every buffered clause to the Boolean engine, short-circuiting
// on the first conflict (either a buffered clause reducing to the empty
// clause at the current level, or one raised directly by the theory).
func (b *Bridge) flush() *store.Clause {
	pending := b.clausesToAdd
	b.clausesToAdd = nil
	for _, pc := range pending {
		premise := store.LemmaPremise(pc.lemma)
		ok, c := store.NewClause(b.s, pc.atoms, false, premise)
		if !ok {
			return store.NewExplanationClause(b.s, pc.atoms, premise)
		}
		if c == nil {
			continue // trivially satisfied/tautological; nothing to keep
		}
		if !pc.keep {
			c.MarkRemovable()
			b.s.BumpClauseActivity(c)
			for i := 0; i < c.Len(); i++ {
				b.s.BumpVarActivity(c.At(i).Var())
			}
			b.s.Learnts = append(b.s.Learnts, c)
		} else {
			b.s.Hyps = append(b.s.Hyps, c)
		}
	}
	return b.conflict
}

// --- Actions implementation -------------------------------------------

var _ Actions = (*Bridge)(nil)

func (b *Bridge) IterAssumptions() []formula.Formula {
	out := make([]formula.Formula, 0, b.trail.Len()-b.sliceFrom)
	for i := b.sliceFrom; i < b.trail.Len(); i++ {
		out = append(out, b.s.FormulaOf(b.trail.At(i)))
	}
	return out
}

func (b *Bridge) EvalLit(f formula.Formula) LitValue {
	a := b.s.AllocAtom(f)
	switch {
	case b.s.IsTrue(a):
		return LTrue
	case b.s.IsFalse(a):
		return LFalse
	default:
		return LUndef
	}
}

func (b *Bridge) MkLit(f formula.Formula) atom.Atom {
	return b.s.AllocAtom(f)
}

func (b *Bridge) AddDecisionLit(f formula.Formula, sign bool) {
	b.nextDecisions = append(b.nextDecisions, pendingDecision{f: f, sign: sign})
}

func (b *Bridge) AddClause(atoms []atom.Atom, lemma store.Lemma, keep bool) {
	b.clausesToAdd = append(b.clausesToAdd, pendingClause{atoms: atoms, lemma: lemma, keep: keep})
}

func (b *Bridge) Propagate(f formula.Formula, reason Consequence) {
	a := b.s.AllocAtom(f)
	if b.s.IsTrue(a) {
		return
	}
	if b.s.IsFalse(a) {
		ants := reason()
		clauseAtoms := append([]atom.Atom{a}, negateAll(ants)...)
		b.RaiseConflict(clauseAtoms, nil)
		return
	}
	level := b.trail.DecisionLevel()
	lazy := store.LazyReason(func() *store.Clause {
		ants := reason()
		clauseAtoms := append([]atom.Atom{a}, negateAll(ants)...)
		return store.NewExplanationClause(b.s, clauseAtoms, store.EmptyPremise)
	})
	b.trail.Enqueue(a, level, lazy)
}

func (b *Bridge) RaiseConflict(atoms []atom.Atom, lemma store.Lemma) {
	c := store.NewExplanationClause(b.s, atoms, store.LemmaPremise(lemma))
	c.MarkRemovable()
	b.conflict = c
}

func negateAll(atoms []atom.Atom) []atom.Atom {
	out := make([]atom.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Not()
	}
	return out
}
