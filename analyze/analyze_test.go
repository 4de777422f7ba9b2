package analyze_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-cube/cdcl/analyze"
	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/internal/boolformula"
	"github.com/c-cube/cdcl/store"
)

// TestAnalyzeFirstUIP builds the textbook two-implication-level conflict by
// hand: decide a@1, decide b@2, BCP derives c@2 from (c ∨ ¬a ∨ ¬b), then
// d@2 from (d ∨ ¬c), then a conflict on (¬d ∨ ¬b). The first UIP at level 2
// is b, so Analyze should learn (¬b ∨ a) and backtrack to level 1.
func TestAnalyzeFirstUIP(t *testing.T) {
	s := store.New(logr.Discard(), false)
	trail := store.NewTrail(s)

	a := s.AllocAtom(boolformula.NewVar(1))
	b := s.AllocAtom(boolformula.NewVar(2))
	c := s.AllocAtom(boolformula.NewVar(3))
	d := s.AllocAtom(boolformula.NewVar(4))

	trail.Decide(a)
	trail.Decide(b)

	clause1 := store.NewExplanationClause(s, []atom.Atom{c, a.Not(), b.Not()}, store.EmptyPremise)
	trail.Enqueue(c, 2, store.BCPReason(clause1))

	clause2 := store.NewExplanationClause(s, []atom.Atom{d, c.Not()}, store.EmptyPremise)
	trail.Enqueue(d, 2, store.BCPReason(clause2))

	conflict := store.NewExplanationClause(s, []atom.Atom{d.Not(), b.Not()}, store.EmptyPremise)

	res := analyze.Analyze(s, trail, conflict)

	require.Len(t, res.Learnt, 2)
	assert.Equal(t, b.Not(), res.Learnt[0], "UIP literal must be the negation of b")
	assert.Equal(t, a, res.Learnt[1])
	assert.Equal(t, 1, res.BacktrackLevel)
	assert.Equal(t, 0, res.NMinimizedAway)
	assert.Equal(t, []*store.Clause{conflict, clause2, clause1}, res.History)
}

// TestAnalyzeMinimizesDiamondAntecedent builds a diamond implication graph:
// decide x@1, derive y@1 from (y ∨ ¬x); decide z@2, derive u@2 from
// (u ∨ ¬x ∨ ¬z) and v@2 from (v ∨ ¬y ∨ ¬z); conflict on (¬u ∨ ¬v). The raw
// first-UIP clause is (¬z ∨ y ∨ x), but y's only antecedent besides x is x
// itself, already present in the clause, so y is redundant and minimize
// should drop it, leaving (¬z ∨ x).
func TestAnalyzeMinimizesDiamondAntecedent(t *testing.T) {
	s := store.New(logr.Discard(), false)
	trail := store.NewTrail(s)

	x := s.AllocAtom(boolformula.NewVar(1))
	y := s.AllocAtom(boolformula.NewVar(2))
	z := s.AllocAtom(boolformula.NewVar(3))
	u := s.AllocAtom(boolformula.NewVar(4))
	v := s.AllocAtom(boolformula.NewVar(5))

	trail.Decide(x)
	yReason := store.NewExplanationClause(s, []atom.Atom{y, x.Not()}, store.EmptyPremise)
	trail.Enqueue(y, 1, store.BCPReason(yReason))

	trail.Decide(z)
	uReason := store.NewExplanationClause(s, []atom.Atom{u, x.Not(), z.Not()}, store.EmptyPremise)
	trail.Enqueue(u, 2, store.BCPReason(uReason))
	vReason := store.NewExplanationClause(s, []atom.Atom{v, y.Not(), z.Not()}, store.EmptyPremise)
	trail.Enqueue(v, 2, store.BCPReason(vReason))

	conflict := store.NewExplanationClause(s, []atom.Atom{u.Not(), v.Not()}, store.EmptyPremise)

	res := analyze.Analyze(s, trail, conflict)

	require.Len(t, res.Learnt, 2)
	assert.Equal(t, z.Not(), res.Learnt[0], "UIP literal must be the negation of z")
	assert.Equal(t, x, res.Learnt[1])
	assert.Equal(t, 1, res.BacktrackLevel)
	assert.Equal(t, 1, res.NMinimizedAway, "y must be minimized away: its only antecedent is x")
	assert.Equal(t, []*store.Clause{conflict, vReason, uReason, yReason}, res.History)
}

// TestAnalyzeUnitConflictBacktracksToZero covers the case where the first
// UIP's clause reduces to a single literal: backtrack level must be 0.
func TestAnalyzeUnitConflictBacktracksToZero(t *testing.T) {
	s := store.New(logr.Discard(), false)
	trail := store.NewTrail(s)

	a := s.AllocAtom(boolformula.NewVar(1))
	b := s.AllocAtom(boolformula.NewVar(2))

	trail.Decide(a)
	clause := store.NewExplanationClause(s, []atom.Atom{b, a.Not()}, store.EmptyPremise)
	trail.Enqueue(b, 1, store.BCPReason(clause))

	conflict := store.NewExplanationClause(s, []atom.Atom{b.Not(), a.Not()}, store.EmptyPremise)

	res := analyze.Analyze(s, trail, conflict)

	require.Len(t, res.Learnt, 1)
	assert.Equal(t, a.Not(), res.Learnt[0])
	assert.Equal(t, 0, res.BacktrackLevel)
}
