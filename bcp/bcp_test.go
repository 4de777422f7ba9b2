package bcp_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/bcp"
	"github.com/c-cube/cdcl/internal/boolformula"
	"github.com/c-cube/cdcl/store"
)

func newFixture(t *testing.T, n int) (*store.Store, store.Trail, []atom.Atom) {
	t.Helper()
	s := store.New(logr.Discard(), false)
	trail := store.NewTrail(s)
	as := make([]atom.Atom, n)
	for i := 0; i < n; i++ {
		as[i] = s.AllocAtom(boolformula.NewVar(i + 1))
	}
	return s, trail, as
}

func addClause(t *testing.T, s *store.Store, lits ...atom.Atom) *store.Clause {
	t.Helper()
	ok, c := store.NewClause(s, lits, false, store.EmptyPremise)
	require.True(t, ok)
	if c != nil {
		s.Hyps = append(s.Hyps, c)
	}
	return c
}

func TestPropagateUnitChain(t *testing.T) {
	s, trail, as := newFixture(t, 3)
	// (¬a ∨ b) ∧ (¬b ∨ c), decide a: forces b, then c true via two
	// chained two-watched-literal propagation steps.
	addClause(t, s, as[0].Not(), as[1])
	addClause(t, s, as[1].Not(), as[2])

	trail.Decide(as[0])

	c := bcp.Propagate(s, trail)
	require.Nil(t, c)
	assert.True(t, s.IsTrue(as[0]))
	assert.True(t, s.IsTrue(as[1]))
	assert.True(t, s.IsTrue(as[2]))
	assert.Equal(t, trail.Len(), trail.EltHead())
}

func TestPropagateDetectsConflict(t *testing.T) {
	s, trail, as := newFixture(t, 2)
	addClause(t, s, as[0], as[1])
	addClause(t, s, as[0], as[1].Not())
	addClause(t, s, as[0].Not()) // unit: forces a false immediately

	c := bcp.Propagate(s, trail)
	require.NotNil(t, c)
	assert.NotNil(t, c.Clause)
}

func TestPropagateStopsAtFixpoint(t *testing.T) {
	s, trail, as := newFixture(t, 2)
	addClause(t, s, as[0], as[1])

	c := bcp.Propagate(s, trail)
	assert.Nil(t, c)
	assert.Equal(t, trail.Len(), trail.EltHead())
}

// TestWatchMovesOffFalsifiedLiteral is the two-watched-literal invariant
// scenario: falsifying one watched literal of a four-literal clause with
// two other unassigned literals available must relocate the watch onto one
// of them, and the falsified literal's own watch list must no longer carry
// the clause.
func TestWatchMovesOffFalsifiedLiteral(t *testing.T) {
	s, trail, as := newFixture(t, 4)
	a, b, c, d := as[0], as[1], as[2], as[3]
	clause := addClause(t, s, a, b, c, d)
	require.Len(t, s.Watches(a), 1)

	trail.Decide(a.Not())
	conflict := bcp.Propagate(s, trail)
	require.Nil(t, conflict)

	assert.Empty(t, s.Watches(a), "falsified literal must no longer be watched")
	moved := false
	for _, lit := range []atom.Atom{b, c, d} {
		for _, w := range s.Watches(lit) {
			if w == clause {
				moved = true
			}
		}
	}
	assert.True(t, moved, "watch must have moved onto one of the remaining literals")
}
