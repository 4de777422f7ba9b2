package solver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/internal/boolformula"
	"github.com/c-cube/cdcl/solver"
	"github.com/c-cube/cdcl/theory"
)

func TestSolveAllEnumeratesEveryModelOfXor(t *testing.T) {
	s := solver.New(theory.NoTheory{})
	a := s.NewAtom(boolformula.NewVar(1))
	b := s.NewAtom(boolformula.NewVar(2))
	// (a ∨ b) ∧ (¬a ∨ ¬b) has exactly two models: a,¬b and ¬a,b.
	require.True(t, s.AddClauseA([]atom.Atom{a, b}, nil))
	require.True(t, s.AddClauseA([]atom.Atom{a.Not(), b.Not()}, nil))

	models, err := s.SolveAll(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Len(t, models, 2)
}

func TestSolveAllRespectsLimit(t *testing.T) {
	s := solver.New(theory.NoTheory{})
	a := s.NewAtom(boolformula.NewVar(1))
	b := s.NewAtom(boolformula.NewVar(2))
	require.True(t, s.AddClauseA([]atom.Atom{a, b}, nil))
	require.True(t, s.AddClauseA([]atom.Atom{a.Not(), b.Not()}, nil))

	models, err := s.SolveAll(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestSolveAllStopsAtUnsat(t *testing.T) {
	s := solver.New(theory.NoTheory{})
	a := s.NewAtom(boolformula.NewVar(1))
	require.True(t, s.AddClauseA([]atom.Atom{a}, nil))
	require.False(t, s.AddClauseA([]atom.Atom{a.Not()}, nil))

	models, err := s.SolveAll(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestSolveAllHonorsCancelledContext(t *testing.T) {
	s := solver.New(theory.NoTheory{})
	s.NewAtom(boolformula.NewVar(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	models, err := s.SolveAll(ctx, nil, 5)
	assert.Error(t, err)
	assert.Empty(t, models)
}
