package dimacs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/dimacs"
	"github.com/c-cube/cdcl/solver"
	"github.com/c-cube/cdcl/theory"
)

func TestParseRejectsMissingHeader(t *testing.T) {
	_, err := dimacs.Parse(strings.NewReader("1 2 0\n"))
	assert.Error(t, err)
}

func TestParseSkipsComments(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader("c a comment\np cnf 2 1\n1 2 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, p.NVars)
	require.Len(t, p.Clauses, 1)
	assert.Equal(t, []int{1, 2}, p.Clauses[0])
}

func TestParseHandlesClauseSplitAcrossLines(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader("p cnf 3 1\n1 2\n-3 0\n"))
	require.NoError(t, err)
	require.Len(t, p.Clauses, 1)
	assert.Equal(t, []int{1, 2, -3}, p.Clauses[0])
}

func TestLoadAndSolveRoundTrip(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader("p cnf 2 2\n1 2 0\n-1 -2 0\n"))
	require.NoError(t, err)

	s := solver.New(theory.NoTheory{})
	atoms, ok := dimacs.Load(s, p)
	require.True(t, ok)
	require.Len(t, atoms, 3) // index 0 unused

	res := s.Solve(nil)
	require.Equal(t, solver.ResultSat, res.Kind())

	var buf bytes.Buffer
	require.NoError(t, dimacs.WriteModel(&buf, res, atoms))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "v "))
	assert.True(t, strings.HasSuffix(out, " 0\n"))
}

func TestLoadDetectsUnsatAtLoadTime(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader("p cnf 1 2\n1 0\n-1 0\n"))
	require.NoError(t, err)

	s := solver.New(theory.NoTheory{})
	_, ok := dimacs.Load(s, p)
	assert.False(t, ok)
}

func TestWriteClauseFormat(t *testing.T) {
	p, err := dimacs.Parse(strings.NewReader("p cnf 2 1\n1 -2 0\n"))
	require.NoError(t, err)
	s := solver.New(theory.NoTheory{})
	atoms, ok := dimacs.Load(s, p)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, dimacs.WriteClause(&buf, []atom.Atom{atoms[1], atoms[2].Not()}))
	assert.Equal(t, "1 -2 0\n", buf.String())
}
