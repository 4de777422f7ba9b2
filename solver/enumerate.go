package solver

import (
	"context"

	"github.com/c-cube/cdcl/atom"
)

// SolveAll enumerates up to limit satisfying models under assumptions,
// blocking each model found with its negation before searching for the
// next one (§3 supplemented feature; grounded on the teacher's
// SolveMany, generalized to stop early via ctx and to block on the exact
// current trail instead of rebuilding the solver from scratch each round).
// A non-positive limit means "no bound, stop only at Unsat or ctx.Err".
func (s *Solver) SolveAll(ctx context.Context, assumptions []atom.Atom, limit int) ([][]atom.Atom, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-done:
		}
	}()

	var models [][]atom.Atom
	for limit <= 0 || len(models) < limit {
		if err := ctx.Err(); err != nil {
			return models, err
		}

		res := s.Solve(assumptions)
		switch res.Kind() {
		case ResultUnsat:
			return models, nil
		case ResultUnknown:
			return models, ctx.Err()
		}

		model := res.IterTrail()
		models = append(models, model)

		s.trail.CancelUntil(s.rootLevel)
		blocking := make([]atom.Atom, len(model))
		for i, a := range model {
			blocking[i] = a.Not()
		}
		if !s.AddClauseA(blocking, nil) {
			break
		}
	}
	return models, nil
}
