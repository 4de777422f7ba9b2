package solver

import (
	"github.com/c-cube/cdcl/atom"
	"github.com/c-cube/cdcl/proof"
	"github.com/c-cube/cdcl/store"
)

// ResultKind tags Solve's outcome (§6 "solve").
type ResultKind uint8

const (
	// ResultSat means every clause is satisfied by the solver's trail.
	ResultSat ResultKind = iota
	// ResultUnsat means no assignment satisfies the hypotheses, either
	// outright or under the given assumptions.
	ResultUnsat
	// ResultUnknown means search was cancelled before reaching a verdict
	// (§5 "Cancellation").
	ResultUnknown
)

// Result is the outcome of a Solve call. Its accessors are only valid for
// the Kind they document; calling a Sat accessor on an Unsat result (or
// vice versa) panics, matching the spec's tagged Sat{...}/Unsat{...}
// variants.
type Result struct {
	kind ResultKind
	s    *Solver

	conflict    *store.Clause // ResultUnsat, no local assumption core
	localCore   []atom.Atom   // ResultUnsat, from an assumption found false by pickBranch
}

// Kind reports which variant this Result is.
func (r *Result) Kind() ResultKind { return r.kind }

// IterTrail returns every currently assigned atom in trail order (Sat
// "iter_trail").
func (r *Result) IterTrail() []atom.Atom {
	r.mustBe(ResultSat)
	out := make([]atom.Atom, r.s.trail.Len())
	for i := range out {
		out[i] = r.s.trail.At(i)
	}
	return out
}

// Eval reports a's truth value in the model (Sat "eval").
func (r *Result) Eval(a atom.Atom) (bool, error) {
	r.mustBe(ResultSat)
	return r.s.Eval(a)
}

// EvalLevel reports a's truth value and assignment level in the model (Sat
// "eval_level").
func (r *Result) EvalLevel(a atom.Atom) (bool, int, error) {
	r.mustBe(ResultSat)
	return r.s.EvalLevel(a)
}

// UnsatConflict returns the root-level conflict clause, or nil when this
// Unsat came from a false assumption instead (Unsat "unsat_conflict").
func (r *Result) UnsatConflict() *store.Clause {
	r.mustBe(ResultUnsat)
	return r.conflict
}

// UnsatAssumptions returns the subset of the assumptions passed to Solve
// responsible for unsatisfiability (not minimized), or nil when this Unsat came from
// the hypotheses alone (Unsat "unsat_assumptions").
func (r *Result) UnsatAssumptions() []atom.Atom {
	r.mustBe(ResultUnsat)
	return r.localCore
}

// GetProof reconstructs the resolution proof of UnsatConflict, or returns
// ErrNoProof if proof recording was disabled or this Unsat came from a false
// assumption (no conflict clause). It does not validate the premise DAG;
// Proof().Check does that (Unsat "get_proof").
func (r *Result) GetProof() (*store.Clause, error) {
	r.mustBe(ResultUnsat)
	if r.conflict == nil {
		return nil, ErrNoProof
	}
	return r.s.proof.ProveUnsat(r.conflict)
}

// Proof returns the Proof bound to this solver's store, for UnsatCore/Fold
// queries over a clause obtained from GetProof.
func (r *Result) Proof() *proof.Proof {
	return r.s.proof
}

func (r *Result) mustBe(k ResultKind) {
	if r.kind != k {
		panic("solver: wrong Result accessor for this outcome")
	}
}
