package solver

import (
	"github.com/pkg/errors"

	"github.com/c-cube/cdcl/proof"
)

// ErrNoProof is returned by GetProof when the solver was built with proof
// recording disabled (§7 "No-proof").
var ErrNoProof = proof.ErrNoProof

// ErrUndecidedLit is returned by Eval/EvalLevel when asked about an atom
// that currently has no assignment (§7 "Undecided-lit").
var ErrUndecidedLit = errors.New("solver: literal is undecided")

// ErrIllegalAssumption describes an assumption atom that was never
// allocated through this solver's store. Solve does not return it: Solve
// returns no error and does not validate its assumptions.
var ErrIllegalAssumption = errors.New("solver: assumption atom was never allocated")

// ResolutionError reports a malformed History premise found while
// expanding a proof (§7 "Resolution-error"): a solver-internal invariant
// violation, not a user error.
type ResolutionError = proof.ResolutionError

